package model

import "time"

// AuditLog is an append-only record of a successful mutating request.
type AuditLog struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	UserID     *uint  `gorm:"index"`
	Action     string `gorm:"type:varchar(20);not null"`
	Resource   string `gorm:"type:varchar(50);not null;index"`
	ResourceID *uint
	Method     string `gorm:"type:varchar(10);not null"`
	Path       string `gorm:"type:varchar(255);not null"`
	Status     int    `gorm:"not null"`
	CreatedAt  time.Time
}
