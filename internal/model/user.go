package model

import "time"

// RoleAdmin bypasses permission checks.
const RoleAdmin = "Admin"

// User stores system accounts. Authorization comes from the role's permissions.
type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"type:varchar(50);uniqueIndex;not null"`
	Email        string `gorm:"type:varchar(120);uniqueIndex;not null"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	FullName     string `gorm:"type:varchar(100);not null"`
	RoleID       uint   `gorm:"not null"`
	IsActive     bool   `gorm:"not null;default:true"`
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Role *Role `gorm:"foreignKey:RoleID"`
}

// Role: "Admin" | "Manager" | "Operator" | "Viewer"
type Role struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"type:varchar(50);uniqueIndex;not null"`
	Description string `gorm:"type:varchar(255)"`
	CreatedAt   time.Time

	Permissions []Permission `gorm:"many2many:role_permissions;"`
}

// Permission grants one action on one resource.
// Resource: "harvest" | "milling" | "storage" | "sales" | "reports"
// Action:   "create" | "read" | "update" | "delete"
type Permission struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	Resource    string `gorm:"type:varchar(50);not null;uniqueIndex:idx_resource_action"`
	Action      string `gorm:"type:varchar(20);not null;uniqueIndex:idx_resource_action"`
	Description string `gorm:"type:varchar(255)"`
}

// Key is the "resource:action" form embedded in access tokens.
func (p Permission) Key() string { return p.Resource + ":" + p.Action }
