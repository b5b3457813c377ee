package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Storage is one CPO container produced by a milling run.
// Quantity is the amount at creation and is never mutated; what is left is
// always Quantity minus the sum of the container's sales.
type Storage struct {
	ID               uint            `gorm:"primaryKey;autoIncrement"`
	ContainerID      string          `gorm:"type:varchar(50);uniqueIndex;not null"`
	MillingID        uint            `gorm:"not null;uniqueIndex"`
	Quantity         decimal.Decimal `gorm:"type:numeric(14,3);not null"` // kg
	StorageDate      time.Time       `gorm:"type:date;not null"`
	MaxShelfLifeDays int             `gorm:"not null;default:30"`
	PlantationSource string          `gorm:"type:varchar(50);not null"`
	// IsSold flips to true once the container is fully depleted and never flips back
	IsSold    bool `gorm:"not null;default:false;index"`
	CreatedAt time.Time

	Milling *Milling `gorm:"foreignKey:MillingID"`
	Sales   []Sale   `gorm:"foreignKey:StorageID"`
}

// TableName overrides GORM's default pluralization (storages → storage).
func (Storage) TableName() string { return "storage" }
