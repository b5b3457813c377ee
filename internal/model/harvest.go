package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Harvest is one FFB (fresh fruit bunch) intake, either own harvest or purchased.
// Ripeness: "ripe" | "unripe" | "overripe"
type Harvest struct {
	ID             uint            `gorm:"primaryKey;autoIncrement"`
	HarvestDate    time.Time       `gorm:"type:date;not null;index"`
	Plantation     string          `gorm:"type:varchar(50);not null"`
	NumBunches     int             `gorm:"not null"`
	WeightPerBunch decimal.Decimal `gorm:"type:numeric(10,3);not null"`
	Ripeness       string          `gorm:"type:varchar(20);not null"`
	IsPurchased    bool            `gorm:"not null;default:false"`
	SupplierName   *string         `gorm:"type:varchar(100)"`
	// PurchasePrice is the total price paid for the lot, not a per-kg rate
	PurchasePrice *decimal.Decimal `gorm:"type:numeric(14,2)"`
	CreatedBy     *uint
	CreatedAt     time.Time

	MillingRecords []Milling `gorm:"foreignKey:HarvestID"`
}
