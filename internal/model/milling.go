package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Milling records one milling run. HarvestID is optional: oil milled from an
// unrecorded lot carries no FFB cost.
type Milling struct {
	ID            uint            `gorm:"primaryKey;autoIncrement"`
	MillingDate   time.Time       `gorm:"type:date;not null;index"`
	MillLocation  string          `gorm:"type:varchar(50);not null"`
	HarvestID     *uint           `gorm:"index"`
	MillingCost   decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	OilYield      decimal.Decimal `gorm:"type:numeric(14,3);not null"` // kg
	TransportCost decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	CreatedAt     time.Time

	Harvest *Harvest `gorm:"foreignKey:HarvestID"`
}

// TableName keeps the singular table name used by the reporting queries.
func (Milling) TableName() string { return "milling" }
