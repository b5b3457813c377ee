package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentPaid    = "Paid"
	PaymentPending = "Pending"
)

// Column scales of the numeric weight (kg) and money columns. Inputs are
// rounded to these before any check so what is validated is what is stored.
const (
	WeightScale = 3
	MoneyScale  = 2
)

// Sale debits a storage container. QuantitySold is immutable once created;
// only the payment fields change afterwards.
type Sale struct {
	ID            uint            `gorm:"primaryKey;autoIncrement"`
	SaleDate      time.Time       `gorm:"type:date;not null;index"`
	BuyerName     string          `gorm:"type:varchar(100);not null"`
	StorageID     uint            `gorm:"not null;index"`
	QuantitySold  decimal.Decimal `gorm:"type:numeric(14,3);not null"` // kg
	PricePerKg    decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	PaymentStatus string          `gorm:"type:varchar(20);not null;index"`
	PaymentDate   *time.Time      `gorm:"type:date"`
	CreatedAt     time.Time

	Storage *Storage `gorm:"foreignKey:StorageID"`
}

// IsPaymentPending matches "pending" in any letter case.
func (s Sale) IsPaymentPending() bool {
	return strings.EqualFold(s.PaymentStatus, PaymentPending)
}

// CanonicalPaymentStatus maps known statuses to their stored spelling and
// leaves unknown ones trimmed but otherwise untouched.
func CanonicalPaymentStatus(status string) string {
	status = strings.TrimSpace(status)
	switch {
	case strings.EqualFold(status, PaymentPaid):
		return PaymentPaid
	case strings.EqualFold(status, PaymentPending):
		return PaymentPending
	}
	return status
}
