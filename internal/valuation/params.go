// Package valuation derives yields, costs, expiry state, alerts and dashboard
// figures from ledger records. Everything here is a pure function of its
// inputs; callers inject "now" wherever time matters.
package valuation

import "github.com/shopspring/decimal"

// Params are the business constants the calculations depend on.
type Params struct {
	OER                 decimal.Decimal // oil extraction rate, fraction of FFB weight
	CPODensity          decimal.Decimal // kg per litre
	DefaultFFBRate      decimal.Decimal // ₦ per kg when the lot was not purchased
	DefaultShelfLife    int             // days
	MillingAlertHours   int
	ExpiryWarningDays   int
	LowStockThresholdKg decimal.Decimal
}

// DefaultParams returns the production constants.
func DefaultParams() Params {
	return Params{
		OER:                 decimal.RequireFromString("0.20"),
		CPODensity:          decimal.RequireFromString("0.91"),
		DefaultFFBRate:      decimal.NewFromInt(50),
		DefaultShelfLife:    30,
		MillingAlertHours:   24,
		ExpiryWarningDays:   5,
		LowStockThresholdKg: decimal.NewFromInt(50),
	}
}

// safeDiv returns 0 instead of failing when the denominator is zero.
func safeDiv(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.Div(den)
}
