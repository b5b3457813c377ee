package valuation

import (
	"time"

	"github.com/Zeek-James/pem-zee/internal/model"
)

// ExpiryStatus is the shelf-life state of a container at a given moment.
type ExpiryStatus struct {
	ExpiryDate      time.Time
	DaysUntilExpiry int
	IsNearExpiry    bool
	IsExpired       bool
}

// Expiry evaluates a container against now. Sold containers never report as
// near expiry or expired.
func Expiry(s model.Storage, now time.Time, warningDays int) ExpiryStatus {
	expires := dateOf(s.StorageDate).AddDate(0, 0, s.MaxShelfLifeDays)
	days := daysBetween(dateOf(now), expires)
	return ExpiryStatus{
		ExpiryDate:      expires,
		DaysUntilExpiry: days,
		IsNearExpiry:    !s.IsSold && days >= 0 && days <= warningDays,
		IsExpired:       !s.IsSold && days < 0,
	}
}

// Expiry is the calculator-bound form using the configured warning window.
func (c Calculator) Expiry(s model.Storage, now time.Time) ExpiryStatus {
	return Expiry(s, now, c.p.ExpiryWarningDays)
}

// dateOf drops the clock part, keeping the calendar date in UTC.
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween counts whole calendar days from a to b; both must be dates.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
