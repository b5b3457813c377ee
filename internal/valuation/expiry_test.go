package valuation

import (
	"testing"
	"time"

	"github.com/Zeek-James/pem-zee/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestExpiry_NearThenExpired(t *testing.T) {
	s := model.Storage{StorageDate: day("2024-01-01"), MaxShelfLifeDays: 30}

	at26 := Expiry(s, day("2024-01-27").Add(15*time.Hour), 5)
	assert.Equal(t, day("2024-01-31"), at26.ExpiryDate)
	assert.Equal(t, 4, at26.DaysUntilExpiry)
	assert.True(t, at26.IsNearExpiry)
	assert.False(t, at26.IsExpired)

	at31 := Expiry(s, day("2024-02-01"), 5)
	assert.Equal(t, -1, at31.DaysUntilExpiry)
	assert.True(t, at31.IsExpired)
	assert.False(t, at31.IsNearExpiry)
}

func TestExpiry_Boundaries(t *testing.T) {
	s := model.Storage{StorageDate: day("2024-01-01"), MaxShelfLifeDays: 30}

	onExpiryDay := Expiry(s, day("2024-01-31"), 5)
	assert.Equal(t, 0, onExpiryDay.DaysUntilExpiry)
	assert.True(t, onExpiryDay.IsNearExpiry)
	assert.False(t, onExpiryDay.IsExpired)

	sixDaysOut := Expiry(s, day("2024-01-25"), 5)
	assert.Equal(t, 6, sixDaysOut.DaysUntilExpiry)
	assert.False(t, sixDaysOut.IsNearExpiry)
}

func TestExpiry_SoldContainersNeverAlert(t *testing.T) {
	s := model.Storage{StorageDate: day("2024-01-01"), MaxShelfLifeDays: 30, IsSold: true}

	near := Expiry(s, day("2024-01-28"), 5)
	assert.False(t, near.IsNearExpiry)

	past := Expiry(s, day("2024-03-01"), 5)
	assert.Less(t, past.DaysUntilExpiry, 0)
	assert.False(t, past.IsExpired)
}

func TestExpiry_IgnoresNowTimeZone(t *testing.T) {
	s := model.Storage{StorageDate: day("2024-01-01"), MaxShelfLifeDays: 10}
	lagos := time.FixedZone("WAT", 3600)
	now := time.Date(2024, 1, 6, 0, 30, 0, 0, lagos) // 2024-01-05 23:30 UTC

	assert.Equal(t, 6, Expiry(s, now, 5).DaysUntilExpiry)
}
