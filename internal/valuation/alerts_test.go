package valuation

import (
	"testing"
	"time"

	"github.com/Zeek-James/pem-zee/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintp(v uint) *uint { return &v }

func TestAlerts_GroupedInOrder(t *testing.T) {
	c := NewCalculator(DefaultParams())
	now := day("2024-02-01").Add(10 * time.Hour)

	snap := Snapshot{
		Harvests: []model.Harvest{
			{ID: 2, HarvestDate: day("2024-01-20"), Plantation: "P2"},
			{ID: 1, HarvestDate: day("2024-01-15"), Plantation: "P1"},
			{ID: 3, HarvestDate: day("2024-01-10"), Plantation: "P3"}, // milled
			{ID: 4, HarvestDate: day("2024-02-01"), Plantation: "P4"}, // too fresh
		},
		Millings: []model.Milling{{ID: 1, HarvestID: uintp(3)}},
		Storages: []model.Storage{
			{ID: 1, ContainerID: "CPO001", Quantity: dec("10"), StorageDate: day("2023-12-01"), MaxShelfLifeDays: 30},
			{ID: 2, ContainerID: "CPO002", Quantity: dec("10"), StorageDate: day("2024-01-05"), MaxShelfLifeDays: 30},
			{ID: 3, ContainerID: "CPO003", Quantity: dec("10"), StorageDate: day("2023-11-01"), MaxShelfLifeDays: 30, IsSold: true},
		},
		Sales: []model.Sale{
			{ID: 9, BuyerName: "Zed Oil", QuantitySold: dec("1000"), PricePerKg: dec("1234.5"), PaymentStatus: "pending"},
			{ID: 8, BuyerName: "Ada", QuantitySold: dec("1"), PricePerKg: dec("900"), PaymentStatus: model.PaymentPending},
			{ID: 7, BuyerName: "Ola", QuantitySold: dec("1"), PricePerKg: dec("900"), PaymentStatus: model.PaymentPaid},
		},
	}

	alerts := c.Alerts(snap, now)
	require.Len(t, alerts, 7)

	var types []string
	for _, a := range alerts {
		types = append(types, a.Type)
	}
	assert.Equal(t, []string{
		AlertMillingOverdue, AlertMillingOverdue,
		AlertStorageExpired,
		AlertNearExpiry,
		AlertLowStock,
		AlertPaymentPending, AlertPaymentPending,
	}, types)

	assert.Equal(t, uint(1), *alerts[0].ReferencedID)
	assert.Equal(t, "FFB from P1 harvested on 2024-01-15 needs milling", alerts[0].Message)
	assert.Equal(t, uint(2), *alerts[1].ReferencedID)

	assert.Equal(t, SeverityCritical, alerts[2].Severity)
	assert.Equal(t, "Container CPO001 has expired!", alerts[2].Message)
	assert.Equal(t, "Container CPO002 expires in 3 days", alerts[3].Message)

	assert.Nil(t, alerts[4].ReferencedID)
	require.NotNil(t, alerts[4].CurrentStock)
	assert.True(t, alerts[4].CurrentStock.Equal(dec("20")))
	assert.Equal(t, "Low stock: Only 20.00kg CPO in storage", alerts[4].Message)

	assert.Equal(t, uint(8), *alerts[5].ReferencedID)
	assert.Equal(t, "Payment pending from Ada for ₦900.00", alerts[5].Message)
	assert.Equal(t, "Payment pending from Zed Oil for ₦1,234,500.00", alerts[6].Message)
}

func TestAlerts_LowStockWithEmptyStore(t *testing.T) {
	c := NewCalculator(DefaultParams())
	alerts := c.Alerts(Snapshot{}, day("2024-01-01"))

	require.Len(t, alerts, 1)
	assert.Equal(t, AlertLowStock, alerts[0].Type)
	assert.True(t, alerts[0].CurrentStock.IsZero())
}

func TestAlerts_LowStockUsesOriginalQuantity(t *testing.T) {
	c := NewCalculator(DefaultParams())
	snap := Snapshot{
		Storages: []model.Storage{{ID: 1, ContainerID: "CPO001", Quantity: dec("60"), StorageDate: day("2024-01-01"), MaxShelfLifeDays: 30}},
		Sales:    []model.Sale{{ID: 1, StorageID: 1, QuantitySold: dec("55"), PricePerKg: dec("1"), PaymentStatus: model.PaymentPaid}},
	}

	assert.Empty(t, c.Alerts(snap, day("2024-01-02")))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0.00", FormatAmount(dec("0")))
	assert.Equal(t, "999.50", FormatAmount(dec("999.5")))
	assert.Equal(t, "1,000.00", FormatAmount(dec("1000")))
	assert.Equal(t, "12,345,678.90", FormatAmount(dec("12345678.9")))
	assert.Equal(t, "-1,500.00", FormatAmount(dec("-1500")))
}
