package valuation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Zeek-James/pem-zee/internal/model"

	"github.com/shopspring/decimal"
)

const (
	AlertMillingOverdue = "milling_overdue"
	AlertStorageExpired = "storage_expired"
	AlertNearExpiry     = "storage_near_expiry"
	AlertLowStock       = "low_stock"
	AlertPaymentPending = "payment_pending"

	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// Alert is one advisory raised over the ledger. ReferencedID points at the
// harvest, container or sale concerned; the low-stock alert has none and
// carries CurrentStock instead.
type Alert struct {
	Type         string
	Severity     string
	Message      string
	ReferencedID *uint
	CurrentStock *decimal.Decimal
}

// Alerts builds the alert list grouped by type: overdue milling, expired
// containers, containers near expiry, low stock, pending payments. Each group
// is ordered by ascending id.
func (c Calculator) Alerts(snap Snapshot, now time.Time) []Alert {
	var (
		overdue, expired, near, payments []Alert
		stock                            = decimal.Zero
	)

	harvests := sortedHarvests(snap.Harvests)
	milled := snap.milledHarvests()
	for _, h := range harvests {
		if milled[h.ID] || !c.NeedsMilling(h, now) {
			continue
		}
		overdue = append(overdue, Alert{
			Type:         AlertMillingOverdue,
			Severity:     SeverityHigh,
			Message:      fmt.Sprintf("FFB from %s harvested on %s needs milling", h.Plantation, h.HarvestDate.Format(DateLayout)),
			ReferencedID: ref(h.ID),
		})
	}

	for _, s := range sortedStorages(snap.Storages) {
		if s.IsSold {
			continue
		}
		stock = stock.Add(s.Quantity)
		status := c.Expiry(s, now)
		switch {
		case status.IsExpired:
			expired = append(expired, Alert{
				Type:         AlertStorageExpired,
				Severity:     SeverityCritical,
				Message:      fmt.Sprintf("Container %s has expired!", s.ContainerID),
				ReferencedID: ref(s.ID),
			})
		case status.IsNearExpiry:
			near = append(near, Alert{
				Type:         AlertNearExpiry,
				Severity:     SeverityMedium,
				Message:      fmt.Sprintf("Container %s expires in %d days", s.ContainerID, status.DaysUntilExpiry),
				ReferencedID: ref(s.ID),
			})
		}
	}

	for _, s := range sortedSales(snap.Sales) {
		if !s.IsPaymentPending() {
			continue
		}
		payments = append(payments, Alert{
			Type:         AlertPaymentPending,
			Severity:     SeverityLow,
			Message:      fmt.Sprintf("Payment pending from %s for ₦%s", s.BuyerName, FormatAmount(SaleRevenue(s))),
			ReferencedID: ref(s.ID),
		})
	}

	alerts := make([]Alert, 0, len(overdue)+len(expired)+len(near)+len(payments)+1)
	alerts = append(alerts, overdue...)
	alerts = append(alerts, expired...)
	alerts = append(alerts, near...)
	// Low stock looks at original quantities, not what is left after sales.
	if stock.LessThan(c.p.LowStockThresholdKg) {
		current := stock
		alerts = append(alerts, Alert{
			Type:         AlertLowStock,
			Severity:     SeverityMedium,
			Message:      fmt.Sprintf("Low stock: Only %skg CPO in storage", stock.StringFixed(2)),
			CurrentStock: &current,
		})
	}
	return append(alerts, payments...)
}

// FormatAmount renders a money value with two decimals and comma thousands
// separators, e.g. 1234567.5 → "1,234,567.50".
func FormatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "." + frac
}

func ref(id uint) *uint { return &id }

func sortedHarvests(in []model.Harvest) []model.Harvest {
	out := append([]model.Harvest(nil), in...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedStorages(in []model.Storage) []model.Storage {
	out := append([]model.Storage(nil), in...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedSales(in []model.Sale) []model.Sale {
	out := append([]model.Sale(nil), in...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
