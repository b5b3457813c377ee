package valuation

import (
	"sort"

	"github.com/shopspring/decimal"
)

// DateLayout is the bucket key format for trends and report dates.
const DateLayout = "2006-01-02"

// Summary holds the dashboard KPIs.
type Summary struct {
	TotalFFBHarvested    decimal.Decimal
	TotalOilProduced     decimal.Decimal
	TotalMillingCost     decimal.Decimal // milling charges only
	TotalProductionCost  decimal.Decimal // FFB + milling + transport
	TotalRevenue         decimal.Decimal
	TotalProfit          decimal.Decimal // revenue − milling charges
	TotalStorage         decimal.Decimal // remaining kg over unsold containers
	PendingPaymentsCount int
	TotalPendingAmount   decimal.Decimal
	AverageOilYield      decimal.Decimal
}

// TrendPoint is one day of cost and revenue.
type TrendPoint struct {
	Date    string
	Cost    decimal.Decimal
	Revenue decimal.Decimal
	Profit  decimal.Decimal
}

func (c Calculator) Summarize(snap Snapshot) Summary {
	var sum Summary

	for _, h := range snap.Harvests {
		sum.TotalFFBHarvested = sum.TotalFFBHarvested.Add(c.TotalWeight(h))
	}

	harvests := snap.harvestsByID()
	for _, m := range snap.Millings {
		sum.TotalOilProduced = sum.TotalOilProduced.Add(m.OilYield)
		sum.TotalMillingCost = sum.TotalMillingCost.Add(m.MillingCost)

		ffb := decimal.Zero
		if m.HarvestID != nil {
			ffb = c.FFBCost(harvests[*m.HarvestID])
		}
		sum.TotalProductionCost = sum.TotalProductionCost.Add(c.Milling(m, ffb).TotalCost)
	}

	for _, s := range snap.Sales {
		revenue := SaleRevenue(s)
		sum.TotalRevenue = sum.TotalRevenue.Add(revenue)
		if s.IsPaymentPending() {
			sum.PendingPaymentsCount++
			sum.TotalPendingAmount = sum.TotalPendingAmount.Add(revenue)
		}
	}

	sold := snap.soldByStorage()
	for _, st := range snap.Storages {
		if st.IsSold {
			continue
		}
		sum.TotalStorage = sum.TotalStorage.Add(st.Quantity.Sub(sold[st.ID]))
	}

	sum.TotalProfit = sum.TotalRevenue.Sub(sum.TotalMillingCost)
	if n := len(snap.Millings); n > 0 {
		sum.AverageOilYield = sum.TotalOilProduced.Div(decimal.NewFromInt(int64(n)))
	}
	return sum
}

// ProfitTrends buckets milling charges by milling date and sale revenue by
// sale date, sorted ascending by date.
func (c Calculator) ProfitTrends(snap Snapshot) []TrendPoint {
	buckets := make(map[string]*TrendPoint)
	bucket := func(date string) *TrendPoint {
		p, ok := buckets[date]
		if !ok {
			p = &TrendPoint{Date: date}
			buckets[date] = p
		}
		return p
	}

	for _, m := range snap.Millings {
		p := bucket(m.MillingDate.Format(DateLayout))
		p.Cost = p.Cost.Add(m.MillingCost)
	}
	for _, s := range snap.Sales {
		p := bucket(s.SaleDate.Format(DateLayout))
		p.Revenue = p.Revenue.Add(SaleRevenue(s))
	}

	out := make([]TrendPoint, 0, len(buckets))
	for _, p := range buckets {
		p.Profit = p.Revenue.Sub(p.Cost)
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
