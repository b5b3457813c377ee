package valuation

import (
	"fmt"
	"time"

	"github.com/Zeek-James/pem-zee/internal/model"

	"github.com/shopspring/decimal"
)

// HarvestFigures are the values derived from a single harvest.
type HarvestFigures struct {
	TotalWeight            decimal.Decimal
	ExpectedOilYield       decimal.Decimal
	ExpectedOilYieldLiters decimal.Decimal
	FFBCost                decimal.Decimal
	CostPerKg              decimal.Decimal
}

// MillingFigures are the values derived from a milling run.
type MillingFigures struct {
	OilYieldLiters decimal.Decimal
	TotalCost      decimal.Decimal
	CostPerKg      decimal.Decimal
	CostPerLiter   decimal.Decimal
}

// Calculator turns raw records into derived figures.
type Calculator struct {
	p Params
}

func NewCalculator(p Params) Calculator { return Calculator{p: p} }

func (c Calculator) Params() Params { return c.p }

func (c Calculator) TotalWeight(h model.Harvest) decimal.Decimal {
	return decimal.NewFromInt(int64(h.NumBunches)).Mul(h.WeightPerBunch)
}

// FFBCost is the purchase price for bought lots with a non-zero price and the
// default per-kg rate otherwise. A nil harvest costs nothing.
func (c Calculator) FFBCost(h *model.Harvest) decimal.Decimal {
	if h == nil {
		return decimal.Zero
	}
	if h.IsPurchased && h.PurchasePrice != nil && !h.PurchasePrice.IsZero() {
		return *h.PurchasePrice
	}
	return c.TotalWeight(*h).Mul(c.p.DefaultFFBRate)
}

func (c Calculator) Harvest(h model.Harvest) HarvestFigures {
	weight := c.TotalWeight(h)
	yield := weight.Mul(c.p.OER)
	cost := c.FFBCost(&h)
	return HarvestFigures{
		TotalWeight:            weight,
		ExpectedOilYield:       yield,
		ExpectedOilYieldLiters: c.Liters(yield),
		FFBCost:                cost,
		CostPerKg:              safeDiv(cost, weight),
	}
}

// Milling computes the costs of a run given the FFB cost of its harvest
// (zero when the run has no harvest).
func (c Calculator) Milling(m model.Milling, ffbCost decimal.Decimal) MillingFigures {
	liters := c.Liters(m.OilYield)
	total := ffbCost.Add(m.MillingCost).Add(m.TransportCost)
	return MillingFigures{
		OilYieldLiters: liters,
		TotalCost:      total,
		CostPerKg:      safeDiv(total, m.OilYield),
		CostPerLiter:   safeDiv(total, liters),
	}
}

// Liters converts a CPO weight in kg to volume.
func (c Calculator) Liters(kg decimal.Decimal) decimal.Decimal {
	return safeDiv(kg, c.p.CPODensity)
}

// NeedsMilling reports whether a harvest has waited longer than the milling
// window, measured from midnight of its harvest date.
func (c Calculator) NeedsMilling(h model.Harvest, now time.Time) bool {
	start := dateOf(h.HarvestDate)
	return now.Sub(start) > time.Duration(c.p.MillingAlertHours)*time.Hour
}

// SaleRevenue is quantity × price.
func SaleRevenue(s model.Sale) decimal.Decimal {
	return s.QuantitySold.Mul(s.PricePerKg)
}

// TotalSold sums the quantities of the given sales. Decimal addition is exact,
// so many small sales never drift.
func TotalSold(sales []model.Sale) decimal.Decimal {
	total := decimal.Zero
	for _, s := range sales {
		total = total.Add(s.QuantitySold)
	}
	return total
}

// Remaining is what is left of a container after its sales.
func Remaining(s model.Storage) decimal.Decimal {
	return s.Quantity.Sub(TotalSold(s.Sales))
}

// ContainerID formats a milling id as a container code: CPO007, CPO123, CPO1042.
func ContainerID(millingID uint) string {
	return fmt.Sprintf("CPO%03d", millingID)
}
