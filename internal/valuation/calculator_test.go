package valuation

import (
	"testing"
	"time"

	"github.com/Zeek-James/pem-zee/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestHarvest_OwnLotUsesDefaultRate(t *testing.T) {
	c := NewCalculator(DefaultParams())
	h := model.Harvest{NumBunches: 10, WeightPerBunch: dec("16")}

	f := c.Harvest(h)

	assert.True(t, f.TotalWeight.Equal(dec("160")))
	assert.True(t, f.ExpectedOilYield.Equal(dec("32")), "got %s", f.ExpectedOilYield)
	assert.Equal(t, "35.16", f.ExpectedOilYieldLiters.StringFixed(2))
	assert.True(t, f.FFBCost.Equal(dec("8000")))
	assert.True(t, f.CostPerKg.Equal(dec("50")))
}

func TestHarvest_PurchasedLotUsesPurchasePrice(t *testing.T) {
	c := NewCalculator(DefaultParams())
	price := dec("12000")
	h := model.Harvest{NumBunches: 20, WeightPerBunch: dec("15"), IsPurchased: true, PurchasePrice: &price}

	f := c.Harvest(h)

	assert.True(t, f.FFBCost.Equal(price))
	assert.True(t, f.CostPerKg.Equal(dec("40")))
}

func TestHarvest_PurchasedWithZeroPriceFallsBackToRate(t *testing.T) {
	c := NewCalculator(DefaultParams())
	zero := decimal.Zero
	h := model.Harvest{NumBunches: 2, WeightPerBunch: dec("10"), IsPurchased: true, PurchasePrice: &zero}

	assert.True(t, c.FFBCost(&h).Equal(dec("1000")))
}

func TestHarvest_ZeroBunchesHasZeroCostPerKg(t *testing.T) {
	c := NewCalculator(DefaultParams())
	f := c.Harvest(model.Harvest{NumBunches: 0, WeightPerBunch: dec("12")})

	assert.True(t, f.TotalWeight.IsZero())
	assert.True(t, f.CostPerKg.IsZero())
}

func TestFFBCost_NilHarvestIsZero(t *testing.T) {
	c := NewCalculator(DefaultParams())
	assert.True(t, c.FFBCost(nil).IsZero())
}

func TestHarvest_ConfiguredRate(t *testing.T) {
	p := DefaultParams()
	p.DefaultFFBRate = dec("65")
	c := NewCalculator(p)

	assert.True(t, c.FFBCost(&model.Harvest{NumBunches: 1, WeightPerBunch: dec("10")}).Equal(dec("650")))
}

func TestMilling_WithoutHarvest(t *testing.T) {
	c := NewCalculator(DefaultParams())
	m := model.Milling{MillingCost: dec("7500"), TransportCost: dec("1500"), OilYield: dec("15")}

	f := c.Milling(m, decimal.Zero)

	assert.True(t, f.TotalCost.Equal(dec("9000")))
	assert.True(t, f.CostPerKg.Equal(dec("600")))
	assert.Equal(t, "16.48", f.OilYieldLiters.StringFixed(2))
	assert.Equal(t, "546.00", f.CostPerLiter.StringFixed(2))
}

func TestMilling_IncludesFFBCost(t *testing.T) {
	c := NewCalculator(DefaultParams())
	m := model.Milling{MillingCost: dec("1000"), TransportCost: dec("0"), OilYield: dec("32")}

	f := c.Milling(m, dec("8000"))

	assert.True(t, f.TotalCost.Equal(dec("9000")))
	assert.Equal(t, "281.25", f.CostPerKg.StringFixed(2))
}

func TestMilling_ZeroYieldHasZeroRatios(t *testing.T) {
	c := NewCalculator(DefaultParams())
	f := c.Milling(model.Milling{MillingCost: dec("500"), OilYield: decimal.Zero}, decimal.Zero)

	assert.True(t, f.TotalCost.Equal(dec("500")))
	assert.True(t, f.CostPerKg.IsZero())
	assert.True(t, f.CostPerLiter.IsZero())
	assert.True(t, f.OilYieldLiters.IsZero())
}

func TestCalculator_IsPure(t *testing.T) {
	c := NewCalculator(DefaultParams())
	h := model.Harvest{NumBunches: 7, WeightPerBunch: dec("13.5")}
	m := model.Milling{MillingCost: dec("300"), TransportCost: dec("20"), OilYield: dec("18.9")}

	assert.Equal(t, c.Harvest(h), c.Harvest(h))
	assert.Equal(t, c.Milling(m, dec("10")), c.Milling(m, dec("10")))
}

func TestContainerID(t *testing.T) {
	cases := map[uint]string{
		5:    "CPO005",
		7:    "CPO007",
		123:  "CPO123",
		1042: "CPO1042",
		1500: "CPO1500",
	}
	for id, want := range cases {
		assert.Equal(t, want, ContainerID(id))
	}
}

func TestNeedsMilling(t *testing.T) {
	c := NewCalculator(DefaultParams())
	h := model.Harvest{HarvestDate: day("2024-03-01")}

	assert.False(t, c.NeedsMilling(h, day("2024-03-01").Add(23*time.Hour)))
	assert.False(t, c.NeedsMilling(h, day("2024-03-02")))
	assert.True(t, c.NeedsMilling(h, day("2024-03-02").Add(time.Minute)))
}

func TestTotalSold_ManySmallSalesDoNotDrift(t *testing.T) {
	sales := make([]model.Sale, 1000)
	for i := range sales {
		sales[i] = model.Sale{QuantitySold: dec("0.1")}
	}
	s := model.Storage{Quantity: dec("100"), Sales: sales}

	assert.True(t, TotalSold(sales).Equal(dec("100")))
	assert.True(t, Remaining(s).IsZero())
}
