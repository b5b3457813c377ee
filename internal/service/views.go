package service

import (
	"time"

	"github.com/Zeek-James/pem-zee/internal/dto"
	"github.com/Zeek-James/pem-zee/internal/model"
	"github.com/Zeek-James/pem-zee/internal/valuation"

	"github.com/shopspring/decimal"
)

// views renders records with their derived figures as of clock().
type views struct {
	calc  valuation.Calculator
	clock func() time.Time
}

func (v views) harvest(h model.Harvest) dto.HarvestResponse {
	f := v.calc.Harvest(h)
	return dto.HarvestResponse{
		ID:                     h.ID,
		HarvestDate:            formatDate(h.HarvestDate),
		Plantation:             h.Plantation,
		NumBunches:             h.NumBunches,
		WeightPerBunch:         h.WeightPerBunch,
		Ripeness:               h.Ripeness,
		IsPurchased:            h.IsPurchased,
		SupplierName:           h.SupplierName,
		PurchasePrice:          h.PurchasePrice,
		TotalWeight:            f.TotalWeight,
		ExpectedOilYield:       f.ExpectedOilYield,
		ExpectedOilYieldLiters: f.ExpectedOilYieldLiters,
		FFBCost:                f.FFBCost,
		CostPerKg:              f.CostPerKg,
		NeedsMillingAlert:      v.calc.NeedsMilling(h, v.clock()),
		CreatedAt:              formatTimestamp(h.CreatedAt),
	}
}

// milling expects m.Harvest to be loaded when HarvestID is set.
func (v views) milling(m model.Milling) dto.MillingResponse {
	ffb := v.calc.FFBCost(m.Harvest)
	f := v.calc.Milling(m, ffb)
	return dto.MillingResponse{
		ID:             m.ID,
		MillingDate:    formatDate(m.MillingDate),
		MillLocation:   m.MillLocation,
		HarvestID:      m.HarvestID,
		MillingCost:    m.MillingCost,
		OilYield:       m.OilYield,
		TransportCost:  m.TransportCost,
		OilYieldLiters: f.OilYieldLiters,
		FFBCost:        ffb,
		TotalCost:      f.TotalCost,
		CostPerKg:      f.CostPerKg,
		CostPerLiter:   f.CostPerLiter,
		CreatedAt:      formatTimestamp(m.CreatedAt),
	}
}

// storage renders a container given the total already sold from it.
func (v views) storage(s model.Storage, sold decimal.Decimal) dto.StorageResponse {
	exp := v.calc.Expiry(s, v.clock())
	remaining := s.Quantity.Sub(sold)
	return dto.StorageResponse{
		ID:                      s.ID,
		ContainerID:             s.ContainerID,
		MillingID:               s.MillingID,
		Quantity:                s.Quantity,
		QuantityLiters:          v.calc.Liters(s.Quantity),
		StorageDate:             formatDate(s.StorageDate),
		MaxShelfLifeDays:        s.MaxShelfLifeDays,
		PlantationSource:        s.PlantationSource,
		IsSold:                  s.IsSold,
		ExpiryDate:              formatDate(exp.ExpiryDate),
		DaysUntilExpiry:         exp.DaysUntilExpiry,
		IsNearExpiry:            exp.IsNearExpiry,
		IsExpired:               exp.IsExpired,
		TotalSold:               sold,
		RemainingQuantity:       remaining,
		RemainingQuantityLiters: v.calc.Liters(remaining),
		CreatedAt:               formatTimestamp(s.CreatedAt),
	}
}

// storageWithSales uses the preloaded Sales to compute what is left.
func (v views) storageWithSales(s model.Storage) dto.StorageResponse {
	return v.storage(s, valuation.TotalSold(s.Sales))
}

func (v views) sale(s model.Sale) dto.SaleResponse {
	resp := dto.SaleResponse{
		ID:                 s.ID,
		SaleDate:           formatDate(s.SaleDate),
		BuyerName:          s.BuyerName,
		StorageID:          s.StorageID,
		QuantitySold:       s.QuantitySold,
		QuantitySoldLiters: v.calc.Liters(s.QuantitySold),
		PricePerKg:         s.PricePerKg,
		TotalRevenue:       valuation.SaleRevenue(s),
		PaymentStatus:      s.PaymentStatus,
		IsPaymentPending:   s.IsPaymentPending(),
		CreatedAt:          formatTimestamp(s.CreatedAt),
	}
	if s.Storage != nil {
		resp.ContainerID = s.Storage.ContainerID
	}
	if s.PaymentDate != nil {
		d := formatDate(*s.PaymentDate)
		resp.PaymentDate = &d
	}
	return resp
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(valuation.DateLayout, value)
	if err != nil {
		return time.Time{}, invalid("%s must be a date in YYYY-MM-DD format", field)
	}
	return t, nil
}

func parseOptionalDate(field string, value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := parseDate(field, *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatDate(t time.Time) string { return t.Format(valuation.DateLayout) }

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
