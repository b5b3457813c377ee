package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// DateRange is bound from ?from=YYYY-MM-DD&to=YYYY-MM-DD; both ends inclusive.
type DateRange struct {
	From string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `form:"to"   validate:"omitempty,datetime=2006-01-02"`
}

type HarvestFilter struct {
	DateRange
	Plantation string `form:"plantation"`
	Limit      int    `form:"limit,default=100" validate:"min=1,max=1000"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateHarvestRequest struct {
	HarvestDate    string          `json:"harvest_date"     validate:"required,datetime=2006-01-02"`
	Plantation     string          `json:"plantation"       validate:"required,max=50"`
	NumBunches     int             `json:"num_bunches"      validate:"min=0"`
	WeightPerBunch decimal.Decimal `json:"weight_per_bunch" validate:"gt=0"`
	Ripeness       string          `json:"ripeness"         validate:"required,oneof=ripe unripe overripe"`
	IsPurchased    bool            `json:"is_purchased"`
	SupplierName   *string         `json:"supplier_name"    validate:"omitempty,max=100"`
	// PurchasePrice is the total paid for the lot
	PurchasePrice *decimal.Decimal `json:"purchase_price" validate:"omitempty,gte=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type HarvestResponse struct {
	ID                     uint             `json:"id"`
	HarvestDate            string           `json:"harvest_date"`
	Plantation             string           `json:"plantation"`
	NumBunches             int              `json:"num_bunches"`
	WeightPerBunch         decimal.Decimal  `json:"weight_per_bunch"`
	Ripeness               string           `json:"ripeness"`
	IsPurchased            bool             `json:"is_purchased"`
	SupplierName           *string          `json:"supplier_name"`
	PurchasePrice          *decimal.Decimal `json:"purchase_price"`
	TotalWeight            decimal.Decimal  `json:"total_weight"`
	ExpectedOilYield       decimal.Decimal  `json:"expected_oil_yield"`
	ExpectedOilYieldLiters decimal.Decimal  `json:"expected_oil_yield_liters"`
	FFBCost                decimal.Decimal  `json:"ffb_cost"`
	CostPerKg              decimal.Decimal  `json:"cost_per_kg"`
	NeedsMillingAlert      bool             `json:"needs_milling_alert"`
	CreatedAt              string           `json:"created_at"`
}
