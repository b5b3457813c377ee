package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

type MillingFilter struct {
	DateRange
	HarvestID *uint `form:"harvest_id"`
	Limit     int   `form:"limit,default=100" validate:"min=1,max=1000"`
}

// StorageFilter: Status is available | sold | all.
type StorageFilter struct {
	Status string `form:"status,default=all" validate:"oneof=available sold all"`
	Limit  int    `form:"limit,default=100"  validate:"min=1,max=1000"`
}

type SaleFilter struct {
	DateRange
	StorageID     *uint  `form:"storage_id"`
	PaymentStatus string `form:"payment_status"`
	Limit         int    `form:"limit,default=100" validate:"min=1,max=1000"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateMillingRequest struct {
	MillingDate   string          `json:"milling_date"   validate:"required,datetime=2006-01-02"`
	MillLocation  string          `json:"mill_location"  validate:"required,max=50"`
	HarvestID     *uint           `json:"harvest_id"`
	MillingCost   decimal.Decimal `json:"milling_cost"   validate:"gte=0"`
	OilYield      decimal.Decimal `json:"oil_yield"      validate:"gte=0"`
	TransportCost decimal.Decimal `json:"transport_cost" validate:"gte=0"`
	// PlantationSource labels the container when no harvest is linked
	PlantationSource string `json:"plantation_source" validate:"omitempty,max=50"`
	MaxShelfLifeDays *int   `json:"max_shelf_life_days" validate:"omitempty,min=1"`
}

type CreateSaleRequest struct {
	SaleDate      string          `json:"sale_date"      validate:"required,datetime=2006-01-02"`
	BuyerName     string          `json:"buyer_name"     validate:"required,max=100"`
	StorageID     uint            `json:"storage_id"     validate:"required"`
	QuantitySold  decimal.Decimal `json:"quantity_sold"  validate:"gt=0"`
	PricePerKg    decimal.Decimal `json:"price_per_kg"   validate:"gt=0"`
	PaymentStatus string          `json:"payment_status" validate:"required,max=20"`
	PaymentDate   *string         `json:"payment_date"   validate:"omitempty,datetime=2006-01-02"`
}

type UpdatePaymentRequest struct {
	PaymentStatus string  `json:"payment_status" validate:"required,max=20"`
	PaymentDate   *string `json:"payment_date"   validate:"omitempty,datetime=2006-01-02"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MillingResponse struct {
	ID             uint            `json:"id"`
	MillingDate    string          `json:"milling_date"`
	MillLocation   string          `json:"mill_location"`
	HarvestID      *uint           `json:"harvest_id"`
	MillingCost    decimal.Decimal `json:"milling_cost"`
	OilYield       decimal.Decimal `json:"oil_yield"`
	TransportCost  decimal.Decimal `json:"transport_cost"`
	OilYieldLiters decimal.Decimal `json:"oil_yield_liters"`
	FFBCost        decimal.Decimal `json:"ffb_cost"`
	TotalCost      decimal.Decimal `json:"total_cost"`
	CostPerKg      decimal.Decimal `json:"cost_per_kg"`
	CostPerLiter   decimal.Decimal `json:"cost_per_liter"`
	CreatedAt      string          `json:"created_at"`
}

type StorageResponse struct {
	ID                      uint            `json:"id"`
	ContainerID             string          `json:"container_id"`
	MillingID               uint            `json:"milling_id"`
	Quantity                decimal.Decimal `json:"quantity"`
	QuantityLiters          decimal.Decimal `json:"quantity_liters"`
	StorageDate             string          `json:"storage_date"`
	MaxShelfLifeDays        int             `json:"max_shelf_life_days"`
	PlantationSource        string          `json:"plantation_source"`
	IsSold                  bool            `json:"is_sold"`
	ExpiryDate              string          `json:"expiry_date"`
	DaysUntilExpiry         int             `json:"days_until_expiry"`
	IsNearExpiry            bool            `json:"is_near_expiry"`
	IsExpired               bool            `json:"is_expired"`
	TotalSold               decimal.Decimal `json:"total_sold"`
	RemainingQuantity       decimal.Decimal `json:"remaining_quantity"`
	RemainingQuantityLiters decimal.Decimal `json:"remaining_quantity_liters"`
	CreatedAt               string          `json:"created_at"`
}

type SaleResponse struct {
	ID                 uint            `json:"id"`
	SaleDate           string          `json:"sale_date"`
	BuyerName          string          `json:"buyer_name"`
	StorageID          uint            `json:"storage_id"`
	ContainerID        string          `json:"container_id,omitempty"`
	QuantitySold       decimal.Decimal `json:"quantity_sold"`
	QuantitySoldLiters decimal.Decimal `json:"quantity_sold_liters"`
	PricePerKg         decimal.Decimal `json:"price_per_kg"`
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	PaymentStatus      string          `json:"payment_status"`
	PaymentDate        *string         `json:"payment_date"`
	IsPaymentPending   bool            `json:"is_payment_pending"`
	CreatedAt          string          `json:"created_at"`
}

// MillingCreatedResponse returns the run together with the container it provisioned.
type MillingCreatedResponse struct {
	Milling MillingResponse `json:"milling"`
	Storage StorageResponse `json:"storage"`
}

type SaleCreatedResponse struct {
	Sale               SaleResponse    `json:"sale"`
	StorageRemaining   decimal.Decimal `json:"storage_remaining"`
	ContainerFullySold bool            `json:"container_fully_sold"`
}

type AvailableStorageResponse struct {
	Inventory     []StorageResponse `json:"inventory"`
	TotalQuantity decimal.Decimal   `json:"total_quantity"`
}

type StorageAlertsResponse struct {
	NearExpiry  []StorageResponse `json:"near_expiry"`
	Expired     []StorageResponse `json:"expired"`
	TotalAlerts int               `json:"total_alerts"`
}
