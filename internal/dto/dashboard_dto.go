package dto

import "github.com/shopspring/decimal"

type DashboardSummary struct {
	TotalFFBHarvested    decimal.Decimal `json:"total_ffb_harvested"`
	TotalOilProduced     decimal.Decimal `json:"total_oil_produced"`
	TotalMillingCost     decimal.Decimal `json:"total_milling_cost"`
	TotalProductionCost  decimal.Decimal `json:"total_production_cost"`
	TotalRevenue         decimal.Decimal `json:"total_revenue"`
	TotalProfit          decimal.Decimal `json:"total_profit"`
	TotalStorage         decimal.Decimal `json:"total_storage"`
	PendingPaymentsCount int             `json:"pending_payments_count"`
	TotalPendingAmount   decimal.Decimal `json:"total_pending_amount"`
	AverageOilYield      decimal.Decimal `json:"average_oil_yield"`
}

type ProfitTrendPoint struct {
	Date    string          `json:"date"`
	Cost    decimal.Decimal `json:"cost"`
	Revenue decimal.Decimal `json:"revenue"`
	Profit  decimal.Decimal `json:"profit"`
}

// AlertResponse references exactly one of harvest, storage or sale, except
// for the low-stock alert which carries current_stock.
type AlertResponse struct {
	Type         string           `json:"type"`
	Severity     string           `json:"severity"`
	Message      string           `json:"message"`
	ReferencedID *uint            `json:"referenced_id,omitempty"`
	CurrentStock *decimal.Decimal `json:"current_stock,omitempty"`
}

type AlertsResponse struct {
	Alerts     []AlertResponse `json:"alerts"`
	TotalCount int             `json:"total_count"`
}
