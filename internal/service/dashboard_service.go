package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Zeek-James/pem-zee/internal/dto"
	"github.com/Zeek-James/pem-zee/internal/repository"
	"github.com/Zeek-James/pem-zee/internal/valuation"
)

const (
	cacheKeySummary = "summary"
	cacheKeyTrends  = "profit-trends"
	cacheKeyAlerts  = "alerts"
)

// DashboardService serves the advisory read models: KPIs, profit trends and
// alerts. Results are read-committed and may lag concurrent writes by up to
// the cache TTL.
type DashboardService interface {
	Summary(ctx context.Context) (*dto.DashboardSummary, error)
	ProfitTrends(ctx context.Context) ([]dto.ProfitTrendPoint, error)
	Alerts(ctx context.Context) (*dto.AlertsResponse, error)
	Snapshot(ctx context.Context) (valuation.Snapshot, error)
}

type dashboardService struct {
	harvests repository.HarvestRepository
	millings repository.MillingRepository
	storages repository.StorageRepository
	sales    repository.SaleRepository
	cache    Cache
	views
}

func NewDashboardService(
	harvests repository.HarvestRepository,
	millings repository.MillingRepository,
	storages repository.StorageRepository,
	sales repository.SaleRepository,
	calc valuation.Calculator,
	cache Cache,
	clock func() time.Time,
) DashboardService {
	if clock == nil {
		clock = time.Now
	}
	return &dashboardService{
		harvests: harvests,
		millings: millings,
		storages: storages,
		sales:    sales,
		cache:    cacheOrNoop(cache),
		views:    views{calc: calc, clock: clock},
	}
}

func (s *dashboardService) Snapshot(ctx context.Context) (valuation.Snapshot, error) {
	var (
		snap valuation.Snapshot
		err  error
	)
	if snap.Harvests, err = s.harvests.All(ctx); err != nil {
		return snap, fmt.Errorf("load harvests: %w", err)
	}
	if snap.Millings, err = s.millings.All(ctx); err != nil {
		return snap, fmt.Errorf("load milling records: %w", err)
	}
	if snap.Storages, err = s.storages.All(ctx); err != nil {
		return snap, fmt.Errorf("load storage: %w", err)
	}
	if snap.Sales, err = s.sales.All(ctx); err != nil {
		return snap, fmt.Errorf("load sales: %w", err)
	}
	return snap, nil
}

func (s *dashboardService) Summary(ctx context.Context) (*dto.DashboardSummary, error) {
	var cached dto.DashboardSummary
	slot, hit := s.cache.GetJSON(ctx, cacheKeySummary, &cached)
	if hit {
		return &cached, nil
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	sum := s.calc.Summarize(snap)
	resp := &dto.DashboardSummary{
		TotalFFBHarvested:    sum.TotalFFBHarvested,
		TotalOilProduced:     sum.TotalOilProduced,
		TotalMillingCost:     sum.TotalMillingCost,
		TotalProductionCost:  sum.TotalProductionCost,
		TotalRevenue:         sum.TotalRevenue,
		TotalProfit:          sum.TotalProfit,
		TotalStorage:         sum.TotalStorage,
		PendingPaymentsCount: sum.PendingPaymentsCount,
		TotalPendingAmount:   sum.TotalPendingAmount,
		AverageOilYield:      sum.AverageOilYield,
	}
	s.cache.SetJSON(ctx, slot, resp)
	return resp, nil
}

func (s *dashboardService) ProfitTrends(ctx context.Context) ([]dto.ProfitTrendPoint, error) {
	var cached []dto.ProfitTrendPoint
	slot, hit := s.cache.GetJSON(ctx, cacheKeyTrends, &cached)
	if hit {
		return cached, nil
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	points := s.calc.ProfitTrends(snap)
	out := make([]dto.ProfitTrendPoint, 0, len(points))
	for _, p := range points {
		out = append(out, dto.ProfitTrendPoint{Date: p.Date, Cost: p.Cost, Revenue: p.Revenue, Profit: p.Profit})
	}
	s.cache.SetJSON(ctx, slot, out)
	return out, nil
}

func (s *dashboardService) Alerts(ctx context.Context) (*dto.AlertsResponse, error) {
	var cached dto.AlertsResponse
	slot, hit := s.cache.GetJSON(ctx, cacheKeyAlerts, &cached)
	if hit {
		return &cached, nil
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	alerts := s.calc.Alerts(snap, s.clock())
	resp := &dto.AlertsResponse{Alerts: make([]dto.AlertResponse, 0, len(alerts)), TotalCount: len(alerts)}
	for _, a := range alerts {
		resp.Alerts = append(resp.Alerts, dto.AlertResponse{
			Type:         a.Type,
			Severity:     a.Severity,
			Message:      a.Message,
			ReferencedID: a.ReferencedID,
			CurrentStock: a.CurrentStock,
		})
	}
	s.cache.SetJSON(ctx, slot, resp)
	return resp, nil
}
