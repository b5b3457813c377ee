package service

import (
	"context"
	"strings"
	"time"

	"github.com/Zeek-James/pem-zee/internal/dto"
	"github.com/Zeek-James/pem-zee/internal/model"
	"github.com/Zeek-James/pem-zee/internal/repository"
	"github.com/Zeek-James/pem-zee/internal/valuation"
)

// HarvestService records FFB intake. Harvests are never updated or deleted.
type HarvestService interface {
	Create(ctx context.Context, userID *uint, req dto.CreateHarvestRequest) (*dto.HarvestResponse, error)
	Get(ctx context.Context, id uint) (*dto.HarvestResponse, error)
	List(ctx context.Context, filter dto.HarvestFilter) ([]dto.HarvestResponse, error)
}

type harvestService struct {
	repo  repository.HarvestRepository
	cache Cache
	views
}

func NewHarvestService(repo repository.HarvestRepository, calc valuation.Calculator, cache Cache, clock func() time.Time) HarvestService {
	if clock == nil {
		clock = time.Now
	}
	return &harvestService{repo: repo, cache: cacheOrNoop(cache), views: views{calc: calc, clock: clock}}
}

func (s *harvestService) Create(ctx context.Context, userID *uint, req dto.CreateHarvestRequest) (*dto.HarvestResponse, error) {
	harvestDate, err := parseDate("harvest_date", req.HarvestDate)
	if err != nil {
		return nil, err
	}
	if req.NumBunches < 0 {
		return nil, invalid("num_bunches cannot be negative")
	}
	req.WeightPerBunch = req.WeightPerBunch.Round(model.WeightScale)
	if !req.WeightPerBunch.IsPositive() {
		return nil, invalid("weight_per_bunch must be at least 0.001 kg")
	}
	if req.PurchasePrice != nil {
		price := req.PurchasePrice.Round(model.MoneyScale)
		req.PurchasePrice = &price
	}
	if req.PurchasePrice != nil && req.PurchasePrice.IsNegative() {
		return nil, invalid("purchase_price cannot be negative")
	}

	h := &model.Harvest{
		HarvestDate:    harvestDate,
		Plantation:     strings.TrimSpace(req.Plantation),
		NumBunches:     req.NumBunches,
		WeightPerBunch: req.WeightPerBunch,
		Ripeness:       strings.ToLower(req.Ripeness),
		IsPurchased:    req.IsPurchased,
		SupplierName:   req.SupplierName,
		PurchasePrice:  req.PurchasePrice,
		CreatedBy:      userID,
	}
	if err := s.repo.Create(ctx, h); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)

	resp := s.harvest(*h)
	return &resp, nil
}

func (s *harvestService) Get(ctx context.Context, id uint) (*dto.HarvestResponse, error) {
	h, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, notFound("Harvest %d not found", id)
		}
		return nil, err
	}
	resp := s.harvest(*h)
	return &resp, nil
}

func (s *harvestService) List(ctx context.Context, filter dto.HarvestFilter) ([]dto.HarvestResponse, error) {
	harvests, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.HarvestResponse, 0, len(harvests))
	for _, h := range harvests {
		out = append(out, s.harvest(h))
	}
	return out, nil
}
