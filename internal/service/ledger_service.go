package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Zeek-James/pem-zee/internal/dto"
	"github.com/Zeek-James/pem-zee/internal/model"
	"github.com/Zeek-James/pem-zee/internal/repository"
	"github.com/Zeek-James/pem-zee/internal/valuation"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// maxSaleAttempts bounds how often a sale is re-run after losing a lock or
// serialization race.
const maxSaleAttempts = 3

const unknownPlantation = "Unknown"

// LedgerService owns the milling → storage → sale chain: every container is
// provisioned together with its milling run and no sale may take a container
// below zero.
type LedgerService interface {
	CreateMilling(ctx context.Context, req dto.CreateMillingRequest) (*dto.MillingCreatedResponse, error)
	GetMilling(ctx context.Context, id uint) (*dto.MillingResponse, error)
	ListMilling(ctx context.Context, filter dto.MillingFilter) ([]dto.MillingResponse, error)

	GetStorage(ctx context.Context, id uint) (*dto.StorageResponse, error)
	ListStorage(ctx context.Context, filter dto.StorageFilter) ([]dto.StorageResponse, error)
	ListAvailableStorage(ctx context.Context) (*dto.AvailableStorageResponse, error)
	StorageAlerts(ctx context.Context) (*dto.StorageAlertsResponse, error)

	CreateSale(ctx context.Context, req dto.CreateSaleRequest) (*dto.SaleCreatedResponse, error)
	UpdatePaymentStatus(ctx context.Context, saleID uint, req dto.UpdatePaymentRequest) (*dto.SaleResponse, error)
	GetSale(ctx context.Context, id uint) (*dto.SaleResponse, error)
	ListSales(ctx context.Context, filter dto.SaleFilter) ([]dto.SaleResponse, error)
}

type ledgerService struct {
	tx       repository.Transactor
	harvests repository.HarvestRepository
	millings repository.MillingRepository
	storages repository.StorageRepository
	sales    repository.SaleRepository
	cache    Cache
	views
}

func NewLedgerService(
	tx repository.Transactor,
	harvests repository.HarvestRepository,
	millings repository.MillingRepository,
	storages repository.StorageRepository,
	sales repository.SaleRepository,
	calc valuation.Calculator,
	cache Cache,
	clock func() time.Time,
) LedgerService {
	if clock == nil {
		clock = time.Now
	}
	return &ledgerService{
		tx:       tx,
		harvests: harvests,
		millings: millings,
		storages: storages,
		sales:    sales,
		cache:    cacheOrNoop(cache),
		views:    views{calc: calc, clock: clock},
	}
}

// ── CreateMilling ─────────────────────────────────────────────────────────────
// One transaction:
//   1. Load the linked harvest (if any); its plantation labels the container
//   2. Insert the milling run to obtain its id
//   3. Insert the storage container CPO<id> holding the whole oil yield
// A failure at any step rolls back both rows.

func (s *ledgerService) CreateMilling(ctx context.Context, req dto.CreateMillingRequest) (*dto.MillingCreatedResponse, error) {
	millingDate, err := parseDate("milling_date", req.MillingDate)
	if err != nil {
		return nil, err
	}
	req.OilYield = req.OilYield.Round(model.WeightScale)
	req.MillingCost = req.MillingCost.Round(model.MoneyScale)
	req.TransportCost = req.TransportCost.Round(model.MoneyScale)
	if req.OilYield.IsNegative() || req.MillingCost.IsNegative() || req.TransportCost.IsNegative() {
		return nil, invalid("Costs and oil yield cannot be negative")
	}
	shelfLife := s.calc.Params().DefaultShelfLife
	if req.MaxShelfLifeDays != nil {
		shelfLife = *req.MaxShelfLifeDays
	}

	var (
		milling model.Milling
		storage model.Storage
	)
	err = s.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		source := strings.TrimSpace(req.PlantationSource)
		if source == "" {
			source = unknownPlantation
		}
		if req.HarvestID != nil {
			h, err := s.harvests.FindByIDTx(ctx, tx, *req.HarvestID)
			if err != nil {
				if repository.IsNotFound(err) {
					return notFound("Harvest %d not found", *req.HarvestID)
				}
				return fmt.Errorf("load harvest: %w", err)
			}
			milling.Harvest = h
			source = h.Plantation
		}

		milling.MillingDate = millingDate
		milling.MillLocation = req.MillLocation
		milling.HarvestID = req.HarvestID
		milling.MillingCost = req.MillingCost
		milling.OilYield = req.OilYield
		milling.TransportCost = req.TransportCost
		if err := s.millings.CreateTx(ctx, tx, &milling); err != nil {
			return fmt.Errorf("create milling: %w", err)
		}

		storage = model.Storage{
			ContainerID:      valuation.ContainerID(milling.ID),
			MillingID:        milling.ID,
			Quantity:         milling.OilYield,
			StorageDate:      milling.MillingDate,
			MaxShelfLifeDays: shelfLife,
			PlantationSource: source,
		}
		if err := s.storages.CreateTx(ctx, tx, &storage); err != nil {
			return integrity("Storage container could not be created; milling record was not saved", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)

	log.Info().
		Uint("milling_id", milling.ID).
		Str("container_id", storage.ContainerID).
		Str("oil_yield", milling.OilYield.String()).
		Msg("milling recorded")

	return &dto.MillingCreatedResponse{
		Milling: s.milling(milling),
		Storage: s.storage(storage, decimal.Zero),
	}, nil
}

func (s *ledgerService) GetMilling(ctx context.Context, id uint) (*dto.MillingResponse, error) {
	m, err := s.millings.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, notFound("Milling record %d not found", id)
		}
		return nil, err
	}
	resp := s.milling(*m)
	return &resp, nil
}

func (s *ledgerService) ListMilling(ctx context.Context, filter dto.MillingFilter) ([]dto.MillingResponse, error) {
	records, err := s.millings.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MillingResponse, 0, len(records))
	for _, m := range records {
		out = append(out, s.milling(m))
	}
	return out, nil
}

// ── Storage reads ─────────────────────────────────────────────────────────────

func (s *ledgerService) GetStorage(ctx context.Context, id uint) (*dto.StorageResponse, error) {
	st, err := s.storages.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, notFound("Storage container %d not found", id)
		}
		return nil, err
	}
	resp := s.storageWithSales(*st)
	return &resp, nil
}

func (s *ledgerService) ListStorage(ctx context.Context, filter dto.StorageFilter) ([]dto.StorageResponse, error) {
	records, err := s.storages.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StorageResponse, 0, len(records))
	for _, st := range records {
		out = append(out, s.storageWithSales(st))
	}
	return out, nil
}

// ListAvailableStorage returns unsold containers that still hold oil.
func (s *ledgerService) ListAvailableStorage(ctx context.Context) (*dto.AvailableStorageResponse, error) {
	records, err := s.storages.Unsold(ctx)
	if err != nil {
		return nil, err
	}
	resp := &dto.AvailableStorageResponse{Inventory: []dto.StorageResponse{}, TotalQuantity: decimal.Zero}
	for _, st := range records {
		view := s.storageWithSales(st)
		if !view.RemainingQuantity.IsPositive() {
			continue
		}
		resp.Inventory = append(resp.Inventory, view)
		resp.TotalQuantity = resp.TotalQuantity.Add(view.RemainingQuantity)
	}
	return resp, nil
}

func (s *ledgerService) StorageAlerts(ctx context.Context) (*dto.StorageAlertsResponse, error) {
	records, err := s.storages.Unsold(ctx)
	if err != nil {
		return nil, err
	}
	resp := &dto.StorageAlertsResponse{NearExpiry: []dto.StorageResponse{}, Expired: []dto.StorageResponse{}}
	for _, st := range records {
		view := s.storageWithSales(st)
		switch {
		case view.IsExpired:
			resp.Expired = append(resp.Expired, view)
		case view.IsNearExpiry:
			resp.NearExpiry = append(resp.NearExpiry, view)
		}
	}
	resp.TotalAlerts = len(resp.NearExpiry) + len(resp.Expired)
	return resp, nil
}

// ── CreateSale ────────────────────────────────────────────────────────────────
// One transaction holding the container row lock throughout:
//   1. SELECT ... FOR UPDATE the container
//   2. remaining = quantity − Σ sales
//   3. Reject an empty container or a quantity above remaining
//   4. Insert the sale, recompute remaining, flag the container sold at zero
// Lock and serialization failures are retried from step 1.

func (s *ledgerService) CreateSale(ctx context.Context, req dto.CreateSaleRequest) (*dto.SaleCreatedResponse, error) {
	req.QuantitySold = req.QuantitySold.Round(model.WeightScale)
	req.PricePerKg = req.PricePerKg.Round(model.MoneyScale)
	if !req.QuantitySold.IsPositive() {
		return nil, invalid("quantity_sold must be at least 0.001 kg")
	}
	if !req.PricePerKg.IsPositive() {
		return nil, invalid("price_per_kg must be at least 0.01")
	}
	saleDate, err := parseDate("sale_date", req.SaleDate)
	if err != nil {
		return nil, err
	}
	paidOn, err := parseOptionalDate("payment_date", req.PaymentDate)
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		resp, err := s.createSaleOnce(ctx, req, saleDate, paidOn)
		if err == nil {
			s.cache.Invalidate(ctx)
			return resp, nil
		}
		if !repository.IsRetryable(err) {
			return nil, err
		}
		if attempt >= maxSaleAttempts {
			return nil, conflict("Storage container is busy with another sale, please retry", err)
		}
		log.Warn().Err(err).
			Uint("storage_id", req.StorageID).
			Int("attempt", attempt).
			Msg("sale transaction lost a race, retrying")
	}
}

func (s *ledgerService) createSaleOnce(ctx context.Context, req dto.CreateSaleRequest, saleDate time.Time, paidOn *time.Time) (*dto.SaleCreatedResponse, error) {
	var (
		sale      model.Sale
		remaining decimal.Decimal
		soldOut   bool
	)
	err := s.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		st, err := s.storages.LockByIDTx(ctx, tx, req.StorageID)
		if err != nil {
			if repository.IsNotFound(err) {
				return notFound("Storage container %d not found", req.StorageID)
			}
			return fmt.Errorf("lock storage: %w", err)
		}

		sold, err := s.sales.SumSoldTx(ctx, tx, st.ID)
		if err != nil {
			return fmt.Errorf("sum sales: %w", err)
		}
		remaining = st.Quantity.Sub(sold)
		if !remaining.IsPositive() {
			empty := decimal.Zero
			return &LedgerError{
				Kind:      ErrValidation,
				Message:   "This storage container is empty (all quantity sold)",
				Available: &empty,
			}
		}
		if req.QuantitySold.GreaterThan(remaining) {
			available := remaining.Round(2)
			return &LedgerError{
				Kind: ErrValidation,
				Message: fmt.Sprintf("Cannot sell %skg. Only %skg available in this container.",
					req.QuantitySold.String(), remaining.StringFixed(2)),
				Available: &available,
			}
		}

		sale = model.Sale{
			SaleDate:      saleDate,
			BuyerName:     req.BuyerName,
			StorageID:     st.ID,
			QuantitySold:  req.QuantitySold,
			PricePerKg:    req.PricePerKg,
			PaymentStatus: model.CanonicalPaymentStatus(req.PaymentStatus),
			PaymentDate:   paidOn,
		}
		if err := s.sales.CreateTx(ctx, tx, &sale); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}

		sold, err = s.sales.SumSoldTx(ctx, tx, st.ID)
		if err != nil {
			return fmt.Errorf("sum sales: %w", err)
		}
		remaining = st.Quantity.Sub(sold)
		if !remaining.IsPositive() {
			soldOut = true
			if err := s.storages.MarkSoldTx(ctx, tx, st.ID); err != nil {
				return fmt.Errorf("mark storage sold: %w", err)
			}
		}
		sale.Storage = st
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &dto.SaleCreatedResponse{
		Sale:               s.sale(sale),
		StorageRemaining:   remaining,
		ContainerFullySold: soldOut,
	}, nil
}

// ── Payments ──────────────────────────────────────────────────────────────────

func (s *ledgerService) UpdatePaymentStatus(ctx context.Context, saleID uint, req dto.UpdatePaymentRequest) (*dto.SaleResponse, error) {
	status := model.CanonicalPaymentStatus(req.PaymentStatus)
	if status == "" {
		return nil, invalid("payment_status is required")
	}
	paidOn, err := parseOptionalDate("payment_date", req.PaymentDate)
	if err != nil {
		return nil, err
	}
	if _, err := s.sales.FindByID(ctx, saleID); err != nil {
		if repository.IsNotFound(err) {
			return nil, notFound("Sale %d not found", saleID)
		}
		return nil, err
	}
	if err := s.sales.UpdatePayment(ctx, saleID, status, paidOn); err != nil {
		return nil, fmt.Errorf("update payment: %w", err)
	}
	s.cache.Invalidate(ctx)

	updated, err := s.sales.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	resp := s.sale(*updated)
	return &resp, nil
}

func (s *ledgerService) GetSale(ctx context.Context, id uint) (*dto.SaleResponse, error) {
	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, notFound("Sale %d not found", id)
		}
		return nil, err
	}
	resp := s.sale(*sale)
	return &resp, nil
}

func (s *ledgerService) ListSales(ctx context.Context, filter dto.SaleFilter) ([]dto.SaleResponse, error) {
	records, err := s.sales.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SaleResponse, 0, len(records))
	for _, sale := range records {
		out = append(out, s.sale(sale))
	}
	return out, nil
}

// IsOversell reports whether err is a rejected sale that carries the amount
// still available.
func IsOversell(err error) (decimal.Decimal, bool) {
	var le *LedgerError
	if errors.As(err, &le) && le.Available != nil {
		return *le.Available, true
	}
	return decimal.Zero, false
}
