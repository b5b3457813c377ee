//go:build integration

package service_test

// Runs the ledger against a real Postgres via testcontainers:
//   go test -tags integration ./internal/service/... -run Integration -v

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Zeek-James/pem-zee/internal/infra"
	"github.com/Zeek-James/pem-zee/internal/model"
	"github.com/Zeek-James/pem-zee/internal/repository"
	"github.com/Zeek-James/pem-zee/internal/service"
	"github.com/Zeek-James/pem-zee/internal/valuation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"
)

type pgLedger struct {
	db       *gorm.DB
	harvests repository.HarvestRepository
	svc      service.LedgerService
}

func setupPostgresLedger(t *testing.T) *pgLedger {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("palm_oil_test"),
		tcPostgres.WithUsername("palm"),
		tcPostgres.WithPassword("palm"),
		testcontainers.WithWaitStrategy(tcPostgres.BasicWaitStrategies()...),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := infra.NewDatabase(dsn, 200*time.Millisecond)
	require.NoError(t, err)
	// A second run must be a no-op.
	require.NoError(t, infra.RunMigrations(db))

	harvests := repository.NewHarvestRepository(db)
	svc := service.NewLedgerService(
		repository.NewTransactor(db),
		harvests,
		repository.NewMillingRepository(db),
		repository.NewStorageRepository(db),
		repository.NewSaleRepository(db),
		valuation.NewCalculator(valuation.DefaultParams()),
		nil,
		nil,
	)
	return &pgLedger{db: db, harvests: harvests, svc: svc}
}

func TestIntegration_MillingToSellOut(t *testing.T) {
	env := setupPostgresLedger(t)
	ctx := context.Background()

	h := &model.Harvest{
		HarvestDate:    day("2024-03-01"),
		Plantation:     "Owerri",
		NumBunches:     10,
		WeightPerBunch: dec("16"),
		Ripeness:       "ripe",
	}
	require.NoError(t, env.harvests.Create(ctx, h))

	created, err := env.svc.CreateMilling(ctx, millingReq(&h.ID, "32"))
	require.NoError(t, err)
	assert.Equal(t, valuation.ContainerID(created.Milling.ID), created.Storage.ContainerID)
	assert.Equal(t, "Owerri", created.Storage.PlantationSource)

	storageID := created.Storage.ID
	_, err = env.svc.CreateSale(ctx, saleReq(storageID, "20"))
	require.NoError(t, err)

	_, err = env.svc.CreateSale(ctx, saleReq(storageID, "13"))
	available, ok := service.IsOversell(err)
	require.True(t, ok, "expected oversell, got %v", err)
	assert.Equal(t, "12.00", available.StringFixed(2))

	last, err := env.svc.CreateSale(ctx, saleReq(storageID, "12"))
	require.NoError(t, err)
	assert.True(t, last.ContainerFullySold)

	avail, err := env.svc.ListAvailableStorage(ctx)
	require.NoError(t, err)
	assert.Empty(t, avail.Inventory)
}

func TestIntegration_ConcurrentSalesNeverOversell(t *testing.T) {
	env := setupPostgresLedger(t)
	ctx := context.Background()

	created, err := env.svc.CreateMilling(ctx, millingReq(nil, "25"))
	require.NoError(t, err)
	storageID := created.Storage.ID

	const buyers = 5
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	start := make(chan struct{})
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := env.svc.CreateSale(ctx, saleReq(storageID, "10"))
			if err != nil {
				return
			}
			mu.Lock()
			successes++
			mu.Unlock()
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 2, successes)

	var sold []model.Sale
	require.NoError(t, env.db.Where("storage_id = ?", storageID).Find(&sold).Error)
	total := valuation.TotalSold(sold)
	assert.True(t, total.LessThanOrEqual(dec("25")), total.String())

	got, err := env.svc.GetStorage(ctx, storageID)
	require.NoError(t, err)
	assert.Equal(t, "5.00", got.RemainingQuantity.StringFixed(2))
	assert.False(t, got.IsSold)
}

func TestIntegration_SubScaleInputs(t *testing.T) {
	env := setupPostgresLedger(t)
	ctx := context.Background()

	created, err := env.svc.CreateMilling(ctx, millingReq(nil, "12"))
	require.NoError(t, err)
	storageID := created.Storage.ID

	_, err = env.svc.CreateSale(ctx, saleReq(storageID, "0.0004"))
	require.ErrorIs(t, err, service.ErrValidation)

	resp, err := env.svc.CreateSale(ctx, saleReq(storageID, "11.9996"))
	require.NoError(t, err)
	assert.True(t, resp.ContainerFullySold)

	var stored model.Sale
	require.NoError(t, env.db.First(&stored, resp.Sale.ID).Error)
	assert.True(t, stored.QuantitySold.Equal(resp.Sale.QuantitySold), "%s vs %s", stored.QuantitySold, resp.Sale.QuantitySold)
	assert.True(t, resp.StorageRemaining.IsZero())
}

func TestIntegration_OneContainerPerMilling(t *testing.T) {
	env := setupPostgresLedger(t)
	ctx := context.Background()

	created, err := env.svc.CreateMilling(ctx, millingReq(nil, "40"))
	require.NoError(t, err)

	dup := model.Storage{
		ContainerID:      "CPO-DUP",
		MillingID:        created.Milling.ID,
		Quantity:         dec("1"),
		StorageDate:      day("2024-03-02"),
		MaxShelfLifeDays: 30,
		PlantationSource: "Unknown",
	}
	err = env.db.Create(&dup).Error
	require.Error(t, err)
	assert.True(t, repository.IsConstraintViolation(err), err)
}

func TestIntegration_UnknownHarvestLeavesNoRows(t *testing.T) {
	env := setupPostgresLedger(t)
	ctx := context.Background()

	_, err := env.svc.CreateMilling(ctx, millingReq(uintp(4242), "40"))
	require.ErrorIs(t, err, service.ErrNotFound)

	var millings, storages int64
	require.NoError(t, env.db.Model(&model.Milling{}).Count(&millings).Error)
	require.NoError(t, env.db.Model(&model.Storage{}).Count(&storages).Error)
	assert.Zero(t, millings)
	assert.Zero(t, storages)
}
