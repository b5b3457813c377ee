package service_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Zeek-James/pem-zee/internal/dto"
	"github.com/Zeek-James/pem-zee/internal/model"
	"github.com/Zeek-James/pem-zee/internal/repository"
	"github.com/Zeek-James/pem-zee/internal/valuation"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory ledger ─────────────────────────────────────────────────────────

// memDB holds every ledger table in memory. memTx snapshots it before a unit
// of work and restores the snapshot when the work fails.
type memDB struct {
	mu       sync.Mutex
	harvests map[uint]model.Harvest
	millings map[uint]model.Milling
	storages map[uint]model.Storage
	sales    map[uint]model.Sale
	nextID   map[string]uint

	failStorageCreate error
	lockErrs          []error // returned by LockByIDTx one at a time
	lockCalls         int
}

func newMemDB() *memDB {
	return &memDB{
		harvests: map[uint]model.Harvest{},
		millings: map[uint]model.Milling{},
		storages: map[uint]model.Storage{},
		sales:    map[uint]model.Sale{},
		nextID:   map[string]uint{},
	}
}

func (db *memDB) id(table string) uint {
	db.nextID[table]++
	return db.nextID[table]
}

type memState struct {
	harvests map[uint]model.Harvest
	millings map[uint]model.Milling
	storages map[uint]model.Storage
	sales    map[uint]model.Sale
	nextID   map[string]uint
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (db *memDB) save() memState {
	db.mu.Lock()
	defer db.mu.Unlock()
	return memState{copyMap(db.harvests), copyMap(db.millings), copyMap(db.storages), copyMap(db.sales), copyMap(db.nextID)}
}

func (db *memDB) restore(s memState) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.harvests, db.millings, db.storages, db.sales, db.nextID = s.harvests, s.millings, s.storages, s.sales, s.nextID
}

// addHarvest, addStorage and addSale seed rows directly.
func (db *memDB) addHarvest(h model.Harvest) model.Harvest {
	db.mu.Lock()
	defer db.mu.Unlock()
	h.ID = db.id("harvests")
	db.harvests[h.ID] = h
	return h
}

func (db *memDB) addStorage(qty string, storageDate time.Time) model.Storage {
	db.mu.Lock()
	defer db.mu.Unlock()
	m := model.Milling{ID: db.id("milling"), MillingDate: storageDate, MillLocation: "Mill", OilYield: decimal.RequireFromString(qty)}
	db.millings[m.ID] = m
	s := model.Storage{
		ID:               db.id("storage"),
		MillingID:        m.ID,
		Quantity:         decimal.RequireFromString(qty),
		StorageDate:      storageDate,
		MaxShelfLifeDays: 30,
		PlantationSource: "Estate A",
	}
	s.ContainerID = valuation.ContainerID(s.ID)
	db.storages[s.ID] = s
	return s
}

func (db *memDB) addSale(s model.Sale) model.Sale {
	db.mu.Lock()
	defer db.mu.Unlock()
	s.ID = db.id("sales")
	db.sales[s.ID] = s
	return s
}

func (db *memDB) salesFor(storageID uint) []model.Sale {
	var out []model.Sale
	for _, s := range db.sales {
		if s.StorageID == storageID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedValues[V any](m map[uint]V) []V {
	keys := make([]uint, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	out := make([]V, 0, len(m))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

// ── Transactor ───────────────────────────────────────────────────────────────

// memTx serialises units of work, which is what the storage row lock gives
// the real ledger.
type memTx struct {
	mu        sync.Mutex
	db        *memDB
	rollbacks int
}

func (t *memTx) WithinTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	saved := t.db.save()
	if err := fn(nil); err != nil {
		t.db.restore(saved)
		t.rollbacks++
		return err
	}
	return nil
}

var _ repository.Transactor = (*memTx)(nil)

// ── Repositories ─────────────────────────────────────────────────────────────

type harvestStub struct{ db *memDB }

func (r harvestStub) Create(_ context.Context, h *model.Harvest) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	h.ID = r.db.id("harvests")
	h.CreatedAt = time.Now()
	r.db.harvests[h.ID] = *h
	return nil
}

func (r harvestStub) FindByID(ctx context.Context, id uint) (*model.Harvest, error) {
	return r.FindByIDTx(ctx, nil, id)
}

func (r harvestStub) FindByIDTx(_ context.Context, _ *gorm.DB, id uint) (*model.Harvest, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	h, ok := r.db.harvests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &h, nil
}

func (r harvestStub) MilledIDs(_ context.Context, ids []uint) (map[uint]bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := map[uint]bool{}
	for _, m := range r.db.millings {
		if m.HarvestID != nil {
			out[*m.HarvestID] = true
		}
	}
	return out, nil
}

func (r harvestStub) List(_ context.Context, f dto.HarvestFilter) ([]model.Harvest, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []model.Harvest
	for _, h := range sortedValues(r.db.harvests) {
		if f.Plantation == "" || strings.EqualFold(h.Plantation, f.Plantation) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r harvestStub) All(ctx context.Context) ([]model.Harvest, error) {
	return r.List(ctx, dto.HarvestFilter{})
}

var _ repository.HarvestRepository = harvestStub{}

type millingStub struct{ db *memDB }

func (r millingStub) CreateTx(_ context.Context, _ *gorm.DB, m *model.Milling) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	m.ID = r.db.id("milling")
	m.CreatedAt = time.Now()
	stored := *m
	stored.Harvest = nil
	r.db.millings[m.ID] = stored
	return nil
}

func (r millingStub) FindByID(_ context.Context, id uint) (*model.Milling, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	m, ok := r.db.millings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if m.HarvestID != nil {
		if h, ok := r.db.harvests[*m.HarvestID]; ok {
			m.Harvest = &h
		}
	}
	return &m, nil
}

func (r millingStub) List(_ context.Context, _ dto.MillingFilter) ([]model.Milling, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return sortedValues(r.db.millings), nil
}

func (r millingStub) All(ctx context.Context) ([]model.Milling, error) {
	return r.List(ctx, dto.MillingFilter{})
}

var _ repository.MillingRepository = millingStub{}

type storageStub struct{ db *memDB }

func (r storageStub) CreateTx(_ context.Context, _ *gorm.DB, s *model.Storage) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failStorageCreate != nil {
		return r.db.failStorageCreate
	}
	s.ID = r.db.id("storage")
	s.CreatedAt = time.Now()
	r.db.storages[s.ID] = *s
	return nil
}

func (r storageStub) LockByIDTx(_ context.Context, _ *gorm.DB, id uint) (*model.Storage, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.lockCalls++
	if len(r.db.lockErrs) > 0 {
		err := r.db.lockErrs[0]
		r.db.lockErrs = r.db.lockErrs[1:]
		return nil, err
	}
	s, ok := r.db.storages[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

func (r storageStub) MarkSoldTx(_ context.Context, _ *gorm.DB, id uint) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s := r.db.storages[id]
	s.IsSold = true
	r.db.storages[id] = s
	return nil
}

func (r storageStub) FindByID(_ context.Context, id uint) (*model.Storage, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.storages[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	s.Sales = r.db.salesFor(id)
	return &s, nil
}

func (r storageStub) List(_ context.Context, f dto.StorageFilter) ([]model.Storage, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []model.Storage
	for _, s := range sortedValues(r.db.storages) {
		if (f.Status == "available" && s.IsSold) || (f.Status == "sold" && !s.IsSold) {
			continue
		}
		s.Sales = r.db.salesFor(s.ID)
		out = append(out, s)
	}
	return out, nil
}

func (r storageStub) Unsold(ctx context.Context) ([]model.Storage, error) {
	return r.List(ctx, dto.StorageFilter{Status: "available"})
}

func (r storageStub) All(ctx context.Context) ([]model.Storage, error) {
	return r.List(ctx, dto.StorageFilter{Status: "all"})
}

var _ repository.StorageRepository = storageStub{}

type saleStub struct{ db *memDB }

func (r saleStub) CreateTx(_ context.Context, _ *gorm.DB, s *model.Sale) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s.ID = r.db.id("sales")
	s.CreatedAt = time.Now()
	r.db.sales[s.ID] = *s
	return nil
}

func (r saleStub) SumSoldTx(_ context.Context, _ *gorm.DB, storageID uint) (decimal.Decimal, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return valuation.TotalSold(r.db.salesFor(storageID)), nil
}

func (r saleStub) FindByID(_ context.Context, id uint) (*model.Sale, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if st, ok := r.db.storages[s.StorageID]; ok {
		s.Storage = &st
	}
	return &s, nil
}

func (r saleStub) UpdatePayment(_ context.Context, id uint, status string, paidOn *time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.sales[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.PaymentStatus = status
	s.PaymentDate = paidOn
	r.db.sales[id] = s
	return nil
}

func (r saleStub) List(_ context.Context, f dto.SaleFilter) ([]model.Sale, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []model.Sale
	for _, s := range sortedValues(r.db.sales) {
		if f.PaymentStatus != "" && !strings.EqualFold(s.PaymentStatus, f.PaymentStatus) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (r saleStub) All(ctx context.Context) ([]model.Sale, error) {
	return r.List(ctx, dto.SaleFilter{})
}

var _ repository.SaleRepository = saleStub{}

// ── Cache ────────────────────────────────────────────────────────────────────

// countingCache stores values in memory under generation-pinned slots and
// counts invalidations.
type countingCache struct {
	mu            sync.Mutex
	gen           int
	values        map[string]interface{}
	hits          int
	invalidations int
}

func newCountingCache() *countingCache { return &countingCache{values: map[string]interface{}{}} }

func (c *countingCache) GetJSON(_ context.Context, name string, dest interface{}) (string, bool) {
	c.mu.Lock()
	slot := fmt.Sprintf("%d:%s", c.gen, name)
	v, ok := c.values[slot]
	if ok {
		ok = fill(dest, v)
	}
	if ok {
		c.hits++
	}
	c.mu.Unlock()
	return slot, ok
}

func fill(dest, v interface{}) bool {
	switch d := dest.(type) {
	case *dto.DashboardSummary:
		*d = *v.(*dto.DashboardSummary)
	case *dto.AlertsResponse:
		*d = *v.(*dto.AlertsResponse)
	case *[]dto.ProfitTrendPoint:
		*d = v.([]dto.ProfitTrendPoint)
	default:
		return false
	}
	return true
}

func (c *countingCache) SetJSON(_ context.Context, slot string, v interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[slot] = v
}

func (c *countingCache) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.invalidations++
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func uintp(v uint) *uint { return &v }
