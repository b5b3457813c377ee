package repository

import (
	"context"

	"github.com/Zeek-James/pem-zee/internal/dto"
	"github.com/Zeek-James/pem-zee/internal/model"

	"gorm.io/gorm"
)

type HarvestRepository interface {
	Create(ctx context.Context, h *model.Harvest) error
	FindByID(ctx context.Context, id uint) (*model.Harvest, error)
	FindByIDTx(ctx context.Context, tx *gorm.DB, id uint) (*model.Harvest, error)
	// MilledIDs returns which of the given harvests already have a milling run.
	MilledIDs(ctx context.Context, ids []uint) (map[uint]bool, error)
	List(ctx context.Context, filter dto.HarvestFilter) ([]model.Harvest, error)
	All(ctx context.Context) ([]model.Harvest, error)
}

type harvestRepo struct{ db *gorm.DB }

func NewHarvestRepository(db *gorm.DB) HarvestRepository { return &harvestRepo{db: db} }

func (r *harvestRepo) Create(ctx context.Context, h *model.Harvest) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *harvestRepo) FindByID(ctx context.Context, id uint) (*model.Harvest, error) {
	return r.FindByIDTx(ctx, r.db, id)
}

func (r *harvestRepo) FindByIDTx(ctx context.Context, tx *gorm.DB, id uint) (*model.Harvest, error) {
	var h model.Harvest
	err := tx.WithContext(ctx).First(&h, id).Error
	return &h, err
}

func (r *harvestRepo) MilledIDs(ctx context.Context, ids []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var milled []uint
	err := r.db.WithContext(ctx).Model(&model.Milling{}).
		Where("harvest_id IN ?", ids).
		Distinct().Pluck("harvest_id", &milled).Error
	for _, id := range milled {
		out[id] = true
	}
	return out, err
}

func (r *harvestRepo) List(ctx context.Context, filter dto.HarvestFilter) ([]model.Harvest, error) {
	var harvests []model.Harvest
	q := applyDateRange(r.db.WithContext(ctx).Model(&model.Harvest{}), "harvest_date", filter.DateRange)
	if filter.Plantation != "" {
		q = q.Where("plantation = ?", filter.Plantation)
	}
	err := q.Order("harvest_date DESC, id DESC").Limit(filter.Limit).Find(&harvests).Error
	return harvests, err
}

func (r *harvestRepo) All(ctx context.Context) ([]model.Harvest, error) {
	var harvests []model.Harvest
	err := r.db.WithContext(ctx).Order("id").Find(&harvests).Error
	return harvests, err
}
