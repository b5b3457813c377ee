package repository

import (
	"context"

	"github.com/Zeek-James/pem-zee/internal/dto"
	"github.com/Zeek-James/pem-zee/internal/model"

	"gorm.io/gorm"
)

type MillingRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, m *model.Milling) error
	FindByID(ctx context.Context, id uint) (*model.Milling, error)
	List(ctx context.Context, filter dto.MillingFilter) ([]model.Milling, error)
	All(ctx context.Context) ([]model.Milling, error)
}

type millingRepo struct{ db *gorm.DB }

func NewMillingRepository(db *gorm.DB) MillingRepository { return &millingRepo{db: db} }

func (r *millingRepo) CreateTx(ctx context.Context, tx *gorm.DB, m *model.Milling) error {
	return tx.WithContext(ctx).Omit("Harvest").Create(m).Error
}

func (r *millingRepo) FindByID(ctx context.Context, id uint) (*model.Milling, error) {
	var m model.Milling
	err := r.db.WithContext(ctx).Preload("Harvest").First(&m, id).Error
	return &m, err
}

func (r *millingRepo) List(ctx context.Context, filter dto.MillingFilter) ([]model.Milling, error) {
	var records []model.Milling
	q := applyDateRange(r.db.WithContext(ctx).Model(&model.Milling{}), "milling_date", filter.DateRange)
	if filter.HarvestID != nil {
		q = q.Where("harvest_id = ?", *filter.HarvestID)
	}
	err := q.Preload("Harvest").
		Order("milling_date DESC, id DESC").
		Limit(filter.Limit).
		Find(&records).Error
	return records, err
}

func (r *millingRepo) All(ctx context.Context) ([]model.Milling, error) {
	var records []model.Milling
	err := r.db.WithContext(ctx).Order("id").Find(&records).Error
	return records, err
}
