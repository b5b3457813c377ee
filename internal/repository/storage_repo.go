package repository

import (
	"context"

	"github.com/Zeek-James/pem-zee/internal/dto"
	"github.com/Zeek-James/pem-zee/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StorageRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, s *model.Storage) error
	// LockByIDTx reads the container with SELECT ... FOR UPDATE; the lock is
	// held until tx ends.
	LockByIDTx(ctx context.Context, tx *gorm.DB, id uint) (*model.Storage, error)
	MarkSoldTx(ctx context.Context, tx *gorm.DB, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Storage, error)
	List(ctx context.Context, filter dto.StorageFilter) ([]model.Storage, error)
	// Unsold returns every container not yet flagged sold, with its sales.
	Unsold(ctx context.Context) ([]model.Storage, error)
	All(ctx context.Context) ([]model.Storage, error)
}

type storageRepo struct{ db *gorm.DB }

func NewStorageRepository(db *gorm.DB) StorageRepository { return &storageRepo{db: db} }

func (r *storageRepo) CreateTx(ctx context.Context, tx *gorm.DB, s *model.Storage) error {
	return tx.WithContext(ctx).Omit("Milling", "Sales").Create(s).Error
}

func (r *storageRepo) LockByIDTx(ctx context.Context, tx *gorm.DB, id uint) (*model.Storage, error) {
	var s model.Storage
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&s, id).Error
	return &s, err
}

func (r *storageRepo) MarkSoldTx(ctx context.Context, tx *gorm.DB, id uint) error {
	return tx.WithContext(ctx).Model(&model.Storage{}).
		Where("id = ?", id).
		Update("is_sold", true).Error
}

func (r *storageRepo) FindByID(ctx context.Context, id uint) (*model.Storage, error) {
	var s model.Storage
	err := r.db.WithContext(ctx).Preload("Sales").First(&s, id).Error
	return &s, err
}

func (r *storageRepo) List(ctx context.Context, filter dto.StorageFilter) ([]model.Storage, error) {
	var records []model.Storage
	q := r.db.WithContext(ctx).Model(&model.Storage{})
	switch filter.Status {
	case "available":
		q = q.Where("is_sold = ?", false)
	case "sold":
		q = q.Where("is_sold = ?", true)
	}
	err := q.Preload("Sales").
		Order("storage_date DESC, id DESC").
		Limit(filter.Limit).
		Find(&records).Error
	return records, err
}

func (r *storageRepo) Unsold(ctx context.Context) ([]model.Storage, error) {
	var records []model.Storage
	err := r.db.WithContext(ctx).Preload("Sales").
		Where("is_sold = ?", false).
		Order("id").
		Find(&records).Error
	return records, err
}

func (r *storageRepo) All(ctx context.Context) ([]model.Storage, error) {
	var records []model.Storage
	err := r.db.WithContext(ctx).Order("id").Find(&records).Error
	return records, err
}
