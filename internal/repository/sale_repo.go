package repository

import (
	"context"
	"strings"
	"time"

	"github.com/Zeek-James/pem-zee/internal/dto"
	"github.com/Zeek-James/pem-zee/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, s *model.Sale) error
	// SumSoldTx totals quantity_sold for a container inside tx.
	SumSoldTx(ctx context.Context, tx *gorm.DB, storageID uint) (decimal.Decimal, error)
	FindByID(ctx context.Context, id uint) (*model.Sale, error)
	UpdatePayment(ctx context.Context, id uint, status string, paidOn *time.Time) error
	List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, error)
	All(ctx context.Context) ([]model.Sale, error)
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) CreateTx(ctx context.Context, tx *gorm.DB, s *model.Sale) error {
	return tx.WithContext(ctx).Omit("Storage").Create(s).Error
}

func (r *saleRepo) SumSoldTx(ctx context.Context, tx *gorm.DB, storageID uint) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := tx.WithContext(ctx).Model(&model.Sale{}).
		Select("COALESCE(SUM(quantity_sold), 0)").
		Where("storage_id = ?", storageID).
		Row()
	err := row.Scan(&total)
	return total, err
}

func (r *saleRepo) FindByID(ctx context.Context, id uint) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).Preload("Storage").First(&s, id).Error
	return &s, err
}

func (r *saleRepo) UpdatePayment(ctx context.Context, id uint, status string, paidOn *time.Time) error {
	updates := map[string]interface{}{"payment_status": status}
	if paidOn != nil {
		updates["payment_date"] = *paidOn
	}
	return r.db.WithContext(ctx).Model(&model.Sale{}).Where("id = ?", id).Updates(updates).Error
}

func (r *saleRepo) List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, error) {
	var sales []model.Sale
	q := applyDateRange(r.db.WithContext(ctx).Model(&model.Sale{}), "sale_date", filter.DateRange)
	if filter.StorageID != nil {
		q = q.Where("storage_id = ?", *filter.StorageID)
	}
	if filter.PaymentStatus != "" {
		q = q.Where("LOWER(payment_status) = ?", strings.ToLower(filter.PaymentStatus))
	}
	err := q.Preload("Storage").
		Order("sale_date DESC, id DESC").
		Limit(filter.Limit).
		Find(&sales).Error
	return sales, err
}

func (r *saleRepo) All(ctx context.Context) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).Order("id").Find(&sales).Error
	return sales, err
}
