package repository

import (
	"context"

	"github.com/Zeek-James/pem-zee/internal/model"

	"gorm.io/gorm"
)

type AuditRepository interface {
	Create(ctx context.Context, entry *model.AuditLog) error
}

type auditRepo struct{ db *gorm.DB }

func NewAuditRepository(db *gorm.DB) AuditRepository { return &auditRepo{db: db} }

func (r *auditRepo) Create(ctx context.Context, entry *model.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}
