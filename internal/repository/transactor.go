package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Transactor scopes a unit of work to one database transaction: begin, then
// commit when fn returns nil or roll back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTransactor struct{ db *gorm.DB }

func NewTransactor(db *gorm.DB) Transactor { return &gormTransactor{db: db} }

// WithinTx calls fn(nil) directly when no database is configured (unit test mode).
func (t *gormTransactor) WithinTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if t.db == nil {
		return fn(nil)
	}
	return t.db.WithContext(ctx).Transaction(fn)
}

// SQLSTATE codes the ledger reacts to.
const (
	sqlStateUniqueViolation      = "23505"
	sqlStateForeignKeyViolation  = "23503"
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateLockNotAvailable     = "55P03"
)

// IsNotFound reports whether err means the requested row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsRetryable reports whether the transaction lost a race with another one
// and can safely be run again from the start.
func IsRetryable(err error) bool {
	switch pgCode(err) {
	case sqlStateSerializationFailure, sqlStateDeadlockDetected, sqlStateLockNotAvailable:
		return true
	}
	return false
}

// IsConstraintViolation reports unique or foreign key violations.
func IsConstraintViolation(err error) bool {
	switch pgCode(err) {
	case sqlStateUniqueViolation, sqlStateForeignKeyViolation:
		return true
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated)
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
