package repository

import (
	"github.com/Zeek-James/pem-zee/internal/dto"

	"gorm.io/gorm"
)

// applyDateRange narrows q to rows whose column falls inside r (inclusive).
func applyDateRange(q *gorm.DB, column string, r dto.DateRange) *gorm.DB {
	if r.From != "" {
		q = q.Where(column+" >= ?", r.From)
	}
	if r.To != "" {
		q = q.Where(column+" <= ?", r.To)
	}
	return q
}
