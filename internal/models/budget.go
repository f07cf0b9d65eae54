package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BudgetAllocation is a per-constituency, per-year allocation row. The
// workflow reads it as reference data; it is never mutated by the engines.
// Exactly one of ParliamentID / DunID is set.
type BudgetAllocation struct {
	gorm.Model
	Year         int   `gorm:"not null;uniqueIndex:idx_budget_year_scope"`
	ParliamentID *uint `gorm:"uniqueIndex:idx_budget_year_scope"`
	DunID        *uint `gorm:"uniqueIndex:idx_budget_year_scope"`

	Amount decimal.Decimal `gorm:"type:decimal(20,2);not null"`
}
