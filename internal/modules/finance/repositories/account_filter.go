package repositories

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AccountFilter narrows receivable and payable listings. Zero fields are ignored.
type AccountFilter struct {
	UserID      string
	Statuses    []string
	ClientID    string
	SupplierID  string
	ParentID    string
	DueFrom     *time.Time // inclusive
	DueTo       *time.Time // inclusive
	PaidFrom    *time.Time
	Limit       int
	NewestFirst bool
}

// StatusTotal is one row of a GROUP BY status aggregate
type StatusTotal struct {
	Status string
	Count  int64
	Total  decimal.Decimal
}

func (f AccountFilter) apply(query *gorm.DB) *gorm.DB {
	if f.UserID != "" {
		query = query.Where("user_id = ?", f.UserID)
	}
	if len(f.Statuses) == 1 {
		query = query.Where("status = ?", f.Statuses[0])
	} else if len(f.Statuses) > 1 {
		query = query.Where("status IN ?", f.Statuses)
	}
	if f.ClientID != "" {
		query = query.Where("client_id = ?", f.ClientID)
	}
	if f.SupplierID != "" {
		query = query.Where("supplier_id = ?", f.SupplierID)
	}
	if f.ParentID != "" {
		query = query.Where("parent_id = ?", f.ParentID)
	}
	if f.DueFrom != nil {
		query = query.Where("due_date >= ?", *f.DueFrom)
	}
	if f.DueTo != nil {
		query = query.Where("due_date <= ?", *f.DueTo)
	}
	if f.PaidFrom != nil {
		query = query.Where("paid_at >= ?", *f.PaidFrom)
	}
	if f.NewestFirst {
		query = query.Order("created_at DESC")
	} else {
		query = query.Order("due_date ASC").Order("created_at ASC")
	}
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}
	return query
}
