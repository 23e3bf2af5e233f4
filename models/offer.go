package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFlat       = "flat"
)

type Offer struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Code          string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Description   string          `gorm:"type:varchar(255)" json:"description,omitempty"`
	DiscountType  string          `gorm:"type:varchar(20);not null" json:"discount_type"`
	DiscountValue decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount_value"`
	MinOrderValue decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"min_order_value"`
	ValidFrom     time.Time       `json:"valid_from"`
	ValidTo       *time.Time      `json:"valid_to,omitempty"`
	IsActive      bool            `gorm:"not null" json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ActiveAt -> offer aktif jika flag aktif dan now berada di dalam [ValidFrom, ValidTo].
// ValidTo kosong berarti tidak pernah kadaluarsa.
func (o Offer) ActiveAt(now time.Time) bool {
	if !o.IsActive {
		return false
	}
	if now.Before(o.ValidFrom) {
		return false
	}
	if o.ValidTo != nil && now.After(*o.ValidTo) {
		return false
	}
	return true
}
