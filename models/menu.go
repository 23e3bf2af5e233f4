package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MenuOption dipakai untuk ukuran (harga pengganti) dan addon (harga tambahan)
type MenuOption struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type Menu struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	IsAvailable bool            `gorm:"not null" json:"is_available"`
	Sizes       []MenuOption    `gorm:"serializer:json;type:text" json:"sizes,omitempty"`
	Addons      []MenuOption    `gorm:"serializer:json;type:text" json:"addons,omitempty"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updated_at"`
}

func (m Menu) FindSize(name string) (MenuOption, bool) {
	for _, s := range m.Sizes {
		if s.Name == name {
			return s, true
		}
	}
	return MenuOption{}, false
}

func (m Menu) FindAddon(name string) (MenuOption, bool) {
	for _, a := range m.Addons {
		if a.Name == name {
			return a, true
		}
	}
	return MenuOption{}, false
}
