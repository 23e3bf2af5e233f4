package services

import (
	"regexp"
	"strings"

	"github.com/yeremiapane/storefront-app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

type Buyer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

func (b Buyer) normalized() (Buyer, error) {
	b.Name = strings.TrimSpace(b.Name)
	b.Phone = strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(b.Phone))
	b.Email = strings.TrimSpace(b.Email)
	if b.Name == "" {
		return b, validationError("buyer name is required")
	}
	if !phonePattern.MatchString(b.Phone) {
		return b, validationError("buyer phone %q is invalid", b.Phone)
	}
	return b, nil
}

// upsertCustomer -> customer dicari berdasarkan phone, nama terbaru menimpa nama lama
func upsertCustomer(tx *gorm.DB, buyer Buyer) (*models.Customer, error) {
	customer := models.Customer{Phone: buyer.Phone, Name: buyer.Name, Email: buyer.Email}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
	}).Create(&customer).Error
	if err != nil {
		return nil, err
	}

	// ID hasil upsert tidak selalu terisi saat conflict, baca ulang
	var stored models.Customer
	if err := tx.Where("phone = ?", buyer.Phone).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}
