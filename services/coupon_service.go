package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/storefront-app/models"
	"github.com/yeremiapane/storefront-app/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OfferStore -> penyimpanan offer/kupon
type OfferStore interface {
	FindByCode(ctx context.Context, code string) (*models.Offer, error)
	Save(ctx context.Context, offer *models.Offer) error
	Delete(ctx context.Context, code string) error
	List(ctx context.Context) ([]models.Offer, error)
}

// NormalizeCode -> kode kupon tidak case-sensitive
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

type GormOfferStore struct {
	db *gorm.DB
}

func NewOfferStore(db *gorm.DB) *GormOfferStore {
	return &GormOfferStore{db: db}
}

// FindByCode mengembalikan nil, nil jika kode tidak ditemukan
func (s *GormOfferStore) FindByCode(ctx context.Context, code string) (*models.Offer, error) {
	var offer models.Offer
	err := s.db.WithContext(ctx).Where("code = ?", NormalizeCode(code)).First(&offer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// Save -> insert atau update berdasarkan code
func (s *GormOfferStore) Save(ctx context.Context, offer *models.Offer) error {
	offer.Code = NormalizeCode(offer.Code)
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"description", "discount_type", "discount_value", "min_order_value",
			"valid_from", "valid_to", "is_active", "updated_at",
		}),
	}).Create(offer).Error
}

func (s *GormOfferStore) Delete(ctx context.Context, code string) error {
	result := s.db.WithContext(ctx).Where("code = ?", NormalizeCode(code)).Delete(&models.Offer{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &Error{Kind: KindNotFound, Code: "coupon_not_found", Message: "coupon not found"}
	}
	return nil
}

func (s *GormOfferStore) List(ctx context.Context) ([]models.Offer, error) {
	var offers []models.Offer
	err := s.db.WithContext(ctx).Order("code ASC").Find(&offers).Error
	return offers, err
}

type CouponResult struct {
	Code     string          `json:"code"`
	Discount decimal.Decimal `json:"discount"`
	Offer    models.Offer    `json:"offer"`
}

type CouponService struct {
	store    OfferStore
	currency string
}

func NewCouponService(store OfferStore, currency string) *CouponService {
	return &CouponService{store: store, currency: currency}
}

// Resolve -> cek kupon terhadap subtotal pada waktu now dan hitung diskonnya
func (s *CouponService) Resolve(ctx context.Context, code string, subtotal decimal.Decimal, now time.Time) (*CouponResult, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, validationError("coupon code is required")
	}

	offer, err := s.store.FindByCode(ctx, code)
	if err != nil {
		return nil, upstreamError("failed to load coupon", err)
	}
	if offer == nil || !offer.ActiveAt(now) {
		return nil, &Error{
			Kind:    KindNotFound,
			Code:    "coupon_not_found",
			Message: "coupon not found or expired",
			Details: map[string]interface{}{"code": code},
		}
	}

	if subtotal.LessThan(offer.MinOrderValue) {
		shortfall := offer.MinOrderValue.Sub(subtotal)
		return nil, &Error{
			Kind:    KindBelowMinimumOrder,
			Message: "add " + utils.FormatMoney(shortfall, s.currency) + " more to use " + code,
			Details: map[string]interface{}{
				"code":            code,
				"min_order_value": offer.MinOrderValue,
				"shortfall":       shortfall,
			},
		}
	}

	discount, err := DiscountFor(*offer, subtotal)
	if err != nil {
		return nil, err
	}

	return &CouponResult{Code: code, Discount: discount, Offer: *offer}, nil
}

func DiscountFor(offer models.Offer, subtotal decimal.Decimal) (decimal.Decimal, error) {
	switch offer.DiscountType {
	case models.DiscountTypePercentage:
		return PercentageDiscount(subtotal, offer.DiscountValue), nil
	case models.DiscountTypeFlat:
		return FlatDiscount(subtotal, offer.DiscountValue), nil
	default:
		return decimal.Zero, validationError("unknown discount type %q", offer.DiscountType)
	}
}

// ValidateOffer dipakai saat admin membuat/mengubah offer
func ValidateOffer(offer models.Offer) error {
	if NormalizeCode(offer.Code) == "" {
		return validationError("code is required")
	}
	switch offer.DiscountType {
	case models.DiscountTypePercentage:
		if !offer.DiscountValue.IsPositive() || offer.DiscountValue.GreaterThan(hundred) {
			return validationError("percentage discount must be between 0 and 100")
		}
	case models.DiscountTypeFlat:
		if !offer.DiscountValue.IsPositive() {
			return validationError("flat discount must be positive")
		}
	default:
		return validationError("discount_type must be percentage or flat")
	}
	if offer.MinOrderValue.IsNegative() {
		return validationError("min_order_value must not be negative")
	}
	if offer.ValidTo != nil && offer.ValidTo.Before(offer.ValidFrom) {
		return validationError("valid_to must be after valid_from")
	}
	return nil
}
