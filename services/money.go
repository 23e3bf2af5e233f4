package services

import (
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/storefront-app/models"
)

var hundred = decimal.NewFromInt(100)

type PlatformFeeKind string

const (
	PlatformFeeFixed      PlatformFeeKind = "fixed"
	PlatformFeePercentage PlatformFeeKind = "percentage"
)

// PlatformFeePolicy -> fixed: Value dalam mata uang, percentage: Value persen dari subtotal
type PlatformFeePolicy struct {
	Kind  PlatformFeeKind
	Value decimal.Decimal
}

// TaxPolicy -> Rate dalam persen, dikenakan pada subtotal setelah diskon
type TaxPolicy struct {
	Rate decimal.Decimal
}

type BreakdownInput struct {
	Items        []models.OrderLineItem
	Discount     decimal.Decimal
	DiscountCode string
	DeliveryFee  decimal.NullDecimal
	PlatformFee  PlatformFeePolicy
	Tax          TaxPolicy
	Donation     decimal.Decimal
}

// Breakdown menyimpan komponen tanpa pembulatan; hanya GrandTotal yang dibulatkan
type Breakdown struct {
	Subtotal     decimal.Decimal     `json:"subtotal"`
	Discount     decimal.Decimal     `json:"discount"`
	DiscountCode string              `json:"discount_code,omitempty"`
	DeliveryFee  decimal.NullDecimal `json:"delivery_fee"`
	PlatformFee  decimal.Decimal     `json:"platform_fee"`
	Tax          decimal.Decimal     `json:"tax"`
	Donation     decimal.Decimal     `json:"donation"`
	GrandTotal   decimal.Decimal     `json:"grand_total"`
}

// Subtotal menjumlahkan unitPrice x quantity untuk semua item
func Subtotal(items []models.OrderLineItem) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, item := range items {
		if item.Quantity <= 0 {
			return decimal.Zero, validationError("quantity for %q must be positive", item.Name)
		}
		if item.UnitPrice.IsNegative() {
			return decimal.Zero, validationError("unit price for %q must not be negative", item.Name)
		}
		total = total.Add(item.LineTotal())
	}
	return total, nil
}

// PercentageDiscount -> floor(subtotal x pct / 100) ke unit minor, tidak pernah melebihi subtotal
func PercentageDiscount(subtotal, pct decimal.Decimal) decimal.Decimal {
	if !pct.IsPositive() || !subtotal.IsPositive() {
		return decimal.Zero
	}
	discount := subtotal.Mul(pct).Div(hundred).RoundFloor(2)
	return decimal.Min(discount, subtotal)
}

// FlatDiscount -> min(subtotal, value)
func FlatDiscount(subtotal, value decimal.Decimal) decimal.Decimal {
	if !value.IsPositive() || !subtotal.IsPositive() {
		return decimal.Zero
	}
	return decimal.Min(subtotal, value)
}

func (p PlatformFeePolicy) feeFor(subtotal decimal.Decimal) (decimal.Decimal, error) {
	if p.Value.IsNegative() {
		return decimal.Zero, validationError("platform fee must not be negative")
	}
	switch p.Kind {
	case "":
		return decimal.Zero, nil
	case PlatformFeeFixed:
		return p.Value, nil
	case PlatformFeePercentage:
		return subtotal.Mul(p.Value).Div(hundred), nil
	default:
		return decimal.Zero, validationError("unknown platform fee kind %q", p.Kind)
	}
}

// Calculate menghitung rincian harga order. Hasilnya deterministik untuk input yang sama.
func Calculate(in BreakdownInput) (Breakdown, error) {
	if in.Donation.IsNegative() {
		return Breakdown{}, validationError("donation must not be negative")
	}
	if in.Tax.Rate.IsNegative() {
		return Breakdown{}, validationError("tax rate must not be negative")
	}
	if in.DeliveryFee.Valid && in.DeliveryFee.Decimal.IsNegative() {
		return Breakdown{}, validationError("delivery fee must not be negative")
	}

	subtotal, err := Subtotal(in.Items)
	if err != nil {
		return Breakdown{}, err
	}

	discount := in.Discount
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	discount = decimal.Min(discount, subtotal)

	platformFee, err := in.PlatformFee.feeFor(subtotal)
	if err != nil {
		return Breakdown{}, err
	}

	tax := subtotal.Sub(discount).Mul(in.Tax.Rate).Div(hundred)

	total := subtotal.Sub(discount).Add(platformFee).Add(tax).Add(in.Donation)
	if in.DeliveryFee.Valid {
		total = total.Add(in.DeliveryFee.Decimal)
	}
	total = total.Round(2)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Breakdown{
		Subtotal:     subtotal,
		Discount:     discount,
		DiscountCode: in.DiscountCode,
		DeliveryFee:  in.DeliveryFee,
		PlatformFee:  platformFee,
		Tax:          tax,
		Donation:     in.Donation,
		GrandTotal:   total,
	}, nil
}

// ToMinorUnits -> 450.00 menjadi 45000 (paise)
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}
