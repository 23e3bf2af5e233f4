package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusAwaitingPayment OrderStatus = "awaiting_payment"
	OrderStatusPending         OrderStatus = "pending"
	OrderStatusPreparing       OrderStatus = "preparing"
	OrderStatusReady           OrderStatus = "ready"
	OrderStatusDelivered       OrderStatus = "delivered"
	OrderStatusCancelled       OrderStatus = "cancelled"
)

// IsTerminal -> delivered dan cancelled tidak bisa berpindah status lagi
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusAwaitingPayment, OrderStatusPending, OrderStatusPreparing,
		OrderStatusReady, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusInitiated PaymentStatus = "initiated"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusFailed    PaymentStatus = "failed"
)

type PaymentMethod string

const (
	PaymentMethodCash    PaymentMethod = "cash"
	PaymentMethodGateway PaymentMethod = "gateway"
	PaymentMethodOther   PaymentMethod = "other"
)

// OrderLineItem adalah snapshot harga item pada saat order dibuat.
// Perubahan harga menu setelahnya tidak mempengaruhi order.
type OrderLineItem struct {
	MenuID    uint            `json:"menu_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size,omitempty"`
	Addons    []string        `json:"addons,omitempty"`
}

func (i OrderLineItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID         string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CustomerID uint            `gorm:"not null;index" json:"customer_id"`
	Customer   Customer        `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items      []OrderLineItem `gorm:"serializer:json;type:text" json:"items"`

	Currency       string              `gorm:"type:varchar(3);not null" json:"currency"`
	Subtotal       decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	DiscountAmount decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"discount_amount"`
	DiscountCode   *string             `gorm:"type:varchar(50)" json:"discount_code,omitempty"`
	DeliveryFee    decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"delivery_fee"`
	PlatformFee    decimal.Decimal     `gorm:"type:decimal(18,6);not null" json:"platform_fee"`
	TaxAmount      decimal.Decimal     `gorm:"type:decimal(18,6);not null" json:"tax_amount"`
	DonationAmount decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"donation_amount"`
	GrandTotal     decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"grand_total"`

	DeliveryLat        *float64 `json:"delivery_lat,omitempty"`
	DeliveryLng        *float64 `json:"delivery_lng,omitempty"`
	DeliveryDistanceKm *float64 `json:"delivery_distance_km,omitempty"`

	Status       OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	IsAccepted   bool        `gorm:"not null" json:"is_accepted"`
	AcceptedAt   *time.Time  `json:"accepted_at,omitempty"`
	CancelReason *string     `gorm:"type:varchar(255)" json:"cancel_reason,omitempty"`

	PaymentStatus     PaymentStatus `gorm:"type:varchar(20);not null;index" json:"payment_status"`
	PaymentMethod     PaymentMethod `gorm:"type:varchar(20);not null" json:"payment_method"`
	GatewayOrderID    *string       `gorm:"type:varchar(64);uniqueIndex" json:"gateway_order_id,omitempty"`
	GatewayPaymentID  *string       `gorm:"type:varchar(64)" json:"gateway_payment_id,omitempty"`
	GatewaySignature  *string       `gorm:"type:varchar(128)" json:"-"`
	PaymentVerifiedAt *time.Time    `json:"payment_verified_at,omitempty"`
	VerifiedBy        *uint         `json:"verified_by,omitempty"`

	Notes     []OrderNote `gorm:"foreignKey:OrderID" json:"notes,omitempty"`
	CreatedAt time.Time   `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time   `gorm:"not null" json:"updated_at"`
}

// OrderNote -> catatan bebas pada order, hanya ditambah (append), tidak pernah diubah
type OrderNote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   string    `gorm:"type:varchar(36);not null;index" json:"order_id"`
	Author    string    `gorm:"type:varchar(100);not null" json:"author"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
