package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/storefront-app/models"
	"github.com/yeremiapane/storefront-app/utils"
	"gorm.io/gorm"
)

// allowedTransitions -> transisi status yang boleh dilakukan staff
var allowedTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusAwaitingPayment: {models.OrderStatusCancelled},
	models.OrderStatusPending:         {models.OrderStatusPreparing, models.OrderStatusCancelled},
	models.OrderStatusPreparing:       {models.OrderStatusReady, models.OrderStatusCancelled},
	models.OrderStatusReady:           {models.OrderStatusDelivered, models.OrderStatusCancelled},
}

func CanTransition(from, to models.OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type OrderFilter struct {
	Status        models.OrderStatus
	PaymentStatus models.PaymentStatus
	Limit         int
	Offset        int
}

// TrackingView -> data order yang aman ditampilkan ke customer
type TrackingView struct {
	OrderID       string               `json:"order_id"`
	Status        models.OrderStatus   `json:"status"`
	IsAccepted    bool                 `json:"is_accepted"`
	AcceptedAt    *time.Time           `json:"accepted_at,omitempty"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	Items         []TrackingItem       `json:"items"`
	GrandTotal    decimal.Decimal      `json:"grand_total"`
	Currency      string               `json:"currency"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

type TrackingItem struct {
	Name     string   `json:"name"`
	Quantity int      `json:"quantity"`
	Size     string   `json:"size,omitempty"`
	Addons   []string `json:"addons,omitempty"`
}

type OrderService struct {
	db       *gorm.DB
	notifier Notifier
	now      func() time.Time
}

func NewOrderService(db *gorm.DB, notifier Notifier) *OrderService {
	return &OrderService{
		db:       db,
		notifier: notifierOrNop(notifier),
		now:      time.Now,
	}
}

// newOrderFromQuote -> snapshot quote ke order baru
func newOrderFromQuote(customerID uint, quote *Quote, method models.PaymentMethod, paymentStatus models.PaymentStatus, status models.OrderStatus) models.Order {
	order := models.Order{
		ID:             uuid.NewString(),
		CustomerID:     customerID,
		Items:          quote.Items,
		Currency:       quote.Currency,
		Subtotal:       quote.Breakdown.Subtotal,
		DiscountAmount: quote.Breakdown.Discount,
		DeliveryFee:    quote.Breakdown.DeliveryFee,
		PlatformFee:    quote.Breakdown.PlatformFee,
		TaxAmount:      quote.Breakdown.Tax,
		DonationAmount: quote.Breakdown.Donation,
		GrandTotal:     quote.Breakdown.GrandTotal,
		Status:         status,
		PaymentStatus:  paymentStatus,
		PaymentMethod:  method,
	}
	if quote.Breakdown.DiscountCode != "" {
		code := quote.Breakdown.DiscountCode
		order.DiscountCode = &code
	}
	if quote.Destination != nil {
		lat, lng := quote.Destination.Lat, quote.Destination.Lng
		order.DeliveryLat, order.DeliveryLng = &lat, &lng
	}
	if quote.Delivery != nil {
		distance := quote.Delivery.DistanceKm
		order.DeliveryDistanceKm = &distance
	}
	return order
}

// PlaceCashOrder -> order bayar di tempat, langsung masuk antrian pending
func (s *OrderService) PlaceCashOrder(ctx context.Context, buyer Buyer, quote *Quote) (*models.Order, error) {
	buyer, err := buyer.normalized()
	if err != nil {
		return nil, err
	}
	if quote == nil || len(quote.Items) == 0 {
		return nil, validationError("cart is empty")
	}

	var order models.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer, err := upsertCustomer(tx, buyer)
		if err != nil {
			return err
		}
		order = newOrderFromQuote(customer.ID, quote, models.PaymentMethodCash, models.PaymentStatusPending, models.OrderStatusPending)
		return tx.Create(&order).Error
	})
	if err != nil {
		return nil, upstreamError("failed to save order", err)
	}

	utils.InfoLogger.Printf("Cash order %s placed, total %s", order.ID, order.GrandTotal.StringFixed(2))
	s.notifier.OrderUpdated(order)
	return &order, nil
}

func (s *OrderService) Get(ctx context.Context, orderID string) (*models.Order, error) {
	return loadOrder(s.db.WithContext(ctx), orderID)
}

func loadOrder(db *gorm.DB, orderID string) (*models.Order, error) {
	var order models.Order
	err := db.Preload("Customer").
		Preload("Notes", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&order, "id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, orderNotFound(orderID)
	}
	if err != nil {
		return nil, upstreamError("failed to load order", err)
	}
	return &order, nil
}

func (s *OrderService) List(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	query := s.db.WithContext(ctx).Preload("Customer").Order("created_at DESC")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query = query.Limit(limit).Offset(filter.Offset)

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, upstreamError("failed to list orders", err)
	}
	return orders, nil
}

// Accept -> staff menerima order. Hanya bisa sekali, tidak bisa untuk order terminal
// atau order yang masih menunggu pembayaran.
func (s *OrderService) Accept(ctx context.Context, orderID string) (*models.Order, error) {
	now := s.now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Order
		err := tx.Select("id", "status", "is_accepted").First(&current, "id = ?", orderID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return orderNotFound(orderID)
		}
		if err != nil {
			return err
		}
		if current.IsAccepted {
			return alreadyAccepted(orderID)
		}
		// Order online baru bisa diterima setelah pembayaran terverifikasi
		if current.Status.IsTerminal() || current.Status == models.OrderStatusAwaitingPayment {
			return illegalTransition(string(current.Status), "accepted")
		}

		result := tx.Model(&models.Order{}).
			Where("id = ? AND is_accepted = ?", orderID, false).
			Updates(map[string]interface{}{"is_accepted": true, "accepted_at": now})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return alreadyAccepted(orderID)
		}

		// Order yang sudah dibayar langsung masuk dapur
		return tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, models.OrderStatusPending).
			Update("status", models.OrderStatusPreparing).Error
	})
	if err != nil {
		return nil, wrapDBError("failed to accept order", err)
	}

	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Order %s accepted", orderID)
	s.notifier.OrderUpdated(*order)
	return order, nil
}

func alreadyAccepted(orderID string) *Error {
	return &Error{
		Kind:    KindIllegalTransition,
		Code:    "already_accepted",
		Message: "order has already been accepted",
		Details: map[string]interface{}{"order_id": orderID},
	}
}

// UpdateStatus -> transisi status oleh staff, sesuai tabel allowedTransitions
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, next models.OrderStatus, reason string) (*models.Order, error) {
	if !next.Valid() {
		return nil, validationError("unknown order status %q", next)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Order
		err := tx.Select("id", "status").First(&current, "id = ?", orderID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return orderNotFound(orderID)
		}
		if err != nil {
			return err
		}
		if !CanTransition(current.Status, next) {
			return illegalTransition(string(current.Status), string(next))
		}

		updates := map[string]interface{}{"status": next}
		if next == models.OrderStatusCancelled && reason != "" {
			updates["cancel_reason"] = reason
		}
		result := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, current.Status).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// status berubah di antara baca dan tulis
			return &Error{
				Kind:    KindIllegalTransition,
				Message: "order status changed concurrently, reload and retry",
				Details: map[string]interface{}{"from": string(current.Status), "to": string(next)},
			}
		}

		if reason != "" {
			return tx.Create(&models.OrderNote{
				OrderID: orderID,
				Author:  "staff",
				Body:    fmt.Sprintf("status -> %s: %s", next, reason),
			}).Error
		}
		return nil
	})
	if err != nil {
		return nil, wrapDBError("failed to update order status", err)
	}

	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Order %s status updated to %s", orderID, next)
	s.notifier.OrderUpdated(*order)
	return order, nil
}

func (s *OrderService) Cancel(ctx context.Context, orderID, reason string) (*models.Order, error) {
	return s.UpdateStatus(ctx, orderID, models.OrderStatusCancelled, reason)
}

// Track -> tampilan order untuk customer tanpa data pembayaran/kontak
func (s *OrderService) Track(ctx context.Context, orderID string) (*TrackingView, error) {
	var order models.Order
	err := s.db.WithContext(ctx).First(&order, "id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, orderNotFound(orderID)
	}
	if err != nil {
		return nil, upstreamError("failed to load order", err)
	}

	items := make([]TrackingItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, TrackingItem{
			Name:     item.Name,
			Quantity: item.Quantity,
			Size:     item.Size,
			Addons:   item.Addons,
		})
	}

	return &TrackingView{
		OrderID:       order.ID,
		Status:        order.Status,
		IsAccepted:    order.IsAccepted,
		AcceptedAt:    order.AcceptedAt,
		PaymentStatus: order.PaymentStatus,
		PaymentMethod: order.PaymentMethod,
		Items:         items,
		GrandTotal:    order.GrandTotal,
		Currency:      order.Currency,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}, nil
}

// wrapDBError -> error service diteruskan, error lain dianggap upstream
func wrapDBError(message string, err error) error {
	if svcErr := AsError(err); svcErr != nil {
		return svcErr
	}
	return upstreamError(message, err)
}
