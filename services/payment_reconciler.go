package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/storefront-app/models"
	"github.com/yeremiapane/storefront-app/utils"
	"gorm.io/gorm"
)

const (
	SourceVerify  = "verify"
	SourceWebhook = "webhook"
	SourceManual  = "manual"
)

// Webhook events yang diproses
const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
	EventOrderPaid       = "order.paid"
)

type ReconcilerConfig struct {
	KeyID              string
	KeySecret          string
	WebhookSecret      string
	Currency           string
	CorroborateAmounts bool
	GatewayTimeout     time.Duration
}

type InitiateRequest struct {
	Buyer    Buyer
	Amount   decimal.Decimal
	Currency string
	Cart     *Quote
	Notes    map[string]string
}

type InitiateResult struct {
	OrderID        string          `json:"order_id"`
	GatewayOrderID string          `json:"gateway_order_id"`
	Amount         decimal.Decimal `json:"amount"`
	AmountMinor    int64           `json:"amount_minor"`
	Currency       string          `json:"currency"`
	KeyID          string          `json:"key_id"`
}

type PaymentStatusView struct {
	OrderID           string               `json:"order_id"`
	PaymentStatus     models.PaymentStatus `json:"payment_status"`
	PaymentMethod     models.PaymentMethod `json:"payment_method"`
	Status            models.OrderStatus   `json:"status"`
	GatewayOrderID    *string              `json:"gateway_order_id,omitempty"`
	GatewayPaymentID  *string              `json:"gateway_payment_id,omitempty"`
	PaymentVerifiedAt *time.Time           `json:"payment_verified_at,omitempty"`
	GrandTotal        decimal.Decimal      `json:"grand_total"`
	Currency          string               `json:"currency"`
}

// WebhookResult -> hasil pemrosesan webhook, selalu di-ack ke gateway kecuali error
type WebhookResult struct {
	Event   string `json:"event"`
	OrderID string `json:"order_id,omitempty"`
	Outcome string `json:"outcome"`
}

const (
	OutcomeApplied   = "applied"
	OutcomeNoop      = "noop"
	OutcomeAnomaly   = "anomaly"
	OutcomeDuplicate = "duplicate"
	OutcomeIgnored   = "ignored"
)

// paymentSignal -> klaim status pembayaran dari verify, webhook, atau staff
type paymentSignal struct {
	Status    models.PaymentStatus
	PaymentID string
	Signature string
	Verified  bool
	Source    string
	Detail    string
}

type decisionAction int

const (
	actionApply decisionAction = iota
	actionNoop
	actionAnomaly
)

type decision struct {
	action decisionAction
	reason string
}

// decidePayment -> aturan rekonsiliasi. Paid tidak pernah turun,
// failed hanya bisa dikoreksi oleh sinyal paid yang terverifikasi.
func decidePayment(current models.PaymentStatus, currentPaymentID *string, sig paymentSignal) decision {
	switch current {
	case models.PaymentStatusPaid:
		if sig.Status != models.PaymentStatusPaid {
			return decision{actionAnomaly, fmt.Sprintf("%s signal after paid", sig.Status)}
		}
		if currentPaymentID == nil || *currentPaymentID == "" || sig.PaymentID == "" || *currentPaymentID == sig.PaymentID {
			return decision{actionNoop, "already paid"}
		}
		return decision{actionAnomaly, fmt.Sprintf("second payment %s for order paid by %s", sig.PaymentID, *currentPaymentID)}
	case models.PaymentStatusFailed:
		if sig.Status == models.PaymentStatusFailed {
			return decision{actionNoop, "already failed"}
		}
		if sig.Verified {
			return decision{actionApply, "verified paid corrects failed"}
		}
		return decision{actionAnomaly, "unverified paid signal for failed order"}
	default:
		return decision{actionApply, "first signal"}
	}
}

type PaymentReconciler struct {
	db       *gorm.DB
	gateway  Gateway
	cfg      ReconcilerConfig
	locks    *KeyedMutex
	monitor  *PaymentMonitor
	notifier Notifier
	now      func() time.Time
}

func NewPaymentReconciler(db *gorm.DB, gateway Gateway, cfg ReconcilerConfig, monitor *PaymentMonitor, notifier Notifier) *PaymentReconciler {
	if cfg.GatewayTimeout <= 0 {
		cfg.GatewayTimeout = 10 * time.Second
	}
	if monitor == nil {
		monitor = NewPaymentMonitor(db, 0)
	}
	return &PaymentReconciler{
		db:       db,
		gateway:  gateway,
		cfg:      cfg,
		locks:    NewKeyedMutex(),
		monitor:  monitor,
		notifier: notifierOrNop(notifier),
		now:      time.Now,
	}
}

// Initiate -> buat order lokal (initiated) lalu order di gateway.
// Jika gateway gagal, order lokal tetap initiated tanpa gateway order id.
func (r *PaymentReconciler) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error) {
	buyer, err := req.Buyer.normalized()
	if err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, validationError("amount must be positive")
	}
	currency := req.Currency
	if currency == "" {
		currency = r.cfg.Currency
	}
	if currency != r.cfg.Currency {
		return nil, validationError("currency %s is not supported", currency)
	}
	if req.Cart == nil || len(req.Cart.Items) == 0 {
		return nil, validationError("cart is empty")
	}
	if !req.Cart.Breakdown.GrandTotal.Equal(req.Amount) {
		return nil, &Error{
			Kind:    KindValidation,
			Message: "amount does not match cart total",
			Details: map[string]interface{}{
				"amount":     req.Amount,
				"cart_total": req.Cart.Breakdown.GrandTotal,
			},
		}
	}

	var order models.Order
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer, err := upsertCustomer(tx, buyer)
		if err != nil {
			return err
		}
		order = newOrderFromQuote(customer.ID, req.Cart, models.PaymentMethodGateway, models.PaymentStatusInitiated, models.OrderStatusAwaitingPayment)
		order.Currency = currency
		return tx.Create(&order).Error
	})
	if err != nil {
		return nil, upstreamError("failed to save order", err)
	}

	notes := map[string]string{"order_id": order.ID}
	for k, v := range req.Notes {
		notes[k] = v
	}

	gatewayCtx, cancel := context.WithTimeout(ctx, r.cfg.GatewayTimeout)
	defer cancel()
	gatewayOrder, err := r.gateway.CreateOrder(gatewayCtx, ToMinorUnits(req.Amount), currency, order.ID, notes)
	if err != nil {
		utils.ErrorLogger.Printf("Gateway order creation failed for order %s: %v", order.ID, err)
		r.monitor.recordUpstreamFailure()
		return nil, &Error{
			Kind:    KindUpstreamUnavailable,
			Message: "payment gateway unavailable, please retry",
			Details: map[string]interface{}{"order_id": order.ID},
			Err:     err,
		}
	}
	if gatewayOrder.Amount != ToMinorUnits(req.Amount) {
		utils.ErrorLogger.Printf("Gateway echoed amount %d for order %s, requested %d", gatewayOrder.Amount, order.ID, ToMinorUnits(req.Amount))
	}

	// Simpan gateway order id meskipun request client sudah dibatalkan
	persistCtx := context.WithoutCancel(ctx)
	result := r.db.WithContext(persistCtx).Model(&models.Order{}).
		Where("id = ? AND gateway_order_id IS NULL", order.ID).
		Update("gateway_order_id", gatewayOrder.ID)
	if result.Error != nil {
		return nil, upstreamError("failed to save gateway order id", result.Error)
	}

	utils.InfoLogger.Printf("Payment initiated for order %s with gateway order %s", order.ID, gatewayOrder.ID)
	order.GatewayOrderID = &gatewayOrder.ID
	r.notifier.PaymentUpdated(order)

	echoCurrency := gatewayOrder.Currency
	if echoCurrency == "" {
		echoCurrency = currency
	}
	return &InitiateResult{
		OrderID:        order.ID,
		GatewayOrderID: gatewayOrder.ID,
		Amount:         FromMinorUnits(gatewayOrder.Amount),
		AmountMinor:    gatewayOrder.Amount,
		Currency:       echoCurrency,
		KeyID:          r.cfg.KeyID,
	}, nil
}

// Verify -> callback checkout dari client. Signature dicek terhadap key secret.
func (r *PaymentReconciler) Verify(ctx context.Context, gatewayOrderID, gatewayPaymentID, signature string) (*models.Order, error) {
	if gatewayOrderID == "" || gatewayPaymentID == "" || signature == "" {
		return nil, validationError("gateway order id, payment id and signature are required")
	}

	orderID, err := r.findOrderID(ctx, gatewayOrderID)
	if err != nil {
		return nil, err
	}

	unlock := r.locks.Lock(orderID)
	defer unlock()

	if !VerifyCheckoutSignature(r.cfg.KeySecret, gatewayOrderID, gatewayPaymentID, signature) {
		utils.ErrorLogger.Printf("Checkout signature mismatch for order %s (gateway order %s)", orderID, gatewayOrderID)
		r.monitor.recordSignatureFailure()
		order, _, applyErr := r.apply(ctx, orderID, paymentSignal{
			Status:    models.PaymentStatusFailed,
			PaymentID: gatewayPaymentID,
			Source:    SourceVerify,
			Detail:    "checkout signature mismatch",
		})
		if applyErr != nil && !errors.Is(applyErr, ErrAnomalyDetected) {
			return nil, applyErr
		}
		return order, &Error{
			Kind:    KindSignatureInvalid,
			Message: "payment signature is invalid",
			Details: map[string]interface{}{"order_id": orderID},
		}
	}

	sig := paymentSignal{
		Status:    models.PaymentStatusPaid,
		PaymentID: gatewayPaymentID,
		Signature: signature,
		Verified:  true,
		Source:    SourceVerify,
	}

	if r.cfg.CorroborateAmounts {
		corroborated, err := r.corroborate(ctx, orderID, gatewayOrderID, gatewayPaymentID)
		if err != nil {
			return nil, err
		}
		sig.Status = corroborated
	}

	order, _, err := r.apply(ctx, orderID, sig)
	if err != nil {
		return order, err
	}
	// Signature valid tapi gateway melaporkan payment gagal
	if sig.Status == models.PaymentStatusFailed {
		return order, &Error{
			Kind:    KindValidation,
			Code:    "payment_failed",
			Message: "payment was not successful at the gateway",
			Details: map[string]interface{}{"order_id": orderID, "payment_status": sig.Status},
		}
	}
	return order, nil
}

// corroborate mencocokkan payment di gateway dengan order lokal
func (r *PaymentReconciler) corroborate(ctx context.Context, orderID, gatewayOrderID, gatewayPaymentID string) (models.PaymentStatus, error) {
	gatewayCtx, cancel := context.WithTimeout(ctx, r.cfg.GatewayTimeout)
	defer cancel()
	payment, err := r.gateway.FetchPayment(gatewayCtx, gatewayPaymentID)
	if err != nil {
		r.monitor.recordUpstreamFailure()
		return "", &Error{
			Kind:    KindUpstreamUnavailable,
			Message: "could not confirm payment with gateway, please retry",
			Details: map[string]interface{}{"order_id": orderID},
			Err:     err,
		}
	}

	var order models.Order
	if err := r.db.WithContext(ctx).Select("id", "grand_total", "currency").First(&order, "id = ?", orderID).Error; err != nil {
		return "", wrapDBError("failed to load order", err)
	}

	var mismatch string
	switch {
	case payment.OrderID != "" && payment.OrderID != gatewayOrderID:
		mismatch = fmt.Sprintf("payment belongs to gateway order %s", payment.OrderID)
	case payment.Amount != ToMinorUnits(order.GrandTotal):
		mismatch = fmt.Sprintf("gateway amount %d does not match order total %d", payment.Amount, ToMinorUnits(order.GrandTotal))
	case payment.Currency != "" && payment.Currency != order.Currency:
		mismatch = fmt.Sprintf("gateway currency %s does not match %s", payment.Currency, order.Currency)
	}
	if mismatch != "" {
		utils.ErrorLogger.Printf("Corroboration failed for order %s: %s", orderID, mismatch)
		if err := r.recordAnomaly(r.db.WithContext(ctx), orderID, models.PaymentStatusPaid, gatewayPaymentID, SourceVerify, mismatch); err != nil {
			return "", wrapDBError("failed to record anomaly", err)
		}
		r.monitor.record(SourceVerify, actionAnomaly)
		return "", &Error{
			Kind:    KindAnomalyDetected,
			Message: "payment details do not match the order",
			Details: map[string]interface{}{"order_id": orderID, "reason": mismatch},
		}
	}

	if payment.Status == "failed" {
		return models.PaymentStatusFailed, nil
	}
	return models.PaymentStatusPaid, nil
}

type webhookEntity struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

type webhookPayload struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity webhookEntity `json:"entity"`
		} `json:"payment"`
		Order struct {
			Entity webhookEntity `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
}

// HandleWebhook -> proses event server-to-server. Redelivery dengan event id yang sama diabaikan.
func (r *PaymentReconciler) HandleWebhook(ctx context.Context, rawBody []byte, headerSignature, eventID string) (*WebhookResult, error) {
	verified := false
	if r.cfg.WebhookSecret != "" {
		if !VerifyWebhookSignature(r.cfg.WebhookSecret, rawBody, headerSignature) {
			utils.ErrorLogger.Printf("Webhook signature mismatch (event id %q)", eventID)
			r.monitor.recordSignatureFailure()
			return nil, &Error{Kind: KindSignatureInvalid, Message: "webhook signature is invalid"}
		}
		verified = true
	} else {
		utils.InfoLogger.Printf("Webhook secret not configured, skipping signature check")
	}

	var payload webhookPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return nil, validationError("webhook body is not valid JSON")
	}
	result := &WebhookResult{Event: payload.Event}

	if eventID != "" {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.WebhookEvent{}).Where("event_id = ?", eventID).Count(&count).Error; err != nil {
			return nil, upstreamError("failed to check webhook event", err)
		}
		if count > 0 {
			result.Outcome = OutcomeDuplicate
			return result, nil
		}
	}

	var gatewayOrderID string
	sig := paymentSignal{Verified: verified, Source: SourceWebhook}
	switch payload.Event {
	case EventPaymentCaptured:
		gatewayOrderID = payload.Payload.Payment.Entity.OrderID
		sig.Status = models.PaymentStatusPaid
		sig.PaymentID = payload.Payload.Payment.Entity.ID
	case EventPaymentFailed:
		gatewayOrderID = payload.Payload.Payment.Entity.OrderID
		sig.Status = models.PaymentStatusFailed
		sig.PaymentID = payload.Payload.Payment.Entity.ID
	case EventOrderPaid:
		gatewayOrderID = payload.Payload.Order.Entity.ID
		sig.Status = models.PaymentStatusPaid
		sig.PaymentID = payload.Payload.Payment.Entity.ID
	default:
		result.Outcome = OutcomeIgnored
		r.saveWebhookEvent(ctx, eventID, payload.Event, "", result.Outcome)
		return result, nil
	}

	var orderID string
	var err error
	if gatewayOrderID != "" {
		orderID, err = r.findOrderID(ctx, gatewayOrderID)
	}
	if gatewayOrderID == "" || errors.Is(err, ErrOrderNotFound) {
		utils.InfoLogger.Printf("Webhook %s for unknown gateway order %q acknowledged", payload.Event, gatewayOrderID)
		result.Outcome = OutcomeIgnored
		r.saveWebhookEvent(ctx, eventID, payload.Event, gatewayOrderID, result.Outcome)
		return result, nil
	}
	if err != nil {
		return nil, err
	}
	result.OrderID = orderID

	unlock := r.locks.Lock(orderID)
	_, d, err := r.apply(ctx, orderID, sig)
	unlock()

	switch {
	case err == nil && d.action == actionNoop:
		result.Outcome = OutcomeNoop
	case err == nil:
		result.Outcome = OutcomeApplied
	case errors.Is(err, ErrAnomalyDetected):
		result.Outcome = OutcomeAnomaly
	default:
		return nil, err
	}

	r.saveWebhookEvent(ctx, eventID, payload.Event, gatewayOrderID, result.Outcome)
	return result, nil
}

func (r *PaymentReconciler) saveWebhookEvent(ctx context.Context, eventID, eventType, gatewayOrderID, outcome string) {
	event := models.WebhookEvent{
		EventType:      eventType,
		GatewayOrderID: gatewayOrderID,
		Outcome:        outcome,
	}
	if eventID != "" {
		event.EventID = &eventID
	}
	// redelivery yang bersamaan bisa gagal di unique index, cukup dicatat
	if err := r.db.WithContext(ctx).Create(&event).Error; err != nil {
		utils.ErrorLogger.Printf("Failed to record webhook event %q: %v", eventID, err)
	}
}

// ManualOverride -> staff menandai order lunas, misalnya setelah cek dashboard gateway
func (r *PaymentReconciler) ManualOverride(ctx context.Context, orderID, note string, staffID *uint) (*models.Order, error) {
	unlock := r.locks.Lock(orderID)
	defer unlock()

	if note == "" {
		note = "payment marked as paid manually"
	}
	author := "staff"
	if staffID != nil {
		author = fmt.Sprintf("staff:%d", *staffID)
	}
	now := r.now()

	var order *models.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Order
		err := tx.Select("id", "payment_status").First(&current, "id = ?", orderID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return orderNotFound(orderID)
		}
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"payment_status":      models.PaymentStatusPaid,
			"payment_verified_at": now,
		}
		if staffID != nil {
			updates["verified_by"] = *staffID
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", orderID).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, models.OrderStatusAwaitingPayment).
			Update("status", models.OrderStatusPending).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.OrderNote{OrderID: orderID, Author: author, Body: note}).Error; err != nil {
			return err
		}

		order, err = loadOrder(tx, orderID)
		return err
	})
	if err != nil {
		return nil, wrapDBError("failed to override payment", err)
	}

	utils.InfoLogger.Printf("Payment for order %s manually marked as paid by %s", orderID, author)
	r.monitor.record(SourceManual, actionApply)
	r.notifier.PaymentUpdated(*order)
	return order, nil
}

// Status -> status pembayaran untuk polling client
func (r *PaymentReconciler) Status(ctx context.Context, orderID string) (*PaymentStatusView, error) {
	var order models.Order
	err := r.db.WithContext(ctx).First(&order, "id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, orderNotFound(orderID)
	}
	if err != nil {
		return nil, upstreamError("failed to load order", err)
	}
	return &PaymentStatusView{
		OrderID:           order.ID,
		PaymentStatus:     order.PaymentStatus,
		PaymentMethod:     order.PaymentMethod,
		Status:            order.Status,
		GatewayOrderID:    order.GatewayOrderID,
		GatewayPaymentID:  order.GatewayPaymentID,
		PaymentVerifiedAt: order.PaymentVerifiedAt,
		GrandTotal:        order.GrandTotal,
		Currency:          order.Currency,
	}, nil
}

func (r *PaymentReconciler) findOrderID(ctx context.Context, gatewayOrderID string) (string, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Select("id").Where("gateway_order_id = ?", gatewayOrderID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", &Error{
			Kind:    KindNotFound,
			Code:    "order_not_found",
			Message: "order not found",
			Details: map[string]interface{}{"gateway_order_id": gatewayOrderID},
		}
	}
	if err != nil {
		return "", upstreamError("failed to load order", err)
	}
	return order.ID, nil
}

// apply menjalankan decidePayment dan menulis hasilnya dalam satu transaksi.
// Caller harus memegang lock order.
func (r *PaymentReconciler) apply(ctx context.Context, orderID string, sig paymentSignal) (*models.Order, decision, error) {
	now := r.now()
	var (
		order *models.Order
		d     decision
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Order
		err := tx.Select("id", "payment_status", "gateway_payment_id").First(&current, "id = ?", orderID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return orderNotFound(orderID)
		}
		if err != nil {
			return err
		}

		d = decidePayment(current.PaymentStatus, current.GatewayPaymentID, sig)
		switch d.action {
		case actionAnomaly:
			detail := d.reason
			if sig.Detail != "" {
				detail = sig.Detail + ": " + detail
			}
			if err := r.recordAnomaly(tx, orderID, sig.Status, sig.PaymentID, sig.Source, detail); err != nil {
				return err
			}
			// anomaly juga dicatat di catatan order supaya terlihat staff
			if err := r.recordAnomalyOnOrder(tx, orderID, current.PaymentStatus, sig, detail); err != nil {
				return err
			}
		case actionApply:
			updates := map[string]interface{}{"payment_status": sig.Status}
			if sig.PaymentID != "" {
				updates["gateway_payment_id"] = sig.PaymentID
			}
			if sig.Status == models.PaymentStatusPaid {
				updates["payment_verified_at"] = now
				if sig.Signature != "" {
					updates["gateway_signature"] = sig.Signature
				}
			}
			result := tx.Model(&models.Order{}).
				Where("id = ? AND payment_status = ?", orderID, current.PaymentStatus).
				Updates(updates)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return &Error{
					Kind:    KindUpstreamUnavailable,
					Message: "payment status changed concurrently, please retry",
					Details: map[string]interface{}{"order_id": orderID},
				}
			}
			if sig.Status == models.PaymentStatusPaid {
				if err := tx.Model(&models.Order{}).
					Where("id = ? AND status = ?", orderID, models.OrderStatusAwaitingPayment).
					Update("status", models.OrderStatusPending).Error; err != nil {
					return err
				}
			}
		}

		order, err = loadOrder(tx, orderID)
		return err
	})
	if err != nil {
		return nil, d, wrapDBError("failed to reconcile payment", err)
	}

	r.monitor.record(sig.Source, d.action)
	switch d.action {
	case actionApply:
		utils.InfoLogger.Printf("Payment for order %s set to %s via %s", orderID, sig.Status, sig.Source)
		r.notifier.PaymentUpdated(*order)
	case actionAnomaly:
		utils.ErrorLogger.Printf("Payment anomaly on order %s via %s: %s", orderID, sig.Source, d.reason)
		return order, d, &Error{
			Kind:    KindAnomalyDetected,
			Message: "conflicting payment signal recorded for review",
			Details: map[string]interface{}{"order_id": orderID, "reason": d.reason},
		}
	}
	return order, d, nil
}

func (r *PaymentReconciler) recordAnomaly(db *gorm.DB, orderID string, signalStatus models.PaymentStatus, paymentID, source, detail string) error {
	var current models.Order
	if err := db.Select("id", "payment_status", "gateway_order_id").First(&current, "id = ?", orderID).Error; err != nil {
		return err
	}
	gatewayOrderID := ""
	if current.GatewayOrderID != nil {
		gatewayOrderID = *current.GatewayOrderID
	}
	return db.Create(&models.PaymentAnomaly{
		OrderID:          orderID,
		GatewayOrderID:   gatewayOrderID,
		Source:           source,
		CurrentStatus:    current.PaymentStatus,
		SignalStatus:     signalStatus,
		GatewayPaymentID: paymentID,
		Detail:           detail,
	}).Error
}

func (r *PaymentReconciler) recordAnomalyOnOrder(tx *gorm.DB, orderID string, current models.PaymentStatus, sig paymentSignal, detail string) error {
	return tx.Create(&models.OrderNote{
		OrderID: orderID,
		Author:  "system",
		Body:    fmt.Sprintf("payment anomaly (%s): %s signal while %s: %s", sig.Source, sig.Status, current, detail),
	}).Error
}
