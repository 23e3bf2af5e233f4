package services

import (
	"context"
	"sync"
	"time"

	"github.com/yeremiapane/storefront-app/models"
	"github.com/yeremiapane/storefront-app/utils"
	"gorm.io/gorm"
)

// PaymentMetrics menyimpan metrik terkait rekonsiliasi pembayaran
type PaymentMetrics struct {
	Applied           int64            `json:"applied"`
	Noops             int64            `json:"noops"`
	Anomalies         int64            `json:"anomalies"`
	SignatureFailures int64            `json:"signature_failures"`
	UpstreamFailures  int64            `json:"upstream_failures"`
	BySource          map[string]int64 `json:"by_source"`
}

// PaymentMonitor menghitung metrik dan melaporkan pembayaran yang menggantung di initiated
type PaymentMonitor struct {
	db           *gorm.DB
	abandonAfter time.Duration
	metrics      PaymentMetrics
	mutex        sync.Mutex
	now          func() time.Time
}

// NewPaymentMonitor membuat instance baru PaymentMonitor
func NewPaymentMonitor(db *gorm.DB, abandonAfter time.Duration) *PaymentMonitor {
	if abandonAfter <= 0 {
		abandonAfter = 30 * time.Minute
	}
	return &PaymentMonitor{
		db:           db,
		abandonAfter: abandonAfter,
		metrics:      PaymentMetrics{BySource: make(map[string]int64)},
		now:          time.Now,
	}
}

// Start memulai goroutine yang mencatat order initiated yang sudah lewat batas waktu
func (pm *PaymentMonitor) Start(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stale, err := pm.StaleInitiated(ctx)
				if err != nil {
					utils.ErrorLogger.Printf("Error checking stale payments: %v", err)
					continue
				}
				if len(stale) > 0 {
					utils.InfoLogger.Printf("%d payments still initiated after %s", len(stale), pm.abandonAfter)
				}
			}
		}
	}()
	utils.InfoLogger.Println("Payment monitor started")
}

func (pm *PaymentMonitor) record(source string, action decisionAction) {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	pm.metrics.BySource[source]++
	switch action {
	case actionApply:
		pm.metrics.Applied++
	case actionNoop:
		pm.metrics.Noops++
	case actionAnomaly:
		pm.metrics.Anomalies++
	}
}

func (pm *PaymentMonitor) recordSignatureFailure() {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()
	pm.metrics.SignatureFailures++
}

func (pm *PaymentMonitor) recordUpstreamFailure() {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()
	pm.metrics.UpstreamFailures++
}

// GetMetrics mengembalikan salinan metrik saat ini
func (pm *PaymentMonitor) GetMetrics() PaymentMetrics {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	snapshot := pm.metrics
	snapshot.BySource = make(map[string]int64, len(pm.metrics.BySource))
	for k, v := range pm.metrics.BySource {
		snapshot.BySource[k] = v
	}
	return snapshot
}

// StaleInitiated -> order gateway yang masih initiated lebih lama dari abandonAfter
func (pm *PaymentMonitor) StaleInitiated(ctx context.Context) ([]models.Order, error) {
	cutoff := pm.now().Add(-pm.abandonAfter)
	var orders []models.Order
	err := pm.db.WithContext(ctx).
		Where("payment_status = ? AND created_at < ?", models.PaymentStatusInitiated, cutoff).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, upstreamError("failed to load stale payments", err)
	}
	return orders, nil
}

func (pm *PaymentMonitor) ListAnomalies(ctx context.Context, orderID string, limit int) ([]models.PaymentAnomaly, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := pm.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if orderID != "" {
		query = query.Where("order_id = ?", orderID)
	}
	var anomalies []models.PaymentAnomaly
	if err := query.Find(&anomalies).Error; err != nil {
		return nil, upstreamError("failed to load payment anomalies", err)
	}
	return anomalies, nil
}
