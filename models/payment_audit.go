package models

import "time"

// WebhookEvent mencatat event webhook yang sudah diproses supaya redelivery tidak diproses ulang
type WebhookEvent struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	EventID        *string   `gorm:"type:varchar(128);uniqueIndex" json:"event_id,omitempty"`
	EventType      string    `gorm:"type:varchar(64);not null;index" json:"event_type"`
	GatewayOrderID string    `gorm:"type:varchar(64);index" json:"gateway_order_id"`
	Outcome        string    `gorm:"type:varchar(20);not null" json:"outcome"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
}

// PaymentAnomaly -> sinyal pembayaran yang bertentangan dengan status yang sudah tercatat
type PaymentAnomaly struct {
	ID               uint          `gorm:"primaryKey" json:"id"`
	OrderID          string        `gorm:"type:varchar(36);not null;index" json:"order_id"`
	GatewayOrderID   string        `gorm:"type:varchar(64)" json:"gateway_order_id,omitempty"`
	Source           string        `gorm:"type:varchar(20);not null" json:"source"`
	CurrentStatus    PaymentStatus `gorm:"type:varchar(20);not null" json:"current_status"`
	SignalStatus     PaymentStatus `gorm:"type:varchar(20);not null" json:"signal_status"`
	GatewayPaymentID string        `gorm:"type:varchar(64)" json:"gateway_payment_id,omitempty"`
	Detail           string        `gorm:"type:text" json:"detail"`
	CreatedAt        time.Time     `gorm:"not null;index" json:"created_at"`
}
