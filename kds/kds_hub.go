package kds

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/storefront-app/models"
	"github.com/yeremiapane/storefront-app/utils"
)

// Event types
const (
	EventOrderUpdate   = "order_update"
	EventPaymentUpdate = "payment_update"
	EventStaffNotif    = "staff_notification"
)

const writeWait = 5 * time.Second

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Client -> koneksi yang bisa menerima pesan, *websocket.Conn memenuhi interface ini
type Client interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Hub menampung semua client feed staff (staff, admin) dan melakukan broadcast
type Hub struct {
	clients map[Client]string // conn -> role
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[Client]string)}
}

// RegisterClient -> menambahkan connection ke set dengan role
func (h *Hub) RegisterClient(conn Client, role string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = role
}

// UnregisterClient -> melepaskan connection
func (h *Hub) UnregisterClient(conn Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// OrderSummary -> ringkasan order untuk layar staff
type OrderSummary struct {
	ID            string                 `json:"id"`
	Status        models.OrderStatus     `json:"status"`
	IsAccepted    bool                   `json:"is_accepted"`
	PaymentStatus models.PaymentStatus   `json:"payment_status"`
	PaymentMethod models.PaymentMethod   `json:"payment_method"`
	GrandTotal    string                 `json:"grand_total"`
	Items         []models.OrderLineItem `json:"items"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

func summarize(order models.Order) OrderSummary {
	return OrderSummary{
		ID:            order.ID,
		Status:        order.Status,
		IsAccepted:    order.IsAccepted,
		PaymentStatus: order.PaymentStatus,
		PaymentMethod: order.PaymentMethod,
		GrandTotal:    utils.FormatMoney(order.GrandTotal, order.Currency),
		Items:         order.Items,
		UpdatedAt:     order.UpdatedAt,
	}
}

// OrderUpdated -> menyiarkan perubahan order ke semua client
func (h *Hub) OrderUpdated(order models.Order) {
	h.broadcast(Message{Event: EventOrderUpdate, Data: summarize(order)})
}

// PaymentUpdated -> menyiarkan perubahan status pembayaran
func (h *Hub) PaymentUpdated(order models.Order) {
	h.broadcast(Message{Event: EventPaymentUpdate, Data: summarize(order)})
}

// BroadcastStaffNotification -> notifikasi teks untuk staff
func (h *Hub) BroadcastStaffNotification(message string) {
	h.broadcast(Message{Event: EventStaffNotif, Data: message})
}

// broadcast -> client yang gagal menerima pesan dilepas
func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling message: %v", err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn, role := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("Error sending %s to client with role %s: %v", msg.Event, role, err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}
