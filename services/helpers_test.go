package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/storefront-app/models"
	"github.com/yeremiapane/storefront-app/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	utils.SilenceLoggers()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// satu koneksi supaya semua query melihat database in-memory yang sama
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedMenu(t *testing.T, db *gorm.DB, name, price string) models.Menu {
	t.Helper()
	menu := models.Menu{Name: name, Price: dec(price), IsAvailable: true}
	require.NoError(t, db.Create(&menu).Error)
	return menu
}

// fakeGateway -> gateway palsu untuk test, ID dibuat berurutan
type fakeGateway struct {
	mu        sync.Mutex
	createErr error
	fetchErr  error
	orders    []GatewayOrder
	payments  map[string]GatewayPayment
	seq       int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{payments: make(map[string]GatewayPayment)}
}

func (g *fakeGateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (*GatewayOrder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.seq++
	order := GatewayOrder{
		ID:       fmt.Sprintf("order_test%03d", g.seq),
		Amount:   amountMinor,
		Currency: currency,
		Receipt:  receipt,
		Status:   "created",
	}
	g.orders = append(g.orders, order)
	return &order, nil
}

func (g *fakeGateway) FetchPayment(ctx context.Context, paymentID string) (*GatewayPayment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}
	payment, ok := g.payments[paymentID]
	if !ok {
		return nil, errors.New("payment not found")
	}
	return &payment, nil
}

func (g *fakeGateway) addPayment(p GatewayPayment) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.payments[p.ID] = p
}

// recordingNotifier mencatat event yang dikirim ke feed staff
type recordingNotifier struct {
	mu       sync.Mutex
	orders   []string
	payments []string
}

func (n *recordingNotifier) OrderUpdated(order models.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, order.ID)
}

func (n *recordingNotifier) PaymentUpdated(order models.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.payments = append(n.payments, order.ID)
}

func sampleQuote(total string) *Quote {
	return &Quote{
		Items: []models.OrderLineItem{
			{MenuID: 1, Name: "Paneer Tikka", UnitPrice: dec(total), Quantity: 1},
		},
		Breakdown: Breakdown{
			Subtotal:   dec(total),
			GrandTotal: dec(total),
		},
		Currency: "INR",
	}
}
