package Controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/storefront-app/config"
	"github.com/yeremiapane/storefront-app/kds"
	"github.com/yeremiapane/storefront-app/models"
	"github.com/yeremiapane/storefront-app/router"
	"github.com/yeremiapane/storefront-app/services"
	"github.com/yeremiapane/storefront-app/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testKeySecret     = "rzp_secret"
	testWebhookSecret = "whsec_test"
	adminEmail        = "admin@example.com"
	adminPassword     = "password123"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.SilenceLoggers()
	utils.SetJWTSecret("controllers-test-secret")
}

type fakeGateway struct {
	mu        sync.Mutex
	createErr error
	seq       int
}

func (g *fakeGateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (*services.GatewayOrder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.seq++
	return &services.GatewayOrder{
		ID:       fmt.Sprintf("order_http%03d", g.seq),
		Amount:   amountMinor,
		Currency: currency,
		Receipt:  receipt,
		Status:   "created",
	}, nil
}

func (g *fakeGateway) FetchPayment(ctx context.Context, paymentID string) (*services.GatewayPayment, error) {
	return nil, errors.New("not used")
}

type testApp struct {
	db      *gorm.DB
	router  *gin.Engine
	gateway *fakeGateway
	menu    models.Menu
}

func testConfig() *config.Config {
	return &config.Config{
		Currency:              "INR",
		RazorpayKeyID:         "rzp_test_key",
		RazorpayKeySecret:     testKeySecret,
		RazorpayWebhookSecret: testWebhookSecret,
		GatewayTimeout:        2 * time.Second,
		AbandonAfter:          30 * time.Minute,
		PlatformFeeKind:       string(services.PlatformFeeFixed),
		DeliveryBaseFee:       decimal.NewFromInt(20),
		DeliveryPerKmFee:      decimal.NewFromInt(10),
		DeliveryMaxRadiusKm:   5,
		StoreLat:              12.9716,
		StoreLng:              77.5946,
		CORSOrigins:           []string{"*"},
	}
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	hashed, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{Name: "Admin", Email: adminEmail, Password: string(hashed), Role: models.RoleAdmin}).Error)

	menu := models.Menu{Name: "Paneer Tikka", Price: decimal.NewFromInt(250), IsAvailable: true}
	require.NoError(t, db.Create(&menu).Error)

	gateway := &fakeGateway{}
	deps := router.BuildDependencies(db, gateway, testConfig(), kds.NewHub())
	return &testApp{db: db, router: router.SetupRouter(deps), gateway: gateway, menu: menu}
}

type apiResponse struct {
	Status  bool             `json:"status"`
	Message string           `json:"message"`
	Data    json.RawMessage  `json:"data"`
	Error   *utils.ErrorBody `json:"error"`
}

func (a *testApp) do(t *testing.T, method, path string, body interface{}, token string, headers map[string]string) (int, apiResponse) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func (a *testApp) login(t *testing.T) string {
	t.Helper()
	code, resp := a.do(t, http.MethodPost, "/login", gin.H{"email": adminEmail, "password": adminPassword}, "", nil)
	require.Equal(t, http.StatusOK, code)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func (a *testApp) cart(quantity int) gin.H {
	return gin.H{"items": []gin.H{{"menu_id": a.menu.ID, "quantity": quantity}}}
}

func testBuyer() gin.H {
	return gin.H{"name": "Asha", "phone": "+91 98765-43210"}
}

type paymentOrderData struct {
	Payment struct {
		OrderID        string `json:"order_id"`
		GatewayOrderID string `json:"gateway_order_id"`
		AmountMinor    int64  `json:"amount_minor"`
		KeyID          string `json:"key_id"`
	} `json:"payment"`
}

func (a *testApp) createPaymentOrder(t *testing.T, quantity int) paymentOrderData {
	t.Helper()
	code, resp := a.do(t, http.MethodPost, "/payments/orders", gin.H{"buyer": testBuyer(), "cart": a.cart(quantity)}, "", nil)
	require.Equal(t, http.StatusCreated, code, resp.Message)

	var data paymentOrderData
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	return data
}

func decode(t *testing.T, raw json.RawMessage, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, out))
}
