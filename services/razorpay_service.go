package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yeremiapane/storefront-app/utils"
)

const defaultRazorpayBaseURL = "https://api.razorpay.com"

// RazorpayConfig menyimpan konfigurasi Razorpay
type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	Timeout   time.Duration
}

// GatewayOrder -> order di sisi gateway, amount dalam unit minor
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type GatewayPayment struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Method   string `json:"method"`
}

// Gateway -> operasi payment gateway yang dibutuhkan reconciler
type Gateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (*GatewayOrder, error)
	FetchPayment(ctx context.Context, paymentID string) (*GatewayPayment, error)
}

// RazorpayService handles Razorpay API interactions
type RazorpayService struct {
	config     RazorpayConfig
	httpClient *http.Client
}

// NewRazorpayService creates a new instance of RazorpayService
func NewRazorpayService(config RazorpayConfig, httpClient *http.Client) *RazorpayService {
	if httpClient == nil {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &RazorpayService{config: config, httpClient: httpClient}
}

// ValidateConfig validates Razorpay configuration
func (rs *RazorpayService) ValidateConfig() error {
	if rs.config.KeyID == "" {
		return fmt.Errorf("RAZORPAY_KEY_ID is not set")
	}
	if rs.config.KeySecret == "" {
		return fmt.Errorf("RAZORPAY_KEY_SECRET is not set")
	}
	if rs.config.BaseURL != "" {
		if _, err := url.ParseRequestURI(rs.config.BaseURL); err != nil {
			return fmt.Errorf("RAZORPAY_BASE_URL is invalid: %v", err)
		}
	}
	return nil
}

func (rs *RazorpayService) KeyID() string {
	return rs.config.KeyID
}

type razorpayErrorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder membuat order di Razorpay
func (rs *RazorpayService) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (*GatewayOrder, error) {
	payload := map[string]interface{}{
		"amount":   amountMinor,
		"currency": currency,
		"receipt":  receipt,
	}
	if len(notes) > 0 {
		payload["notes"] = notes
	}

	var order GatewayOrder
	if err := rs.do(ctx, http.MethodPost, "/v1/orders", payload, &order); err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Razorpay order %s created for receipt %s (%d %s)", order.ID, receipt, order.Amount, order.Currency)
	return &order, nil
}

// FetchPayment mengambil detail payment untuk dicocokkan dengan order
func (rs *RazorpayService) FetchPayment(ctx context.Context, paymentID string) (*GatewayPayment, error) {
	if paymentID == "" {
		return nil, fmt.Errorf("payment id is required")
	}
	var payment GatewayPayment
	if err := rs.do(ctx, http.MethodGet, "/v1/payments/"+url.PathEscape(paymentID), nil, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (rs *RazorpayService) do(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("error marshaling request: %v", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, rs.getBaseURL()+path, body)
	if err != nil {
		return fmt.Errorf("error creating request: %v", err)
	}
	req.SetBasicAuth(rs.config.KeyID, rs.config.KeySecret)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := rs.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr razorpayErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Description != "" {
			return fmt.Errorf("razorpay API error (status %d, %s): %s", resp.StatusCode, apiErr.Error.Code, apiErr.Error.Description)
		}
		return fmt.Errorf("razorpay API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("error unmarshaling response: %v", err)
	}
	return nil
}

// getBaseURL returns the Razorpay API base URL
func (rs *RazorpayService) getBaseURL() string {
	if rs.config.BaseURL != "" {
		return strings.TrimRight(rs.config.BaseURL, "/")
	}
	return defaultRazorpayBaseURL
}

func hmacHex(secret string, message []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignCheckout -> HMAC-SHA256(keySecret, "<orderId>|<paymentId>") dalam hex
func SignCheckout(keySecret, gatewayOrderID, gatewayPaymentID string) string {
	return hmacHex(keySecret, []byte(gatewayOrderID+"|"+gatewayPaymentID))
}

// VerifyCheckoutSignature membandingkan signature checkout secara constant-time
func VerifyCheckoutSignature(keySecret, gatewayOrderID, gatewayPaymentID, signature string) bool {
	if keySecret == "" || signature == "" {
		return false
	}
	expected := SignCheckout(keySecret, gatewayOrderID, gatewayPaymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// SignWebhook -> HMAC-SHA256(webhookSecret, rawBody) dalam hex
func SignWebhook(webhookSecret string, rawBody []byte) string {
	return hmacHex(webhookSecret, rawBody)
}

func VerifyWebhookSignature(webhookSecret string, rawBody []byte, signature string) bool {
	if webhookSecret == "" || signature == "" {
		return false
	}
	return hmac.Equal([]byte(SignWebhook(webhookSecret, rawBody)), []byte(signature))
}
