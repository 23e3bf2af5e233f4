package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRazorpayService_ValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  RazorpayConfig
		wantErr bool
	}{
		{
			name:    "valid config",
			config:  RazorpayConfig{KeyID: "rzp_test_key", KeySecret: "secret"},
			wantErr: false,
		},
		{
			name:    "missing key id",
			config:  RazorpayConfig{KeySecret: "secret"},
			wantErr: true,
		},
		{
			name:    "missing key secret",
			config:  RazorpayConfig{KeyID: "rzp_test_key"},
			wantErr: true,
		},
		{
			name:    "invalid base url",
			config:  RazorpayConfig{KeyID: "rzp_test_key", KeySecret: "secret", BaseURL: "not a url"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := NewRazorpayService(tt.config, nil)
			err := rs.ValidateConfig()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRazorpayService_CreateOrder(t *testing.T) {
	tests := []struct {
		name           string
		mockResponse   string
		mockStatusCode int
		wantID         string
		wantErr        bool
	}{
		{
			name:           "order created",
			mockResponse:   `{"id":"order_abc","entity":"order","amount":45000,"currency":"INR","receipt":"r-1","status":"created"}`,
			mockStatusCode: http.StatusOK,
			wantID:         "order_abc",
		},
		{
			name:           "api error",
			mockResponse:   `{"error":{"code":"BAD_REQUEST_ERROR","description":"amount must be at least 100"}}`,
			mockStatusCode: http.StatusBadRequest,
			wantErr:        true,
		},
		{
			name:           "gateway down",
			mockResponse:   `<html>bad gateway</html>`,
			mockStatusCode: http.StatusBadGateway,
			wantErr:        true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotBody map[string]interface{}
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				user, pass, ok := r.BasicAuth()
				assert.True(t, ok)
				assert.Equal(t, "rzp_test_key", user)
				assert.Equal(t, "secret", pass)
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/v1/orders", r.URL.Path)
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

				w.WriteHeader(tt.mockStatusCode)
				w.Write([]byte(tt.mockResponse))
			}))
			defer server.Close()

			rs := NewRazorpayService(RazorpayConfig{
				KeyID:     "rzp_test_key",
				KeySecret: "secret",
				BaseURL:   server.URL,
			}, server.Client())

			order, err := rs.CreateOrder(context.Background(), 45000, "INR", "r-1", map[string]string{"order_id": "r-1"})
			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateOrder() error = %v, wantErr %v", err, tt.wantErr)
			}
			assert.Equal(t, float64(45000), gotBody["amount"])
			assert.Equal(t, "INR", gotBody["currency"])
			if !tt.wantErr {
				assert.Equal(t, tt.wantID, order.ID)
				assert.Equal(t, int64(45000), order.Amount)
			}
		})
	}
}

func TestRazorpayService_FetchPayment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		if r.URL.Path != "/v1/payments/pay_1" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"The id provided does not exist"}}`))
			return
		}
		w.Write([]byte(`{"id":"pay_1","order_id":"order_abc","amount":45000,"currency":"INR","status":"captured","method":"upi"}`))
	}))
	defer server.Close()

	rs := NewRazorpayService(RazorpayConfig{KeyID: "k", KeySecret: "s", BaseURL: server.URL + "/"}, server.Client())

	payment, err := rs.FetchPayment(context.Background(), "pay_1")
	assert.NoError(t, err)
	assert.Equal(t, "order_abc", payment.OrderID)
	assert.Equal(t, "captured", payment.Status)

	_, err = rs.FetchPayment(context.Background(), "pay_missing")
	assert.Error(t, err)

	_, err = rs.FetchPayment(context.Background(), "")
	assert.Error(t, err)
}

func TestRazorpayService_RespectsContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	rs := NewRazorpayService(RazorpayConfig{KeyID: "k", KeySecret: "s", BaseURL: server.URL}, server.Client())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := rs.CreateOrder(ctx, 100, "INR", "r", nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSignWebhook_KnownVector(t *testing.T) {
	// RFC 4231 test case 2
	got := SignWebhook("Jefe", []byte("what do ya want for nothing?"))
	assert.Equal(t, "5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843", got)
}

func TestSignCheckout_JoinsWithPipe(t *testing.T) {
	assert.Equal(t, SignWebhook("secret", []byte("order_1|pay_1")), SignCheckout("secret", "order_1", "pay_1"))
}

func TestVerifyCheckoutSignature_RejectsSingleBitChange(t *testing.T) {
	const secret = "key-secret"
	orderID, paymentID := "order_9Xk2", "pay_77Lm"
	signature := SignCheckout(secret, orderID, paymentID)
	assert.True(t, VerifyCheckoutSignature(secret, orderID, paymentID, signature))

	flipEachBit := func(s string, check func(mutated string)) {
		for i := 0; i < len(s); i++ {
			for bit := 0; bit < 8; bit++ {
				b := []byte(s)
				b[i] ^= 1 << bit
				check(string(b))
			}
		}
	}

	flipEachBit(orderID, func(m string) {
		assert.False(t, VerifyCheckoutSignature(secret, m, paymentID, signature), "order id %q", m)
	})
	flipEachBit(paymentID, func(m string) {
		assert.False(t, VerifyCheckoutSignature(secret, orderID, m, signature), "payment id %q", m)
	})
	flipEachBit(signature, func(m string) {
		assert.False(t, VerifyCheckoutSignature(secret, orderID, paymentID, m), "signature %q", m)
	})

	assert.False(t, VerifyCheckoutSignature("", orderID, paymentID, signature))
	assert.False(t, VerifyCheckoutSignature(secret, orderID, paymentID, ""))
}

func TestVerifyWebhookSignature(t *testing.T) {
	body := []byte(`{"event":"payment.captured"}`)
	sig := SignWebhook("whsec", body)

	assert.True(t, VerifyWebhookSignature("whsec", body, sig))
	assert.False(t, VerifyWebhookSignature("whsec", []byte(`{"event":"payment.failed"}`), sig))
	assert.False(t, VerifyWebhookSignature("other", body, sig))
	assert.False(t, VerifyWebhookSignature("", body, sig))
}
