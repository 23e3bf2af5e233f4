package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/storefront-app/models"
	"github.com/yeremiapane/storefront-app/services"
	"github.com/yeremiapane/storefront-app/utils"
)

func setRequired(t *testing.T) {
	t.Setenv("RAZORPAY_KEY_SECRET", "secret")
	t.Setenv("JWT_SECRET", "jwt")
}

func TestLoad_Defaults(t *testing.T) {
	utils.SilenceLoggers()
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "INR", cfg.Currency)
	assert.Equal(t, 10*time.Second, cfg.GatewayTimeout)
	assert.Equal(t, 30*time.Minute, cfg.AbandonAfter)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.True(t, cfg.TaxRate.IsZero())
	assert.False(t, cfg.CorroboratePayments)
}

func TestLoad_FromEnvironment(t *testing.T) {
	utils.SilenceLoggers()
	setRequired(t)
	t.Setenv("PLATFORM_FEE_KIND", "percentage")
	t.Setenv("PLATFORM_FEE_VALUE", "2.5")
	t.Setenv("TAX_RATE", "5")
	t.Setenv("DELIVERY_BASE_FEE", "20")
	t.Setenv("DELIVERY_PER_KM_FEE", "8")
	t.Setenv("DELIVERY_MAX_RADIUS_KM", "7.5")
	t.Setenv("DELIVERY_FREE_THRESHOLD", "999")
	t.Setenv("STORE_LAT", "12.9716")
	t.Setenv("STORE_LNG", "77.5946")
	t.Setenv("GATEWAY_TIMEOUT", "3s")
	t.Setenv("CORROBORATE_PAYMENTS", "true")
	t.Setenv("CORS_ORIGINS", "https://shop.example.com, https://admin.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	pricing := cfg.PricingConfig()
	assert.Equal(t, services.PlatformFeePercentage, pricing.PlatformFee.Kind)
	assert.Equal(t, "2.5", pricing.PlatformFee.Value.String())
	assert.Equal(t, "5", pricing.Tax.Rate.String())
	assert.Equal(t, 7.5, pricing.Delivery.MaxRadiusKm)
	assert.Equal(t, "999", pricing.Delivery.FreeThreshold.String())
	assert.Equal(t, 12.9716, pricing.Origin.Lat)

	reconciler := cfg.ReconcilerConfig()
	assert.True(t, reconciler.CorroborateAmounts)
	assert.Equal(t, 3*time.Second, reconciler.GatewayTimeout)
	assert.Equal(t, []string{"https://shop.example.com", "https://admin.example.com"}, cfg.CORSOrigins)
}

func TestLoad_Rejects(t *testing.T) {
	utils.SilenceLoggers()

	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing key secret", map[string]string{"RAZORPAY_KEY_SECRET": "", "JWT_SECRET": "jwt"}},
		{"missing jwt secret", map[string]string{"RAZORPAY_KEY_SECRET": "s", "JWT_SECRET": ""}},
		{"bad driver", map[string]string{"RAZORPAY_KEY_SECRET": "s", "JWT_SECRET": "j", "DB_DRIVER": "postgres"}},
		{"bad fee kind", map[string]string{"RAZORPAY_KEY_SECRET": "s", "JWT_SECRET": "j", "PLATFORM_FEE_KIND": "tiered"}},
		{"bad decimal", map[string]string{"RAZORPAY_KEY_SECRET": "s", "JWT_SECRET": "j", "TAX_RATE": "five"}},
		{"negative tax", map[string]string{"RAZORPAY_KEY_SECRET": "s", "JWT_SECRET": "j", "TAX_RATE": "-1"}},
		{"tax rate too precise", map[string]string{"RAZORPAY_KEY_SECRET": "s", "JWT_SECRET": "j", "TAX_RATE": "18.505"}},
		{"fee percent too precise", map[string]string{"RAZORPAY_KEY_SECRET": "s", "JWT_SECRET": "j", "PLATFORM_FEE_KIND": "percentage", "PLATFORM_FEE_VALUE": "2.125"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestInitDB_Sqlite(t *testing.T) {
	utils.SilenceLoggers()
	db, err := InitDB(&Config{DBDriver: "sqlite", DBDSN: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	_, err = InitDB(&Config{DBDriver: "oracle"})
	assert.Error(t, err)
}
