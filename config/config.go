package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/yeremiapane/storefront-app/services"
	"github.com/yeremiapane/storefront-app/utils"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config menyimpan seluruh konfigurasi aplikasi
type Config struct {
	Port     string
	GinMode  string
	LogLevel string

	DBDriver string
	DBDSN    string

	JWTSecret     string
	AdminEmail    string
	AdminPassword string
	CORSOrigins   []string

	RazorpayKeyID         string
	RazorpayKeySecret     string
	RazorpayWebhookSecret string
	RazorpayBaseURL       string
	GatewayTimeout        time.Duration
	CorroboratePayments   bool
	AbandonAfter          time.Duration

	Currency         string
	PlatformFeeKind  string
	PlatformFeeValue decimal.Decimal
	TaxRate          decimal.Decimal

	DeliveryBaseFee       decimal.Decimal
	DeliveryPerKmFee      decimal.Decimal
	DeliveryMaxRadiusKm   float64
	DeliveryFreeThreshold decimal.Decimal
	StoreLat              float64
	StoreLng              float64
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_DSN", "storefront.db")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("RAZORPAY_KEY_ID", "")
	v.SetDefault("RAZORPAY_KEY_SECRET", "")
	v.SetDefault("RAZORPAY_WEBHOOK_SECRET", "")
	v.SetDefault("RAZORPAY_BASE_URL", "https://api.razorpay.com")
	v.SetDefault("GATEWAY_TIMEOUT", "10s")
	v.SetDefault("CORROBORATE_PAYMENTS", false)
	v.SetDefault("ABANDON_AFTER", "30m")
	v.SetDefault("CURRENCY", "INR")
	v.SetDefault("PLATFORM_FEE_KIND", "fixed")
	v.SetDefault("PLATFORM_FEE_VALUE", "0")
	v.SetDefault("TAX_RATE", "0")
	v.SetDefault("DELIVERY_BASE_FEE", "0")
	v.SetDefault("DELIVERY_PER_KM_FEE", "0")
	v.SetDefault("DELIVERY_MAX_RADIUS_KM", 10)
	v.SetDefault("DELIVERY_FREE_THRESHOLD", "0")
	v.SetDefault("STORE_LAT", 0)
	v.SetDefault("STORE_LNG", 0)
}

// Load membaca .env (opsional), config.yaml (opsional), lalu environment variable
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Println("No .env file found, using environment variables")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config.yaml: %w", err)
		}
	}

	cfg := &Config{
		Port:                  v.GetString("PORT"),
		GinMode:               v.GetString("GIN_MODE"),
		LogLevel:              v.GetString("LOG_LEVEL"),
		DBDriver:              strings.ToLower(v.GetString("DB_DRIVER")),
		DBDSN:                 v.GetString("DB_DSN"),
		JWTSecret:             v.GetString("JWT_SECRET"),
		AdminEmail:            v.GetString("ADMIN_EMAIL"),
		AdminPassword:         v.GetString("ADMIN_PASSWORD"),
		CORSOrigins:           splitList(v.GetString("CORS_ORIGINS")),
		RazorpayKeyID:         v.GetString("RAZORPAY_KEY_ID"),
		RazorpayKeySecret:     v.GetString("RAZORPAY_KEY_SECRET"),
		RazorpayWebhookSecret: v.GetString("RAZORPAY_WEBHOOK_SECRET"),
		RazorpayBaseURL:       v.GetString("RAZORPAY_BASE_URL"),
		GatewayTimeout:        v.GetDuration("GATEWAY_TIMEOUT"),
		CorroboratePayments:   v.GetBool("CORROBORATE_PAYMENTS"),
		AbandonAfter:          v.GetDuration("ABANDON_AFTER"),
		Currency:              strings.ToUpper(v.GetString("CURRENCY")),
		PlatformFeeKind:       strings.ToLower(v.GetString("PLATFORM_FEE_KIND")),
		DeliveryMaxRadiusKm:   v.GetFloat64("DELIVERY_MAX_RADIUS_KM"),
		StoreLat:              v.GetFloat64("STORE_LAT"),
		StoreLng:              v.GetFloat64("STORE_LNG"),
	}

	decimals := []struct {
		key    string
		target *decimal.Decimal
	}{
		{"PLATFORM_FEE_VALUE", &cfg.PlatformFeeValue},
		{"TAX_RATE", &cfg.TaxRate},
		{"DELIVERY_BASE_FEE", &cfg.DeliveryBaseFee},
		{"DELIVERY_PER_KM_FEE", &cfg.DeliveryPerKmFee},
		{"DELIVERY_FREE_THRESHOLD", &cfg.DeliveryFreeThreshold},
	}
	for _, d := range decimals {
		value, err := decimal.NewFromString(strings.TrimSpace(v.GetString(d.key)))
		if err != nil {
			return nil, fmt.Errorf("%s must be a decimal number: %w", d.key, err)
		}
		*d.target = value
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate -> secret wajib harus ada, nilai kebijakan harus masuk akal
func (c *Config) Validate() error {
	if c.RazorpayKeySecret == "" {
		return errors.New("RAZORPAY_KEY_SECRET is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.DBDriver != "mysql" && c.DBDriver != "sqlite" {
		return fmt.Errorf("DB_DRIVER must be mysql or sqlite, got %q", c.DBDriver)
	}
	if len(c.Currency) != 3 {
		return fmt.Errorf("CURRENCY must be a 3-letter code, got %q", c.Currency)
	}
	switch services.PlatformFeeKind(c.PlatformFeeKind) {
	case services.PlatformFeeFixed, services.PlatformFeePercentage:
	default:
		return fmt.Errorf("PLATFORM_FEE_KIND must be fixed or percentage, got %q", c.PlatformFeeKind)
	}
	if c.PlatformFeeValue.IsNegative() || c.TaxRate.IsNegative() {
		return errors.New("PLATFORM_FEE_VALUE and TAX_RATE must not be negative")
	}
	// Kolom fee dan pajak menyimpan 6 desimal: nominal 2 desimal x persen 2 desimal / 100
	if c.TaxRate.Exponent() < -2 || (services.PlatformFeeKind(c.PlatformFeeKind) == services.PlatformFeePercentage && c.PlatformFeeValue.Exponent() < -2) {
		return errors.New("TAX_RATE and percentage PLATFORM_FEE_VALUE allow at most 2 decimal places")
	}
	if c.DeliveryBaseFee.IsNegative() || c.DeliveryPerKmFee.IsNegative() || c.DeliveryFreeThreshold.IsNegative() || c.DeliveryMaxRadiusKm < 0 {
		return errors.New("delivery settings must not be negative")
	}
	if c.GatewayTimeout <= 0 {
		return errors.New("GATEWAY_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) RazorpayConfig() services.RazorpayConfig {
	return services.RazorpayConfig{
		KeyID:     c.RazorpayKeyID,
		KeySecret: c.RazorpayKeySecret,
		BaseURL:   c.RazorpayBaseURL,
		Timeout:   c.GatewayTimeout,
	}
}

func (c *Config) ReconcilerConfig() services.ReconcilerConfig {
	return services.ReconcilerConfig{
		KeyID:              c.RazorpayKeyID,
		KeySecret:          c.RazorpayKeySecret,
		WebhookSecret:      c.RazorpayWebhookSecret,
		Currency:           c.Currency,
		CorroborateAmounts: c.CorroboratePayments,
		GatewayTimeout:     c.GatewayTimeout,
	}
}

func (c *Config) PricingConfig() services.PricingConfig {
	return services.PricingConfig{
		Currency:    c.Currency,
		PlatformFee: services.PlatformFeePolicy{Kind: services.PlatformFeeKind(c.PlatformFeeKind), Value: c.PlatformFeeValue},
		Tax:         services.TaxPolicy{Rate: c.TaxRate},
		Delivery: services.FeeSchedule{
			BaseFee:       c.DeliveryBaseFee,
			PerKmFee:      c.DeliveryPerKmFee,
			MaxRadiusKm:   c.DeliveryMaxRadiusKm,
			FreeThreshold: c.DeliveryFreeThreshold,
		},
		Origin: services.Coordinates{Lat: c.StoreLat, Lng: c.StoreLng},
	}
}

// InitDB membuka koneksi database sesuai DB_DRIVER
func InitDB(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "mysql":
		dialector = mysql.Open(cfg.DBDSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DBDSN)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	logLevel := logger.Warn
	if cfg.GinMode == "debug" {
		logLevel = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logLevel)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if cfg.DBDriver == "sqlite" {
		// sqlite hanya mendukung satu writer
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	utils.InfoLogger.Printf("Database connected using %s driver", cfg.DBDriver)
	return db, nil
}
