package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"contipay-be/internal/contipay"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	AppPort    string
	AppEnv     string

	// ContiPay credentials and endpoints
	ContipayKey        string
	ContipaySecret     string
	ContipayMerchantID int64
	ContipayLiveMode   bool
	ContipayLiveURL    string
	ContipayTestURL    string
	ContipayTimeout    time.Duration
	AllowOfflinePay    bool

	// Public URLs the gateway and browsers are sent to
	PublicBaseURL       string
	StoreCartURL        string
	StoreConfirmURL     string
	StoreModuleID       int64
	ReferenceSigningKey string
	ReferenceTTL        time.Duration

	// Store backend authentication
	ServiceSecret string
	CORSOrigins   []string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     os.Getenv("DB_PORT"),
		AppPort:    envOr("APP_PORT", "8080"),
		AppEnv:     os.Getenv("APP_ENV"),

		ContipayKey:        os.Getenv("CONTIPAY_AUTH_KEY"),
		ContipaySecret:     os.Getenv("CONTIPAY_AUTH_PASS"),
		ContipayMerchantID: envInt("CONTIPAY_CID", 0),
		ContipayLiveMode:   envBool("CONTIPAY_LIVE_MODE", false),
		ContipayLiveURL:    envOr("CONTIPAY_LIVE_URL", contipay.DefaultLiveURL),
		ContipayTestURL:    envOr("CONTIPAY_TEST_URL", contipay.DefaultTestURL),
		ContipayTimeout:    envDuration("CONTIPAY_TIMEOUT", contipay.DefaultTimeout),
		AllowOfflinePay:    envBool("CONTIPAY_ALLOW_OFFLINE", false),

		PublicBaseURL:       strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		StoreCartURL:        os.Getenv("STORE_CART_URL"),
		StoreConfirmURL:     os.Getenv("STORE_CONFIRM_URL"),
		StoreModuleID:       envInt("STORE_MODULE_ID", 0),
		ReferenceSigningKey: os.Getenv("REFERENCE_SIGNING_KEY"),
		ReferenceTTL:        envDuration("REFERENCE_TTL", 72*time.Hour),

		ServiceSecret: os.Getenv("SERVICE_SECRET"),
		CORSOrigins:   envList("CORS_ALLOWED_ORIGINS"),
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}
	if cfg.ContipayKey == "" || cfg.ContipaySecret == "" {
		log.Fatal("ContiPay credentials are not configured")
	}

	return cfg
}

// ContiPay returns the gateway client settings.
func (c *Config) ContiPay() contipay.Config {
	return contipay.Config{
		LiveMode:   c.ContipayLiveMode,
		LiveURL:    c.ContipayLiveURL,
		TestURL:    c.ContipayTestURL,
		Timeout:    c.ContipayTimeout,
		MerchantID: c.ContipayMerchantID,
		Credentials: contipay.Credentials{
			Key:    c.ContipayKey,
			Secret: c.ContipaySecret,
		},
		AllowOfflinePayment: c.AllowOfflinePay,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func envInt(key string, fallback int64) int64 {
	v, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func envList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
