package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	DatabaseDriver string
	Port           string
	IsProduction   bool
	EnableDBCheck  bool
	JWTSecret      string
	JWTIssuer      string

	// Reconciliation trigger and runner
	ReconcileSecret       string
	ReconcileDefaultLimit int
	ReconcileMaxLimit     int
	ReconcileConcurrency  int
	ReconcileTimeout      time.Duration
	ReconcileInterval     time.Duration
	RedisURL              string

	// Webhook ingestion
	WebhookClaimLease time.Duration
	WebhookRateLimit  string

	// Provider webhook secrets. An empty secret disables that provider's endpoint.
	StripeWebhookSecret    string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	PaystackSecretKey      string `mapstructure:"PAYSTACK_SECRET_KEY"`
	FlutterwaveWebhookHash string `mapstructure:"FLUTTERWAVE_WEBHOOK_HASH"`
	PayPalWebhookSecret    string `mapstructure:"PAYPAL_WEBHOOK_SECRET"`

	CORSAllowedOrigins []string
	OTelEnabled        bool
	OTelEndpoint       string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("DATABASE_DRIVER", DriverPostgres)
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("JWT_ISSUER", "payledger")
	viper.SetDefault("RECONCILE_SECRET", "")
	viper.SetDefault("RECONCILE_DEFAULT_LIMIT", 200)
	viper.SetDefault("RECONCILE_MAX_LIMIT", 1000)
	viper.SetDefault("RECONCILE_CONCURRENCY", 1)
	viper.SetDefault("RECONCILE_TIMEOUT", "2m")
	viper.SetDefault("RECONCILE_INTERVAL", "0s")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("WEBHOOK_CLAIM_LEASE", "5m")
	viper.SetDefault("WEBHOOK_RATE_LIMIT", "50-S")
	viper.SetDefault("STRIPE_WEBHOOK_SECRET", "")
	viper.SetDefault("PAYSTACK_SECRET_KEY", "")
	viper.SetDefault("FLUTTERWAVE_WEBHOOK_HASH", "")
	viper.SetDefault("PAYPAL_WEBHOOK_SECRET", "")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "")
	viper.SetDefault("OTEL_ENABLED", false)
	viper.SetDefault("OTEL_ENDPOINT", "")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseDriver = strings.ToLower(viper.GetString("DATABASE_DRIVER"))
	if cfg.DatabaseDriver != DriverPostgres && cfg.DatabaseDriver != DriverMemory {
		log.Printf("Warning: Invalid value for DATABASE_DRIVER ('%s'). Defaulting to %s.\n", cfg.DatabaseDriver, DriverPostgres)
		cfg.DatabaseDriver = DriverPostgres
	}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" && cfg.DatabaseDriver == DriverPostgres {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		log.Println("Warning: JWT_SECRET not set. The ledger read API will reject every request.")
	}
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.ReconcileSecret = viper.GetString("RECONCILE_SECRET")
	if cfg.ReconcileSecret == "" {
		log.Println("Warning: RECONCILE_SECRET not set. The reconciliation trigger will answer 503.")
	}

	cfg.ReconcileMaxLimit = viper.GetInt("RECONCILE_MAX_LIMIT")
	if cfg.ReconcileMaxLimit <= 0 {
		cfg.ReconcileMaxLimit = 1000
	}
	cfg.ReconcileDefaultLimit = viper.GetInt("RECONCILE_DEFAULT_LIMIT")
	if cfg.ReconcileDefaultLimit <= 0 || cfg.ReconcileDefaultLimit > cfg.ReconcileMaxLimit {
		log.Printf("Warning: Invalid value for RECONCILE_DEFAULT_LIMIT (%d). Defaulting to 200.\n", cfg.ReconcileDefaultLimit)
		cfg.ReconcileDefaultLimit = min(200, cfg.ReconcileMaxLimit)
	}
	cfg.ReconcileConcurrency = viper.GetInt("RECONCILE_CONCURRENCY")
	if cfg.ReconcileConcurrency <= 0 {
		cfg.ReconcileConcurrency = 1
	}

	cfg.ReconcileTimeout = durationOrDefault("RECONCILE_TIMEOUT", 2*time.Minute)
	cfg.ReconcileInterval = durationOrDefault("RECONCILE_INTERVAL", 0)
	cfg.WebhookClaimLease = durationOrDefault("WEBHOOK_CLAIM_LEASE", 5*time.Minute)
	cfg.RedisURL = viper.GetString("REDIS_URL")
	cfg.WebhookRateLimit = viper.GetString("WEBHOOK_RATE_LIMIT")

	cfg.StripeWebhookSecret = viper.GetString("STRIPE_WEBHOOK_SECRET")
	cfg.PaystackSecretKey = viper.GetString("PAYSTACK_SECRET_KEY")
	cfg.FlutterwaveWebhookHash = viper.GetString("FLUTTERWAVE_WEBHOOK_HASH")
	cfg.PayPalWebhookSecret = viper.GetString("PAYPAL_WEBHOOK_SECRET")

	for _, origin := range strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.OTelEnabled = viper.GetBool("OTEL_ENABLED")
	cfg.OTelEndpoint = viper.GetString("OTEL_ENDPOINT")

	return cfg, nil
}

// durationOrDefault reads a duration such as "90s" or "5m", falling back to def
// when the value does not parse.
func durationOrDefault(key string, def time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def)
		}
		return def
	}
	return d
}
