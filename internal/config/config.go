package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"pagbridge/internal/gateway"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	API       APIConfig
	Gateways  GatewaysConfig
	Reconcile ReconcileConfig
}

type ServerConfig struct {
	Port int
	Env  string // "development", "production"
}

type DatabaseConfig struct {
	Host    string
	Port    string
	Name    string
	User    string
	Pass    string
	Charset string
}

type RedisConfig struct {
	Addr string
	Pass string
	DB   int
}

type APIConfig struct {
	Key string
}

type GatewaysConfig struct {
	Moip      gateway.MoipConfig
	PagSeguro gateway.PagSeguroConfig
}

type ReconcileConfig struct {
	// PendingTTL is how long a transaction may stay pending before the
	// reconciliation job marks it failed (boleto expiry window).
	PendingTTL time.Duration

	// DedupTTL bounds how long a notification fingerprint is remembered.
	DedupTTL time.Duration
}

// Load reads configuration from .env file and environment variables.
func Load() (*Config, error) {
	// Load .env file (ignore error if missing)
	_ = godotenv.Load()

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("APP_PORT", 8080)
	viper.SetDefault("APP_ENV", "production")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "3306")
	viper.SetDefault("DB_CHARSET", "utf8mb4")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("MOIP_TEST_MODE", false)
	viper.SetDefault("MOIP_DIRECT_PAYMENT", false)
	viper.SetDefault("MOIP_DIRECT_PAYMENT_DAYS", 5)
	viper.SetDefault("PAGSEGURO_TEST_MODE", false)
	viper.SetDefault("RECONCILE_PENDING_TTL", "72h")
	viper.SetDefault("CALLBACK_DEDUP_TTL", "48h")

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetInt("APP_PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		Database: DatabaseConfig{
			Host:    viper.GetString("DB_HOST"),
			Port:    viper.GetString("DB_PORT"),
			Name:    viper.GetString("DB_NAME"),
			User:    viper.GetString("DB_USER"),
			Pass:    viper.GetString("DB_PASS"),
			Charset: viper.GetString("DB_CHARSET"),
		},
		Redis: RedisConfig{
			Addr: viper.GetString("REDIS_ADDR"),
			Pass: viper.GetString("REDIS_PASS"),
			DB:   viper.GetInt("REDIS_DB"),
		},
		API: APIConfig{
			Key: viper.GetString("API_KEY"),
		},
		Gateways: GatewaysConfig{
			Moip: gateway.MoipConfig{
				Login:             viper.GetString("MOIP_LOGIN"),
				Email:             viper.GetString("MOIP_EMAIL"),
				Token:             viper.GetString("MOIP_TOKEN"),
				Key:               viper.GetString("MOIP_KEY"),
				Nickname:          viper.GetString("MOIP_NICKNAME"),
				DirectPayment:     viper.GetBool("MOIP_DIRECT_PAYMENT"),
				DirectPaymentDays: viper.GetInt("MOIP_DIRECT_PAYMENT_DAYS"),
				DirectPaymentLogo: viper.GetString("MOIP_DIRECT_PAYMENT_LOGO"),
				TestMode:          viper.GetBool("MOIP_TEST_MODE"),
			},
			PagSeguro: gateway.PagSeguroConfig{
				Email:    viper.GetString("PAGSEGURO_EMAIL"),
				Token:    viper.GetString("PAGSEGURO_TOKEN"),
				PercTax:  decimalSetting("PAGSEGURO_PERC_TAX"),
				FixedTax: decimalSetting("PAGSEGURO_FIXED_TAX"),
				TestMode: viper.GetBool("PAGSEGURO_TEST_MODE"),
			},
		},
		Reconcile: ReconcileConfig{
			PendingTTL: durationSetting("RECONCILE_PENDING_TTL", 72*time.Hour),
			DedupTTL:   durationSetting("CALLBACK_DEDUP_TTL", 48*time.Hour),
		},
	}

	if cfg.Database.Name == "" {
		log.Println("WARNING: DB_NAME is not set")
	}

	return cfg, nil
}

// DSN returns the MySQL DSN string for GORM.
func (d *DatabaseConfig) DSN() string {
	return d.User + ":" + d.Pass + "@tcp(" + d.Host + ":" + d.Port + ")/" + d.Name + "?charset=" + d.Charset + "&parseTime=True&loc=Local"
}

func decimalSetting(key string) decimal.Decimal {
	raw := viper.GetString(key)
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		log.Printf("WARNING: %s is not a number, using 0", key)
		return decimal.Zero
	}
	return d
}

func durationSetting(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil {
		return fallback
	}
	return d
}
