package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration derived from environment variables.
type Config struct {
	HTTPPort            string
	LogLevel            string
	SeedBalance         string
	SeedHistory         bool
	RecipientNameMinLen int
	DefaultPhoneRegion  string
	GatewayLatency      time.Duration
	PublicRateLimitRPS  int
}

// Load reads environment variables using viper and returns a typed config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	bindEnv(v, "port", "PORT", "WALLET_PORT")
	bindEnv(v, "log_level", "LOG_LEVEL", "WALLET_LOG_LEVEL")
	bindEnv(v, "seed_balance", "SEED_BALANCE", "WALLET_SEED_BALANCE")
	bindEnv(v, "seed_history", "SEED_HISTORY", "WALLET_SEED_HISTORY")
	bindEnv(v, "recipient_name_min_len", "RECIPIENT_NAME_MIN_LEN", "WALLET_RECIPIENT_NAME_MIN_LEN")
	bindEnv(v, "default_phone_region", "DEFAULT_PHONE_REGION", "WALLET_DEFAULT_PHONE_REGION")
	bindEnv(v, "gateway_latency", "GATEWAY_LATENCY", "WALLET_GATEWAY_LATENCY")
	bindEnv(v, "public_rate_limit_rps", "PUBLIC_RATE_LIMIT_RPS", "WALLET_PUBLIC_RATE_LIMIT_RPS")

	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("seed_balance", "1500.75")
	v.SetDefault("seed_history", true)
	v.SetDefault("recipient_name_min_len", 8)
	v.SetDefault("default_phone_region", "GR")
	v.SetDefault("gateway_latency", "3s")
	v.SetDefault("public_rate_limit_rps", 10)

	latency, err := time.ParseDuration(v.GetString("gateway_latency"))
	if err != nil {
		return nil, fmt.Errorf("invalid GATEWAY_LATENCY: %w", err)
	}

	minLen := v.GetInt("recipient_name_min_len")
	if minLen <= 0 {
		minLen = 8
	}

	cfg := &Config{
		HTTPPort:            v.GetString("port"),
		LogLevel:            v.GetString("log_level"),
		SeedBalance:         v.GetString("seed_balance"),
		SeedHistory:         v.GetBool("seed_history"),
		RecipientNameMinLen: minLen,
		DefaultPhoneRegion:  v.GetString("default_phone_region"),
		GatewayLatency:      latency,
		PublicRateLimitRPS:  max(v.GetInt("public_rate_limit_rps"), 1),
	}

	return cfg, nil
}

func bindEnv(v *viper.Viper, key string, names ...string) {
	args := append([]string{key}, names...)
	_ = v.BindEnv(args...)
}
