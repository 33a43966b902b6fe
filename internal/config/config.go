package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Settings backends.
const (
	SettingsBackendStatic = "static"
	SettingsBackendRedis  = "redis"
)

// Config holds all application configuration.
type Config struct {
	Server        ServerConfig          `mapstructure:"server"`
	Auth          AuthConfig            `mapstructure:"auth"`
	CORS          CORSConfig            `mapstructure:"cors"`
	RateLimit     RateLimitConfig       `mapstructure:"rate_limit"`
	Log           LogConfig             `mapstructure:"log"`
	Redis         RedisConfig           `mapstructure:"redis"`
	Supabase      SupabaseConfig        `mapstructure:"supabase"`
	Postgres      PostgresConfig        `mapstructure:"postgres"`
	Gateway       GatewayConfig         `mapstructure:"gateway"`
	Shop          ShopConfig            `mapstructure:"shop"`
	Admin         AdminConfig           `mapstructure:"admin"`
	Reviews       ReviewsConfig         `mapstructure:"reviews"`
	Settings      SettingsConfig        `mapstructure:"settings"`
	Notifications map[string]RuleConfig `mapstructure:"notifications"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// AuthConfig holds API key authentication settings.
type AuthConfig struct {
	APIKeys []string `mapstructure:"api_keys"`
}

// CORSConfig holds CORS policy settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

// RateLimitConfig holds rate limiting settings.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
	IdleTTLSec        int     `mapstructure:"idle_ttl_sec"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SupabaseConfig holds Supabase project settings.
type SupabaseConfig struct {
	URL        string `mapstructure:"url"`
	ServiceKey string `mapstructure:"service_key"`
}

// PostgresConfig holds the shop database connection.
type PostgresConfig struct {
	DSN             string `mapstructure:"dsn"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime_sec"`
}

// GatewayConfig holds the messaging gateway endpoint and credentials.
type GatewayConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	TimeoutSec int    `mapstructure:"timeout_sec"`
	UserID     string `mapstructure:"user_id"`
	Password   string `mapstructure:"password"`
	WabaNumber string `mapstructure:"waba_number"`
}

// ShopConfig holds shop-level template values. Formats are Go time layouts.
type ShopConfig struct {
	Name       string `mapstructure:"name"`
	DateFormat string `mapstructure:"date_format"`
	TimeFormat string `mapstructure:"time_format"`
	Timezone   string `mapstructure:"timezone"`
}

// AdminConfig holds admin fan-out settings.
type AdminConfig struct {
	Notify bool   `mapstructure:"notify"`
	Mobile string `mapstructure:"mobile"`
}

// ReviewsConfig holds the shared review notification toggle.
type ReviewsConfig struct {
	Notify bool `mapstructure:"notify"`
}

// SettingsConfig selects where rules and global settings are read from.
type SettingsConfig struct {
	Backend  string `mapstructure:"backend"`
	RedisKey string `mapstructure:"redis_key"`
}

// RuleConfig is one notification rule as written in config.yaml.
type RuleConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	MessageType    string `mapstructure:"message_type"`
	MediaType      string `mapstructure:"media_type"`
	MediaURL       string `mapstructure:"media_url"`
	TemplateName   string `mapstructure:"template_name"`
	Header         string `mapstructure:"header"`
	Body           string `mapstructure:"body"`
	Footer         string `mapstructure:"footer"`
	ButtonsPayload string `mapstructure:"buttons_payload"`
}

// Load reads configuration from config.yaml and environment variables.
// Environment variables use the WABALERTS_ prefix and underscore separators.
// Example: WABALERTS_GATEWAY_PASSWORD overrides gateway.password in config.yaml.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	_ = godotenv.Load()

	v.SetEnvPrefix("WABALERTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional, env vars can provide everything)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	return decode(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8081)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("rate_limit.requests_per_second", 10)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("rate_limit.idle_ttl_sec", 600)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	// Keys without a default are invisible to AutomaticEnv during Unmarshal.
	v.SetDefault("auth.api_keys", []string{})
	v.SetDefault("supabase.url", "")
	v.SetDefault("supabase.service_key", "")
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("gateway.user_id", "")
	v.SetDefault("gateway.password", "")
	v.SetDefault("gateway.waba_number", "")
	v.SetDefault("shop.name", "")
	v.SetDefault("admin.notify", false)
	v.SetDefault("admin.mobile", "")
	v.SetDefault("reviews.notify", false)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime_sec", 300)
	v.SetDefault("gateway.base_url", "https://wabaapi.com/")
	v.SetDefault("gateway.timeout_sec", 30)
	v.SetDefault("shop.date_format", "January 2, 2006")
	v.SetDefault("shop.time_format", "3:04 pm")
	v.SetDefault("shop.timezone", "UTC")
	v.SetDefault("settings.backend", SettingsBackendStatic)
	v.SetDefault("settings.redis_key", "wabalerts:settings")
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// API keys may arrive as one comma-separated env var
	keys := make([]string, 0, len(cfg.Auth.APIKeys))
	for _, k := range cfg.Auth.APIKeys {
		for _, part := range strings.Split(k, ",") {
			if part = strings.TrimSpace(part); part != "" {
				keys = append(keys, part)
			}
		}
	}
	cfg.Auth.APIKeys = keys

	switch cfg.Settings.Backend {
	case SettingsBackendStatic, SettingsBackendRedis:
	default:
		return nil, fmt.Errorf("unsupported settings backend %q", cfg.Settings.Backend)
	}

	return &cfg, nil
}
