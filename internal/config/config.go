package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Port                     string   `mapstructure:"PORT"`
	Env                      string   `mapstructure:"ENV"`
	DatabaseURL              string   `mapstructure:"DATABASE_URL"`
	DBMaxConns               int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns               int32    `mapstructure:"DB_MIN_CONNS"`
	SecretKey                string   `mapstructure:"SECRET_KEY"`
	Algorithm                string   `mapstructure:"ALGORITHM"`
	AccessTokenExpireMinutes int      `mapstructure:"ACCESS_TOKEN_EXPIRE_MINUTES"`
	BcryptCost               int      `mapstructure:"BCRYPT_COST"`
	CORSOrigins              []string `mapstructure:"CORS_ORIGINS"`
	OllamaBaseURL            string   `mapstructure:"OLLAMA_BASE_URL"`
	OllamaModel              string   `mapstructure:"OLLAMA_MODEL"`
	OllamaTimeoutSeconds     int      `mapstructure:"OLLAMA_TIMEOUT_SECONDS"`
	ChatSystemPrompt         string   `mapstructure:"CHAT_SYSTEM_PROMPT"`
	RateLimitRPS             float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst           int      `mapstructure:"RATE_LIMIT_BURST"`
	AuthRateLimitRPS         float64  `mapstructure:"AUTH_RATE_LIMIT_RPS"`
	AuthRateLimitBurst       int      `mapstructure:"AUTH_RATE_LIMIT_BURST"`
	MigrateOnStart           bool     `mapstructure:"MIGRATE_ON_START"`
	// TrustedProxies lists CIDRs whose X-Forwarded-For is believed. Empty
	// means client addresses come from the socket alone.
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES"`
}

var envKeys = []string{
	"PORT",
	"ENV",
	"DATABASE_URL",
	"DB_MAX_CONNS",
	"DB_MIN_CONNS",
	"SECRET_KEY",
	"ALGORITHM",
	"ACCESS_TOKEN_EXPIRE_MINUTES",
	"BCRYPT_COST",
	"CORS_ORIGINS",
	"OLLAMA_BASE_URL",
	"OLLAMA_MODEL",
	"OLLAMA_TIMEOUT_SECONDS",
	"CHAT_SYSTEM_PROMPT",
	"RATE_LIMIT_RPS",
	"RATE_LIMIT_BURST",
	"AUTH_RATE_LIMIT_RPS",
	"AUTH_RATE_LIMIT_BURST",
	"MIGRATE_ON_START",
	"TRUSTED_PROXIES",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("ALGORITHM", "HS256")
	v.SetDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 30)
	v.SetDefault("BCRYPT_COST", bcrypt.DefaultCost+2)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("OLLAMA_BASE_URL", "http://localhost:11434")
	v.SetDefault("OLLAMA_MODEL", "gemma3:4b")
	v.SetDefault("OLLAMA_TIMEOUT_SECONDS", 120)
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("AUTH_RATE_LIMIT_RPS", 1)
	v.SetDefault("AUTH_RATE_LIMIT_BURST", 5)
	v.SetDefault("MIGRATE_ON_START", false)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	// A missing .env is fine; the environment alone is enough.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// viper hands back the raw env string for slices, so split it ourselves.
	if origins := v.GetString("CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = splitList(origins)
	}
	cfg.TrustedProxies = splitList(v.GetString("TRUSTED_PROXIES"))

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// TokenTTL is the lifetime of access tokens issued at signin.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}

// InferenceTimeout is the upper bound on one chat completion call.
func (c *Config) InferenceTimeout() time.Duration {
	return time.Duration(c.OllamaTimeoutSeconds) * time.Second
}

// Validate checks that the configuration is safe to serve traffic with.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("SECRET_KEY is required")
	}
	switch c.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("ALGORITHM must be one of HS256, HS384, HS512, got %q", c.Algorithm)
	}
	if c.AccessTokenExpireMinutes <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive, got %d", c.AccessTokenExpireMinutes)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}
	if c.OllamaBaseURL == "" {
		return fmt.Errorf("OLLAMA_BASE_URL is required")
	}
	if c.OllamaTimeoutSeconds <= 0 {
		return fmt.Errorf("OLLAMA_TIMEOUT_SECONDS must be positive, got %d", c.OllamaTimeoutSeconds)
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) must not exceed DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if _, err := c.TrustedProxyNets(); err != nil {
		return err
	}
	return nil
}

// TrustedProxyNets parses TrustedProxies. A bare IP is taken as a single
// host range.
func (c *Config) TrustedProxyNets() ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(c.TrustedProxies))
	for _, entry := range c.TrustedProxies {
		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				return nil, fmt.Errorf("TRUSTED_PROXIES: invalid address %q", entry)
			}
			bits := 128
			if ip.To4() != nil {
				ip, bits = ip.To4(), 32
			}
			nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(entry)
		if err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
		}
		nets = append(nets, n)
	}
	return nets, nil
}
