// config/config.go
package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	TenantIsolationStrict = "strict"
	TenantIsolationOpen   = "open"
)

type Config struct {
	Port                string        `mapstructure:"PORT"`
	Env                 string        `mapstructure:"ENV"`
	LogLevel            string        `mapstructure:"LOG_LEVEL"`
	MongoURI            string        `mapstructure:"MONGO_URI"`
	DBName              string        `mapstructure:"DB_NAME"`
	JWTSecret           string        `mapstructure:"JWT_SECRET"`
	JWTExpire           string        `mapstructure:"JWT_EXPIRE"`
	OpenAIAPIKey        string        `mapstructure:"OPENAI_API_KEY"`
	OpenAIBaseURL       string        `mapstructure:"OPENAI_BASE_URL"`
	AIModel             string        `mapstructure:"AI_MODEL"`
	AIGenerateMaxTokens int           `mapstructure:"AI_GENERATE_MAX_TOKENS"`
	AIAuditMaxTokens    int           `mapstructure:"AI_AUDIT_MAX_TOKENS"`
	CORSOrigins         []string      `mapstructure:"CORS_ORIGINS"`
	TrustedProxies      []string      `mapstructure:"TRUSTED_PROXIES"`
	TenantIsolation     string        `mapstructure:"TENANT_ISOLATION"`
	RateLimitRPS        float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst      int           `mapstructure:"RATE_LIMIT_BURST"`
	WriteTimeout        time.Duration `mapstructure:"WRITE_TIMEOUT"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL", "MONGO_URI", "MONGODB_URI", "DB_NAME", "JWT_SECRET", "JWT_EXPIRE",
	"OPENAI_API_KEY", "OPENAI_BASE_URL", "AI_MODEL", "AI_GENERATE_MAX_TOKENS", "AI_AUDIT_MAX_TOKENS",
	"CORS_ORIGINS", "TRUSTED_PROXIES", "TENANT_ISOLATION", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "WRITE_TIMEOUT",
}

// Load reads .env (if present) into the process environment and then binds
// every known key through viper.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFrom(viper.New())
}

// LoadFrom builds a Config from v. Tests pass a viper instance with values set directly.
func LoadFrom(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("DB_NAME", "accredis")
	v.SetDefault("JWT_EXPIRE", "7d")
	v.SetDefault("AI_MODEL", "gpt-4o")
	v.SetDefault("AI_GENERATE_MAX_TOKENS", 4096)
	v.SetDefault("AI_AUDIT_MAX_TOKENS", 2048)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("TRUSTED_PROXIES", "")
	v.SetDefault("TENANT_ISOLATION", TenantIsolationStrict)
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("WRITE_TIMEOUT", "5m")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// MONGODB_URI wins over MONGO_URI when both are present.
	if uri := v.GetString("MONGODB_URI"); uri != "" {
		cfg.MongoURI = uri
	}

	cfg.CORSOrigins = splitList(strings.Join(cfg.CORSOrigins, ","))
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	cfg.TrustedProxies = splitList(strings.Join(cfg.TrustedProxies, ","))

	cfg.TenantIsolation = strings.ToLower(strings.TrimSpace(cfg.TenantIsolation))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// TokenTTL parses JWT_EXPIRE. Accepts Go durations and a day suffix ("7d").
func (c *Config) TokenTTL() (time.Duration, error) {
	return ParseDayDuration(c.JWTExpire)
}

// Validate refuses configurations that would run insecurely or cannot work.
func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.JWTSecret == "" {
		if !c.IsDev() {
			return fmt.Errorf("JWT_SECRET is required outside development")
		}
		c.JWTSecret = "development-only-secret"
	}
	if _, err := c.TokenTTL(); err != nil {
		return fmt.Errorf("JWT_EXPIRE: %w", err)
	}
	switch c.TenantIsolation {
	case TenantIsolationStrict, TenantIsolationOpen:
	default:
		return fmt.Errorf("TENANT_ISOLATION must be %q or %q, got %q",
			TenantIsolationStrict, TenantIsolationOpen, c.TenantIsolation)
	}
	if c.AIGenerateMaxTokens <= 0 || c.AIAuditMaxTokens <= 0 {
		return fmt.Errorf("AI token budgets must be positive")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	for _, p := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(p); err != nil && net.ParseIP(p) == nil {
			return fmt.Errorf("TRUSTED_PROXIES: %q is not an IP address or CIDR range", p)
		}
	}
	return nil
}

// AISettings builds the reloadable AI settings seeded from this config.
func (c *Config) AISettings() *AISettings {
	return NewAISettings(AISnapshot{
		APIKey:            c.OpenAIAPIKey,
		BaseURL:           c.OpenAIBaseURL,
		Model:             c.AIModel,
		GenerateMaxTokens: c.AIGenerateMaxTokens,
		AuditMaxTokens:    c.AIAuditMaxTokens,
	})
}

// ParseDayDuration parses s as a Go duration, also accepting whole days like "7d".
func ParseDayDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if strings.HasSuffix(s, "d") {
		var days int
		if _, err := fmt.Sscanf(strings.TrimSuffix(s, "d"), "%d", &days); err != nil || days <= 0 {
			return 0, fmt.Errorf("invalid day duration %q", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive")
	}
	return d, nil
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
