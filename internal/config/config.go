package config

import (
	"errors"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "CAREFRONT_"

// Config is the full runtime configuration, loaded from the environment.
type Config struct {
	Env      string        `koanf:"env"`
	HTTPAddr string        `koanf:"httpaddr"`
	GRPCAddr string        `koanf:"grpcaddr"`
	Auth     AuthConfig    `koanf:"auth"`
	HTTP     HTTPConfig    `koanf:"http"`
	Limits   LimitsConfig  `koanf:"limits"`
	Store    StoreConfig   `koanf:"store"`
	Triage   TriageConfig  `koanf:"triage"`
}

// AuthConfig drives token verification and identity resolution.
type AuthConfig struct {
	// Secret enables shared-secret (HS256) verification. When empty the
	// verifier delegates to the introspection endpoint instead.
	Secret        string `koanf:"secret"`
	Issuer        string `koanf:"issuer"`
	Audience      string `koanf:"audience"`
	Introspection string `koanf:"introspection"`

	// Claim names the tenant/user/role are read from.
	TenantClaim string `koanf:"tenantclaim"`
	UserClaim   string `koanf:"userclaim"`
	RoleClaim   string `koanf:"roleclaim"`

	// HeaderFallback admits identity from x-tenant-id/x-user-id/x-user-role
	// headers. For trusted internal callers only; disabled by default and
	// refused outright when Env is production.
	HeaderFallback bool `koanf:"headerfallback"`

	// DemoFallback returns a fixed identity when no credential is presented.
	// Never active in production regardless of the flag.
	DemoFallback bool   `koanf:"demofallback"`
	DemoTenant   string `koanf:"demotenant"`
	DemoUser     string `koanf:"demouser"`
	DemoRole     string `koanf:"demorole"`
}

// HTTPConfig bounds the inbound surface.
type HTTPConfig struct {
	MaxBodyBytes int64 `koanf:"maxbody"`
	// Transport-level token bucket per client IP.
	IPBurst     int `koanf:"ipburst"`
	IPPerSecond int `koanf:"ippersecond"`
}

// LimitsConfig holds the per-actor fixed-window admission limits.
type LimitsConfig struct {
	WriteLimit  int           `koanf:"write"`
	ListLimit   int           `koanf:"list"`
	TriageLimit int           `koanf:"triage"`
	Window      time.Duration `koanf:"window"`
}

// StoreConfig selects the persistence backend. Postgres wins when both are
// set; with neither, the service runs on the in-memory store and the audit
// trail degrades to structured logging.
type StoreConfig struct {
	PostgresDSN string `koanf:"dsn"`
	SQLitePath  string `koanf:"sqlite"`
}

// TriageConfig points at the language-model collaborator.
type TriageConfig struct {
	APIKey     string        `koanf:"apikey"`
	BaseURL    string        `koanf:"url"`
	Model      string        `koanf:"model"`
	MaxRetries int           `koanf:"maxretries"`
	BaseDelay  time.Duration `koanf:"basedelay"`
}

// Load reads CAREFRONT_* environment variables into a Config, applying
// defaults for anything unset.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, err
	}

	cfg := defaults()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Env:      "development",
		HTTPAddr: ":8080",
		Auth: AuthConfig{
			TenantClaim: "tenant_id",
			UserClaim:   "sub",
			RoleClaim:   "role",
			DemoTenant:  "tenant-demo-001",
			DemoUser:    "patient-demo-001",
			DemoRole:    "patient",
		},
		HTTP: HTTPConfig{
			MaxBodyBytes: 1 << 20,
			IPBurst:      40,
			IPPerSecond:  20,
		},
		Limits: LimitsConfig{
			WriteLimit:  20,
			ListLimit:   60,
			TriageLimit: 10,
			Window:      time.Minute,
		},
		Triage: TriageConfig{
			BaseURL:    "https://api.openai.com/v1",
			Model:      "gpt-4.1-mini",
			MaxRetries: 2,
			BaseDelay:  300 * time.Millisecond,
		},
	}
}

func (c *Config) validate() error {
	if c.IsProduction() && c.Auth.HeaderFallback {
		return errors.New("config: header auth fallback must not be enabled in production")
	}
	if c.Limits.Window <= 0 {
		return errors.New("config: limits window must be positive")
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		return errors.New("config: max body bytes must be positive")
	}
	return nil
}

// IsProduction reports whether the service runs with production hardening.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "production")
}
