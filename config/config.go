package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	pkgconfig "gmail-analytics/pkg/config"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type Config struct {
	Server     pkgconfig.ServerConfig     `yaml:"server"`
	Google     pkgconfig.GoogleConfig     `yaml:"google"`
	CORS       pkgconfig.CORSConfig       `yaml:"cors"`
	Session    pkgconfig.SessionConfig    `yaml:"session"`
	Credential pkgconfig.CredentialConfig `yaml:"credential"`
	Redis      pkgconfig.RedisConfig      `yaml:"redis"`
	MQ         pkgconfig.MQConfig         `yaml:"mq"`
	Log        pkgconfig.LogConfig        `yaml:"log"`
	Gmail      pkgconfig.GmailConfig      `yaml:"gmail"`

	// EphemeralSessionSecret is set when no session secret was configured and one was generated.
	EphemeralSessionSecret bool `yaml:"-"`
}

func defaults() *Config {
	return &Config{
		Server:     pkgconfig.ServerConfig{Port: ":8000", ShutdownTimeout: 10 * time.Second},
		CORS:       pkgconfig.CORSConfig{FrontendOrigin: "http://localhost:3000"},
		Session:    pkgconfig.SessionConfig{TTL: 24 * time.Hour, CookieName: "session"},
		Credential: pkgconfig.CredentialConfig{Backend: BackendMemory},
		Redis:      pkgconfig.RedisConfig{Addr: "localhost:6379"},
		Log:        pkgconfig.LogConfig{Level: "info"},
	}
}

// Load reads .env into the process environment, then loads from CONFIG_DIR (default "config").
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return LoadFrom(pkgconfig.GetEnv("CONFIG_DIR", "config"))
}

// LoadFrom applies, in order: defaults, base.yaml and <CONFIG_ENV>.yaml from dir when present,
// then environment overrides.
func LoadFrom(dir string) (*Config, error) {
	cfg := defaults()

	if _, err := os.Stat(filepath.Join(dir, "base.yaml")); err == nil {
		merged, err := pkgconfig.LoadConfig(pkgconfig.GetConfigEnv(), dir)
		if err != nil {
			return nil, err
		}
		if err := pkgconfig.Decode(merged, cfg); err != nil {
			return nil, err
		}
	}

	// 环境变量覆盖（生产环境使用）
	pkgconfig.OverrideServerFromEnv(&cfg.Server)
	pkgconfig.OverrideGoogleFromEnv(&cfg.Google)
	pkgconfig.OverrideCORSFromEnv(&cfg.CORS)
	pkgconfig.OverrideSessionFromEnv(&cfg.Session)
	pkgconfig.OverrideCredentialFromEnv(&cfg.Credential)
	pkgconfig.OverrideRedisFromEnv(&cfg.Redis)
	pkgconfig.OverrideMQFromEnv(&cfg.MQ)
	pkgconfig.OverrideLogFromEnv(&cfg.Log)
	pkgconfig.OverrideGmailFromEnv(&cfg.Gmail)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.Session.Secret == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
		cfg.Session.Secret = hex.EncodeToString(b)
		cfg.EphemeralSessionSecret = true
	}

	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	if c.Google.ClientID == "" {
		missing = append(missing, "GOOGLE_CLIENT_ID")
	}
	if c.Google.ClientSecret == "" {
		missing = append(missing, "GOOGLE_CLIENT_SECRET")
	}
	if c.Google.RedirectURI == "" {
		missing = append(missing, "GOOGLE_REDIRECT_URI")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	switch c.Credential.Backend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("unknown credential backend %q (want %q or %q)", c.Credential.Backend, BackendMemory, BackendRedis)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.Session.TTL)
	}
	return nil
}
