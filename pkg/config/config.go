package config

import (
	"os"
	"strconv"
	"time"
)

// ServerConfig 服务器配置
type ServerConfig struct {
	Port            string        `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// GoogleConfig OAuth 客户端配置
type GoogleConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURI  string `yaml:"redirect_uri"`
	// 测试或非 Google 部署时覆盖
	AuthURL  string `yaml:"auth_url"`
	TokenURL string `yaml:"token_url"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	FrontendOrigin string `yaml:"frontend_origin"`
}

// SessionConfig 会话令牌配置
type SessionConfig struct {
	Secret     string        `yaml:"secret"`
	TTL        time.Duration `yaml:"ttl"`
	CookieName string        `yaml:"cookie_name"`
	Secure     bool          `yaml:"secure"`
}

// CredentialConfig 凭证存储配置，backend: memory 或 redis
type CredentialConfig struct {
	Backend string `yaml:"backend"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// MQConfig 消息队列配置，URL 为空时不发布事件
type MQConfig struct {
	URL string `yaml:"url"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `yaml:"level"`
}

// GmailConfig Gmail API 配置，Endpoint 为空时使用默认地址
type GmailConfig struct {
	Endpoint string `yaml:"endpoint"`
}

// OverrideServerFromEnv 从环境变量覆盖服务器配置
func OverrideServerFromEnv(cfg *ServerConfig) {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Port = port
	}
}

// OverrideGoogleFromEnv 从环境变量覆盖 OAuth 配置
func OverrideGoogleFromEnv(cfg *GoogleConfig) {
	if id := os.Getenv("GOOGLE_CLIENT_ID"); id != "" {
		cfg.ClientID = id
	}
	if secret := os.Getenv("GOOGLE_CLIENT_SECRET"); secret != "" {
		cfg.ClientSecret = secret
	}
	if uri := os.Getenv("GOOGLE_REDIRECT_URI"); uri != "" {
		cfg.RedirectURI = uri
	}
}

// OverrideCORSFromEnv 从环境变量覆盖跨域配置
func OverrideCORSFromEnv(cfg *CORSConfig) {
	if origin := os.Getenv("FRONTEND_ORIGIN"); origin != "" {
		cfg.FrontendOrigin = origin
	}
}

// OverrideSessionFromEnv 从环境变量覆盖会话配置
func OverrideSessionFromEnv(cfg *SessionConfig) {
	if secret := os.Getenv("SESSION_SECRET"); secret != "" {
		cfg.Secret = secret
	}
	if ttl := os.Getenv("SESSION_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			cfg.TTL = d
		}
	}
}

// OverrideCredentialFromEnv 从环境变量覆盖凭证存储配置
func OverrideCredentialFromEnv(cfg *CredentialConfig) {
	if backend := os.Getenv("CREDENTIAL_BACKEND"); backend != "" {
		cfg.Backend = backend
	}
}

// OverrideRedisFromEnv 从环境变量覆盖Redis配置
func OverrideRedisFromEnv(cfg *RedisConfig) {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Password = password
	}
	if db := os.Getenv("REDIS_DB"); db != "" {
		if n, err := strconv.Atoi(db); err == nil {
			cfg.DB = n
		}
	}
}

// OverrideMQFromEnv 从环境变量覆盖MQ配置
func OverrideMQFromEnv(cfg *MQConfig) {
	if url := os.Getenv("MQ_URL"); url != "" {
		cfg.URL = url
	}
}

// OverrideLogFromEnv 从环境变量覆盖日志配置
func OverrideLogFromEnv(cfg *LogConfig) {
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Level = level
	}
}

// OverrideGmailFromEnv 从环境变量覆盖 Gmail 配置
func OverrideGmailFromEnv(cfg *GmailConfig) {
	if endpoint := os.Getenv("GMAIL_ENDPOINT"); endpoint != "" {
		cfg.Endpoint = endpoint
	}
}
