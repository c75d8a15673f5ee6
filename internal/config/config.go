package config

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort        = 3000
	defaultEnv         = "development"
	defaultDBHost      = "127.0.0.1"
	defaultDBPort      = 3306
	defaultDBUser      = "root"
	defaultDBName      = "rescue_chip"
	defaultDBCharset   = "utf8mb4"
	defaultDBLoc       = "Local"
	defaultRedisHost   = "localhost"
	defaultRedisPort   = 6379
	defaultWebURL      = "https://rescue-chip.com"
	defaultCountryCode = "52" // local 10-digit numbers are Mexican
)

// Load reads the YAML config file, applies defaults and environment
// overrides, and validates the result. A missing file is not an error:
// everything can come from the environment.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	cfg := defaultAppConfig()

	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse config file %q: %w", path, err)
		}
	case os.IsNotExist(err):
		// env-only deployment
	default:
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	applyEnvOverrides(&cfg)

	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d, expected 1-65535", cfg.Port)
	}
	if cfg.Redis.DB < 0 {
		return nil, fmt.Errorf("invalid redis.db %d, expected >= 0", cfg.Redis.DB)
	}
	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port:        defaultPort,
		Env:         defaultEnv,
		WebURL:      defaultWebURL,
		CountryCode: defaultCountryCode,
		Database: DatabaseRuntimeConfig{
			Host:    defaultDBHost,
			Port:    defaultDBPort,
			User:    defaultDBUser,
			Name:    defaultDBName,
			Charset: defaultDBCharset,
			Loc:     defaultDBLoc,
		},
		Redis: RedisRuntimeConfig{
			Host: defaultRedisHost,
			Port: defaultRedisPort,
		},
		Mail: MailOptions{Port: 587},
		RateLimit: RateLimitOptions{
			RequestDevice: LimiterOptions{Limit: 5, WindowMinutes: 60},
			VerifyDevice:  LimiterOptions{Limit: 10, WindowMinutes: 60},
			Login:         LimiterOptions{Limit: 10, WindowMinutes: 15},
			ScanEmergency: LimiterOptions{Limit: 3, WindowMinutes: 60},
		},
		S3: S3Options{PresignTTLMin: 15},
	}
}

// applyEnvOverrides lets deployment environments override the file. Only
// values that are commonly secret or host-specific are mapped.
func applyEnvOverrides(cfg *AppConfig) {
	setString(&cfg.Env, "RC_ENV")
	setInt(&cfg.Port, "RC_PORT", "PORT")
	setString(&cfg.DSN, "RC_DSN", "DATABASE_DSN")
	setString(&cfg.RedisURL, "RC_REDIS_URL", "REDIS_URL")
	setString(&cfg.JWTSecret, "RC_JWT_SECRET", "JWT_SECRET")
	setString(&cfg.WebURL, "RC_WEB_URL")

	setString(&cfg.Mail.Host, "SMTP_HOST")
	setInt(&cfg.Mail.Port, "SMTP_PORT")
	setString(&cfg.Mail.User, "SMTP_USER")
	setString(&cfg.Mail.Pass, "SMTP_PASS")
	setString(&cfg.Mail.ResendKey, "RESEND_API_KEY")

	setString(&cfg.SMS.APIKey, "SMS_API_KEY")
	setString(&cfg.SMS.UserID, "SMS_USER_ID")
	setString(&cfg.SMS.Password, "SMS_PASSWORD")
	setString(&cfg.SMS.WhatsAppKey, "WHATSAPP_API_KEY")

	setString(&cfg.S3.AccessKeyID, "AWS_ACCESS_KEY_ID")
	setString(&cfg.S3.SecretAccessKey, "AWS_SECRET_ACCESS_KEY")
	setString(&cfg.S3.Bucket, "S3_BUCKET")
	setString(&cfg.S3.Region, "AWS_REGION")
}

func setString(dst *string, keys ...string) {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
			return
		}
	}
}

func setInt(dst *int, keys ...string) {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
				return
			}
		}
	}
}
