package config

import "time"

// AppConfig holds runtime configuration loaded from YAML with environment
// overrides. Credentials are normally supplied via environment so a config
// file can be committed without secrets.
type AppConfig struct {
	Port           int                   `yaml:"port"`
	Env            string                `yaml:"env"` // "development" | "production"
	DSN            string                `yaml:"dsn"` // MySQL DSN, overrides database.*
	Database       DatabaseRuntimeConfig `yaml:"database"`
	RedisURL       string                `yaml:"redis_url"`
	Redis          RedisRuntimeConfig    `yaml:"redis"`
	JWTSecret      string                `yaml:"jwt_secret"`
	AllowedOrigins []string              `yaml:"allowed_origins"`
	WebURL         string                `yaml:"web_url"` // base URL used in confirmation links
	CountryCode    string                `yaml:"country_code"`
	Mail           MailOptions           `yaml:"mail"`
	SMS            SMSOptions            `yaml:"sms"`
	S3             S3Options             `yaml:"s3"`
	RateLimit      RateLimitOptions      `yaml:"rate_limit"`
}

type DatabaseRuntimeConfig struct {
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Charset  string `yaml:"charset"`
	Loc      string `yaml:"loc"`
}

type RedisRuntimeConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// MailOptions configures the outbound mail channel. SMTP is the default
// transport; a Resend API key switches the sender to the Resend HTTP API.
type MailOptions struct {
	Enable    bool   `yaml:"enable"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	User      string `yaml:"user"`
	Pass      string `yaml:"pass"`
	From      string `yaml:"from"`
	ReplyTo   string `yaml:"reply_to"`
	ResendKey string `yaml:"resend_key"`
}

// SMSOptions configures the SMS/WhatsApp gateway. The same phone number
// receives an SMS and a WhatsApp message through the two provider endpoints.
type SMSOptions struct {
	Enable         bool   `yaml:"enable"`
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	UserID         string `yaml:"user_id"`
	Password       string `yaml:"password"`
	SenderID       string `yaml:"sender_id"`
	WhatsAppURL    string `yaml:"whatsapp_url"`
	WhatsAppKey    string `yaml:"whatsapp_key"`
	WhatsAppSender string `yaml:"whatsapp_sender"`
}

// S3Options configures presigned access to stored insurance policy documents.
type S3Options struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Endpoint        string `yaml:"endpoint"`
	PresignTTLMin   int    `yaml:"presign_ttl_min"`
}

// LimiterOptions is one named quota: at most Limit requests per Window.
type LimiterOptions struct {
	Limit         int `yaml:"limit"`
	WindowMinutes int `yaml:"window_minutes"`
}

func (l LimiterOptions) Window() time.Duration {
	return time.Duration(l.WindowMinutes) * time.Minute
}

// RateLimitOptions holds the per-endpoint quotas.
type RateLimitOptions struct {
	RequestDevice LimiterOptions `yaml:"request_device"`
	VerifyDevice  LimiterOptions `yaml:"verify_device"`
	Login         LimiterOptions `yaml:"login"`
	ScanEmergency LimiterOptions `yaml:"scan_emergency"`
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool { return c.Env != "production" }
