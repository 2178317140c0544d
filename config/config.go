package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port           string
	GinMode        string
	AllowedOrigins []string
	StorageDriver  string

	MongoURI     string
	DatabaseName string

	JWT   JWTConfig
	Admin AdminConfig
	Mail  MailConfig
	Store UploadConfig

	ReadQueryMaxLimit     int
	DefaultReadQueryLimit int

	LogLevel  string
	LogFormat string

	CookieSecure bool
	CookieDomain string
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type AdminConfig struct {
	Email    string
	Password string
}

type MailConfig struct {
	Enabled      bool
	From         string
	ResendAPIKey string
}

type UploadConfig struct {
	Provider          string
	R2Bucket          string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2Endpoint        string
	R2PublicDomain    string
	GCSBucket         string
	CredentialsFile   string
	MaxUploadSizeMB   int
	AllowedExtensions []string
	AllowedMimeTypes  []string
}

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"

	UploadNone = "none"
	UploadR2   = "r2"
	UploadGCS  = "gcs"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("STORAGE_DRIVER", DriverMongo)
	v.SetDefault("ACCESS_TOKEN_TTL_MINUTES", 15)
	v.SetDefault("REFRESH_TOKEN_TTL_DAYS", 7)
	v.SetDefault("MAIL_ENABLED", false)
	v.SetDefault("UPLOAD_PROVIDER", UploadNone)
	v.SetDefault("MAX_UPLOAD_SIZE_MB", 5)
	v.SetDefault("ALLOWED_FILE_EXTENSIONS", ".jpg,.jpeg,.png,.gif,.webp")
	v.SetDefault("ALLOWED_FILE_MIME_TYPES", "image/jpeg,image/png,image/gif,image/webp")
	v.SetDefault("READ_QUERY_MAX_LIMIT", 100)
	v.SetDefault("DEFAULT_READ_QUERY_LIMIT", 20)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("COOKIE_SECURE", true)
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	accessMinutes := v.GetInt("ACCESS_TOKEN_TTL_MINUTES")
	if accessMinutes <= 0 {
		accessMinutes = 15
	}
	refreshDays := v.GetInt("REFRESH_TOKEN_TTL_DAYS")
	if refreshDays <= 0 {
		refreshDays = 7
	}

	return &Config{
		Port:           v.GetString("PORT"),
		GinMode:        v.GetString("GIN_MODE"),
		AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS"), false),
		StorageDriver:  strings.ToLower(v.GetString("STORAGE_DRIVER")),
		MongoURI:       v.GetString("MONGODB_URI"),
		DatabaseName:   v.GetString("DATABASE_NAME"),
		JWT: JWTConfig{
			AccessSecret:  v.GetString("JWT_SECRET"),
			RefreshSecret: v.GetString("JWT_REFRESH_SECRET"),
			AccessTTL:     time.Duration(accessMinutes) * time.Minute,
			RefreshTTL:    time.Duration(refreshDays) * 24 * time.Hour,
		},
		Admin: AdminConfig{
			Email:    strings.ToLower(strings.TrimSpace(v.GetString("ADMIN_EMAIL"))),
			Password: v.GetString("ADMIN_PASSWORD"),
		},
		Mail: MailConfig{
			Enabled:      v.GetBool("MAIL_ENABLED"),
			From:         v.GetString("MAIL_FROM"),
			ResendAPIKey: v.GetString("RESEND_API_KEY"),
		},
		Store: UploadConfig{
			Provider:          strings.ToLower(v.GetString("UPLOAD_PROVIDER")),
			R2Bucket:          v.GetString("R2_BUCKET"),
			R2AccessKeyID:     v.GetString("R2_ACCESS_KEY_ID"),
			R2SecretAccessKey: v.GetString("R2_SECRET_ACCESS_KEY"),
			R2Endpoint:        v.GetString("R2_ENDPOINT"),
			R2PublicDomain:    v.GetString("R2_PUBLIC_DOMAIN"),
			GCSBucket:         v.GetString("GCS_BUCKET"),
			CredentialsFile:   v.GetString("CREDENTIALS_FILE_LOCATION"),
			MaxUploadSizeMB:   v.GetInt("MAX_UPLOAD_SIZE_MB"),
			AllowedExtensions: splitList(v.GetString("ALLOWED_FILE_EXTENSIONS"), true),
			AllowedMimeTypes:  splitList(v.GetString("ALLOWED_FILE_MIME_TYPES"), true),
		},
		ReadQueryMaxLimit:     v.GetInt("READ_QUERY_MAX_LIMIT"),
		DefaultReadQueryLimit: v.GetInt("DEFAULT_READ_QUERY_LIMIT"),
		LogLevel:              v.GetString("LOG_LEVEL"),
		LogFormat:             v.GetString("LOG_FORMAT"),
		CookieSecure:          v.GetBool("COOKIE_SECURE"),
		CookieDomain:          v.GetString("COOKIE_DOMAIN"),
	}
}

func (c *Config) Validate() error {
	if c.JWT.AccessSecret == "" || c.JWT.RefreshSecret == "" {
		return fmt.Errorf("missing JWT_SECRET or JWT_REFRESH_SECRET env vars")
	}
	if c.JWT.AccessSecret == c.JWT.RefreshSecret {
		return fmt.Errorf("JWT_SECRET and JWT_REFRESH_SECRET must differ")
	}

	switch c.StorageDriver {
	case DriverMongo:
		if c.MongoURI == "" || c.DatabaseName == "" {
			return fmt.Errorf("missing MONGODB_URI or DATABASE_NAME env vars")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	switch c.Store.Provider {
	case UploadNone, "":
	case UploadR2:
		s := c.Store
		if s.R2Bucket == "" || s.R2AccessKeyID == "" || s.R2SecretAccessKey == "" || s.R2Endpoint == "" {
			return fmt.Errorf("missing R2 env vars (R2_BUCKET, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_ENDPOINT)")
		}
	case UploadGCS:
		if c.Store.GCSBucket == "" {
			return fmt.Errorf("missing GCS_BUCKET env var")
		}
	default:
		return fmt.Errorf("unknown UPLOAD_PROVIDER %q", c.Store.Provider)
	}

	if c.Mail.Enabled && (c.Mail.ResendAPIKey == "" || c.Mail.From == "") {
		return fmt.Errorf("MAIL_ENABLED requires RESEND_API_KEY and MAIL_FROM")
	}
	if c.ReadQueryMaxLimit <= 0 {
		c.ReadQueryMaxLimit = 100
	}
	if c.DefaultReadQueryLimit <= 0 || c.DefaultReadQueryLimit > c.ReadQueryMaxLimit {
		c.DefaultReadQueryLimit = min(20, c.ReadQueryMaxLimit)
	}
	return nil
}

func splitList(raw string, lower bool) []string {
	out := make([]string, 0)
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if lower {
			item = strings.ToLower(item)
		}
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
