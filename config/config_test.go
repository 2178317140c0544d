package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("DATABASE_NAME", "events")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverMongo, cfg.StorageDriver)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTTL)
	assert.Equal(t, UploadNone, cfg.Store.Provider)
	assert.Contains(t, cfg.Store.AllowedExtensions, ".png")
	assert.Equal(t, 100, cfg.ReadQueryMaxLimit)
	assert.Equal(t, 20, cfg.DefaultReadQueryLimit)
}

func TestLoad_Overrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "5")
	t.Setenv("REFRESH_TOKEN_TTL_DAYS", "30")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("ADMIN_EMAIL", "  Admin@Example.com ")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.JWT.RefreshTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "admin@example.com", cfg.Admin.Email)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			StorageDriver: DriverMemory,
			JWT:           JWTConfig{AccessSecret: "a", RefreshSecret: "b"},
			Store:         UploadConfig{Provider: UploadNone},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing secret", mutate: func(c *Config) { c.JWT.RefreshSecret = "" }, wantErr: "missing JWT_SECRET"},
		{name: "same secrets", mutate: func(c *Config) { c.JWT.RefreshSecret = "a" }, wantErr: "must differ"},
		{name: "mongo without uri", mutate: func(c *Config) { c.StorageDriver = DriverMongo }, wantErr: "MONGODB_URI"},
		{name: "unknown driver", mutate: func(c *Config) { c.StorageDriver = "sqlite" }, wantErr: "unknown STORAGE_DRIVER"},
		{name: "r2 incomplete", mutate: func(c *Config) { c.Store.Provider = UploadR2 }, wantErr: "missing R2 env vars"},
		{name: "gcs without bucket", mutate: func(c *Config) { c.Store.Provider = UploadGCS }, wantErr: "GCS_BUCKET"},
		{name: "mail without key", mutate: func(c *Config) { c.Mail.Enabled = true }, wantErr: "RESEND_API_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
