package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadRequiresCoreSettings(t *testing.T) {
	_, err := LoadForTests(map[string]string{
		"DATABASE_URL": "",
		"REDIS_URL":    "redis://localhost:6379/0",
		"JWT_SECRET":   "secret",
	})
	require.Error(t, err, "empty DATABASE_URL must be rejected")
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"DATABASE_URL": "postgres://localhost:5432/pos",
		"REDIS_URL":    "redis://localhost:6379/0",
		"JWT_SECRET":   "secret",
		"PORT":         "",
	})
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, "X-Shop-ID", cfg.ShopHeader)
	require.Equal(t, "120-M", cfg.RateLimit)
	require.Equal(t, 5, cfg.LowStockThreshold)
}

func TestLoadParsesOverrides(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"DATABASE_URL":         "postgres://localhost:5432/pos",
		"REDIS_URL":            "redis://localhost:6379/0",
		"JWT_SECRET":           "secret",
		"PORT":                 ":9090",
		"CORS_ALLOWED_ORIGINS": "https://a.example, https://b.example",
		"INVENTORY_CACHE_TTL":  "45s",
	})
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	require.Equal(t, 45*time.Second, cfg.InventoryCacheTTL)
}
