package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORE_DRIVER", "ACCESS_TOKEN_TTL", "FRIEND_REQUEST_LIMIT", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, "mysql", cfg.StoreDriver)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 3, cfg.FriendRequestLimit)
	assert.Equal(t, time.Minute, cfg.FriendRequestWindow)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.CORSAllowedOrigins)
}

func TestLoadFromEnvAndFile(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("FRIEND_REQUEST_WINDOW", "90s")
	t.Setenv("SEARCH_PAGE_SIZE", "not-a-number")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("STORE_DRIVER=memory\nPORT=7070\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("STORE_DRIVER") })

	cfg := Load(envFile)

	assert.Equal(t, ":9090", cfg.ServerAddr, "environment wins over .env")
	assert.Equal(t, "memory", cfg.StoreDriver)
	assert.Equal(t, 90*time.Second, cfg.FriendRequestWindow)
	assert.Equal(t, 10, cfg.SearchPageSize)
}
