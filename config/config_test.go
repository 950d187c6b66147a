package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "app", cfg.MongoDB)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ADDR", ":9999")
	t.Setenv("MONGO_DB", "rsvp")
	t.Setenv("CACHE_TTL", "2m")

	cfg := Load()

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, "rsvp", cfg.MongoDB)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
}

func TestLoad_BadCacheTTLKeepsDefault(t *testing.T) {
	t.Setenv("CACHE_TTL", "soon")

	cfg := Load()
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
}
