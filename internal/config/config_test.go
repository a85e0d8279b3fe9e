package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STATE_DRIVER", "")
	t.Setenv("OTP_TTL", "")
	t.Setenv("BACKEND_BASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StateDriverBolt, cfg.State.Driver)
	assert.Equal(t, 120*time.Second, cfg.OTP.TTL)
	assert.Equal(t, "http://localhost:8080", cfg.Backend.BaseURL)
	assert.Equal(t, "127.0.0.1:8090", cfg.Address())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "https://shop.example.com/")
	t.Setenv("BACKEND_USER_PREFIX", "/user/")
	t.Setenv("STATE_DRIVER", "REDIS")
	t.Setenv("OTP_TTL", "90")
	t.Setenv("BACKEND_RATE_LIMIT_RPS", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StateDriverRedis, cfg.State.Driver)
	assert.Equal(t, 90*time.Second, cfg.OTP.TTL)
	assert.Equal(t, 2.5, cfg.Backend.RateLimit)
	assert.Equal(t, "https://shop.example.com/user/login", cfg.Backend.UserURL("login"))
	assert.Equal(t, "https://shop.example.com/verify-otp", cfg.Backend.RootURL("/verify-otp"))
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("STATE_DRIVER", "sqlite")

	_, err := Load()
	assert.Error(t, err)
}
