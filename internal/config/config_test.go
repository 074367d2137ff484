package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("RAPIDAPI_KEY", "rapid-key")
	t.Setenv("AMAZON_ACCESS_KEY", "access")
	t.Setenv("AMAZON_SECRET_KEY", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "US", cfg.MarketplaceCountry)
	assert.Equal(t, 10*time.Second, cfg.MarketplaceTimeout)
	assert.Equal(t, "real-time-amazon-data.p.rapidapi.com", cfg.RapidAPIHost)
	assert.Equal(t, "us-east-1", cfg.AmazonRegion)
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("MARKETPLACE_TIMEOUT", "5s")
	t.Setenv("GEMINI_MODEL", "gemini-2.5-pro")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.MarketplaceTimeout)
	assert.Equal(t, "gemini-2.5-pro", cfg.GeminiModel)
}

func TestLoadMissingCredentialsFailsFast(t *testing.T) {
	cases := []string{"GEMINI_API_KEY", "RAPIDAPI_KEY", "AMAZON_ACCESS_KEY", "AMAZON_SECRET_KEY"}
	for _, missing := range cases {
		t.Run(missing, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(missing, "")

			_, err := Load()
			require.Error(t, err)
		})
	}
}
