package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitYourbits/sse-insta-audit-platform/internal/domain"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 3, cfg.MaxRetryAttempts)
	assert.Equal(t, 10, cfg.BatchConcurrency)
	assert.Equal(t, 0.4, cfg.LikesWeight)
	assert.Equal(t, 0.7, cfg.KeepThreshold)
	assert.Equal(t, 0.5, cfg.MonitorThreshold)
	assert.Equal(t, 0.3, cfg.RemoveThreshold)
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MAX_RETRY_ATTEMPTS", "5")
	t.Setenv("BATCH_CONCURRENCY", "2")
	t.Setenv("RETRY_BASE_DELAY", "250ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5, cfg.MaxRetryAttempts)
	assert.Equal(t, 2, cfg.BatchConcurrency)
	assert.Equal(t, "250ms", cfg.RetryBaseDelay.String())
}

func TestLoad_EngagementWeightsMustSumToOne(t *testing.T) {
	// 0.4 + 0.3 + 0.2 + 0.05 = 0.95
	t.Setenv("SAVES_WEIGHT", "0.05")

	_, err := Load()
	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "must sum to 1.0")
}

func TestLoad_WeightSumTolerance(t *testing.T) {
	// Within 1e-6 of 1.0 must pass.
	t.Setenv("LIKES_WEIGHT", "0.4000000001")

	_, err := Load()
	require.NoError(t, err)
}

func TestLoad_ThresholdOrdering(t *testing.T) {
	t.Setenv("KEEP_THRESHOLD", "0.3")
	t.Setenv("REMOVE_THRESHOLD", "0.7")

	_, err := Load()
	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestLoad_ThresholdRange(t *testing.T) {
	t.Setenv("KEEP_THRESHOLD", "1.5")

	_, err := Load()
	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestLoad_InvalidRetrySettings(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero attempts", "MAX_RETRY_ATTEMPTS", "0"},
		{"max below base", "RETRY_MAX_DELAY", "500ms"},
		{"zero concurrency", "BATCH_CONCURRENCY", "0"},
		{"negative launch rate", "LAUNCH_RATE_PER_SECOND", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			var cfgErr *domain.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
		})
	}
}
