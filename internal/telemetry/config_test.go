package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	assert.Equal(t, DefaultServiceName, cfg.GetServiceName())
	assert.Equal(t, "unknown", cfg.GetServiceVersion())
	assert.Equal(t, DefaultEndpoint, cfg.GetEndpoint())
	assert.False(t, cfg.GetInsecure())

	cfg = &Config{
		ServiceName:    "empsync-staging",
		ServiceVersion: "1.4.0",
		Endpoint:       "collector:4318",
		Insecure:       true,
	}
	assert.Equal(t, "empsync-staging", cfg.GetServiceName())
	assert.Equal(t, "1.4.0", cfg.GetServiceVersion())
	assert.Equal(t, "collector:4318", cfg.GetEndpoint())
	assert.True(t, cfg.GetInsecure())
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:   "nil config is valid",
			config: nil,
		},
		{
			name:   "disabled config skips validation",
			config: &Config{Enabled: false, Tracing: &TracingConfig{Sampling: 99}},
		},
		{
			name:   "enabled with valid tracing",
			config: &Config{Enabled: true, Tracing: &TracingConfig{Enabled: true, Sampling: 0.5}},
		},
		{
			name:    "sampling above one",
			config:  &Config{Enabled: true, Tracing: &TracingConfig{Enabled: true, Sampling: 1.1}},
			wantErr: true,
		},
		{
			name:    "negative sampling",
			config:  &Config{Enabled: true, Tracing: &TracingConfig{Enabled: true, Sampling: -0.1}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestTracingConfigSampling(t *testing.T) {
	t.Parallel()

	tc := &TracingConfig{}
	assert.Equal(t, DefaultSampling, tc.GetSampling())

	tc = &TracingConfig{Sampling: 0.25}
	assert.Equal(t, 0.25, tc.GetSampling())
}
