package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	provider, err := NewProvider("test_app")

	require.NoError(t, err)
	assert.NotNil(t, provider.MeterProvider())
	assert.NotNil(t, provider.Handler())
	assert.NotNil(t, provider.registry)
}

func TestProvider_ExposesRuntimeCollectors(t *testing.T) {
	provider, err := NewProvider("runtime_app")
	require.NoError(t, err)

	output := scrape(t, provider)
	assert.Contains(t, output, "go_goroutines")
}

func TestProvider_ExportsServiceResource(t *testing.T) {
	provider, err := NewProvider("resource_app")
	require.NoError(t, err)

	counter, err := provider.MeterProvider().Meter("test").Int64Counter("resource_checks_total")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)

	output := scrape(t, provider)
	assert.Contains(t, output, "target_info")
	assert.Contains(t, output, `service_name="resource_app"`)
}

func TestProvider_Shutdown(t *testing.T) {
	t.Run("Success_ShutdownProvider", func(t *testing.T) {
		provider, err := NewProvider("test_app")
		require.NoError(t, err)
		assert.NoError(t, provider.Shutdown(context.Background()))
	})

	t.Run("Success_ShutdownNilProvider", func(t *testing.T) {
		provider := &Provider{}
		assert.NoError(t, provider.Shutdown(context.Background()))
	})
}
