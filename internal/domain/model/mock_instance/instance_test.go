package mockinstance

import (
	"errors"
	"testing"

	mockroute "mock_env_server/internal/domain/model/mock_route"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyProbe(t *testing.T) {
	tests := []struct {
		name   string
		status int
		err    error
		want   HealthStatus
	}{
		{name: "ok", status: 200, want: HealthHealthy},
		{name: "no content", status: 204, want: HealthHealthy},
		{name: "not found", status: 404, want: HealthDegraded},
		{name: "server error", status: 503, want: HealthDegraded},
		{name: "redirect", status: 302, want: HealthDegraded},
		{name: "timeout", err: errors.New("context deadline exceeded"), want: HealthUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyProbe(tt.status, tt.err))
		})
	}
}

func TestInstanceConfigScanValue(t *testing.T) {
	cfg := InstanceConfig{
		RegistryKey: "demo",
		LatencyMs:   25,
		Routes:      []mockroute.Route{{Method: "GET", Path: "/pets/:id", StatusCode: 200}},
	}
	v, err := cfg.Value()
	require.NoError(t, err)

	var out InstanceConfig
	require.NoError(t, out.Scan([]byte(v.(string))))
	assert.Equal(t, "demo", out.RegistryKey)
	assert.Equal(t, 25, out.Entry().LatencyMs)
	assert.Len(t, out.Entry().Routes, 1)

	require.NoError(t, out.Scan(nil))
	assert.Equal(t, InstanceConfig{}, out)
	assert.Error(t, out.Scan(42))
}

func TestProbeURL(t *testing.T) {
	for _, base := range []string{"https://mocks.example.com/mock", "https://mocks.example.com/mock/"} {
		inst := &MockInstance{ID: "i1", BaseURL: base}
		assert.Equal(t, "https://mocks.example.com/mock/_instances/i1", inst.ProbeURL())
	}
}
