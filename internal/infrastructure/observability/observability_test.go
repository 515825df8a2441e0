package observability

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jan-server/services/messaging-api/internal/config"
)

func TestExporterEndpoint(t *testing.T) {
	tests := []struct {
		raw      string
		endpoint string
		insecure bool
	}{
		{raw: "http://otel:4318", endpoint: "otel:4318", insecure: true},
		{raw: "https://collector.example.com/", endpoint: "collector.example.com", insecure: false},
		{raw: "otel:4318", endpoint: "otel:4318", insecure: true},
	}
	for _, tt := range tests {
		endpoint, insecure := exporterEndpoint(tt.raw)
		assert.Equal(t, tt.endpoint, endpoint, tt.raw)
		assert.Equal(t, tt.insecure, insecure, tt.raw)
	}
}

func TestSetup_DisabledExport(t *testing.T) {
	cfg := &config.Config{ServiceName: "messaging-api", Environment: "test"}
	shutdown, err := Setup(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
