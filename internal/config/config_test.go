package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "Winnipeg", cfg.Overpass.Area)
	assert.Equal(t, "bus", cfg.Overpass.RouteType)
	assert.Equal(t, 25, cfg.Overpass.TimeoutSeconds)
	assert.Equal(t, 1, cfg.Reconstruct.Concurrency)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "itinerary", cfg.NATS.SubjectPrefix)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
overpass:
  area: "Brandon"
  routeType: "trolleybus"
  timeoutSeconds: 15
  stopTags: ["highway=bus_stop"]
reconstruct:
  concurrency: 3
server:
  port: 9090
  allowedOrigins: ["http://localhost:5173"]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Brandon", cfg.Overpass.Area)
	assert.Equal(t, 3, cfg.Reconstruct.Concurrency)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.AllowedOrigins)

	qc, err := cfg.QueryConfiguration()
	require.NoError(t, err)
	assert.Equal(t, "trolleybus", qc.RouteType)
	assert.Equal(t, 15*time.Second, qc.Timeout)
	require.Len(t, qc.StopTags, 1)
	assert.Equal(t, "highway", qc.StopTags[0].Key)
	assert.Equal(t, "bus_stop", qc.StopTags[0].Value)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"timeout too long", "overpass:\n  timeoutSeconds: 60\n"},
		{"timeout too short", "overpass:\n  timeoutSeconds: 5\n"},
		{"zero concurrency", "reconstruct:\n  concurrency: 0\n"},
		{"bad url", "overpass:\n  url: \"not a url\"\n"},
		{"empty area", "overpass:\n  area: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("OVERPASS_AREA", "Selkirk")
	t.Setenv("OVERPASS_TIMEOUT_SECONDS", "12")
	t.Setenv("RECONSTRUCT_CONCURRENCY", "2")
	t.Setenv("SERVER_PORT", "8181")
	t.Setenv("NATS_URL", "nats://127.0.0.1:4222")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "Selkirk", cfg.Overpass.Area)
	assert.Equal(t, 12, cfg.Overpass.TimeoutSeconds)
	assert.Equal(t, 2, cfg.Reconstruct.Concurrency)
	assert.Equal(t, 8181, cfg.Server.Port)
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.NATS.URL)

	t.Setenv("SERVER_PORT", "eighty")
	_, err = Load("")
	assert.Error(t, err)
}
