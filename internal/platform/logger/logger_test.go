package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZapLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewZapLogger(ZapLoggerConfig{Level: "info", Encoding: "json", Output: &buf})
	require.NoError(t, err)

	log.With("session", "abc").Infof("cart loaded with %d items", 3)
	log.Debug("hidden below info")
	require.NoError(t, log.Sync())

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "cart loaded with 3 items", entry["msg"])
	assert.Equal(t, "abc", entry["session"])
}

func TestZapLogger_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewZapLogger(ZapLoggerConfig{Level: "loud", Output: &buf})
	require.NoError(t, err)

	log.Debug("debug")
	assert.Zero(t, buf.Len())

	log.Warn("warn")
	assert.NotZero(t, buf.Len())
}
