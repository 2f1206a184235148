package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn")

	log.Info("dropped")
	require.Zero(t, buf.Len())

	log.Warn("kept", "kind", "Not Found")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "auth", entry["service"])
	require.Equal(t, "kept", entry["msg"])
	require.Equal(t, "Not Found", entry["kind"])
}
