package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("debug", "json", &buf)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log.WithField("tier", "fixed").Debug("placed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "placed", entry["message"])
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "fixed", entry["tier"])
	assert.Contains(t, entry, "timestamp")
}

func TestNewTextDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("loud", "text", &buf)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())

	log.Debug("hidden")
	assert.Empty(t, buf.String())

	log.Info("shown")
	assert.Contains(t, buf.String(), "msg=shown")
}
