package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	tests := []struct {
		name          string
		level         string
		expectedLevel zerolog.Level
	}{
		{name: "debug", level: "debug", expectedLevel: zerolog.DebugLevel},
		{name: "empty", level: "", expectedLevel: zerolog.InfoLevel},
		{name: "unknown", level: "loud", expectedLevel: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Setup(tt.level, "json", &bytes.Buffer{})
			assert.Equal(t, tt.expectedLevel, zerolog.GlobalLevel())
		})
	}
}

func TestSetup_JSON(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	Setup("info", "json", &buf)
	log.Info().Str("form_id", "DFFFuY").Msg("uploaded")
	log.Debug().Msg("hidden")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "uploaded", line["message"])
	assert.Equal(t, "DFFFuY", line["form_id"])
}
