package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewForEnvironments(t *testing.T) {
	for _, env := range []string{"development", "production"} {
		t.Run(env, func(t *testing.T) {
			log, err := New(env)
			require.NoError(t, err)
			assert.NotNil(t, log)
		})
	}
}

func TestNewWithDefaults(t *testing.T) {
	t.Setenv("STOREFRONT_ENV", "production")
	assert.NotNil(t, NewWithDefaults())
}

func TestProperty_LogsAreStructured(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("every log entry is one JSON object", prop.ForAll(
		func(message string) bool {
			var buf bytes.Buffer

			core := zapcore.NewCore(
				zapcore.NewJSONEncoder(zapcore.EncoderConfig{
					TimeKey:        "timestamp",
					LevelKey:       "level",
					MessageKey:     "message",
					LineEnding:     zapcore.DefaultLineEnding,
					EncodeLevel:    zapcore.LowercaseLevelEncoder,
					EncodeTime:     zapcore.ISO8601TimeEncoder,
					EncodeDuration: zapcore.SecondsDurationEncoder,
				}),
				zapcore.AddSync(&buf),
				zapcore.DebugLevel,
			)
			log := zap.New(core)
			log.Info(message, zap.String("component", "storefront"))
			log.Sync()

			var entry map[string]any
			return json.Unmarshal(buf.Bytes(), &entry) == nil && entry["message"] == message
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
