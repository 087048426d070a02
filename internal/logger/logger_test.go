package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		level    string
		expected logrus.Level
	}{
		"debug":   {level: "debug", expected: logrus.DebugLevel},
		"upper":   {level: "WARN", expected: logrus.WarnLevel},
		"error":   {level: "error", expected: logrus.ErrorLevel},
		"empty":   {level: "", expected: logrus.InfoLevel},
		"unknown": {level: "loud", expected: logrus.InfoLevel},
	}

	for name, tc := range tcs {
		tc := tc

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.expected, ParseLevel(tc.level))
		})
	}
}

func TestWithNode(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := New("debug", buf)

	WithNode(log, 3, "labeler").Debug("executed")

	entry := map[string]any{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "labeler", entry["node"])
	assert.InDelta(t, 3, entry["id"], 0)
	assert.Equal(t, "executed", entry["msg"])
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	log := Discard()
	assert.False(t, log.IsLevelEnabled(logrus.ErrorLevel))
}
