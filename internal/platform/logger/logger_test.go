package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter(t *testing.T) {
	t.Run("json by default with service attribute", func(t *testing.T) {
		var buf bytes.Buffer
		NewWithWriter(&buf, "", "info").Info("plan built", "step_count", 4)

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "propex", line["service"])
		assert.Equal(t, "plan built", line["msg"])
	})

	t.Run("level filters debug", func(t *testing.T) {
		var buf bytes.Buffer
		NewWithWriter(&buf, "text", "warn").Info("hidden")
		assert.Empty(t, buf.String())
	})
}
