package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZapLoggerWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "quack.log")

	log, err := New(path, false)
	require.NoError(t, err)

	log.Debug("hidden", nil)
	log.Info("dispatched", map[string]interface{}{"route": "intent"})
	log.With(map[string]interface{}{"session": "abc"}).Error("boom", errors.New("bad"), nil)
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"route":"intent"`)
	assert.Contains(t, out, `"session":"abc"`)
	assert.Contains(t, out, `"error":"bad"`)
}

func TestNopLogger(t *testing.T) {
	log := NewNop()
	log.Info("nothing", map[string]interface{}{"k": 1})
	log.Error("nothing", errors.New("x"), nil)
}
