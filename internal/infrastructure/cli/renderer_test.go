package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainRenderer(t *testing.T) {
	var buf bytes.Buffer
	r := NewPlainRenderer(&buf)

	r.Info("Current model: Gemini")
	r.Success("Saved.")
	r.Warn("No key.")
	r.Error("Failed.\n")
	r.Print("plain text")
	r.Markdown("# Title")

	want := "ℹ Current model: Gemini\n" +
		"✓ Saved.\n" +
		"! No key.\n" +
		"✗ Failed.\n" +
		"plain text\n" +
		"# Title\n"
	assert.Equal(t, want, buf.String())
}
