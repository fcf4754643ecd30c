package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

// The opencensus worker is started by package init in the genai dependency.
func verifyNoLeaks(t *testing.T) {
	t.Helper()
	goleak.VerifyNone(t, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

func TestSpinnerStopJoinsGoroutine(t *testing.T) {
	defer verifyNoLeaks(t)

	var buf bytes.Buffer
	s := NewSpinner(&buf, " Processing request...")
	s.Start()
	s.Start()
	time.Sleep(3 * s.interval)
	s.Stop()
	s.Stop()

	out := buf.String()
	assert.Contains(t, out, "Processing request...")
	assert.Contains(t, out, strings.TrimSpace(s.frames[0]))
	assert.True(t, strings.HasSuffix(out, "\r\033[K"), "line is cleared on stop")
}

func TestSpinnerRestarts(t *testing.T) {
	defer verifyNoLeaks(t)

	var buf bytes.Buffer
	s := NewSpinner(&buf, "")
	for i := 0; i < 3; i++ {
		s.Start()
		s.Stop()
	}
	assert.Equal(t, 3, strings.Count(buf.String(), "\r\033[K"))
}

func TestRendererBusyStopsOnEveryPath(t *testing.T) {
	defer verifyNoLeaks(t)

	var buf bytes.Buffer
	r := NewPlainRenderer(&buf)
	work := func(fail bool) (err error) {
		stop := r.Busy("Working...")
		defer stop()
		if fail {
			return assert.AnError
		}
		return nil
	}
	assert.NoError(t, work(false))
	assert.Error(t, work(true))
	assert.Contains(t, buf.String(), "Working...")
}
