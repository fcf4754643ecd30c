package screen

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/quack-go/internal/domain"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCaptureConvertsAndCaches(t *testing.T) {
	shot := pngBytes(t)
	calls := 0
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	c := &Capturer{
		command: []string{"shot", "--out", fileToken},
		ttl:     2 * time.Second,
		now:     func() time.Time { return now },
		run: func(_ context.Context, argv []string) ([]byte, error) {
			calls++
			require.Len(t, argv, 3)
			assert.NotEqual(t, fileToken, argv[2])
			return nil, os.WriteFile(argv[2], shot, 0o600)
		},
	}

	first, err := c.Capture(context.Background())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(first, []byte{0xff, 0xd8}), "expected JPEG output")

	now = now.Add(time.Second)
	second, err := c.Capture(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	now = now.Add(2 * time.Second)
	_, err = c.Capture(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestCaptureFailures(t *testing.T) {
	c := &Capturer{now: time.Now, ttl: time.Second}
	_, err := c.Capture(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnavailable)

	c.command = []string{"shot", fileToken}
	c.run = func(context.Context, []string) ([]byte, error) { return nil, errors.New("no display") }
	_, err = c.Capture(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.ErrorContains(t, err, "no display")
}

func TestDefaultCaptureCommand(t *testing.T) {
	only := func(name string) func(string) (string, error) {
		return func(bin string) (string, error) {
			if bin == name {
				return "/usr/bin/" + bin, nil
			}
			return "", errors.New("not found")
		}
	}
	assert.Equal(t, []string{"gnome-screenshot", "-f", fileToken}, defaultCaptureCommand("linux", only("gnome-screenshot")))
	assert.Nil(t, defaultCaptureCommand("linux", only("none")))
	assert.Equal(t, "screencapture", defaultCaptureCommand("darwin", only("none"))[0])
}

func TestListener(t *testing.T) {
	l := &Listener{command: []string{"dictate"}, run: func(context.Context, []string) ([]byte, error) {
		return []byte("  list my repos\n"), nil
	}}
	text, err := l.Listen(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "list my repos", text)

	_, err = NewListener("").Listen(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}
