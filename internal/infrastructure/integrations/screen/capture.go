// Package screen captures screenshots and dictation through external tools.
package screen

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/ports"
)

// fileToken is replaced by the output path in capture commands.
const fileToken = "{file}"

const jpegQuality = 80

// runner executes a command line and returns its stdout.
type runner func(ctx context.Context, argv []string) ([]byte, error)

// Capturer implements ports.ScreenshotProvider. Captures are reused for
// domain.ScreenshotCacheTTL.
type Capturer struct {
	command []string
	run     runner
	now     func() time.Time
	ttl     time.Duration

	mu       sync.Mutex
	cached   []byte
	cachedAt time.Time
}

// NewCapturer uses command, or a platform default when it is empty. The
// command must write an image to the {file} placeholder.
func NewCapturer(command string) *Capturer {
	argv := strings.Fields(command)
	if len(argv) == 0 {
		argv = defaultCaptureCommand(runtime.GOOS, exec.LookPath)
	}
	return &Capturer{command: argv, run: runCommand, now: time.Now, ttl: domain.ScreenshotCacheTTL}
}

func defaultCaptureCommand(goos string, lookPath func(string) (string, error)) []string {
	switch goos {
	case "darwin":
		return []string{"screencapture", "-x", "-t", "jpg", fileToken}
	case "windows":
		script := "Add-Type -AssemblyName System.Windows.Forms,System.Drawing; " +
			"$b=[System.Windows.Forms.Screen]::PrimaryScreen.Bounds; " +
			"$i=New-Object System.Drawing.Bitmap $b.Width,$b.Height; " +
			"[System.Drawing.Graphics]::FromImage($i).CopyFromScreen($b.Location,[System.Drawing.Point]::Empty,$b.Size); " +
			"$i.Save('" + fileToken + "',[System.Drawing.Imaging.ImageFormat]::Png)"
		return []string{"powershell", "-NoProfile", "-Command", script}
	}
	candidates := [][]string{
		{"grim", fileToken},
		{"gnome-screenshot", "-f", fileToken},
		{"spectacle", "-b", "-n", "-o", fileToken},
		{"import", "-window", "root", fileToken},
	}
	for _, c := range candidates {
		if _, err := lookPath(c[0]); err == nil {
			return c
		}
	}
	return nil
}

// Available reports whether a capture tool is configured or installed.
func (c *Capturer) Available() bool {
	return len(c.command) > 0
}

// Tool names the capture executable, empty when none was found.
func (c *Capturer) Tool() string {
	if len(c.command) == 0 {
		return ""
	}
	return c.command[0]
}

// Capture returns the current screen as JPEG bytes.
func (c *Capturer) Capture(ctx context.Context) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cached != nil && c.now().Sub(c.cachedAt) < c.ttl {
		return c.cached, nil
	}
	if len(c.command) == 0 {
		return nil, domain.NewCollaboratorError("screen capture", domain.ErrUnavailable,
			fmt.Errorf("no screenshot tool found; set screen.capture_command"))
	}

	dir, err := os.MkdirTemp("", "quack-screen-")
	if err != nil {
		return nil, fmt.Errorf("create capture directory: %w", err)
	}
	defer os.RemoveAll(dir)
	out := filepath.Join(dir, "screen.img")

	argv := make([]string, len(c.command))
	for i, arg := range c.command {
		argv[i] = strings.ReplaceAll(arg, fileToken, out)
	}
	if _, err := c.run(ctx, argv); err != nil {
		return nil, domain.NewCollaboratorError("screen capture", domain.ErrUnavailable, fmt.Errorf("%s: %w", argv[0], err))
	}
	raw, err := os.ReadFile(out)
	if err != nil {
		return nil, domain.NewCollaboratorError("screen capture", domain.ErrUnavailable, fmt.Errorf("%s wrote no image: %w", argv[0], err))
	}
	img, err := toJPEG(raw)
	if err != nil {
		return nil, domain.NewCollaboratorError("screen capture", domain.ErrUnavailable, err)
	}
	c.cached, c.cachedAt = img, c.now()
	return img, nil
}

// toJPEG re-encodes PNG captures. JPEG input is returned unchanged.
func toJPEG(raw []byte) ([]byte, error) {
	if bytes.HasPrefix(raw, []byte{0xff, 0xd8}) {
		return raw, nil
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode screenshot: %w", err)
	}
	return buf.Bytes(), nil
}

func runCommand(ctx context.Context, argv []string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}

var _ ports.ScreenshotProvider = (*Capturer)(nil)
