package apps

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	calls []string
}

func (r *recorder) start(_ context.Context, name string, args ...string) error {
	r.calls = append(r.calls, strings.TrimSpace(name+" "+strings.Join(args, " ")))
	return nil
}

func writeDesktop(t *testing.T, dir, file, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(body), 0o644))
}

func TestLinuxListAndLaunch(t *testing.T) {
	dir := t.TempDir()
	writeDesktop(t, dir, "org.gnome.Calculator.desktop", "[Desktop Entry]\nName=Calculator\nExec=gnome-calculator\n[Desktop Action new]\nName=New\n")
	writeDesktop(t, dir, "firefox.desktop", "[Desktop Entry]\nName=Firefox\n")
	writeDesktop(t, dir, "hidden.desktop", "[Desktop Entry]\nName=Helper\nNoDisplay=true\n")
	writeDesktop(t, dir, "notes.txt", "Name=Nope\n")

	rec := &recorder{}
	l := &Launcher{goos: "linux", start: rec.start, dirs: []string{dir, filepath.Join(dir, "missing")}}

	names, err := l.ListInstalled(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Calculator", "Firefox"}, names)

	require.NoError(t, l.Launch(context.Background(), "calculator"))
	assert.Equal(t, []string{"gtk-launch org.gnome.Calculator"}, rec.calls)
}

func TestDarwinLaunch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "Safari.app"), 0o755))
	rec := &recorder{}
	l := &Launcher{goos: "darwin", start: rec.start, dirs: []string{dir}}

	names, err := l.ListInstalled(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Safari"}, names)

	require.NoError(t, l.Launch(context.Background(), "Safari"))
	assert.Equal(t, []string{"open -a Safari"}, rec.calls)
}

func TestLaunchRejectsEmptyName(t *testing.T) {
	l := &Launcher{goos: "linux", start: (&recorder{}).start}
	assert.Error(t, l.Launch(context.Background(), " "))
}
