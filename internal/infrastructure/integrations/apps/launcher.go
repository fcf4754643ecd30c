// Package apps launches and lists desktop applications with the platform's
// own tools.
package apps

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/pkg/filesystem"
	"github.com/doeshing/quack-go/internal/ports"
)

// starter runs a detached command.
type starter func(ctx context.Context, name string, args ...string) error

// Launcher implements ports.AppLauncher.
type Launcher struct {
	goos  string
	start starter
	// dirs are scanned by ListInstalled.
	dirs []string
}

// NewLauncher returns a launcher for the running platform.
func NewLauncher() *Launcher {
	return &Launcher{goos: runtime.GOOS, start: startDetached, dirs: appDirs(runtime.GOOS)}
}

func appDirs(goos string) []string {
	home := filesystem.UserHomeDir()
	switch goos {
	case "darwin":
		return []string{"/Applications", "/System/Applications", filepath.Join(home, "Applications")}
	case "windows":
		return []string{
			filepath.Join(os.Getenv("ProgramData"), "Microsoft", "Windows", "Start Menu", "Programs"),
			filepath.Join(os.Getenv("APPDATA"), "Microsoft", "Windows", "Start Menu", "Programs"),
		}
	default:
		return []string{"/usr/share/applications", "/var/lib/flatpak/exports/share/applications", filepath.Join(home, ".local", "share", "applications")}
	}
}

// Launch starts the named application without waiting for it to exit.
func (l *Launcher) Launch(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: application name is empty", domain.ErrInvalidInput)
	}
	var err error
	switch l.goos {
	case "darwin":
		err = l.start(ctx, "open", "-a", name)
	case "windows":
		err = l.start(ctx, "cmd", "/c", "start", "", name)
	default:
		err = l.launchLinux(ctx, name)
	}
	if err != nil {
		return fmt.Errorf("%w: could not launch %s: %v", domain.ErrNotFound, name, err)
	}
	return nil
}

// launchLinux prefers a matching .desktop entry and falls back to an
// executable on PATH.
func (l *Launcher) launchLinux(ctx context.Context, name string) error {
	for _, dir := range l.dirs {
		matches, _ := filepath.Glob(filepath.Join(dir, "*.desktop"))
		for _, path := range matches {
			if entryName, ok := desktopName(path); ok && strings.EqualFold(entryName, name) {
				return l.start(ctx, "gtk-launch", strings.TrimSuffix(filepath.Base(path), ".desktop"))
			}
		}
	}
	binary := strings.ToLower(strings.ReplaceAll(name, " ", "-"))
	if _, err := exec.LookPath(binary); err != nil {
		return err
	}
	return l.start(ctx, binary)
}

// ListInstalled returns application names, sorted and deduplicated.
func (l *Launcher) ListInstalled(context.Context) ([]string, error) {
	seen := make(map[string]bool)
	for _, dir := range l.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if name, ok := l.appName(filepath.Join(dir, e.Name())); ok {
				seen[name] = true
			}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return strings.ToLower(names[i]) < strings.ToLower(names[j]) })
	return names, nil
}

func (l *Launcher) appName(path string) (string, bool) {
	base := filepath.Base(path)
	switch l.goos {
	case "darwin":
		return strings.TrimSuffix(base, ".app"), strings.HasSuffix(base, ".app")
	case "windows":
		return strings.TrimSuffix(base, ".lnk"), strings.HasSuffix(base, ".lnk")
	default:
		if !strings.HasSuffix(base, ".desktop") {
			return "", false
		}
		return desktopName(path)
	}
}

// desktopName reads Name= from the [Desktop Entry] group, skipping entries
// marked NoDisplay.
func desktopName(path string) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()
	var name string
	inEntry := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "[") {
			inEntry = line == "[Desktop Entry]"
			continue
		}
		if !inEntry {
			continue
		}
		switch {
		case strings.HasPrefix(line, "Name=") && name == "":
			name = strings.TrimPrefix(line, "Name=")
		case line == "NoDisplay=true":
			return "", false
		}
	}
	return name, name != ""
}

func startDetached(_ context.Context, name string, args ...string) error {
	// The launched app must outlive the request, so no CommandContext.
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

var _ ports.AppLauncher = (*Launcher)(nil)
