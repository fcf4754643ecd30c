package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/quack-go/internal/domain"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, b := range envBindings {
		t.Setenv("QUACK_"+strings.ToUpper(strings.ReplaceAll(b.key, ".", "_")), "")
		for _, name := range b.names {
			t.Setenv(name, "")
		}
	}
}

func TestLoadWritesDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	loader := NewFileLoader(path)

	cfg, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.Model)
	assert.Equal(t, domain.DefaultRole, cfg.Role)
	assert.Len(t, cfg.Models, 2)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(domain.SecureFilePermissions), info.Mode().Perm())
}

func TestLoadRejectsUnknownModel(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := DefaultConfig()
	require.NoError(t, err)
	cfg.Model = "claude"
	raw, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	_, err = NewFileLoader(path).Load(context.Background())
	assert.ErrorContains(t, err, "model claude does not exist")
}

func TestEnvironmentSecretsAreNotPersisted(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghp_from_env")
	t.Setenv("QUACK_ROLE", "Writer")
	path := filepath.Join(t.TempDir(), "config.yaml")
	loader := NewFileLoader(path)

	cfg, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ghp_from_env", cfg.GitHub.Token)
	assert.Equal(t, "Writer", cfg.Role)
	assert.ElementsMatch(t, []string{"role", "github.token"}, loader.Overridden())

	cfg.Email.Address = "me@example.com"
	require.NoError(t, loader.Save(cfg))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk domain.Config
	require.NoError(t, yaml.Unmarshal(raw, &onDisk))
	assert.Empty(t, onDisk.GitHub.Token)
	assert.Equal(t, domain.DefaultRole, onDisk.Role)
	assert.Equal(t, "me@example.com", onDisk.Email.Address)
}

func TestChangedOverriddenValueIsSaved(t *testing.T) {
	clearEnv(t)
	t.Setenv("TWILIO_AUTH_TOKEN", "env-token")
	path := filepath.Join(t.TempDir(), "config.yaml")
	loader := NewFileLoader(path)

	cfg, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.WhatsApp.AuthToken)

	cfg.WhatsApp.AuthToken = "typed-token"
	require.NoError(t, loader.Save(cfg))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "typed-token")
}

func TestResetKeepsBackup(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	loader := NewFileLoader(path)
	cfg, err := loader.Load(context.Background())
	require.NoError(t, err)
	cfg.Role = "Teacher"
	require.NoError(t, loader.Save(cfg))

	reset, err := loader.Reset()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultRole, reset.Role)

	raw, err := os.ReadFile(path + ".bak")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Teacher")
}

func TestPathPrefersEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfigPath, filepath.Join(dir, "custom.yaml"))
	assert.Equal(t, filepath.Join(dir, "custom.yaml"), NewFileLoader("").Path())
	assert.Equal(t, filepath.Join(dir, "x.yaml"), NewFileLoader(filepath.Join(dir, "x.yaml")).Path())
}
