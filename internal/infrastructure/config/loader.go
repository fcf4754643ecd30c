package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/quack-go/assets"
	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/pkg/filesystem"
	"github.com/doeshing/quack-go/internal/ports"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "QUACK_CONFIG"

// FileLoader loads YAML configuration from ~/.quack/config.yaml (overridable
// via QUACK_CONFIG) and overlays environment variables on top.
type FileLoader struct {
	overridePath string
	env          *envOverlay
}

// NewFileLoader builds a new loader. An empty path selects the default
// location.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path, env: newEnvOverlay()}
}

// Load implements ports.ConfigStore. A missing file is created from the
// embedded defaults.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	cfg, err := l.loadFile()
	if err != nil {
		return domain.Config{}, err
	}
	cfg = hydrateDefaults(cfg)
	l.env.apply(&cfg)
	if err := cfg.ValidateConsistency(); err != nil {
		return domain.Config{}, fmt.Errorf("invalid configuration in %s: %w", l.Path(), err)
	}
	return cfg, nil
}

func (l *FileLoader) loadFile() (domain.Config, error) {
	path := l.Path()
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return domain.Config{}, fmt.Errorf("create config directory: %w", err)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err := DefaultConfig()
		if err != nil {
			return domain.Config{}, err
		}
		if err := writeConfig(path, cfg); err != nil {
			return domain.Config{}, err
		}
		return cfg, nil
	}
	if err != nil {
		return domain.Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save implements ports.ConfigStore. Values that came from the environment
// are written back as they were in the file.
func (l *FileLoader) Save(cfg domain.Config) error {
	if err := cfg.ValidateConsistency(); err != nil {
		return fmt.Errorf("refusing to save invalid configuration: %w", err)
	}
	l.env.restore(&cfg)
	path := l.Path()
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return writeConfig(path, cfg)
}

// Reset overwrites the file with the embedded defaults, keeping a backup of
// the previous file next to it.
func (l *FileLoader) Reset() (domain.Config, error) {
	cfg, err := DefaultConfig()
	if err != nil {
		return domain.Config{}, err
	}
	path := l.Path()
	if err := backup(path); err != nil {
		return domain.Config{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return domain.Config{}, fmt.Errorf("create config directory: %w", err)
	}
	return cfg, writeConfig(path, cfg)
}

// Path returns the resolved config file location.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return filesystem.ExpandPath(l.overridePath)
	}
	if custom := os.Getenv(EnvConfigPath); custom != "" {
		return filesystem.ExpandPath(custom)
	}
	return filepath.Join(filesystem.QuackDir(), "config.yaml")
}

// DefaultConfig parses the embedded default configuration.
func DefaultConfig() (domain.Config, error) {
	var cfg domain.Config
	if err := yaml.Unmarshal(assets.DefaultConfigYAML, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parse embedded defaults: %w", err)
	}
	return hydrateDefaults(cfg), nil
}

func writeConfig(path string, cfg domain.Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, raw, domain.SecureFilePermissions); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func backup(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config for backup: %w", err)
	}
	if err := os.WriteFile(path+".bak", data, domain.SecureFilePermissions); err != nil {
		return fmt.Errorf("write config backup: %w", err)
	}
	return nil
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = "1"
	}
	if cfg.Model == "" && len(cfg.Models) > 0 {
		cfg.Model = cfg.Models[0].Name
	}
	if cfg.Role == "" {
		cfg.Role = domain.DefaultRole
	}
	if cfg.History.Path == "" {
		cfg.History.Path = filepath.Join(filesystem.QuackDir(), "history.db")
	}
	if cfg.Security.RulesFile == "" {
		cfg.Security.RulesFile = filepath.Join(filesystem.QuackDir(), "guardrail.yaml")
	}
	return cfg
}

var _ ports.ConfigStore = (*FileLoader)(nil)
