package config

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/quack-go/internal/domain"
)

const redacted = "********"

// secretKeys are masked by Redacted.
var secretKeys = map[string]bool{
	"github.token":          true,
	"email.password":        true,
	"whatsapp.auth_token":   true,
	"calendar.access_token": true,
}

func toViper(cfg domain.Config) (*viper.Viper, error) {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// Get returns the value at a dotted key such as "github.api_url".
func Get(cfg domain.Config, key string) (interface{}, error) {
	v, err := toViper(cfg)
	if err != nil {
		return nil, err
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if !v.IsSet(key) {
		return nil, fmt.Errorf("%w: unknown config key %q", domain.ErrNotFound, key)
	}
	return v.Get(key), nil
}

// Set assigns a scalar value at a dotted key and returns the validated
// result. The value is parsed as YAML so "true" and "30" keep their types.
func Set(cfg domain.Config, key, value string) (domain.Config, error) {
	v, err := toViper(cfg)
	if err != nil {
		return domain.Config{}, err
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if !v.IsSet(key) {
		return domain.Config{}, fmt.Errorf("%w: unknown config key %q", domain.ErrNotFound, key)
	}
	if _, nested := v.Get(key).(map[string]interface{}); nested {
		return domain.Config{}, fmt.Errorf("%w: %s is a section, set one of its keys", domain.ErrInvalidInput, key)
	}
	v.Set(key, parseScalar(value))

	raw, err := yaml.Marshal(v.AllSettings())
	if err != nil {
		return domain.Config{}, fmt.Errorf("encode config: %w", err)
	}
	var updated domain.Config
	if err := yaml.Unmarshal(raw, &updated); err != nil {
		return domain.Config{}, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
	}
	if err := updated.ValidateConsistency(); err != nil {
		return domain.Config{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return updated, nil
}

func parseScalar(value string) interface{} {
	value = strings.TrimSpace(value)
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return value
}

// Redacted returns a copy with secrets and API keys masked.
func Redacted(cfg domain.Config) domain.Config {
	out := cfg
	out.Models = append([]domain.ModelDefinition(nil), cfg.Models...)
	for i := range out.Models {
		out.Models[i].APIKey = mask(out.Models[i].APIKey)
	}
	for _, b := range envBindings {
		if secretKeys[b.key] {
			field := b.field(&out)
			*field = mask(*field)
		}
	}
	return out
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return redacted
}
