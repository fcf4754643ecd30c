package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/doeshing/quack-go/internal/domain"
)

// envBinding maps a config key to the environment variables that override it.
// The key is also reachable as QUACK_<KEY> with dots replaced by underscores.
type envBinding struct {
	key   string
	names []string
	field func(*domain.Config) *string
}

var envBindings = []envBinding{
	{"model", nil, func(c *domain.Config) *string { return &c.Model }},
	{"role", nil, func(c *domain.Config) *string { return &c.Role }},
	{"github.token", []string{"GITHUB_TOKEN"}, func(c *domain.Config) *string { return &c.GitHub.Token }},
	{"email.address", []string{"EMAIL_ADDRESS"}, func(c *domain.Config) *string { return &c.Email.Address }},
	{"email.password", []string{"EMAIL_PASSWORD"}, func(c *domain.Config) *string { return &c.Email.Password }},
	{"whatsapp.account_sid", []string{"WHATSAPP_ACCOUNT_SID", "TWILIO_ACCOUNT_SID"}, func(c *domain.Config) *string { return &c.WhatsApp.AccountSID }},
	{"whatsapp.auth_token", []string{"WHATSAPP_AUTH_TOKEN", "TWILIO_AUTH_TOKEN"}, func(c *domain.Config) *string { return &c.WhatsApp.AuthToken }},
	{"whatsapp.from_number", []string{"WHATSAPP_FROM_NUMBER"}, func(c *domain.Config) *string { return &c.WhatsApp.FromNumber }},
	{"calendar.access_token", []string{"GOOGLE_CALENDAR_TOKEN"}, func(c *domain.Config) *string { return &c.Calendar.AccessToken }},
	{"files.workspace_root", nil, func(c *domain.Config) *string { return &c.Files.WorkspaceRoot }},
}

// envOverlay applies environment overrides on load and undoes them on save so
// that secrets passed through the environment are never written to disk.
type envOverlay struct {
	v *viper.Viper
	// original holds the file value of every overridden key.
	original map[string]string
	applied  map[string]string
}

func newEnvOverlay() *envOverlay {
	v := viper.New()
	v.SetEnvPrefix("QUACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, b := range envBindings {
		names := append([]string{"QUACK_" + strings.ToUpper(strings.ReplaceAll(b.key, ".", "_"))}, b.names...)
		// BindEnv only fails without a key.
		_ = v.BindEnv(append([]string{b.key}, names...)...)
	}
	return &envOverlay{v: v}
}

func (o *envOverlay) apply(cfg *domain.Config) {
	o.original = make(map[string]string)
	o.applied = make(map[string]string)
	for _, b := range envBindings {
		value := strings.TrimSpace(o.v.GetString(b.key))
		if value == "" {
			continue
		}
		field := b.field(cfg)
		o.original[b.key] = *field
		o.applied[b.key] = value
		*field = value
	}
}

func (o *envOverlay) restore(cfg *domain.Config) {
	for _, b := range envBindings {
		value, ok := o.applied[b.key]
		if !ok {
			continue
		}
		field := b.field(cfg)
		// Only undo values the user did not change in the meantime.
		if *field == value {
			*field = o.original[b.key]
		}
	}
}

// Overridden lists the config keys currently taken from the environment.
func (l *FileLoader) Overridden() []string {
	var keys []string
	for _, b := range envBindings {
		if _, ok := l.env.applied[b.key]; ok {
			keys = append(keys, b.key)
		}
	}
	return keys
}
