package commands

import (
	"context"
	"errors"

	"github.com/doeshing/quack-go/internal/app"
)

// ContainerFunc returns the application container, building it on first use.
// Commands that only touch the config file do not need it.
type ContainerFunc func(ctx context.Context) (*app.Container, error)

// ErrReported marks a failure that has already been shown to the user.
var ErrReported = errors.New("request failed")

const (
	// DefaultEditorCommand is used when $EDITOR is unset.
	DefaultEditorCommand = "vi"
	envKeyEditor         = "EDITOR"
)

// Success messages
const (
	MsgConfigurationValid       = "Configuration valid"
	MsgNoDifferencesFromDefault = "No differences from default configuration."
	MsgNoHistoryRecorded        = "No history recorded yet."
	MsgHistoryCleared           = "History cleared."
)
