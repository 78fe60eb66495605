package commands

import (
	"io"
	"os"

	"github.com/diogo/chatbot/internal/api"
	"github.com/diogo/chatbot/internal/chat"
	"github.com/diogo/chatbot/internal/tui"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunChat(bot tui.Controller, view *tui.EventView, opts tui.Options) error
}

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// HTTP replaces the default TLS client transport when set.
	HTTP api.HTTPDoer

	// TUI is the terminal user interface.
	TUI TUIInterface

	// Clipboard replaces the system clipboard when set.
	Clipboard chat.Clipboard

	// Stdin, Stdout and Stderr default to the process streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) RunChat(bot tui.Controller, view *tui.EventView, opts tui.Options) error {
	return tui.RunChat(bot, view, opts)
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		TUI:    &DefaultTUI{},
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// withDefaults fills unset fields with the production implementations
func (d *Dependencies) withDefaults() *Dependencies {
	if d == nil {
		return NewDependencies()
	}
	out := *d
	def := NewDependencies()
	if out.TUI == nil {
		out.TUI = def.TUI
	}
	if out.Stdin == nil {
		out.Stdin = def.Stdin
	}
	if out.Stdout == nil {
		out.Stdout = def.Stdout
	}
	if out.Stderr == nil {
		out.Stderr = def.Stderr
	}
	return &out
}
