package chat

import (
	"context"

	"github.com/atotto/clipboard"

	"github.com/diogo/chatbot/internal/models"
)

// CopiedLabel is shown on a message's copy control after a successful copy
const CopiedLabel = "📋 Copied!"

// Entry is a rendered transcript row
type Entry struct {
	ID    string
	Role  models.Role
	Icon  string
	Label string
	Time  string
	// Text is the raw message text, Body the formatted content
	Text string
	Body string
}

// Header returns "icon label", or "" for roles without either
func (e Entry) Header() string {
	switch {
	case e.Icon == "" && e.Label == "":
		return ""
	case e.Icon == "":
		return e.Label
	case e.Label == "":
		return e.Icon
	}
	return e.Icon + " " + e.Label
}

// View is the presentation surface the bot drives.
// Implementations must be safe to call from any goroutine.
type View interface {
	AppendEntry(e Entry)
	// ResetTranscript replaces every entry with notice
	ResetTranscript(notice Entry)
	ScrollToBottom()
	SetSendEnabled(enabled bool)
	ClearInput()
	SetInput(text string)
	ShowSystemInfo(info models.SystemInfo)
	ShowSystemInfoError(err error)
	// SetCopyLabel sets the copy control text for a message; "" restores the default
	SetCopyLabel(id, label string)
}

// API is the backend the bot talks to
type API interface {
	Chat(ctx context.Context, endpoint, message string) (*models.ChatResponse, error)
	Health(ctx context.Context) (string, error)
	SystemInfo(ctx context.Context) (string, error)
}

// Formatter renders message content for the view
type Formatter interface {
	Format(content string) string
}

// Clipboard receives copied message text
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard writes to the OS clipboard
type SystemClipboard struct{}

// WriteAll implements Clipboard
func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// SystemInfoErrorText is the status panel text for a failed load
func SystemInfoErrorText(err error) string {
	return "Failed to load system info: " + err.Error()
}

type passthrough struct{}

func (passthrough) Format(content string) string { return content }
