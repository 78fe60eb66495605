// Package chat implements the chat controller: it sends user input to the
// selected backend endpoint, keeps the transcript and drives a View.
package chat

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apierrors "github.com/diogo/chatbot/internal/errors"
	"github.com/diogo/chatbot/internal/models"
	"github.com/diogo/chatbot/internal/prompts"
)

// Settings are the bot's static configuration
type Settings struct {
	Endpoints       []string
	DefaultEndpoint string
	// CopyFeedback is how long CopiedLabel stays up (default 1s)
	CopyFeedback time.Duration
}

// Bot is the chat controller. It is safe for concurrent use and allows at
// most one chat request in flight.
type Bot struct {
	api       API
	view      View
	formatter Formatter
	clipboard Clipboard
	picker    *prompts.Picker
	log       zerolog.Logger

	now          func() time.Time
	after        func(d time.Duration, f func())
	copyFeedback time.Duration

	mu         sync.Mutex
	endpoints  []string
	endpoint   string
	messages   []models.Message
	systemInfo models.SystemInfo
	sending    bool
}

// Option configures a Bot
type Option func(*Bot)

// WithClock sets the time source for message timestamps
func WithClock(now func() time.Time) Option {
	return func(b *Bot) {
		b.now = now
	}
}

// WithTimer sets the scheduler used to restore copy labels
func WithTimer(after func(d time.Duration, f func())) Option {
	return func(b *Bot) {
		b.after = after
	}
}

// WithClipboard replaces the system clipboard
func WithClipboard(c Clipboard) Option {
	return func(b *Bot) {
		b.clipboard = c
	}
}

// WithPicker sets the example prompt picker
func WithPicker(p *prompts.Picker) Option {
	return func(b *Bot) {
		b.picker = p
	}
}

// WithLogger sets the bot's logger
func WithLogger(log zerolog.Logger) Option {
	return func(b *Bot) {
		b.log = log
	}
}

// New creates a bot. A nil formatter shows content unchanged.
func New(api API, view View, formatter Formatter, settings Settings, opts ...Option) (*Bot, error) {
	if api == nil || view == nil {
		return nil, fmt.Errorf("chat: api and view are required")
	}
	if len(settings.Endpoints) == 0 {
		return nil, fmt.Errorf("chat: at least one endpoint is required")
	}
	endpoint := settings.DefaultEndpoint
	if endpoint == "" {
		endpoint = settings.Endpoints[0]
	}
	if !slices.Contains(settings.Endpoints, endpoint) {
		return nil, fmt.Errorf("chat: %w: %s", apierrors.ErrUnknownEndpoint, endpoint)
	}
	if formatter == nil {
		formatter = passthrough{}
	}

	b := &Bot{
		api:          api,
		view:         view,
		formatter:    formatter,
		clipboard:    SystemClipboard{},
		log:          zerolog.Nop(),
		now:          time.Now,
		after:        func(d time.Duration, f func()) { time.AfterFunc(d, f) },
		copyFeedback: settings.CopyFeedback,
		endpoints:    slices.Clone(settings.Endpoints),
		endpoint:     endpoint,
	}
	if b.copyFeedback <= 0 {
		b.copyFeedback = time.Second
	}

	for _, opt := range opts {
		opt(b)
	}
	if b.picker == nil {
		b.picker = prompts.NewPicker(prompts.DefaultPools(), nil)
	}

	return b, nil
}

// SendMessage sends trimmed input to the selected endpoint and appends the
// user entry followed by exactly one assistant or error entry. Blank input
// is ignored. Returns ErrBusy, without touching the transcript, while
// another send is pending.
func (b *Bot) SendMessage(ctx context.Context, input string) error {
	text := strings.TrimSpace(input)
	if text == "" {
		return nil
	}

	b.mu.Lock()
	if b.sending {
		b.mu.Unlock()
		return apierrors.ErrBusy
	}
	b.sending = true
	endpoint := b.endpoint
	b.mu.Unlock()

	b.AddMessage(models.RoleUser, text)
	b.view.ClearInput()
	b.view.SetSendEnabled(false)

	defer func() {
		b.view.SetSendEnabled(true)
		b.mu.Lock()
		b.sending = false
		b.mu.Unlock()
	}()

	start := time.Now()
	resp, err := b.api.Chat(ctx, endpoint, text)
	if err == nil && resp == nil {
		err = apierrors.NewParseError("empty response", endpoint)
	}
	if err != nil {
		b.log.Warn().Err(err).Str("endpoint", endpoint).Msg("chat request failed")
		b.AddMessage(models.RoleError, "Error: "+err.Error())
		return err
	}

	b.log.Info().
		Str("endpoint", endpoint).
		Dur("elapsed", time.Since(start)).
		Int("reply_len", len(resp.Response)).
		Msg("chat reply received")
	b.AddMessage(models.RoleAssistant, resp.Response)
	return nil
}

// AddMessage records a message and appends its rendered entry to the view
func (b *Bot) AddMessage(role models.Role, content string) Entry {
	msg := models.NewMessage(role, content, b.now())
	entry := b.entryFor(msg)

	b.mu.Lock()
	b.messages = append(b.messages, msg)
	b.mu.Unlock()

	b.view.AppendEntry(entry)
	b.view.ScrollToBottom()
	return entry
}

// FormatMessage renders content with the bot's formatter
func (b *Bot) FormatMessage(content string) string {
	return b.formatter.Format(content)
}

func (b *Bot) entryFor(msg models.Message) Entry {
	return Entry{
		ID:    msg.ID,
		Role:  msg.Role,
		Icon:  msg.Role.Icon(),
		Label: msg.Role.Label(),
		Time:  msg.FormattedTime(),
		Text:  msg.Text,
		Body:  b.formatter.Format(msg.Text),
	}
}

// LoadSystemInfo fetches /health then /system-info and shows the result or
// the failure in the status panel. The error is returned for logging only.
func (b *Bot) LoadSystemInfo(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("system info: %v", r)
			b.view.ShowSystemInfoError(err)
		}
	}()

	health, err := b.api.Health(ctx)
	if err != nil {
		b.view.ShowSystemInfoError(err)
		return err
	}
	raw, err := b.api.SystemInfo(ctx)
	if err != nil {
		b.view.ShowSystemInfoError(err)
		return err
	}

	info := models.NewSystemInfo(health, raw)
	b.mu.Lock()
	b.systemInfo = info
	b.mu.Unlock()

	b.view.ShowSystemInfo(info)
	return nil
}

// SystemInfo returns the last successfully loaded status
func (b *Bot) SystemInfo() models.SystemInfo {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.systemInfo
}

// SetMessage places text in the input box
func (b *Bot) SetMessage(text string) {
	b.view.SetInput(text)
}

// SetExample fills the input with a random prompt from category
func (b *Bot) SetExample(category string) (string, error) {
	prompt, err := b.picker.Pick(category)
	if err != nil {
		return "", err
	}
	b.SetMessage(prompt)
	return prompt, nil
}

// ExampleCategories lists the example prompt categories
func (b *Bot) ExampleCategories() []string {
	return b.picker.Categories()
}

// ClearChat discards the transcript and leaves a single system notice
func (b *Bot) ClearChat() {
	b.mu.Lock()
	notice := models.NewMessage(models.RoleSystem,
		fmt.Sprintf("Chat cleared. Using %s endpoint.", b.endpoint), b.now())
	b.messages = []models.Message{notice}
	b.mu.Unlock()

	b.view.ResetTranscript(b.entryFor(notice))
}

// CopyMessage copies a message's raw text and flashes CopiedLabel on it
func (b *Bot) CopyMessage(id string) error {
	b.mu.Lock()
	var text string
	found := false
	for _, m := range b.messages {
		if m.ID == id {
			text, found = m.Text, true
			break
		}
	}
	b.mu.Unlock()

	if !found {
		return fmt.Errorf("%w: %s", apierrors.ErrMessageNotFound, id)
	}
	if err := b.clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to copy message: %w", err)
	}

	b.view.SetCopyLabel(id, CopiedLabel)
	b.after(b.copyFeedback, func() {
		b.view.SetCopyLabel(id, "")
	})
	return nil
}

// LastReplyID returns the ID of the newest assistant message
func (b *Bot) LastReplyID() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.messages) - 1; i >= 0; i-- {
		if b.messages[i].Role == models.RoleAssistant {
			return b.messages[i].ID, true
		}
	}
	return "", false
}

// SelectEndpoint changes the endpoint used by the next send
func (b *Bot) SelectEndpoint(endpoint string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !slices.Contains(b.endpoints, endpoint) {
		return fmt.Errorf("%w: %s (available: %s)", apierrors.ErrUnknownEndpoint,
			endpoint, strings.Join(b.endpoints, ", "))
	}
	b.endpoint = endpoint
	return nil
}

// NextEndpoint selects the endpoint after the current one, wrapping around
func (b *Bot) NextEndpoint() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := slices.Index(b.endpoints, b.endpoint)
	b.endpoint = b.endpoints[(i+1)%len(b.endpoints)]
	return b.endpoint
}

// Endpoint returns the selected endpoint
func (b *Bot) Endpoint() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.endpoint
}

// Endpoints returns the selectable endpoints
func (b *Bot) Endpoints() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.endpoints)
}

// Sending reports whether a chat request is in flight
func (b *Bot) Sending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sending
}

// Transcript returns a copy of the recorded messages
func (b *Bot) Transcript() []models.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.messages)
}
