package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/chatbot/internal/chat"
	apierrors "github.com/diogo/chatbot/internal/errors"
	"github.com/diogo/chatbot/internal/models"
)

type fakeAPI struct {
	reply string
	err   error
}

func (a *fakeAPI) Chat(ctx context.Context, endpoint, message string) (*models.ChatResponse, error) {
	if a.err != nil {
		return nil, a.err
	}
	return &models.ChatResponse{Response: a.reply + " via " + endpoint}, nil
}

func (a *fakeAPI) Health(ctx context.Context) (string, error) {
	return `{"status":"healthy","ollama":"connected"}`, nil
}

func (a *fakeAPI) SystemInfo(ctx context.Context) (string, error) {
	return `{"model":"qwen3:0.6b"}`, nil
}

type fakeClipboard struct{ text string }

func (c *fakeClipboard) WriteAll(text string) error {
	c.text = text
	return nil
}

func newTestModel(t *testing.T, api chat.API) (Model, *chat.Bot, *fakeClipboard) {
	t.Helper()
	view := NewEventView()
	clip := &fakeClipboard{}
	bot, err := chat.New(api, view, nil, chat.Settings{
		Endpoints: []string{"/chat-tools", "/chat"},
	}, chat.WithClipboard(clip), chat.WithTimer(func(time.Duration, func()) {}))
	if err != nil {
		t.Fatalf("chat.New failed: %v", err)
	}

	m := NewChatModel(bot, view, Options{BaseURL: "http://localhost:8000"})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model), bot, clip
}

// drain applies every queued view event
func drain(m Model) Model {
	for {
		select {
		case msg := <-m.view.events:
			updated, _ := m.Update(msg)
			m = updated.(Model)
		default:
			return m
		}
	}
}

// run executes cmd synchronously and feeds its result back into the model
func run(m Model, cmd tea.Cmd) Model {
	if cmd != nil {
		if msg := cmd(); msg != nil {
			updated, _ := m.Update(msg)
			m = updated.(Model)
		}
	}
	return drain(m)
}

func typeAndSubmit(m Model, text string) Model {
	m.textarea.SetValue(text)
	cmd := m.submit()
	return run(m, cmd)
}

func TestModel_WindowSize(t *testing.T) {
	m, _, _ := newTestModel(t, &fakeAPI{})

	if !m.ready {
		t.Fatal("model should be ready after WindowSizeMsg")
	}
	if m.width != 100 || m.height != 40 {
		t.Errorf("dimensions = %dx%d, want 100x40", m.width, m.height)
	}
	if m.viewport.Width != 96 {
		t.Errorf("viewport width = %d, want 96", m.viewport.Width)
	}
}

func TestModel_ViewBeforeReady(t *testing.T) {
	m := NewChatModel(nil, NewEventView(), Options{})
	if !strings.Contains(m.View(), "Initializing") {
		t.Error("expected initializing placeholder")
	}
}

func TestModel_SendMessage(t *testing.T) {
	m, _, _ := newTestModel(t, &fakeAPI{reply: "hi"})

	m = typeAndSubmit(m, "  hello  ")

	if len(m.entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(m.entries))
	}
	if m.entries[0].Role != models.RoleUser || m.entries[0].Text != "hello" {
		t.Errorf("first entry = %+v", m.entries[0])
	}
	if m.entries[1].Role != models.RoleAssistant || m.entries[1].Text != "hi via /chat-tools" {
		t.Errorf("second entry = %+v", m.entries[1])
	}
	if m.sending {
		t.Error("send should be re-enabled")
	}
	if m.textarea.Value() != "" {
		t.Errorf("input should be cleared, got %q", m.textarea.Value())
	}
	if m.cancel != nil {
		t.Error("cancel func should be released")
	}

	view := m.View()
	for _, want := range []string{"👤 You", "🤖 Assistant", "hello", "#2"} {
		if !strings.Contains(view, want) {
			t.Errorf("view should contain %q", want)
		}
	}
}

func TestModel_SendError(t *testing.T) {
	m, _, _ := newTestModel(t, &fakeAPI{err: fmt.Errorf("boom")})

	m = typeAndSubmit(m, "hello")

	if len(m.entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(m.entries))
	}
	if m.entries[1].Role != models.RoleError || m.entries[1].Text != "Error: boom" {
		t.Errorf("error entry = %+v", m.entries[1])
	}
}

func TestModel_BlankInputIgnored(t *testing.T) {
	m, _, _ := newTestModel(t, &fakeAPI{})
	m.textarea.SetValue("   ")

	if cmd := m.submit(); cmd != nil {
		t.Error("blank input should not produce a command")
	}
}

func TestModel_SubmitWhileSending(t *testing.T) {
	m, _, _ := newTestModel(t, &fakeAPI{})
	m.sending = true
	m.textarea.SetValue("second")

	if cmd := m.submit(); cmd != nil {
		t.Error("submit while sending should not start a request")
	}
	if !strings.Contains(m.notice, "already being sent") {
		t.Errorf("notice = %q", m.notice)
	}
}

func TestModel_EscCancelsInFlight(t *testing.T) {
	m, _, _ := newTestModel(t, &fakeAPI{})
	canceled := false
	m.sending = true
	m.cancel = func() { canceled = true }

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !canceled {
		t.Error("esc should cancel the in-flight request")
	}
	if cmd != nil {
		t.Error("esc while sending should not quit")
	}
	if !strings.Contains(updated.(Model).notice, "Canceling") {
		t.Error("expected canceling notice")
	}
}

// blockingAPI holds every chat request until its context ends
type blockingAPI struct {
	fakeAPI
	started chan struct{}
}

func (a *blockingAPI) Chat(ctx context.Context, endpoint, message string) (*models.ChatResponse, error) {
	a.started <- struct{}{}
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestModel_DoubleEnterThenEscCancels(t *testing.T) {
	api := &blockingAPI{started: make(chan struct{}, 1)}
	m, _, _ := newTestModel(t, api)

	m.textarea.SetValue("first")
	updated, first := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	if first == nil {
		t.Fatal("first enter should start a request")
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- first() }()
	<-api.started

	// The controller's view events are still queued
	m.textarea.SetValue("second")
	updated, second := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	if second != nil {
		t.Fatal("second enter must not start another request")
	}
	if m.cancel == nil {
		t.Fatal("cancel func of the pending request was lost")
	}

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)
	if cmd != nil {
		t.Error("esc while sending should not quit")
	}

	select {
	case msg := <-done:
		updated, _ = m.Update(msg)
		m = drain(updated.(Model))
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight request was not canceled")
	}
	if m.sending || m.cancel != nil {
		t.Errorf("after cancel: sending=%v cancel set=%v", m.sending, m.cancel != nil)
	}
	last := m.entries[len(m.entries)-1]
	if last.Role != models.RoleError {
		t.Errorf("last entry = %+v, want an error entry", last)
	}
}

func TestModel_StaleSendDoneKeepsCancel(t *testing.T) {
	m, _, _ := newTestModel(t, &fakeAPI{})
	m.sending = true
	m.sendSeq = 2
	canceled := false
	m.cancel = func() { canceled = true }

	for _, msg := range []sendDoneMsg{
		{seq: 2, err: apierrors.ErrBusy},
		{seq: 1, err: nil},
	} {
		updated, _ := m.Update(msg)
		m = updated.(Model)
		if m.cancel == nil {
			t.Fatalf("sendDoneMsg %+v released the pending cancel func", msg)
		}
	}

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !canceled {
		t.Error("esc should still cancel the pending request")
	}
	if !strings.Contains(updated.(Model).notice, "Canceling") {
		t.Error("expected canceling notice")
	}
}

func TestModel_EscQuitsWhenIdle(t *testing.T) {
	m, _, _ := newTestModel(t, &fakeAPI{})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("esc when idle should quit")
	}
}

func TestModel_TabCyclesEndpoint(t *testing.T) {
	m, bot, _ := newTestModel(t, &fakeAPI{})

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if bot.Endpoint() != "/chat" {
		t.Errorf("endpoint = %q, want /chat", bot.Endpoint())
	}
	if updated.(Model).notice != "Endpoint: /chat" {
		t.Errorf("notice = %q", updated.(Model).notice)
	}
}

func TestModel_ClearChat(t *testing.T) {
	m, _, _ := newTestModel(t, &fakeAPI{reply: "x"})
	m = typeAndSubmit(m, "hello")

	m = typeAndSubmit(m, "/clear")

	if len(m.entries) != 1 {
		t.Fatalf("expected only the notice, got %d entries", len(m.entries))
	}
	if m.entries[0].Role != models.RoleSystem {
		t.Errorf("notice role = %q", m.entries[0].Role)
	}
	if !strings.Contains(m.View(), "System: Chat cleared. Using /chat-tools endpoint.") {
		t.Error("view should show the system notice")
	}
}

func TestModel_CopyCommands(t *testing.T) {
	m, _, clip := newTestModel(t, &fakeAPI{reply: "secret"})
	m = typeAndSubmit(m, "hello")

	m = typeAndSubmit(m, "/copy")
	if clip.text != "secret via /chat-tools" {
		t.Errorf("clipboard = %q", clip.text)
	}
	if m.copyLabels[m.entries[1].ID] != chat.CopiedLabel {
		t.Error("copied entry should show the copied label")
	}

	m = typeAndSubmit(m, "/copy 1")
	if clip.text != "hello" {
		t.Errorf("clipboard = %q, want hello", clip.text)
	}

	m = typeAndSubmit(m, "/copy 9")
	if m.err == nil {
		t.Error("out of range copy should set an error")
	}
}

func TestModel_CopyLabelRestore(t *testing.T) {
	m, _, _ := newTestModel(t, &fakeAPI{})
	m = drain(m)
	updated, _ := m.Update(copyLabelMsg{id: "a", label: chat.CopiedLabel})
	m = updated.(Model)
	updated, _ = m.Update(copyLabelMsg{id: "a", label: ""})
	m = updated.(Model)

	if _, ok := m.copyLabels["a"]; ok {
		t.Error("empty label should restore the default")
	}
}

func TestModel_ExampleCommand(t *testing.T) {
	m, _, _ := newTestModel(t, &fakeAPI{})

	m = typeAndSubmit(m, "/example secrets")
	if m.textarea.Value() == "" {
		t.Error("example prompt should fill the input")
	}

	m = typeAndSubmit(m, "/example nope")
	if m.err == nil {
		t.Error("unknown category should set an error")
	}
}

func TestModel_EndpointCommand(t *testing.T) {
	m, bot, _ := newTestModel(t, &fakeAPI{})

	m = typeAndSubmit(m, "/endpoint /chat")
	if bot.Endpoint() != "/chat" {
		t.Errorf("endpoint = %q", bot.Endpoint())
	}

	m = typeAndSubmit(m, "/endpoint /admin")
	if m.err == nil {
		t.Error("unknown endpoint should set an error")
	}
	if bot.Endpoint() != "/chat" {
		t.Error("selection should be unchanged after a rejected endpoint")
	}
}

func TestModel_InfoCommand(t *testing.T) {
	m, _, _ := newTestModel(t, &fakeAPI{})

	m = typeAndSubmit(m, "/info")

	if m.info == nil {
		t.Fatal("system info should be loaded")
	}
	if m.info.Model != "qwen3:0.6b" {
		t.Errorf("model = %q", m.info.Model)
	}
	view := m.View()
	if !strings.Contains(view, "OpenAI Compatibility:") || !strings.Contains(view, "Unknown") {
		t.Error("status panel should list every field")
	}
}

func TestModel_InfoError(t *testing.T) {
	m, _, _ := newTestModel(t, &fakeAPI{})
	updated, _ := m.Update(systemInfoErrMsg{err: fmt.Errorf("connection refused")})
	m = updated.(Model)

	if !strings.Contains(m.View(), "Failed to load system info: connection refused") {
		t.Error("view should show the system info failure")
	}
}

func TestModel_ExportCommand(t *testing.T) {
	m, _, _ := newTestModel(t, &fakeAPI{reply: "x"})
	m = typeAndSubmit(m, "hello")

	path := filepath.Join(t.TempDir(), "chat.md")
	m = typeAndSubmit(m, "/export "+path)

	if m.err != nil {
		t.Fatalf("export failed: %v", m.err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Error("export should contain the transcript")
	}
}

func TestModel_UnknownCommand(t *testing.T) {
	m, _, _ := newTestModel(t, &fakeAPI{})

	m = typeAndSubmit(m, "/bogus")
	if m.err == nil || !strings.Contains(m.err.Error(), "/help") {
		t.Errorf("err = %v", m.err)
	}
}

func TestModel_QuitCommand(t *testing.T) {
	m, _, _ := newTestModel(t, &fakeAPI{})
	m.textarea.SetValue("/quit")

	cmd := m.submit()
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("/quit should quit")
	}
}

func TestEventView_QueuesEvents(t *testing.T) {
	v := NewEventView()
	v.SetSendEnabled(false)
	v.SetInput("x")

	if got := len(v.events); got != 2 {
		t.Fatalf("queued %d events, want 2", got)
	}
	if msg := v.wait()(); msg != (sendEnabledMsg{enabled: false}) {
		t.Errorf("first event = %#v", msg)
	}
}
