package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/diogo/chatbot/internal/models"
)

// recordingView logs every call as a short event string
type recordingView struct {
	mu         sync.Mutex
	events     []string
	entries    []Entry
	input      string
	sendOn     bool
	info       *models.SystemInfo
	infoErr    error
	copyLabels map[string]string
}

func newRecordingView() *recordingView {
	return &recordingView{sendOn: true, copyLabels: map[string]string{}}
}

func (v *recordingView) record(format string, args ...any) {
	v.events = append(v.events, fmt.Sprintf(format, args...))
}

func (v *recordingView) AppendEntry(e Entry) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.entries = append(v.entries, e)
	v.record("append:%s", e.Role)
}

func (v *recordingView) ResetTranscript(notice Entry) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.entries = []Entry{notice}
	v.record("reset")
}

func (v *recordingView) ScrollToBottom() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.record("scroll")
}

func (v *recordingView) SetSendEnabled(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sendOn = enabled
	v.record("send:%t", enabled)
}

func (v *recordingView) ClearInput() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.input = ""
	v.record("clear-input")
}

func (v *recordingView) SetInput(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.input = text
	v.record("set-input")
}

func (v *recordingView) ShowSystemInfo(info models.SystemInfo) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.info = &info
	v.record("info")
}

func (v *recordingView) ShowSystemInfoError(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.infoErr = err
	v.record("info-error")
}

func (v *recordingView) SetCopyLabel(id, label string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.copyLabels[id] = label
	v.record("copy-label:%s", label)
}

func (v *recordingView) Events() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.events...)
}

func (v *recordingView) Entries() []Entry {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]Entry(nil), v.entries...)
}

// stubAPI answers through optional funcs and counts chat calls
type stubAPI struct {
	mu         sync.Mutex
	chatCalls  []string
	chatFunc   func(ctx context.Context, endpoint, message string) (*models.ChatResponse, error)
	healthFunc func(ctx context.Context) (string, error)
	infoFunc   func(ctx context.Context) (string, error)
}

func (a *stubAPI) Chat(ctx context.Context, endpoint, message string) (*models.ChatResponse, error) {
	a.mu.Lock()
	a.chatCalls = append(a.chatCalls, endpoint+" "+message)
	a.mu.Unlock()
	if a.chatFunc == nil {
		return &models.ChatResponse{Response: "ok"}, nil
	}
	return a.chatFunc(ctx, endpoint, message)
}

func (a *stubAPI) Health(ctx context.Context) (string, error) {
	if a.healthFunc == nil {
		return `{"status":"healthy"}`, nil
	}
	return a.healthFunc(ctx)
}

func (a *stubAPI) SystemInfo(ctx context.Context) (string, error) {
	if a.infoFunc == nil {
		return `{"model":"qwen3:0.6b"}`, nil
	}
	return a.infoFunc(ctx)
}

func (a *stubAPI) Calls() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.chatCalls...)
}

type memClipboard struct {
	text string
	err  error
}

func (c *memClipboard) WriteAll(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

// manualTimer captures scheduled callbacks so tests fire them explicitly
type manualTimer struct {
	mu      sync.Mutex
	delays  []time.Duration
	pending []func()
}

func (m *manualTimer) After(d time.Duration, f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delays = append(m.delays, d)
	m.pending = append(m.pending, f)
}

func (m *manualTimer) Fire() {
	m.mu.Lock()
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()
	for _, f := range pending {
		f()
	}
}

type upperFormatter struct{}

func (upperFormatter) Format(content string) string { return "<" + content + ">" }

var fixedTime = time.Date(2024, 6, 1, 9, 30, 15, 0, time.UTC)

func fixedClock() time.Time { return fixedTime }
