package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/chatbot/internal/chat"
	"github.com/diogo/chatbot/internal/models"
)

// eventBuffer is how many view updates may queue before the controller blocks
const eventBuffer = 64

// View events, delivered to Model.Update
type (
	entryAppendedMsg   struct{ entry chat.Entry }
	transcriptResetMsg struct{ notice chat.Entry }
	scrollMsg          struct{}
	sendEnabledMsg     struct{ enabled bool }
	inputClearedMsg    struct{}
	inputSetMsg        struct{ text string }
	systemInfoMsg      struct{ info models.SystemInfo }
	systemInfoErrMsg   struct{ err error }
	copyLabelMsg       struct{ id, label string }
)

// viewEvent marks messages that came through the EventView channel
type viewEvent interface{ isViewEvent() }

func (entryAppendedMsg) isViewEvent()   {}
func (transcriptResetMsg) isViewEvent() {}
func (scrollMsg) isViewEvent()          {}
func (sendEnabledMsg) isViewEvent()     {}
func (inputClearedMsg) isViewEvent()    {}
func (inputSetMsg) isViewEvent()        {}
func (systemInfoMsg) isViewEvent()      {}
func (systemInfoErrMsg) isViewEvent()   {}
func (copyLabelMsg) isViewEvent()       {}

// EventView implements chat.View by queueing tea messages. The Model drains
// the queue, so controller calls never touch UI state directly.
type EventView struct {
	events chan tea.Msg
}

var _ chat.View = (*EventView)(nil)

// NewEventView creates a view with a buffered event queue
func NewEventView() *EventView {
	return &EventView{events: make(chan tea.Msg, eventBuffer)}
}

func (v *EventView) send(msg tea.Msg) {
	v.events <- msg
}

// AppendEntry implements chat.View
func (v *EventView) AppendEntry(e chat.Entry) { v.send(entryAppendedMsg{entry: e}) }

// ResetTranscript implements chat.View
func (v *EventView) ResetTranscript(notice chat.Entry) { v.send(transcriptResetMsg{notice: notice}) }

// ScrollToBottom implements chat.View
func (v *EventView) ScrollToBottom() { v.send(scrollMsg{}) }

// SetSendEnabled implements chat.View
func (v *EventView) SetSendEnabled(enabled bool) { v.send(sendEnabledMsg{enabled: enabled}) }

// ClearInput implements chat.View
func (v *EventView) ClearInput() { v.send(inputClearedMsg{}) }

// SetInput implements chat.View
func (v *EventView) SetInput(text string) { v.send(inputSetMsg{text: text}) }

// ShowSystemInfo implements chat.View
func (v *EventView) ShowSystemInfo(info models.SystemInfo) { v.send(systemInfoMsg{info: info}) }

// ShowSystemInfoError implements chat.View
func (v *EventView) ShowSystemInfoError(err error) { v.send(systemInfoErrMsg{err: err}) }

// SetCopyLabel implements chat.View
func (v *EventView) SetCopyLabel(id, label string) { v.send(copyLabelMsg{id: id, label: label}) }

// wait returns a command that delivers the next queued view event
func (v *EventView) wait() tea.Cmd {
	return func() tea.Msg {
		return <-v.events
	}
}
