package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/diogo/chatbot/internal/chat"
	apierrors "github.com/diogo/chatbot/internal/errors"
	"github.com/diogo/chatbot/internal/export"
	"github.com/diogo/chatbot/internal/format"
	"github.com/diogo/chatbot/internal/models"
)

// Controller is the chat controller surface the TUI drives. *chat.Bot implements it.
type Controller interface {
	SendMessage(ctx context.Context, input string) error
	LoadSystemInfo(ctx context.Context) error
	SetExample(category string) (string, error)
	ExampleCategories() []string
	ClearChat()
	CopyMessage(id string) error
	LastReplyID() (string, bool)
	SelectEndpoint(endpoint string) error
	NextEndpoint() string
	Endpoint() string
	Endpoints() []string
	Transcript() []models.Message
}

var _ Controller = (*chat.Bot)(nil)

// Results of commands run off the update loop
type (
	sendDoneMsg struct {
		seq int
		err error
	}
	noticeMsg struct {
		text string
		err  error
	}
)

// Options configures the chat model
type Options struct {
	// BaseURL is recorded in exported transcripts
	BaseURL string
	// ExportFormatter renders bodies for HTML exports
	ExportFormatter *format.Formatter
	Logger          zerolog.Logger
}

// Model represents the TUI state
type Model struct {
	bot  Controller
	view *EventView
	opts Options

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State mirrored from view events
	entries     []chat.Entry
	copyLabels  map[string]string
	sending     bool
	info        *models.SystemInfo
	infoErr     error
	infoLoading bool

	ready  bool
	notice string
	err    error
	cancel context.CancelFunc
	// sendSeq numbers submitted sends; cancel belongs to the latest one
	sendSeq int

	// Dimensions
	width  int
	height int
}

// NewChatModel creates a chat model. view must be the View the controller was built with.
func NewChatModel(bot Controller, view *EventView, opts Options) Model {
	ta := textarea.New()
	ta.Placeholder = "Type your message here... (/help for commands)"
	ta.CharLimit = 8000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"))
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	return Model{
		bot:         bot,
		view:        view,
		opts:        opts,
		textarea:    ta,
		spinner:     s,
		copyLabels:  map[string]string{},
		infoLoading: true,
	}
}

// Init starts draining view events and loads the system info
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.view.wait(),
		m.loadInfo(),
	)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	if ev, ok := msg.(viewEvent); ok {
		cmds = append(cmds, m.applyViewEvent(ev), m.view.wait())
		return m, tea.Batch(cmds...)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit

		case "esc":
			if m.sending && m.cancel != nil {
				m.cancel()
				m.notice = "Canceling request..."
				return m, nil
			}
			return m, tea.Quit

		case "enter":
			cmd = m.submit()
			return m, cmd

		case "tab":
			m.notice = "Endpoint: " + m.bot.NextEndpoint()
			m.err = nil
			return m, nil

		case "ctrl+l":
			cmd = m.clearChat()
			return m, cmd

		case "ctrl+y":
			cmd = m.copyEntry("")
			return m, cmd

		case "ctrl+r":
			m.infoLoading = true
			cmd = m.loadInfo()
			return m, cmd
		}

		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)

	case sendDoneMsg:
		switch {
		case errors.Is(msg.err, apierrors.ErrBusy):
			m.notice = "A message is already being sent"
		case msg.seq != m.sendSeq:
			// a newer send owns cancel
		default:
			m.cancel = nil
			if msg.err != nil {
				m.opts.Logger.Debug().Err(msg.err).Msg("send finished with error")
			}
		}

	case noticeMsg:
		m.notice = msg.text
		m.err = msg.err

	case spinner.TickMsg:
		if m.sending {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// applyViewEvent mirrors one controller view call into the model
func (m *Model) applyViewEvent(ev viewEvent) tea.Cmd {
	switch ev := ev.(type) {
	case entryAppendedMsg:
		m.entries = append(m.entries, ev.entry)
		m.updateViewport()
	case transcriptResetMsg:
		m.entries = []chat.Entry{ev.notice}
		m.copyLabels = map[string]string{}
		m.updateViewport()
		m.viewport.GotoTop()
	case scrollMsg:
		m.viewport.GotoBottom()
	case sendEnabledMsg:
		m.sending = !ev.enabled
		if m.sending {
			m.notice = ""
			m.err = nil
			return m.spinner.Tick
		}
	case inputClearedMsg:
		m.textarea.Reset()
	case inputSetMsg:
		m.textarea.SetValue(ev.text)
		m.textarea.Focus()
	case systemInfoMsg:
		info := ev.info
		m.info = &info
		m.infoErr = nil
		m.infoLoading = false
	case systemInfoErrMsg:
		m.infoErr = ev.err
		m.infoLoading = false
	case copyLabelMsg:
		if ev.label == "" {
			delete(m.copyLabels, ev.id)
		} else {
			m.copyLabels[ev.id] = ev.label
		}
		m.updateViewport()
	}
	return nil
}

// submit sends the input box or runs a slash command
func (m *Model) submit() tea.Cmd {
	input := m.textarea.Value()
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil
	}
	if strings.HasPrefix(trimmed, "/") {
		m.textarea.Reset()
		return m.runCommand(trimmed)
	}
	if m.sending {
		m.notice = "A message is already being sent"
		return nil
	}

	// Pending from dispatch on, before the controller's view events arrive
	m.sending = true
	m.sendSeq++
	seq := m.sendSeq
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	bot := m.bot
	return func() tea.Msg {
		defer cancel()
		return sendDoneMsg{seq: seq, err: bot.SendMessage(ctx, input)}
	}
}

const helpText = "/clear · /copy [n] · /example injection|tools|secrets · /endpoint [path] · /info · /export <file.md|.json|.html> · /quit"

// runCommand handles a slash command typed into the input box
func (m *Model) runCommand(line string) tea.Cmd {
	fields := strings.Fields(line)
	name, args := fields[0], fields[1:]
	m.notice = ""
	m.err = nil

	switch name {
	case "/quit", "/exit":
		return tea.Quit

	case "/help":
		m.notice = helpText
		return nil

	case "/clear":
		return m.clearChat()

	case "/copy":
		if len(args) == 0 {
			return m.copyEntry("")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 || n > len(m.entries) {
			m.err = fmt.Errorf("no message #%s (have %d)", args[0], len(m.entries))
			return nil
		}
		return m.copyEntry(m.entries[n-1].ID)

	case "/example":
		if len(args) != 1 {
			m.notice = "Categories: " + strings.Join(m.bot.ExampleCategories(), ", ")
			return nil
		}
		bot := m.bot
		category := args[0]
		return func() tea.Msg {
			if _, err := bot.SetExample(category); err != nil {
				return noticeMsg{err: err}
			}
			return nil
		}

	case "/endpoint":
		if len(args) == 0 {
			m.notice = fmt.Sprintf("Endpoint: %s (available: %s)", m.bot.Endpoint(), strings.Join(m.bot.Endpoints(), ", "))
			return nil
		}
		if err := m.bot.SelectEndpoint(args[0]); err != nil {
			m.err = err
			return nil
		}
		m.notice = "Endpoint: " + args[0]
		return nil

	case "/info":
		m.infoLoading = true
		return m.loadInfo()

	case "/export":
		if len(args) != 1 {
			m.err = fmt.Errorf("usage: /export <file.md|.json|.html>")
			return nil
		}
		return m.exportTo(args[0])

	default:
		m.err = fmt.Errorf("unknown command %s (try /help)", name)
		return nil
	}
}

func (m Model) loadInfo() tea.Cmd {
	bot := m.bot
	log := m.opts.Logger
	return func() tea.Msg {
		if err := bot.LoadSystemInfo(context.Background()); err != nil {
			log.Debug().Err(err).Msg("system info unavailable")
		}
		return nil
	}
}

func (m Model) clearChat() tea.Cmd {
	bot := m.bot
	return func() tea.Msg {
		bot.ClearChat()
		return nil
	}
}

// copyEntry copies the message with id, or the latest reply when id is empty
func (m Model) copyEntry(id string) tea.Cmd {
	bot := m.bot
	return func() tea.Msg {
		if id == "" {
			last, ok := bot.LastReplyID()
			if !ok {
				return noticeMsg{err: fmt.Errorf("no assistant reply to copy yet")}
			}
			id = last
		}
		if err := bot.CopyMessage(id); err != nil {
			return noticeMsg{err: err}
		}
		return nil
	}
}

func (m Model) exportTo(path string) tea.Cmd {
	t := export.Transcript{
		BaseURL:    m.opts.BaseURL,
		Endpoint:   m.bot.Endpoint(),
		ExportedAt: time.Now(),
		Messages:   m.bot.Transcript(),
	}
	if m.info != nil && m.info.Model != models.UnknownValue {
		t.Model = m.info.Model
	}
	f := m.opts.ExportFormatter
	if f == nil {
		f = format.NewHTMLFormatter(format.Markdown, m.opts.Logger)
	}
	return func() tea.Msg {
		if err := export.WriteFile(path, t, f); err != nil {
			return noticeMsg{err: err}
		}
		return noticeMsg{text: fmt.Sprintf("Exported %d messages to %s", len(t.Messages), path)}
	}
}

// Fixed heights of the panels around the viewport
const (
	headerHeight = 3
	infoHeight   = 3
	inputHeight  = 5
	statusHeight = 2
)

func (m *Model) resize() {
	vpHeight := m.height - headerHeight - infoHeight - inputHeight - statusHeight - 2
	if vpHeight < 5 {
		vpHeight = 5
	}
	contentWidth := m.width - 4

	if !m.ready {
		m.viewport = viewport.New(contentWidth, vpHeight)
		// Letters belong to the input box; only paging keys scroll.
		m.viewport.KeyMap = viewport.KeyMap{
			PageDown: key.NewBinding(key.WithKeys("pgdown")),
			PageUp:   key.NewBinding(key.WithKeys("pgup")),
		}
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(contentWidth - 4)
	m.updateViewport()
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	contentWidth := m.width - 4
	var sections []string

	headerContent := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("🤖 Chatbot"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(m.bot.Endpoint()),
	)
	sections = append(sections, headerStyle.Width(contentWidth).Render(headerContent))
	sections = append(sections, infoPanelStyle.Width(contentWidth).Render(m.renderSystemInfo()))

	var messagesContent string
	if len(m.entries) == 0 {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.viewport.View()
	}
	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent))

	var inputContent string
	if m.sending {
		inputContent = m.renderLoading()
	} else {
		inputContent = lipgloss.JoinVertical(lipgloss.Left,
			inputLabelStyle.Render("You"),
			m.textarea.View(),
		)
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	switch {
	case m.err != nil:
		sections = append(sections, FormatError(m.err))
	case m.notice != "":
		sections = append(sections, noticeStyle.Render(m.notice))
	}
	sections = append(sections, m.renderStatusBar(contentWidth))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		welcomeTitleStyle.Width(width).Render("Welcome to the chatbot"),
		"",
		welcomeStyle.Width(width).Render("Type a message below, or try /example injection"),
	)

	topPadding := (m.viewport.Height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}
	return strings.Repeat("\n", topPadding) + content
}

// renderSystemInfo renders the status panel
func (m Model) renderSystemInfo() string {
	switch {
	case m.infoErr != nil:
		return errorStyle.Render(chat.SystemInfoErrorText(m.infoErr))
	case m.info == nil:
		if m.infoLoading {
			return hintStyle.Render("Loading system info...")
		}
		return hintStyle.Render("System info not loaded")
	}

	items := m.info.Items()
	parts := make([]string, 0, len(items)+1)
	parts = append(parts, statusDot(m.info.Status))
	for _, item := range items {
		parts = append(parts, infoLabelStyle.Render(item.Label+":")+" "+infoValueStyle.Render(item.Value))
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderLoading() string {
	return fmt.Sprintf("%s %s", m.spinner.View(),
		loadingStyle.Render("Waiting for "+m.bot.Endpoint()+"... (Esc to cancel)"))
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Alt+Enter", "Newline"},
		{"Tab", "Endpoint"},
		{"^L", "Clear"},
		{"^Y", "Copy"},
		{"^R", "Info"},
		{"PgUp/PgDn", "Scroll"},
		{"Esc", "Quit"},
	}

	items := make([]string, 0, len(shortcuts))
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// updateViewport refreshes the viewport content with styled entries
func (m *Model) updateViewport() {
	var content strings.Builder
	for i, e := range m.entries {
		if i > 0 {
			content.WriteString("\n")
		}
		content.WriteString(m.renderEntry(i, e))
		content.WriteString("\n")
	}
	m.viewport.SetContent(content.String())
}

// renderEntry renders one transcript row; n is its zero-based position
func (m Model) renderEntry(n int, e chat.Entry) string {
	header := e.Header()
	if header == "" {
		return systemStyle.Render("System: ") + e.Body
	}

	line := roleLabelStyle(e.Role).Render(header) + "  " + timeStyle.Render(e.Time) +
		"  " + hintStyle.Render(fmt.Sprintf("#%d", n+1))
	if label := m.copyLabels[e.ID]; label != "" {
		line += "  " + copyLabelStyle.Render(label)
	}

	width := m.viewport.Width - 2
	if width < 10 {
		width = 10
	}
	return line + "\n" + roleBubbleStyle(e.Role).Width(width).Render(e.Body)
}

// RunChat starts the chat TUI
func RunChat(bot Controller, view *EventView, opts Options) error {
	p := tea.NewProgram(
		NewChatModel(bot, view, opts),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
