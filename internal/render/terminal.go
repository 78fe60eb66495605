package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/rs/zerolog"

	"github.com/diogo/chatbot/internal/format"
)

// CleanText removes escape sequences and control characters from untrusted
// content. Newlines and tabs are kept.
func CleanText(s string) string {
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}

// TerminalMarkup renders format output as styled terminal text
type TerminalMarkup struct {
	code lipgloss.Style
}

// NewTerminalMarkup returns the terminal dialect styled from theme
func NewTerminalMarkup(theme TUITheme) *TerminalMarkup {
	return &TerminalMarkup{
		code: lipgloss.NewStyle().
			Foreground(theme.Text).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(theme.Border).
			PaddingLeft(1),
	}
}

// Text implements format.Markup
func (m *TerminalMarkup) Text(prose string) string {
	return CleanText(prose)
}

// CodeBlock implements format.Markup. The language tag is dropped.
func (m *TerminalMarkup) CodeBlock(body, _ string) string {
	return m.code.Render(CleanText(body)) + "\n"
}

// JSONBlock implements format.Markup
func (m *TerminalMarkup) JSONBlock(indented string) string {
	return m.code.Render(CleanText(indented))
}

// Sanitize implements format.Markup. Content is cleaned before styling,
// so the styled output is returned as-is.
func (m *TerminalMarkup) Sanitize(rendered string) string {
	return strings.TrimRight(rendered, "\n")
}

// GlamourEngine adapts the pooled glamour renderer to format.Engine
type GlamourEngine struct {
	opts Options
}

// NewGlamourEngine creates an engine for opts
func NewGlamourEngine(opts Options) *GlamourEngine {
	return &GlamourEngine{opts: opts}
}

// Render implements format.Engine
func (e *GlamourEngine) Render(src string) (string, error) {
	return Markdown(CleanText(src), e.opts)
}

// NewTerminalFormatter returns a Formatter for the terminal dialect
func NewTerminalFormatter(policy format.Policy, opts Options, theme TUITheme, log zerolog.Logger) *format.Formatter {
	return format.New(policy, NewTerminalMarkup(theme),
		format.WithEngine(NewGlamourEngine(opts)),
		format.WithLogger(log),
	)
}
