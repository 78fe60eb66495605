// Package tui provides the terminal chat interface.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/chatbot/internal/errors"
	"github.com/diogo/chatbot/internal/models"
	"github.com/diogo/chatbot/internal/render"
)

// Color variables (updated from theme)
var (
	colorBorder lipgloss.Color
	colorAccent lipgloss.Color
	colorError  lipgloss.Color

	colorText     lipgloss.Color
	colorTextDim  lipgloss.Color
	colorTextMute lipgloss.Color
)

// Style variables (rebuilt when theme changes)
var (
	headerStyle   lipgloss.Style
	titleStyle    lipgloss.Style
	subtitleStyle lipgloss.Style
	hintStyle     lipgloss.Style

	// Messages area panel
	messagesAreaStyle lipgloss.Style

	timeStyle      lipgloss.Style
	copyLabelStyle lipgloss.Style
	systemStyle    lipgloss.Style

	// Status panel (system info)
	infoPanelStyle lipgloss.Style
	infoLabelStyle lipgloss.Style
	infoValueStyle lipgloss.Style

	inputPanelStyle lipgloss.Style
	inputLabelStyle lipgloss.Style
	loadingStyle    lipgloss.Style

	statusBarStyle  lipgloss.Style
	statusKeyStyle  lipgloss.Style
	statusDescStyle lipgloss.Style

	errorStyle  lipgloss.Style
	noticeStyle lipgloss.Style

	welcomeStyle      lipgloss.Style
	welcomeTitleStyle lipgloss.Style
)

var currentTheme render.TUITheme

func init() {
	UpdateTheme()
}

// UpdateTheme refreshes all styles based on the current TUI theme
func UpdateTheme() {
	theme := render.GetTUITheme()
	currentTheme = theme

	colorBorder = theme.Border
	colorAccent = theme.Assistant
	colorError = theme.Error
	colorText = theme.Text
	colorTextDim = theme.TextDim
	colorTextMute = theme.TextMute

	rebuildStyles()
}

func rebuildStyles() {
	headerStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 2)

	titleStyle = lipgloss.NewStyle().
		Foreground(currentTheme.User).
		Bold(true)

	subtitleStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	hintStyle = lipgloss.NewStyle().
		Foreground(colorTextMute).
		Italic(true)

	messagesAreaStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	timeStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	copyLabelStyle = lipgloss.NewStyle().
		Foreground(currentTheme.Healthy).
		Bold(true)

	systemStyle = lipgloss.NewStyle().
		Foreground(currentTheme.Notice).
		Italic(true)

	infoPanelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	infoLabelStyle = lipgloss.NewStyle().
		Foreground(colorText).
		Bold(true)

	infoValueStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	inputPanelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	inputLabelStyle = lipgloss.NewStyle().
		Foreground(currentTheme.User).
		Bold(true).
		MarginRight(1)

	loadingStyle = lipgloss.NewStyle().
		Foreground(colorAccent).
		Bold(true)

	statusBarStyle = lipgloss.NewStyle().
		Foreground(colorTextMute)

	statusKeyStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Bold(true)

	statusDescStyle = lipgloss.NewStyle().
		Foreground(colorTextMute)

	errorStyle = lipgloss.NewStyle().
		Foreground(colorError).
		Bold(true)

	noticeStyle = lipgloss.NewStyle().
		Foreground(currentTheme.Notice)

	welcomeStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Align(lipgloss.Center)

	welcomeTitleStyle = lipgloss.NewStyle().
		Foreground(currentTheme.User).
		Bold(true).
		Align(lipgloss.Center)
}

// roleLabelStyle is the header style for a transcript role
func roleLabelStyle(role models.Role) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(currentTheme.RoleColor(role)).
		Bold(true)
}

// roleBubbleStyle frames a message body with the role's accent
func roleBubbleStyle(role models.Role) lipgloss.Style {
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(currentTheme.RoleColor(role)).
		Foreground(colorText).
		PaddingLeft(1)
}

// statusDot renders the colored health indicator
func statusDot(status string) string {
	return lipgloss.NewStyle().Foreground(currentTheme.StatusColor(status)).Render("●")
}

// FormatError returns a styled error message with additional context
// taken from the structured error types.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	errStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errStyle.Render(fmt.Sprintf("✗ %v", err)))

	if status := errors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}
	if endpoint := errors.GetEndpoint(err); endpoint != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", endpoint)))
	}

	switch {
	case errors.IsNetworkError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Is the chatbot API running? Check base_url with 'chatbot config show'"))
	case errors.IsTimeoutError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: The model may still be loading. Try again or raise request_timeout_seconds"))
	case errors.IsParseError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: The endpoint did not answer with the expected JSON shape"))
	}

	return sb.String()
}
