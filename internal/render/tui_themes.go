package render

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/chatbot/internal/models"
)

// TUITheme defines the color scheme for the chat interface
type TUITheme struct {
	Name        string
	Description string

	Surface lipgloss.Color
	Border  lipgloss.Color

	// Role colors
	User      lipgloss.Color
	Assistant lipgloss.Color
	Notice    lipgloss.Color
	Error     lipgloss.Color

	// Health indicator: healthy / degraded
	Healthy  lipgloss.Color
	Degraded lipgloss.Color

	Text     lipgloss.Color
	TextDim  lipgloss.Color
	TextMute lipgloss.Color
}

// RoleColor returns the accent used for a transcript role
func (t TUITheme) RoleColor(role models.Role) lipgloss.Color {
	switch role {
	case models.RoleUser:
		return t.User
	case models.RoleAssistant:
		return t.Assistant
	case models.RoleError:
		return t.Error
	default:
		return t.Notice
	}
}

// StatusColor returns the indicator color for a backend status string
func (t TUITheme) StatusColor(status string) lipgloss.Color {
	switch status {
	case "healthy", "operational":
		return t.Healthy
	case "degraded":
		return t.Degraded
	default:
		return t.Error
	}
}

// Built-in TUI themes
var (
	// TokyoNightTheme is the default
	TokyoNightTheme = TUITheme{
		Name:        "tokyonight",
		Description: "Tokyo Night - Dark theme with blue accents",
		Surface:     lipgloss.Color("#24283b"),
		Border:      lipgloss.Color("#414868"),
		User:        lipgloss.Color("#7aa2f7"),
		Assistant:   lipgloss.Color("#9ece6a"),
		Notice:      lipgloss.Color("#bb9af7"),
		Error:       lipgloss.Color("#f7768e"),
		Healthy:     lipgloss.Color("#9ece6a"),
		Degraded:    lipgloss.Color("#e0af68"),
		Text:        lipgloss.Color("#c0caf5"),
		TextDim:     lipgloss.Color("#565f89"),
		TextMute:    lipgloss.Color("#3b4261"),
	}

	CatppuccinMochaTheme = TUITheme{
		Name:        "catppuccin",
		Description: "Catppuccin Mocha - Warm dark theme with pastel colors",
		Surface:     lipgloss.Color("#313244"),
		Border:      lipgloss.Color("#45475a"),
		User:        lipgloss.Color("#89b4fa"), // Blue
		Assistant:   lipgloss.Color("#a6e3a1"), // Green
		Notice:      lipgloss.Color("#cba6f7"), // Mauve
		Error:       lipgloss.Color("#f38ba8"), // Red
		Healthy:     lipgloss.Color("#a6e3a1"),
		Degraded:    lipgloss.Color("#f9e2af"), // Yellow
		Text:        lipgloss.Color("#cdd6f4"),
		TextDim:     lipgloss.Color("#6c7086"),
		TextMute:    lipgloss.Color("#45475a"),
	}

	NordTheme = TUITheme{
		Name:        "nord",
		Description: "Nord - Arctic-inspired theme with cool tones",
		Surface:     lipgloss.Color("#3b4252"),
		Border:      lipgloss.Color("#4c566a"),
		User:        lipgloss.Color("#88c0d0"), // Frost
		Assistant:   lipgloss.Color("#a3be8c"), // Aurora green
		Notice:      lipgloss.Color("#b48ead"), // Aurora purple
		Error:       lipgloss.Color("#bf616a"), // Aurora red
		Healthy:     lipgloss.Color("#a3be8c"),
		Degraded:    lipgloss.Color("#ebcb8b"),
		Text:        lipgloss.Color("#eceff4"),
		TextDim:     lipgloss.Color("#7b88a1"),
		TextMute:    lipgloss.Color("#4c566a"),
	}

	DraculaTheme = TUITheme{
		Name:        "dracula",
		Description: "Dracula - Dark theme with vibrant colors",
		Surface:     lipgloss.Color("#44475a"),
		Border:      lipgloss.Color("#6272a4"),
		User:        lipgloss.Color("#8be9fd"), // Cyan
		Assistant:   lipgloss.Color("#50fa7b"), // Green
		Notice:      lipgloss.Color("#ff79c6"), // Pink
		Error:       lipgloss.Color("#ff5555"), // Red
		Healthy:     lipgloss.Color("#50fa7b"),
		Degraded:    lipgloss.Color("#f1fa8c"),
		Text:        lipgloss.Color("#f8f8f2"),
		TextDim:     lipgloss.Color("#6272a4"),
		TextMute:    lipgloss.Color("#44475a"),
	}
)

var builtinTUIThemes = []TUITheme{
	TokyoNightTheme,
	CatppuccinMochaTheme,
	NordTheme,
	DraculaTheme,
}

// currentTUITheme holds the currently active TUI theme
var currentTUITheme = TokyoNightTheme

// GetTUITheme returns the currently active TUI theme
func GetTUITheme() TUITheme {
	return currentTUITheme
}

// SetTUITheme sets the active TUI theme by name
func SetTUITheme(name string) bool {
	theme, ok := GetTUIThemeByName(name)
	if ok {
		currentTUITheme = theme
	}
	return ok
}

// GetTUIThemeByName returns a TUI theme by its name
func GetTUIThemeByName(name string) (TUITheme, bool) {
	for _, t := range builtinTUIThemes {
		if t.Name == name {
			return t, true
		}
	}
	return TUITheme{}, false
}

// TUIThemeNames returns the theme names in display order
func TUIThemeNames() []string {
	names := make([]string, len(builtinTUIThemes))
	for i, t := range builtinTUIThemes {
		names[i] = t.Name
	}
	return names
}
