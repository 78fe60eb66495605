// Package render renders message content for the terminal: glamour markdown,
// lipgloss code blocks and the TUI color themes.
package render

// Options configures the glamour renderer
type Options struct {
	// Width is the word-wrap column (default 80)
	Width int
	// Style is a glamour style name ("dark", "light", "dracula", ...) or a JSON style path
	Style string

	EnableEmoji      bool
	PreserveNewLines bool
	TableWrap        bool
	InlineTableLinks bool
}

// DefaultOptions returns the default configuration.
// Newlines are preserved so chat replies keep their line breaks.
func DefaultOptions() Options {
	return Options{
		Width:            80,
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
	}
}

// WithWidth returns Options with the specified width.
func (o Options) WithWidth(width int) Options {
	if width > 0 {
		o.Width = width
	}
	return o
}

// WithStyle returns Options with the specified style.
func (o Options) WithStyle(style string) Options {
	o.Style = style
	return o
}
