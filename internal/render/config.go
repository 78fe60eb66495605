package render

import (
	"os"

	"github.com/diogo/chatbot/internal/config"
)

// OptionsFromConfig builds render options from the user's markdown settings.
// GLAMOUR_STYLE takes precedence over the configured style.
func OptionsFromConfig(md config.MarkdownConfig) Options {
	opts := DefaultOptions()

	if md.Style != "" {
		opts.Style = md.Style
	}
	opts.EnableEmoji = md.EnableEmoji
	opts.PreserveNewLines = md.PreserveNewLines
	opts.TableWrap = md.TableWrap
	opts.InlineTableLinks = md.InlineTableLinks

	if style := os.Getenv("GLAMOUR_STYLE"); style != "" {
		opts.Style = style
	}

	return opts
}
