// Package export writes a chat transcript to Markdown, JSON or HTML.
package export

import (
	"encoding/json"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/diogo/chatbot/internal/format"
	"github.com/diogo/chatbot/internal/models"
)

// Format represents the format for exporting a transcript
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
)

// FormatFromPath picks the export format from a file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return FormatMarkdown, nil
	case ".json":
		return FormatJSON, nil
	case ".html", ".htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unsupported export extension %q (use .md, .json or .html)", filepath.Ext(path))
	}
}

// Transcript is the exported conversation
type Transcript struct {
	BaseURL    string
	Endpoint   string
	Model      string
	ExportedAt time.Time
	Messages   []models.Message
}

func roleHeading(role models.Role) string {
	if label := role.Label(); label != "" {
		return label
	}
	return "System"
}

// ToMarkdown exports the transcript to Markdown. Message text is written verbatim.
func ToMarkdown(t Transcript) string {
	var sb strings.Builder

	sb.WriteString("# Chat transcript\n\n")
	fmt.Fprintf(&sb, "**Backend:** %s%s\n", t.BaseURL, t.Endpoint)
	if t.Model != "" {
		fmt.Fprintf(&sb, "**Model:** %s\n", t.Model)
	}
	fmt.Fprintf(&sb, "**Exported:** %s\n", t.ExportedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "**Messages:** %d\n\n---\n\n", len(t.Messages))

	for i, msg := range t.Messages {
		sb.WriteString("## ")
		if icon := msg.Role.Icon(); icon != "" {
			sb.WriteString(icon + " ")
		}
		sb.WriteString(roleHeading(msg.Role))
		if ts := msg.FormattedTime(); ts != "" {
			sb.WriteString(" (" + ts + ")")
		}
		sb.WriteString("\n\n")
		sb.WriteString(msg.Text)
		sb.WriteString("\n")

		if i < len(t.Messages)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String()
}

type jsonMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type jsonTranscript struct {
	BaseURL    string        `json:"base_url"`
	Endpoint   string        `json:"endpoint"`
	Model      string        `json:"model,omitempty"`
	ExportedAt time.Time     `json:"exported_at"`
	Messages   []jsonMessage `json:"messages"`
}

// ToJSON exports the transcript to indented JSON
func ToJSON(t Transcript) ([]byte, error) {
	out := jsonTranscript{
		BaseURL:    t.BaseURL,
		Endpoint:   t.Endpoint,
		Model:      t.Model,
		ExportedAt: t.ExportedAt,
		Messages:   make([]jsonMessage, len(t.Messages)),
	}
	for i, msg := range t.Messages {
		out.Messages[i] = jsonMessage{
			ID:        msg.ID,
			Role:      string(msg.Role),
			Text:      msg.Text,
			Timestamp: msg.Timestamp,
		}
	}
	return json.MarshalIndent(out, "", "  ")
}

const htmlHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Chat transcript</title>
<style>
body { font-family: sans-serif; max-width: 50rem; margin: 2rem auto; }
.message { border-left: 3px solid #ccc; padding: 0.25rem 1rem; margin: 1rem 0; }
.user-message { border-color: #7aa2f7; }
.assistant-message { border-color: #9ece6a; }
.error-message { border-color: #f7768e; }
.message-time { color: #888; font-size: 0.8rem; margin-left: 0.5rem; }
pre { background: #f4f4f4; padding: 0.5rem; overflow-x: auto; }
</style>
</head>
<body>
`

// ToHTML exports the transcript as a standalone page. Bodies go through f,
// which must produce sanitized HTML.
func ToHTML(t Transcript, f *format.Formatter) string {
	var sb strings.Builder

	sb.WriteString(htmlHead)
	fmt.Fprintf(&sb, "<h1>Chat transcript</h1>\n<p>%s · %s</p>\n",
		html.EscapeString(t.BaseURL+t.Endpoint),
		html.EscapeString(t.ExportedAt.Format("2006-01-02 15:04:05")))

	for _, msg := range t.Messages {
		fmt.Fprintf(&sb, "<div class=\"message %s-message\">\n", html.EscapeString(string(msg.Role)))
		sb.WriteString("<div class=\"message-header\"><strong>")
		if icon := msg.Role.Icon(); icon != "" {
			sb.WriteString(icon + " ")
		}
		sb.WriteString(html.EscapeString(roleHeading(msg.Role)))
		sb.WriteString("</strong>")
		fmt.Fprintf(&sb, "<span class=\"message-time\">%s</span></div>\n", html.EscapeString(msg.FormattedTime()))
		fmt.Fprintf(&sb, "<div class=\"message-text\">%s</div>\n</div>\n", f.Format(msg.Text))
	}

	sb.WriteString("</body>\n</html>\n")
	return sb.String()
}

// WriteFile exports t to path, choosing the format from its extension
func WriteFile(path string, t Transcript, f *format.Formatter) error {
	exportFormat, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	var data []byte
	switch exportFormat {
	case FormatMarkdown:
		data = []byte(ToMarkdown(t))
	case FormatJSON:
		data, err = ToJSON(t)
		if err != nil {
			return fmt.Errorf("failed to marshal transcript: %w", err)
		}
	case FormatHTML:
		data = []byte(ToHTML(t, f))
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}
