// Package format turns message content into display markup.
//
// A Formatter applies one Policy over a Markup dialect. JSON content is
// always shown as an indented code block. The plain policy keeps line
// breaks and turns fenced blocks into code blocks. The markdown policy
// delegates to an Engine and falls back to plain output when the engine is
// missing or fails.
package format

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Policy selects the formatting strategy
type Policy string

const (
	Plain    Policy = "plain"
	Markdown Policy = "markdown"
)

// ParsePolicy validates a policy name
func ParsePolicy(name string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(name))); p {
	case Plain, Markdown:
		return p, nil
	case "":
		return Markdown, nil
	default:
		return "", fmt.Errorf("unknown format policy %q (use %q or %q)", name, Plain, Markdown)
	}
}

// Markup produces the output dialect (HTML, terminal, ...)
type Markup interface {
	// Text renders prose, keeping its line breaks
	Text(prose string) string
	// CodeBlock renders a code block; lang may be empty
	CodeBlock(body, lang string) string
	// JSONBlock renders already-indented JSON
	JSONBlock(indented string) string
	// Sanitize is applied to every result before it is returned
	Sanitize(rendered string) string
}

// Engine renders markdown into the Markup's dialect
type Engine interface {
	Render(src string) (string, error)
}

// Formatter formats message content
type Formatter struct {
	policy Policy
	markup Markup
	engine Engine
	log    zerolog.Logger
}

// Option configures a Formatter
type Option func(*Formatter)

// WithEngine sets the markdown engine used by the markdown policy
func WithEngine(engine Engine) Option {
	return func(f *Formatter) {
		f.engine = engine
	}
}

// WithLogger sets where engine failures are reported
func WithLogger(log zerolog.Logger) Option {
	return func(f *Formatter) {
		f.log = log
	}
}

// New creates a Formatter for policy over markup
func New(policy Policy, markup Markup, opts ...Option) *Formatter {
	f := &Formatter{
		policy: policy,
		markup: markup,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Policy returns the active policy
func (f *Formatter) Policy() Policy {
	return f.policy
}

// Format renders content. Non-empty input never yields empty output.
func (f *Formatter) Format(content string) string {
	if content == "" {
		return ""
	}

	if indented, ok := IndentJSON(content); ok {
		return f.markup.Sanitize(f.markup.JSONBlock(indented))
	}

	if f.policy == Markdown && f.engine != nil {
		out, err := f.renderMarkdown(content)
		if err != nil {
			f.log.Warn().Err(err).Msg("markdown rendering failed, falling back to plain text")
		} else if clean := f.markup.Sanitize(out); strings.TrimSpace(clean) != "" {
			return clean
		}
	}

	return f.markup.Sanitize(f.plain(content))
}

func (f *Formatter) renderMarkdown(content string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("markdown engine panic: %v", r)
		}
	}()
	return f.engine.Render(content)
}

func (f *Formatter) plain(content string) string {
	var b strings.Builder
	for _, seg := range SplitFences(content) {
		if seg.Code {
			b.WriteString(f.markup.CodeBlock(seg.Body, seg.Lang))
		} else {
			b.WriteString(f.markup.Text(seg.Body))
		}
	}
	return b.String()
}
