package format

import (
	"bytes"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// HTMLMarkup renders content as an HTML fragment
type HTMLMarkup struct {
	policy *bluemonday.Policy
}

// NewHTMLMarkup returns the HTML dialect with its allow-list policy
func NewHTMLMarkup() *HTMLMarkup {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[\w+#-]+$`)).OnElements("code")
	return &HTMLMarkup{policy: p}
}

// Text escapes prose and turns newlines into <br>
func (m *HTMLMarkup) Text(prose string) string {
	return strings.ReplaceAll(html.EscapeString(prose), "\n", "<br>")
}

// CodeBlock wraps body in <pre><code>. The language tag is dropped.
func (m *HTMLMarkup) CodeBlock(body, _ string) string {
	return "<pre><code>" + html.EscapeString(body) + "</code></pre>"
}

// JSONBlock wraps indented JSON in <pre><code>
func (m *HTMLMarkup) JSONBlock(indented string) string {
	return "<pre><code>" + html.EscapeString(indented) + "</code></pre>"
}

// Sanitize strips anything outside the allow-list
func (m *HTMLMarkup) Sanitize(rendered string) string {
	return m.policy.Sanitize(rendered)
}

// GoldmarkEngine renders GitHub-flavored markdown to HTML.
// Bare newlines become <br> and fenced code gets a language-<tag> class.
type GoldmarkEngine struct {
	md goldmark.Markdown
}

// NewGoldmarkEngine creates the engine
func NewGoldmarkEngine() *GoldmarkEngine {
	return &GoldmarkEngine{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
		),
	}
}

// Render implements Engine
func (e *GoldmarkEngine) Render(src string) (string, error) {
	var buf bytes.Buffer
	if err := e.md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// NewHTMLFormatter returns a Formatter producing sanitized HTML
func NewHTMLFormatter(policy Policy, log zerolog.Logger) *Formatter {
	return New(policy, NewHTMLMarkup(),
		WithEngine(NewGoldmarkEngine()),
		WithLogger(log),
	)
}
