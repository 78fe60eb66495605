package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"golang.org/x/term"

	"github.com/diogo/chatbot/internal/api"
	"github.com/diogo/chatbot/internal/chat"
	apierrors "github.com/diogo/chatbot/internal/errors"
	"github.com/diogo/chatbot/internal/models"
	"github.com/diogo/chatbot/internal/render"
)

var (
	colorTextDim = lipgloss.Color("#565f89")
	colorSuccess = lipgloss.Color("#9ece6a")
	colorFailure = lipgloss.Color("#f7768e")
)

// waitIndicator animates on stderr while a one-shot request is pending.
// It shows the endpoint and the elapsed seconds next to a spinner frame.
type waitIndicator struct {
	out      io.Writer
	endpoint string
	frames   spinner.Spinner
	now      func() time.Time

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func newWaitIndicator(out io.Writer, endpoint string) *waitIndicator {
	return &waitIndicator{
		out:      out,
		endpoint: endpoint,
		frames:   spinner.MiniDot,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (w *waitIndicator) start() {
	started := w.now()
	go func() {
		defer close(w.done)
		ticker := time.NewTicker(w.frames.FPS)
		defer ticker.Stop()

		fmt.Fprint(w.out, ansi.HideCursor)
		for frame := 0; ; frame++ {
			w.draw(frame, w.now().Sub(started))
			select {
			case <-w.stop:
				fmt.Fprint(w.out, "\r"+ansi.EraseEntireLine+ansi.ShowCursor)
				return
			case <-ticker.C:
			}
		}
	}()
}

func (w *waitIndicator) draw(frame int, elapsed time.Duration) {
	theme := render.GetTUITheme()
	glyph := lipgloss.NewStyle().Foreground(theme.RoleColor(models.RoleAssistant)).
		Render(w.frames.Frames[frame%len(w.frames.Frames)])
	label := lipgloss.NewStyle().Foreground(colorTextDim).
		Render(fmt.Sprintf("Waiting for %s (%ds)", w.endpoint, int(elapsed.Seconds())))
	fmt.Fprint(w.out, "\r"+ansi.EraseEntireLine+glyph+" "+label)
}

// finish stops the animation and waits for the line to be cleared.
// A non-empty note is printed in its place.
func (w *waitIndicator) finish(note string) {
	w.stopOnce.Do(func() { close(w.stop) })
	<-w.done
	if note != "" {
		fmt.Fprintln(w.out, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ "+note))
	}
}

// consoleView renders the controller's output on plain streams.
// Replies go to out; progress and notices go to errOut.
type consoleView struct {
	out    io.Writer
	errOut io.Writer
	raw    bool
	width  int
	// endpoint is named by the wait indicator
	endpoint string
	// animate enables the wait indicator (errOut is a terminal)
	animate bool

	mu   sync.Mutex
	wait *waitIndicator
}

var _ chat.View = (*consoleView)(nil)

func newConsoleView(out, errOut io.Writer, raw bool, width int) *consoleView {
	return &consoleView{
		out:     out,
		errOut:  errOut,
		raw:     raw,
		width:   width,
		animate: !raw && isTerminal(errOut),
	}
}

var (
	consoleLabelStyle  = lipgloss.NewStyle().Bold(true)
	consoleBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				Padding(0, 1).
				MarginBottom(1)
)

func (v *consoleView) stopWaiting(note string) {
	v.mu.Lock()
	w := v.wait
	v.wait = nil
	v.mu.Unlock()
	if w != nil {
		w.finish(note)
	}
}

func (v *consoleView) AppendEntry(e chat.Entry) {
	switch e.Role {
	case models.RoleAssistant:
		v.stopWaiting("Done")
		if v.raw {
			fmt.Fprintln(v.out, e.Text)
			return
		}
		theme := render.GetTUITheme()
		label := consoleLabelStyle.Foreground(theme.RoleColor(e.Role)).Render(e.Header())
		bubble := consoleBubbleStyle.
			BorderForeground(theme.RoleColor(e.Role)).
			Width(v.width).
			Render(e.Body)
		fmt.Fprintln(v.out, label+"  "+lipgloss.NewStyle().Foreground(colorTextDim).Render(e.Time))
		fmt.Fprintln(v.out, bubble)
	case models.RoleError:
		// The command prints the structured error itself
		v.stopWaiting("")
	case models.RoleSystem:
		if !v.raw {
			fmt.Fprintln(v.errOut, e.Body)
		}
	}
}

func (v *consoleView) ResetTranscript(notice chat.Entry) { v.AppendEntry(notice) }

func (v *consoleView) ScrollToBottom() {}

func (v *consoleView) SetSendEnabled(enabled bool) {
	if enabled {
		v.stopWaiting("")
		return
	}
	if !v.animate {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.wait = newWaitIndicator(v.errOut, v.endpoint)
	v.wait.start()
}

func (v *consoleView) ClearInput() {}

func (v *consoleView) SetInput(text string) {
	fmt.Fprintln(v.out, text)
}

func (v *consoleView) ShowSystemInfo(info models.SystemInfo) {
	theme := render.GetTUITheme()
	dot := lipgloss.NewStyle().Foreground(theme.StatusColor(info.Status)).Render("●")
	for i, item := range info.Items() {
		line := consoleLabelStyle.Render(item.Label+":") + " " + item.Value
		if i == 0 {
			line += " " + dot
		}
		fmt.Fprintln(v.out, line)
	}
}

func (v *consoleView) ShowSystemInfoError(err error) {
	fmt.Fprintln(v.errOut, lipgloss.NewStyle().Foreground(colorFailure).Render(chat.SystemInfoErrorText(err)))
}

func (v *consoleView) SetCopyLabel(id, label string) {
	if label == "" || v.raw {
		return
	}
	fmt.Fprintln(v.errOut, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard"))
}

// runQuery sends a single message and prints the reply
func runQuery(ctx context.Context, deps *Dependencies, prompt string) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return fmt.Errorf("prompt cannot be empty")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(deps, true)
	if err != nil {
		return err
	}
	defer a.close()

	width := bubbleWidth(getTerminalWidth(a.deps.Stdout))
	var formatter chat.Formatter
	if !rawFlag {
		formatter = a.terminalFormatter(width - 4)
	}
	view := newConsoleView(a.deps.Stdout, a.deps.Stderr, rawFlag, width)

	bot, err := a.newBot(view, formatter)
	if err != nil {
		return err
	}
	view.endpoint = bot.Endpoint()
	a.log.Debug().Str("endpoint", bot.Endpoint()).Int("prompt_len", len(prompt)).Msg("sending one-shot message")

	startTime := time.Now()
	if err := bot.SendMessage(ctx, prompt); err != nil {
		if !rawFlag {
			fmt.Fprintln(a.deps.Stderr, formatErrorMessage(err, "Request failed"))
		}
		return fmt.Errorf("request failed: %w", err)
	}
	if a.cfg.Verbose && !rawFlag {
		fmt.Fprintf(a.deps.Stderr, "[verbose] %s answered in %s\n", bot.Endpoint(), time.Since(startTime).Round(time.Millisecond))
	}

	id, _ := bot.LastReplyID()
	reply := replyText(bot.Transcript(), id)

	if outputFlag != "" {
		if err := os.WriteFile(outputFlag, []byte(reply), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if !rawFlag {
			fmt.Fprintln(a.deps.Stderr, lipgloss.NewStyle().Foreground(colorSuccess).Render(
				fmt.Sprintf("✓ Response saved to %s", outputFlag)))
		}
	}

	if a.cfg.CopyToClipboard {
		if err := bot.CopyMessage(id); err != nil && !rawFlag {
			fmt.Fprintln(a.deps.Stderr, lipgloss.NewStyle().Foreground(colorFailure).Render(
				fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err)))
		}
	}

	if !rawFlag {
		for _, name := range api.FindReportLinks(reply) {
			fmt.Fprintf(a.deps.Stderr, "Report available: chatbot download %s\n", name)
		}
	}

	return nil
}

func replyText(msgs []models.Message, id string) string {
	for _, m := range msgs {
		if m.ID == id {
			return m.Text
		}
	}
	return ""
}

// bubbleWidth clamps the reply bubble to a readable width
func bubbleWidth(termWidth int) int {
	w := termWidth - 4
	if w < 40 {
		w = 40
	}
	if w > 120 {
		w = 120
	}
	return w
}

// getTerminalWidth returns the terminal width of w or a default value
func getTerminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 80
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return 80 // default width
	}
	return width
}

// isTerminal reports whether w is connected to a terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// formatErrorMessage formats an error with additional context from structured errors
func formatErrorMessage(err error, action string) string {
	if err == nil {
		return ""
	}

	errorStyle := lipgloss.NewStyle().Foreground(colorFailure)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", action, err)))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	if endpoint := apierrors.GetEndpoint(err); endpoint != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", endpoint)))
	}

	switch {
	case apierrors.IsNetworkError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Is the chatbot API running? Check base_url with 'chatbot config show'"))
	case apierrors.IsTimeoutError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Request timed out. The model may still be loading; raise request_timeout_seconds"))
	case apierrors.IsParseError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: The endpoint did not return the expected JSON. Check --endpoint"))
	case apierrors.GetHTTPStatus(err) == 404:
		sb.WriteString(dimStyle.Render("\n  Hint: Unknown route. Run 'chatbot endpoints' to list the backend's routes"))
	}

	return sb.String()
}
