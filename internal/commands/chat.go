package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/chatbot/internal/format"
	"github.com/diogo/chatbot/internal/tui"
)

// NewChatCmd creates the interactive chat command
func NewChatCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session with the chatbot API.

Enter sends, Alt+Enter inserts a newline, Tab cycles the endpoint.
Type /help for the slash commands, or press Esc or Ctrl+C to quit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(deps)
		},
	}
}

func runChat(deps *Dependencies) error {
	a, err := newApp(deps, false)
	if err != nil {
		return err
	}
	defer a.close()

	// Bubble border, padding and the panel frame take 8 columns
	width := getTerminalWidth(a.deps.Stdout) - 8
	view := tui.NewEventView()
	bot, err := a.newBot(view, a.terminalFormatter(width))
	if err != nil {
		return fmt.Errorf("failed to start chat: %w", err)
	}

	a.log.Info().Str("endpoint", bot.Endpoint()).Msg("starting chat session")
	return a.deps.TUI.RunChat(bot, view, tui.Options{
		BaseURL:         a.client.BaseURL(),
		ExportFormatter: format.NewHTMLFormatter(a.policy(), a.log),
		Logger:          a.log,
	})
}
