package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
)

var infoJSONFlag bool

// NewInfoCmd creates the system info command
func NewInfoCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show backend health and system info",
		Long: `Query /health and /system-info and print the status, model, Ollama
connection and OpenAI compatibility reported by the backend.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd.Context(), deps)
		},
	}
	cmd.Flags().BoolVar(&infoJSONFlag, "json", false, "Print the raw responses as JSON")
	return cmd
}

func runInfo(ctx context.Context, deps *Dependencies) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(deps, true)
	if err != nil {
		return err
	}
	defer a.close()

	view := newConsoleView(a.deps.Stdout, a.deps.Stderr, infoJSONFlag, 80)
	if infoJSONFlag {
		view = newConsoleView(io.Discard, a.deps.Stderr, true, 80)
	}
	bot, err := a.newBot(view, nil)
	if err != nil {
		return err
	}

	if err := bot.LoadSystemInfo(ctx); err != nil {
		return fmt.Errorf("system info unavailable: %w", err)
	}

	if infoJSONFlag {
		info := bot.SystemInfo()
		combined := fmt.Sprintf(`{"health":%s,"system_info":%s}`, info.Health, info.Info)
		opts := *pretty.DefaultOptions
		opts.SortKeys = true
		fmt.Fprint(a.deps.Stdout, string(pretty.PrettyOptions([]byte(combined), &opts)))
	}
	return nil
}
