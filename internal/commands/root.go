// Package commands provides CLI commands for chatbot.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/chatbot/internal/config"
)

var (
	// Global flags
	verboseFlag  bool
	endpointFlag string
	baseURLFlag  string
	policyFlag   string

	// One-shot flags
	outputFlag string
	fileFlag   string
	rawFlag    bool

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// NewRootCmd builds the command tree
func NewRootCmd(deps *Dependencies) *cobra.Command {
	deps = deps.withDefaults()

	cmd := &cobra.Command{
		Use:   "chatbot [prompt]",
		Short: "Terminal client for a tool-calling chatbot API",
		Long: `chatbot talks to a chatbot API (such as the Ollama-backed security
training server) from the terminal. It sends messages to a selectable chat
endpoint, renders replies and shows the backend's health.

Examples:
  chatbot chat                          Start interactive chat
  chatbot "What tools can you use?"     Send a single message
  chatbot -f prompt.md                  Read the message from a file
  cat prompt.md | chatbot --raw         Read from stdin, print only the reply
  chatbot -e /chat "Hello"              Use the plain chat endpoint
  chatbot info                          Show backend health and model
  chatbot endpoints                     List the backend's routes
  chatbot download report.txt           Fetch a generated report`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadDotEnv(".env")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(deps.Stdout, "chatbot %s (built %s)\n", Version, BuildTime)
				return nil
			}

			if fileFlag != "" {
				data, err := os.ReadFile(fileFlag)
				if err != nil {
					return fmt.Errorf("failed to read file: %w", err)
				}
				return runQuery(cmd.Context(), deps, string(data))
			}

			if len(args) > 0 {
				return runQuery(cmd.Context(), deps, args[0])
			}

			input, piped, err := readPiped(deps.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			if piped && strings.TrimSpace(input) != "" {
				return runQuery(cmd.Context(), deps, input)
			}

			return cmd.Help()
		},
	}

	cmd.SetOut(deps.Stdout)
	cmd.SetErr(deps.Stderr)

	cmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "Debug logging (mirrored to stderr outside the TUI)")
	cmd.PersistentFlags().StringVarP(&endpointFlag, "endpoint", "e", "", "Chat endpoint to use (e.g. /chat-tools, /chat)")
	cmd.PersistentFlags().StringVar(&baseURLFlag, "base-url", "", "Chatbot API base URL (default from config)")
	cmd.PersistentFlags().StringVar(&policyFlag, "policy", "", "Message formatting policy: plain or markdown")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Save response to file")
	cmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read prompt from file")
	cmd.Flags().BoolVar(&rawFlag, "raw", false, "Print only the response text")
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")

	cmd.AddCommand(NewChatCmd(deps))
	cmd.AddCommand(NewInfoCmd(deps))
	cmd.AddCommand(NewEndpointsCmd(deps))
	cmd.AddCommand(NewDownloadCmd(deps))
	cmd.AddCommand(NewConfigCmd(deps))

	return cmd
}

// rootCmd represents the base command
var rootCmd = NewRootCmd(NewDependencies())

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// readPiped reads r when it is not an interactive terminal
func readPiped(r io.Reader) (string, bool, error) {
	if f, ok := r.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil || stat.Mode()&os.ModeCharDevice != 0 {
			return "", false, nil
		}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}
