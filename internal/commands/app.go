package commands

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/diogo/chatbot/internal/api"
	"github.com/diogo/chatbot/internal/chat"
	"github.com/diogo/chatbot/internal/config"
	"github.com/diogo/chatbot/internal/format"
	"github.com/diogo/chatbot/internal/logging"
	"github.com/diogo/chatbot/internal/render"
)

// app bundles what every backend-facing command needs
type app struct {
	deps     *Dependencies
	cfg      config.Config
	log      zerolog.Logger
	closeLog func() error
	client   *api.Client
}

// newApp loads the configuration, applies the global flags and builds the
// logger and API client. console mirrors verbose logs to stderr; the TUI
// passes false so the screen is never written to.
func newApp(deps *Dependencies, console bool) (*app, error) {
	deps = deps.withDefaults()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logOpts := logging.Options{
		File:    cfg.LogFile,
		Level:   cfg.LogLevel,
		Verbose: cfg.Verbose,
	}
	if console && cfg.Verbose {
		logOpts.Console = deps.Stderr
	}
	log, closeLog, err := logging.New(logOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	if cfg.TUITheme != "" && !render.SetTUITheme(cfg.TUITheme) {
		log.Warn().Str("theme", cfg.TUITheme).Msg("unknown tui_theme, using default")
	}

	clientOpts := []api.ClientOption{
		api.WithTimeout(cfg.RequestTimeout()),
		api.WithLogger(log),
	}
	if deps.HTTP != nil {
		clientOpts = append(clientOpts, api.WithHTTPClient(deps.HTTP))
	}
	client, err := api.NewClient(cfg.BaseURL, clientOpts...)
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	log.Debug().
		Str("base_url", client.BaseURL()).
		Str("endpoint", cfg.DefaultEndpoint).
		Str("format_policy", cfg.FormatPolicy).
		Msg("configuration loaded")

	return &app{
		deps:     deps,
		cfg:      cfg,
		log:      log,
		closeLog: closeLog,
		client:   client,
	}, nil
}

// applyFlags overrides configuration values with global flags
func applyFlags(cfg *config.Config) {
	if baseURLFlag != "" {
		cfg.BaseURL = baseURLFlag
	}
	if endpointFlag != "" {
		cfg.DefaultEndpoint = endpointFlag
	}
	if policyFlag != "" {
		cfg.FormatPolicy = policyFlag
	}
	if verboseFlag {
		cfg.Verbose = true
	}
}

func (a *app) close() {
	if err := a.closeLog(); err != nil {
		fmt.Fprintf(a.deps.Stderr, "Warning: failed to close log file: %v\n", err)
	}
}

// policy returns the validated formatting policy
func (a *app) policy() format.Policy {
	p, err := format.ParsePolicy(a.cfg.FormatPolicy)
	if err != nil {
		return format.Markdown
	}
	return p
}

// terminalFormatter builds the terminal formatter wrapping at width
func (a *app) terminalFormatter(width int) *format.Formatter {
	opts := render.OptionsFromConfig(a.cfg.Markdown).WithWidth(width)
	return render.NewTerminalFormatter(a.policy(), opts, render.GetTUITheme(), a.log)
}

// newBot builds the chat controller over view
func (a *app) newBot(view chat.View, formatter chat.Formatter) (*chat.Bot, error) {
	opts := []chat.Option{chat.WithLogger(a.log)}
	if a.deps.Clipboard != nil {
		opts = append(opts, chat.WithClipboard(a.deps.Clipboard))
	}
	return chat.New(a.client, view, formatter, chat.Settings{
		Endpoints:       a.cfg.Endpoints,
		DefaultEndpoint: a.cfg.DefaultEndpoint,
		CopyFeedback:    a.cfg.CopyFeedback(),
	}, opts...)
}
