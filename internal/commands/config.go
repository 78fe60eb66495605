package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/chatbot/internal/config"
	"github.com/diogo/chatbot/internal/render"
)

// NewConfigCmd creates a new config command
func NewConfigCmd(deps *Dependencies) *cobra.Command {
	deps = deps.withDefaults()

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change configuration",
		Long: `Show or change chatbot settings stored in ~/.chatbot/config.json.

Values from a .env file and CHATBOT_* environment variables override the file.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			fmt.Fprintln(deps.Stdout, string(data))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.GetConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(deps.Stdout, path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Keys: " + strings.Join(config.SettableKeys(), ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if args[0] == "tui_theme" {
				if _, ok := render.GetTUIThemeByName(args[1]); !ok {
					return fmt.Errorf("unknown theme %q (available: %s)", args[1], strings.Join(render.TUIThemeNames(), ", "))
				}
			}
			if err := config.SetValue(&cfg, args[0], args[1]); err != nil {
				return err
			}
			if err := config.SaveConfig(cfg); err != nil {
				return err
			}
			fmt.Fprintf(deps.Stdout, "%s = %s\n", args[0], args[1])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "themes",
		Short: "List the TUI color themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current := render.GetTUITheme().Name
			for _, name := range render.TUIThemeNames() {
				theme, _ := render.GetTUIThemeByName(name)
				marker := " "
				if name == current {
					marker = "*"
				}
				fmt.Fprintf(deps.Stdout, "%s %-12s %s\n", marker, name, theme.Description)
			}
			return nil
		},
	})

	return cmd
}
