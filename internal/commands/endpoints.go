package commands

import (
	"context"
	"fmt"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// NewEndpointsCmd creates the command listing the backend's routes
func NewEndpointsCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "endpoints",
		Short: "List the routes and tools the backend advertises",
		Long: `Print the backend's root listing (GET /). Endpoints configured for chat
are marked with *.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEndpoints(cmd.Context(), deps)
		},
	}
}

func runEndpoints(ctx context.Context, deps *Dependencies) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(deps, true)
	if err != nil {
		return err
	}
	defer a.close()

	listing, err := a.client.Endpoints(ctx)
	if err != nil {
		fmt.Fprintln(a.deps.Stderr, formatErrorMessage(err, "Failed to list endpoints"))
		return fmt.Errorf("failed to list endpoints: %w", err)
	}

	out := a.deps.Stdout
	titleStyle := lipgloss.NewStyle().Bold(true)
	pathStyle := lipgloss.NewStyle().Foreground(colorSuccess)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	if listing.Message != "" {
		fmt.Fprintln(out, titleStyle.Render(listing.Message))
	}

	width := 0
	for _, e := range listing.Endpoints {
		width = max(width, len(e.Path))
	}
	for _, e := range listing.Endpoints {
		marker := " "
		if slices.Contains(a.cfg.Endpoints, e.Path) {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %s  %s\n", marker,
			pathStyle.Render(fmt.Sprintf("%-*s", width, e.Path)),
			dimStyle.Render(truncate(e.Description, 70)))
	}

	if len(listing.Tools) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, titleStyle.Render("Tools:"))
		for _, tool := range listing.Tools {
			fmt.Fprintf(out, "  - %s\n", truncate(tool, 76))
		}
	}
	return nil
}

// truncate shortens s to maxLen runes, adding an ellipsis
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
