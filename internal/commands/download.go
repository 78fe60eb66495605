package commands

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/diogo/chatbot/internal/config"
)

var downloadDirFlag string

// NewDownloadCmd creates the report download command
func NewDownloadCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download <filename>",
		Short: "Download a report generated by the backend",
		Long: `Fetch /download/<filename> and save it under the download directory
(download_dir in the config, ~/.chatbot/reports by default).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd.Context(), deps, args[0])
		},
	}
	cmd.Flags().StringVarP(&downloadDirFlag, "dir", "d", "", "Directory to save the report in")
	return cmd
}

func runDownload(ctx context.Context, deps *Dependencies, filename string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(deps, true)
	if err != nil {
		return err
	}
	defer a.close()

	dir := downloadDirFlag
	if dir == "" {
		dir, err = config.GetDownloadDir(a.cfg)
		if err != nil {
			return err
		}
	}

	path, err := a.client.Download(ctx, filename, dir)
	if err != nil {
		fmt.Fprintln(a.deps.Stderr, formatErrorMessage(err, "Download failed"))
		return fmt.Errorf("download failed: %w", err)
	}

	fmt.Fprintln(a.deps.Stdout, lipgloss.NewStyle().Foreground(colorSuccess).Render(
		fmt.Sprintf("✓ Saved %s to %s", filename, path)))
	return nil
}
