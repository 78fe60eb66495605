package api

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	fhttp "github.com/bogdanfinn/fhttp"

	apierrors "github.com/diogo/chatbot/internal/errors"
)

// reportLinkPattern matches report links the backend embeds in replies
var reportLinkPattern = regexp.MustCompile(`/download/([A-Za-z0-9._-]+)`)

// ValidateFilename rejects names that could escape the reports directory
func ValidateFilename(filename string) error {
	if filename == "" || strings.Contains(filename, "..") ||
		strings.ContainsAny(filename, `/\`) {
		return fmt.Errorf("%w: %q", apierrors.ErrInvalidFilename, filename)
	}
	return nil
}

// FindReportLinks returns the unique report filenames referenced in text, in order
func FindReportLinks(text string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range reportLinkPattern.FindAllStringSubmatch(text, -1) {
		name := m[1]
		if seen[name] || ValidateFilename(name) != nil {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// Download fetches a generated report and saves it in dir.
// Returns the absolute path of the saved file.
func (c *Client) Download(ctx context.Context, filename, dir string) (string, error) {
	if err := ValidateFilename(filename); err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apierrors.NewDownloadError(filename, 0, "failed to create directory: "+err.Error())
	}

	status, body, err := c.do(ctx, fhttp.MethodGet, PathDownload+filename, nil)
	if err != nil {
		return "", err
	}

	if status != fhttp.StatusOK {
		msg := errorDetail(body)
		if msg == "" {
			msg = fhttp.StatusText(status)
		}
		return "", apierrors.NewDownloadError(filename, status, msg)
	}

	destPath := filepath.Join(dir, filename)
	if err := os.WriteFile(destPath, body, 0o644); err != nil {
		return "", apierrors.NewDownloadError(filename, 0, "failed to save file: "+err.Error())
	}

	// Fall back to the joined path if Abs fails
	absPath, err := filepath.Abs(destPath)
	if err != nil {
		return destPath, nil
	}
	return absPath, nil
}
