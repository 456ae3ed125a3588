// pkg/download/download.go - HTTP fetch of installers with progress callbacks.

package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/windowsadmins/tdlauncher/pkg/logging"
	"github.com/windowsadmins/tdlauncher/pkg/progress"
	"github.com/windowsadmins/tdlauncher/pkg/version"
)

// DefaultTimeout bounds a whole installer download.
const DefaultTimeout = 30 * time.Minute

// ProgressFunc receives (blocks transferred, block size, total bytes).
type ProgressFunc = progress.Callback

// Fetcher retrieves url into dest, reporting progress as it goes.
type Fetcher interface {
	Fetch(ctx context.Context, url, dest string, onProgress ProgressFunc) error
}

// HTTPFetcher downloads over HTTP(S). A failed download leaves no partial
// file behind. There is no automatic retry.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher returns a fetcher with the given overall timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPFetcher{Client: &http.Client{Timeout: timeout}}
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, url, dest string, onProgress ProgressFunc) (err error) {
	if url == "" {
		return fmt.Errorf("invalid parameters: url cannot be empty")
	}
	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create directory structure: %w", err)
	}

	logging.Info("Starting download", "url", url, "destination", dest)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to prepare HTTP request: %w", err)
	}
	req.Header.Set("User-Agent", version.AppName()+"/"+version.Version().Version)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to perform HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected HTTP status code: %d", resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to open destination file: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close destination file: %w", cerr)
		}
		if err != nil {
			os.Remove(dest)
		}
	}()

	reader := progress.NewReader(resp.Body, resp.ContentLength, onProgress)
	reader.Start()
	written, err := io.Copy(out, reader)
	if err != nil {
		return fmt.Errorf("failed to write downloaded data: %w", err)
	}
	if resp.ContentLength > 0 && written != resp.ContentLength {
		return fmt.Errorf("incomplete download: got %d of %d bytes", written, resp.ContentLength)
	}

	logging.Info("Download completed successfully", "file", dest, "size", progress.FormatBytes(written))
	return nil
}
