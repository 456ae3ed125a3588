// pkg/catalog/scanner.go - platform scanner selection and scan errors.

package catalog

import (
	"context"
	"fmt"

	"github.com/windowsadmins/tdlauncher/pkg/config"
	"github.com/windowsadmins/tdlauncher/pkg/logging"
	"github.com/windowsadmins/tdlauncher/pkg/platform"
)

// Scanner discovers installed versions. Finding nothing is not an error.
type Scanner interface {
	Scan(ctx context.Context) (*Catalog, error)
}

// ScanError is a platform enumeration failure. It is fatal at startup.
type ScanError struct {
	Source string
	Err    error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Source, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }

// NewPlatformScanner picks the discovery strategy for p.
func NewPlatformScanner(cfg *config.Configuration, p platform.OS) Scanner {
	switch p {
	case platform.Windows:
		return &RegistryScanner{Product: cfg.ProductName, Keys: newClassesRootEnumerator()}
	case platform.MacOS:
		return &BundleScanner{Product: cfg.ProductName, ApplicationsDir: cfg.ApplicationsDir}
	default:
		logging.Warn("No installation scanner for this platform", "platform", string(p))
		return emptyScanner{}
	}
}

type emptyScanner struct{}

func (emptyScanner) Scan(context.Context) (*Catalog, error) { return New(), nil }
