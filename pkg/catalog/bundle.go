// pkg/catalog/bundle.go - discovery of installed versions from macOS application bundles.

package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/windowsadmins/tdlauncher/pkg/build"
	"github.com/windowsadmins/tdlauncher/pkg/logging"
	"howett.net/plist"
)

// BundleInfo holds the Info.plist keys the scanner reads.
type BundleInfo struct {
	Version string `plist:"CFBundleVersion"`
	Name    string `plist:"CFBundleName"`
}

// BundleScanner finds <ApplicationsDir>/<Product>*.app bundles.
type BundleScanner struct {
	Product         string
	ApplicationsDir string
}

// Scan implements Scanner.
func (s *BundleScanner) Scan(ctx context.Context) (*Catalog, error) {
	pattern := filepath.Join(s.ApplicationsDir, s.Product+"*")
	logging.Debug("Searching for application bundles", "pattern", pattern)
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, &ScanError{Source: "bundles", Err: err}
	}
	logging.Debug("Found candidate bundles", "count", len(paths))

	cat := New()
	for _, appPath := range paths {
		if err := ctx.Err(); err != nil {
			return nil, &ScanError{Source: "bundles", Err: err}
		}
		if !strings.HasSuffix(appPath, ".app") {
			continue
		}
		v, err := s.inspectBundle(appPath)
		if err != nil {
			logging.Warn("Skipping application bundle", "bundle", appPath, "error", err)
			continue
		}
		cat.Add(v)
		logging.Debug("Found installation", "build", v.ID.String(), "bundle", appPath)
	}
	logging.Info("Bundle scan complete", "installed", cat.Len())
	return cat, nil
}

func (s *BundleScanner) inspectBundle(appPath string) (InstalledVersion, error) {
	info, err := ReadBundleInfo(filepath.Join(appPath, "Contents", "Info.plist"))
	if err != nil {
		return InstalledVersion{}, err
	}
	if info.Version == "" {
		return InstalledVersion{}, fmt.Errorf("no CFBundleVersion in Info.plist")
	}
	if info.Name == "" {
		info.Name = filepath.Base(appPath)
	}
	id, err := build.FromBundleVersion(s.Product, info.Version)
	if err != nil {
		return InstalledVersion{}, err
	}
	return InstalledVersion{
		ID:             id,
		ExecutablePath: filepath.Join(appPath, "Contents", "MacOS", s.Product),
		BundlePath:     appPath,
		BundleVersion:  info.Version,
		DisplayName:    info.Name,
	}, nil
}

// ReadBundleInfo decodes an XML or binary Info.plist.
func ReadBundleInfo(path string) (BundleInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return BundleInfo{}, fmt.Errorf("read Info.plist: %w", err)
	}
	var info BundleInfo
	if _, err := plist.Unmarshal(data, &info); err != nil {
		return BundleInfo{}, fmt.Errorf("decode Info.plist: %w", err)
	}
	return info, nil
}
