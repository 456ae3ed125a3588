// pkg/download/url.go - installer URL naming rules for each release era.

package download

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/windowsadmins/tdlauncher/pkg/build"
	"github.com/windowsadmins/tdlauncher/pkg/platform"
)

// MinDownloadableYear is the oldest release year this launcher offers to
// download.
const MinDownloadableYear = 2020

// FileName returns the installer file name the download server expects for id.
// Older Windows releases were published under "<Product>099".
func FileName(id build.ID, p platform.OS, arch platform.Arch) string {
	if p != platform.Windows {
		if arch == platform.ArchNone {
			arch = platform.ArchIntel
		}
		return fmt.Sprintf("%s.%d.%d.%s.dmg", id.Product, id.Year, id.Build, arch)
	}
	switch id.Year {
	case 2017, 2018:
		return fmt.Sprintf("%s099.%d.%d.64-Bit.exe", id.Product, id.Year, id.Build)
	case 2019:
		return fmt.Sprintf("%s099.%d.%d.exe", id.Product, id.Year, id.Build)
	default:
		return fmt.Sprintf("%s.%d.%d.exe", id.Product, id.Year, id.Build)
	}
}

// ResolveURL maps a build to its download URL. It never fails: unknown years
// use the current naming scheme.
func ResolveURL(base string, id build.ID, p platform.OS, arch platform.Arch) string {
	return strings.TrimRight(base, "/") + "/" + FileName(id, p, arch)
}

// Downloadable reports whether the launcher offers a download for id.
func Downloadable(id build.ID) bool {
	return id.Year >= MinDownloadableYear
}

// DestinationPath picks where the installer is saved. On macOS the disk
// image goes next to the document; elsewhere it goes to downloadDir, or the
// working directory when that is empty.
func DestinationPath(url, documentPath string, p platform.OS, downloadDir string) string {
	name := path.Base(url)
	if p == platform.MacOS && documentPath != "" {
		return filepath.Join(filepath.Dir(documentPath), name)
	}
	if downloadDir == "" {
		if wd, err := os.Getwd(); err == nil {
			downloadDir = wd
		}
	}
	return filepath.Join(downloadDir, name)
}
