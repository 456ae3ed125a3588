// pkg/version/version.go - build information for the launcher binary.

package version

import (
	"fmt"
	"strings"
)

// These values are private which ensures they can only be set with the build flags.
var (
	version   = "1.1.0"
	revision  = "unknown"
	goVersion = "unknown"
	buildDate = "unknown"
	appName   = "tdlauncher"
)

// Info is a structure with version build information about the current application.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Revision  string `json:"revision" yaml:"revision"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	BuildDate string `json:"build_date" yaml:"build_date"`
}

// Version returns a structure with the current version information.
func Version() Info {
	return Info{
		Version:   version,
		Revision:  revision,
		GoVersion: goVersion,
		BuildDate: buildDate,
	}
}

// AppName returns the binary name used in banners and window titles.
func AppName() string {
	return appName
}

// Title returns "<app> <version>", e.g. for the terminal UI header.
func Title() string {
	return fmt.Sprintf("%s %s", appName, version)
}

// Print outputs the application name and version string.
func Print() {
	fmt.Println(Title())
}

// PrintFull prints the application name and detailed version information.
func PrintFull() {
	v := Version()
	fmt.Printf("%s %s\n", appName, v.Version)
	fmt.Printf("  revision: \t%s\n", v.Revision)
	fmt.Printf("  build date: \t%s\n", v.BuildDate)
	fmt.Printf("  go version: \t%s\n", v.GoVersion)
}

// Semver trims a leading "v" and trailing ".0" segments so release tags
// compare cleanly against the compiled-in version.
func Semver(tag string) string {
	parts := strings.Split(strings.TrimPrefix(tag, "v"), ".")
	for len(parts) > 1 && parts[len(parts)-1] == "0" {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, ".")
}
