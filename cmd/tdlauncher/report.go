// cmd/tdlauncher/report.go - YAML report of the version resolution for --report.

package main

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/windowsadmins/tdlauncher/pkg/build"
	"github.com/windowsadmins/tdlauncher/pkg/catalog"
	"github.com/windowsadmins/tdlauncher/pkg/download"
	"github.com/windowsadmins/tdlauncher/pkg/session"
)

// Report is the --report output.
type Report struct {
	Document     string                     `yaml:"document"`
	Required     string                     `yaml:"required"`
	Installed    bool                       `yaml:"installed"`
	Downloadable bool                       `yaml:"downloadable"`
	DownloadURL  string                     `yaml:"download_url,omitempty"`
	Destination  string                     `yaml:"destination,omitempty"`
	Platform     string                     `yaml:"platform"`
	Arch         string                     `yaml:"arch,omitempty"`
	Versions     []catalog.InstalledVersion `yaml:"versions"`
}

func buildReport(doc string, required build.ID, cat *catalog.Catalog, deps session.Dependencies) Report {
	r := Report{
		Document:     doc,
		Required:     required.String(),
		Installed:    cat.Contains(required),
		Downloadable: download.Downloadable(required),
		Platform:     string(deps.Platform),
		Arch:         string(deps.Arch),
		Versions:     cat.Installed(),
	}
	if !r.Installed && r.Downloadable {
		r.DownloadURL = download.ResolveURL(deps.BaseURL, required, deps.Platform, deps.Arch)
		r.Destination = download.DestinationPath(r.DownloadURL, doc, deps.Platform, deps.DownloadDir)
	}
	return r
}

func printReport(r Report) error {
	out, err := yaml.Marshal(r)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}
