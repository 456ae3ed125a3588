// pkg/tui/view.go - renders the document, version list, download progress and help line.

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/windowsadmins/tdlauncher/pkg/download"
	"github.com/windowsadmins/tdlauncher/pkg/progress"
	"github.com/windowsadmins/tdlauncher/pkg/session"
	"github.com/windowsadmins/tdlauncher/pkg/version"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	selectedItemStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Foreground(lipgloss.Color("205"))

	unselectedItemStyle = lipgloss.NewStyle().
				PaddingLeft(4).
				Foreground(lipgloss.Color("250"))

	missingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	countdownStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("81"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("196")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))
)

func (m AppModel) View() string {
	snap := m.Session.Snapshot()
	var b strings.Builder

	b.WriteString(renderHeader(snap))
	b.WriteString(m.renderVersions(snap))
	b.WriteString("\n")

	if !snap.RequiredInstalled {
		b.WriteString(m.renderDownload(snap))
	}

	if snap.CountdownActive {
		b.WriteString(countdownStyle.Render(fmt.Sprintf("Opening in %s seconds, press any key to cancel", snap.CountdownLabel)))
		b.WriteString("\n")
	}

	if snap.LastError != nil {
		b.WriteString(errorStyle.Render(snap.LastError.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(helpLine(snap)))
	b.WriteString("\n")
	return b.String()
}

// renderHeader ends on the line where the version list label starts.
func renderHeader(snap session.Snapshot) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(version.Title()))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Document:"), snap.DocumentPath)

	required := snap.Required.String()
	if !snap.RequiredInstalled {
		required += " " + missingStyle.Render("(NOT INSTALLED)")
	}
	fmt.Fprintf(&b, "%s %s\n\n", labelStyle.Render("Required:"), required)
	return b.String()
}

// versionAt maps a screen row to an index into snap.Versions. The first
// version sits one line below the list label.
func versionAt(snap session.Snapshot, y int) (int, bool) {
	row := y - lipgloss.Height(renderHeader(snap))
	if row < 0 || row >= len(snap.Versions) {
		return -1, false
	}
	return row, true
}

func (m AppModel) renderVersions(snap session.Snapshot) string {
	if len(snap.Versions) == 0 {
		return unselectedItemStyle.Render("No installed versions found") + "\n"
	}
	var b strings.Builder
	b.WriteString(labelStyle.Render("Installed versions:"))
	b.WriteString("\n")
	for i, v := range snap.Versions {
		line := v.ID.String()
		if v.ID.Equal(snap.Required) {
			line += " (required)"
		}
		if i == snap.Selected {
			b.WriteString(selectedItemStyle.Render("> " + line))
		} else {
			b.WriteString(unselectedItemStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m AppModel) renderDownload(snap session.Snapshot) string {
	var b strings.Builder
	switch {
	case !snap.Downloadable:
		b.WriteString(missingStyle.Render(fmt.Sprintf(
			"Builds older than %d cannot be downloaded here. Install %s manually.",
			download.MinDownloadableYear, snap.Required)))
		b.WriteString("\n")
	case snap.Download == nil:
		b.WriteString("Press d to download the required version.\n")
	default:
		task := snap.Download
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Download:"), task.SourceURL)
		b.WriteString(m.Bar.ViewAs(task.Progress))
		fmt.Fprintf(&b, " %s%%\n", progress.Label(task.Progress))
		switch task.State {
		case session.Completed:
			fmt.Fprintf(&b, "Saved to %s. Press i to install.\n", task.DestinationPath)
		case session.Failed:
			b.WriteString("Download failed. Press d to try again.\n")
		}
	}
	return b.String()
}

func helpLine(snap session.Snapshot) string {
	keys := []string{"↑/↓ select", "enter open"}
	if !snap.RequiredInstalled && snap.Downloadable {
		keys = append(keys, "d download")
	}
	if snap.InstallReady {
		keys = append(keys, "i install")
	}
	keys = append(keys, "esc quit")
	return strings.Join(keys, " • ")
}
