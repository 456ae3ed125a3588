// pkg/tui/update.go - message handling: keys, mouse, countdown ticks and download progress.

package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/windowsadmins/tdlauncher/pkg/session"
)

// MsgTick polls the countdown.
type MsgTick time.Time

// MsgDownloadProgress carries a download fraction from the fetch goroutine.
type MsgDownloadProgress float64

// MsgDownloadDone carries the fetch outcome.
type MsgDownloadDone struct{ Err error }

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return MsgTick(t)
	})
}

// waitFor reads the next message from the running download.
func waitFor(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// Update handles events.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.WindowSize = msg
		m.Bar.Width = max(msg.Width-8, 10)
		return m, nil

	case MsgTick:
		m.Session.Tick(time.Time(msg))
		if m.Session.State() == session.Terminated {
			return m, tea.Quit
		}
		return m, tick()

	case MsgDownloadProgress:
		m.Session.ApplyProgress(float64(msg))
		return m, waitFor(m.downloads)

	case MsgDownloadDone:
		m.Session.FinishDownload(msg.Err)
		m.downloads = nil
		return m, nil

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			return m, nil
		}
		m.Session.Interact()
		if msg.Button == tea.MouseButtonLeft {
			if idx, ok := versionAt(m.Session.Snapshot(), msg.Y); ok {
				m.Session.Select(idx)
			}
		}
		return m, nil

	case tea.KeyMsg:
		m.Session.Interact()
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.Session.Quit()
		case "up", "k":
			m.Session.MoveSelection(-1)
		case "down", "j":
			m.Session.MoveSelection(1)
		case "enter":
			m.Session.Launch()
		case "i":
			m.Session.Install()
		case "d":
			return m.startDownload()
		}
		if m.Session.State() == session.Terminated {
			return m, tea.Quit
		}
		return m, nil
	}
	return m, nil
}

// startDownload runs the fetch in a goroutine. Progress and completion come
// back through the downloads channel so only Update touches the session.
func (m AppModel) startDownload() (tea.Model, tea.Cmd) {
	job, err := m.Session.BeginDownload()
	if err != nil {
		return m, nil
	}
	ch := make(chan tea.Msg, 16)
	m.downloads = ch
	go func() {
		err := job.Run(m.ctx, func(fraction float64) {
			select {
			case ch <- MsgDownloadProgress(fraction):
			default:
			}
		})
		ch <- MsgDownloadDone{Err: err}
	}()
	return m, waitFor(ch)
}
