// pkg/tui/model.go - bubbletea model wrapping a launcher session.

package tui

import (
	"context"
	"time"

	progressbar "github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/windowsadmins/tdlauncher/pkg/session"
)

// tickInterval drives the countdown poll.
const tickInterval = 100 * time.Millisecond

// AppModel holds the TUI state. The session is only mutated from Update.
type AppModel struct {
	Session *session.Session

	// UI State
	WindowSize tea.WindowSizeMsg
	Bar        progressbar.Model

	ctx       context.Context
	downloads chan tea.Msg
}

// InitialModel wraps a ready session.
func InitialModel(ctx context.Context, s *session.Session) AppModel {
	if ctx == nil {
		ctx = context.Background()
	}
	return AppModel{
		Session: s,
		Bar:     progressbar.New(progressbar.WithDefaultGradient(), progressbar.WithoutPercentage()),
		ctx:     ctx,
	}
}

// Init starts the countdown poll.
func (m AppModel) Init() tea.Cmd {
	return tick()
}

// Run shows the launcher until the session terminates.
func Run(ctx context.Context, s *session.Session) error {
	p := tea.NewProgram(InitialModel(ctx, s), tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
