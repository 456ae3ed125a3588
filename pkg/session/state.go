// pkg/session/state.go - orchestrator and download states.

package session

// State is the orchestrator's position in the launch flow.
type State int

const (
	Initializing State = iota
	AwaitingUserChoice
	CountdownRunning
	Launching
	Downloading
	Installing
	Terminated
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "Initializing"
	case AwaitingUserChoice:
		return "AwaitingUserChoice"
	case CountdownRunning:
		return "CountdownRunning"
	case Launching:
		return "Launching"
	case Downloading:
		return "Downloading"
	case Installing:
		return "Installing"
	case Terminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// DownloadState tracks one installer download.
type DownloadState int

const (
	Pending DownloadState = iota
	InProgress
	Completed
	Failed
)

func (s DownloadState) String() string {
	switch s {
	case Pending:
		return "Pending"
	case InProgress:
		return "InProgress"
	case Completed:
		return "Completed"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}
