// pkg/session/presenter.go - status reporting interface for front ends.

package session

// Presenter receives status updates from the session.
type Presenter interface {
	Message(txt string)
	Detail(txt string)
	Percent(pct int) // -1 = indeterminate
	Error(err error)
}

// NoOpPresenter implements Presenter but does nothing (for headless operation)
type NoOpPresenter struct{}

func (NoOpPresenter) Message(string) {}
func (NoOpPresenter) Detail(string)  {}
func (NoOpPresenter) Percent(int)    {}
func (NoOpPresenter) Error(error)    {}
