package watch

import tea "github.com/charmbracelet/bubbletea"

// dispatchMsg carries work that must run on the UI loop.
type dispatchMsg func()

type sender interface {
	Send(msg tea.Msg)
}

// ProgramDispatcher hands work to a running bubbletea program. The work runs
// inside Update, so observers can touch the model without locking.
type ProgramDispatcher struct {
	program sender
}

func NewProgramDispatcher(program *tea.Program) *ProgramDispatcher {
	return &ProgramDispatcher{program: program}
}

// Dispatch blocks until the program accepts the message or has exited.
func (d *ProgramDispatcher) Dispatch(work func()) {
	d.program.Send(dispatchMsg(work))
}
