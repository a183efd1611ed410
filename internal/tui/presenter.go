package tui

import (
	"context"
	"errors"

	"github.com/colonyops/herald/internal/core/eventbus"
	"github.com/colonyops/herald/internal/core/intake"
	"github.com/colonyops/herald/internal/core/notify"
	"github.com/colonyops/herald/internal/core/permission"
)

// ErrPresenterClosed is returned by Confirm after Close.
var ErrPresenterClosed = errors.New("presenter closed")

// Presenter feeds the running model. It implements intake.Displayer and
// the terminal permission prompter, so foreground notifications and the
// permission prompt render inside the TUI.
type Presenter struct {
	inbox *Inbox
	done  chan struct{}
}

// NewPresenter creates a presenter delivering into inbox.
func NewPresenter(inbox *Inbox) *Presenter {
	return &Presenter{inbox: inbox, done: make(chan struct{})}
}

var _ intake.Displayer = (*Presenter)(nil)

// Display shows req as a toast.
func (p *Presenter) Display(_ context.Context, req intake.DisplayRequest) error {
	p.inbox.Push(toastMsg(req))
	return nil
}

// Confirm asks the user to allow notifications and waits for the answer.
func (p *Presenter) Confirm(ctx context.Context) (bool, error) {
	reply := make(chan bool, 1)
	p.inbox.Push(confirmMsg{reply: reply})

	select {
	case ok := <-reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	case <-p.done:
		return false, ErrPresenterClosed
	}
}

// Attach forwards store snapshots and bus events to the model. The returned
// function stops store updates.
func (p *Presenter) Attach(store *notify.Store, bus *eventbus.EventBus) func() {
	unsubscribe := func() {}
	if store != nil {
		unsubscribe = store.Subscribe(func(s notify.Snapshot) {
			p.inbox.Push(snapshotMsg(s))
		})
	}
	if bus != nil {
		bus.SubscribeStatusReported(func(s eventbus.StatusReportedPayload) {
			p.inbox.Push(statusMsg(s))
		})
		bus.SubscribePermissionChanged(func(c eventbus.PermissionChangedPayload) {
			p.inbox.Push(permissionMsg(c.New))
		})
	}
	return unsubscribe
}

// Status sets the status line directly.
func (p *Presenter) Status(level eventbus.StatusLevel, msg string) {
	p.inbox.Push(statusMsg{Level: level, Message: msg})
}

// Permission reports a permission state to the model.
func (p *Presenter) Permission(st permission.State) {
	p.inbox.Push(permissionMsg(st))
}

// Close releases pending prompts.
func (p *Presenter) Close() {
	select {
	case <-p.done:
	default:
		close(p.done)
	}
}
