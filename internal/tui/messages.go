package tui

import (
	"github.com/colonyops/herald/internal/core/eventbus"
	"github.com/colonyops/herald/internal/core/intake"
	"github.com/colonyops/herald/internal/core/notify"
	"github.com/colonyops/herald/internal/core/permission"
)

// snapshotMsg carries the store contents after a change.
type snapshotMsg notify.Snapshot

// toastMsg asks the presenter to show a notification.
type toastMsg intake.DisplayRequest

// toastExpiredMsg hides the toast with the given sequence number.
type toastExpiredMsg struct{ seq int }

// statusMsg updates the status line.
type statusMsg eventbus.StatusReportedPayload

// permissionMsg reports the current permission state.
type permissionMsg permission.State

// confirmMsg asks the user to allow notifications. The answer is sent on
// reply exactly once.
type confirmMsg struct {
	reply chan<- bool
}

// actionDoneMsg reports the result of an asynchronous action.
type actionDoneMsg struct {
	what string
	err  error
}
