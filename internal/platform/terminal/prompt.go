package terminal

import (
	"context"
	"errors"

	"github.com/charmbracelet/huh"
)

// HuhPrompter asks with an inline confirm form.
type HuhPrompter struct {
	Title       string
	Description string
}

// NewHuhPrompter returns the default notification prompt.
func NewHuhPrompter() HuhPrompter {
	return HuhPrompter{
		Title:       "Allow herald to show notifications?",
		Description: "You can change this later with `herald permission reset`.",
	}
}

// Confirm runs the form. Aborting the form counts as a denial.
func (p HuhPrompter) Confirm(ctx context.Context) (bool, error) {
	var allow bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(p.Title).
			Description(p.Description).
			Affirmative("Allow").
			Negative("Block").
			Value(&allow),
	))
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return allow, nil
}
