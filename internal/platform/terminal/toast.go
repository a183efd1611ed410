package terminal

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/herald/internal/core/intake"
	"github.com/colonyops/herald/internal/core/styles"
	"github.com/colonyops/herald/pkg/kv"
)

// Toasts renders notifications as boxes on a writer and tracks which are
// still shown.
type Toasts struct {
	mu    sync.Mutex
	out   io.Writer
	bell  bool
	shown *kv.Store[string, intake.DisplayRequest]
}

// NewToasts writes toasts to out. With bell set, each toast rings the
// terminal bell.
func NewToasts(out io.Writer, bell bool) *Toasts {
	return &Toasts{
		out:   out,
		bell:  bell,
		shown: kv.New[string, intake.DisplayRequest](),
	}
}

var _ intake.Notifier = (*Toasts)(nil)

// Display renders req. A request with an existing tag replaces the previous
// toast.
func (t *Toasts) Display(_ context.Context, req intake.DisplayRequest) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if req.Tag != "" {
		t.shown.Set(req.Tag, req)
	}

	out := RenderToast(req)
	if t.bell {
		out = "\a" + out
	}
	if _, err := fmt.Fprintln(t.out, out); err != nil {
		return fmt.Errorf("display: %w", err)
	}
	return nil
}

// Close dismisses the toast with tag.
func (t *Toasts) Close(_ context.Context, tag string) error {
	t.shown.Delete(tag)
	return nil
}

// Shown returns the tags of toasts not yet dismissed.
func (t *Toasts) Shown() []string {
	return t.shown.SortedKeys(func(a, b string) bool { return a < b })
}

// RenderToast formats a notification box.
func RenderToast(req intake.DisplayRequest) string {
	var b strings.Builder
	b.WriteString(styles.ToastTitleStyle.Render(styles.IconBell + " " + req.Title))
	if req.Body != "" {
		b.WriteString("\n")
		b.WriteString(req.Body)
	}
	if u := req.URL(); u != "" {
		b.WriteString("\n")
		b.WriteString(styles.MutedStyle.Render(styles.IconLink + " " + u))
	}
	if len(req.Actions) > 0 {
		titles := make([]string, 0, len(req.Actions))
		for _, a := range req.Actions {
			titles = append(titles, "["+a.Title+"]")
		}
		b.WriteString("\n")
		b.WriteString(styles.HelpStyle.Render(strings.Join(titles, " ")))
	}

	box := styles.ToastStyle
	if req.RequireInteraction {
		box = box.BorderForeground(styles.CurrentPalette.Warning)
	}
	return box.Render(lipgloss.NewStyle().MaxWidth(72).Render(b.String()))
}
