// Package terminal adapts the permission, display and window ports to an
// interactive terminal session.
package terminal

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/colonyops/herald/internal/core/kv"
	"github.com/colonyops/herald/internal/core/permission"
)

const (
	permissionNamespace = "permission"
	permissionKey       = "state"
)

// Prompter asks the user to allow notifications.
type Prompter interface {
	Confirm(ctx context.Context) (bool, error)
}

// Host is a permission.Host that remembers the user's answer in durable
// storage. Notifications are unsupported when disabled by configuration or
// when stdin is not a terminal.
type Host struct {
	states      *kv.TypedKV[permission.State]
	prompter    Prompter
	enabled     bool
	interactive func() bool
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithInteractive overrides terminal detection.
func WithInteractive(fn func() bool) HostOption {
	return func(h *Host) { h.interactive = fn }
}

// NewHost creates a host persisting permission in store.
func NewHost(store kv.KV, prompter Prompter, enabled bool, opts ...HostOption) *Host {
	h := &Host{
		states:   kv.Scoped[permission.State](store, permissionNamespace),
		prompter: prompter,
		enabled:  enabled,
		interactive: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

var _ permission.Host = (*Host)(nil)

// Supported reports whether notifications can be shown at all.
func (h *Host) Supported(context.Context) bool {
	return h.enabled
}

// Current returns the remembered answer, or default if the user was never
// asked.
func (h *Host) Current(ctx context.Context) (permission.State, error) {
	if !h.enabled {
		return permission.Unsupported, nil
	}
	st, err := h.states.Get(ctx, permissionKey)
	if err != nil {
		if kv.IsNotFound(err) {
			return permission.Default, nil
		}
		return "", fmt.Errorf("read permission: %w", err)
	}
	return st, nil
}

// Prompt asks the user once. A remembered answer is returned without
// prompting. Without a terminal the state stays default.
func (h *Host) Prompt(ctx context.Context) (permission.State, error) {
	current, err := h.Current(ctx)
	if err != nil {
		return "", err
	}
	if current != permission.Default {
		return current, nil
	}
	if h.prompter == nil || !h.interactive() {
		return permission.Default, nil
	}

	ok, err := h.prompter.Confirm(ctx)
	if err != nil {
		return "", fmt.Errorf("prompt: %w", err)
	}

	answer := permission.Denied
	if ok {
		answer = permission.Granted
	}
	if err := h.states.Set(ctx, permissionKey, answer); err != nil {
		return "", fmt.Errorf("save permission: %w", err)
	}
	return answer, nil
}

// Set records an answer without prompting.
func (h *Host) Set(ctx context.Context, st permission.State) error {
	if st != permission.Granted && st != permission.Denied {
		return fmt.Errorf("permission can only be set to %s or %s", permission.Granted, permission.Denied)
	}
	return h.states.Set(ctx, permissionKey, st)
}

// Reset forgets the remembered answer so the next request prompts again.
func (h *Host) Reset(ctx context.Context) error {
	if err := h.states.Delete(ctx, permissionKey); err != nil && !kv.IsNotFound(err) {
		return fmt.Errorf("reset permission: %w", err)
	}
	return nil
}
