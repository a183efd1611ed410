package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Inbox buffers messages produced outside the program and emits coalesced
// drain signals, so producers never block on the UI loop.
type Inbox struct {
	mu     sync.Mutex
	msgs   []tea.Msg
	signal chan struct{}
}

// NewInbox constructs an empty inbox.
func NewInbox() *Inbox {
	return &Inbox{signal: make(chan struct{}, 1)}
}

// Push appends a message and emits a non-blocking drain signal.
func (b *Inbox) Push(msg tea.Msg) {
	b.mu.Lock()
	b.msgs = append(b.msgs, msg)
	b.mu.Unlock()

	select {
	case b.signal <- struct{}{}:
	default:
	}
}

// Drain returns all buffered messages and clears the buffer.
func (b *Inbox) Drain() []tea.Msg {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.msgs) == 0 {
		return nil
	}
	out := b.msgs
	b.msgs = nil
	return out
}

// WaitForSignal blocks until there are messages ready to drain.
func (b *Inbox) WaitForSignal() tea.Cmd {
	return func() tea.Msg {
		<-b.signal
		return drainInboxMsg{}
	}
}

type drainInboxMsg struct{}
