// Package tui is the interactive presenter: a bell with an unread badge, a
// dropdown of recent notifications and a status line.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/colonyops/herald/internal/core/eventbus"
	"github.com/colonyops/herald/internal/core/intake"
	"github.com/colonyops/herald/internal/core/notify"
	"github.com/colonyops/herald/internal/core/permission"
)

const (
	toastDuration = 5 * time.Second
	dropdownRows  = 8
	actionTimeout = 15 * time.Second
)

// History applies read/remove operations. HistoryService satisfies it; when
// nil the model operates on the store directly.
type History interface {
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	Delete(ctx context.Context, id string) error
}

// PermissionRequester asks for notification permission.
type PermissionRequester interface {
	RequestPermission(ctx context.Context) permission.State
}

// Opener opens a notification's link.
type Opener interface {
	Open(ctx context.Context, url string) error
}

// Options configures the model.
type Options struct {
	Store      *notify.Store
	Inbox      *Inbox
	History    History
	Permission PermissionRequester
	Opener     Opener
	State      permission.State
	Title      string
}

type view int

const (
	viewClosed view = iota
	viewDropdown
	viewDetail
)

// Model is the bubbletea model of the presenter.
type Model struct {
	store      *notify.Store
	inbox      *Inbox
	history    History
	permission PermissionRequester
	opener     Opener
	title      string

	keys   keyMap
	help   help.Model
	detail viewport.Model

	snapshot notify.Snapshot
	state    permission.State
	view     view
	cursor   int
	offset   int

	toast    *intake.DisplayRequest
	toastSeq int

	status eventbus.StatusReportedPayload

	confirm chan<- bool

	width  int
	height int
}

// New creates the model.
func New(opts Options) Model {
	title := opts.Title
	if title == "" {
		title = "herald"
	}
	inbox := opts.Inbox
	if inbox == nil {
		inbox = NewInbox()
	}

	m := Model{
		store:      opts.Store,
		inbox:      inbox,
		history:    opts.History,
		permission: opts.Permission,
		opener:     opts.Opener,
		title:      title,
		keys:       defaultKeyMap(),
		help:       help.New(),
		detail:     viewport.New(80, 10),
		width:      80,
		height:     24,
	}
	m.setState(opts.State)
	if m.store != nil {
		m.snapshot = notify.Snapshot{Records: m.store.All(), Unread: m.store.UnreadCount()}
	}
	return m
}

// setState records the permission state. Unsupported hides the bell and
// turns off every notification control.
func (m *Model) setState(s permission.State) {
	m.state = s
	m.keys.setNotificationsEnabled(s != permission.Unsupported)
	if s == permission.Unsupported {
		m.view = viewClosed
	}
}

// Init starts draining the inbox.
func (m Model) Init() tea.Cmd {
	return m.inbox.WaitForSignal()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.detail.Width = max(20, msg.Width-4)
		m.detail.Height = max(3, msg.Height-8)
		return m, nil

	case drainInboxMsg:
		var cmds []tea.Cmd
		for _, queued := range m.inbox.Drain() {
			var cmd tea.Cmd
			m, cmd = m.apply(queued)
			cmds = append(cmds, cmd)
		}
		cmds = append(cmds, m.inbox.WaitForSignal())
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.apply(msg)
}

// apply handles messages that may also arrive through the inbox.
func (m Model) apply(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.snapshot = notify.Snapshot(msg)
		m.clampCursor()
		return m, nil

	case toastMsg:
		req := intake.DisplayRequest(msg)
		m.toast = &req
		m.toastSeq++
		seq := m.toastSeq
		return m, tea.Tick(toastDuration, func(time.Time) tea.Msg { return toastExpiredMsg{seq: seq} })

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = nil
		}
		return m, nil

	case statusMsg:
		m.status = eventbus.StatusReportedPayload(msg)
		return m, nil

	case permissionMsg:
		m.setState(permission.State(msg))
		return m, nil

	case confirmMsg:
		if m.confirm != nil {
			// one prompt at a time
			msg.reply <- false
			return m, nil
		}
		m.confirm = msg.reply
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.status = eventbus.StatusReportedPayload{
				Level:   eventbus.StatusError,
				Message: msg.what + ": " + msg.err.Error(),
			}
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirm != nil {
		switch {
		case key.Matches(msg, m.keys.Allow):
			m.answer(true)
		case key.Matches(msg, m.keys.Block):
			m.answer(false)
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Permission):
		return m, m.requestPermission()
	case key.Matches(msg, m.keys.Bell):
		if m.view == viewClosed {
			m.view = viewDropdown
		} else {
			m.view = viewClosed
		}
		return m, nil
	case key.Matches(msg, m.keys.Back):
		switch m.view {
		case viewDetail:
			m.view = viewDropdown
		case viewDropdown:
			m.view = viewClosed
		}
		return m, nil
	case key.Matches(msg, m.keys.MarkAllRead):
		return m, m.markAllRead()
	case key.Matches(msg, m.keys.Clear):
		return m, m.clear()
	}

	if m.view == viewClosed {
		return m, nil
	}

	if m.view == viewDetail {
		switch {
		case key.Matches(msg, m.keys.Open):
			return m, m.open()
		case key.Matches(msg, m.keys.Remove):
			m.view = viewDropdown
			return m, m.remove()
		}
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Select):
		if r, ok := m.selected(); ok {
			m.view = viewDetail
			m.detail.SetContent(renderDetail(r, m.detail.Width))
			m.detail.GotoTop()
			return m, m.markRead(r.ID)
		}
	case key.Matches(msg, m.keys.Open):
		return m, m.open()
	case key.Matches(msg, m.keys.MarkRead):
		if r, ok := m.selected(); ok {
			return m, m.markRead(r.ID)
		}
	case key.Matches(msg, m.keys.Remove):
		return m, m.remove()
	}
	return m, nil
}

func (m *Model) answer(allow bool) {
	m.confirm <- allow
	m.confirm = nil
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

func (m *Model) clampCursor() {
	n := len(m.snapshot.Records)
	if n == 0 {
		m.cursor, m.offset = 0, 0
		if m.view == viewDetail {
			m.view = viewDropdown
		}
		return
	}
	m.cursor = min(max(m.cursor, 0), n-1)
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+dropdownRows {
		m.offset = m.cursor - dropdownRows + 1
	}
}

func (m Model) selected() (notify.Record, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snapshot.Records) {
		return notify.Record{}, false
	}
	return m.snapshot.Records[m.cursor], true
}

// Commands run off the UI loop; the store subscription delivers the
// resulting snapshot.

func (m Model) markRead(id string) tea.Cmd {
	if m.history == nil {
		m.store.MarkRead(id)
		return nil
	}
	h := m.history
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return actionDoneMsg{what: "mark read", err: h.MarkRead(ctx, id)}
	}
}

func (m Model) markAllRead() tea.Cmd {
	if m.history == nil {
		m.store.MarkAllRead()
		return nil
	}
	h := m.history
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return actionDoneMsg{what: "mark all read", err: h.MarkAllRead(ctx)}
	}
}

func (m Model) remove() tea.Cmd {
	r, ok := m.selected()
	if !ok {
		return nil
	}
	if m.history == nil {
		m.store.Remove(r.ID)
		return nil
	}
	h := m.history
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return actionDoneMsg{what: "remove", err: h.Delete(ctx, r.ID)}
	}
}

func (m Model) clear() tea.Cmd {
	if m.store != nil {
		m.store.Clear()
	}
	return nil
}

func (m Model) open() tea.Cmd {
	r, ok := m.selected()
	if !ok || m.opener == nil {
		return nil
	}
	url := r.URL
	if url == "" {
		url = intake.DefaultClickURL
	}
	opener := m.opener
	return tea.Batch(m.markRead(r.ID), func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return actionDoneMsg{what: "open " + url, err: opener.Open(ctx, url)}
	})
}

func (m Model) requestPermission() tea.Cmd {
	if m.permission == nil {
		return nil
	}
	p := m.permission
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		return permissionMsg(p.RequestPermission(ctx))
	}
}
