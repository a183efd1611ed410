package intake

import (
	"context"
	"errors"
	"sync"

	"github.com/colonyops/herald/internal/core/permission"
)

type staticPermission permission.State

func (p staticPermission) State(context.Context) permission.State { return permission.State(p) }

type recordingNotifier struct {
	mu        sync.Mutex
	displayed []DisplayRequest
	closed    []string
	err       error
}

func (n *recordingNotifier) Display(_ context.Context, req DisplayRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.displayed = append(n.displayed, req)
	return nil
}

func (n *recordingNotifier) Close(_ context.Context, tag string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = append(n.closed, tag)
	return nil
}

func (n *recordingNotifier) Displayed() []DisplayRequest {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]DisplayRequest(nil), n.displayed...)
}

type fakeClients struct {
	open    map[string]bool
	focused []string
	opened  []string
	openErr error
}

func (c *fakeClients) Focus(_ context.Context, url string) (bool, error) {
	if c.open[url] {
		c.focused = append(c.focused, url)
		return true, nil
	}
	return false, nil
}

func (c *fakeClients) Open(_ context.Context, url string) error {
	if c.openErr != nil {
		return c.openErr
	}
	c.opened = append(c.opened, url)
	return nil
}

// chanSource hands out a pre-built channel.
type chanSource struct {
	ch    chan []byte
	err   error
	token string
}

func (s *chanSource) Subscribe(_ context.Context, token string) (<-chan []byte, error) {
	s.token = token
	return s.ch, s.err
}

var errDisplay = errors.New("display failed")
