package eventbus_test

import (
	"strings"
	"testing"
	"time"

	"github.com/colonyops/herald/internal/core/eventbus"
	"github.com/colonyops/herald/internal/core/eventbus/testbus"
	"github.com/colonyops/herald/internal/core/permission"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestRegisterDebugLogger(t *testing.T) {
	tb := testbus.New(t)

	// Nop logger must not panic.
	eventbus.RegisterDebugLogger(tb.EventBus, zerolog.Nop())

	tb.PublishPermissionChanged(eventbus.PermissionChangedPayload{New: permission.Default})
	tb.PublishTokenAcquired(eventbus.TokenAcquiredPayload{})
	tb.PublishStatusReported(eventbus.StatusReportedPayload{Level: eventbus.StatusError, Message: "x"})

	tb.AssertPublished(t, eventbus.EventStatusReported)
}

func TestRegisterDebugLogger_EchoesStatus(t *testing.T) {
	var buf syncBuffer
	tb := testbus.New(t)
	eventbus.RegisterDebugLogger(tb.EventBus, zerolog.New(&buf))

	tb.PublishStatusReported(eventbus.StatusReportedPayload{Level: eventbus.StatusWarning, Message: "notifications are blocked"})
	tb.AssertPublished(t, eventbus.EventStatusReported)

	assert.Eventually(t, func() bool {
		out := buf.String()
		return strings.Contains(out, `"level":"warn"`) &&
			strings.Contains(out, "notifications are blocked")
	}, time.Second, 5*time.Millisecond)
}
