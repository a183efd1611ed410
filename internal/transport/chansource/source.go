// Package chansource is an in-process message source backed by a watermill
// Go channel pub/sub. Each delivery token is its own topic.
package chansource

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"

	"github.com/colonyops/herald/internal/core/intake"
	"github.com/colonyops/herald/internal/core/logging"
)

// Source publishes and consumes raw push payloads in memory.
type Source struct {
	pubSub *gochannel.GoChannel
	logger zerolog.Logger
}

var _ intake.MessageSource = (*Source)(nil)

// New creates an in-process source.
func New() *Source {
	logger := logging.Component("chansource")
	return &Source{
		pubSub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 16},
			newLoggerAdapter(logger),
		),
		logger: logger,
	}
}

// Publish sends a raw payload to the device addressed by token.
func (s *Source) Publish(_ context.Context, token string, payload []byte) error {
	if token == "" {
		return fmt.Errorf("publish: empty token")
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := s.pubSub.Publish(token, msg); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Subscribe streams payloads for token until ctx is cancelled or the source
// is closed.
func (s *Source) Subscribe(ctx context.Context, token string) (<-chan []byte, error) {
	messages, err := s.pubSub.Subscribe(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	out := make(chan []byte)
	go func() {
		defer close(out)
		for msg := range messages {
			select {
			case out <- msg.Payload:
				msg.Ack()
			case <-ctx.Done():
				msg.Nack()
				return
			}
		}
	}()
	return out, nil
}

// Close shuts down the pub/sub and closes every subscription.
func (s *Source) Close() error {
	return s.pubSub.Close()
}
