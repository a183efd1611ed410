// Package natssource receives push payloads over NATS. Each device listens
// on `{prefix}.{token}`.
package natssource

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/colonyops/herald/internal/core/intake"
	"github.com/colonyops/herald/internal/core/logging"
)

// Source is a NATS-backed message source and publisher.
type Source struct {
	nc     *nats.Conn
	prefix string
	logger zerolog.Logger
}

var _ intake.MessageSource = (*Source)(nil)

// Connect dials the NATS server at url.
func Connect(url, subjectPrefix string) (*Source, error) {
	logger := logging.Component("natssource")

	nc, err := nats.Connect(url,
		nats.Name("herald"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info().Str("url", c.ConnectedUrl()).Msg("reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &Source{nc: nc, prefix: strings.TrimSuffix(subjectPrefix, "."), logger: logger}, nil
}

// Subject returns the subject a device with token listens on.
func Subject(prefix, token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("empty token")
	}
	if strings.ContainsAny(token, " \t\r\n.*>") {
		return "", fmt.Errorf("token %q is not a valid subject token", token)
	}
	prefix = strings.TrimSuffix(prefix, ".")
	if prefix == "" {
		return token, nil
	}
	return prefix + "." + token, nil
}

// Subscribe streams payloads published to the device's subject until ctx is
// cancelled.
func (s *Source) Subscribe(ctx context.Context, token string) (<-chan []byte, error) {
	subject, err := Subject(s.prefix, token)
	if err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	msgs := make(chan *nats.Msg, 64)
	sub, err := s.nc.ChanSubscribe(subject, msgs)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}
	s.logger.Debug().Str("subject", subject).Msg("subscribed")

	out := make(chan []byte)
	go func() {
		defer close(out)
		defer func() {
			if err := sub.Unsubscribe(); err != nil && s.nc.IsConnected() {
				s.logger.Debug().Err(err).Str("subject", subject).Msg("unsubscribe")
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-msgs:
				select {
				case out <- msg.Data:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Publish sends a raw payload to the device addressed by token.
func (s *Source) Publish(ctx context.Context, token string, payload []byte) error {
	subject, err := Subject(s.prefix, token)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	if err := s.nc.Publish(subject, payload); err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", subject, err)
	}

	deadline, ok := ctx.Deadline()
	timeout := 5 * time.Second
	if ok {
		timeout = time.Until(deadline)
	}
	if err := s.nc.FlushTimeout(timeout); err != nil {
		return fmt.Errorf("flush %s: %w", subject, err)
	}
	return nil
}

// Close drains and closes the connection.
func (s *Source) Close() error {
	if s.nc == nil {
		return nil
	}
	if err := s.nc.Drain(); err != nil {
		s.nc.Close()
		return err
	}
	return nil
}
