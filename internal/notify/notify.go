// Package notify implements the notification channel for Redline. Sends are
// fire-and-forget: failures are logged and surfaced as warnings, never as
// hard failures of the operation that triggered them.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrSend indicates a notification failed to deliver on at least one channel.
var ErrSend = errors.New("notification send failed")

// Channel delivers one notification to a set of addresses.
type Channel interface {
	Send(ctx context.Context, addresses []string, subject, body string) error
}

// System fans notifications out to all configured channels.
type System interface {
	Send(ctx context.Context, addresses []string, subject, body string) error
}

type system struct {
	channels []Channel
	logger   *slog.Logger
}

// New creates a notify system over the given channels. With no channels
// configured, sends are logged and dropped.
func New(channels []Channel, logger *slog.Logger) System {
	return &system{
		channels: channels,
		logger:   logger.With("system", "notify"),
	}
}

func (s *system) Send(ctx context.Context, addresses []string, subject, body string) error {
	if len(addresses) == 0 {
		s.logger.Warn("notification dropped, no addresses", "subject", subject)
		return nil
	}

	if len(s.channels) == 0 {
		s.logger.Info("notification logged, no channels configured",
			"subject", subject,
			"addresses", addresses,
		)
		return nil
	}

	var failed int
	for _, ch := range s.channels {
		if err := ch.Send(ctx, addresses, subject, body); err != nil {
			failed++
			s.logger.Warn("notification channel failed",
				"subject", subject,
				"error", err,
			)
		}
	}

	if failed == len(s.channels) {
		return fmt.Errorf("%w: all %d channels failed", ErrSend, failed)
	}

	s.logger.Info("notification sent", "subject", subject, "recipients", len(addresses))
	return nil
}
