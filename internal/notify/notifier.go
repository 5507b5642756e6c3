package notify

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// maxAttempts is how many times each channel is tried before its failure is
// reported.
const maxAttempts = 3

// retryDelay spaces retry attempts on a failing channel.
const retryDelay = 2 * time.Second

// Sender is one notification channel.
type Sender interface {
	Name() string
	Send(message string) error
}

// Service fans one message out to every configured channel. Channels fail
// independently: each gets its own retries, and the caller receives the
// aggregated failures rather than the first one.
type Service struct {
	senders []Sender
	log     zerolog.Logger
}

// NewService creates a notification service over the given channels.
func NewService(log zerolog.Logger, senders ...Sender) *Service {
	return &Service{
		senders: senders,
		log:     log.With().Str("component", "notify").Logger(),
	}
}

// Broadcast sends the message on every channel and returns the joined errors
// of the channels that exhausted their retries. No channels configured is a
// no-op, not an error.
func (s *Service) Broadcast(message string) error {
	var failures []error
	for _, sender := range s.senders {
		if err := s.sendWithRetry(sender, message); err != nil {
			failures = append(failures, fmt.Errorf("%s: %w", sender.Name(), err))
		}
	}
	return errors.Join(failures...)
}

func (s *Service) sendWithRetry(sender Sender, message string) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = sender.Send(message)
		if lastErr == nil {
			s.log.Debug().Str("channel", sender.Name()).Msg("Notification sent")
			return nil
		}

		s.log.Warn().Err(lastErr).Str("channel", sender.Name()).Int("attempt", attempt).
			Msg("Notification attempt failed")
		if attempt < maxAttempts {
			time.Sleep(retryDelay)
		}
	}
	return lastErr
}
