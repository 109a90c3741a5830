package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	retryAttempts = 3
	retryDelay    = 2 * time.Second
)

// sendSleep is swapped out in tests to avoid real backoff waits.
var sendSleep = time.Sleep

// Messenger sends a single message. *Client implements it.
type Messenger interface {
	SendMessage(ctx context.Context, text string) error
}

// Sender paces deliveries so batches of new posts do not trip the Bot API
// flood limits, retries transient failures, and journals every message
// that the API accepted.
type Sender struct {
	client  Messenger
	journal *Journal
	limiter *rate.Limiter
}

// NewSender builds a sender that allows one message per delay. A nil
// journal disables journaling.
func NewSender(client Messenger, journal *Journal, delay time.Duration) *Sender {
	if delay <= 0 {
		delay = time.Second
	}
	return &Sender{
		client:  client,
		journal: journal,
		limiter: rate.NewLimiter(rate.Every(delay), 1),
	}
}

// Send delivers one message, waiting out the pacing interval first. The
// message is journaled only after the API accepted it, so the journal
// never claims more than was actually sent.
func (s *Sender) Send(ctx context.Context, text string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	if err := s.sendWithRetry(ctx, text); err != nil {
		return err
	}
	if s.journal != nil {
		if err := s.journal.Append(text); err != nil {
			slog.Warn("sent message could not be journaled", "error", err)
		}
	}
	return nil
}

func (s *Sender) sendWithRetry(ctx context.Context, text string) error {
	var lastErr error
	for attempt := 0; attempt < retryAttempts; attempt++ {
		if attempt > 0 {
			sendSleep(retryDelay * time.Duration(attempt))
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		err := s.client.SendMessage(ctx, text)
		if err == nil {
			return nil
		}
		lastErr = err
		if !isRetryableError(err) {
			return err
		}
		slog.Warn("send failed, will retry", "attempt", attempt+1, "error", err)
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// isRetryableError reports whether a send is worth repeating. Rejections
// the API will repeat verbatim, like a blocked bot or an oversized
// message, are not.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, permanent := range []string{
		"chat not found",
		"bot was blocked",
		"user is deactivated",
		"message is too long",
		"bad request",
	} {
		if strings.Contains(msg, permanent) {
			return false
		}
	}
	return true
}
