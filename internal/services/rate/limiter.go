package rate

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	loginMinuteWindow = time.Minute
	loginHourWindow   = time.Hour
)

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	WindowState(ctx context.Context, key string) (int64, time.Duration, error)
	ResetWindow(ctx context.Context, keys ...string) error
}

// Limiter throttles login attempts per subject over a one minute and a one
// hour window. A zero limit disables that window.
type Limiter struct {
	store     WindowStore
	perMinute int
	perHour   int
}

func NewLimiter(store WindowStore, perMinute, perHour int) *Limiter {
	if perMinute < 0 {
		perMinute = 0
	}
	if perHour < 0 {
		perHour = 0
	}

	return &Limiter{
		store:     store,
		perMinute: perMinute,
		perHour:   perHour,
	}
}

// AllowLogin counts an attempt and returns the seconds to wait when the
// subject is over either limit.
func (l *Limiter) AllowLogin(ctx context.Context, subject string) (int64, bool, error) {
	subject = normalizeSubject(subject)
	if subject == "" {
		return 0, false, fmt.Errorf("login subject is required")
	}
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}

	retryAfterSec := int64(0)

	if l.perMinute > 0 {
		count, ttl, err := l.store.IncrementWindow(ctx, minuteKey(subject), loginMinuteWindow)
		if err != nil {
			return 0, false, err
		}
		if count > int64(l.perMinute) {
			retryAfterSec = max(retryAfterSec, ceilSeconds(ttl))
		}
	}

	if l.perHour > 0 {
		count, ttl, err := l.store.IncrementWindow(ctx, hourKey(subject), loginHourWindow)
		if err != nil {
			return 0, false, err
		}
		if count > int64(l.perHour) {
			retryAfterSec = max(retryAfterSec, ceilSeconds(ttl))
		}
	}

	if retryAfterSec > 0 {
		return retryAfterSec, false, nil
	}

	return 0, true, nil
}

func (l *Limiter) RetryAfterLogin(ctx context.Context, subject string) (int64, error) {
	subject = normalizeSubject(subject)
	if subject == "" {
		return 0, fmt.Errorf("login subject is required")
	}
	if l.store == nil {
		return 0, fmt.Errorf("rate limiter store is nil")
	}

	retryAfterSec := int64(0)

	if l.perMinute > 0 {
		count, ttl, err := l.store.WindowState(ctx, minuteKey(subject))
		if err != nil {
			return 0, err
		}
		if count >= int64(l.perMinute) {
			retryAfterSec = max(retryAfterSec, ceilSeconds(ttl))
		}
	}

	if l.perHour > 0 {
		count, ttl, err := l.store.WindowState(ctx, hourKey(subject))
		if err != nil {
			return 0, err
		}
		if count >= int64(l.perHour) {
			retryAfterSec = max(retryAfterSec, ceilSeconds(ttl))
		}
	}

	return retryAfterSec, nil
}

// ResetLogin clears the subject's windows after a successful login.
func (l *Limiter) ResetLogin(ctx context.Context, subject string) error {
	subject = normalizeSubject(subject)
	if subject == "" {
		return nil
	}
	if l.store == nil {
		return fmt.Errorf("rate limiter store is nil")
	}
	return l.store.ResetWindow(ctx, minuteKey(subject), hourKey(subject))
}

func normalizeSubject(subject string) string {
	return strings.ToLower(strings.TrimSpace(subject))
}

func minuteKey(subject string) string {
	return "rate:login:min:" + subject
}

func hourKey(subject string) string {
	return "rate:login:hour:" + subject
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	if sec <= 0 {
		sec = 1
	}
	return sec
}
