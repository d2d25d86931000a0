// Package notify carries transient user notifications and the client-side
// rate-limit cooldown.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jasperwreed/astroguide/internal/client"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

const (
	DefaultToastDuration   = 2800 * time.Millisecond
	RateLimitToastDuration = 3500 * time.Millisecond
	DefaultCooldown        = 30 * time.Second
)

type Toast struct {
	Level    Level
	Message  string
	Duration time.Duration
}

// Sink displays toasts.
type Sink interface {
	Show(Toast)
}

type SinkFunc func(Toast)

func (f SinkFunc) Show(t Toast) { f(t) }

// LogSink writes toasts to the default slog logger.
type LogSink struct{}

func (LogSink) Show(t Toast) {
	level := slog.LevelInfo
	switch t.Level {
	case LevelWarning:
		level = slog.LevelWarn
	case LevelError:
		level = slog.LevelError
	}
	slog.Log(context.Background(), level, t.Message, "component", "astroguide.notify")
}

// Center turns request errors into toasts and tracks the rate-limit window.
type Center struct {
	mu             sync.Mutex
	sink           Sink
	cooldown       time.Duration
	now            func() time.Time
	rateLimitUntil time.Time
}

func NewCenter(sink Sink, cooldown time.Duration) *Center {
	if sink == nil {
		sink = LogSink{}
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Center{sink: sink, cooldown: cooldown, now: time.Now}
}

func (c *Center) Show(level Level, message string, d time.Duration) {
	if d <= 0 {
		d = DefaultToastDuration
	}
	c.sink.Show(Toast{Level: level, Message: message, Duration: d})
}

// NotifyError reports a request-level failure. A 429 opens the cooldown
// window, sized by Retry-After when the server sent one.
func (c *Center) NotifyError(err error) {
	if err == nil {
		return
	}

	apiErr, ok := client.AsAPIError(err)
	if ok && apiErr.IsRateLimited() {
		wait := c.cooldown
		if apiErr.RetryAfter > 0 {
			wait = apiErr.RetryAfter
		}

		c.mu.Lock()
		c.rateLimitUntil = c.now().Add(wait)
		c.mu.Unlock()

		c.Show(LevelWarning, "Too many requests, please try again later.", RateLimitToastDuration)
		return
	}

	message := err.Error()
	if ok && apiErr.Message != "" {
		message = apiErr.Message
	}
	if message == "" {
		message = "Request failed, please try again later."
	}
	c.Show(LevelError, message, DefaultToastDuration)
}

// RateLimited reports whether submissions are currently suppressed.
func (c *Center) RateLimited() bool {
	return c.RateLimitRemaining() > 0
}

// RateLimitRemaining is the time left in the cooldown window.
func (c *Center) RateLimitRemaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rateLimitUntil.IsZero() {
		return 0
	}
	remaining := c.rateLimitUntil.Sub(c.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RateLimitSeconds rounds the remaining cooldown up to whole seconds.
func (c *Center) RateLimitSeconds() int {
	remaining := c.RateLimitRemaining()
	return int((remaining + time.Second - 1) / time.Second)
}
