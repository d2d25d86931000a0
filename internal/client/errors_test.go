package client

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{name: "empty", value: "", want: 0},
		{name: "seconds", value: "45", want: 45 * time.Second},
		{name: "negative seconds", value: "-3", want: 0},
		{name: "http date in the future", value: now.Add(90 * time.Second).Format(http.TimeFormat), want: 90 * time.Second},
		{name: "http date in the past", value: now.Add(-time.Minute).Format(http.TimeFormat), want: 0},
		{name: "garbage", value: "soon", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseRetryAfter(tt.value, now); got != tt.want {
				t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestAsAPIErrorThroughWrapping(t *testing.T) {
	base := &APIError{Status: http.StatusTooManyRequests, Code: CodeRateLimited}
	wrapped := fmt.Errorf("submit failed: %w", base)

	if !IsRateLimited(wrapped) {
		t.Error("wrapped 429 should be rate limited")
	}
	if IsRateLimited(errors.New("plain")) {
		t.Error("plain error should not be rate limited")
	}
}
