package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Sentinel inputs the mock rejects. They exist purely to exercise the
// failure-handling path; a real gateway replaces them with remote checks.
const (
	SentinelWrongRecipient = "wrong recipient"
	SentinelWrongAccount   = "+306900000000"
	SentinelServerError    = "server error"
)

// DefaultLatency approximates the observed round-trip of the real backend.
const DefaultLatency = 3 * time.Second

// MockGateway simulates the transfer backend: it waits for the configured
// latency, then succeeds unless the payload matches one of the sentinels.
type MockGateway struct {
	Latency time.Duration
}

// NewMockGateway creates a MockGateway with the default latency.
func NewMockGateway() *MockGateway {
	return &MockGateway{Latency: DefaultLatency}
}

// Submit simulates executing the transfer. It returns a typed *Error for
// sentinel payloads and a wrapped context error if the caller gave up
// before the simulated backend responded.
func (g *MockGateway) Submit(ctx context.Context, p Payload) error {
	select {
	case <-time.After(g.Latency):
	case <-ctx.Done():
		return fmt.Errorf("gateway call canceled: %w", ctx.Err())
	}

	switch {
	case strings.EqualFold(p.RecipientName, SentinelWrongRecipient):
		return &Error{Code: "INVALID_RECIPIENT_NAME", Status: 400, Message: "Wrong Recipient Name"}
	case p.RecipientAccount == SentinelWrongAccount:
		return &Error{Code: "RECIPIENT_ACCOUNT_NOT_FOUND", Status: 404, Message: "Wrong Recipient Account"}
	case strings.EqualFold(p.RecipientName, SentinelServerError):
		return &Error{Code: "INTERNAL_SERVER_ERROR", Status: 500, Message: "Service Is Unavailable"}
	}
	return nil
}
