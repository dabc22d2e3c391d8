// Package gateway defines the remote transfer-execution boundary. A real
// backend integration substitutes the Gateway implementation; nothing else
// in the wallet knows how transfers are executed.
package gateway

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Payload is the request shape sent to the gateway.
type Payload struct {
	RecipientName    string          `json:"recipient_name"`
	RecipientAccount string          `json:"recipient_account"`
	Amount           decimal.Decimal `json:"amount"`
	Description      string          `json:"description,omitempty"`
}

// Error is a structured gateway failure. Message is user-facing.
type Error struct {
	Code    string `json:"code"`
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway: %s (%d): %s", e.Code, e.Status, e.Message)
}

// Gateway submits a transfer and reports the outcome. Submit has
// non-trivial latency and must be called off the interaction path; it
// honors context cancellation. A nil error means the transfer succeeded.
type Gateway interface {
	Submit(ctx context.Context, p Payload) error
}
