package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType conveys the direction of a ledger entry. Amounts are
// always positive; the type carries the sign.
type TransactionType string

const (
	TransactionSend    TransactionType = "send"
	TransactionReceive TransactionType = "receive"
)

// Valid reports whether t is one of the known directions.
func (t TransactionType) Valid() bool {
	return t == TransactionSend || t == TransactionReceive
}

// Transaction is a single immutable ledger entry.
type Transaction struct {
	ID     string          `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	Date   string          `json:"date"` // RFC 3339
	Title  string          `json:"title"`
	Type   TransactionType `json:"type"`
}

// NewTransaction creates an entry with a fresh ID and the current timestamp.
func NewTransaction(amount decimal.Decimal, title string, typ TransactionType) Transaction {
	return Transaction{
		ID:     uuid.NewString(),
		Amount: amount,
		Date:   time.Now().UTC().Format(time.RFC3339),
		Title:  title,
		Type:   typ,
	}
}
