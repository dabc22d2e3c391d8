// Package ledger holds the wallet's authoritative in-memory state: the
// current balance and the ordered transaction history.
package ledger

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/nkoutso/walletcore/internal/domain"
)

// Snapshot is an immutable view of the ledger handed to readers and
// subscribers.
type Snapshot struct {
	Balance      decimal.Decimal      `json:"balance"`
	Transactions []domain.Transaction `json:"transactions"`
}

// Ledger is the single writer of balance and history. Affordability is the
// caller's responsibility; the ledger enforces no floor and trusts that
// debits were pre-checked against the balance.
type Ledger struct {
	mu           sync.RWMutex
	seed         decimal.Decimal
	balance      decimal.Decimal
	transactions []domain.Transaction

	nextSubID   int
	subscribers map[int]func(Snapshot)
}

// New creates a ledger with the given opening balance and empty history.
func New(seed decimal.Decimal) *Ledger {
	return &Ledger{
		seed:        seed,
		balance:     seed,
		subscribers: make(map[int]func(Snapshot)),
	}
}

// AddTransaction records a new entry and atomically adjusts the balance:
// credit for receive, debit for send. The entry is prepended so the history
// stays newest-first. Amount must be positive by caller contract.
func (l *Ledger) AddTransaction(amount decimal.Decimal, title string, typ domain.TransactionType) domain.Transaction {
	tx := domain.NewTransaction(amount, title, typ)

	l.mu.Lock()
	if typ == domain.TransactionReceive {
		l.balance = l.balance.Add(amount)
	} else {
		l.balance = l.balance.Sub(amount)
	}
	l.transactions = append([]domain.Transaction{tx}, l.transactions...)
	snap := l.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(l.subscribers))
	for _, fn := range l.subscribers {
		subs = append(subs, fn)
	}
	l.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
	return tx
}

// Balance returns the current balance.
func (l *Ledger) Balance() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balance
}

// Seed returns the opening balance the ledger was created with.
func (l *Ledger) Seed() decimal.Decimal {
	return l.seed
}

// Transactions returns a copy of the history, newest first.
func (l *Ledger) Transactions() []domain.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Transaction, len(l.transactions))
	copy(out, l.transactions)
	return out
}

// Snapshot returns the balance and history as one consistent view.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshotLocked()
}

func (l *Ledger) snapshotLocked() Snapshot {
	txs := make([]domain.Transaction, len(l.transactions))
	copy(txs, l.transactions)
	return Snapshot{Balance: l.balance, Transactions: txs}
}

// Subscribe registers fn to run after every mutation with a fresh snapshot.
// The returned function removes the subscription. Callbacks run outside the
// ledger lock and must not call back into AddTransaction.
func (l *Ledger) Subscribe(fn func(Snapshot)) func() {
	l.mu.Lock()
	id := l.nextSubID
	l.nextSubID++
	l.subscribers[id] = fn
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.subscribers, id)
		l.mu.Unlock()
	}
}
