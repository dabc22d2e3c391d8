package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/nkoutso/walletcore/internal/domain"
	"github.com/nkoutso/walletcore/internal/ledger"
)

// WalletHandler serves the ledger read surface consumed by the balance
// figure and transaction list.
type WalletHandler struct {
	ledger *ledger.Ledger
}

func NewWalletHandler(l *ledger.Ledger) *WalletHandler {
	return &WalletHandler{ledger: l}
}

type walletResponse struct {
	Balance          decimal.Decimal      `json:"balance"`
	BalanceFormatted string               `json:"balance_formatted"`
	Transactions     []domain.Transaction `json:"transactions"`
}

func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	snap := h.ledger.Snapshot()
	RespondJSON(w, http.StatusOK, walletResponse{
		Balance:          snap.Balance,
		BalanceFormatted: domain.FormatEUR(snap.Balance),
		Transactions:     snap.Transactions,
	})
}
