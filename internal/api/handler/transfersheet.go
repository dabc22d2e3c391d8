package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/nkoutso/walletcore/internal/gateway"
	"github.com/nkoutso/walletcore/internal/notification"
	"github.com/nkoutso/walletcore/internal/transferform"
)

// TransferSheetHandler feeds the transfer form controller the events the
// mobile shell would: field edits, amount commits, and the
// proceed/back/confirm/dismiss actions.
type TransferSheetHandler struct {
	controller *transferform.Controller
	notices    *notification.Recorder
}

func NewTransferSheetHandler(c *transferform.Controller, notices *notification.Recorder) *TransferSheetHandler {
	return &TransferSheetHandler{controller: c, notices: notices}
}

type sheetResponse struct {
	transferform.State
	LastNotice *notification.Notice `json:"last_notice,omitempty"`
}

func (h *TransferSheetHandler) respondState(w http.ResponseWriter, status int) {
	resp := sheetResponse{State: h.controller.State()}
	if h.notices != nil {
		if last, ok := h.notices.Last(); ok {
			resp.LastNotice = &last
		}
	}
	RespondJSON(w, status, resp)
}

// GetState returns the current form state, validation result, and the most
// recent notification.
func (h *TransferSheetHandler) GetState(w http.ResponseWriter, r *http.Request) {
	h.respondState(w, http.StatusOK)
}

type draftPatch struct {
	RecipientName *string `json:"recipient_name"`
	CountryCode   *string `json:"country_code"`
	LocalNumber   *string `json:"local_number"`
	LiveAmount    *string `json:"live_amount"`
	Description   *string `json:"description"`
}

// PatchDraft applies partial field updates. Tracked fields revalidate the
// draft; the live amount and description do not.
func (h *TransferSheetHandler) PatchDraft(w http.ResponseWriter, r *http.Request) {
	var patch draftPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		RespondError(w, r, http.StatusBadRequest, "invalid-body", "Invalid request body")
		return
	}

	if patch.RecipientName != nil {
		h.controller.SetRecipientName(*patch.RecipientName)
	}
	if patch.CountryCode != nil {
		h.controller.SetCountryCode(*patch.CountryCode)
	}
	if patch.LocalNumber != nil {
		h.controller.SetLocalNumber(*patch.LocalNumber)
	}
	if patch.LiveAmount != nil {
		h.controller.SetLiveAmount(*patch.LiveAmount)
	}
	if patch.Description != nil {
		h.controller.SetDescription(*patch.Description)
	}
	h.respondState(w, http.StatusOK)
}

// CommitAmount folds the live amount mirror into the committed amount
// (blur / slider release).
func (h *TransferSheetHandler) CommitAmount(w http.ResponseWriter, r *http.Request) {
	h.controller.CommitAmount()
	h.respondState(w, http.StatusOK)
}

type quickAmountRequest struct {
	Amount json.Number `json:"amount"`
}

// QuickAmount applies one of the quick-amount shortcuts.
func (h *TransferSheetHandler) QuickAmount(w http.ResponseWriter, r *http.Request) {
	var req quickAmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "invalid-body", "Invalid request body")
		return
	}
	amount, err := decimal.NewFromString(req.Amount.String())
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "invalid-amount", "Invalid quick amount")
		return
	}
	h.controller.ApplyQuickAmount(amount)
	h.respondState(w, http.StatusOK)
}

// Proceed moves to the confirmation view.
func (h *TransferSheetHandler) Proceed(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.Proceed(); err != nil {
		h.respondControllerError(w, r, err)
		return
	}
	h.respondState(w, http.StatusOK)
}

// Back returns to the form view, keeping the draft.
func (h *TransferSheetHandler) Back(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.Back(); err != nil {
		h.respondControllerError(w, r, err)
		return
	}
	h.respondState(w, http.StatusOK)
}

// Confirm executes the transfer. The request blocks for the gateway
// round-trip; dismissing the sheet meanwhile abandons the result.
func (h *TransferSheetHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.Confirm(r.Context()); err != nil {
		h.respondControllerError(w, r, err)
		return
	}
	h.respondState(w, http.StatusOK)
}

// Dismiss ends the form session and clears the draft.
func (h *TransferSheetHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	h.controller.Dismiss()
	h.respondState(w, http.StatusOK)
}

func (h *TransferSheetHandler) respondControllerError(w http.ResponseWriter, r *http.Request, err error) {
	var gwErr *gateway.Error
	switch {
	case errors.Is(err, transferform.ErrValidationFailed):
		RespondError(w, r, http.StatusUnprocessableEntity, "validation-failed", "Please fill all required fields and ensure amount is valid.")
	case errors.Is(err, transferform.ErrSubmissionInFlight):
		RespondError(w, r, http.StatusConflict, "submission-in-flight", err.Error())
	case errors.Is(err, transferform.ErrInvalidTransition):
		RespondError(w, r, http.StatusConflict, "invalid-transition", err.Error())
	case errors.Is(err, transferform.ErrOffline):
		RespondError(w, r, http.StatusServiceUnavailable, "offline", "No internet connection")
	case errors.Is(err, transferform.ErrStaleSession):
		RespondError(w, r, http.StatusGone, "session-dismissed", "The form session was dismissed")
	case errors.As(err, &gwErr):
		RespondError(w, r, gwErr.Status, "transfer-rejected", gwErr.Message)
	default:
		RespondError(w, r, http.StatusBadGateway, "transfer-failed", "Transfer failed. Please try again.")
	}
}
