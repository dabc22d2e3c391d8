// Package transferform implements the transfer sheet's state machine: it
// owns the draft, live-validates it, moves between the form and
// confirmation views, orchestrates submission against the gateway, and
// reconciles the ledger on success.
package transferform

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/nkoutso/walletcore/internal/domain"
	"github.com/nkoutso/walletcore/internal/gateway"
	"github.com/nkoutso/walletcore/internal/ledger"
	"github.com/nkoutso/walletcore/internal/notification"
	"github.com/nkoutso/walletcore/internal/observability"
	"github.com/nkoutso/walletcore/internal/schema"
)

var (
	ErrValidationFailed   = errors.New("draft failed validation")
	ErrInvalidTransition  = errors.New("invalid view transition")
	ErrSubmissionInFlight = errors.New("a submission is already in flight")
	ErrOffline            = errors.New("no network connectivity")
	ErrStaleSession       = errors.New("form session was dismissed")
)

const (
	msgAmountExceedsBalance = "Amount exceeds available balance"
	msgTransferSucceeded    = "Money transferred successfully!"
	msgTransferFailed       = "Transfer failed. Please try again."
)

// Connectivity reports whether the device is online. The confirm action is
// refused while offline, mirroring the mobile shell's connectivity gate.
type Connectivity func() bool

// State is a read-only snapshot of the controller handed to the display
// layer.
type State struct {
	View       View            `json:"view"`
	Submitting bool            `json:"submitting"`
	Draft      Draft           `json:"draft"`
	Errors     schema.Result   `json:"errors"`
	CanProceed bool            `json:"can_proceed"`
	Balance    decimal.Decimal `json:"balance"`
}

// Controller is the transfer form state machine. All methods are safe for
// concurrent use; the gateway call is the only point where the internal
// lock is released mid-operation.
type Controller struct {
	schema   *schema.Schema
	ledger   *ledger.Ledger
	gateway  gateway.Gateway
	notifier notification.Notifier
	online   Connectivity
	logger   *zap.Logger

	mu         sync.Mutex
	view       View
	draft      Draft
	errs       schema.Result
	submitting bool
	session    uuid.UUID
}

// Option configures a Controller.
type Option func(*Controller)

// WithConnectivity injects the online check. Without it the controller
// assumes it is always online.
func WithConnectivity(fn Connectivity) Option {
	return func(c *Controller) { c.online = fn }
}

// New creates a controller showing an empty form.
func New(s *schema.Schema, l *ledger.Ledger, gw gateway.Gateway, n notification.Notifier, logger *zap.Logger, opts ...Option) *Controller {
	c := &Controller{
		schema:   s,
		ledger:   l,
		gateway:  gw,
		notifier: n,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.resetLocked()
	return c
}

// SetRecipientName updates the name field and revalidates.
func (c *Controller) SetRecipientName(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.RecipientName = v
	c.revalidateLocked()
}

// SetCountryCode updates the phone prefix and revalidates.
func (c *Controller) SetCountryCode(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.CountryCode = v
	c.revalidateLocked()
}

// SetLocalNumber updates the local phone number and revalidates.
func (c *Controller) SetLocalNumber(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.LocalNumber = v
	c.revalidateLocked()
}

// SetDescription updates the optional note. Description is unconstrained
// and never triggers revalidation.
func (c *Controller) SetDescription(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Description = v
}

// SetLiveAmount mirrors continuous amount input without committing it.
// No validation runs until CommitAmount.
func (c *Controller) SetLiveAmount(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.LiveAmount = v
}

// CommitAmount folds the live mirror into the committed amount. Called on
// blur or on discrete gesture completion (slider release), never per
// keystroke.
func (c *Controller) CommitAmount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Amount = c.draft.LiveAmount
	c.revalidateLocked()
}

// ApplyQuickAmount sets the amount directly from a quick-amount shortcut.
// Amounts above the balance are still applied; validation surfaces the
// affordability error inline.
func (c *Controller) ApplyQuickAmount(v decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Amount = v.String()
	c.draft.LiveAmount = c.draft.Amount
	c.revalidateLocked()
}

// Proceed moves from the form to the confirmation view. It is refused
// while validation errors exist or the amount is outside (0, balance].
func (c *Controller) Proceed() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !canTransition(c.view, ViewConfirmation) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.view, ViewConfirmation)
	}
	c.revalidateLocked()
	if !c.canProceedLocked() {
		return ErrValidationFailed
	}
	c.transitionLocked(ViewConfirmation)
	return nil
}

// Back returns from confirmation to the form, preserving the draft. It is
// refused while a submission is in flight.
func (c *Controller) Back() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.submitting {
		return ErrSubmissionInFlight
	}
	if !canTransition(c.view, ViewForm) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.view, ViewForm)
	}
	c.transitionLocked(ViewForm)
	return nil
}

// Confirm submits the transfer. It blocks for the gateway round-trip, so
// callers run it off the interaction path (an HTTP handler goroutine is
// fine). Exactly one submission may be in flight per session.
//
// On success the ledger is debited, a success notice is emitted, and the
// session ends with a full reset. On a gateway failure the draft and
// confirmation view are kept so the user can retry or go back. A response
// arriving after the session was dismissed is discarded.
func (c *Controller) Confirm(ctx context.Context) error {
	c.mu.Lock()
	if c.view != ViewConfirmation {
		c.mu.Unlock()
		return fmt.Errorf("%w: confirm is only available from %s", ErrInvalidTransition, ViewConfirmation)
	}
	if c.submitting {
		c.mu.Unlock()
		return ErrSubmissionInFlight
	}
	if c.online != nil && !c.online() {
		c.mu.Unlock()
		return ErrOffline
	}
	c.revalidateLocked()
	if !c.canProceedLocked() {
		c.mu.Unlock()
		return ErrValidationFailed
	}

	c.submitting = true
	token := c.session
	payload := gateway.Payload{
		RecipientName:    c.draft.RecipientName,
		RecipientAccount: c.draft.RecipientAccount(),
		Amount:           domain.ParseAmount(c.draft.Amount),
		Description:      c.draft.Description,
	}
	c.mu.Unlock()

	err := c.submit(ctx, payload)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != token {
		// The sheet was dismissed while the gateway was in flight. The
		// session that asked for this result no longer exists: no ledger
		// write, no notification.
		observability.IncrementStaleResponse()
		c.logger.Info("discarding stale gateway response",
			zap.String("session", token.String()),
			zap.Error(err),
		)
		return ErrStaleSession
	}

	if err == nil {
		c.ledger.AddTransaction(payload.Amount, "To: "+payload.RecipientName, domain.TransactionSend)
		c.notifier.Display(notification.KindSuccess, "Success", msgTransferSucceeded)
		observability.IncrementSubmission("success")
		c.logger.Info("transfer completed",
			zap.String("recipient", payload.RecipientName),
			zap.String("amount", payload.Amount.String()),
		)
		c.resetLocked()
		return nil
	}

	c.submitting = false

	var gwErr *gateway.Error
	if errors.As(err, &gwErr) {
		c.notifier.Display(notification.KindError, "Transfer Failed", gwErr.Message)
		observability.IncrementSubmission("gateway_error")
		c.logger.Warn("transfer rejected by gateway",
			zap.String("code", gwErr.Code),
			zap.Int("status", gwErr.Status),
		)
	} else {
		c.notifier.Display(notification.KindError, "Transfer Failed", msgTransferFailed)
		observability.IncrementSubmission("error")
		c.logger.Error("transfer failed", zap.Error(err))
	}
	return err
}

// submit shields the session from a panicking gateway implementation.
func (c *Controller) submit(ctx context.Context, payload gateway.Payload) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("gateway panic: %v", rec)
		}
	}()
	return c.gateway.Submit(ctx, payload)
}

// Dismiss ends the session from any state: the draft is cleared, the view
// returns to the form, and the session token rotates so any in-flight
// gateway response is discarded on arrival.
func (c *Controller) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

// State returns a snapshot for the display layer.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	errs := make(schema.Result, len(c.errs))
	for field, msgs := range c.errs {
		errs[field] = append([]string(nil), msgs...)
	}
	return State{
		View:       c.view,
		Submitting: c.submitting,
		Draft:      c.draft,
		Errors:     errs,
		CanProceed: c.canProceedLocked(),
		Balance:    c.ledger.Balance(),
	}
}

func (c *Controller) transitionLocked(next View) {
	observability.IncrementViewTransition(string(c.view), string(next))
	c.view = next
}

// revalidateLocked recomputes the validation result from the committed
// draft and layers the affordability check on top of the schema's
// positivity check.
func (c *Controller) revalidateLocked() {
	parsed := domain.ParseAmount(c.draft.Amount)
	res := c.schema.Validate(schema.Draft{
		RecipientName:    c.draft.RecipientName,
		RecipientAccount: c.draft.RecipientAccount(),
		Amount:           parsed,
	})
	if res.First(schema.FieldAmount) == "" && parsed.GreaterThan(c.ledger.Balance()) {
		res.Add(schema.FieldAmount, msgAmountExceedsBalance)
	}
	c.errs = res
}

func (c *Controller) canProceedLocked() bool {
	if !c.errs.Valid() {
		return false
	}
	if strings.TrimSpace(c.draft.Amount) == "" {
		return false
	}
	parsed := domain.ParseAmount(c.draft.Amount)
	return parsed.IsPositive() && parsed.LessThanOrEqual(c.ledger.Balance())
}

func (c *Controller) resetLocked() {
	c.view = ViewForm
	c.draft = emptyDraft()
	c.submitting = false
	c.session = uuid.New()
	c.revalidateLocked()
}
