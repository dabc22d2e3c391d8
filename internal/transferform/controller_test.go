package transferform

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nkoutso/walletcore/internal/domain"
	"github.com/nkoutso/walletcore/internal/gateway"
	"github.com/nkoutso/walletcore/internal/ledger"
	"github.com/nkoutso/walletcore/internal/notification"
	"github.com/nkoutso/walletcore/internal/schema"
)

// stubGateway records submissions and returns a scripted outcome. If
// release is set, Submit blocks until it is closed, letting tests hold a
// submission in flight.
type stubGateway struct {
	mu      sync.Mutex
	err     error
	release chan struct{}
	calls   []gateway.Payload
}

func (g *stubGateway) Submit(_ context.Context, p gateway.Payload) error {
	g.mu.Lock()
	g.calls = append(g.calls, p)
	release := g.release
	err := g.err
	g.mu.Unlock()

	if release != nil {
		<-release
	}
	return err
}

func (g *stubGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

type panicGateway struct{}

func (panicGateway) Submit(context.Context, gateway.Payload) error { panic("gateway blew up") }

func newController(t *testing.T, balance string, gw gateway.Gateway, opts ...Option) (*Controller, *ledger.Ledger, *notification.Recorder) {
	t.Helper()
	l := ledger.New(decimal.RequireFromString(balance))
	rec := &notification.Recorder{}
	c := New(schema.New(8, "GR"), l, gw, rec, zap.NewNop(), opts...)
	return c, l, rec
}

func fillValidDraft(c *Controller) {
	c.SetRecipientName("Maria Papadopoulou")
	c.SetCountryCode("+30")
	c.SetLocalNumber("6912345678")
	c.SetLiveAmount("100")
	c.CommitAmount()
}

func waitForSubmitting(t *testing.T, c *Controller) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.State().Submitting {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("controller never entered submitting")
}

func TestInitialState(t *testing.T) {
	c, _, _ := newController(t, "1500.75", &stubGateway{})
	st := c.State()

	assert.Equal(t, ViewForm, st.View)
	assert.False(t, st.Submitting)
	assert.False(t, st.CanProceed)
	assert.Empty(t, st.Draft.RecipientName)
	assert.Equal(t, DefaultCountryCode, st.Draft.CountryCode)
}

func TestSuccessfulTransferFlow(t *testing.T) {
	gw := &stubGateway{}
	c, l, rec := newController(t, "1500.75", gw)

	fillValidDraft(c)
	st := c.State()
	require.True(t, st.Errors.Valid(), "unexpected errors: %v", st.Errors)
	require.True(t, st.CanProceed)

	require.NoError(t, c.Proceed())
	assert.Equal(t, ViewConfirmation, c.State().View)

	require.NoError(t, c.Confirm(context.Background()))

	// Ledger reconciled strictly after gateway success.
	assert.True(t, l.Balance().Equal(decimal.RequireFromString("1400.75")), "balance = %s", l.Balance())
	txs := l.Transactions()
	require.NotEmpty(t, txs)
	assert.Equal(t, "To: Maria Papadopoulou", txs[0].Title)
	assert.Equal(t, domain.TransactionSend, txs[0].Type)
	assert.True(t, txs[0].Amount.Equal(decimal.NewFromInt(100)))

	// Session ended: empty form again.
	st = c.State()
	assert.Equal(t, ViewForm, st.View)
	assert.Empty(t, st.Draft.RecipientName)
	assert.Empty(t, st.Draft.Amount)
	assert.False(t, st.Submitting)

	notice, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, notification.KindSuccess, notice.Kind)
	assert.Equal(t, "Money transferred successfully!", notice.Message)
}

func TestGatewayRejectionKeepsConfirmationView(t *testing.T) {
	gw := &gateway.MockGateway{Latency: time.Millisecond}
	c, l, rec := newController(t, "1500.75", gw)

	c.SetRecipientName("wrong recipient")
	c.SetCountryCode("+30")
	c.SetLocalNumber("6912345678")
	c.SetLiveAmount("50")
	c.CommitAmount()

	require.NoError(t, c.Proceed())
	err := c.Confirm(context.Background())

	var gwErr *gateway.Error
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "INVALID_RECIPIENT_NAME", gwErr.Code)
	assert.Equal(t, 400, gwErr.Status)

	// No ledger mutation on failure; user stays on confirmation to retry.
	assert.True(t, l.Balance().Equal(decimal.RequireFromString("1500.75")))
	assert.Empty(t, l.Transactions())
	st := c.State()
	assert.Equal(t, ViewConfirmation, st.View)
	assert.False(t, st.Submitting)
	assert.Equal(t, "wrong recipient", st.Draft.RecipientName)

	notice, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, notification.KindError, notice.Kind)
	assert.Equal(t, "Wrong Recipient Name", notice.Message)
}

func TestUnstructuredGatewayErrorGetsGenericMessage(t *testing.T) {
	gw := &stubGateway{err: errors.New("connection reset")}
	c, _, rec := newController(t, "1500.75", gw)

	fillValidDraft(c)
	require.NoError(t, c.Proceed())
	require.Error(t, c.Confirm(context.Background()))

	notice, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, notification.KindError, notice.Kind)
	assert.Equal(t, "Transfer failed. Please try again.", notice.Message)
}

func TestEmptyAmountParsesToZero(t *testing.T) {
	c, _, _ := newController(t, "1500.75", &stubGateway{})

	c.SetRecipientName("Maria Papadopoulou")
	c.SetCountryCode("+30")
	c.SetLocalNumber("6912345678")
	c.SetLiveAmount("")
	c.CommitAmount()

	st := c.State()
	assert.Equal(t, "Amount must be greater than 0", st.Errors.First(schema.FieldAmount))
	assert.False(t, st.CanProceed)
	assert.ErrorIs(t, c.Proceed(), ErrValidationFailed)

	// A nonzero garbage string hits the same simplification.
	c.SetLiveAmount("12abc")
	c.CommitAmount()
	assert.Equal(t, "Amount must be greater than 0", c.State().Errors.First(schema.FieldAmount))
}

func TestAffordabilityLayeredOnPositivity(t *testing.T) {
	c, _, _ := newController(t, "1500.75", &stubGateway{})

	fillValidDraft(c)
	c.SetLiveAmount("2000")
	c.CommitAmount()

	st := c.State()
	assert.Equal(t, "Amount exceeds available balance", st.Errors.First(schema.FieldAmount))
	assert.False(t, st.CanProceed)
	assert.ErrorIs(t, c.Proceed(), ErrValidationFailed)

	// The exact balance is affordable.
	c.SetLiveAmount("1500.75")
	c.CommitAmount()
	st = c.State()
	assert.Empty(t, st.Errors.First(schema.FieldAmount))
	assert.True(t, st.CanProceed)
}

func TestShortRecipientNameBlocksProceed(t *testing.T) {
	c, _, _ := newController(t, "1500.75", &stubGateway{})

	fillValidDraft(c)
	c.SetRecipientName("Maria")

	st := c.State()
	assert.NotEmpty(t, st.Errors.First(schema.FieldRecipientName))
	assert.False(t, st.CanProceed)
	assert.ErrorIs(t, c.Proceed(), ErrValidationFailed)
}

func TestLiveAmountDoesNotValidateUntilCommit(t *testing.T) {
	c, _, _ := newController(t, "1500.75", &stubGateway{})
	fillValidDraft(c)

	// Mid-gesture updates touch only the mirror.
	c.SetLiveAmount("2000")
	st := c.State()
	assert.Equal(t, "100", st.Draft.Amount)
	assert.Equal(t, "2000", st.Draft.LiveAmount)
	assert.Empty(t, st.Errors.First(schema.FieldAmount))

	c.CommitAmount()
	assert.Equal(t, "Amount exceeds available balance", c.State().Errors.First(schema.FieldAmount))
}

func TestDescriptionNeverValidated(t *testing.T) {
	c, _, _ := newController(t, "1500.75", &stubGateway{})
	fillValidDraft(c)

	c.SetDescription("")
	assert.True(t, c.State().Errors.Valid())
	c.SetDescription("rent for September, thanks!")
	assert.True(t, c.State().Errors.Valid())
}

func TestQuickAmountCommitsDirectly(t *testing.T) {
	c, _, _ := newController(t, "1500.75", &stubGateway{})
	fillValidDraft(c)

	c.ApplyQuickAmount(decimal.NewFromInt(250))
	st := c.State()
	assert.Equal(t, "250", st.Draft.Amount)
	assert.Equal(t, "250", st.Draft.LiveAmount)
	assert.True(t, st.CanProceed)
}

func TestBackPreservesDraft(t *testing.T) {
	c, _, _ := newController(t, "1500.75", &stubGateway{})
	fillValidDraft(c)
	require.NoError(t, c.Proceed())

	require.NoError(t, c.Back())
	st := c.State()
	assert.Equal(t, ViewForm, st.View)
	assert.Equal(t, "Maria Papadopoulou", st.Draft.RecipientName)
	assert.Equal(t, "100", st.Draft.Amount)
}

func TestDismissClearsDraft(t *testing.T) {
	c, _, _ := newController(t, "1500.75", &stubGateway{})
	fillValidDraft(c)
	require.NoError(t, c.Proceed())

	c.Dismiss()
	st := c.State()
	assert.Equal(t, ViewForm, st.View)
	assert.Empty(t, st.Draft.RecipientName)
	assert.Empty(t, st.Draft.Amount)
}

func TestInvalidTransitions(t *testing.T) {
	c, _, _ := newController(t, "1500.75", &stubGateway{})

	assert.ErrorIs(t, c.Back(), ErrInvalidTransition)
	assert.ErrorIs(t, c.Confirm(context.Background()), ErrInvalidTransition)

	fillValidDraft(c)
	require.NoError(t, c.Proceed())
	assert.ErrorIs(t, c.Proceed(), ErrInvalidTransition)
}

func TestDoubleConfirmRejected(t *testing.T) {
	gw := &stubGateway{release: make(chan struct{})}
	c, _, _ := newController(t, "1500.75", gw)
	fillValidDraft(c)
	require.NoError(t, c.Proceed())

	done := make(chan error, 1)
	go func() { done <- c.Confirm(context.Background()) }()
	waitForSubmitting(t, c)

	assert.ErrorIs(t, c.Confirm(context.Background()), ErrSubmissionInFlight)
	assert.ErrorIs(t, c.Back(), ErrSubmissionInFlight)
	assert.Equal(t, 1, gw.callCount())

	close(gw.release)
	require.NoError(t, <-done)
}

func TestDismissDuringFlightDiscardsLateResponse(t *testing.T) {
	gw := &stubGateway{release: make(chan struct{})}
	c, l, rec := newController(t, "1500.75", gw)
	fillValidDraft(c)
	require.NoError(t, c.Proceed())

	done := make(chan error, 1)
	go func() { done <- c.Confirm(context.Background()) }()
	waitForSubmitting(t, c)

	c.Dismiss()
	close(gw.release) // gateway "succeeds" after the session ended

	assert.ErrorIs(t, <-done, ErrStaleSession)

	// The stale success must not touch the ledger or notify the user.
	assert.True(t, l.Balance().Equal(decimal.RequireFromString("1500.75")))
	assert.Empty(t, l.Transactions())
	_, ok := rec.Last()
	assert.False(t, ok)
	assert.Equal(t, ViewForm, c.State().View)
}

func TestConfirmRefusedWhileOffline(t *testing.T) {
	gw := &stubGateway{}
	c, _, _ := newController(t, "1500.75", gw, WithConnectivity(func() bool { return false }))
	fillValidDraft(c)
	require.NoError(t, c.Proceed())

	assert.ErrorIs(t, c.Confirm(context.Background()), ErrOffline)
	assert.Equal(t, 0, gw.callCount())
}

func TestGatewayPanicIsContained(t *testing.T) {
	c, l, rec := newController(t, "1500.75", panicGateway{})
	fillValidDraft(c)
	require.NoError(t, c.Proceed())

	err := c.Confirm(context.Background())
	require.Error(t, err)

	st := c.State()
	assert.False(t, st.Submitting)
	assert.Equal(t, ViewConfirmation, st.View)
	assert.True(t, l.Balance().Equal(decimal.RequireFromString("1500.75")))

	notice, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, notification.KindError, notice.Kind)
	assert.Equal(t, "Transfer failed. Please try again.", notice.Message)
}

func TestRetryAfterGatewayFailureSucceeds(t *testing.T) {
	gw := &stubGateway{err: &gateway.Error{Code: "INTERNAL_SERVER_ERROR", Status: 500, Message: "Service Is Unavailable"}}
	c, l, _ := newController(t, "1500.75", gw)
	fillValidDraft(c)
	require.NoError(t, c.Proceed())

	require.Error(t, c.Confirm(context.Background()))
	assert.Equal(t, ViewConfirmation, c.State().View)

	gw.mu.Lock()
	gw.err = nil
	gw.mu.Unlock()

	require.NoError(t, c.Confirm(context.Background()))
	assert.True(t, l.Balance().Equal(decimal.RequireFromString("1400.75")))
}

func TestValidationReactsToDraftEdits(t *testing.T) {
	c, _, _ := newController(t, "1500.75", &stubGateway{})

	c.SetRecipientName("Maria Papadopoulou")
	assert.NotEmpty(t, c.State().Errors.First(schema.FieldRecipientAccount))

	c.SetCountryCode("+30")
	c.SetLocalNumber("6912345678")
	assert.Empty(t, c.State().Errors.First(schema.FieldRecipientAccount))

	c.SetLocalNumber("123")
	assert.Equal(t, "Please add a valid phone number", c.State().Errors.First(schema.FieldRecipientAccount))
}
