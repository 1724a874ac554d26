package billing

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/fabrictrade/backend/internal/domain/billing"
	"github.com/fabrictrade/backend/internal/domain/shared"
	"github.com/fabrictrade/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) Record(ctx context.Context, ev PaymentEvent) (*RecordResult, error) {
	args := m.Called(ctx, ev)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RecordResult), args.Error(1)
}

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) Reserve(ctx context.Context, key, fingerprint string, ttl time.Duration) ([]byte, string, bool, error) {
	args := m.Called(ctx, key, fingerprint, ttl)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Bool(2), args.Error(3)
	}
	return args.Get(0).([]byte), args.String(1), args.Bool(2), args.Error(3)
}

func (m *MockIdempotencyStore) Complete(ctx context.Context, key, fingerprint string, response []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, fingerprint, response, ttl)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func samplePaymentRequest() RecordPaymentRequest {
	return RecordPaymentRequest{
		CustomerID: uuid.New(),
		Amount:     decimal.NewFromInt(500),
		Method:     "upi",
	}
}

func TestPaymentService_WithoutKey(t *testing.T) {
	ctx := context.Background()
	rec := new(MockRecorder)
	idem := new(MockIdempotencyStore)
	svc := NewPaymentService(rec, nil, idem, time.Hour, zap.NewNop())

	req := samplePaymentRequest()
	staff := uuid.New()
	want := &RecordResult{Mode: ModeBulk, Amount: req.Amount}
	rec.On("Record", ctx, mock.MatchedBy(func(ev PaymentEvent) bool {
		return ev.CustomerID == req.CustomerID && ev.Method == billing.PaymentMethodUPI && *ev.RecordedBy == staff
	})).Return(want, nil)

	got, err := svc.RecordPayment(ctx, "", req, &staff)
	require.NoError(t, err)
	assert.Same(t, want, got)
	idem.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_FirstUseStoresResult(t *testing.T) {
	ctx := context.Background()
	rec := new(MockRecorder)
	idem := new(MockIdempotencyStore)
	svc := NewPaymentService(rec, nil, idem, time.Hour, zap.NewNop())

	req := samplePaymentRequest()
	result := &RecordResult{Mode: ModeBulk, Amount: req.Amount, TotalApplied: req.Amount, Remainder: decimal.Zero}
	idem.On("Reserve", ctx, "payment:abc", req.Fingerprint(), time.Hour).Return(nil, "", true, nil)
	rec.On("Record", ctx, mock.Anything).Return(result, nil)
	idem.On("Complete", ctx, "payment:abc", req.Fingerprint(), mock.Anything, time.Hour).Return(nil)

	got, err := svc.RecordPayment(ctx, "abc", req, nil)
	require.NoError(t, err)
	assert.Same(t, result, got)
	idem.AssertExpectations(t)
}

func TestPaymentService_ReplaysCompletedKey(t *testing.T) {
	ctx := context.Background()
	rec := new(MockRecorder)
	idem := new(MockIdempotencyStore)
	svc := NewPaymentService(rec, nil, idem, time.Hour, zap.NewNop())

	prior := RecordResult{Mode: ModeSingle, Amount: decimal.NewFromInt(500), PaymentIDs: []uuid.UUID{uuid.New()}}
	payload, err := json.Marshal(prior)
	require.NoError(t, err)
	req := samplePaymentRequest()
	idem.On("Reserve", ctx, "payment:abc", req.Fingerprint(), time.Hour).Return(payload, req.Fingerprint(), false, nil)

	got, err := svc.RecordPayment(ctx, "abc", req, nil)
	require.NoError(t, err)
	assert.Equal(t, prior.PaymentIDs, got.PaymentIDs)
	assert.True(t, got.Amount.Equal(prior.Amount))
	rec.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestPaymentService_KeyInFlight(t *testing.T) {
	ctx := context.Background()
	idem := new(MockIdempotencyStore)
	svc := NewPaymentService(new(MockRecorder), nil, idem, time.Hour, zap.NewNop())
	req := samplePaymentRequest()
	idem.On("Reserve", ctx, "payment:abc", req.Fingerprint(), time.Hour).Return(nil, req.Fingerprint(), false, nil)

	_, err := svc.RecordPayment(ctx, "abc", req, nil)
	assert.ErrorIs(t, err, ErrPaymentInProgress)
}

func TestPaymentService_KeyReusedForDifferentPayment(t *testing.T) {
	ctx := context.Background()
	rec := new(MockRecorder)
	idem := new(MockIdempotencyStore)
	svc := NewPaymentService(rec, nil, idem, time.Hour, zap.NewNop())

	first := samplePaymentRequest()
	second := first
	second.Amount = decimal.NewFromInt(900)

	prior, err := json.Marshal(RecordResult{Mode: ModeBulk, Amount: first.Amount})
	require.NoError(t, err)
	idem.On("Reserve", ctx, "payment:abc", second.Fingerprint(), time.Hour).Return(prior, first.Fingerprint(), false, nil).Once()

	_, err = svc.RecordPayment(ctx, "abc", second, nil)
	assert.ErrorIs(t, err, ErrIdempotencyKeyReused)
	assert.Equal(t, "IDEMPOTENCY_KEY_MISMATCH", shared.CodeOf(err))
	rec.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)

	// a different body is refused while the first is still in flight too
	idem.On("Reserve", ctx, "payment:abc", second.Fingerprint(), time.Hour).Return(nil, first.Fingerprint(), false, nil).Once()
	_, err = svc.RecordPayment(ctx, "abc", second, nil)
	assert.ErrorIs(t, err, ErrIdempotencyKeyReused)
}

func TestRecordPaymentRequest_Fingerprint(t *testing.T) {
	base := samplePaymentRequest()
	billID := uuid.New()

	same := base
	same.Amount = decimal.RequireFromString("500.00")
	assert.Equal(t, base.Fingerprint(), same.Fingerprint(), "trailing zeros do not change the amount")

	variants := map[string]func(r *RecordPaymentRequest){
		"amount":   func(r *RecordPaymentRequest) { r.Amount = decimal.RequireFromString("500.01") },
		"customer": func(r *RecordPaymentRequest) { r.CustomerID = uuid.New() },
		"bill":     func(r *RecordPaymentRequest) { r.BillID = &billID },
		"method":   func(r *RecordPaymentRequest) { r.Method = "cash" },
		"ref":      func(r *RecordPaymentRequest) { r.TransactionRef = "UTR-1" },
		"notes":    func(r *RecordPaymentRequest) { r.Notes = "advance" },
	}
	for name, change := range variants {
		t.Run(name, func(t *testing.T) {
			r := base
			change(&r)
			assert.NotEqual(t, base.Fingerprint(), r.Fingerprint())
		})
	}
}

func TestPaymentService_FailureReleasesKey(t *testing.T) {
	ctx := context.Background()
	rec := new(MockRecorder)
	idem := new(MockIdempotencyStore)
	svc := NewPaymentService(rec, nil, idem, time.Hour, zap.NewNop())

	idem.On("Reserve", ctx, "payment:abc", mock.Anything, time.Hour).Return(nil, "", true, nil)
	rec.On("Record", ctx, mock.Anything).Return(nil, shared.ErrPersistencePartialFailure)
	idem.On("Release", ctx, "payment:abc").Return(nil)

	_, err := svc.RecordPayment(ctx, "abc", samplePaymentRequest(), nil)
	assert.ErrorIs(t, err, shared.ErrPersistencePartialFailure)
	idem.AssertExpectations(t)
	idem.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_NoOutstandingIsInformational(t *testing.T) {
	ctx := context.Background()
	rec := new(MockRecorder)
	idem := new(MockIdempotencyStore)
	svc := NewPaymentService(rec, nil, idem, time.Hour, zap.NewNop())

	req := samplePaymentRequest()
	empty := &RecordResult{Amount: req.Amount, Remainder: req.Amount}
	idem.On("Reserve", ctx, "payment:abc", mock.Anything, time.Hour).Return(nil, "", true, nil)
	rec.On("Record", ctx, mock.Anything).Return(empty, shared.ErrNoOutstandingBills)
	idem.On("Release", ctx, "payment:abc").Return(nil)

	got, err := svc.RecordPayment(ctx, "abc", req, nil)
	assert.True(t, IsInformational(err))
	require.NotNil(t, got)
	assert.True(t, got.Remainder.Equal(req.Amount))
}

func TestPaymentService_StoreDown(t *testing.T) {
	ctx := context.Background()
	rec := new(MockRecorder)
	idem := new(MockIdempotencyStore)
	svc := NewPaymentService(rec, nil, idem, time.Hour, zap.NewNop())
	idem.On("Reserve", ctx, "payment:abc", mock.Anything, time.Hour).Return(nil, "", false, errors.New("dial tcp: connection refused"))

	_, err := svc.RecordPayment(ctx, "abc", samplePaymentRequest(), nil)
	assert.ErrorIs(t, err, ErrIdempotencyUnavailable)
	rec.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestPaymentService_List(t *testing.T) {
	ctx := context.Background()
	repos := testutil.NewMockRepositories()
	svc := NewPaymentService(new(MockRecorder), repos.Payments, nil, 0, zap.NewNop())

	billID := uuid.New()
	p, err := billing.NewPayment(billID, uuid.New(), decimal.NewFromInt(25), billing.PaymentMethodCheque, "CHQ-0042", "")
	require.NoError(t, err)
	repos.Payments.On("FindAll", ctx, mock.MatchedBy(func(f billing.PaymentFilter) bool {
		return f.BillID != nil && *f.BillID == billID && f.PageSize == 20
	})).Return([]billing.Payment{*p}, nil)

	out, err := svc.List(ctx, PaymentListQuery{BillID: &billID})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "CHQ-0042", out[0].TransactionRef)
}
