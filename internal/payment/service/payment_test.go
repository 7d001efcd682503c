package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	orderdomain "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/order/domain"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/payment/domain"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/payment/event"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/payment/provider"
	apperrors "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/pkg/errors"
	pkgkafka "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/pkg/kafka"
)

const (
	testOrderID   = "order-1"
	testUserID    = "user-1"
	testKeyID     = "rzp_test_key"
	testKeySecret = "rzp_test_secret"
)

// --- Mocks ---

type mockPaymentRepository struct {
	mock.Mock
}

func (m *mockPaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *mockPaymentRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.Payment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *mockPaymentRepository) Update(ctx context.Context, p *domain.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

type mockOrders struct {
	mock.Mock
}

func (m *mockOrders) Get(ctx context.Context, id string) (*orderdomain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderdomain.Order), args.Error(1)
}

func (m *mockOrders) MarkPaid(ctx context.Context, id string, paidAt time.Time, paymentRef string) error {
	args := m.Called(ctx, id, paidAt, paymentRef)
	return args.Error(0)
}

func (m *mockOrders) MarkProcessing(ctx context.Context, id, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Name() string { return "razorpay" }

func (m *mockProvider) CreateProviderOrder(ctx context.Context, amount int64, currency, receipt string) (string, error) {
	args := m.Called(ctx, amount, currency, receipt)
	return args.String(0), args.Error(1)
}

func (m *mockProvider) FetchPayment(ctx context.Context, providerPaymentID string) (*provider.PaymentDetails, error) {
	args := m.Called(ctx, providerPaymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.PaymentDetails), args.Error(1)
}

// --- Test Helpers ---

func newTestService(repo *mockPaymentRepository, orders *mockOrders, prov *mockProvider) *PaymentService {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:19092"})
	producer := event.NewProducer(pkgkafka.NewProducer(kafkaCfg, logger), logger)
	return NewPaymentService(repo, orders, prov, producer, testKeyID, testKeySecret, logger)
}

func razorpayOrder() *orderdomain.Order {
	return &orderdomain.Order{
		ID:            testOrderID,
		UserID:        testUserID,
		Status:        orderdomain.OrderStatusPending,
		TotalAmount:   36400,
		Currency:      "INR",
		PaymentMethod: orderdomain.PaymentMethodRazorpay,
	}
}

func codOrder() *orderdomain.Order {
	o := razorpayOrder()
	o.PaymentMethod = orderdomain.PaymentMethodCOD
	return o
}

func createdPayment() *domain.Payment {
	now := time.Now().UTC()
	return &domain.Payment{
		ID:              "pay-row-1",
		OrderID:         testOrderID,
		UserID:          testUserID,
		Amount:          36400,
		Currency:        "INR",
		Status:          domain.PaymentStatusCreated,
		Method:          orderdomain.PaymentMethodRazorpay,
		ProviderName:    "razorpay",
		ProviderOrderID: "order_abc123",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func validVerifyInput() VerifyInput {
	return VerifyInput{
		OrderID:           testOrderID,
		ProviderOrderID:   "order_abc123",
		ProviderPaymentID: "pay_xyz",
		Signature:         Signature("order_abc123", "pay_xyz", testKeySecret),
	}
}

func capturedDetails() *provider.PaymentDetails {
	return &provider.PaymentDetails{
		ProviderPaymentID: "pay_xyz",
		ProviderOrderID:   "order_abc123",
		Status:            provider.StatusCaptured,
		Amount:            36400,
		Currency:          "INR",
	}
}

// --- CreateSession ---

func TestCreateSession_AmountFromStoredOrder(t *testing.T) {
	repo := &mockPaymentRepository{}
	orders := &mockOrders{}
	prov := &mockProvider{}

	orders.On("Get", mock.Anything, testOrderID).Return(razorpayOrder(), nil)
	prov.On("CreateProviderOrder", mock.Anything, int64(36400), "INR", testOrderID).Return("order_abc123", nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
		return p.Amount == 36400 && p.Status == domain.PaymentStatusCreated && p.ProviderOrderID == "order_abc123"
	})).Return(nil)

	svc := newTestService(repo, orders, prov)
	session, err := svc.CreateSession(context.Background(), testOrderID, testUserID)
	require.NoError(t, err)

	assert.Equal(t, int64(36400), session.Amount)
	assert.Equal(t, "INR", session.Currency)
	assert.Equal(t, "order_abc123", session.ProviderOrderID)
	assert.Equal(t, testKeyID, session.KeyID)
	repo.AssertExpectations(t)
}

func TestCreateSession_StrangerForbidden(t *testing.T) {
	orders := &mockOrders{}
	orders.On("Get", mock.Anything, testOrderID).Return(razorpayOrder(), nil)

	prov := &mockProvider{}
	svc := newTestService(&mockPaymentRepository{}, orders, prov)
	_, err := svc.CreateSession(context.Background(), testOrderID, "user-2")

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	prov.AssertNotCalled(t, "CreateProviderOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateSession_AlreadyPaidConflict(t *testing.T) {
	paid := razorpayOrder()
	paid.IsPaid = true

	orders := &mockOrders{}
	orders.On("Get", mock.Anything, testOrderID).Return(paid, nil)

	svc := newTestService(&mockPaymentRepository{}, orders, &mockProvider{})
	_, err := svc.CreateSession(context.Background(), testOrderID, testUserID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestCreateSession_CODOrderRejected(t *testing.T) {
	orders := &mockOrders{}
	orders.On("Get", mock.Anything, testOrderID).Return(codOrder(), nil)

	svc := newTestService(&mockPaymentRepository{}, orders, &mockProvider{})
	_, err := svc.CreateSession(context.Background(), testOrderID, testUserID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCreateSession_ProviderErrorLeavesNoRow(t *testing.T) {
	repo := &mockPaymentRepository{}
	orders := &mockOrders{}
	prov := &mockProvider{}

	orders.On("Get", mock.Anything, testOrderID).Return(razorpayOrder(), nil)
	prov.On("CreateProviderOrder", mock.Anything, int64(36400), "INR", testOrderID).
		Return("", apperrors.Provider("gateway timeout"))

	svc := newTestService(repo, orders, prov)
	_, err := svc.CreateSession(context.Background(), testOrderID, testUserID)

	assert.ErrorIs(t, err, apperrors.ErrProvider)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// --- VerifyCallback ---

func TestVerifyCallback_Success(t *testing.T) {
	repo := &mockPaymentRepository{}
	orders := &mockOrders{}
	prov := &mockProvider{}

	orders.On("Get", mock.Anything, testOrderID).Return(razorpayOrder(), nil)
	repo.On("GetByOrderID", mock.Anything, testOrderID).Return(createdPayment(), nil)
	prov.On("FetchPayment", mock.Anything, "pay_xyz").Return(capturedDetails(), nil)
	orders.On("MarkPaid", mock.Anything, testOrderID, mock.AnythingOfType("time.Time"), "pay_xyz").Return(nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
		return p.Status == domain.PaymentStatusVerified && p.ProviderPaymentID == "pay_xyz"
	})).Return(nil)

	svc := newTestService(repo, orders, prov)
	payment, err := svc.VerifyCallback(context.Background(), testUserID, validVerifyInput())
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentStatusVerified, payment.Status)
	assert.Equal(t, "pay_xyz", payment.ProviderPaymentID)
	orders.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestVerifyCallback_TamperedSignature(t *testing.T) {
	repo := &mockPaymentRepository{}
	orders := &mockOrders{}
	prov := &mockProvider{}

	orders.On("Get", mock.Anything, testOrderID).Return(razorpayOrder(), nil)
	repo.On("GetByOrderID", mock.Anything, testOrderID).Return(createdPayment(), nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
		return p.Status == domain.PaymentStatusFailed && p.FailureReason == "signature mismatch"
	})).Return(nil)

	input := validVerifyInput()
	input.Signature = Signature("order_abc123", "pay_xyz", "wrong-secret")

	svc := newTestService(repo, orders, prov)
	_, err := svc.VerifyCallback(context.Background(), testUserID, input)

	assert.ErrorIs(t, err, apperrors.ErrSignatureMismatch)
	prov.AssertNotCalled(t, "FetchPayment", mock.Anything, mock.Anything)
	orders.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestVerifyCallback_AlreadyPaidGuard(t *testing.T) {
	paid := razorpayOrder()
	paid.IsPaid = true

	repo := &mockPaymentRepository{}
	orders := &mockOrders{}
	prov := &mockProvider{}
	orders.On("Get", mock.Anything, testOrderID).Return(paid, nil)

	svc := newTestService(repo, orders, prov)
	_, err := svc.VerifyCallback(context.Background(), testUserID, validVerifyInput())

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	prov.AssertNotCalled(t, "FetchPayment", mock.Anything, mock.Anything)
	orders.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyCallback_NotCaptured(t *testing.T) {
	repo := &mockPaymentRepository{}
	orders := &mockOrders{}
	prov := &mockProvider{}

	notCaptured := capturedDetails()
	notCaptured.Status = "authorized"

	orders.On("Get", mock.Anything, testOrderID).Return(razorpayOrder(), nil)
	repo.On("GetByOrderID", mock.Anything, testOrderID).Return(createdPayment(), nil)
	prov.On("FetchPayment", mock.Anything, "pay_xyz").Return(notCaptured, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
		return p.Status == domain.PaymentStatusFailed
	})).Return(nil)

	svc := newTestService(repo, orders, prov)
	_, err := svc.VerifyCallback(context.Background(), testUserID, validVerifyInput())

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	orders.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyCallback_AmountMismatch(t *testing.T) {
	repo := &mockPaymentRepository{}
	orders := &mockOrders{}
	prov := &mockProvider{}

	short := capturedDetails()
	short.Amount = 100

	orders.On("Get", mock.Anything, testOrderID).Return(razorpayOrder(), nil)
	repo.On("GetByOrderID", mock.Anything, testOrderID).Return(createdPayment(), nil)
	prov.On("FetchPayment", mock.Anything, "pay_xyz").Return(short, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
		return p.Status == domain.PaymentStatusFailed
	})).Return(nil)

	svc := newTestService(repo, orders, prov)
	_, err := svc.VerifyCallback(context.Background(), testUserID, validVerifyInput())

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	orders.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyCallback_ProviderFetchErrorLeavesRowIntact(t *testing.T) {
	repo := &mockPaymentRepository{}
	orders := &mockOrders{}
	prov := &mockProvider{}

	orders.On("Get", mock.Anything, testOrderID).Return(razorpayOrder(), nil)
	repo.On("GetByOrderID", mock.Anything, testOrderID).Return(createdPayment(), nil)
	prov.On("FetchPayment", mock.Anything, "pay_xyz").Return(nil, errors.New("connection refused"))

	svc := newTestService(repo, orders, prov)
	_, err := svc.VerifyCallback(context.Background(), testUserID, validVerifyInput())

	// The verify can simply be retried; the payment row stays in created.
	assert.Error(t, err)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	orders.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyCallback_ConcurrentMarkPaidConflict(t *testing.T) {
	repo := &mockPaymentRepository{}
	orders := &mockOrders{}
	prov := &mockProvider{}

	orders.On("Get", mock.Anything, testOrderID).Return(razorpayOrder(), nil)
	repo.On("GetByOrderID", mock.Anything, testOrderID).Return(createdPayment(), nil)
	prov.On("FetchPayment", mock.Anything, "pay_xyz").Return(capturedDetails(), nil)
	orders.On("MarkPaid", mock.Anything, testOrderID, mock.AnythingOfType("time.Time"), "pay_xyz").
		Return(apperrors.Conflict("order is already paid"))

	svc := newTestService(repo, orders, prov)
	_, err := svc.VerifyCallback(context.Background(), testUserID, validVerifyInput())

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestVerifyCallback_WrongProviderOrderID(t *testing.T) {
	repo := &mockPaymentRepository{}
	orders := &mockOrders{}
	prov := &mockProvider{}

	orders.On("Get", mock.Anything, testOrderID).Return(razorpayOrder(), nil)
	repo.On("GetByOrderID", mock.Anything, testOrderID).Return(createdPayment(), nil)

	input := validVerifyInput()
	input.ProviderOrderID = "order_other"
	input.Signature = Signature("order_other", "pay_xyz", testKeySecret)

	svc := newTestService(repo, orders, prov)
	_, err := svc.VerifyCallback(context.Background(), testUserID, input)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

// --- ConfirmCOD ---

func TestConfirmCOD_Success(t *testing.T) {
	repo := &mockPaymentRepository{}
	orders := &mockOrders{}

	orders.On("Get", mock.Anything, testOrderID).Return(codOrder(), nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
		return p.Status == domain.PaymentStatusCODConfirmed && p.Method == orderdomain.PaymentMethodCOD && p.Amount == 36400
	})).Return(nil)
	orders.On("MarkProcessing", mock.Anything, testOrderID, "cod confirmed").Return(nil)

	svc := newTestService(repo, orders, &mockProvider{})
	payment, err := svc.ConfirmCOD(context.Background(), testOrderID, testUserID)
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentStatusCODConfirmed, payment.Status)
	orders.AssertExpectations(t)
}

func TestConfirmCOD_RazorpayOrderRejected(t *testing.T) {
	orders := &mockOrders{}
	orders.On("Get", mock.Anything, testOrderID).Return(razorpayOrder(), nil)

	svc := newTestService(&mockPaymentRepository{}, orders, &mockProvider{})
	_, err := svc.ConfirmCOD(context.Background(), testOrderID, testUserID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestConfirmCOD_NonPendingConflict(t *testing.T) {
	processing := codOrder()
	processing.Status = orderdomain.OrderStatusProcessing

	orders := &mockOrders{}
	orders.On("Get", mock.Anything, testOrderID).Return(processing, nil)

	svc := newTestService(&mockPaymentRepository{}, orders, &mockProvider{})
	_, err := svc.ConfirmCOD(context.Background(), testOrderID, testUserID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestConfirmCOD_StrangerForbidden(t *testing.T) {
	orders := &mockOrders{}
	orders.On("Get", mock.Anything, testOrderID).Return(codOrder(), nil)

	svc := newTestService(&mockPaymentRepository{}, orders, &mockProvider{})
	_, err := svc.ConfirmCOD(context.Background(), testOrderID, "user-2")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

// --- GetPaymentByOrder ---

func TestGetPaymentByOrder_OwnerAndAdmin(t *testing.T) {
	repo := &mockPaymentRepository{}
	repo.On("GetByOrderID", mock.Anything, testOrderID).Return(createdPayment(), nil)

	svc := newTestService(repo, &mockOrders{}, &mockProvider{})

	_, err := svc.GetPaymentByOrder(context.Background(), testOrderID, testUserID, false)
	assert.NoError(t, err)

	_, err = svc.GetPaymentByOrder(context.Background(), testOrderID, "admin-1", true)
	assert.NoError(t, err)

	_, err = svc.GetPaymentByOrder(context.Background(), testOrderID, "user-2", false)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

// --- Signature ---

func TestSignature_Deterministic(t *testing.T) {
	a := Signature("order_abc", "pay_xyz", "secret")
	b := Signature("order_abc", "pay_xyz", "secret")
	c := Signature("order_abc", "pay_xyz", "other")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
