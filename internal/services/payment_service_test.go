package services_test

import (
	"os"
	"path/filepath"
	"testing"

	"boutique/internal/apperrors"
	"boutique/internal/gateway"
	"boutique/internal/models"
	"boutique/internal/repositories"
	"boutique/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockGateway is a mock implementation of gateway.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateOrder(amount int64, currency, receipt string, notes map[string]interface{}) (*gateway.Order, error) {
	args := m.Called(amount, currency, receipt, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Order), args.Error(1)
}

func (m *MockGateway) VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	args := m.Called(gatewayOrderID, gatewayPaymentID, signature)
	return args.Bool(0)
}

func (m *MockGateway) FetchPayment(gatewayPaymentID string) (*gateway.PaymentDetails, error) {
	args := m.Called(gatewayPaymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.PaymentDetails), args.Error(1)
}

func (m *MockGateway) KeyID() string {
	args := m.Called()
	return args.String(0)
}

// MockPaymentRepository is a mock implementation of repositories.PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(payment *models.Payment) error {
	args := m.Called(payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) CapturedExists(gatewayPaymentID string) (bool, error) {
	args := m.Called(gatewayPaymentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) ListByOrderNumber(orderNumber string) ([]models.Payment, error) {
	args := m.Called(orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Payment), args.Error(1)
}

type paymentFixture struct {
	service     *services.PaymentService
	gw          *MockGateway
	paymentRepo *MockPaymentRepository
	orderRepo   *repositories.MockOrderRepository
}

func newPaymentFixture(t *testing.T, paymentsDir string) *paymentFixture {
	t.Helper()
	gw := new(MockGateway)
	paymentRepo := new(MockPaymentRepository)
	orderRepo := repositories.NewMockOrderRepository()
	return &paymentFixture{
		service:     services.NewPaymentService(gw, paymentRepo, orderRepo, nil, nil, true, "admin@example.com", paymentsDir),
		gw:          gw,
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
	}
}

func (f *paymentFixture) seedOrder(t *testing.T, total float64) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNumber:   "ORD123456789012",
		CustomerName:  "Priya",
		CustomerEmail: "priya@example.com",
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		TotalAmount:   total,
	}
	require.NoError(t, f.orderRepo.Create(order))
	return order
}

func TestPaymentService_CreatePaymentIntent(t *testing.T) {
	dir := t.TempDir()
	f := newPaymentFixture(t, dir)

	f.gw.On("CreateOrder", int64(149900), "INR", "ORD123456789012", mock.Anything).
		Return(&gateway.Order{ID: "order_rzp1", Amount: 149900, Currency: "INR"}, nil).Once()
	f.gw.On("KeyID").Return("rzp_test_key")
	f.paymentRepo.On("Create", mock.AnythingOfType("*models.Payment")).Return(nil).Once()

	intent, err := f.service.CreatePaymentIntent(services.CreatePaymentRequest{
		Amount:      1499, // rupees, converted to paise for the gateway
		OrderNumber: "ORD123456789012",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "order_rzp1", intent.GatewayOrderID)
	assert.Equal(t, int64(149900), intent.Amount)
	assert.Equal(t, "INR", intent.Currency)
	assert.Equal(t, "rzp_test_key", intent.Key)

	// One audit snapshot per intent.
	snapshots, err := filepath.Glob(filepath.Join(dir, "payment_order_rzp1_*.json"))
	require.NoError(t, err)
	assert.Len(t, snapshots, 1)

	f.gw.AssertExpectations(t)
	f.paymentRepo.AssertExpectations(t)
}

func TestPaymentService_CreatePaymentIntent_Validation(t *testing.T) {
	f := newPaymentFixture(t, "")

	_, err := f.service.CreatePaymentIntent(services.CreatePaymentRequest{Amount: 0}, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRequest)

	unconfigured := services.NewPaymentService(nil, f.paymentRepo, f.orderRepo, nil, nil, true, "admin@example.com", "")
	_, err = unconfigured.CreatePaymentIntent(services.CreatePaymentRequest{Amount: 100}, nil)
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavailable)
}

func TestPaymentService_CreatePaymentIntent_GuestDisabled(t *testing.T) {
	gw := new(MockGateway)
	paymentRepo := new(MockPaymentRepository)
	orderRepo := repositories.NewMockOrderRepository()
	service := services.NewPaymentService(gw, paymentRepo, orderRepo, nil, nil, false, "admin@example.com", "")

	_, err := service.CreatePaymentIntent(services.CreatePaymentRequest{Amount: 100}, nil)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestPaymentService_VerifyAndCapture(t *testing.T) {
	f := newPaymentFixture(t, "")
	f.seedOrder(t, 1499)

	f.paymentRepo.On("CapturedExists", "pay_1").Return(false, nil).Once()
	f.gw.On("VerifySignature", "order_rzp1", "pay_1", "sig").Return(true).Once()
	f.gw.On("FetchPayment", "pay_1").
		Return(&gateway.PaymentDetails{Amount: 149900, Currency: "INR", Method: "upi"}, nil).Once()
	f.paymentRepo.On("Create", mock.MatchedBy(func(p *models.Payment) bool {
		return p.Status == models.PaymentRecordCaptured &&
			p.GatewayPaymentID != nil && *p.GatewayPaymentID == "pay_1" &&
			p.Amount == 1499 && p.Method == "upi"
	})).Return(nil).Once()

	result, err := f.service.VerifyAndCapture(services.VerifyPaymentRequest{
		GatewayPaymentID: "pay_1",
		GatewayOrderID:   "order_rzp1",
		Signature:        "sig",
		OrderNumber:      "ORD123456789012",
	}, nil)
	require.NoError(t, err)
	assert.False(t, result.AlreadyProcessed)

	// The order transitioned to paid/confirmed.
	order, err := f.orderRepo.GetByOrderNumber("ORD123456789012")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
	assert.Equal(t, models.OrderStatusConfirmed, order.Status)
	assert.NotNil(t, order.PaidAt)

	f.gw.AssertExpectations(t)
	f.paymentRepo.AssertExpectations(t)
}

func TestPaymentService_VerifyAndCapture_TamperedSignature(t *testing.T) {
	f := newPaymentFixture(t, "")
	f.seedOrder(t, 1499)

	f.paymentRepo.On("CapturedExists", "pay_1").Return(false, nil).Once()
	f.gw.On("VerifySignature", "order_rzp1", "pay_1", "bad-sig").Return(false).Once()

	_, err := f.service.VerifyAndCapture(services.VerifyPaymentRequest{
		GatewayPaymentID: "pay_1",
		GatewayOrderID:   "order_rzp1",
		Signature:        "bad-sig",
		OrderNumber:      "ORD123456789012",
	}, nil)
	assert.ErrorIs(t, err, apperrors.ErrVerificationFailed)

	// The order is untouched.
	order, err := f.orderRepo.GetByOrderNumber("ORD123456789012")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	f.paymentRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestPaymentService_VerifyAndCapture_DuplicateCallback(t *testing.T) {
	f := newPaymentFixture(t, "")
	f.seedOrder(t, 1499)

	f.paymentRepo.On("CapturedExists", "pay_1").Return(true, nil).Once()

	result, err := f.service.VerifyAndCapture(services.VerifyPaymentRequest{
		GatewayPaymentID: "pay_1",
		GatewayOrderID:   "order_rzp1",
		Signature:        "sig",
		OrderNumber:      "ORD123456789012",
	}, nil)
	require.NoError(t, err)
	assert.True(t, result.AlreadyProcessed)

	// No second verification, capture record or order transition.
	f.gw.AssertNotCalled(t, "VerifySignature", mock.Anything, mock.Anything, mock.Anything)
	f.paymentRepo.AssertNotCalled(t, "Create", mock.Anything)
	order, err := f.orderRepo.GetByOrderNumber("ORD123456789012")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
}

func TestPaymentService_VerifyAndCapture_MissingFields(t *testing.T) {
	f := newPaymentFixture(t, "")

	_, err := f.service.VerifyAndCapture(services.VerifyPaymentRequest{
		GatewayPaymentID: "pay_1",
	}, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRequest)
}

func TestPaymentService_VerifyAndCapture_FetchFallsBackToRequestAmount(t *testing.T) {
	f := newPaymentFixture(t, "")
	f.seedOrder(t, 1499)

	f.paymentRepo.On("CapturedExists", "pay_1").Return(false, nil).Once()
	f.gw.On("VerifySignature", "order_rzp1", "pay_1", "sig").Return(true).Once()
	f.gw.On("FetchPayment", "pay_1").Return(nil, os.ErrDeadlineExceeded).Once()
	f.paymentRepo.On("Create", mock.MatchedBy(func(p *models.Payment) bool {
		return p.Amount == 1499
	})).Return(nil).Once()

	result, err := f.service.VerifyAndCapture(services.VerifyPaymentRequest{
		GatewayPaymentID: "pay_1",
		GatewayOrderID:   "order_rzp1",
		Signature:        "sig",
		OrderNumber:      "ORD123456789012",
		Amount:           1499,
	}, nil)
	require.NoError(t, err)
	assert.False(t, result.AlreadyProcessed)
	f.paymentRepo.AssertExpectations(t)
}
