package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Salisuili/rest-backend/models"
)

func seedOrder(t *testing.T, orders *mockOrderRepo, order *models.Order) *models.Order {
	t.Helper()
	assert.NoError(t, orders.CreateWithItems(context.Background(), order))
	return orders.orders[order.ID]
}

func newTestPaymentService(orders *mockOrderRepo, gateway *mockGateway) *PaymentService {
	return NewPaymentService(orders, gateway, nil, zap.NewNop())
}

func TestInitiatePayment_OrderNotFound(t *testing.T) {
	svc := newTestPaymentService(newMockOrderRepo(), &mockGateway{})

	_, appErr := svc.InitiatePayment(context.Background(), testUser(models.RoleCustomer), uuid.New(), "")

	assert.NotNil(t, appErr)
	assert.Equal(t, http.StatusNotFound, appErr.Code)
}

func TestInitiatePayment_OtherUsersOrderForbidden(t *testing.T) {
	orders := newMockOrderRepo()
	order := seedOrder(t, orders, &models.Order{UserID: uuid.New(), TotalAmount: 5000})

	svc := newTestPaymentService(orders, &mockGateway{})

	_, appErr := svc.InitiatePayment(context.Background(), testUser(models.RoleCustomer), order.ID, "")

	assert.NotNil(t, appErr)
	assert.Equal(t, http.StatusForbidden, appErr.Code)
}

func TestInitiatePayment_AlreadyPaid(t *testing.T) {
	user := testUser(models.RoleCustomer)
	orders := newMockOrderRepo()
	order := seedOrder(t, orders, &models.Order{
		UserID:        user.ID,
		TotalAmount:   5000,
		PaymentStatus: models.PaymentStatusPaid,
	})

	gateway := &mockGateway{}
	svc := newTestPaymentService(orders, gateway)

	_, appErr := svc.InitiatePayment(context.Background(), user, order.ID, "")

	assert.NotNil(t, appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
	assert.Zero(t, gateway.initCalls, "gateway must not be called for a paid order")
}

func TestInitiatePayment_GatewayFailureLeavesOrderUntouched(t *testing.T) {
	user := testUser(models.RoleCustomer)
	orders := newMockOrderRepo()
	order := seedOrder(t, orders, &models.Order{
		UserID:        user.ID,
		TotalAmount:   5000,
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
	})

	gateway := &mockGateway{initErr: errors.New("paystack error: Invalid amount")}
	svc := newTestPaymentService(orders, gateway)

	_, appErr := svc.InitiatePayment(context.Background(), user, order.ID, "")

	assert.NotNil(t, appErr)
	assert.Equal(t, http.StatusBadGateway, appErr.Code)
	// The gateway's own message reaches the caller.
	assert.Contains(t, appErr.Message, "Invalid amount")
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Nil(t, order.PaymentReference)
}

func TestInitiatePayment_RecordsReference(t *testing.T) {
	user := testUser(models.RoleCustomer)
	orders := newMockOrderRepo()
	order := seedOrder(t, orders, &models.Order{
		UserID:      user.ID,
		TotalAmount: 6000,
		Status:      models.OrderStatusPending,
	})

	gateway := &mockGateway{initResult: &InitializeResult{
		AuthorizationURL: "https://checkout.paystack.com/abc123",
		AccessCode:       "abc123",
		Reference:        "ref_42",
	}}
	svc := newTestPaymentService(orders, gateway)

	result, appErr := svc.InitiatePayment(context.Background(), user, order.ID, "")

	assert.Nil(t, appErr)
	assert.Equal(t, "ref_42", result.Reference)
	assert.Equal(t, "https://checkout.paystack.com/abc123", result.AuthorizationURL)
	assert.NotNil(t, order.PaymentReference)
	assert.Equal(t, "ref_42", *order.PaymentReference)
	assert.Equal(t, models.PaymentStatusInitiated, order.PaymentStatus)
	assert.Equal(t, models.OrderStatusPaymentPending, order.Status)
}

func webhookBody(reference, status string, amountMinor int64) []byte {
	return []byte(fmt.Sprintf(
		`{"event":"charge.success","data":{"reference":%q,"status":%q,"amount":%d}}`,
		reference, status, amountMinor,
	))
}

func TestHandleWebhook_InvalidSignature(t *testing.T) {
	user := testUser(models.RoleCustomer)
	orders := newMockOrderRepo()
	ref := "ref_sig"
	order := seedOrder(t, orders, &models.Order{
		UserID:           user.ID,
		TotalAmount:      5000,
		PaymentReference: &ref,
		PaymentStatus:    models.PaymentStatusInitiated,
	})

	svc := newTestPaymentService(orders, &mockGateway{validSig: false})

	appErr := svc.HandleWebhook(context.Background(), webhookBody(ref, "success", 500000), "bad")

	assert.NotNil(t, appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
	assert.Equal(t, models.PaymentStatusInitiated, order.PaymentStatus)
}

func TestHandleWebhook_SuccessMarksPaid(t *testing.T) {
	user := testUser(models.RoleCustomer)
	orders := newMockOrderRepo()
	ref := "ref_ok"
	order := seedOrder(t, orders, &models.Order{
		UserID:           user.ID,
		TotalAmount:      5000,
		Status:           models.OrderStatusPaymentPending,
		PaymentReference: &ref,
		PaymentStatus:    models.PaymentStatusInitiated,
	})

	publisher := &mockPublisher{}
	svc := NewPaymentService(orders, &mockGateway{validSig: true}, publisher, zap.NewNop())

	appErr := svc.HandleWebhook(context.Background(), webhookBody(ref, "success", 500000), "sig")

	assert.Nil(t, appErr)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
	assert.Equal(t, models.OrderStatusProcessing, order.Status)
	assert.Contains(t, publisher.published, "payment.succeeded")
}

func TestHandleWebhook_DuplicateDeliveryIsIdempotent(t *testing.T) {
	user := testUser(models.RoleCustomer)
	orders := newMockOrderRepo()
	ref := "ref_dup"
	order := seedOrder(t, orders, &models.Order{
		UserID:           user.ID,
		TotalAmount:      5000,
		Status:           models.OrderStatusPaymentPending,
		PaymentReference: &ref,
		PaymentStatus:    models.PaymentStatusInitiated,
	})

	svc := newTestPaymentService(orders, &mockGateway{validSig: true})

	assert.Nil(t, svc.HandleWebhook(context.Background(), webhookBody(ref, "success", 500000), "sig"))
	firstUpdates := len(orders.updates)

	assert.Nil(t, svc.HandleWebhook(context.Background(), webhookBody(ref, "success", 500000), "sig"))

	assert.Equal(t, firstUpdates, len(orders.updates), "duplicate delivery must not write again")
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
	assert.Equal(t, models.OrderStatusProcessing, order.Status)
}

func TestHandleWebhook_AmountMismatchHeldAsDiscrepancy(t *testing.T) {
	user := testUser(models.RoleCustomer)
	orders := newMockOrderRepo()
	ref := "ref_short"
	order := seedOrder(t, orders, &models.Order{
		UserID:           user.ID,
		TotalAmount:      5000,
		Status:           models.OrderStatusPaymentPending,
		PaymentReference: &ref,
		PaymentStatus:    models.PaymentStatusInitiated,
	})

	svc := newTestPaymentService(orders, &mockGateway{validSig: true})

	appErr := svc.HandleWebhook(context.Background(), webhookBody(ref, "success", 100000), "sig")

	assert.Nil(t, appErr)
	assert.Equal(t, models.PaymentStatusDiscrepancy, order.PaymentStatus)
	// Fulfillment must not advance on a short payment.
	assert.Equal(t, models.OrderStatusPaymentPending, order.Status)
}

func TestHandleWebhook_UnknownReferenceAcknowledged(t *testing.T) {
	svc := newTestPaymentService(newMockOrderRepo(), &mockGateway{validSig: true})

	appErr := svc.HandleWebhook(context.Background(), webhookBody("ref_ghost", "success", 500000), "sig")

	assert.Nil(t, appErr)
}

func TestHandleWebhook_FailureAndReversalMapping(t *testing.T) {
	cases := []struct {
		gatewayStatus string
		want          string
	}{
		{"failed", models.PaymentStatusFailed},
		{"abandoned", models.PaymentStatusFailed},
		{"reversed", models.PaymentStatusReversed},
	}

	for _, tc := range cases {
		t.Run(tc.gatewayStatus, func(t *testing.T) {
			user := testUser(models.RoleCustomer)
			orders := newMockOrderRepo()
			ref := "ref_" + tc.gatewayStatus
			order := seedOrder(t, orders, &models.Order{
				UserID:           user.ID,
				TotalAmount:      5000,
				Status:           models.OrderStatusPaymentPending,
				PaymentReference: &ref,
				PaymentStatus:    models.PaymentStatusInitiated,
			})

			svc := newTestPaymentService(orders, &mockGateway{validSig: true})

			appErr := svc.HandleWebhook(context.Background(), webhookBody(ref, tc.gatewayStatus, 500000), "sig")

			assert.Nil(t, appErr)
			assert.Equal(t, tc.want, order.PaymentStatus)
			assert.Equal(t, models.OrderStatusPaymentPending, order.Status)
		})
	}
}

func TestVerifyPayment_RequiresInitiation(t *testing.T) {
	user := testUser(models.RoleCustomer)
	orders := newMockOrderRepo()
	order := seedOrder(t, orders, &models.Order{UserID: user.ID, TotalAmount: 5000})

	svc := newTestPaymentService(orders, &mockGateway{})

	_, appErr := svc.VerifyPayment(context.Background(), user, order.ID)

	assert.NotNil(t, appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
}

func TestVerifyPayment_ReconcilesFromGateway(t *testing.T) {
	user := testUser(models.RoleCustomer)
	orders := newMockOrderRepo()
	ref := "ref_verify"
	order := seedOrder(t, orders, &models.Order{
		UserID:           user.ID,
		TotalAmount:      5000,
		Status:           models.OrderStatusPaymentPending,
		PaymentReference: &ref,
		PaymentStatus:    models.PaymentStatusInitiated,
	})

	gateway := &mockGateway{verifyResult: &TransactionStatus{
		Reference: ref,
		Status:    "success",
		Amount:    500000,
	}}
	svc := newTestPaymentService(orders, gateway)

	refreshed, appErr := svc.VerifyPayment(context.Background(), user, order.ID)

	assert.Nil(t, appErr)
	assert.Equal(t, models.PaymentStatusPaid, refreshed.PaymentStatus)
	assert.Equal(t, models.OrderStatusProcessing, refreshed.Status)
}
