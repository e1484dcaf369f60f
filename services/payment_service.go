package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Salisuili/rest-backend/events"
	"github.com/Salisuili/rest-backend/models"
	"github.com/Salisuili/rest-backend/pkg/apperrors"
	"github.com/Salisuili/rest-backend/repository"
)

// webhookEvent is the gateway's event envelope. Only the fields the
// reconciliation needs are decoded.
type webhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
		Amount    int64  `json:"amount"` // minor units
	} `json:"data"`
}

// PaymentService owns payment initiation and the reconciliation of gateway
// callbacks against order state. Reconciliation is idempotent per payment
// reference: the webhook may be delivered more than once.
type PaymentService struct {
	orders  repository.OrderRepository
	gateway PaymentGateway
	events  events.Publisher
	log     *zap.Logger
}

func NewPaymentService(orders repository.OrderRepository, gateway PaymentGateway, publisher events.Publisher, log *zap.Logger) *PaymentService {
	return &PaymentService{
		orders:  orders,
		gateway: gateway,
		events:  publisher,
		log:     log,
	}
}

// InitiatePayment starts a gateway transaction for the order and records the
// returned reference. The order is left untouched when the gateway call
// fails, so initiation is safe to retry.
func (s *PaymentService) InitiatePayment(ctx context.Context, actor *models.User, orderID uuid.UUID, email string) (*InitializeResult, *apperrors.Error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Order not found")
		}
		return nil, apperrors.Upstream("Failed to fetch order", err)
	}

	if order.UserID != actor.ID && actor.Role != models.RoleAdmin {
		return nil, apperrors.Forbidden("You cannot pay for this order")
	}
	if order.PaymentStatus == models.PaymentStatusPaid {
		return nil, apperrors.Validation("Order has already been paid")
	}

	if email == "" {
		email = actor.Email
	}

	result, err := s.gateway.InitializeTransaction(ctx, email, ToMinorUnits(order.TotalAmount), map[string]string{
		"order_id":     order.ID.String(),
		"order_number": order.OrderNumber,
	})
	if err != nil {
		s.log.Error("Payment initialization failed",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
		// The gateway's own message travels to the caller.
		return nil, apperrors.Upstream("Payment gateway error: "+err.Error(), err)
	}

	if err := s.orders.UpdateFields(ctx, order.ID, map[string]interface{}{
		"payment_reference": result.Reference,
		"payment_status":    models.PaymentStatusInitiated,
		"status":            models.OrderStatusPaymentPending,
	}); err != nil {
		s.log.Error("Failed to record payment reference",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
		return nil, apperrors.Upstream("Failed to record payment reference", err)
	}

	s.log.Info("Payment initiated",
		zap.String("order_number", order.OrderNumber),
		zap.String("reference", result.Reference),
	)
	return result, nil
}

// HandleWebhook processes an inbound gateway event. Signature verification
// precedes everything; an unverifiable payload mutates nothing and is the
// only webhook outcome that is not acknowledged with a 200.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) *apperrors.Error {
	if !s.gateway.VerifyWebhookSignature(payload, signature) {
		s.log.Warn("Webhook signature verification failed")
		return apperrors.Validation("Invalid webhook signature")
	}

	var event webhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		s.log.Warn("Webhook payload malformed", zap.Error(err))
		return nil // acknowledged; nothing to reconcile
	}

	status := event.Data.Status
	if status == "" && event.Event == "charge.success" {
		status = "success"
	}

	if err := s.reconcile(ctx, event.Data.Reference, status, event.Data.Amount); err != nil {
		// Unknown references and duplicate deliveries are acknowledged so
		// the gateway stops retrying.
		s.log.Warn("Webhook reconciliation skipped",
			zap.String("reference", event.Data.Reference),
			zap.Error(err),
		)
	}
	return nil
}

// VerifyPayment pull-verifies the order's transaction with the gateway and
// applies the same reconciliation the webhook would.
func (s *PaymentService) VerifyPayment(ctx context.Context, actor *models.User, orderID uuid.UUID) (*models.Order, *apperrors.Error) {
	order, appErr := s.ownedOrder(ctx, actor, orderID)
	if appErr != nil {
		return nil, appErr
	}
	if order.PaymentReference == nil {
		return nil, apperrors.Validation("Payment has not been initiated for this order")
	}

	status, err := s.gateway.VerifyTransaction(ctx, *order.PaymentReference)
	if err != nil {
		return nil, apperrors.Upstream("Payment gateway error: "+err.Error(), err)
	}

	if err := s.reconcile(ctx, status.Reference, status.Status, status.Amount); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("No order matches this payment reference")
		}
		return nil, apperrors.Upstream("Failed to reconcile payment", err)
	}

	refreshed, err := s.orders.FindByID(ctx, order.ID)
	if err != nil {
		return nil, apperrors.Upstream("Failed to fetch order", err)
	}
	return refreshed, nil
}

// reconcile applies one gateway-reported outcome to the order owning the
// reference. Re-processing a success for an already-paid order is a no-op.
func (s *PaymentService) reconcile(ctx context.Context, reference, gatewayStatus string, amountMinor int64) error {
	if reference == "" {
		return gorm.ErrRecordNotFound
	}

	order, err := s.orders.FindByPaymentReference(ctx, reference)
	if err != nil {
		return err
	}

	if order.PaymentStatus == models.PaymentStatusPaid {
		s.log.Info("Skipping duplicate payment event",
			zap.String("reference", reference),
			zap.String("order_number", order.OrderNumber),
		)
		return nil
	}

	updates := map[string]interface{}{}
	eventType := ""

	switch gatewayStatus {
	case "success":
		if amountMinor == ToMinorUnits(order.TotalAmount) {
			updates["payment_status"] = models.PaymentStatusPaid
			updates["status"] = models.OrderStatusProcessing
			eventType = "payment.succeeded"
		} else {
			// Held for manual reconciliation; fulfillment state untouched.
			updates["payment_status"] = models.PaymentStatusDiscrepancy
			eventType = "payment.discrepancy"
			s.log.Warn("Payment amount mismatch",
				zap.String("reference", reference),
				zap.Int64("paid_minor", amountMinor),
				zap.Int64("expected_minor", ToMinorUnits(order.TotalAmount)),
			)
		}
	case "failed", "abandoned":
		updates["payment_status"] = models.PaymentStatusFailed
		eventType = "payment.failed"
	case "reversed":
		updates["payment_status"] = models.PaymentStatusReversed
		eventType = "payment.reversed"
	default:
		s.log.Info("Ignoring gateway status",
			zap.String("reference", reference),
			zap.String("status", gatewayStatus),
		)
		return nil
	}

	if err := s.orders.UpdateFields(ctx, order.ID, updates); err != nil {
		return err
	}

	if s.events != nil {
		s.events.Publish(eventType, map[string]interface{}{
			"order_id":     order.ID.String(),
			"order_number": order.OrderNumber,
			"reference":    reference,
		})
	}
	return nil
}

func (s *PaymentService) ownedOrder(ctx context.Context, actor *models.User, orderID uuid.UUID) (*models.Order, *apperrors.Error) {
	var order *models.Order
	var err error
	if actor.Role == models.RoleAdmin {
		order, err = s.orders.FindByID(ctx, orderID)
	} else {
		order, err = s.orders.FindByIDAndUserID(ctx, orderID, actor.ID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Order not found")
		}
		return nil, apperrors.Upstream("Failed to fetch order", err)
	}
	return order, nil
}
