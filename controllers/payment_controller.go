package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Salisuili/rest-backend/middleware"
	"github.com/Salisuili/rest-backend/pkg/apperrors"
	"github.com/Salisuili/rest-backend/services"
)

type PaymentController struct {
	paymentService *services.PaymentService
	log            *zap.Logger
}

func NewPaymentController(paymentService *services.PaymentService, log *zap.Logger) *PaymentController {
	return &PaymentController{paymentService: paymentService, log: log}
}

// InitiatePayment starts a gateway transaction for an order.
func (pc *PaymentController) InitiatePayment(c *gin.Context) {
	user := middleware.CurrentUser(c)

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID format"})
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	// The body is optional; email defaults to the acting user's.
	_ = c.ShouldBindJSON(&req)

	result, appErr := pc.paymentService.InitiatePayment(c.Request.Context(), user, orderID, req.Email)
	if appErr != nil {
		apperrors.Respond(c, appErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authorization_url": result.AuthorizationURL,
		"reference":         result.Reference,
	})
}

// Webhook receives gateway events. Responds 400 only when the signature
// does not verify; every accepted event is acknowledged with 200 even when
// reconciliation is a no-op.
func (pc *PaymentController) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read payload"})
		return
	}
	signature := c.GetHeader("x-paystack-signature")

	if appErr := pc.paymentService.HandleWebhook(c.Request.Context(), payload, signature); appErr != nil {
		apperrors.Respond(c, appErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

// VerifyPayment pull-verifies the order's transaction with the gateway.
func (pc *PaymentController) VerifyPayment(c *gin.Context) {
	user := middleware.CurrentUser(c)

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID format"})
		return
	}

	order, appErr := pc.paymentService.VerifyPayment(c.Request.Context(), user, orderID)
	if appErr != nil {
		apperrors.Respond(c, appErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": toOrderView(order)})
}
