package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Salisuili/rest-backend/middleware"
	"github.com/Salisuili/rest-backend/models"
	"github.com/Salisuili/rest-backend/pkg/apperrors"
	"github.com/Salisuili/rest-backend/services"
)

// OrderView is the response shape for a single order. Fields are selected
// explicitly instead of reshaping a joined row.
type OrderView struct {
	ID            uuid.UUID       `json:"id"`
	OrderNumber   string          `json:"order_number"`
	AddressID     *uuid.UUID      `json:"address_id,omitempty"`
	DeliveryNotes string          `json:"delivery_notes,omitempty"`
	Subtotal      float64         `json:"subtotal"`
	DeliveryFee   float64         `json:"delivery_fee"`
	TotalAmount   float64         `json:"total_amount"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	IsPickup      bool            `json:"is_pickup"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Items         []OrderItemView `json:"items"`
}

type OrderItemView struct {
	MenuItemID          uuid.UUID `json:"menu_item_id"`
	Quantity            int       `json:"quantity"`
	PriceAtOrder        float64   `json:"price_at_order"`
	SpecialInstructions string    `json:"special_instructions,omitempty"`
}

func toOrderView(order *models.Order) OrderView {
	items := make([]OrderItemView, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemView{
			MenuItemID:          item.MenuItemID,
			Quantity:            item.Quantity,
			PriceAtOrder:        item.PriceAtOrder,
			SpecialInstructions: item.SpecialInstructions,
		})
	}
	return OrderView{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		AddressID:     order.AddressID,
		DeliveryNotes: order.DeliveryNotes,
		Subtotal:      order.Subtotal,
		DeliveryFee:   order.DeliveryFee,
		TotalAmount:   order.TotalAmount,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		IsPickup:      order.IsPickup,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
		Items:         items,
	}
}

type OrderController struct {
	orderService *services.OrderService
}

func NewOrderController(orderService *services.OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

// CreateOrder handles order creation requests
func (oc *OrderController) CreateOrder(ctx *gin.Context) {
	user := middleware.CurrentUser(ctx)

	var req services.CreateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	order, appErr := oc.orderService.CreateOrder(ctx.Request.Context(), user, &req)
	if appErr != nil {
		apperrors.Respond(ctx, appErr)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"order": toOrderView(order)})
}

// GetOrders returns paginated orders for the authenticated user
func (oc *OrderController) GetOrders(ctx *gin.Context) {
	user := middleware.CurrentUser(ctx)
	page, limit := parsePaginationParams(ctx)

	result, appErr := oc.orderService.GetUserOrders(ctx.Request.Context(), user.ID, page, limit)
	if appErr != nil {
		apperrors.Respond(ctx, appErr)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// GetAllOrders returns paginated orders for all users (admin only)
func (oc *OrderController) GetAllOrders(ctx *gin.Context) {
	page, limit := parsePaginationParams(ctx)

	result, appErr := oc.orderService.GetAllOrders(ctx.Request.Context(), page, limit)
	if appErr != nil {
		apperrors.Respond(ctx, appErr)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// GetOrderByID returns a specific order for the authenticated user
func (oc *OrderController) GetOrderByID(ctx *gin.Context) {
	user := middleware.CurrentUser(ctx)

	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID format"})
		return
	}

	order, appErr := oc.orderService.GetOrder(ctx.Request.Context(), user, orderID)
	if appErr != nil {
		apperrors.Respond(ctx, appErr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"order": toOrderView(order)})
}

// UpdateOrderStatus forces a fulfillment-state transition (admin only).
func (oc *OrderController) UpdateOrderStatus(ctx *gin.Context) {
	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID format"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	order, appErr := oc.orderService.UpdateStatus(ctx.Request.Context(), orderID, req.Status)
	if appErr != nil {
		apperrors.Respond(ctx, appErr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"order": toOrderView(order)})
}

// parsePaginationParams extracts and validates pagination parameters
func parsePaginationParams(ctx *gin.Context) (int, int) {
	const MaxLimit = 100
	const DefaultPage = 1
	const DefaultLimit = 10

	pageInt := DefaultPage
	limitInt := DefaultLimit

	if p, err := strconv.Atoi(ctx.DefaultQuery("page", "1")); err == nil && p > 0 {
		pageInt = p
	}
	if l, err := strconv.Atoi(ctx.DefaultQuery("limit", "10")); err == nil && l > 0 {
		limitInt = l
		if limitInt > MaxLimit {
			limitInt = MaxLimit
		}
	}

	return pageInt, limitInt
}
