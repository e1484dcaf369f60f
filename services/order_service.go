package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Salisuili/rest-backend/events"
	"github.com/Salisuili/rest-backend/models"
	"github.com/Salisuili/rest-backend/pkg/apperrors"
	"github.com/Salisuili/rest-backend/repository"
)

type CreateOrderItem struct {
	ID                  uuid.UUID `json:"id" binding:"required"`
	Quantity            int       `json:"quantity" binding:"required,min=1"`
	SpecialInstructions string    `json:"special_instructions"`
}

type CreateOrderRequest struct {
	Items         []CreateOrderItem `json:"items" binding:"required,dive"`
	AddressID     *uuid.UUID        `json:"address_id"`
	DeliveryNotes string            `json:"delivery_notes"`
	IsPickup      bool              `json:"is_pickup"`
}

type OrderListResult struct {
	Orders []models.Order `json:"orders"`
	Meta   MetaData       `json:"meta"`
}

type MetaData struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasMore    bool  `json:"has_more"`
}

// validStatusTargets is the fixed allow-list for administrative transitions.
var validStatusTargets = map[string]bool{
	models.OrderStatusPaymentPending: true,
	models.OrderStatusProcessing:     true,
	models.OrderStatusShipped:        true,
	models.OrderStatusCompleted:      true,
	models.OrderStatusCancelled:      true,
}

// OrderService drives the order workflow: validation, authoritative pricing,
// transactional persistence and the fulfillment status state machine.
type OrderService struct {
	orders    repository.OrderRepository
	menu      repository.MenuRepository
	addresses repository.AddressRepository
	events    events.Publisher
	log       *zap.Logger
}

func NewOrderService(
	orders repository.OrderRepository,
	menu repository.MenuRepository,
	addresses repository.AddressRepository,
	publisher events.Publisher,
	log *zap.Logger,
) *OrderService {
	return &OrderService{
		orders:    orders,
		menu:      menu,
		addresses: addresses,
		events:    publisher,
		log:       log,
	}
}

// CreateOrder validates the request, recomputes all pricing server-side and
// persists the order with its line items atomically. Client-supplied prices
// are never consulted.
func (s *OrderService) CreateOrder(ctx context.Context, actor *models.User, req *CreateOrderRequest) (*models.Order, *apperrors.Error) {
	if len(req.Items) == 0 {
		return nil, apperrors.Validation("At least one item is required")
	}
	if !req.IsPickup && req.AddressID == nil {
		return nil, apperrors.Validation("Delivery address is required for non-pickup orders")
	}

	ids := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.ID)
	}

	menuItems, err := s.menu.FindByIDs(ctx, ids)
	if err != nil {
		s.log.Error("Menu lookup failed", zap.Error(err))
		return nil, apperrors.Upstream("Failed to resolve menu items", err)
	}
	priceByID := make(map[uuid.UUID]models.MenuItem, len(menuItems))
	for _, m := range menuItems {
		priceByID[m.ID] = m
	}

	var subtotal float64
	orderItems := make([]models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		menuItem, ok := priceByID[item.ID]
		if !ok {
			return nil, apperrors.Validation(fmt.Sprintf("Unknown menu item: %s", item.ID))
		}
		if !menuItem.IsAvailable {
			return nil, apperrors.Validation(fmt.Sprintf("Menu item is unavailable: %s", menuItem.Name))
		}
		subtotal += menuItem.Price * float64(item.Quantity)
		orderItems = append(orderItems, models.OrderItem{
			MenuItemID:          item.ID,
			Quantity:            item.Quantity,
			PriceAtOrder:        menuItem.Price,
			SpecialInstructions: item.SpecialInstructions,
		})
	}

	// Pickup orders never reference an address; anything the client sent is
	// discarded rather than stored unvalidated.
	var addressID *uuid.UUID
	var deliveryFee float64
	if !req.IsPickup {
		// Ownership check doubles as the existence check: another user's
		// address is indistinguishable from a missing one.
		address, err := s.addresses.FindByIDAndUserID(ctx, *req.AddressID, actor.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NotFound("Address not found")
			}
			s.log.Error("Address lookup failed", zap.Error(err))
			return nil, apperrors.Upstream("Failed to resolve address", err)
		}
		addressID = req.AddressID
		deliveryFee = DeliveryFee(address.City, subtotal)
	}

	order := &models.Order{
		UserID:        actor.ID,
		AddressID:     addressID,
		DeliveryNotes: req.DeliveryNotes,
		Subtotal:      subtotal,
		DeliveryFee:   deliveryFee,
		TotalAmount:   subtotal + deliveryFee,
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		IsPickup:      req.IsPickup,
		Items:         orderItems,
	}

	if appErr := s.persistWithFreshNumber(ctx, order); appErr != nil {
		return nil, appErr
	}

	if s.events != nil {
		s.events.Publish("order.created", map[string]interface{}{
			"order_id":     order.ID.String(),
			"order_number": order.OrderNumber,
			"user_id":      actor.ID.String(),
			"total_amount": order.TotalAmount,
		})
	}

	s.log.Info("Order created",
		zap.String("order_number", order.OrderNumber),
		zap.String("user_id", actor.ID.String()),
		zap.Float64("total", order.TotalAmount),
	)
	return order, nil
}

// persistWithFreshNumber inserts the order, regenerating the order number on
// the off chance it collides with an existing one.
func (s *OrderService) persistWithFreshNumber(ctx context.Context, order *models.Order) *apperrors.Error {
	for attempt := 0; attempt < 3; attempt++ {
		number, err := GenerateOrderNumber()
		if err != nil {
			return apperrors.Internal(err)
		}
		order.OrderNumber = number

		err = s.orders.CreateWithItems(ctx, order)
		if err == nil {
			return nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			s.log.Warn("Order number collision, regenerating", zap.String("order_number", number))
			continue
		}
		s.log.Error("Order insert failed", zap.Error(err))
		return apperrors.Upstream("Failed to create order", err)
	}
	return apperrors.Conflict("Could not allocate a unique order number")
}

// GetUserOrders retrieves paginated orders for the acting user.
func (s *OrderService) GetUserOrders(ctx context.Context, userID uuid.UUID, page, limit int) (*OrderListResult, *apperrors.Error) {
	orders, total, err := s.orders.FindByUserID(ctx, userID, page, limit)
	if err != nil {
		s.log.Error("Failed to fetch orders", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, apperrors.Upstream("Failed to fetch orders", err)
	}
	return listResult(orders, total, page, limit), nil
}

// GetAllOrders retrieves paginated orders across all users (admin only).
func (s *OrderService) GetAllOrders(ctx context.Context, page, limit int) (*OrderListResult, *apperrors.Error) {
	orders, total, err := s.orders.FindAll(ctx, page, limit)
	if err != nil {
		s.log.Error("Failed to fetch all orders", zap.Error(err))
		return nil, apperrors.Upstream("Failed to fetch orders", err)
	}
	return listResult(orders, total, page, limit), nil
}

// GetOrder returns one order. Non-admin actors can only see their own;
// anyone else's order reads as not found.
func (s *OrderService) GetOrder(ctx context.Context, actor *models.User, orderID uuid.UUID) (*models.Order, *apperrors.Error) {
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
		s.log.Error("Failed to fetch order", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, apperrors.Upstream("Failed to fetch order", err)
	}
	return order, nil
}

// UpdateStatus applies an administrative fulfillment-state transition.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*models.Order, *apperrors.Error) {
	if !validStatusTargets[status] {
		return nil, apperrors.Validation(fmt.Sprintf("Invalid order status: %s", status))
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Order not found")
		}
		return nil, apperrors.Upstream("Failed to fetch order", err)
	}

	if order.Status == models.OrderStatusCompleted || order.Status == models.OrderStatusCancelled {
		return nil, apperrors.Validation(fmt.Sprintf("Order is already %s", order.Status))
	}

	if err := s.orders.UpdateFields(ctx, order.ID, map[string]interface{}{
		"status": status,
	}); err != nil {
		s.log.Error("Status update failed", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, apperrors.Upstream("Failed to update order status", err)
	}

	if s.events != nil {
		s.events.Publish("order.status_changed", map[string]interface{}{
			"order_id": order.ID.String(),
			"from":     order.Status,
			"to":       status,
		})
	}

	order.Status = status
	return order, nil
}

func listResult(orders []models.Order, total int64, page, limit int) *OrderListResult {
	return &OrderListResult{
		Orders: orders,
		Meta: MetaData{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: calculateTotalPages(total, limit),
			HasMore:    total > int64(page*limit),
		},
	}
}

func calculateTotalPages(total int64, limit int) int64 {
	if limit == 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
