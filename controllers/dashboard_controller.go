package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Salisuili/rest-backend/pkg/apperrors"
	"github.com/Salisuili/rest-backend/repository"
)

type DashboardController struct {
	orders repository.OrderRepository
	log    *zap.Logger
}

func NewDashboardController(orders repository.OrderRepository, log *zap.Logger) *DashboardController {
	return &DashboardController{orders: orders, log: log}
}

// GetDashboard returns read-only aggregates for the admin dashboard.
func (dc *DashboardController) GetDashboard(c *gin.Context) {
	ctx := c.Request.Context()

	statusCounts, err := dc.orders.CountByStatus(ctx)
	if err != nil {
		dc.log.Error("Dashboard status counts failed", zap.Error(err))
		apperrors.Respond(c, apperrors.Upstream("Failed to load dashboard", err))
		return
	}

	revenue, err := dc.orders.PaidRevenue(ctx)
	if err != nil {
		dc.log.Error("Dashboard revenue failed", zap.Error(err))
		apperrors.Respond(c, apperrors.Upstream("Failed to load dashboard", err))
		return
	}

	topItems, err := dc.orders.TopItems(ctx, 5)
	if err != nil {
		dc.log.Error("Dashboard top items failed", zap.Error(err))
		apperrors.Respond(c, apperrors.Upstream("Failed to load dashboard", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders_by_status": statusCounts,
		"paid_revenue":     revenue,
		"top_items":        topItems,
	})
}
