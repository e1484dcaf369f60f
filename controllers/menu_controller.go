package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Salisuili/rest-backend/pkg/apperrors"
	"github.com/Salisuili/rest-backend/services"
)

type MenuController struct {
	menuService *services.MenuService
}

func NewMenuController(menuService *services.MenuService) *MenuController {
	return &MenuController{menuService: menuService}
}

// ListMenuItems returns paginated menu items, optionally filtered by category.
func (mc *MenuController) ListMenuItems(c *gin.Context) {
	page, limit := parsePaginationParams(c)

	categoryID := uuid.Nil
	if raw := c.Query("category_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID format"})
			return
		}
		categoryID = parsed
	}

	result, appErr := mc.menuService.ListItems(c.Request.Context(), page, limit, categoryID)
	if appErr != nil {
		apperrors.Respond(c, appErr)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (mc *MenuController) GetMenuItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid menu item ID format"})
		return
	}

	item, appErr := mc.menuService.GetItem(c.Request.Context(), id)
	if appErr != nil {
		apperrors.Respond(c, appErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": item})
}

// CreateMenuItem creates a menu item from a multipart form, uploading the
// optional image to external storage (admin only).
func (mc *MenuController) CreateMenuItem(c *gin.Context) {
	var req services.MenuItemRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}

	// Image is optional on create.
	image, _ := c.FormFile("image")

	item, appErr := mc.menuService.CreateItem(c.Request.Context(), &req, image)
	if appErr != nil {
		apperrors.Respond(c, appErr)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"item": item})
}

func (mc *MenuController) UpdateMenuItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid menu item ID format"})
		return
	}

	var req services.MenuItemRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}

	image, _ := c.FormFile("image")

	item, appErr := mc.menuService.UpdateItem(c.Request.Context(), id, &req, image)
	if appErr != nil {
		apperrors.Respond(c, appErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": item})
}

func (mc *MenuController) DeleteMenuItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid menu item ID format"})
		return
	}

	if appErr := mc.menuService.DeleteItem(c.Request.Context(), id); appErr != nil {
		apperrors.Respond(c, appErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted"})
}
