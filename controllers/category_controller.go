package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Salisuili/rest-backend/models"
	"github.com/Salisuili/rest-backend/pkg/apperrors"
	"github.com/Salisuili/rest-backend/services"
)

type CategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type CategoryController struct {
	menuService *services.MenuService
}

func NewCategoryController(menuService *services.MenuService) *CategoryController {
	return &CategoryController{menuService: menuService}
}

func (cc *CategoryController) ListCategories(c *gin.Context) {
	categories, appErr := cc.menuService.ListCategories(c.Request.Context())
	if appErr != nil {
		apperrors.Respond(c, appErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (cc *CategoryController) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	category := &models.Category{
		Name:        req.Name,
		Description: req.Description,
	}
	if appErr := cc.menuService.CreateCategory(c.Request.Context(), category); appErr != nil {
		apperrors.Respond(c, appErr)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"category": category})
}

func (cc *CategoryController) UpdateCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID format"})
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	category := &models.Category{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
	}
	if appErr := cc.menuService.UpdateCategory(c.Request.Context(), category); appErr != nil {
		apperrors.Respond(c, appErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

func (cc *CategoryController) DeleteCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID format"})
		return
	}

	if appErr := cc.menuService.DeleteCategory(c.Request.Context(), id); appErr != nil {
		apperrors.Respond(c, appErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}
