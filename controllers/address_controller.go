package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Salisuili/rest-backend/middleware"
	"github.com/Salisuili/rest-backend/models"
	"github.com/Salisuili/rest-backend/pkg/apperrors"
	"github.com/Salisuili/rest-backend/repository"
)

type AddressRequest struct {
	Street     string  `json:"street" binding:"required"`
	City       string  `json:"city" binding:"required"`
	State      string  `json:"state" binding:"required"`
	PostalCode *string `json:"postal_code"`
	Country    string  `json:"country" binding:"required"`
	IsDefault  bool    `json:"is_default"`
}

type AddressController struct {
	addresses repository.AddressRepository
	log       *zap.Logger
}

func NewAddressController(addresses repository.AddressRepository, log *zap.Logger) *AddressController {
	return &AddressController{addresses: addresses, log: log}
}

// ListAddresses returns the acting user's addresses.
func (ac *AddressController) ListAddresses(c *gin.Context) {
	user := middleware.CurrentUser(c)

	addresses, err := ac.addresses.ListByUserID(c.Request.Context(), user.ID)
	if err != nil {
		ac.log.Error("Failed to list addresses", zap.Error(err))
		apperrors.Respond(c, apperrors.Upstream("Failed to fetch addresses", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"addresses": addresses})
}

// CreateAddress adds a delivery address for the acting user. The first
// address automatically becomes the default.
func (ac *AddressController) CreateAddress(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	count, err := ac.addresses.CountByUserID(c.Request.Context(), user.ID)
	if err != nil {
		apperrors.Respond(c, apperrors.Upstream("Failed to create address", err))
		return
	}

	address := &models.Address{
		UserID:     user.ID,
		Street:     req.Street,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		IsDefault:  req.IsDefault || count == 0,
	}

	if err := ac.addresses.Create(c.Request.Context(), address); err != nil {
		ac.log.Error("Error creating address", zap.Error(err))
		apperrors.Respond(c, apperrors.Upstream("Failed to create address", err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"address": address})
}

// UpdateAddress modifies one of the acting user's addresses.
func (ac *AddressController) UpdateAddress(c *gin.Context) {
	user := middleware.CurrentUser(c)

	addressID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid address ID format"})
		return
	}

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	address, err := ac.addresses.FindByIDAndUserID(c.Request.Context(), addressID, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apperrors.Respond(c, apperrors.NotFound("Address not found"))
			return
		}
		apperrors.Respond(c, apperrors.Upstream("Failed to fetch address", err))
		return
	}

	address.Street = req.Street
	address.City = req.City
	address.State = req.State
	address.PostalCode = req.PostalCode
	address.Country = req.Country
	address.IsDefault = req.IsDefault

	if err := ac.addresses.Update(c.Request.Context(), address); err != nil {
		ac.log.Error("Error updating address", zap.Error(err))
		apperrors.Respond(c, apperrors.Upstream("Failed to update address", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"address": address})
}

// DeleteAddress removes an address, refusing to delete the user's last one.
func (ac *AddressController) DeleteAddress(c *gin.Context) {
	user := middleware.CurrentUser(c)

	addressID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid address ID format"})
		return
	}

	count, err := ac.addresses.CountByUserID(c.Request.Context(), user.ID)
	if err != nil {
		apperrors.Respond(c, apperrors.Upstream("Failed to delete address", err))
		return
	}
	if count <= 1 {
		apperrors.Respond(c, apperrors.Validation("You must keep at least one address"))
		return
	}

	if err := ac.addresses.Delete(c.Request.Context(), addressID, user.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apperrors.Respond(c, apperrors.NotFound("Address not found"))
			return
		}
		apperrors.Respond(c, apperrors.Upstream("Failed to delete address", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Address deleted"})
}
