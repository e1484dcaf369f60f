package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Salisuili/rest-backend/models"
	"github.com/Salisuili/rest-backend/pkg/apperrors"
	"github.com/Salisuili/rest-backend/repository"
	"github.com/Salisuili/rest-backend/services"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthController struct {
	users  repository.UserRepository
	tokens *services.TokenService
	log    *zap.Logger
}

func NewAuthController(users repository.UserRepository, tokens *services.TokenService, log *zap.Logger) *AuthController {
	return &AuthController{users: users, tokens: tokens, log: log}
}

// Register creates a new customer account.
func (ac *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		apperrors.Respond(c, apperrors.Internal(err))
		return
	}

	// Role is never taken from the request; admins are promoted out of band.
	newUser := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
		Role:     models.RoleCustomer,
	}

	if err := ac.users.Create(c.Request.Context(), newUser); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			apperrors.Respond(c, apperrors.Conflict("Email already exists"))
			return
		}
		ac.log.Error("Error inserting user", zap.Error(err))
		apperrors.Respond(c, apperrors.Upstream("Failed to create account", err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created successfully",
		"user": gin.H{
			"id":    newUser.ID,
			"email": newUser.Email,
			"role":  newUser.Role,
		},
	})
}

// Login verifies credentials and issues a bearer token. Unknown email and
// wrong password answer identically.
func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	user, err := ac.users.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		apperrors.Respond(c, apperrors.Unauthorized("Invalid email or password"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		apperrors.Respond(c, apperrors.Unauthorized("Invalid email or password"))
		return
	}

	token, err := ac.tokens.GenerateToken(user)
	if err != nil {
		ac.log.Error("Token generation failed", zap.Error(err))
		apperrors.Respond(c, apperrors.Internal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
			"role":  user.Role,
		},
	})
}
