package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Salisuili/rest-backend/controllers"
	"github.com/Salisuili/rest-backend/middleware"
	"github.com/Salisuili/rest-backend/repository"
	"github.com/Salisuili/rest-backend/services"
)

// Controllers bundles every controller the router wires up.
type Controllers struct {
	Auth      *controllers.AuthController
	Address   *controllers.AddressController
	Menu      *controllers.MenuController
	Category  *controllers.CategoryController
	Order     *controllers.OrderController
	Payment   *controllers.PaymentController
	Dashboard *controllers.DashboardController
}

func Register(r *gin.Engine, ctrl Controllers, tokens *services.TokenService, users repository.UserRepository, frontendURL string) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{frontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	auth := r.Group("/auth")
	auth.Use(middleware.RateLimit())
	auth.POST("/register", ctrl.Auth.Register)
	auth.POST("/login", ctrl.Auth.Login)

	// Public browse
	r.GET("/categories", ctrl.Category.ListCategories)
	r.GET("/menu", ctrl.Menu.ListMenuItems)
	r.GET("/menu/:id", ctrl.Menu.GetMenuItem)

	// Gateway webhook; authenticated by its signature, not a bearer token.
	r.POST("/payments/webhook", ctrl.Payment.Webhook)

	authed := r.Group("/")
	authed.Use(middleware.Auth(tokens, users))
	{
		authed.GET("/addresses", ctrl.Address.ListAddresses)
		authed.POST("/addresses", ctrl.Address.CreateAddress)
		authed.PUT("/addresses/:id", ctrl.Address.UpdateAddress)
		authed.DELETE("/addresses/:id", ctrl.Address.DeleteAddress)

		authed.POST("/orders", ctrl.Order.CreateOrder)
		authed.GET("/orders", ctrl.Order.GetOrders)
		authed.GET("/orders/:id", ctrl.Order.GetOrderByID)
		authed.POST("/orders/:id/pay", ctrl.Payment.InitiatePayment)
		authed.GET("/orders/:id/verify", ctrl.Payment.VerifyPayment)
	}

	admin := r.Group("/admin")
	admin.Use(middleware.Auth(tokens, users), middleware.AdminOnly())
	{
		admin.GET("/orders", ctrl.Order.GetAllOrders)
		admin.PATCH("/orders/:id/status", ctrl.Order.UpdateOrderStatus)

		admin.POST("/menu", ctrl.Menu.CreateMenuItem)
		admin.PUT("/menu/:id", ctrl.Menu.UpdateMenuItem)
		admin.DELETE("/menu/:id", ctrl.Menu.DeleteMenuItem)

		admin.POST("/categories", ctrl.Category.CreateCategory)
		admin.PUT("/categories/:id", ctrl.Category.UpdateCategory)
		admin.DELETE("/categories/:id", ctrl.Category.DeleteCategory)

		admin.GET("/dashboard", ctrl.Dashboard.GetDashboard)
	}
}
