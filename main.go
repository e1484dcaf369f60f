package main

import (
	"log"

	"github.com/cloudinary/cloudinary-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Salisuili/rest-backend/cache"
	"github.com/Salisuili/rest-backend/config"
	"github.com/Salisuili/rest-backend/controllers"
	"github.com/Salisuili/rest-backend/database"
	"github.com/Salisuili/rest-backend/events"
	"github.com/Salisuili/rest-backend/models"
	"github.com/Salisuili/rest-backend/pkg/logger"
	"github.com/Salisuili/rest-backend/repository"
	"github.com/Salisuili/rest-backend/routes"
	"github.com/Salisuili/rest-backend/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	logger.Initialize(cfg.Env)
	defer logger.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Log.Fatal("Could not connect to PostgreSQL", zap.Error(err))
	}

	if err := models.Migrate(db); err != nil {
		logger.Log.Fatal("Migration failed", zap.Error(err))
	}

	// Repositories
	userRepo := repository.NewGormUserRepository(db)
	addressRepo := repository.NewGormAddressRepository(db)
	categoryRepo := repository.NewGormCategoryRepository(db)
	menuRepo := repository.NewGormMenuRepository(db)
	orderRepo := repository.NewGormOrderRepository(db)

	// Optional infrastructure
	var menuCache *cache.MenuCache
	if cfg.RedisURL != "" {
		redisClient, err := cache.NewRedisClient(cfg.RedisURL)
		if err != nil {
			logger.Log.Fatal("Redis connection failed", zap.Error(err))
		}
		menuCache = cache.NewMenuCache(redisClient, logger.Log)
		logger.Log.Info("Menu cache enabled")
	}

	var publisher events.Publisher
	if cfg.KafkaBrokers != "" {
		producer := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger.Log)
		defer producer.Close()
		publisher = producer
	}

	var cld *cloudinary.Cloudinary
	if cfg.CloudinaryURL != "" {
		cld, err = cloudinary.NewFromURL(cfg.CloudinaryURL)
		if err != nil {
			logger.Log.Fatal("Cloudinary init failed", zap.Error(err))
		}
		cld.Config.URL.Secure = true
	}

	// Services
	tokens := services.NewTokenService(cfg.JWTSecret)
	gateway := services.NewPaystackClient(cfg.PaystackSecret)
	orderService := services.NewOrderService(orderRepo, menuRepo, addressRepo, publisher, logger.Log)
	paymentService := services.NewPaymentService(orderRepo, gateway, publisher, logger.Log)
	menuService := services.NewMenuService(menuRepo, categoryRepo, cld, menuCache, logger.Log)

	// Router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), logger.RequestLogger())

	routes.Register(r, routes.Controllers{
		Auth:      controllers.NewAuthController(userRepo, tokens, logger.Log),
		Address:   controllers.NewAddressController(addressRepo, logger.Log),
		Menu:      controllers.NewMenuController(menuService),
		Category:  controllers.NewCategoryController(menuService),
		Order:     controllers.NewOrderController(orderService),
		Payment:   controllers.NewPaymentController(paymentService, logger.Log),
		Dashboard: controllers.NewDashboardController(orderRepo, logger.Log),
	}, tokens, userRepo, cfg.FrontendURL)

	logger.Log.Info("Server starting", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Log.Fatal("Error starting server", zap.Error(err))
	}
}
