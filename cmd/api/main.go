package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/your-org/coffee-marketplace/internal/config"
	"github.com/your-org/coffee-marketplace/internal/domain/analytics"
	"github.com/your-org/coffee-marketplace/internal/domain/cart"
	"github.com/your-org/coffee-marketplace/internal/domain/checkout"
	"github.com/your-org/coffee-marketplace/internal/domain/order"
	"github.com/your-org/coffee-marketplace/internal/domain/product"
	"github.com/your-org/coffee-marketplace/internal/domain/user"
	"github.com/your-org/coffee-marketplace/internal/domain/voucher"
	"github.com/your-org/coffee-marketplace/internal/domain/wishlist"
	"github.com/your-org/coffee-marketplace/internal/infrastructure/database/postgres"
	"github.com/your-org/coffee-marketplace/internal/infrastructure/database/redis"
	httpserver "github.com/your-org/coffee-marketplace/internal/interfaces/http"
	"github.com/your-org/coffee-marketplace/internal/interfaces/http/handlers"
	"github.com/your-org/coffee-marketplace/internal/interfaces/http/routes"
	"github.com/your-org/coffee-marketplace/internal/pkg/email"
	"github.com/your-org/coffee-marketplace/internal/pkg/events"
	"github.com/your-org/coffee-marketplace/internal/pkg/kvstore"
	"github.com/your-org/coffee-marketplace/internal/pkg/pdf"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := setupLogger(cfg)
	logger.WithFields(logrus.Fields{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Info("Starting application")

	db, err := postgres.NewConnection(cfg)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redisClient, err := redis.NewConnection(cfg)
	if err != nil {
		logger.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	migration := postgres.NewMigration(db.DB)
	if err := migration.RunAutoMigrations(); err != nil {
		logger.Fatalf("Database migration failed: %v", err)
	}
	if err := migration.CreateIndexes(); err != nil {
		logger.WithError(err).Warn("Index creation failed")
	}
	if cfg.IsDevelopment() {
		if err := migration.SeedInitialData(); err != nil {
			logger.WithError(err).Warn("Data seeding failed")
		}
	}

	kv := kvstore.NewRedisStore(redisClient.GetClient())
	bus := events.NewMemoryBus(logger)

	userService := user.NewService(db.DB, cfg, bus)
	addressService := user.NewAddressService(db.DB, cfg)
	adminService := user.NewAdminService(db.DB, cfg)
	productService := product.NewService(db.DB, cfg)
	reviewService := product.NewReviewService(db.DB, cfg)
	voucherStore := voucher.NewStore(kv, cfg)
	cartService := cart.NewService(db.DB, kv, cfg, bus)
	checkoutService := checkout.NewService(kv, cfg, cartService, voucherStore)
	orderService := order.NewService(db.DB, cfg, cartService, checkoutService, userService, addressService, bus)
	wishlistService := wishlist.NewService(db.DB, cfg, cartService, bus)
	analyticsService := analytics.NewService(db.DB, cfg)
	pdfService := pdf.NewService(cfg)

	emailService, err := email.NewService(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize email service: %v", err)
	}
	subscribeEmailNotifications(bus, emailService, userService, logger)

	h := &routes.Handlers{
		Auth:       handlers.NewAuthHandler(userService, cfg),
		Profile:    handlers.NewUserProfileHandler(userService, cfg),
		Address:    handlers.NewUserAddressHandler(addressService, cfg),
		Balance:    handlers.NewBalanceHandler(userService, cfg),
		Product:    handlers.NewProductHandler(productService, voucherStore, cfg),
		Review:     handlers.NewReviewHandler(reviewService),
		Cart:       handlers.NewCartHandler(cartService, cfg),
		Checkout:   handlers.NewCheckoutHandler(checkoutService, orderService, cfg),
		Order:      handlers.NewOrderHandler(orderService, productService, cfg),
		Invoice:    handlers.NewInvoiceHandler(orderService, userService, pdfService, cfg),
		Voucher:    handlers.NewVoucherHandler(voucherStore, productService, cfg),
		Wishlist:   handlers.NewWishlistHandler(wishlistService, cfg),
		Analytics:  handlers.NewAnalyticsHandler(analyticsService, productService, cfg),
		Admin:      handlers.NewUserAdminHandler(adminService, cfg),
		RoleReader: userService,
	}

	server := httpserver.NewServer(cfg, db, redisClient, h, logger)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		logger.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}

	logger.Info("Server shutdown completed")
}

func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}

// subscribeEmailNotifications delivers transactional emails off the event
// bus so domain services stay unaware of the mail provider.
func subscribeEmailNotifications(bus events.Bus, emailService *email.Service, userService *user.Service, logger *logrus.Logger) {
	bus.Subscribe(events.TopicUserRegistered, func(e events.Event) {
		u, ok := e.Payload.(*user.User)
		if !ok {
			return
		}
		if err := emailService.SendWelcomeEmail(u); err != nil {
			logger.WithError(err).WithField("user_id", u.ID).Warn("Failed to send welcome email")
		}
	})

	bus.Subscribe(events.TopicOrderPlaced, func(e events.Event) {
		o, ok := e.Payload.(*order.Order)
		if !ok {
			return
		}
		u, err := userService.GetProfile(e.UserID)
		if err != nil {
			logger.WithError(err).WithField("user_id", e.UserID).Warn("Failed to load user for order confirmation email")
			return
		}
		if err := emailService.SendOrderConfirmation(u, o); err != nil {
			logger.WithError(err).WithField("order_number", o.OrderNumber).Warn("Failed to send order confirmation email")
		}
	})

	bus.Subscribe(events.TopicOrderStatus, func(e events.Event) {
		change, ok := e.Payload.(*order.StatusChange)
		if !ok {
			return
		}
		u, err := userService.GetProfile(e.UserID)
		if err != nil {
			logger.WithError(err).WithField("user_id", e.UserID).Warn("Failed to load user for status update email")
			return
		}
		if err := emailService.SendOrderStatusUpdate(u, change.Order, change.Comment); err != nil {
			logger.WithError(err).WithField("order_number", change.Order.OrderNumber).Warn("Failed to send status update email")
		}
	})
}
