package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"inkbook/internal/config"
	"inkbook/internal/database"
	"inkbook/internal/domain"
	"inkbook/internal/middleware"
	"inkbook/internal/modules/auth"
	"inkbook/internal/modules/availability"
	"inkbook/internal/modules/booking"
	"inkbook/internal/modules/catalog"
	"inkbook/internal/modules/commission"
	"inkbook/internal/modules/events"
	"inkbook/internal/modules/notification"
	"inkbook/internal/modules/payment"
	jwtsvc "inkbook/internal/pkg/jwt"
	"inkbook/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadRuntimeConfig()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is empty")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}
	if err := database.EnsureBookingConstraints(db); err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	studioRepo := repository.NewStudioRepository(db)
	artistRepo := repository.NewArtistRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	commissionRepo := repository.NewCommissionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)

	hub := events.NewHub()
	defer hub.Close()

	authService := auth.NewService(userRepo, j)
	authHandler := auth.NewHandler(authService)

	catalogService := catalog.NewService(studioRepo, artistRepo)
	catalogHandler := catalog.NewHandler(catalogService)

	availabilityService := availability.NewService(availabilityRepo, bookingRepo)
	availabilityHandler := availability.NewHandler(availabilityService)

	commissionService := commission.NewService(commissionRepo)
	commissionHandler := commission.NewHandler(commissionService)

	notificationService := notification.NewService(notificationRepo, artistRepo, studioRepo, hub, log.Printf)
	notificationHandler := notification.NewHandler(notificationService)

	gateway := payment.NewGateway(os.Getenv("PAYMENT_BASE_URL"), os.Getenv("PAYMENT_API_KEY"))

	resolver := booking.NewResolver(availabilityService, bookingRepo)
	refundDefaults := domain.RefundPolicy{
		FullRefundLead:    cfg.FullRefundLead,
		PartialRefundLead: cfg.PartialRefundLead,
		PartialBP:         cfg.PartialRefundBP,
	}
	bookingService := booking.NewService(
		bookingRepo,
		studioRepo,
		resolver,
		gateway,
		commissionService,
		notificationService,
		refundDefaults,
		cfg.ReminderLead,
		cfg.PaymentTimeout,
		log.Printf,
	)
	bookingHandler := booking.NewHandler(bookingService)

	wsHandler := events.NewWSHandler(hub, j)

	go reminderLoop(bookingService)

	if cfg.AppEnv == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	r.GET("/ws/events", wsHandler.HandleWebSocket)

	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterRoutes(v1)
		catalogHandler.RegisterPublicRoutes(v1)
		availabilityHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(j))
		{
			bookingHandler.RegisterClientRoutes(protected)
			notificationHandler.RegisterRoutes(protected)

			staff := protected.Group("/")
			staff.Use(middleware.StaffOnly())
			{
				bookingHandler.RegisterStaffRoutes(staff)
				availabilityHandler.RegisterArtistRoutes(staff)
			}

			owner := protected.Group("/")
			owner.Use(middleware.OwnerOnly())
			{
				catalogHandler.RegisterOwnerRoutes(owner)
				commissionHandler.RegisterOwnerRoutes(owner)
			}
		}
	}

	log.Printf("Listening on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatal(err)
	}
}

// reminderLoop periodically dispatches reminders for confirmed
// bookings entering the reminder window. A production deployment with
// several replicas would move this to a single scheduler.
func reminderLoop(svc *booking.Service) {
	ticker := time.NewTicker(15 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		sent, err := svc.DispatchReminders(ctx)
		cancel()
		if err != nil {
			log.Printf("reminder dispatch failed: %v", err)
			continue
		}
		if sent > 0 {
			log.Printf("dispatched %d booking reminders", sent)
		}
	}
}
