package main

import (
	"log"

	api "sinara-backend/cmd/api"
	authdomain "sinara-backend/internal/auth/domain"
	authRepo "sinara-backend/internal/auth/repository"
	authUsecase "sinara-backend/internal/auth/usecase"
	notifDelivery "sinara-backend/internal/notification/delivery"
	notifdomain "sinara-backend/internal/notification/domain"
	notifRepo "sinara-backend/internal/notification/repository"
	notifUsecase "sinara-backend/internal/notification/usecase"
	"sinara-backend/pkg/config"
	"sinara-backend/pkg/database"
	"sinara-backend/pkg/fcm"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(&authdomain.User{}, &authdomain.DeviceSession{}, &notifdomain.Notification{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	userRepo := authRepo.NewUserRepository(db)
	sessionRepo := authRepo.NewDeviceSessionRepository(db)
	notificationRepo := notifRepo.NewNotificationRepository(db)

	// Initialize FCM client. Missing or invalid credentials leave the
	// client permanently unavailable; the rest of the app keeps working.
	fcmClient := fcm.NewClient(cfg.FirebaseCredentials)

	// Initialize use cases (dependency injection)
	authUsecaseInstance := authUsecase.NewAuthUsecase(userRepo, sessionRepo, cfg)
	dispatcher := notifUsecase.NewPushDispatcher(notificationRepo, sessionRepo, fcmClient, cfg.FCMTimeout)
	broadcaster := notifUsecase.NewBroadcastCoordinator(dispatcher, userRepo, cfg.BroadcastConcurrency)

	// Initialize HTTP handler
	notificationHandler := notifDelivery.NewNotificationHandler(notificationRepo, dispatcher, broadcaster)
	handler := api.NewHandler(authUsecaseInstance, notificationHandler, cfg)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
