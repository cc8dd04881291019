package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"libretrack/config"
	"libretrack/controllers"
	"libretrack/middleware"
	"libretrack/repository"
	"libretrack/routes"
	"libretrack/services"
	"libretrack/utils"
	"libretrack/websocket"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	mode := os.Getenv("GIN_MODE")
	if mode == "" {
		mode = "debug"
	}
	gin.SetMode(mode)

	if err := middleware.InitLogger(mode); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer middleware.FlushLogger()
	appLog := middleware.AppLogger()

	db, err := config.OpenDatabase()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer config.CloseDatabase(db)

	redisClient, err := config.OpenRedis()
	if err != nil {
		log.Printf("⚠️  Redis unavailable, continuing without it: %v", err)
		redisClient = nil
	}

	utils.RegisterValidators()

	jwtService := config.NewJWTService()
	store := repository.NewStore(db)
	hub := websocket.NewHub(jwtService, redisClient, appLog)

	authService := services.NewAuthService(store, jwtService, redisClient, appLog)
	catalogService := services.NewCatalogService(store, appLog)
	borrowService := services.NewBorrowService(store, appLog)
	notificationService := services.NewNotificationService(store, hub, appLog)

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		health := gin.H{"status": "ok"}
		if sqlDB, err := db.DB(); err == nil && sqlDB.Ping() == nil {
			health["database"] = "connected"
		} else {
			health["database"] = "disconnected"
		}
		if redisClient != nil {
			health["redis"] = "connected"
		} else {
			health["redis"] = "disabled"
		}
		c.JSON(http.StatusOK, health)
	})

	routes.SetupRoutes(r, routes.Controllers{
		Auth:         controllers.NewAuthController(authService),
		Book:         controllers.NewBookController(catalogService),
		Borrow:       controllers.NewBorrowController(borrowService),
		Notification: controllers.NewNotificationController(notificationService),
		Hub:          hub,
		JWTService:   jwtService,
		AuthService:  authService,
	})

	port := config.GetEnv("SERVER_PORT", "8080")
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("🚀 Server starting on port %s in %s mode", port, mode)
	log.Printf("❤️  Health check: http://localhost:%s/health", port)

	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
