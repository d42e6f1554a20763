package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/gig-portal/eqrf_backend/config"
	"github.com/gig-portal/eqrf_backend/controllers"
	"github.com/gig-portal/eqrf_backend/middleware"
	"github.com/gig-portal/eqrf_backend/repositories"
	"github.com/gig-portal/eqrf_backend/routes"
	"github.com/gig-portal/eqrf_backend/security"
	"github.com/gig-portal/eqrf_backend/websocket"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Connect to Redis (optional, throttling degrades gracefully without it)
	redisClient := config.ConnectRedis()

	// Connect to database
	client := config.ConnectDB()

	// Create WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Expired blacklisted tokens get swept in the background
	go middleware.CleanupBlacklist()

	// Create a new Echo instance
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.Secure())
	e.Use(rateLimiter.RateLimit())
	e.Use(security.EnforceContentType())
	e.Use(middleware.SecurityHeadersWithConfig(middleware.SecurityConfig{
		AllowedDomains: []string{"*"},
		AllowInlineJS:  false,
		AllowEval:      false,
	}))

	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "OK",
			"message": "eQRF Backend is running",
			"version": "1.0",
		})
	})

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":   "healthy",
			"database": "connected",
		})
	})

	// Initialize repositories
	userRepo := repositories.NewUserRepository(client)
	qrfRepo := repositories.NewQRFRepository(client)
	logRepo := repositories.NewLogRepository(client)
	crmRepo := repositories.NewCRMRepository(client)

	// Initialize controllers
	authController := controllers.NewAuthController(userRepo, logRepo, redisClient)
	userController := controllers.NewUserController(userRepo, logRepo)
	qrfController := controllers.NewQRFController(qrfRepo, userRepo, logRepo, wsHub)
	crmController := controllers.NewCRMController(crmRepo, crmRepo, userRepo, logRepo)
	logController := controllers.NewLogController(userRepo, logRepo)
	reportController := controllers.NewReportController(qrfRepo)

	// Register routes
	routes.RegisterAuthRoutes(e, authController)
	routes.RegisterUserRoutes(e, userController)
	routes.RegisterQRFRoutes(e, qrfController)
	routes.RegisterCRMRoutes(e, crmController)
	routes.RegisterLogRoutes(e, logController, reportController)

	// WebSocket endpoint; the token travels as a query parameter
	e.GET("/ws", func(c echo.Context) error {
		return websocket.HandleWebSocket(c, wsHub)
	})

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}
