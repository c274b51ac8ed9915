package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"vatrentals/internal/analytics"
	"vatrentals/internal/caching"
	"vatrentals/internal/config"
	"vatrentals/internal/handlers"
	"vatrentals/internal/jobs/background"
	"vatrentals/internal/middleware"
	"vatrentals/internal/repositories"
	"vatrentals/internal/services"
	"vatrentals/pkg/database"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Database connection pool
	pool, err := database.NewPool(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Cache service
	cacheSvc := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	// Repositories
	carRepo := repositories.NewCarRepo(pool)
	customerRepo := repositories.NewCustomerRepo(pool)
	bookingRepo := repositories.NewBookingRepo(pool)
	expenseRepo := repositories.NewExpenseRepo(pool)
	insuranceRepo := repositories.NewInsuranceRepo(pool)

	// Services
	fleetSvc := services.NewFleetService(carRepo, bookingRepo, cacheSvc)
	customerSvc := services.NewCustomerService(customerRepo, cacheSvc)
	bookingSvc := services.NewBookingService(bookingRepo, carRepo, customerRepo, cacheSvc)
	expenseSvc := services.NewExpenseService(expenseRepo, carRepo)
	insuranceSvc := services.NewInsuranceService(insuranceRepo, carRepo)
	reminderSvc := services.NewReminderService(bookingRepo, cacheSvc)
	analyticsSvc := analytics.NewService(bookingRepo, carRepo, expenseRepo, cacheSvc)

	// Handlers
	carHandlers := handlers.NewCarHandlers(fleetSvc)
	customerHandlers := handlers.NewCustomerHandlers(customerSvc)
	bookingHandlers := handlers.NewBookingHandlers(bookingSvc, reminderSvc)
	expenseHandlers := handlers.NewExpenseHandlers(expenseSvc)
	insuranceHandlers := handlers.NewInsuranceHandlers(insuranceSvc)
	analyticsHandlers := handlers.NewAnalyticsHandlers(analyticsSvc)
	agreementHandlers := handlers.NewAgreementHandlers(bookingSvc, customerSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc)

	// Background jobs
	scheduler := background.NewJobScheduler(analyticsSvc, reminderSvc, cacheSvc,
		time.Duration(cfg.Jobs.ReminderRefreshMinutes)*time.Minute,
		time.Duration(cfg.Jobs.DashboardRefreshMinutes)*time.Minute)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start job scheduler: %v", err)
	}
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("Failed to stop job scheduler: %v", err)
		}
	}()
	jobHandlers := handlers.NewJobHandlers(scheduler)

	// HTTP server
	e := echo.New()
	e.HideBanner = true
	e.Pre(echoMiddleware.RemoveTrailingSlash())
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())

	// Health and monitoring
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)
	e.GET("/metrics", healthHandlers.GetMetrics)

	versionMiddleware := middleware.NewVersionMiddleware()
	v1 := versionMiddleware.VersionRoute(e, "v1")

	// Fleet directory
	v1.POST("/cars", carHandlers.CreateCar)
	v1.GET("/cars", carHandlers.GetCars)
	v1.GET("/cars/search", carHandlers.SearchCars)
	v1.GET("/cars/:id", carHandlers.GetCarByID)
	v1.PUT("/cars/:id", carHandlers.UpdateCar)
	v1.PUT("/cars/:id/status", carHandlers.UpdateCarStatus)
	v1.DELETE("/cars/:id", carHandlers.DeleteCar)

	// Customer directory
	v1.POST("/customers", customerHandlers.CreateCustomer)
	v1.GET("/customers", customerHandlers.GetCustomers)
	v1.GET("/customers/search", customerHandlers.SearchCustomers)
	v1.GET("/customers/:id", customerHandlers.GetCustomerByID)
	v1.PUT("/customers/:id", customerHandlers.UpdateCustomer)
	v1.DELETE("/customers/:id", customerHandlers.DeleteCustomer)

	// Booking ledger
	v1.POST("/bookings", bookingHandlers.CreateBooking)
	v1.GET("/bookings", bookingHandlers.GetBookings)
	v1.GET("/bookings/search", bookingHandlers.SearchBookings)
	v1.GET("/bookings/calendar", bookingHandlers.GetCalendar)
	v1.GET("/bookings/reminders", bookingHandlers.GetReminders)
	v1.GET("/bookings/next-code", bookingHandlers.GetNextBookingCode)
	v1.GET("/bookings/code/:code", bookingHandlers.GetBookingByCode)
	v1.GET("/bookings/:id", bookingHandlers.GetBookingByID)
	v1.PUT("/bookings/:id", bookingHandlers.UpdateBooking)
	v1.POST("/bookings/:id/return", bookingHandlers.ReturnBooking)
	v1.POST("/bookings/:id/refund-deposit", bookingHandlers.RefundDeposit)
	v1.POST("/bookings/:id/cancel", bookingHandlers.CancelBooking)
	v1.GET("/bookings/:id/agreement", agreementHandlers.GetAgreementPDF)

	// Expenses
	v1.POST("/expenses", expenseHandlers.CreateExpense)
	v1.GET("/expenses", expenseHandlers.GetExpenses)
	v1.GET("/expenses/:id", expenseHandlers.GetExpenseByID)
	v1.PUT("/expenses/:id", expenseHandlers.UpdateExpense)
	v1.DELETE("/expenses/:id", expenseHandlers.DeleteExpense)

	// Insurance
	v1.POST("/insurance", insuranceHandlers.CreatePolicy)
	v1.GET("/insurance", insuranceHandlers.GetPolicies)
	v1.GET("/insurance/:id", insuranceHandlers.GetPolicyByID)
	v1.PUT("/insurance/:id", insuranceHandlers.UpdatePolicy)
	v1.DELETE("/insurance/:id", insuranceHandlers.DeletePolicy)

	// Analytics
	v1.GET("/analytics/dashboard", analyticsHandlers.GetDashboard)
	v1.POST("/analytics/dashboard/refresh", analyticsHandlers.RefreshDashboard)

	// Background jobs
	v1.GET("/jobs", jobHandlers.GetJobStatus)

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
}
