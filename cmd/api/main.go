package main

import (
	"fmt"
	"net/http"
	"os"

	"debtwise/internal/config"
	"debtwise/internal/database"
	"debtwise/internal/handlers"
	"debtwise/internal/logger"
	"debtwise/internal/middleware"
	"debtwise/internal/services"
	"debtwise/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "debtwise/internal/docs" // Import swagger docs
)

// @title           DebtWise API
// @version         1.0
// @description     DebtWise is a personal finance API for budgeting with rollover periods, spending forecasts, anomaly detection and debt payoff planning.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom binding validators
	validator.Register()

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	categoryService := services.NewCategoryService(db)
	transactionService := services.NewTransactionService(db)
	budgetService := services.NewBudgetService(db)
	forecastService := services.NewForecastService(db, appConfig)
	insightService := services.NewInsightService(db, budgetService, forecastService)
	debtService := services.NewDebtService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	budgetHandler := handlers.NewBudgetHandler(budgetService)
	forecastHandler := handlers.NewForecastHandler(forecastService)
	insightHandler := handlers.NewInsightHandler(insightService)
	debtHandler := handlers.NewDebtHandler(debtService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Category routes
	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/spending", transactionHandler.GetSpendingByCategory)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Budget routes
	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/overview", budgetHandler.GetBudgetOverview)
	budgets.PUT("/alerts/:alert_id", budgetHandler.UpdateAlert)
	budgets.DELETE("/alerts/:alert_id", budgetHandler.DeleteAlert)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.GET("/:id/period", budgetHandler.GetCurrentPeriod)
	budgets.POST("/:id/rollover", budgetHandler.ProcessRollover)
	budgets.GET("/:id/summary", budgetHandler.GetBudgetSummary)
	budgets.POST("/:id/alerts", budgetHandler.CreateAlert)

	// Forecast routes
	forecasts := protected.Group("/forecasts")
	forecasts.POST("/spending", forecastHandler.GenerateSpendingForecast)
	forecasts.GET("/spending", forecastHandler.GetSpendingForecasts)
	forecasts.POST("/cashflow", forecastHandler.GenerateCashflowForecast)
	forecasts.GET("/cashflow", forecastHandler.GetCashflowForecasts)

	// Anomaly routes
	anomalies := protected.Group("/anomalies")
	anomalies.POST("/detect", forecastHandler.DetectAnomalies)
	anomalies.GET("", forecastHandler.GetAnomalies)
	anomalies.POST("/:id/feedback", forecastHandler.SubmitAnomalyFeedback)

	// Insight routes
	insights := protected.Group("/insights")
	insights.POST("/generate", insightHandler.GenerateInsights)
	insights.GET("", insightHandler.GetInsights)
	insights.GET("/:id", insightHandler.GetInsight)
	insights.PUT("/:id/status", insightHandler.UpdateInsightStatus)

	// Debt routes
	debts := protected.Group("/debts")
	debts.POST("", debtHandler.CreateDebt)
	debts.GET("", debtHandler.GetDebts)
	debts.GET("/summary", debtHandler.GetDebtSummary)
	debts.POST("/payoff-plan", debtHandler.GeneratePayoffPlan)
	debts.GET("/:id", debtHandler.GetDebt)
	debts.PUT("/:id", debtHandler.UpdateDebt)
	debts.DELETE("/:id", debtHandler.DeleteDebt)
	debts.POST("/:id/payments", debtHandler.RecordPayment)

	log.Infof("Starting DebtWise backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
