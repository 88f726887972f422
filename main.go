package main

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/washbook/washbook-api/authz"
	"github.com/washbook/washbook-api/config"
	"github.com/washbook/washbook-api/controllers"
	"github.com/washbook/washbook-api/middleware"
	"github.com/washbook/washbook-api/models"
	"github.com/washbook/washbook-api/services"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.Println("Starting Washbook API server...")

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.ServiceLine{},
		&models.Expense{},
		&models.BusinessSettings{},
	); err != nil {
		logrus.Fatalf("Failed to migrate database: %v", err)
	}
	logrus.Println("Database migration completed successfully")

	if err := bootstrapSuperAdmin(); err != nil {
		logrus.Fatalf("Failed to bootstrap super admin: %v", err)
	}

	// Logout token denylist: redis when configured, in-memory otherwise
	var denylist services.TokenDenylist
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		denylist = services.NewRedisDenylist(client)
	} else {
		logrus.Warn("REDIS_ADDR not set, using in-memory token denylist; logout will not survive restarts")
		denylist = services.NewMemoryDenylist()
	}
	services.InitTokenService(cfg.JWTSecret, denylist)

	// Attachment storage
	if cfg.AWSS3Bucket == "" {
		logrus.Warn("AWS_S3_BUCKET not set, attachment uploads will fail")
	}
	s3Service, err := services.InitS3Service()
	if err != nil {
		logrus.Fatalf("Failed to initialize S3 service: %v", err)
	}
	services.InitAttachmentService(s3Service)

	router := setupRouter(cfg)

	addr := ":" + cfg.Port
	logrus.Printf("Server is running on http://localhost%s", addr)
	if err := router.Run(addr); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter wires middleware and all API routes
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.CORSOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)

		auth := v1.Group("/auth")
		{
			auth.POST("/login", controllers.Login)
			auth.POST("/logout", middleware.RequireAuth(), controllers.Logout)
			auth.GET("/status", middleware.RequireAuth(), controllers.AuthStatus)
		}

		authed := v1.Group("", middleware.RequireAuth())

		orders := authed.Group("/orders")
		{
			orders.POST("", middleware.RequirePermission(authz.OrdersCreate), controllers.CreateOrder)
			orders.GET("", middleware.RequirePermission(authz.OrdersRead), controllers.ListOrders)
			orders.GET("/:id", middleware.RequirePermission(authz.OrdersRead), controllers.GetOrder)
			orders.PUT("/:id", middleware.RequirePermission(authz.OrdersUpdate), controllers.UpdateOrder)
			orders.PATCH("/:id/status", middleware.RequirePermission(authz.OrdersUpdate), controllers.UpdateOrderStatus)
			orders.PATCH("/:id/payment", middleware.RequirePermission(authz.OrdersUpdate), controllers.UpdateOrderPayment)
			orders.PATCH("/:id/reject", middleware.RequirePermission(authz.OrdersReject), controllers.RejectOrder)
			orders.DELETE("/:id", middleware.RequirePermission(authz.OrdersDelete), controllers.DeleteOrder)
			orders.GET("/:id/bill", middleware.RequirePermission(authz.OrdersRead), controllers.GetOrderBill)
			orders.GET("/:id/bill/qr", middleware.RequirePermission(authz.OrdersRead), controllers.GetOrderBillQR)
		}

		expenses := authed.Group("/expenses")
		{
			expenses.POST("", middleware.RequirePermission(authz.ExpensesCreate), controllers.CreateExpense)
			expenses.GET("", middleware.RequirePermission(authz.ExpensesRead), controllers.ListExpenses)
			expenses.PUT("/:id", middleware.RequirePermission(authz.ExpensesUpdate), controllers.UpdateExpense)
			expenses.DELETE("/:id", middleware.RequirePermission(authz.ExpensesDelete), controllers.DeleteExpense)
		}

		users := authed.Group("/users", middleware.RequirePermission(authz.UsersManage))
		{
			users.POST("", controllers.CreateUser)
			users.GET("", controllers.ListUsers)
			users.PUT("/:id", controllers.UpdateUser)
			users.DELETE("/:id", controllers.DeleteUser)
		}

		settings := authed.Group("/settings")
		{
			settings.GET("", middleware.RequirePermission(authz.SettingsRead), controllers.GetSettings)
			settings.PUT("", middleware.RequirePermission(authz.SettingsUpdate), controllers.UpdateSettings)
			settings.POST("/logo", middleware.RequirePermission(authz.SettingsUpdate), controllers.UploadLogo)
			settings.POST("/favicon", middleware.RequirePermission(authz.SettingsUpdate), controllers.UploadFavicon)
		}

		analytics := authed.Group("/analytics", middleware.RequirePermission(authz.AnalyticsRead))
		{
			analytics.GET("/summary", controllers.GetAnalyticsSummary)
			analytics.GET("/export", controllers.ExportAnalytics)
		}
	}

	return router
}

// bootstrapSuperAdmin creates the initial super_admin account on an
// empty users table so a fresh install can log in at all.
func bootstrapSuperAdmin() error {
	db := config.GetDB()

	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := os.Getenv("BOOTSTRAP_ADMIN_PASSWORD")
	if password == "" {
		password = "changeme123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Username:     "superadmin",
		PasswordHash: string(hash),
		Role:         models.RoleSuperAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	logrus.Warn("Created initial superadmin account; change its password immediately")
	return nil
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Washbook API is running",
	})
}
