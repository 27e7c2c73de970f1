// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/taot23/aetlicencas/internal/config"
	"github.com/taot23/aetlicencas/internal/handlers"
	"github.com/taot23/aetlicencas/internal/middleware"
	"github.com/taot23/aetlicencas/internal/services"
	"github.com/taot23/aetlicencas/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	storageService, _ := services.NewStorageService(cfg)
	cnpjService := services.NewCNPJService(cfg.CNPJ)

	authService := services.NewAuthService(db, cfg)
	userService := services.NewUserService(db)
	licenseService := services.NewLicenseService(db)
	vehicleService := services.NewVehicleService(db)
	transporterService := services.NewTransporterService(db, cnpjService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, userService)
	userHandler := handlers.NewUserHandler(userService)
	licenseHandler := handlers.NewLicenseHandler(licenseService, storageService)
	vehicleHandler := handlers.NewVehicleHandler(vehicleService, storageService)
	transporterHandler := handlers.NewTransporterHandler(transporterService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
		}

		// License request routes
		requests := v1.Group("/requests")
		requests.Use(middleware.AuthRequired())
		{
			requests.POST("", licenseHandler.CreateRequest)
			requests.GET("", licenseHandler.ListRequests)

			requests.POST("/drafts", licenseHandler.CreateDraft)
			requests.GET("/drafts", licenseHandler.ListDrafts)
			requests.PUT("/drafts/:id", licenseHandler.UpdateDraft)
			requests.POST("/drafts/:id/submit", licenseHandler.SubmitDraft)

			requests.GET("/:id", licenseHandler.GetRequest)
			requests.DELETE("/:id", licenseHandler.DeleteRequest)

			// Staff decision endpoints
			staff := requests.Group("")
			staff.Use(middleware.StaffRequired())
			{
				staff.PUT("/:id/states", licenseHandler.SetStateStatus)
				staff.PUT("/:id/status", licenseHandler.UpdateStatus)
				staff.POST("/:id/document", middleware.DocumentUploadRateLimit(), licenseHandler.UploadLicenseDocument)
				staff.POST("/documents", middleware.DocumentUploadRateLimit(), licenseHandler.UploadStateDocument)
			}
		}

		// Vehicle routes
		vehicles := v1.Group("/vehicles")
		vehicles.Use(middleware.AuthRequired())
		{
			vehicles.POST("", vehicleHandler.Create)
			vehicles.GET("", vehicleHandler.List)
			vehicles.GET("/:id", vehicleHandler.Get)
			vehicles.PUT("/:id", vehicleHandler.Update)
			vehicles.DELETE("/:id", vehicleHandler.Delete)
			vehicles.POST("/documents", middleware.DocumentUploadRateLimit(), vehicleHandler.UploadDocument)
		}

		// Transporter routes
		transporters := v1.Group("/transporters")
		transporters.Use(middleware.AuthRequired())
		{
			transporters.POST("", transporterHandler.Create)
			transporters.GET("", transporterHandler.List)
			transporters.GET("/cnpj/:cnpj", transporterHandler.LookupCNPJ)
			transporters.GET("/:id", transporterHandler.Get)
			transporters.PUT("/:id", transporterHandler.Update)
			transporters.DELETE("/:id", transporterHandler.Delete)
		}

		// User management routes
		users := v1.Group("/users")
		users.Use(middleware.AuthRequired())
		{
			users.GET("/:id", userHandler.Get)

			admin := users.Group("")
			admin.Use(middleware.AdminRequired())
			{
				admin.GET("", userHandler.List)
				admin.PUT("/:id/role", userHandler.UpdateRole)
				admin.DELETE("/:id", userHandler.Delete)
			}
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r
}
