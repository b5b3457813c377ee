package router

import (
	"time"

	"github.com/Zeek-James/pem-zee/internal/config"
	"github.com/Zeek-James/pem-zee/internal/handler"
	"github.com/Zeek-James/pem-zee/internal/middleware"
	"github.com/Zeek-James/pem-zee/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// Handlers groups every HTTP handler the router mounts. The composition root
// in cmd/server builds them.
type Handlers struct {
	Auth      *handler.AuthHandler
	Harvest   *handler.HarvestHandler
	Milling   *handler.MillingHandler
	Storage   *handler.StorageHandler
	Sales     *handler.SalesHandler
	Dashboard *handler.DashboardHandler
	Reports   *handler.ReportsHandler
}

// New returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, h Handlers, audit middleware.AuditRecorder) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	api := r.Group("/api")

	// Public
	api.GET("/health", handler.Health(db, rdb))

	auth := api.Group("/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
	}

	// Protected routes
	protected := api.Group("", middleware.JWTAuth(cfg.JWTSecret), middleware.Audit(audit))
	{
		protected.GET("/auth/me", h.Auth.Me)
		protected.POST("/auth/logout", h.Auth.Logout)
		protected.POST("/auth/register", middleware.RequireRole(model.RoleAdmin), h.Auth.Register)

		harvests := protected.Group("/harvests")
		{
			harvests.GET("", middleware.RequirePermission("harvest", "read"), h.Harvest.List)
			harvests.POST("", middleware.RequirePermission("harvest", "create"), h.Harvest.Create)
			harvests.GET("/:id", middleware.RequirePermission("harvest", "read"), h.Harvest.Get)
		}

		milling := protected.Group("/milling")
		{
			milling.GET("", middleware.RequirePermission("milling", "read"), h.Milling.List)
			milling.POST("", middleware.RequirePermission("milling", "create"), h.Milling.Create)
			milling.GET("/:id", middleware.RequirePermission("milling", "read"), h.Milling.Get)
		}

		storage := protected.Group("/storage", middleware.RequirePermission("storage", "read"))
		{
			storage.GET("", h.Storage.List)
			storage.GET("/available", h.Storage.Available)
			storage.GET("/alerts", h.Storage.Alerts)
			storage.GET("/:id", h.Storage.Get)
		}

		sales := protected.Group("/sales")
		{
			sales.GET("", middleware.RequirePermission("sales", "read"), h.Sales.List)
			sales.POST("", middleware.RequirePermission("sales", "create"), h.Sales.Create)
			sales.GET("/:id", middleware.RequirePermission("sales", "read"), h.Sales.Get)
			sales.PATCH("/:id/payment", middleware.RequirePermission("sales", "update"), h.Sales.UpdatePayment)
		}

		// Any authenticated user may read the dashboard
		dashboard := protected.Group("/dashboard")
		{
			dashboard.GET("/summary", h.Dashboard.Summary)
			dashboard.GET("/profit-trends", h.Dashboard.ProfitTrends)
			dashboard.GET("/alerts", h.Dashboard.Alerts)
		}

		reports := protected.Group("/reports", middleware.RequirePermission("reports", "read"))
		{
			reports.GET("/excel", h.Reports.Excel)
			reports.GET("/pdf", h.Reports.PDF)
		}
	}

	// Swagger UI, only outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
