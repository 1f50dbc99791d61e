package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"tradeboard/internal/infra/config"
	"tradeboard/internal/infra/obs"
)

type AnnouncementHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

type CalendarHTTP interface {
	Get(c *gin.Context)
	Open(c *gin.Context)
	Release(c *gin.Context)
}

type TransactionHTTP interface {
	Create(c *gin.Context)
	List(c *gin.Context)
	Get(c *gin.Context)
	UpdateStatus(c *gin.Context)
	Cancel(c *gin.Context)
}

type Handlers struct {
	Announcements  AnnouncementHTTP
	Calendar       CalendarHTTP
	Transactions   TransactionHTTP
	AuthMiddleware gin.HandlerFunc
	Metrics        http.Handler
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewRouter builds the engine without touching the global gin mode.
func NewRouter(obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"Retry-After",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)
	if h.Metrics != nil {
		router.GET("/metrics", gin.WrapH(h.Metrics))
	}

	api := router.Group("/api/v1")
	if h.AuthMiddleware != nil {
		api.Use(h.AuthMiddleware)
	}
	if h.Announcements != nil {
		api.POST("/announcements", h.Announcements.Create)
		api.GET("/announcements/:id", h.Announcements.Get)
		api.PATCH("/announcements/:id", h.Announcements.Update)
		api.DELETE("/announcements/:id", h.Announcements.Delete)
	}
	if h.Calendar != nil {
		api.GET("/announcements/:id/calendar", h.Calendar.Get)
		api.POST("/announcements/:id/calendar/open", h.Calendar.Open)
		api.POST("/announcements/:id/calendar/release", h.Calendar.Release)
	}
	if h.Transactions != nil {
		api.POST("/transactions", h.Transactions.Create)
		api.GET("/transactions", h.Transactions.List)
		api.GET("/transactions/:id", h.Transactions.Get)
		api.PATCH("/transactions/:id/status", h.Transactions.UpdateStatus)
		api.POST("/transactions/:id/cancel", h.Transactions.Cancel)
	}
	return router
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
