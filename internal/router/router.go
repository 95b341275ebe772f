package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"medlens/internal/handler"
	"medlens/internal/metrics"
	"medlens/internal/middleware"
	"medlens/internal/service"
)

// Handlers groups the HTTP handlers mounted by Setup.
type Handlers struct {
	Device  *handler.DeviceHandler
	Account *handler.AccountHandler
	History *handler.HistoryHandler
	Scan    *handler.ScanHandler
	App     *handler.AppHandler
	Health  *handler.HealthHandler
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	deviceSvc service.DeviceService,
	h Handlers,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	allowedOrigins []string,
	log zerolog.Logger,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(allowedOrigins))
	r.Use(middleware.Metrics(m))

	// Health checks and metrics
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	v1 := r.Group("/api/v1")

	// Public device registration
	v1.POST("/devices", h.Device.Register)

	// Device-scoped routes - require a valid device token
	protected := v1.Group("")
	protected.Use(middleware.DeviceAuth(deviceSvc))

	protected.GET("/app", h.App.Get)

	account := protected.Group("/account")
	account.POST("/signup", h.Account.SignUp)
	account.POST("/login", h.Account.LogIn)
	account.POST("/logout", h.Account.LogOut)
	account.GET("/me", h.Account.Me)

	history := protected.Group("/history")
	history.GET("", h.History.List)
	history.GET("/export", h.History.Export)
	history.GET("/:id", h.History.GetByID)

	scan := protected.Group("/scan")
	scan.GET("", h.Scan.Get)
	scan.PUT("/region", h.Scan.SetRegion)
	scan.POST("/file", h.Scan.SelectFile)
	scan.POST("/analyze", h.Scan.Analyze)
	scan.POST("/reset", h.Scan.Reset)
	scan.POST("/history/:id", h.Scan.ShowHistory)

	return r
}
