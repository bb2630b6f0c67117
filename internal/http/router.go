package api

import (
	stdhttp "net/http"

	intconfig "railticket/internal/config"
	h "railticket/internal/http/handlers"
	"railticket/internal/http/middleware"
	"railticket/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps is what the router needs besides configuration.
type Deps struct {
	Handlers h.Handlers
	Gatherer prometheus.Gatherer
	Log      logger.Logger
}

func NewRouter(env intconfig.Env, deps Deps) *gin.Engine {
	log := logger.OrNop(deps.Log)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(log), gin.Recovery(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Warn("failed to set trusted proxies", "error", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route tidak ditemukan",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	hd := deps.Handlers
	api := r.Group("/api")
	api.Use(middleware.Session(env.SessionJWTSecret))
	{
		api.GET("/health", h.Health)

		ops := api.Group("")
		if env.SessionJWTSecret != "" {
			ops.Use(middleware.RequireRoles("admin", "owner"))
		}
		ops.GET("/db-check", hd.DBCheck)
		ops.GET("/routes", h.Routes)

		bookings := api.Group("/bookings")
		mountBookings(bookings, hd)
		bookings.GET("/:id/ticket.pdf", hd.DownloadTicketPDF)
		// legacy path
		legacyBookings := api.Group("/create-booking")
		mountBookings(legacyBookings, hd)

		tickets := api.Group("/tickets")
		tickets.POST("/send-email", hd.SendTicketEmail)
		// legacy path
		api.POST("/send-ticket-email", hd.SendTicketEmail)
	}

	h.SetRouter(r)
	return r
}

func mountBookings(g *gin.RouterGroup, hd h.Handlers) {
	g.POST("", hd.CreateBooking)
	g.GET("/health", hd.BookingHealth)
}
