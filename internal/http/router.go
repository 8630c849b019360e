// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"carrental/internal/http/handlers"
	"carrental/internal/http/middleware"
	"carrental/internal/infra"
	"carrental/internal/metrics"
	"carrental/internal/modules/booking"
	"carrental/internal/modules/fleet"
	"carrental/internal/modules/notification"
	"carrental/internal/modules/pricing"
	"carrental/internal/modules/profile"
	"carrental/internal/modules/realtime"
	"carrental/internal/modules/review"
)

type RouterDeps struct {
	Fleet          *fleet.Service
	Pricing        *pricing.Service
	Booking        *booking.Service
	Review         *review.Service
	Notification   *notification.Service
	Profile        *profile.Service
	Hub            *realtime.Hub
	Verifier       infra.TokenVerifier
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	Log            logrus.FieldLogger
	PriceWindow    handlers.PriceWindow
	AllowedOrigins []string
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(deps.Log), middleware.Logging(deps.Log))
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}

	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "OK") })
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(deps.Gatherer)))
	}

	fleetHandler := handlers.NewFleetHandler(deps.Fleet, deps.Review, deps.PriceWindow)
	pricingHandler := handlers.NewPricingHandler(deps.Pricing)
	bookingHandler := handlers.NewBookingHandler(deps.Booking, deps.Review, deps.Profile)
	notificationHandler := handlers.NewNotificationHandler(deps.Notification)
	profileHandler := handlers.NewProfileHandler(deps.Profile)
	realtimeHandler := handlers.NewRealtimeHandler(deps.Hub, deps.Verifier, deps.Profile, deps.AllowedOrigins)

	api := r.Group("/api")
	api.GET("/cars", fleetHandler.Search)
	api.GET("/cars/:id", fleetHandler.Get)
	api.POST("/cars/:id/quote", pricingHandler.Quote)
	api.GET("/addons", pricingHandler.AddOns)
	api.GET("/realtime", realtimeHandler.Connect)

	authed := api.Group("", middleware.Auth(deps.Verifier))
	authed.POST("/bookings", bookingHandler.Create)
	authed.GET("/bookings", bookingHandler.ListMine)
	authed.GET("/bookings/:id", bookingHandler.Get)
	authed.POST("/bookings/:id/review", bookingHandler.Review)
	authed.GET("/notifications", notificationHandler.List)
	authed.POST("/notifications/:id/read", notificationHandler.MarkRead)
	authed.GET("/profile", profileHandler.Get)
	authed.PUT("/profile", profileHandler.Update)

	admin := authed.Group("/admin", middleware.RequireAdmin(deps.Profile))
	admin.GET("/cars", fleetHandler.ListAll)
	admin.POST("/cars", fleetHandler.Create)
	admin.PUT("/cars/:id", fleetHandler.Update)
	admin.DELETE("/cars/:id", fleetHandler.Delete)
	admin.GET("/bookings", bookingHandler.ListAll)
	admin.PATCH("/bookings/:id/status", bookingHandler.UpdateStatus)
	admin.GET("/stats", bookingHandler.Stats)

	return r
}
