// README: Entry point; loads config, wires services, starts the change feed and HTTP server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"carrental/internal/config"
	httptransport "carrental/internal/http"
	"carrental/internal/http/handlers"
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

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := infra.NewLogger(cfg.Log)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Firebase.ProjectID == "" {
		log.Fatal("CARRENTAL_FIREBASE__PROJECT_ID is required")
	}
	verifier, err := infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		log.WithError(err).Fatal("firebase init")
	}

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.WithError(err).Fatal("connect postgres")
	}
	defer dbPool.Close()
	if cfg.DB.Migrate {
		if err := infra.RunMigrations(ctx, dbPool); err != nil {
			log.WithError(err).Fatal("run migrations")
		}
	}

	redisClient, err := infra.NewRedis(ctx, cfg.Redis)
	if err != nil {
		log.WithError(err).Fatal("connect redis")
	}
	defer redisClient.Close()

	m, err := metrics.New(prometheus.DefaultRegisterer)
	if err != nil {
		log.WithError(err).Fatal("register metrics")
	}

	broker := realtime.NewBroker(redisClient, cfg.Realtime.Channel, log.WithField("component", "broker"))
	hub := realtime.NewHub(log.WithField("component", "hub"))

	fleetCache := fleet.NewCache(redisClient, time.Duration(cfg.Fleet.CacheTTLSeconds)*time.Second)
	fleetSvc := fleet.NewService(fleet.NewStore(dbPool), fleetCache, broker, log.WithField("module", "fleet"))
	pricingSvc := pricing.NewService(fleetSvc, m)
	notificationSvc := notification.NewService(notification.NewStore(dbPool), broker, log.WithField("module", "notification"))

	bookingStore := booking.NewStore(dbPool)
	bookingSvc := booking.NewService(bookingStore, booking.Deps{
		Pricing:  pricingSvc,
		Cars:     fleetSvc,
		Notifier: notificationSvc,
		Events:   broker,
		Recorder: m,
		Currency: cfg.Booking.Currency,
		Log:      log.WithField("module", "booking"),
	})
	reviewSvc := review.NewService(review.NewStore(dbPool), bookingStore, broker, log.WithField("module", "review"))
	profileSvc := profile.NewService(profile.NewStore(dbPool))

	broker.Register(fleetSvc)
	broker.Register(hub)
	if err := m.TrackRealtimeClients(hub.ClientCount); err != nil {
		log.WithError(err).Fatal("register realtime gauge")
	}
	go func() {
		if err := broker.Run(ctx); err != nil {
			log.WithError(err).Error("change feed stopped")
		}
	}()

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Fleet:          fleetSvc,
		Pricing:        pricingSvc,
		Booking:        bookingSvc,
		Review:         reviewSvc,
		Notification:   notificationSvc,
		Profile:        profileSvc,
		Hub:            hub,
		Verifier:       verifier,
		Metrics:        m,
		Gatherer:       prometheus.DefaultGatherer,
		Log:            log,
		PriceWindow:    handlers.PriceWindow{Min: cfg.Fleet.DefaultMinPrice, Max: cfg.Fleet.DefaultMaxPrice},
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	})

	server := httptransport.NewServer(cfg.HTTP.Addr, router, time.Duration(cfg.HTTP.ShutdownSeconds)*time.Second, log)
	if err := server.Run(ctx); err != nil {
		log.WithError(err).Fatal("http server")
	}
	log.Info("bye")
}
