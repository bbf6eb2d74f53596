// README: Entry point; loads config, wires services and serves the HTTP API until interrupted.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"pharmago/internal/config"
	httptransport "pharmago/internal/http"
	"pharmago/internal/infra"
	"pharmago/internal/modules/cart"
	"pharmago/internal/modules/notify"
	"pharmago/internal/modules/order"
	"pharmago/internal/modules/pharmacy"
	"pharmago/internal/modules/prescription"
	"pharmago/internal/modules/pricing"
	"pharmago/internal/modules/profile"
	"pharmago/internal/modules/tracking"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("loading config")
	}
	log := infra.NewLogger(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Firebase.ProjectID == "" {
		log.Fatal("PHARMAGO_FIREBASE_PROJECT_ID is required")
	}
	app, err := infra.NewFirebaseApp(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		log.WithError(err).Fatal("firebase init")
	}
	verifier, err := infra.NewFirebaseVerifier(ctx, app)
	if err != nil {
		log.WithError(err).Fatal("firebase auth init")
	}

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.WithError(err).Fatal("database init")
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	defer redisClient.Close()

	uploader, err := infra.NewS3Uploader(ctx, cfg.Storage.Region)
	if err != nil {
		log.WithError(err).Fatal("s3 init")
	}

	metrics := infra.NewMetrics(prometheus.DefaultRegisterer)

	pricingSvc, err := pricing.NewService(cfg.Pricing)
	if err != nil {
		log.WithError(err).Fatal("pricing policy")
	}

	profileSvc := profile.NewService(profile.NewStore(dbPool), log)
	pharmacySvc := pharmacy.NewService(pharmacy.NewStore(dbPool))
	cartSvc := cart.NewService(cart.NewRedisStore(redisClient, cfg.Redis.CartTTL))
	prescriptionSvc := prescription.NewService(
		prescription.NewStore(dbPool),
		prescription.NewS3Blob(uploader, cfg.Storage.Bucket, cfg.Storage.PublicBaseURL),
		profileSvc,
		log,
	)

	orderDeps := order.Deps{
		Repo:          order.NewStore(dbPool),
		Carts:         cartSvc,
		Pharmacies:    pharmacySvc,
		Prescriptions: prescriptionSvc,
		Pricing:       pricingSvc,
		Transitions:   metrics.OrderTransitions,
		Log:           log,
	}
	var pusher *notify.FCM
	if cfg.Firebase.PushEnabled {
		msgClient, err := infra.NewMessaging(ctx, app)
		if err != nil {
			log.WithError(err).Fatal("firebase messaging init")
		}
		pusher = notify.NewFCM(msgClient, log)
		orderDeps.Notifier = pusher
	}
	orderSvc := order.NewService(orderDeps)

	provider, addresses, err := tracking.NewProvider(cfg.Routing)
	if err != nil {
		log.WithError(err).Fatal("routing provider")
	}
	tracker := tracking.NewTracker(tracking.Options{
		Provider:      provider,
		Cache:         tracking.NewRouteCache(redisClient, cfg.Routing.CacheTTL),
		Fetches:       metrics.RouteFetches,
		Log:           log,
		Timeout:       cfg.Routing.Timeout,
		MaxConcurrent: cfg.Routing.MaxConcurrent,
		ResultTTL:     cfg.Routing.CacheTTL,
	})

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Verifier:      verifier,
		Profiles:      profileSvc,
		Pharmacies:    pharmacySvc,
		Carts:         cartSvc,
		Orders:        orderSvc,
		Prescriptions: prescriptionSvc,
		Tracker:       tracker,
		Positions:     tracking.NewPositionStore(redisClient),
		Addresses:     addresses,
		Metrics:       httptransport.MetricsHandler(),
		Log:           log,
	})

	server := httptransport.NewServer(cfg.HTTP.Addr, router, log)
	if err := server.Run(ctx); err != nil {
		log.WithError(err).Error("http server stopped")
	}

	tracker.Wait()
	if pusher != nil {
		pusher.Wait()
	}
	log.Info("shutdown complete")
}
