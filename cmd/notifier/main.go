package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"gatepass/internal/health"
	"gatepass/internal/notifier"
	"gatepass/pkg/config"
	"gatepass/pkg/kafka"
	kafka_config "gatepass/pkg/kafka/config"
	kafkamw "gatepass/pkg/kafka/middleware"
	"gatepass/pkg/metrics"
	"gatepass/pkg/middleware"
	"gatepass/pkg/sms"
)

const ServiceName = "gatepass-notifier"

func main() {
	cfg := config.Load(ServiceName, config.WithoutJWTSecret())
	if !cfg.KafkaEnabled {
		cfg.Log.Fatal("The notifier consumes from Kafka; set KAFKA_ENABLED=true")
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	m := metrics.New(prometheus.DefaultRegisterer)
	gateway := newGateway(cfg)
	n := notifier.New(gateway, m, cfg.Log)

	consumer, err := kafka.NewConsumer(kafkaCfg, cfg.OTPTopic, cfg.NotifierGroupID, cfg.OTPDLQTopic, n.Handle, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	consumer.Use(kafkamw.LoggingConsumerMiddleware(cfg.Log))
	consumer.Use(kafkamw.MetricsConsumerMiddleware(m))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := newOpsServer(cfg)
	cfg.Log.Info("Starting notifier", "topic", cfg.OTPTopic, "group_id", cfg.NotifierGroupID, "gateway", gateway.Name())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consumer.Start(gctx)
	})
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Notifier stopped with error", "error", err)
	}
	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close Kafka consumer", "error", err)
	}
	cfg.Log.Info("Notifier stopped")
}

func newGateway(cfg *config.Config) sms.Gateway {
	if cfg.TwilioEnabled() {
		return sms.NewTwilioGateway(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, cfg.Log)
	}
	cfg.Log.Warn("Twilio is not configured, codes will only be logged")
	return sms.NewLogGateway(cfg.Log)
}

func newOpsServer(cfg *config.Config) *http.Server {
	router := httprouter.New()
	health.NewHandler(cfg.Log).RegisterRoutes(router)
	router.Handler(http.MethodGet, "/metrics", metrics.Handler())

	var handler http.Handler = router
	handler = middleware.Recovery(cfg.Log)(handler)

	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}
