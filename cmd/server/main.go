package main

import (
	"context"
	"net/http"
	"slices"

	"github.com/prometheus/client_golang/prometheus"

	authhandler "gatepass/internal/auth/handler"
	authrepo "gatepass/internal/auth/repository"
	authservice "gatepass/internal/auth/service"
	"gatepass/internal/health"
	otphandler "gatepass/internal/otp/handler"
	otprepo "gatepass/internal/otp/repository"
	otpservice "gatepass/internal/otp/service"
	"gatepass/internal/visitors/events"
	visitorhandler "gatepass/internal/visitors/handler"
	visitorrepo "gatepass/internal/visitors/repository"
	visitorservice "gatepass/internal/visitors/service"
	"gatepass/internal/visitors/validator"
	"gatepass/pkg/app"
	"gatepass/pkg/config"
	"gatepass/pkg/contracts"
	"gatepass/pkg/kafka"
	kafka_config "gatepass/pkg/kafka/config"
	kafkamw "gatepass/pkg/kafka/middleware"
	"gatepass/pkg/metrics"
	"gatepass/pkg/middleware"
	"gatepass/pkg/sms"
	"gatepass/pkg/token"
)

const ServiceName = "gatepass"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting gatepass API")
	m := metrics.New(prometheus.DefaultRegisterer)
	tokens := token.NewService(cfg.JWTSecret, cfg.JWTIssuer)
	serverApp := app.NewApplication(cfg, m)

	dispatcher, publisher := initMessaging(cfg, m, serverApp)

	var admin func(http.Handler) http.Handler
	if cfg.AdminAuthRequired {
		admin = middleware.BearerAuth(tokens, cfg.Log)
		cfg.Log.Info("Admin routes require a bearer token")
	}

	visitorService := visitorservice.NewVisitorService(
		visitorrepo.NewMongoVisitorGroupRepository(cfg),
		validator.NewVisitorValidator(),
		tokens,
		publisher,
		m,
		cfg,
	)
	otpService := otpservice.NewOTPService(
		otprepo.NewMongoOTPCodeRepository(cfg),
		dispatcher,
		tokens,
		m,
		cfg,
	)
	authService := authservice.NewAuthService(authrepo.NewMongoUserRepository(cfg), tokens, cfg)

	for _, path := range otphandler.SendPaths {
		serverApp.LimitPhonePaths(contracts.Paths(path)...)
	}
	for _, path := range append(slices.Clone(authhandler.TokenPaths), otphandler.VerifyPath) {
		serverApp.SkipIdempotency(contracts.Paths(path)...)
	}
	serverApp.OnShutdown(func() error {
		cfg.GracefulShutdown()
		return nil
	})

	serverApp.SetApp(
		newHealthHandler(cfg),
		visitorhandler.NewVisitorHandler(visitorService, cfg.Log, admin),
		otphandler.NewOTPHandler(otpService, cfg.Log),
		authhandler.NewAuthHandler(authService, cfg.Log),
	)
	serverApp.Run()
}

// initMessaging picks how codes and visitor events leave the process. With
// Kafka enabled both go to topics; otherwise codes are sent inline and
// visitor events are dropped.
func initMessaging(cfg *config.Config, m *metrics.Metrics, serverApp *app.Application) (otpservice.Dispatcher, events.Publisher) {
	if !cfg.KafkaEnabled {
		gateway := newGateway(cfg)
		cfg.Log.Info("Kafka disabled, sending codes inline", "gateway", gateway.Name())
		return otpservice.NewSMSDispatcher(gateway, m), events.NewNopPublisher()
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	otpProducer := newProducer(cfg, kafkaCfg, m, cfg.OTPTopic, cfg.OTPDLQTopic)
	eventsProducer := newProducer(cfg, kafkaCfg, m, cfg.VisitorEventsTopic, "")
	serverApp.OnShutdown(otpProducer.Close)
	serverApp.OnShutdown(eventsProducer.Close)

	return otpservice.NewKafkaDispatcher(otpProducer, ServiceName),
		events.NewKafkaPublisher(eventsProducer, ServiceName)
}

func newProducer(cfg *config.Config, kafkaCfg *kafka_config.Config, m *metrics.Metrics, topic, dlqTopic string) *kafka.Producer {
	producer, err := kafka.NewProducer(kafkaCfg, topic, dlqTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "topic", topic, "error", err)
	}
	producer.Use(kafkamw.LoggingProducerMiddleware(cfg.Log))
	producer.Use(kafkamw.MetricsProducerMiddleware(m))
	return producer
}

func newGateway(cfg *config.Config) sms.Gateway {
	if cfg.TwilioEnabled() {
		return sms.NewTwilioGateway(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, cfg.Log)
	}
	return sms.NewLogGateway(cfg.Log)
}

func newHealthHandler(cfg *config.Config) *health.Handler {
	h := health.NewHandler(cfg.Log).WithCheck("mongodb", func(ctx context.Context) error {
		return cfg.Client.Mongo.Ping(ctx, nil)
	})
	if cfg.Client.Redis != nil {
		h.WithCheck("redis", func(ctx context.Context) error {
			return cfg.Client.Redis.Ping(ctx).Err()
		})
	}
	return h
}
