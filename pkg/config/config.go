package config

import (
	"fmt"
	"gatepass/pkg/client"
	"gatepass/pkg/logger"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ServiceName string

	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	RedisURL string

	Port      string
	LogLevel  string
	LogFormat string

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int
	CORSOrigins    []string

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	GroupIDLength       int
	RegisterMaxAttempts int
	PhoneRegions        []string

	OTPRequired          bool
	OTPTTL               time.Duration
	OTPMaxAttempts       int
	OTPTokenTTL          time.Duration
	OTPRateLimitRequests int
	OTPRateLimitWindow   time.Duration

	JWTSecret         string
	JWTIssuer         string
	AuthTokenTTL      time.Duration
	AdminAuthRequired bool

	KafkaEnabled       bool
	OTPTopic           string
	OTPDLQTopic        string
	VisitorEventsTopic string
	NotifierGroupID    string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	requireJWTSecret bool

	Log    *logger.Logger
	Client *client.Client
}

type Option func(*Config)

// WithoutJWTSecret is used by processes that never issue or verify tokens
// (migrations, the SMS notifier).
func WithoutJWTSecret() Option {
	return func(cfg *Config) {
		cfg.requireJWTSecret = false
	}
}

// Load reads the environment, validates it and exits the process on failure.
func Load(serviceName string, opts ...Option) *Config {
	cfg := FromEnv(serviceName, opts...)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// FromEnv builds a Config from environment variables without validating it.
func FromEnv(serviceName string, opts ...Option) *Config {
	cfg := &Config{
		ServiceName: serviceName,

		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		RedisURL: getEnvStr(EnvRedisURL, ""),

		Port:      getEnvStr(EnvPort, DefaultPort),
		LogLevel:  getEnvStr(EnvLogLevel, DefaultLogLevel),
		LogFormat: getEnvStr(EnvLogFormat, DefaultLogFormat),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),
		CORSOrigins:    getEnvList(EnvCORSOrigins, DefaultCORSOrigins),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		GroupIDLength:       getEnvNum(EnvGroupIDLength, DefaultGroupIDLength),
		RegisterMaxAttempts: getEnvNum(EnvRegisterMaxAttempts, DefaultRegisterMaxAttempts),
		PhoneRegions:        getEnvList(EnvPhoneRegions, DefaultPhoneRegions),

		OTPRequired:          getEnvBool(EnvOTPRequired, DefaultOTPRequired),
		OTPTTL:               getEnvDuration(EnvOTPTTL, DefaultOTPTTL),
		OTPMaxAttempts:       getEnvNum(EnvOTPMaxAttempts, DefaultOTPMaxAttempts),
		OTPTokenTTL:          getEnvDuration(EnvOTPTokenTTL, DefaultOTPTokenTTL),
		OTPRateLimitRequests: getEnvNum(EnvOTPRateLimitRequests, DefaultOTPRateLimitRequests),
		OTPRateLimitWindow:   getEnvDuration(EnvOTPRateLimitWindow, DefaultOTPRateLimitWindow),

		JWTSecret:         getEnvStr(EnvJWTSecret, ""),
		JWTIssuer:         getEnvStr(EnvJWTIssuer, DefaultJWTIssuer),
		AuthTokenTTL:      getEnvDuration(EnvAuthTokenTTL, DefaultAuthTokenTTL),
		AdminAuthRequired: getEnvBool(EnvAdminAuthRequired, DefaultAdminAuthRequired),

		KafkaEnabled:       getEnvBool(EnvKafkaEnabled, DefaultKafkaEnabled),
		OTPTopic:           getEnvStr(EnvOTPTopic, DefaultOTPTopic),
		OTPDLQTopic:        getEnvStr(EnvOTPDLQTopic, DefaultOTPDLQTopic),
		VisitorEventsTopic: getEnvStr(EnvVisitorEventsTopic, DefaultVisitorEventsTopic),
		NotifierGroupID:    getEnvStr(EnvNotifierGroupID, DefaultNotifierGroupID),

		TwilioAccountSID: getEnvStr(EnvTwilioAccountSID, ""),
		TwilioAuthToken:  getEnvStr(EnvTwilioAuthToken, ""),
		TwilioFromNumber: getEnvStr(EnvTwilioFromNumber, ""),

		requireJWTSecret: true,

		Client: client.NewClient(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	cfg.Log = logger.New(logger.Config{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		AddSource: true,
		Service:   serviceName,
	})
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

// SetRedis connects to Redis when REDIS_URL is configured. It is optional.
func (cfg *Config) SetRedis() {
	if cfg.RedisURL == "" {
		return
	}
	cfg.Client.SetRedis(cfg.Log, cfg.RedisURL, cfg.MongoConnTimeout)
}

// TwilioEnabled reports whether SMS should go through Twilio rather than the log gateway.
func (cfg *Config) TwilioEnabled() bool {
	return cfg.TwilioAccountSID != ""
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}
	if cfg.RedisURL != "" && !regexp.MustCompile(`^rediss?://`).MatchString(cfg.RedisURL) {
		errors = append(errors, "RedisURL must start with 'redis://' or 'rediss://'")
	}

	positiveDurations := []struct {
		name  string
		value time.Duration
	}{
		{"MongoConnTimeout", cfg.MongoConnTimeout},
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
		{"OTPTTL", cfg.OTPTTL},
		{"OTPTokenTTL", cfg.OTPTokenTTL},
		{"OTPRateLimitWindow", cfg.OTPRateLimitWindow},
		{"AuthTokenTTL", cfg.AuthTokenTTL},
	}
	for _, d := range positiveDurations {
		if d.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", d.name, d.value))
		}
	}

	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.GroupIDLength < MinGroupIDLength || cfg.GroupIDLength > MaxGroupIDLength {
		errors = append(errors, fmt.Sprintf("GroupIDLength must be between %d and %d, got: %d", MinGroupIDLength, MaxGroupIDLength, cfg.GroupIDLength))
	}
	if cfg.RegisterMaxAttempts <= 0 {
		errors = append(errors, fmt.Sprintf("RegisterMaxAttempts must be positive, got: %d", cfg.RegisterMaxAttempts))
	}
	if len(cfg.PhoneRegions) == 0 {
		errors = append(errors, "PhoneRegions must list at least one region code")
	}
	if cfg.OTPMaxAttempts <= 0 {
		errors = append(errors, fmt.Sprintf("OTPMaxAttempts must be positive, got: %d", cfg.OTPMaxAttempts))
	}
	if cfg.OTPRateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("OTPRateLimitRequests must be positive, got: %d", cfg.OTPRateLimitRequests))
	}

	if cfg.requireJWTSecret && len(cfg.JWTSecret) < MinJWTSecretLength {
		errors = append(errors, fmt.Sprintf("JWTSecret must be at least %d characters", MinJWTSecretLength))
	}
	if cfg.KafkaEnabled && (cfg.OTPTopic == "" || cfg.VisitorEventsTopic == "") {
		errors = append(errors, "OTPTopic and VisitorEventsTopic are required when Kafka is enabled")
	}
	if cfg.TwilioEnabled() && (cfg.TwilioAuthToken == "" || cfg.TwilioFromNumber == "") {
		errors = append(errors, "TwilioAuthToken and TwilioFromNumber are required when TwilioAccountSID is set")
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"redis_url", redactRedisURL(cfg.RedisURL),
		"port", cfg.Port,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"cors_origins", cfg.CORSOrigins,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"group_id_length", cfg.GroupIDLength,
		"register_max_attempts", cfg.RegisterMaxAttempts,
		"phone_regions", cfg.PhoneRegions,
		"otp_required", cfg.OTPRequired,
		"otp_ttl", cfg.OTPTTL,
		"otp_max_attempts", cfg.OTPMaxAttempts,
		"otp_rate_limit_requests", cfg.OTPRateLimitRequests,
		"otp_rate_limit_window", cfg.OTPRateLimitWindow,
		"jwt_secret_set", cfg.JWTSecret != "",
		"jwt_issuer", cfg.JWTIssuer,
		"auth_token_ttl", cfg.AuthTokenTTL,
		"admin_auth_required", cfg.AdminAuthRequired,
		"kafka_enabled", cfg.KafkaEnabled,
		"otp_topic", cfg.OTPTopic,
		"visitor_events_topic", cfg.VisitorEventsTopic,
		"twilio_enabled", cfg.TwilioEnabled(),
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func redactRedisURL(uri string) string {
	credentialRegex := regexp.MustCompile(`(rediss?://)[^@/]*@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	raw := getEnvStr(key, fallback)
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}
