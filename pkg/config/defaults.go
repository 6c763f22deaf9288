package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "gatepass"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort      = "5000"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB
	DefaultCORSOrigins    = "*"

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultGroupIDLength       = 4
	MinGroupIDLength           = 4
	MaxGroupIDLength           = 12
	DefaultRegisterMaxAttempts = 5
	DefaultPhoneRegions        = "IN,US"

	DefaultOTPRequired          = false
	DefaultOTPTTL               = 5 * time.Minute
	DefaultOTPMaxAttempts       = 5
	DefaultOTPTokenTTL          = 30 * time.Minute
	DefaultOTPRateLimitRequests = 3
	DefaultOTPRateLimitWindow   = 10 * time.Minute

	DefaultJWTIssuer         = "gatepass"
	DefaultAuthTokenTTL      = 24 * time.Hour
	DefaultAdminAuthRequired = false
	MinJWTSecretLength       = 32

	DefaultKafkaEnabled       = false
	DefaultOTPTopic           = "gatepass.otp.requested"
	DefaultOTPDLQTopic        = "gatepass.otp.requested.dlq"
	DefaultVisitorEventsTopic = "gatepass.visitors"
	DefaultNotifierGroupID    = "gatepass-notifier"
)
