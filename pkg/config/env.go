package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvRedisURL = "REDIS_URL"

	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"
	EnvCORSOrigins    = "CORS_ALLOWED_ORIGINS"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvGroupIDLength       = "GROUP_ID_LENGTH"
	EnvRegisterMaxAttempts = "REGISTER_MAX_ATTEMPTS"
	EnvPhoneRegions        = "PHONE_REGIONS"

	EnvOTPRequired          = "OTP_REQUIRED"
	EnvOTPTTL               = "OTP_TTL"
	EnvOTPMaxAttempts       = "OTP_MAX_ATTEMPTS"
	EnvOTPTokenTTL          = "OTP_TOKEN_TTL"
	EnvOTPRateLimitRequests = "OTP_RATE_LIMIT_REQUESTS"
	EnvOTPRateLimitWindow   = "OTP_RATE_LIMIT_WINDOW"

	EnvJWTSecret         = "JWT_SECRET"
	EnvJWTIssuer         = "JWT_ISSUER"
	EnvAuthTokenTTL      = "AUTH_TOKEN_TTL"
	EnvAdminAuthRequired = "ADMIN_AUTH_REQUIRED"

	EnvKafkaEnabled       = "KAFKA_ENABLED"
	EnvOTPTopic           = "OTP_TOPIC"
	EnvOTPDLQTopic        = "OTP_DLQ_TOPIC"
	EnvVisitorEventsTopic = "VISITOR_EVENTS_TOPIC"
	EnvNotifierGroupID    = "NOTIFIER_GROUP_ID"

	EnvTwilioAccountSID = "TWILIO_ACCOUNT_SID"
	EnvTwilioAuthToken  = "TWILIO_AUTH_TOKEN"
	EnvTwilioFromNumber = "TWILIO_FROM_NUMBER"
)
