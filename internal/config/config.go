package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// OTP record store backends.
const (
	OTPStoreMemory = "memory"
	OTPStoreRedis  = "redis"
	OTPStoreDynamo = "dynamo"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort        string
	AppEnv         string
	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	JWTSecret      string
	JWTExpiry      time.Duration
	BcryptCost     int
	OTPStore       string // memory | redis | dynamo
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	// ResetOTPTTL is how long a password-reset code stays valid.
	ResetOTPTTL time.Duration
	// ResetRecordRetention is how long the backing store keeps a reset record,
	// which must outlive ResetOTPTTL so an expired code still reports as expired.
	ResetRecordRetention time.Duration
	// PendingSignupRetention bounds how long unconfirmed signups are kept. 0 keeps them until confirmed.
	PendingSignupRetention time.Duration
	SMTPHost               string
	SMTPPort               string
	SMTPFrom               string
	SMTPUsername           string
	SMTPPassword           string
	AllowedOrigins         []string // CORS allowed origins
	// TrustProxyHeaders keys rate limits by X-Forwarded-For / X-Real-Ip.
	TrustProxyHeaders bool
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users      string
	OTPRecords string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:        getEnv("APP_PORT", "5000"),
		AppEnv:         getEnv("APP_ENV", "development"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:      getEnv("DYNAMO_TABLE_USERS", "users"),
			OTPRecords: getEnv("DYNAMO_TABLE_OTP_RECORDS", "otp_records"),
		},
		JWTSecret:              getEnv("JWT_SECRET", ""),
		JWTExpiry:              getEnvDuration("JWT_EXPIRY", time.Hour),
		BcryptCost:             getEnvInt("BCRYPT_COST", 10),
		OTPStore:               strings.ToLower(getEnv("OTP_STORE", OTPStoreMemory)),
		RedisAddr:              getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:          getEnv("REDIS_PASSWORD", ""),
		RedisDB:                getEnvInt("REDIS_DB", 0),
		ResetOTPTTL:            getEnvDuration("RESET_OTP_TTL", 5*time.Minute),
		ResetRecordRetention:   getEnvDuration("RESET_RECORD_RETENTION", 24*time.Hour),
		PendingSignupRetention: getEnvDuration("PENDING_SIGNUP_RETENTION", 24*time.Hour),
		SMTPHost:               getEnv("SMTP_HOST", "localhost"),
		SMTPPort:               getEnv("SMTP_PORT", "1025"),
		SMTPFrom:               getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername:           getEnv("SMTP_USERNAME", ""),
		SMTPPassword:           getEnv("SMTP_PASSWORD", ""),
		AllowedOrigins:         strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		TrustProxyHeaders:      getEnvBool("TRUST_PROXY_HEADERS", false),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("5m", "1h30m").
// "0" is a valid value and disables the corresponding expiry.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			return d
		}
	}
	return fallback
}
