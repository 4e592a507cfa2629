package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
// It is built once in main and injected into every component.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	DynamoTables DynamoTables
	Selfies      SelfieStorage

	UploadURLTTL time.Duration
	RunTTL       time.Duration // how long unfinished run-ledger entries are kept

	AnalysisTimeout     time.Duration
	GenerationTimeout   time.Duration
	StorageTimeout      time.Duration
	ConfidenceThreshold float64

	GeminiAPIKey      string
	GeminiModel       string
	GeminiTemperature float64

	SNSTopicARN string // optional: look.created notifications

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration

	LooksPageSize    int
	LooksMaxPageSize int

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Looks string
	Runs  string
}

// SelfieStorage describes where uploaded selfies live: Bucket/{KeyPrefix}{uploadId}{KeyExt}.
type SelfieStorage struct {
	Bucket      string
	KeyPrefix   string
	KeyExt      string
	ContentType string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:        getEnv("APP_PORT", "3000"),
		AppEnv:         getEnv("APP_ENV", "development"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Looks: getEnv("DYNAMO_TABLE_LOOKS", "looks"),
			Runs:  getEnv("DYNAMO_TABLE_RUNS", "look_runs"),
		},
		Selfies: SelfieStorage{
			Bucket:      getEnv("SELFIE_BUCKET", "glam-selfies"),
			KeyPrefix:   getEnv("SELFIE_KEY_PREFIX", "selfies/"),
			KeyExt:      getEnv("SELFIE_KEY_EXT", ".jpg"),
			ContentType: getEnv("SELFIE_CONTENT_TYPE", "image/jpeg"),
		},
		UploadURLTTL:        getEnvDuration("UPLOAD_URL_TTL", 60*time.Second),
		RunTTL:              getEnvDuration("RUN_TTL", 24*time.Hour),
		AnalysisTimeout:     getEnvDuration("ANALYSIS_TIMEOUT", 30*time.Second),
		GenerationTimeout:   getEnvDuration("GENERATION_TIMEOUT", 60*time.Second),
		StorageTimeout:      getEnvDuration("STORAGE_TIMEOUT", 5*time.Second),
		ConfidenceThreshold: getEnvFloat("FACE_CONFIDENCE_THRESHOLD", 0.90),
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		GeminiModel:         getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiTemperature:   getEnvFloat("GEMINI_TEMPERATURE", 0.7),
		SNSTopicARN:         getEnv("SNS_TOPIC_ARN", ""),
		JWTPrivateKeyPath:   getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:    getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:           time.Duration(getEnvInt("JWT_EXPIRY_DAYS", 7)) * 24 * time.Hour,
		LooksPageSize:       getEnvInt("LOOKS_PAGE_SIZE", 20),
		LooksMaxPageSize:    getEnvInt("LOOKS_MAX_PAGE_SIZE", 100),
		AllowedOrigins:      strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	var errs []error
	for name, d := range map[string]time.Duration{
		"UPLOAD_URL_TTL":     c.UploadURLTTL,
		"RUN_TTL":            c.RunTTL,
		"ANALYSIS_TIMEOUT":   c.AnalysisTimeout,
		"GENERATION_TIMEOUT": c.GenerationTimeout,
		"STORAGE_TIMEOUT":    c.StorageTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		errs = append(errs, fmt.Errorf("FACE_CONFIDENCE_THRESHOLD must be within [0,1], got %v", c.ConfidenceThreshold))
	}
	if c.Selfies.Bucket == "" {
		errs = append(errs, errors.New("SELFIE_BUCKET is required"))
	}
	if c.LooksPageSize < 1 || c.LooksMaxPageSize < c.LooksPageSize {
		errs = append(errs, fmt.Errorf("invalid page sizes: default %d, max %d", c.LooksPageSize, c.LooksMaxPageSize))
	}
	return errors.Join(errs...)
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

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("90s", "2m").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
