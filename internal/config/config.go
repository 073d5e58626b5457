package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type AvailabilityServiceConfig struct {
	Port        string
	PostgresCfg PostgresConfig
	RedisCfg    RedisConfig
	MinioCfg    MinioConfig
	RabbitMQCfg RabbitMQConfig
	RecomputeCfg RecomputeConfig
	VocabCfg    VocabularyConfig
}

type PostgresConfig struct {
	DBname   string
	Username string
	Password string
	Host     string
	Port     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type MinioConfig struct {
	MinioURL       string
	MinioAccessKey string
	MinioSecretKey string
	MinioLocation  string
	MinioSecure    string
	ReportBucket   string
}

type RabbitMQConfig struct {
	Username string
	Password string
	Host     string
	Port     string
}

// RecomputeConfig drives the background scheduler that keeps yesterday's
// daily rows and the current week's rollup fresh.
type RecomputeConfig struct {
	Enabled  bool
	Interval time.Duration
	Workers  int
}

// VocabularyConfig overrides the vendor-string lookup tables used by the
// slot classifiers. Empty values keep the built-in defaults; list values
// are comma separated.
type VocabularyConfig struct {
	ProlongedOfflineMarkers []string
	ActiveStatusMarkers     []string
	GeofenceInMarker        string
	PrinterAvailable        string
	PrinterOutOfPaper       string
	PrinterLowVoltage       string
}

func New() *AvailabilityServiceConfig {
	return &AvailabilityServiceConfig{
		Port: getEnvOrDefault("PORT", "8086"),
		PostgresCfg: PostgresConfig{
			DBname:   getEnvOrDefault("POSTGRES_DB", "availability"),
			Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
			Password: getEnvOrDefault("POSTGRES_PASSWORD", "postgres"),
			Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
			Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
		},
		RedisCfg: RedisConfig{
			Host:     getEnvOrDefault("REDIS_HOST", "localhost"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       0,
		},
		MinioCfg: MinioConfig{
			MinioURL:       getEnvOrDefault("MINIO_ENDPOINT", "http://localhost:9407"),
			MinioAccessKey: getEnvOrDefault("MINIO_ACCESS_KEY", "minio"),
			MinioSecretKey: getEnvOrDefault("MINIO_SECRET_KEY", "minio123"),
			MinioLocation:  getEnvOrDefault("MINIO_LOCATION", "us-east-1"),
			MinioSecure:    getEnvOrDefault("MINIO_SECURE", "false"),
			ReportBucket:   getEnvOrDefault("MINIO_REPORT_BUCKET", "availability-reports"),
		},
		RabbitMQCfg: RabbitMQConfig{
			Username: getEnvOrDefault("RABBITMQ_USER", "admin"),
			Password: getEnvOrDefault("RABBITMQ_PWD", "admin"),
			Host:     getEnvOrDefault("RABBITMQ_HOST", "localhost"),
			Port:     getEnvOrDefault("RABBITMQ_PORT", "5672"),
		},
		RecomputeCfg: RecomputeConfig{
			Enabled:  getEnvOrDefault("RECOMPUTE_ENABLED", "false") == "true",
			Interval: getEnvDuration("RECOMPUTE_INTERVAL", time.Hour),
			Workers:  getEnvInt("RECOMPUTE_WORKERS", 2),
		},
		VocabCfg: VocabularyConfig{
			ProlongedOfflineMarkers: getEnvList("VOCAB_OFFLINE_PROLONGED", nil),
			ActiveStatusMarkers:     getEnvList("VOCAB_STATUS_ACTIVE", nil),
			GeofenceInMarker:        getEnvOrDefault("VOCAB_GEOFENCE_IN", ""),
			PrinterAvailable:        getEnvOrDefault("VOCAB_PRINTER_AVAILABLE", ""),
			PrinterOutOfPaper:       getEnvOrDefault("VOCAB_PRINTER_OUT_OF_PAPER", ""),
			PrinterLowVoltage:       getEnvOrDefault("VOCAB_PRINTER_LOW_VOLTAGE", ""),
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
