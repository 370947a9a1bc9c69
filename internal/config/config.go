package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	GuardStrict     = "strict"
	GuardPermissive = "permissive"
)

type Config struct {
	ServerPort    string
	StorageDriver string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBSeed     bool

	AWSRegion         string
	SQSSensorQueueURL string
	IoTMQTTEndpoint   string

	Kafka    KafkaConfig
	InfluxDB InfluxDBConfig

	JWTSecret          string
	JWTExpirationHours time.Duration
	AdminUsername      string
	AdminPassword      string

	Simulation SimulationConfig
}

type KafkaConfig struct {
	Brokers          []string
	SpaceEventsTopic string
	SettlementsTopic string
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type InfluxDBConfig struct {
	URL            string
	Org            string
	Token          string
	Bucket         string
	ReportInterval time.Duration
}

func (i InfluxDBConfig) Enabled() bool {
	return i.URL != "" && i.Token != ""
}

type SimulationConfig struct {
	OccupancyGuard    string
	HistoryLimit      int
	MinimumFare       float64
	HourlyRate        float64
	NodeID            int64
	EventLogRetention time.Duration
}

// StrictGuard reports whether double entries are rejected.
func (s SimulationConfig) StrictGuard() bool {
	return s.OccupancyGuard != GuardPermissive
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	return &Config{
		ServerPort:    getEnv("SERVER_PORT", "4000"),
		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", StorageMemory)),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 5432),
		DBUser:     getEnv("DB_USER", "autoslot"),
		DBPassword: getEnv("DB_PASSWORD", "autoslot"),
		DBName:     getEnv("DB_NAME", "autoslot"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),
		DBSeed:     getEnvBool("DB_SEED", true),

		AWSRegion:         getEnv("AWS_REGION", "us-east-1"),
		SQSSensorQueueURL: getEnv("SQS_SENSOR_QUEUE_URL", ""),
		IoTMQTTEndpoint:   getEnv("IOT_MQTT_ENDPOINT", ""),

		Kafka: KafkaConfig{
			Brokers:          getEnvStringSlice("KAFKA_BROKERS", nil),
			SpaceEventsTopic: getEnv("KAFKA_SPACE_EVENTS_TOPIC", "autoslot.space-events"),
			SettlementsTopic: getEnv("KAFKA_SETTLEMENTS_TOPIC", "autoslot.settlements"),
		},
		InfluxDB: InfluxDBConfig{
			URL:            getEnv("INFLUXDB_URL", ""),
			Org:            getEnv("INFLUXDB_ORG", "autoslot"),
			Token:          getEnv("INFLUXDB_TOKEN", ""),
			Bucket:         getEnv("INFLUXDB_BUCKET", "parking"),
			ReportInterval: getEnvDuration("INFLUXDB_REPORT_INTERVAL", time.Minute),
		},

		JWTSecret:          getEnv("JWT_SECRET", "change-me-autoslot-secret"),
		JWTExpirationHours: time.Duration(getEnvInt("JWT_EXPIRATION_HOURS", 24)) * time.Hour,
		AdminUsername:      getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:      getEnv("ADMIN_PASSWORD", "admin"),

		Simulation: SimulationConfig{
			OccupancyGuard:    parseGuard(getEnv("OCCUPANCY_GUARD", GuardStrict)),
			HistoryLimit:      getEnvInt("HISTORY_LIMIT", 1000),
			MinimumFare:       getEnvFloat("MINIMUM_FARE", 25),
			HourlyRate:        getEnvFloat("HOURLY_RATE", 50),
			NodeID:            int64(getEnvInt("NODE_ID", 1)),
			EventLogRetention: getEnvDuration("EVENT_LOG_RETENTION", 24*time.Hour),
		},
	}
}

func parseGuard(value string) string {
	guard := strings.ToLower(strings.TrimSpace(value))
	switch guard {
	case GuardStrict, GuardPermissive:
		return guard
	}
	log.Printf("Warning: unknown OCCUPANCY_GUARD '%s', using '%s'", value, GuardStrict)
	return GuardStrict
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Printf("Environment variable '%s' is not an integer, using default %d", key, fallback)
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
		log.Printf("Environment variable '%s' is not a number, using default %v", key, fallback)
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

func getEnvStringSlice(key string, fallback []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
