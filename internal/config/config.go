package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/Tesseract-Nexus/go-shared/secrets"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"variations-service/internal/models"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis
	RedisURL string

	// Server
	Port        string
	Environment string

	// Messaging
	NATSURL string

	// Pagination
	DefaultPageSize int
	MaxPageSize     int

	// Variation limits
	MaxVariationTypes int
	MaxOptionsPerType int
	MaxCombinations   int
	DefaultCurrency   string
}

func Load() *Config {
	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	defaultPageSize, _ := strconv.Atoi(getEnv("DEFAULT_PAGE_SIZE", "20"))
	maxPageSize, _ := strconv.Atoi(getEnv("MAX_PAGE_SIZE", "100"))
	maxVariationTypes, _ := strconv.Atoi(getEnv("MAX_VARIATION_TYPES", "5"))
	maxOptionsPerType, _ := strconv.Atoi(getEnv("MAX_OPTIONS_PER_TYPE", "50"))
	maxCombinations, _ := strconv.Atoi(getEnv("MAX_COMBINATIONS", "1000"))

	return &Config{
		// Database - fetch password from GCP Secret Manager if enabled
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: secrets.GetDBPassword(),
		DBName:     getEnv("DB_NAME", "variations_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://redis.redis-marketplace.svc.cluster.local:6379/0"),

		// Server
		Port:        getEnv("PORT", "8089"),
		Environment: getEnv("ENVIRONMENT", "development"),

		NATSURL: os.Getenv("NATS_URL"),

		// Pagination
		DefaultPageSize: defaultPageSize,
		MaxPageSize:     maxPageSize,

		MaxVariationTypes: maxVariationTypes,
		MaxOptionsPerType: maxOptionsPerType,
		MaxCombinations:   maxCombinations,
		DefaultCurrency:   getEnv("DEFAULT_CURRENCY", "USD"),
	}
}

// Settings returns the values the service layer needs from the config
func (c *Config) Settings() Settings {
	return Settings{
		MaxVariationTypes: c.MaxVariationTypes,
		MaxOptionsPerType: c.MaxOptionsPerType,
		MaxCombinations:   c.MaxCombinations,
		DefaultPageSize:   c.DefaultPageSize,
		MaxPageSize:       c.MaxPageSize,
		Currency:          c.DefaultCurrency,
	}
}

// Settings bounds the size of a product's variation grid. A zero limit
// disables the corresponding check.
type Settings struct {
	MaxVariationTypes int
	MaxOptionsPerType int
	MaxCombinations   int
	DefaultPageSize   int
	MaxPageSize       int
	Currency          string
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)

	var logLevel logger.LogLevel
	if cfg.Environment == "production" {
		logLevel = logger.Error
	} else {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate brings the variation tables up to date. Columns are added, never
// dropped.
func Migrate(db *gorm.DB) error {
	log.Println("Running auto-migrations...")
	if err := db.AutoMigrate(
		&models.Product{},
		&models.VariationType{},
		&models.VariationOption{},
		&models.Variant{},
	); err != nil {
		// Renamed constraints surface as "does not exist" on older schemas
		errStr := err.Error()
		if strings.Contains(errStr, "does not exist") && strings.Contains(errStr, "constraint") {
			log.Printf("Note: Migration constraint warning (safe to ignore): %v", err)
		} else {
			return fmt.Errorf("failed to run auto-migrations: %w", err)
		}
	}
	log.Println("Auto-migrations completed successfully")
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
