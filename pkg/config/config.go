package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	Predictor PredictorConfig
	Optimizer OptimizerConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey string
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	// Enabled gates the optional second-level prediction cache.
	Enabled bool
}

type PredictorConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type OptimizerConfig struct {
	TopK             int
	MinImpressions   int64
	ExplorationRatio float64
	VirtualSamples   float64
	CacheCapacity    int
	CacheTTL         time.Duration
	PredictTimeout   time.Duration
	PredictBatchSize int
	QueueCapacity    int
	BatchSize        int
	BatchTimeout     time.Duration
	SuccessThreshold float64
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB := getEnvInt("REDIS_DB", 0)

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "PostPilot Optimizer API"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "postpilot"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
			Enabled:       getEnv("REDIS_PREDICTION_CACHE", "false") == "true",
		},
		Predictor: PredictorConfig{
			BaseURL: getEnv("PREDICTOR_URL", ""),
			APIKey:  getEnv("PREDICTOR_API_KEY", ""),
			Timeout: getEnvDuration("PREDICTOR_TIMEOUT", 500*time.Millisecond),
		},
		Optimizer: OptimizerConfig{
			TopK:             getEnvInt("OPTIMIZER_TOP_K", 5),
			MinImpressions:   int64(getEnvInt("OPTIMIZER_MIN_IMPRESSIONS", 10)),
			ExplorationRatio: getEnvFloat("OPTIMIZER_EXPLORATION_RATIO", 0.2),
			VirtualSamples:   getEnvFloat("OPTIMIZER_VIRTUAL_SAMPLES", 10),
			CacheCapacity:    getEnvInt("OPTIMIZER_CACHE_CAPACITY", 500),
			CacheTTL:         getEnvDuration("OPTIMIZER_CACHE_TTL", 6*time.Hour),
			PredictTimeout:   getEnvDuration("OPTIMIZER_PREDICT_TIMEOUT", 500*time.Millisecond),
			PredictBatchSize: getEnvInt("OPTIMIZER_PREDICT_BATCH_SIZE", 8),
			QueueCapacity:    getEnvInt("OPTIMIZER_QUEUE_CAPACITY", 4096),
			BatchSize:        getEnvInt("OPTIMIZER_BATCH_SIZE", 100),
			BatchTimeout:     getEnvDuration("OPTIMIZER_BATCH_TIMEOUT", 5*time.Second),
			SuccessThreshold: getEnvFloat("OPTIMIZER_SUCCESS_THRESHOLD", 2.0),
		},
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}

	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}

	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}

	return defaultVal
}
