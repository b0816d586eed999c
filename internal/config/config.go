package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env           string `env:"ENV" env-default:"local"`
	DatabaseURL   string `env:"DATABASE_URL"`
	StorageDriver string `env:"STORAGE_DRIVER" env-default:"postgres"`
	GRPC          GRPCConfig
	HTTP          HTTPConfig
	Rules         RulesConfig
	Scheduler     SchedulerConfig
	Redis         RedisConfig
	Minio         MinioConfig
}

type GRPCConfig struct {
	Port    int           `env:"GRPC_PORT" env-default:"44044"`
	Timeout time.Duration `env:"GRPC_TIMEOUT" env-default:"10s"`
}

type HTTPConfig struct {
	Port            int           `env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"60s"`
	AllowedOrigins  []string      `env:"HTTP_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// RulesConfig — источник документа правил движка решений.
type RulesConfig struct {
	// Path — путь к YAML/JSON документу правил; пустой путь означает встроенные правила
	Path         string `env:"RULES_PATH" env-default:"config/decision_rules.yaml"`
	ManagerEmail string `env:"RULES_MANAGER_EMAIL" env-default:"manager@boulevardworld.sa"`
	BrandName    string `env:"RULES_BRAND_NAME" env-default:"Boulevard World"`
	// StatusLogLimit — сколько последних записей журнала учитывать в статусе (не более 100)
	StatusLogLimit int `env:"RULES_STATUS_LOG_LIMIT" env-default:"100"`
}

type SchedulerConfig struct {
	Enabled    bool          `env:"SCHEDULER_ENABLE" env-default:"false"`
	Interval   time.Duration `env:"SCHEDULER_INTERVAL" env-default:"1h"`
	RunOnStart bool          `env:"SCHEDULER_RUN_ON_START" env-default:"false"`
}

// RedisConfig — Redis для распределенной блокировки запусков планировщика.
type RedisConfig struct {
	Enabled  bool          `env:"REDIS_ENABLE" env-default:"false"`
	Addr     string        `env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" env-default:"0"`
	LockTTL  time.Duration `env:"REDIS_LOCK_TTL" env-default:"10m"`
}

type MinioConfig struct {
	Enabled           bool   `env:"MINIO_ENABLE" env-default:"false"`
	Port              int    `env:"MINIO_PORT" env-default:"9000"`
	MinioEndpoint     string `env:"MINIO_ENDPOINT"`
	BucketName        string `env:"MINIO_BUCKET" env-default:"decision-reports"`
	MinioRootUser     string `env:"MINIO_USER"`
	MinioRootPassword string `env:"MINIO_PASSWORD"`
	MinioUseSSL       bool   `env:"MINIO_USE_SSL"`
	ReportPrefix      string `env:"MINIO_REPORT_PREFIX" env-default:"execution-reports"`
}

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

func MustLoad() *Config {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		panic("cannot read config from environment: " + err.Error())
	}
	if err := cfg.Validate(); err != nil {
		panic("invalid config: " + err.Error())
	}
	return &cfg
}

// Validate проверяет согласованность значений, которые cleanenv не проверяет сам.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for storage driver %q", c.StorageDriver)
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
	if c.Scheduler.Enabled && c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler interval must be positive, got %s", c.Scheduler.Interval)
	}
	if c.Rules.StatusLogLimit <= 0 || c.Rules.StatusLogLimit > 100 {
		c.Rules.StatusLogLimit = 100
	}
	if c.Minio.Enabled && c.Minio.MinioEndpoint == "" {
		return fmt.Errorf("MINIO_ENDPOINT is required when MinIO is enabled")
	}
	return nil
}
