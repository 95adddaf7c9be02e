package config

import (
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	Port       string `env:"PORT" envDefault:"8080"`
	DBUser     string `env:"DB_USER,required"`
	DBPassword string `env:"DB_PASSWORD,required"`
	DBHost     string `env:"DB_HOST,required"` // e.g. tcp(host:3306) or unix(/cloudsql/instance)
	DBName     string `env:"DB_NAME,required"`
	DBPort     string `env:"DB_PORT" envDefault:"3306"`

	InstanceConnectionName string `env:"INSTANCE_CONNECTION_NAME"`

	SecretKey     string        `env:"SECRET_KEY" envDefault:"dev-secret-key-change-in-production"`
	TokenValidity time.Duration `env:"TOKEN_VALIDITY" envDefault:"720h"`

	StartScheduler    bool          `env:"START_SCHEDULER" envDefault:"false"`
	SchedulerInterval time.Duration `env:"SCHEDULER_INTERVAL" envDefault:"1m"`
	RetentionDays     int           `env:"TRACKER_RETENTION_DAYS" envDefault:"30"`
	DeactivateAfter   int           `env:"DEACTIVATE_AFTER_DAYS" envDefault:"60"`
	DeleteAfter       int           `env:"DELETE_AFTER_DAYS" envDefault:"120"`

	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	ReportWorkers int           `env:"REPORT_WORKERS" envDefault:"2"`

	DefaultDailyTargetML float64 `env:"DEFAULT_DAILY_TARGET_ML" envDefault:"210"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
