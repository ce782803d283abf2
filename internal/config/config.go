package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	CalibrationFromFile    = "file"
	CalibrationFromDB      = "db"
	CalibrationFromBuiltin = "builtin"
)

type Config struct {
	Env             string        `mapstructure:"ENV"`
	Port            string        `mapstructure:"PORT"`
	DatabaseURL     string        `mapstructure:"DATABASE_URL"`
	AdminKey        string        `mapstructure:"ADMIN_KEY"`
	CORSAllowed     string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	MaxUploadSizeMB int64         `mapstructure:"MAX_UPLOAD_MB"`

	CalibrationSource      string        `mapstructure:"CALIBRATION_SOURCE"`
	CalibrationPath        string        `mapstructure:"CALIBRATION_PATH"`
	CalibrationMaxAttempts int           `mapstructure:"CALIBRATION_MAX_ATTEMPTS"`
	CalibrationRetryDelay  time.Duration `mapstructure:"CALIBRATION_RETRY_DELAY"`
	CalibrationMaxElapsed  time.Duration `mapstructure:"CALIBRATION_MAX_ELAPSED"`

	EvalYear            int     `mapstructure:"EVAL_YEAR"`
	MarketAdjustment    float64 `mapstructure:"MARKET_ADJUSTMENT"`
	BaseRatePerTon      float64 `mapstructure:"BASE_RATE_PER_TON"`
	DefaultOperatorCost float64 `mapstructure:"DEFAULT_OPERATOR_COST"`
	BatchWorkers        int     `mapstructure:"BATCH_WORKERS"`
	ComparablesLimit    int     `mapstructure:"COMPARABLES_LIMIT"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()
	return load(v)
}

func load(v *viper.Viper) (Config, error) {
	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("MAX_UPLOAD_MB", 20)
	v.SetDefault("ADMIN_KEY", "")
	v.SetDefault("DATABASE_URL", "")

	v.SetDefault("CALIBRATION_SOURCE", CalibrationFromFile)
	v.SetDefault("CALIBRATION_PATH", "data/rate_calibration.csv")
	v.SetDefault("CALIBRATION_MAX_ATTEMPTS", 3)
	v.SetDefault("CALIBRATION_RETRY_DELAY", "200ms")
	v.SetDefault("CALIBRATION_MAX_ELAPSED", "5s")

	v.SetDefault("EVAL_YEAR", 0)
	v.SetDefault("MARKET_ADJUSTMENT", 0.0)
	v.SetDefault("BASE_RATE_PER_TON", 104.0)
	v.SetDefault("DEFAULT_OPERATOR_COST", 95000.0)
	v.SetDefault("BATCH_WORKERS", 8)
	v.SetDefault("COMPARABLES_LIMIT", 4)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.CalibrationSource = strings.ToLower(strings.TrimSpace(cfg.CalibrationSource))
	switch cfg.CalibrationSource {
	case CalibrationFromFile, CalibrationFromDB, CalibrationFromBuiltin:
	default:
		return Config{}, fmt.Errorf("CALIBRATION_SOURCE must be file, db or builtin, got %q", cfg.CalibrationSource)
	}
	if cfg.CalibrationSource == CalibrationFromDB && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("CALIBRATION_SOURCE=db requires DATABASE_URL")
	}
	return cfg, nil
}
