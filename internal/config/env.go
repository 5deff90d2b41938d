package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "FLIBPROXY"

// envOverrides переменные FLIBPROXY_*. Незаданные остаются nil и не трогают YAML.
type envOverrides struct {
	BaseURL     *string        `envconfig:"BASE_URL"`
	Timeout     *time.Duration `envconfig:"TIMEOUT"`
	MaxBooks    *int           `envconfig:"MAX_BOOKS"`
	Host        *string        `envconfig:"HOST"`
	Port        *int           `envconfig:"PORT"`
	StaticDir   *string        `envconfig:"STATIC_DIR"`
	MetricsPort *int           `envconfig:"METRICS_PORT"`
	LogLevel    *string        `envconfig:"LOG_LEVEL"`
	LogJSON     *bool          `envconfig:"LOG_JSON"`
	LogPath     *string        `envconfig:"LOG_PATH"`
	GatewayURL  *string        `envconfig:"GATEWAY_URL"`
}

func applyEnv(cfg *Config) error {
	// .env необязателен
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	// PORT без префикса понимают хостинги; FLIBPROXY_PORT важнее
	if v, ok := os.LookupEnv("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return ErrInvalid(fmt.Sprintf("PORT %q is not a number", v))
		}
		cfg.Server.Port = port
	}

	var env envOverrides
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return fmt.Errorf("environment: %w", err)
	}

	setString(&cfg.Catalog.BaseURL, env.BaseURL)
	if env.Timeout != nil {
		cfg.Catalog.Timeout = *env.Timeout
	}
	setInt(&cfg.Catalog.MaxBooks, env.MaxBooks)
	setString(&cfg.Server.Host, env.Host)
	setInt(&cfg.Server.Port, env.Port)
	setString(&cfg.Server.StaticDir, env.StaticDir)
	setInt(&cfg.Metrics.Port, env.MetricsPort)
	setString(&cfg.Logging.Level, env.LogLevel)
	if env.LogJSON != nil {
		cfg.Logging.JSON = *env.LogJSON
	}
	setString(&cfg.Logging.Path, env.LogPath)
	setString(&cfg.CLI.GatewayURL, env.GatewayURL)
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
