package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"flibproxy/internal/catalog"
	"flibproxy/internal/logger"
)

const (
	PathEnv     = "FLIBPROXY_CONFIG"
	DefaultPath = "flibproxy.yaml"
)

// CatalogConfig настройки обращения к сайту каталога
type CatalogConfig struct {
	BaseURL        string            `yaml:"base_url"`
	Timeout        time.Duration     `yaml:"timeout"`
	MaxBooks       int               `yaml:"max_books"`
	FormatPriority []string          `yaml:"format_priority"`
	Headers        map[string]string `yaml:"headers"` // дополняют и перекрывают стандартные
}

// ServerConfig содержит сетевые настройки HTTP API
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	StaticDir       string        `yaml:"static_dir"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// MetricsConfig настройки для экспортера метрик. Port 0 - /metrics на основном порту.
type MetricsConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
	Path  string `yaml:"path"`
}

// CLIConfig настройки для CLI (не сервис)
type CLIConfig struct {
	GatewayURL  string        `yaml:"gateway_url"`
	DownloadDir string        `yaml:"download_dir"`
	Timeout     time.Duration `yaml:"timeout"`
	Debug       bool          `yaml:"debug"`
}

// Config корень дерева конфигурации, соответствует flibproxy.yaml
type Config struct {
	Catalog CatalogConfig `yaml:"catalog"`
	Server  ServerConfig  `yaml:"server"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
	CLI     CLIConfig     `yaml:"cli"`
}

// Default значения, с которыми сервис работает без файла конфигурации
func Default() Config {
	return Config{
		Catalog: CatalogConfig{
			BaseURL:        catalog.DefaultBaseURL,
			Timeout:        catalog.DefaultTimeout,
			MaxBooks:       catalog.DefaultMaxBooks,
			FormatPriority: catalog.DefaultFormatPriority(),
		},
		Server: ServerConfig{
			Port:            3000,
			StaticDir:       "public",
			ShutdownTimeout: 10 * time.Second,
		},
		Metrics: MetricsConfig{Path: "/metrics"},
		Logging: LoggingConfig{Level: "info"},
		CLI: CLIConfig{
			GatewayURL:  "http://localhost:3000",
			DownloadDir: ".",
			Timeout:     5 * time.Minute,
		},
	}
}

// Path возвращает путь к файлу конфигурации и признак того, что он задан явно
func Path() (string, bool) {
	if p := os.Getenv(PathEnv); p != "" {
		return p, true
	}
	return DefaultPath, false
}

// Load собирает конфигурацию: умолчания, затем YAML (если есть), затем переменные окружения.
// Отсутствие файла ошибка только если путь задан явно.
func Load(path string, required bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !required:
	default:
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Catalog.BaseURL == "" {
		return ErrInvalid("catalog.base_url is required")
	}
	if c.Catalog.Timeout <= 0 {
		return ErrInvalid("catalog.timeout must be positive")
	}
	if c.Catalog.MaxBooks <= 0 {
		return ErrInvalid("catalog.max_books must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return ErrInvalid(fmt.Sprintf("server.port %d is out of range", c.Server.Port))
	}
	if c.Metrics.Port < 0 || c.Metrics.Port > 65535 {
		return ErrInvalid(fmt.Sprintf("metrics.port %d is out of range", c.Metrics.Port))
	}
	return nil
}

type invalidErr string

func (e invalidErr) Error() string { return string(e) }
func ErrInvalid(msg string) error  { return invalidErr(msg) }

// Options переводит секцию catalog в настройки клиента.
// Заголовки из файла накладываются поверх стандартных.
func (c CatalogConfig) Options() catalog.Options {
	headers := catalog.DefaultHeaders()
	for k, v := range c.Headers {
		headers[k] = v
	}
	priority := c.FormatPriority
	if len(priority) == 0 {
		priority = catalog.DefaultFormatPriority()
	}
	return catalog.Options{
		BaseURL:        c.BaseURL,
		Timeout:        c.Timeout,
		MaxBooks:       c.MaxBooks,
		FormatPriority: append([]string(nil), priority...),
		Headers:        headers,
	}
}

func (l LoggingConfig) Options() logger.Options {
	return logger.Options{Level: l.Level, JSON: l.JSON, Path: l.Path}
}

// Address возвращает строку host:port
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (m MetricsConfig) Address(host string) string {
	return fmt.Sprintf("%s:%d", host, m.Port)
}
