package infra

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"qrquicker/internal/qrcode"
)

// ConfigFileEnv names the variable pointing at an optional YAML config file.
const ConfigFileEnv = "QRQ_CONFIG_FILE"

// Config represents application configuration. Values come from defaults, then
// the optional YAML file, then environment variables.
type Config struct {
	AppEnv      string `yaml:"app_env"`
	LogLevel    string `yaml:"log_level"`
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"database_url"`

	DataDir        string `yaml:"data_dir"`
	TempDir        string `yaml:"temp_dir"`
	GalleryDir     string `yaml:"gallery_dir"`
	GalleryBaseURL string `yaml:"gallery_base_url"`

	QRImageSize     int    `yaml:"qr_image_size"`
	QRForeground    string `yaml:"qr_foreground"`
	QRBackground    string `yaml:"qr_background"`
	QRMaxTextLength int    `yaml:"qr_max_text_length"`
	QRTitlePrefix   string `yaml:"qr_title_prefix"`

	DecodeMaxPixels int `yaml:"decode_max_pixels"`

	PipelineWorkers   int           `yaml:"pipeline_workers"`
	PipelineQueueSize int           `yaml:"pipeline_queue_size"`
	TempRetention     time.Duration `yaml:"temp_retention"`
	TempSweepInterval time.Duration `yaml:"temp_sweep_interval"`
	DefaultLocale     string        `yaml:"default_locale"`

	CORSAllowedOrigins []string      `yaml:"cors_allowed_origins"`
	RateLimitPerMin    int           `yaml:"rate_limit_per_minute"`
	HTTPReadTimeout    time.Duration `yaml:"http_read_timeout"`
	HTTPWriteTimeout   time.Duration `yaml:"http_write_timeout"`
	HTTPIdleTimeout    time.Duration `yaml:"http_idle_timeout"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		AppEnv:            "development",
		LogLevel:          "",
		Port:              "8080",
		DataDir:           "data",
		QRImageSize:       256,
		QRForeground:      "#333333",
		QRBackground:      "#FFFFFF",
		QRMaxTextLength:   100,
		QRTitlePrefix:     "QR Quicker",
		DecodeMaxPixels:   4096 * 4096,
		PipelineWorkers:   2,
		PipelineQueueSize: 64,
		TempRetention:     24 * time.Hour,
		TempSweepInterval: time.Hour,
		DefaultLocale:     "en",
		RateLimitPerMin:   30,
		HTTPReadTimeout:   15 * time.Second,
		HTTPWriteTimeout:  30 * time.Second,
		HTTPIdleTimeout:   60 * time.Second,
	}
}

// LoadConfig loads .env files, the YAML file named by QRQ_CONFIG_FILE and
// environment variables, then validates the result.
func LoadConfig() (*Config, error) {
	// Missing .env files are fine.
	_ = godotenv.Load(".env", ".env.local")
	return LoadConfigFile(os.Getenv(ConfigFileEnv))
}

// LoadConfigFile is LoadConfig with an explicit YAML path. An empty path
// skips the file.
func LoadConfigFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path = strings.TrimSpace(path); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	cfg.applyDerived()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file %s not found", path)
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.AppEnv = getEnv("APP_ENV", c.AppEnv)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.Port = getEnv("PORT", c.Port)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.DataDir = getEnv("DATA_DIR", c.DataDir)
	c.TempDir = getEnv("TEMP_DIR", c.TempDir)
	c.GalleryDir = getEnv("GALLERY_DIR", c.GalleryDir)
	c.GalleryBaseURL = getEnv("GALLERY_BASE_URL", c.GalleryBaseURL)
	c.QRImageSize = getEnvInt("QR_IMAGE_SIZE", c.QRImageSize)
	c.QRForeground = getEnv("QR_FOREGROUND", c.QRForeground)
	c.QRBackground = getEnv("QR_BACKGROUND", c.QRBackground)
	c.QRMaxTextLength = getEnvInt("QR_MAX_TEXT_LENGTH", c.QRMaxTextLength)
	c.QRTitlePrefix = getEnv("QR_TITLE_PREFIX", c.QRTitlePrefix)
	c.DecodeMaxPixels = getEnvInt("DECODE_MAX_PIXELS", c.DecodeMaxPixels)
	c.PipelineWorkers = getEnvInt("PIPELINE_WORKERS", c.PipelineWorkers)
	c.PipelineQueueSize = getEnvInt("PIPELINE_QUEUE_SIZE", c.PipelineQueueSize)
	c.TempRetention = getEnvDuration("TEMP_RETENTION", c.TempRetention)
	c.TempSweepInterval = getEnvDuration("TEMP_SWEEP_INTERVAL", c.TempSweepInterval)
	c.DefaultLocale = getEnv("DEFAULT_LOCALE", c.DefaultLocale)
	c.CORSAllowedOrigins = getEnvList("CORS_ALLOWED_ORIGINS", c.CORSAllowedOrigins)
	c.RateLimitPerMin = getEnvInt("RATE_LIMIT_PER_MINUTE", c.RateLimitPerMin)
	c.HTTPReadTimeout = time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", int(c.HTTPReadTimeout/time.Second)))
	c.HTTPWriteTimeout = time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", int(c.HTTPWriteTimeout/time.Second)))
	c.HTTPIdleTimeout = time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", int(c.HTTPIdleTimeout/time.Second)))
}

func (c *Config) applyDerived() {
	if c.TempDir == "" {
		c.TempDir = filepath.Join(c.DataDir, "qr_quicker_output")
	}
	if c.GalleryDir == "" {
		c.GalleryDir = filepath.Join(c.DataDir, "gallery")
	}
	if c.GalleryBaseURL == "" {
		c.GalleryBaseURL = fmt.Sprintf("http://localhost:%s/v1/gallery", c.Port)
	}
	c.GalleryBaseURL = strings.TrimRight(c.GalleryBaseURL, "/")
}

// Validate collects every invalid field.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder
	check := func(field string, err error) {
		if err != nil {
			errs = errs.Append(field, err)
		}
	}
	check("qr_image_size", positive(c.QRImageSize))
	check("qr_max_text_length", positive(c.QRMaxTextLength))
	check("decode_max_pixels", positive(c.DecodeMaxPixels))
	check("pipeline_workers", positive(c.PipelineWorkers))
	check("pipeline_queue_size", positive(c.PipelineQueueSize))
	check("temp_retention", nonNegative(c.TempRetention))
	if c.TempRetention > 0 && c.TempSweepInterval <= 0 {
		check("temp_sweep_interval", errors.New("must be greater than 0 when temp_retention is set"))
	}
	check("rate_limit_per_minute", nonNegativeInt(c.RateLimitPerMin))

	return criterio.ValidateStruct(
		criterio.Run("port", c.Port, required),
		criterio.Run("log_level", c.LogLevel, logLevel),
		criterio.Run("qr_foreground", c.QRForeground, hexColor),
		criterio.Run("qr_background", c.QRBackground, hexColor),
		errs.ToError(),
	)
}

// Palette returns the configured QR colors. Validate must have passed.
func (c *Config) Palette() qrcode.Palette {
	p, err := qrcode.ParsePalette(c.QRForeground, c.QRBackground)
	if err != nil {
		return qrcode.DefaultPalette
	}
	return p
}

func required(v string) error {
	if strings.TrimSpace(v) == "" {
		return errors.New("is required")
	}
	return nil
}

func positive(v int) error {
	if v <= 0 {
		return fmt.Errorf("must be greater than 0, got %d", v)
	}
	return nil
}

func nonNegativeInt(v int) error {
	if v < 0 {
		return fmt.Errorf("must not be negative, got %d", v)
	}
	return nil
}

func nonNegative(v time.Duration) error {
	if v < 0 {
		return fmt.Errorf("must not be negative, got %s", v)
	}
	return nil
}

func hexColor(v string) error {
	_, err := qrcode.ParseHexColor(v)
	return err
}

func logLevel(v string) error {
	if v == "" {
		return nil
	}
	_, err := zerolog.ParseLevel(strings.ToLower(v))
	return err
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	if v == "0" {
		return 0
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
