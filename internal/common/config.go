package common

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	OCR      OCRConfig      `mapstructure:"ocr"`
	Ingest   IngestConfig   `mapstructure:"ingest"`
	Log      LogConfig      `mapstructure:"log"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
	DialTimeout     time.Duration `mapstructure:"dial_timeout"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr       string        `mapstructure:"http_addr"`
	GRPCAddr       string        `mapstructure:"grpc_addr"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// OCRConfig holds recognizer and rendering configuration
type OCRConfig struct {
	TesseractLang    string   `mapstructure:"tesseract_lang"`
	TessdataDir      string   `mapstructure:"tessdata_dir"`
	DisableTesseract bool     `mapstructure:"disable_tesseract"`
	Command          string   `mapstructure:"command"`
	CommandArgs      []string `mapstructure:"command_args"`
	Pdftoppm         string   `mapstructure:"pdftoppm"`
	RenderWidth      int      `mapstructure:"render_width"`
	RetryAttempts    uint     `mapstructure:"retry_attempts"`
	WorkDir          string   `mapstructure:"work_dir"`
}

// IngestConfig holds drop-folder configuration
type IngestConfig struct {
	Roots          []string      `mapstructure:"roots"`
	Workers        int           `mapstructure:"workers"`
	QueueSize      int           `mapstructure:"queue_size"`
	ProcessTimeout time.Duration `mapstructure:"process_timeout"`
	Debounce       time.Duration `mapstructure:"debounce"`
}

// LogConfig selects the slog handler
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

const envPrefix = "PDFA"

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.dsn", "sqlite://./pdfanalyzer.db")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", 30*time.Minute)
	v.SetDefault("database.max_conn_idle_time", 5*time.Minute)
	v.SetDefault("database.dial_timeout", 3*time.Second)

	v.SetDefault("server.http_addr", ":8000")
	v.SetDefault("server.grpc_addr", ":9090")
	v.SetDefault("server.max_upload_bytes", 20<<20)
	v.SetDefault("server.request_timeout", 5*time.Minute)

	v.SetDefault("ocr.tesseract_lang", "ind+eng")
	v.SetDefault("ocr.tessdata_dir", "")
	v.SetDefault("ocr.disable_tesseract", false)
	v.SetDefault("ocr.command", "tesseract")
	v.SetDefault("ocr.command_args", []string{})
	v.SetDefault("ocr.pdftoppm", "pdftoppm")
	v.SetDefault("ocr.render_width", 2480)
	v.SetDefault("ocr.retry_attempts", 2)
	v.SetDefault("ocr.work_dir", "")

	v.SetDefault("ingest.roots", []string{})
	v.SetDefault("ingest.workers", 2)
	v.SetDefault("ingest.queue_size", 64)
	v.SetDefault("ingest.process_timeout", 5*time.Minute)
	v.SetDefault("ingest.debounce", 500*time.Millisecond)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// LoadConfig reads defaults, an optional config file and PDFA_* environment
// overrides. An empty cfgFile looks for pdfanalyzer.yaml in the working
// directory and in $HOME/.pdfanalyzer; a missing file is not an error.
func LoadConfig(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("pdfanalyzer")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.pdfanalyzer")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "database.dsn is required", ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" && c.Server.GRPCAddr == "" {
		return NewAppError("CONFIG_ERROR", "server.http_addr or server.grpc_addr is required", ErrInvalidInput)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return NewAppError("CONFIG_ERROR", "server.max_upload_bytes must be positive", ErrInvalidInput)
	}
	if c.OCR.RenderWidth <= 0 {
		return NewAppError("CONFIG_ERROR", "ocr.render_width must be positive", ErrInvalidInput)
	}
	if c.OCR.Command == "" && c.OCR.DisableTesseract {
		return NewAppError("CONFIG_ERROR", "ocr.command is required when tesseract is disabled", ErrInvalidInput)
	}
	for _, root := range c.Ingest.Roots {
		if strings.TrimSpace(root) == "" {
			return NewAppError("CONFIG_ERROR", "ingest.roots contains an empty path", ErrInvalidInput)
		}
	}
	if c.Ingest.Workers <= 0 {
		return NewAppError("CONFIG_ERROR", "ingest.workers must be positive", ErrInvalidInput)
	}
	return nil
}
