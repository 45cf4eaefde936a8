package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultSourceURL is the Vienna OGD WFS endpoint for the Donauinsel
// recreational facilities point dataset, returned as CSV.
const DefaultSourceURL = "https://data.wien.gv.at/daten/geo?service=WFS&request=GetFeature&version=1.1.0&typeName=ogdwien:DONAUINSPKTOGD&srsName=EPSG:4326&outputFormat=csv"

// Config holds the full application configuration.
type Config struct {
	Source SourceConfig `yaml:"source" mapstructure:"source"`
	HTTP   HTTPConfig   `yaml:"http" mapstructure:"http"`
	Chart  ChartConfig  `yaml:"chart" mapstructure:"chart"`
	Export ExportConfig `yaml:"export" mapstructure:"export"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// SourceConfig identifies the remote dataset.
type SourceConfig struct {
	URL      string `yaml:"url" mapstructure:"url"`
	Encoding string `yaml:"encoding" mapstructure:"encoding"` // "utf-8" or "latin1"
}

// HTTPConfig configures the HTTP fetcher.
type HTTPConfig struct {
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
}

// ChartConfig configures scatter plot rendering.
type ChartConfig struct {
	Title      string  `yaml:"title" mapstructure:"title"`
	WidthCm    float64 `yaml:"width_cm" mapstructure:"width_cm"`
	HeightCm   float64 `yaml:"height_cm" mapstructure:"height_cm"`
	OutputPath string  `yaml:"output_path" mapstructure:"output_path"`
}

// ExportConfig configures table export.
type ExportConfig struct {
	Format     string `yaml:"format" mapstructure:"format"`
	OutputPath string `yaml:"output_path" mapstructure:"output_path"`
}

// StoreConfig configures the optional run-history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // "sqlite", "postgres" or "" (disabled)
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the chart/report HTTP server.
type ServerConfig struct {
	Port                int `yaml:"port" mapstructure:"port"`
	RefreshMins         int `yaml:"refresh_mins" mapstructure:"refresh_mins"`
	ShutdownTimeoutSecs int `yaml:"shutdown_timeout_secs" mapstructure:"shutdown_timeout_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("INSELMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("source.url", DefaultSourceURL)
	v.SetDefault("source.encoding", "utf-8")
	v.SetDefault("http.timeout_secs", 60)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.user_agent", "inselmap/1.0")
	v.SetDefault("chart.title", "Karte der Freizeiteinrichtungen Donauinsel")
	v.SetDefault("chart.width_cm", 30.0)
	v.SetDefault("chart.height_cm", 18.0)
	v.SetDefault("chart.output_path", "donauinsel.png")
	v.SetDefault("export.format", "csv")
	v.SetDefault("export.output_path", "donauinsel_export")
	v.SetDefault("store.driver", "")
	v.SetDefault("store.database_url", "inselmap.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.refresh_mins", 60)
	v.SetDefault("server.shutdown_timeout_secs", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
