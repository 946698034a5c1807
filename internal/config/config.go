package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/pricing-cli/internal/rates"
)

// Config holds the full application configuration.
type Config struct {
	Dataset  DatasetConfig  `yaml:"dataset" mapstructure:"dataset"`
	Geocode  GeocodeConfig  `yaml:"geocode" mapstructure:"geocode"`
	Overpass OverpassConfig `yaml:"overpass" mapstructure:"overpass"`
	Comps    CompsConfig    `yaml:"comps" mapstructure:"comps"`
	POI      POIConfig      `yaml:"poi" mapstructure:"poi"`
	Rates    rates.Config   `yaml:"rates" mapstructure:"rates"`
	Template TemplateConfig `yaml:"template" mapstructure:"template"`
	Finmodel FinmodelConfig `yaml:"finmodel" mapstructure:"finmodel"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// DatasetConfig locates the reference pricing workbook.
type DatasetConfig struct {
	Path            string   `yaml:"path" mapstructure:"path"`
	RegionSheets    []string `yaml:"region_sheets" mapstructure:"region_sheets"`
	MarketRentSheet string   `yaml:"market_rent_sheet" mapstructure:"market_rent_sheet"`
}

// GeocodeConfig configures the Nominatim client.
type GeocodeConfig struct {
	BaseURL       string  `yaml:"base_url" mapstructure:"base_url"`
	UserAgent     string  `yaml:"user_agent" mapstructure:"user_agent"`
	RatePerSecond float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	CacheTTLHours int     `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
}

// OverpassConfig configures the Overpass client.
type OverpassConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// CompsConfig configures comparable selection.
type CompsConfig struct {
	Window int `yaml:"window" mapstructure:"window"`
	Report int `yaml:"report" mapstructure:"report"`
}

// POIConfig configures the coworking search radius schedule (meters).
type POIConfig struct {
	StartRadius int `yaml:"start_radius" mapstructure:"start_radius"`
	Step        int `yaml:"step" mapstructure:"step"`
	MaxRadius   int `yaml:"max_radius" mapstructure:"max_radius"`
	Target      int `yaml:"target" mapstructure:"target"`
}

// TemplateConfig locates the pricing template and the output directory.
type TemplateConfig struct {
	Path   string `yaml:"path" mapstructure:"path"`
	OutDir string `yaml:"out_dir" mapstructure:"out_dir"`
}

// FinmodelConfig configures financial model extraction.
type FinmodelConfig struct {
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
}

// StoreConfig configures run persistence.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("PRICING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("dataset.path", "Global Pricing.xlsx")
	v.SetDefault("dataset.region_sheets", []string{"USA", "Canada"})
	v.SetDefault("dataset.market_rent_sheet", "Market Rent")
	v.SetDefault("geocode.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocode.user_agent", "pricing-cli")
	v.SetDefault("geocode.rate_per_second", 1.0)
	v.SetDefault("geocode.cache_ttl_hours", 24)
	v.SetDefault("overpass.base_url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("overpass.timeout_secs", 60)
	v.SetDefault("comps.window", 5)
	v.SetDefault("comps.report", 2)
	v.SetDefault("poi.start_radius", 10000)
	v.SetDefault("poi.step", 10000)
	v.SetDefault("poi.max_radius", 50000)
	v.SetDefault("poi.target", 2)
	v.SetDefault("rates.default_rate", 3.0)
	v.SetDefault("rates.office_size", 1000)
	v.SetDefault("rates.ceiling", 15000)
	v.SetDefault("template.path", "Pricing Template 2025.xlsx")
	v.SetDefault("finmodel.pdftotext_path", "pdftotext")
	v.SetDefault("store.path", "pricing-runs.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

	// Viper lowercases map keys during unmarshalling; fold the rate table
	// keys the same way the estimator looks them up so config assertions
	// and direct table reads agree.
	if len(cfg.Rates.Table) > 0 {
		table := make(map[string]float64, len(cfg.Rates.Table))
		for city, rate := range cfg.Rates.Table {
			table[rates.NormalizeCity(city)] = rate
		}
		cfg.Rates.Table = table
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
