package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Log         LogConfig
	Paths       PathsConfig
	Years       []int `validate:"required,min=1,dive,gte=2013,lte=2018"`
	Database    DatabaseConfig
	Parquet     ParquetConfig
	Web         WebConfig
	AcrossYears AcrossYearsConfig
	Storage     StorageConfig
	Serve       ServeConfig
	Metrics     MetricsConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `validate:"oneof=debug info warn warning error fatal"`
	Format string `validate:"oneof=json console"`
	Output string // stdout, stderr, or file path
}

// PathsConfig holds the location of the per-year input files
type PathsConfig struct {
	// DataDir contains one directory per year holding companies.csv, aop.csv and individuals.csv
	DataDir string `validate:"required"`
}

// DatabaseConfig holds SQLite settings
type DatabaseConfig struct {
	Path      string `validate:"required"`
	Year      int    `validate:"gte=2013,lte=2018"`
	BatchSize int    `validate:"gt=0"`
	LogLevel  string // silent, error, warn, info
}

// ParquetConfig holds columnar output settings
type ParquetConfig struct {
	Compression             string `validate:"oneof=snappy gzip zstd uncompressed"`
	ConsolidatedCompression string `validate:"oneof=snappy gzip zstd uncompressed"`
	RowGroupSize            int    `validate:"gt=0"`
	SortByID                bool
	ConsolidatedFile        string
}

// WebConfig holds settings of the static site JSON exporter
type WebConfig struct {
	OutputDir string `validate:"required"`
	TopLimit  int    `validate:"gt=0"` // candidates fetched per export, split evenly across categories
	ListSize  int    `validate:"gt=0"` // entries kept per list in the JSON document
}

// AcrossYearsConfig holds settings of the cross-year aggregation
type AcrossYearsConfig struct {
	TopN            int `validate:"gt=0"`
	LegacyYear      int
	LegacyNameMatch bool
}

// StorageConfig holds S3-compatible object storage settings used by publish
type StorageConfig struct {
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	Prefix       string
	UseSSL       bool
	UsePathStyle bool
}

// ServeConfig holds the local preview server settings
type ServeConfig struct {
	Addr string
}

// MetricsConfig holds run metrics settings
type MetricsConfig struct {
	// Textfile is the node-exporter textfile the run metrics are written to; empty disables it
	Textfile string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with TAX_ prefix (e.g., TAX_DATABASE_PATH)
// 2. taxpayers.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile loads configuration like Load, reading the given file instead of
// searching for taxpayers.toml when path is not empty
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("taxpayers")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("TAX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("parquet.sort_by_id", true)

	years, err := parseYears(v.GetString("years"), v.GetIntSlice("years"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Paths: PathsConfig{
			DataDir: v.GetString("paths.data_dir"),
		},
		Years: years,
		Database: DatabaseConfig{
			Path:      v.GetString("database.path"),
			Year:      v.GetInt("database.year"),
			BatchSize: v.GetInt("database.batch_size"),
			LogLevel:  v.GetString("database.log_level"),
		},
		Parquet: ParquetConfig{
			Compression:             strings.ToLower(v.GetString("parquet.compression")),
			ConsolidatedCompression: strings.ToLower(v.GetString("parquet.consolidated_compression")),
			RowGroupSize:            v.GetInt("parquet.row_group_size"),
			SortByID:                v.GetBool("parquet.sort_by_id"),
			ConsolidatedFile:        v.GetString("parquet.consolidated_file"),
		},
		Web: WebConfig{
			OutputDir: v.GetString("web.output_dir"),
			TopLimit:  v.GetInt("web.top_limit"),
			ListSize:  v.GetInt("web.list_size"),
		},
		AcrossYears: AcrossYearsConfig{
			TopN:            v.GetInt("across_years.top_n"),
			LegacyYear:      v.GetInt("across_years.legacy_year"),
			LegacyNameMatch: v.GetBool("across_years.legacy_name_match"),
		},
		Storage: StorageConfig{
			Endpoint:     v.GetString("storage.endpoint"),
			Region:       v.GetString("storage.region"),
			Bucket:       v.GetString("storage.bucket"),
			AccessKey:    v.GetString("storage.access_key"),
			SecretKey:    v.GetString("storage.secret_key"),
			Prefix:       v.GetString("storage.prefix"),
			UseSSL:       v.GetBool("storage.use_ssl"),
			UsePathStyle: v.GetBool("storage.use_path_style"),
		},
		Serve: ServeConfig{
			Addr: v.GetString("serve.addr"),
		},
		Metrics: MetricsConfig{
			Textfile: v.GetString("metrics.textfile"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// parseYears accepts either a TOML integer array or a comma separated env value
func parseYears(raw string, fromFile []int) ([]int, error) {
	if len(fromFile) > 0 {
		return fromFile, nil
	}
	raw = strings.Trim(strings.TrimSpace(raw), "[]")
	if raw == "" {
		return nil, nil
	}

	var years []int
	for _, part := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ' ' }) {
		y, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("years: invalid year %q", part)
		}
		years = append(years, y)
	}
	return years, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "taxpayers"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stderr"
	}
	if cfg.Paths.DataDir == "" {
		cfg.Paths.DataDir = filepath.Join("docs", "data")
	}
	if len(cfg.Years) == 0 {
		cfg.Years = []int{2013, 2014, 2015, 2016, 2017, 2018}
	}
	sort.Ints(cfg.Years)
	if cfg.Database.Path == "" {
		cfg.Database.Path = filepath.Join("data", "taxpayers.db")
	}
	if cfg.Database.Year == 0 {
		cfg.Database.Year = cfg.Years[len(cfg.Years)-1]
	}
	if cfg.Database.BatchSize == 0 {
		cfg.Database.BatchSize = 1000
	}
	if cfg.Database.LogLevel == "" {
		cfg.Database.LogLevel = "warn"
	}
	if cfg.Parquet.Compression == "" {
		cfg.Parquet.Compression = "gzip"
	}
	if cfg.Parquet.ConsolidatedCompression == "" {
		cfg.Parquet.ConsolidatedCompression = "zstd"
	}
	if cfg.Parquet.RowGroupSize == 0 {
		cfg.Parquet.RowGroupSize = 5000
	}
	if cfg.Parquet.ConsolidatedFile == "" {
		cfg.Parquet.ConsolidatedFile = "all.parquet"
	}
	if cfg.Web.OutputDir == "" {
		cfg.Web.OutputDir = cfg.Paths.DataDir
	}
	if cfg.Web.TopLimit == 0 {
		cfg.Web.TopLimit = 1000
	}
	if cfg.Web.ListSize == 0 {
		cfg.Web.ListSize = 100
	}
	if cfg.AcrossYears.TopN == 0 {
		cfg.AcrossYears.TopN = 100
	}
	if cfg.AcrossYears.LegacyYear == 0 {
		cfg.AcrossYears.LegacyYear = 2013
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Serve.Addr == "" {
		cfg.Serve.Addr = "127.0.0.1:8000"
	}
}

var validate = validator.New()

// validate performs validation on the configuration
func (c *Config) validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if !c.HasYear(c.Database.Year) {
		return fmt.Errorf("database.year %d is not one of the configured years %v", c.Database.Year, c.Years)
	}

	if c.App.Env == "production" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be 'json' in production")
	}

	return nil
}

// HasYear reports whether a year is part of the configured year set
func (c *Config) HasYear(year int) bool {
	for _, y := range c.Years {
		if y == year {
			return true
		}
	}
	return false
}

// PrimaryYear is the latest configured year, used for the single-year web exports
func (c *Config) PrimaryYear() int {
	return c.Years[len(c.Years)-1]
}

// YearDir returns the directory holding one year's input and Parquet files
func (p PathsConfig) YearDir(year int) string {
	return filepath.Join(p.DataDir, strconv.Itoa(year))
}

// IsConfigured returns true when enough settings exist to reach a bucket
func (s StorageConfig) IsConfigured() bool {
	return s.Bucket != "" && s.AccessKey != "" && s.SecretKey != ""
}
