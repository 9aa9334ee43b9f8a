// Package config provides centralized configuration management for all
// pipeline components. It handles loading from multiple sources (JSON file,
// environment variables), validation, and typed configuration structures for
// the validator, scorer, retrain decisioner, and storage backends.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"log/slog"

	"github.com/shopspring/decimal"
)

// AppConfig represents the complete application configuration
type AppConfig struct {
	// Application metadata
	AppName    string `json:"app_name" env:"FG_APP_NAME"`
	Version    string `json:"version" env:"FG_VERSION"`
	ConfigPath string `json:"-" env:"FG_CONFIG_PATH"`

	// Dataset configuration
	Data DataConfig `json:"data"`

	// Business rule configuration
	Rules RulesConfig `json:"rules"`

	// Rolling metric configuration
	Scoring ScoringConfig `json:"scoring"`

	// Retrain decision configuration
	Retrain RetrainConfig `json:"retrain"`

	// Model identity configuration
	Model ModelConfig `json:"model"`

	// Storage configuration
	Storage StorageConfig `json:"storage"`

	// Logging configuration
	Logging LoggingConfig `json:"logging"`

	// Error handling configuration
	ErrorHandling ErrorHandlingConfig `json:"error_handling"`
}

// DataConfig describes the dataset schema the validator enforces
type DataConfig struct {
	Path         string   `json:"path" env:"FG_DATA_PATH"`                  // Dataset CSV path
	DateColumn   string   `json:"date_column" env:"FG_DATE_COLUMN"`         // Date column name
	TargetColumn string   `json:"target_column" env:"FG_TARGET_COLUMN"`     // Forecast target column name
	Regressors   []string `json:"regressors" env:"FG_REGRESSORS"`           // External regressor column names
	IsTraining   bool     `json:"is_training" env:"FG_IS_TRAINING"`         // Treat data as training data
	DateFormats  []string `json:"date_formats" env:"FG_DATE_FORMATS"`       // Accepted date layouts for CSV parsing
}

// RulesConfig carries the optional business-rule bounds, loaded as strings
// and parsed into exact decimals on demand.
type RulesConfig struct {
	Target     TargetRuleConfig            `json:"target"`
	Regressors map[string]RegressorRuleConfig `json:"regressors"`
}

// TargetRuleConfig bounds the target column
type TargetRuleConfig struct {
	AllowNegative *bool   `json:"allow_negative,omitempty"`
	MinValue      *string `json:"min_value,omitempty"`
	MaxValue      *string `json:"max_value,omitempty"`
}

// RegressorRuleConfig bounds one regressor column
type RegressorRuleConfig struct {
	MinValue *string `json:"min_value,omitempty"`
	MaxValue *string `json:"max_value,omitempty"`
}

// ScoringConfig configures the rolling accuracy metrics
type ScoringConfig struct {
	WindowSize  int `json:"window_size" env:"FG_WINDOW_SIZE"`   // Rolling window length in days
	Seasonality int `json:"seasonality" env:"FG_SEASONALITY"`   // Seasonal lag of the naive baseline
	Precision   int `json:"precision" env:"FG_PRECISION"`       // Decimal places for persisted metrics
}

// RetrainConfig configures the retrain decision
type RetrainConfig struct {
	MetricKey string  `json:"metric_key" env:"FG_RETRAIN_METRIC"`      // Metric inspected for the decision
	Threshold float64 `json:"threshold" env:"FG_RETRAIN_THRESHOLD"`    // Strictly-above triggers retraining
}

// ModelConfig identifies the forecaster under evaluation
type ModelConfig struct {
	Name       string `json:"name" env:"FG_MODEL_NAME"`           // Registered forecaster name
	Version    string `json:"version" env:"FG_MODEL_VERSION"`     // Model version recorded in history
	Preparator string `json:"preparator" env:"FG_PREPARATOR"`     // Registered preparator name
}

// StorageConfig configures artifact and history persistence
type StorageConfig struct {
	Type        string `json:"type" env:"FG_STORAGE_TYPE"`               // "file", "duckdb", "memory"
	Dir         string `json:"dir" env:"FG_STORAGE_DIR"`                 // Artifact directory for file storage
	DatabaseURL string `json:"database_url" env:"FG_DATABASE_URL"`       // DuckDB path for history storage
	FlagKey     string `json:"flag_key" env:"FG_FLAG_KEY"`               // Retrain flag artifact key
	ReportKey   string `json:"report_key" env:"FG_REPORT_KEY"`           // Validation report artifact key
	HistoryKey  string `json:"history_key" env:"FG_HISTORY_KEY"`         // Metrics history artifact key
}

// LoggingConfig configures structured logging
type LoggingConfig struct {
	Level      string `json:"level" env:"FG_LOG_LEVEL"`             // Log level: debug, info, warn, error
	Format     string `json:"format" env:"FG_LOG_FORMAT"`           // Log format: json, text
	Output     string `json:"output" env:"FG_LOG_OUTPUT"`           // Output: stdout, stderr, file
	FilePath   string `json:"file_path" env:"FG_LOG_FILE_PATH"`     // Log file path
	MaxSize    int    `json:"max_size" env:"FG_LOG_MAX_SIZE"`       // Maximum log file size in MB
	MaxBackups int    `json:"max_backups" env:"FG_LOG_MAX_BACKUPS"` // Maximum log file backups
	MaxAge     int    `json:"max_age" env:"FG_LOG_MAX_AGE"`         // Maximum log file age in days
	Compress   bool   `json:"compress" env:"FG_LOG_COMPRESS"`       // Compress rotated log files
}

// ErrorHandlingConfig configures retry policies for storage reads
type ErrorHandlingConfig struct {
	ReadRetryPolicy RetryPolicyConfig `json:"read_retry_policy"`
}

// RetryPolicyConfig configures retry behavior
type RetryPolicyConfig struct {
	MaxAttempts  int    `json:"max_attempts"`  // Maximum attempts including the first
	InitialDelay string `json:"initial_delay"` // Initial delay between retries
	MaxDelay     string `json:"max_delay"`     // Maximum delay between retries
}

// Manager handles configuration loading and validation
type Manager struct {
	config     *AppConfig
	configPath string
	logger     *slog.Logger
}

// NewManager creates a new configuration manager
func NewManager(configPath string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{configPath: configPath, logger: logger}
}

// Load loads configuration from multiple sources with priority order:
// 1. Environment variables (highest priority)
// 2. Configuration file
// 3. Default values (lowest priority)
func (m *Manager) Load(ctx context.Context) (*AppConfig, error) {
	config := DefaultConfig()

	if m.configPath != "" {
		if err := m.loadFromFile(config); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	m.loadFromEnv(config)

	if err := m.validateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	m.config = config
	m.logger.InfoContext(ctx, "configuration loaded",
		"config_path", m.configPath,
		"storage_type", config.Storage.Type,
		"model", config.Model.Name,
		"log_level", config.Logging.Level)

	return config, nil
}

// loadFromFile loads configuration from a JSON file
func (m *Manager) loadFromFile(config *AppConfig) error {
	if _, err := os.Stat(m.configPath); os.IsNotExist(err) {
		m.logger.Debug("config file does not exist, using defaults", "path", m.configPath)
		return nil
	}

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", m.configPath, err)
	}

	if err := json.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", m.configPath, err)
	}

	m.logger.Debug("loaded configuration from file", "path", m.configPath)
	return nil
}

// loadFromEnv loads configuration from environment variables
func (m *Manager) loadFromEnv(config *AppConfig) {
	if val := os.Getenv("FG_APP_NAME"); val != "" {
		config.AppName = val
	}
	if val := os.Getenv("FG_VERSION"); val != "" {
		config.Version = val
	}

	if val := os.Getenv("FG_DATA_PATH"); val != "" {
		config.Data.Path = val
	}
	if val := os.Getenv("FG_DATE_COLUMN"); val != "" {
		config.Data.DateColumn = val
	}
	if val := os.Getenv("FG_TARGET_COLUMN"); val != "" {
		config.Data.TargetColumn = val
	}
	if val := os.Getenv("FG_REGRESSORS"); val != "" {
		config.Data.Regressors = strings.Split(val, ",")
	}
	if val := os.Getenv("FG_IS_TRAINING"); val != "" {
		config.Data.IsTraining = val == "true"
	}

	if val := os.Getenv("FG_WINDOW_SIZE"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			config.Scoring.WindowSize = n
		}
	}
	if val := os.Getenv("FG_SEASONALITY"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			config.Scoring.Seasonality = n
		}
	}
	if val := os.Getenv("FG_PRECISION"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			config.Scoring.Precision = n
		}
	}

	if val := os.Getenv("FG_RETRAIN_METRIC"); val != "" {
		config.Retrain.MetricKey = val
	}
	if val := os.Getenv("FG_RETRAIN_THRESHOLD"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			config.Retrain.Threshold = f
		}
	}

	if val := os.Getenv("FG_MODEL_NAME"); val != "" {
		config.Model.Name = val
	}
	if val := os.Getenv("FG_MODEL_VERSION"); val != "" {
		config.Model.Version = val
	}
	if val := os.Getenv("FG_PREPARATOR"); val != "" {
		config.Model.Preparator = val
	}

	if val := os.Getenv("FG_STORAGE_TYPE"); val != "" {
		config.Storage.Type = val
	}
	if val := os.Getenv("FG_STORAGE_DIR"); val != "" {
		config.Storage.Dir = val
	}
	if val := os.Getenv("FG_DATABASE_URL"); val != "" {
		config.Storage.DatabaseURL = val
	}

	if val := os.Getenv("FG_LOG_LEVEL"); val != "" {
		config.Logging.Level = val
	}
	if val := os.Getenv("FG_LOG_FORMAT"); val != "" {
		config.Logging.Format = val
	}
	if val := os.Getenv("FG_LOG_OUTPUT"); val != "" {
		config.Logging.Output = val
	}
	if val := os.Getenv("FG_LOG_FILE_PATH"); val != "" {
		config.Logging.FilePath = val
	}

	m.logger.Debug("loaded configuration from environment variables")
}

// validateConfig validates the configuration for consistency and required fields
func (m *Manager) validateConfig(config *AppConfig) error {
	var errors []string

	if config.Data.DateColumn == "" {
		errors = append(errors, "data.date_column is required")
	}
	if config.Data.TargetColumn == "" {
		errors = append(errors, "data.target_column is required")
	}

	if config.Scoring.WindowSize <= 0 {
		errors = append(errors, "scoring.window_size must be greater than 0")
	}
	if config.Scoring.Seasonality <= 0 {
		errors = append(errors, "scoring.seasonality must be greater than 0")
	}
	if config.Scoring.Precision < 0 {
		errors = append(errors, "scoring.precision must not be negative")
	}

	if config.Retrain.MetricKey == "" {
		errors = append(errors, "retrain.metric_key is required")
	}
	if config.Retrain.Threshold <= 0 {
		errors = append(errors, "retrain.threshold must be greater than 0")
	}

	validStorageTypes := map[string]bool{"file": true, "duckdb": true, "memory": true}
	if !validStorageTypes[config.Storage.Type] {
		errors = append(errors, "storage.type must be one of: file, duckdb, memory")
	}
	if config.Storage.Type == "file" && config.Storage.Dir == "" {
		errors = append(errors, "storage.dir is required for file storage")
	}
	if config.Storage.Type == "duckdb" && config.Storage.DatabaseURL == "" {
		errors = append(errors, "storage.database_url is required for DuckDB storage")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[config.Logging.Level] {
		errors = append(errors, "logging.level must be one of: debug, info, warn, error")
	}
	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[config.Logging.Format] {
		errors = append(errors, "logging.format must be one of: json, text")
	}

	if _, err := config.Rules.Parse(); err != nil {
		errors = append(errors, fmt.Sprintf("rules: %v", err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// Get returns the current configuration
func (m *Manager) Get() *AppConfig {
	return m.config
}

// Save writes the current configuration to the config file
func (m *Manager) Save(ctx context.Context) error {
	if m.configPath == "" {
		return fmt.Errorf("no config path specified")
	}

	if err := os.MkdirAll(filepath.Dir(m.configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.logger.InfoContext(ctx, "configuration saved", "path", m.configPath)
	return nil
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *AppConfig {
	return &AppConfig{
		AppName: "forecast-guard",
		Version: "1.0.0",
		Data: DataConfig{
			Path:         "./data/consumption.csv",
			DateColumn:   "date",
			TargetColumn: "consumption",
			Regressors:   []string{"temperature"},
			IsTraining:   true,
			DateFormats:  []string{"2006-01-02", "2006-01-02 15:04:05", "2006-01-02T15:04:05Z07:00"},
		},
		Rules: RulesConfig{
			Regressors: make(map[string]RegressorRuleConfig),
		},
		Scoring: ScoringConfig{
			WindowSize:  60,
			Seasonality: 7,
			Precision:   4,
		},
		Retrain: RetrainConfig{
			MetricKey: "mase_window",
			Threshold: 0.95,
		},
		Model: ModelConfig{
			Name:       "seasonal_naive",
			Version:    "1.0.0",
			Preparator: "daily",
		},
		Storage: StorageConfig{
			Type:        "file",
			Dir:         "./data/artifacts",
			DatabaseURL: "./data/history.db",
			FlagKey:     "retrain_flag.json",
			ReportKey:   "validation_report.json",
			HistoryKey:  "metrics_history.jsonl",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			Output:     "stdout",
			FilePath:   "",
			MaxSize:    100, // 100MB
			MaxBackups: 5,
			MaxAge:     30, // 30 days
			Compress:   true,
		},
		ErrorHandling: ErrorHandlingConfig{
			ReadRetryPolicy: RetryPolicyConfig{
				MaxAttempts:  3,
				InitialDelay: "200ms",
				MaxDelay:     "5s",
			},
		},
	}
}

// String returns a string representation of the configuration
func (c *AppConfig) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

func parseDecimal(field, raw string) (*decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%s is not a valid decimal: %q", field, raw)
	}
	return &d, nil
}
