package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Extract  ExtractConfig  `yaml:"extract"`
	LLM      LLMConfig      `yaml:"llm"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Storage  StorageConfig  `yaml:"storage"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string        `yaml:"dsn"`
	MaxConns         int32         `yaml:"max_conns"`
	MinConns         int32         `yaml:"min_conns"`
	MaxConnLifetime  time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime  time.Duration `yaml:"max_conn_idle_time"`
	DialTimeout      time.Duration `yaml:"dial_timeout"`
	StatementTimeout time.Duration `yaml:"statement_timeout"`
}

// ExtractConfig holds text-extraction configuration
type ExtractConfig struct {
	Pdftotext     string `yaml:"pdftotext"`
	Tesseract     string `yaml:"tesseract"`
	TesseractLang string `yaml:"tesseract_lang"`
	TessdataDir   string `yaml:"tessdata_dir"`
	PSM           int    `yaml:"psm"`
	OEM           int    `yaml:"oem"`
}

// LLMConfig holds analysis-collaborator configuration
type LLMConfig struct {
	APIKey       string        `yaml:"api_key"`
	BaseURL      string        `yaml:"base_url"`
	Model        string        `yaml:"model"`
	Temperature  float32       `yaml:"temperature"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// PipelineConfig holds job-processing configuration
type PipelineConfig struct {
	Workers      int           `yaml:"workers"`
	QueueSize    int           `yaml:"queue_size"`
	JobTimeout   time.Duration `yaml:"job_timeout"`
	FailFast     bool          `yaml:"fail_fast"`
	InboxDir     string        `yaml:"inbox_dir"`
	ArchiveDir   string        `yaml:"archive_dir"` // empty: <inbox_dir>/archive
	PollInterval time.Duration `yaml:"poll_interval"`
}

// StorageConfig holds raw-file storage configuration
type StorageConfig struct {
	FileStoreDir string `yaml:"file_store_dir"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Extract: ExtractConfig{
			Pdftotext:     getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "eng"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			PSM:           getEnvAsInt("TESSERACT_PSM", 0),
			OEM:           getEnvAsInt("TESSERACT_OEM", 0),
		},
		LLM: LLMConfig{
			APIKey:       getEnv("GEMINI_API_KEY", ""),
			BaseURL:      getEnv("GEMINI_BASE_URL", ""),
			Model:        getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			Temperature:  getEnvAsFloat32("GEMINI_TEMPERATURE", 0.1),
			Timeout:      getEnvAsDuration("GEMINI_TIMEOUT", 45*time.Second),
			MaxRetries:   getEnvAsInt("GEMINI_MAX_RETRIES", 1),
			RetryBackoff: getEnvAsDuration("GEMINI_RETRY_BACKOFF", 2*time.Second),
		},
		Pipeline: PipelineConfig{
			Workers:      getEnvAsInt("PIPELINE_WORKERS", 4),
			QueueSize:    getEnvAsInt("PIPELINE_QUEUE_SIZE", 256),
			JobTimeout:   getEnvAsDuration("PIPELINE_JOB_TIMEOUT", 3*time.Minute),
			FailFast:     getEnv("PIPELINE_FAIL_FAST", "") == "true",
			InboxDir:     getEnv("INBOX_DIR", "./inbox"),
			ArchiveDir:   getEnv("INBOX_ARCHIVE_DIR", ""),
			PollInterval: getEnvAsDuration("INBOX_POLL_INTERVAL", 10*time.Second),
		},
		Storage: StorageConfig{
			FileStoreDir: getEnv("FILE_STORE_DIR", "./files"),
		},
	}
}

// ApplyFile overlays values from a YAML config file onto c. Zero values in the
// file leave the corresponding env/default values untouched.
func (c *Config) ApplyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var overlay Config
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	mergeConfig(c, &overlay)
	return nil
}

func mergeConfig(dst, src *Config) {
	mergeStr(&dst.Database.DSN, src.Database.DSN)
	mergeInt32(&dst.Database.MaxConns, src.Database.MaxConns)
	mergeInt32(&dst.Database.MinConns, src.Database.MinConns)
	mergeDur(&dst.Database.MaxConnLifetime, src.Database.MaxConnLifetime)
	mergeDur(&dst.Database.MaxConnIdleTime, src.Database.MaxConnIdleTime)
	mergeDur(&dst.Database.DialTimeout, src.Database.DialTimeout)
	mergeDur(&dst.Database.StatementTimeout, src.Database.StatementTimeout)

	mergeStr(&dst.Extract.Pdftotext, src.Extract.Pdftotext)
	mergeStr(&dst.Extract.Tesseract, src.Extract.Tesseract)
	mergeStr(&dst.Extract.TesseractLang, src.Extract.TesseractLang)
	mergeStr(&dst.Extract.TessdataDir, src.Extract.TessdataDir)
	mergeInt(&dst.Extract.PSM, src.Extract.PSM)
	mergeInt(&dst.Extract.OEM, src.Extract.OEM)

	mergeStr(&dst.LLM.APIKey, src.LLM.APIKey)
	mergeStr(&dst.LLM.BaseURL, src.LLM.BaseURL)
	mergeStr(&dst.LLM.Model, src.LLM.Model)
	if src.LLM.Temperature != 0 {
		dst.LLM.Temperature = src.LLM.Temperature
	}
	mergeDur(&dst.LLM.Timeout, src.LLM.Timeout)
	mergeInt(&dst.LLM.MaxRetries, src.LLM.MaxRetries)
	mergeDur(&dst.LLM.RetryBackoff, src.LLM.RetryBackoff)

	mergeInt(&dst.Pipeline.Workers, src.Pipeline.Workers)
	mergeInt(&dst.Pipeline.QueueSize, src.Pipeline.QueueSize)
	mergeDur(&dst.Pipeline.JobTimeout, src.Pipeline.JobTimeout)
	if src.Pipeline.FailFast {
		dst.Pipeline.FailFast = true
	}
	mergeStr(&dst.Pipeline.InboxDir, src.Pipeline.InboxDir)
	mergeStr(&dst.Pipeline.ArchiveDir, src.Pipeline.ArchiveDir)
	mergeDur(&dst.Pipeline.PollInterval, src.Pipeline.PollInterval)

	mergeStr(&dst.Storage.FileStoreDir, src.Storage.FileStoreDir)
}

func mergeStr(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

func mergeInt(dst *int, src int) {
	if src != 0 {
		*dst = src
	}
}

func mergeInt32(dst *int32, src int32) {
	if src != 0 {
		*dst = src
	}
}

func mergeDur(dst *time.Duration, src time.Duration) {
	if src != 0 {
		*dst = src
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration for the daemon.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "GEMINI_API_KEY is required", ErrInvalidInput)
	}
	if c.Pipeline.InboxDir == "" {
		return NewAppError("CONFIG_ERROR", "INBOX_DIR is required", ErrInvalidInput)
	}
	return nil
}
