package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all run settings, populated from environment variables and
// optionally overridden by command-line flags.
type Config struct {
	NavDBPath       string
	StartTerminalID int64
	StartSet        bool

	OutputDir             string
	ExportReferenceTables bool
	ExportProfilePath     string
	ArchiveEnabled        bool
	ArchivePath           string
	KeepOutputDir         bool

	LogLevel        string
	LogFormat       string
	HTTPAddr        string
	ShutdownTimeout time.Duration

	// Optional Kafka sink; disabled when KafkaBrokers is empty.
	KafkaBrokers []string
	KafkaTopic   string

	// Optional archive upload; disabled when S3Bucket is empty.
	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3Prefix          string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	exportTables, err := parseBool("EXPORT_REFERENCE_TABLES", true)
	if err != nil {
		return nil, err
	}
	archiveEnabled, err := parseBool("ARCHIVE_ENABLED", true)
	if err != nil {
		return nil, err
	}
	keepOutput, err := parseBool("KEEP_OUTPUT_DIR", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		NavDBPath:             os.Getenv("NAVDB_PATH"),
		OutputDir:             sharedcfg.EnvOrDefault("OUTPUT_DIR", "Primary"),
		ExportReferenceTables: exportTables,
		ExportProfilePath:     os.Getenv("EXPORT_PROFILE"),
		ArchiveEnabled:        archiveEnabled,
		ArchivePath:           sharedcfg.EnvOrDefault("ARCHIVE_PATH", "Primary.zip"),
		KeepOutputDir:         keepOutput,
		LogLevel:              sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:             sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		HTTPAddr:              os.Getenv("HTTP_ADDR"),
		ShutdownTimeout:       shutdownTimeout,
		KafkaTopic:            sharedcfg.EnvOrDefault("KAFKA_TOPIC", "procedure-legs"),
		S3Bucket:              os.Getenv("S3_BUCKET"),
		S3Region:              sharedcfg.EnvOrDefault("S3_REGION", "us-east-1"),
		S3Endpoint:            os.Getenv("S3_ENDPOINT"),
		S3Prefix:              os.Getenv("S3_PREFIX"),
		S3AccessKeyID:         os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretAccessKey:     os.Getenv("S3_SECRET_ACCESS_KEY"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = sharedcfg.ParseBrokers(brokers)
	}

	if s := os.Getenv("START_TERMINAL_ID"); s != "" {
		if err := cfg.SetStartTerminalID(s); err != nil {
			return nil, err
		}
	}

	if cfg.OutputDir == "" {
		return nil, errors.New("OUTPUT_DIR must not be empty")
	}
	if cfg.ArchiveEnabled && cfg.ArchivePath == "" {
		return nil, errors.New("ARCHIVE_PATH is required when ARCHIVE_ENABLED is true")
	}
	if cfg.S3Bucket != "" && !cfg.ArchiveEnabled {
		return nil, errors.New("S3_BUCKET requires ARCHIVE_ENABLED")
	}
	if cfg.KafkaTopic == "" && len(cfg.KafkaBrokers) > 0 {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// SetStartTerminalID parses and stores the resumability cutoff.
func (c *Config) SetStartTerminalID(s string) error {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id < 0 {
		return fmt.Errorf("invalid START_TERMINAL_ID %q: must be a non-negative integer", s)
	}
	c.StartTerminalID = id
	c.StartSet = true
	return nil
}

// Validate checks the settings that may come from flags or prompts and so
// cannot be enforced by Load.
func (c *Config) Validate() error {
	if c.NavDBPath == "" {
		return errors.New("NAVDB_PATH is required")
	}
	if filepath.Ext(c.NavDBPath) != ".db3" {
		return fmt.Errorf("NAVDB_PATH %q is not a .db3 file", c.NavDBPath)
	}
	if !c.StartSet {
		return errors.New("START_TERMINAL_ID is required")
	}
	return nil
}

// KafkaEnabled reports whether procedures are also published to Kafka.
func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

// S3Enabled reports whether the archive is uploaded after packaging.
func (c *Config) S3Enabled() bool { return c.S3Bucket != "" }

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return v, nil
}
