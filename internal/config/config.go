package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/phishing-detector/")
	v.AddConfigPath("$HOME/.phishing-detector")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix("PHISHING_DETECTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Normalization defaults
	v.SetDefault("normalizer.language", "english")
	v.SetDefault("normalizer.remove_stopwords", true)

	// Vocabulary defaults
	v.SetDefault("vocabulary.max_terms", 3000)
	v.SetDefault("vocabulary.ngram_min", 1)
	v.SetDefault("vocabulary.ngram_max", 2)
	v.SetDefault("vocabulary.min_doc_freq", 2)
	v.SetDefault("vocabulary.max_doc_ratio", 0.8)

	// Training defaults
	v.SetDefault("training.learning_rate", 0.1)
	v.SetDefault("training.lambda", 0.01)
	v.SetDefault("training.max_iterations", 2000)
	v.SetDefault("training.tolerance", 1e-6)
	v.SetDefault("training.class_balanced", true)
	v.SetDefault("training.test_fraction", 0.2)
	v.SetDefault("training.cv_folds", 5)
	v.SetDefault("training.min_accuracy", 0.9)
	v.SetDefault("training.min_recall", 0.9)
	v.SetDefault("training.seed", 42)

	// Classification defaults
	v.SetDefault("classifier.threshold", 0.5)
	v.SetDefault("classifier.top_indicators", 5)
	v.SetDefault("classifier.noise_floor", 0.01)
	v.SetDefault("classifier.risk_low_ceiling", 0.3)
	v.SetDefault("classifier.risk_high_floor", 0.7)
	v.SetDefault("classifier.max_body_size", 65536)
	v.SetDefault("classifier.urgency_words", []string{})
	v.SetDefault("classifier.financial_words", []string{})
	v.SetDefault("classifier.trusted_domains", []string{})

	// Artifact store defaults
	v.SetDefault("artifacts.store_type", "file")
	v.SetDefault("artifacts.dir", "./artifacts")
	v.SetDefault("artifacts.sqlite_path", "/data/phishing_artifacts.db")
	v.SetDefault("artifacts.version", "latest")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_frequency", "1h")
	v.SetDefault("cache.sqlite_path", "/data/phishing_cache.db")
	v.SetDefault("cache.mysql_dsn", "user:password@tcp(localhost:3306)/phishing_detector?parseTime=true")

	// Server defaults
	v.SetDefault("server.filter_type", "smtp")
	v.SetDefault("server.listen_address", "0.0.0.0:10025")
	v.SetDefault("server.block_phishing", false)
	v.SetDefault("server.headers.verdict", "X-Phishing-Status")
	v.SetDefault("server.headers.score", "X-Phishing-Score")
	v.SetDefault("server.headers.reason", "X-Phishing-Reason")
	v.SetDefault("server.relay.address", "127.0.0.1")
	v.SetDefault("server.relay.port", 10026)
	v.SetDefault("server.relay.enabled", true)
	v.SetDefault("server.subject_prefix", "")
	v.SetDefault("server.modify_subject", false)

	// CLI defaults
	v.SetDefault("cli.verbose", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetInt64 gets a 64-bit integer value from the configuration
func (c *Config) GetInt64(key string) int64 {
	return c.v.GetInt64(key)
}

// GetFloat64 gets a float value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	d := c.v.GetDuration(key)
	if d == 0 && c.v.GetString(key) != "0" && c.v.GetString(key) != "0s" {
		return 0, fmt.Errorf("invalid duration for key %s: %s", key, c.v.GetString(key))
	}
	return d, nil
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
