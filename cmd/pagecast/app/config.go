package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/pagecast/pkg/errors"
)

// Defaults applied when nothing else sets a value.
const (
	DefaultRegistrations = "pagecast.yaml"
	DefaultTimeout       = 30 * time.Second
)

// Config holds the application configuration loaded from config files,
// environment variables and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Download configuration
	Registrations string
	Policy        string
	Timeout       time.Duration
	BatchLimit    int

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
//  1. Command-line flags (applied later by UpdateFromFlags)
//  2. Environment variables (PAGECAST_*)
//  3. .env files
//  4. Config file (--config, ./.pagecast.yaml or ~/.pagecast.yaml)
//  5. Defaults
func LoadConfig() (*Config, error) {
	return loadConfig(viper.New(), os.Getenv("PAGECAST_CONFIG"))
}

func loadConfig(v *viper.Viper, configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v.SetEnvPrefix("PAGECAST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("registrations", DefaultRegistrations)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("batch_limit", 0)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigType("yaml")
		v.SetConfigName(".pagecast")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing default config file is fine; an explicit one must exist.
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errors.NewConfigError("config", "reading config file", err)
		}
	}

	return &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		Registrations: v.GetString("registrations"),
		Policy:        v.GetString("policy"),
		Timeout:       v.GetDuration("timeout"),
		BatchLimit:    v.GetInt("batch_limit"),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", ""),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}, nil
}

// Flags are the persistent flag values parsed by cobra.
type Flags struct {
	Verbose       bool
	Quiet         bool
	NoColor       bool
	Format        string
	LogLevel      string
	Registrations string
	Policy        string
	Timeout       time.Duration
}

// UpdateFromFlags applies parsed flag values. Only flags the user set
// override the loaded configuration.
func (c *Config) UpdateFromFlags(f Flags, changed func(name string) bool) {
	c.Verbose = c.Verbose || f.Verbose
	c.Quiet = c.Quiet || f.Quiet
	c.NoColor = c.NoColor || f.NoColor
	if f.Format != "" {
		c.Format = f.Format
	}
	if f.LogLevel != "" {
		c.LogLevel = f.LogLevel
	}
	if changed("registrations") {
		c.Registrations = f.Registrations
	}
	if changed("policy") {
		c.Policy = f.Policy
	}
	if changed("timeout") {
		c.Timeout = f.Timeout
	}
}

// loadEnvFiles loads environment variables from .env files. .env.local
// does not override values .env already set.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
