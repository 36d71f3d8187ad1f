package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/lastmilefood/rescuesync/internal/auth"
	"github.com/lastmilefood/rescuesync/internal/transport"
	"github.com/lastmilefood/rescuesync/pkg/constants"
)

// Config holds the CLI configuration loaded from flags, environment
// variables and .env files. Deployment settings (Bulk API URI, record
// types) live in the config file read by internal/config.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Run control
	OutDir      string
	JobTimeout  time.Duration
	DryRun      bool
	StrictLinks bool
	AuthScheme  string // bearer, session or none

	// Logging configuration
	LogLevel    string // --log-level
	EnvLogLevel string // LOG_LEVEL
	LogFormat   string
	LogOutput   string
}

// envAuthScheme selects how the session token is sent (SF_AUTH_SCHEME).
const envAuthScheme = "sf_auth_scheme"

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (applied by UpdateFromFlags)
// 2. Environment variables
// 3. .env files
// 4. Defaults
func LoadConfig() (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	bindCredentials()

	viper.SetDefault("out_dir", ".")
	viper.SetDefault("job_timeout", constants.DefaultJobTimeout)
	viper.SetDefault(envAuthScheme, transport.SchemeBearer)

	return &Config{
		Verbose: viper.GetBool("verbose"),
		Quiet:   viper.GetBool("quiet"),
		NoColor: viper.GetBool("no_color") || os.Getenv("NO_COLOR") != "",
		Format:  viper.GetString("format"),

		ConfigFile: viper.GetString("rescuesync_config"),

		OutDir:     viper.GetString("out_dir"),
		JobTimeout: viper.GetDuration("job_timeout"),
		AuthScheme: viper.GetString(envAuthScheme),

		EnvLogLevel: os.Getenv("LOG_LEVEL"),
		LogFormat:   getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput:   getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}, nil
}

// UpdateFromFlags updates config values from parsed command flags.
// Flag values take precedence over env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = c.NoColor || noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		// godotenv.Load never overrides a variable already set, so the
		// higher-precedence file is loaded first.
		_ = godotenv.Load(envFile)
	}
}

// bindCredentials binds the CRM credential variables to Viper.
func bindCredentials() {
	for _, key := range []string{
		auth.EnvAccessToken,
		auth.EnvUsername,
		auth.EnvPassword,
		auth.EnvSecurityToken,
		auth.EnvClientID,
		auth.EnvClientSecret,
		auth.EnvLoginURL,
	} {
		_ = viper.BindEnv(key)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
