package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App    App    `mapstructure:"app"`
	Server Server `mapstructure:"server"`
	Gemini Gemini `mapstructure:"gemini"`
	API    API    `mapstructure:"api"`
	Cache  Cache  `mapstructure:"cache"`
	Search Search `mapstructure:"search"`
}

// App holds general application configuration
type App struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	DataDir  string `mapstructure:"data_dir"`
}

// Server holds HTTP server configuration
type Server struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AuthToken       string        `mapstructure:"auth_token"` // Empty disables auth entirely (insecure default)
	CORS            CORS          `mapstructure:"cors"`
}

// CORS holds the allow-list for cross-origin requests
type CORS struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Gemini holds the model collaborator configuration
type Gemini struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// API holds wire-contract configuration.
// Envelope selects which response convention is served:
// "workflow" ({event, data:{outputs, provider, meta}}) or
// "task" ({task_id, data:{status, outputs, elapsed_time, ...}}).
type API struct {
	Envelope string `mapstructure:"envelope"`
	Provider string `mapstructure:"provider"` // Provider string echoed in workflow envelopes
}

// Cache holds per-operation TTLs
type Cache struct {
	QuestionsTTL time.Duration `mapstructure:"questions_ttl"`
	MetadataTTL  time.Duration `mapstructure:"metadata_ttl"`
	AnswerTTL    time.Duration `mapstructure:"answer_ttl"`
	EEATTTL      time.Duration `mapstructure:"eeat_ttl"`
}

// Search holds search collaborator configuration
type Search struct {
	Provider   string `mapstructure:"provider"` // "duckduckgo" or "mock"
	MaxResults int    `mapstructure:"max_results"`
}

var globalConfig *Config

// Load loads the configuration from .env, config file, environment and defaults.
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".gemgate")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// Reset clears the cached configuration. Intended for tests.
func Reset() {
	globalConfig = nil
	viper.Reset()
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.data_dir", ".gemgate-cache")

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8888)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "120s")
	viper.SetDefault("server.shutdown_timeout", "10s")
	// Localhost-only unless operators configure their own origins.
	viper.SetDefault("server.cors.allowed_origins", []string{"http://localhost:3000", "http://127.0.0.1:3000"})

	viper.SetDefault("gemini.model", "gemini-2.5-flash")

	viper.SetDefault("api.envelope", "workflow")
	viper.SetDefault("api.provider", "gemini-2.5-flash")

	viper.SetDefault("cache.questions_ttl", "600s")
	viper.SetDefault("cache.metadata_ttl", "3600s")
	viper.SetDefault("cache.answer_ttl", "300s")
	viper.SetDefault("cache.eeat_ttl", "3600s")

	viper.SetDefault("search.provider", "duckduckgo")
	viper.SetDefault("search.max_results", 5)
}

// bindEnvironmentVariables binds environment variables, keeping the legacy
// names existing deployments already use.
func bindEnvironmentVariables() {
	bindEnvKeys("gemini.api_key", []string{"GEMINI_API_KEY", "GOOGLE_GEMINI_API_KEY", "GOOGLE_AI_API_KEY"})
	bindEnvKeys("gemini.model", []string{"GEMINI_MODEL"})
	bindEnvKeys("server.auth_token", []string{"GEMGATE_AUTH_TOKEN", "API_AUTH_TOKEN"})
	bindEnvKeys("server.port", []string{"PORT"})
	bindEnvKeys("api.envelope", []string{"GEMGATE_ENVELOPE"})
	bindEnvKeys("app.data_dir", []string{"GEMGATE_DATA_DIR"})
}

// bindEnvKeys binds a viper key to multiple environment variable names
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if err := viper.BindEnv(viperKey, envKey); err != nil {
			fmt.Printf("Warning: Failed to bind %s to %s: %v\n", viperKey, envKey, err)
		}
	}
}

// validateConfig checks for invalid combinations
func validateConfig(config *Config) error {
	switch config.API.Envelope {
	case "workflow", "task":
	default:
		return fmt.Errorf("api.envelope must be \"workflow\" or \"task\", got %q", config.API.Envelope)
	}

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in (0, 65535], got %d", config.Server.Port)
	}

	return nil
}

// Convenience accessors
func GetServer() Server { return Get().Server }
func GetGemini() Gemini { return Get().Gemini }
func GetCache() Cache   { return Get().Cache }
func GetAPI() API       { return Get().API }
