package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultRapidAPIHost = "social-download-all-in-one.p.rapidapi.com"
	defaultGeminiModel  = "gemini-3-flash-preview"
	defaultFilePrefix   = "linkgrab_"
)

// Config holds all application configuration
type Config struct {
	// Primary resolver
	RapidAPIKey      string
	RapidAPIHost     string
	ResolverEndpoint string

	// Generative fallback
	GeminiAPIKey string
	GeminiModel  string

	// Downloads
	OutputDir      string
	FilePrefix     string
	RequestTimeout time.Duration

	// Logging
	LogLevel string
	LogFile  string
}

// Load loads configuration from environment variables and a .env file in
// the working directory
func Load() (*Config, error) {
	return load(viper.New(), ".")
}

func load(v *viper.Viper, configPath string) (*Config, error) {
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = v.ReadInConfig()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	v.SetDefault("RAPIDAPI_HOST", defaultRapidAPIHost)
	v.SetDefault("GEMINI_MODEL", defaultGeminiModel)
	v.SetDefault("OUTPUT_DIR", filepath.Join(homeDir, "Downloads", "linkgrab"))
	v.SetDefault("FILE_PREFIX", defaultFilePrefix)
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", filepath.Join(homeDir, ".local", "state", "linkgrab", "linkgrab.log"))

	host := v.GetString("RAPIDAPI_HOST")
	endpoint := v.GetString("RESOLVER_ENDPOINT")
	if endpoint == "" {
		endpoint = "https://" + host + "/v1/social/autolink"
	}

	// API_KEY is accepted as an alias for the Gemini key
	geminiKey := v.GetString("GEMINI_API_KEY")
	if geminiKey == "" {
		geminiKey = v.GetString("API_KEY")
	}

	outputDir, err := expandPath(v.GetString("OUTPUT_DIR"), homeDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve OUTPUT_DIR: %w", err)
	}

	cfg := &Config{
		RapidAPIKey:      v.GetString("RAPIDAPI_KEY"),
		RapidAPIHost:     host,
		ResolverEndpoint: endpoint,

		GeminiAPIKey: geminiKey,
		GeminiModel:  v.GetString("GEMINI_MODEL"),

		OutputDir:      outputDir,
		FilePrefix:     v.GetString("FILE_PREFIX"),
		RequestTimeout: v.GetDuration("REQUEST_TIMEOUT"),

		LogLevel: v.GetString("LOG_LEVEL"),
		LogFile:  v.GetString("LOG_FILE"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.ResolverEndpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("RESOLVER_ENDPOINT must be an absolute http(s) URL, got %q", c.ResolverEndpoint)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	return nil
}

// HasPrimaryResolver reports whether the RapidAPI credentials are present
func (c *Config) HasPrimaryResolver() bool {
	return c.RapidAPIKey != ""
}

func expandPath(p, homeDir string) (string, error) {
	if p == "~" {
		return homeDir, nil
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(homeDir, p[2:]), nil
	}
	return filepath.Abs(p)
}
