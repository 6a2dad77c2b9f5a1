// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the server reads from the environment. Command
// line flags in cmd/omara override the first few fields.
type Config struct {
	Addr      string `env:"OMARA_ADDR" envDefault:":8080"`
	DBPath    string `env:"OMARA_DB" envDefault:"omara.sqlite3"`
	Wardrobe  string `env:"OMARA_WARDROBE" envDefault:"wardrobe.json"`
	ImageDir  string `env:"OMARA_IMAGE_DIR" envDefault:"wardrobe_images"`
	UploadDir string `env:"OMARA_UPLOAD_DIR" envDefault:"uploads"`
	LogPath   string `env:"OMARA_LOG"`
	Owner     string `env:"OMARA_USER" envDefault:"Owner"`

	LLMProvider  string `env:"OMARA_LLM_PROVIDER" envDefault:"gemini"`
	GoogleAPIKey string `env:"GOOGLE_API_KEY"`
	GeminiModel  string `env:"OMARA_GEMINI_MODEL" envDefault:"gemini-2.5-flash"`

	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OMARA_OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	OpenAIModel   string `env:"OMARA_OPENAI_MODEL" envDefault:"gpt-4o"`

	RemoveBGURL    string `env:"OMARA_REMOVEBG_URL" envDefault:"https://api.remove.bg/v1.0/removebg"`
	RemoveBGAPIKey string `env:"REMOVEBG_API_KEY"`
	WeatherURL     string `env:"OMARA_WEATHER_URL" envDefault:"https://wttr.in"`

	HTTPTimeout time.Duration `env:"OMARA_HTTP_TIMEOUT" envDefault:"30s"`
	UploadTTL   time.Duration `env:"OMARA_UPLOAD_TTL" envDefault:"1h"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values env parsing cannot.
func (c Config) Validate() error {
	switch c.LLMProvider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("unknown OMARA_LLM_PROVIDER %q (want gemini or openai)", c.LLMProvider)
	}
	if c.Wardrobe == "" || c.ImageDir == "" || c.UploadDir == "" {
		return fmt.Errorf("wardrobe, image and upload paths must be set")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("OMARA_HTTP_TIMEOUT must be positive")
	}
	if c.UploadTTL <= 0 {
		return fmt.Errorf("OMARA_UPLOAD_TTL must be positive")
	}
	return nil
}
