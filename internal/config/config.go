package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	FFmpeg   FFmpegConfig   `mapstructure:"ffmpeg"`
	Sampler  SamplerConfig  `mapstructure:"sampler"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
}

type ServerConfig struct {
	Host          string   `mapstructure:"host"`
	Port          int      `mapstructure:"port"`
	MaxUploadSize int64    `mapstructure:"max_upload_size"`
	Production    bool     `mapstructure:"production"`
	CorsOrigins   []string `mapstructure:"cors_origins"`
}

type StorageConfig struct {
	BasePath string `mapstructure:"base_path"`
}

type FFmpegConfig struct {
	Path        string `mapstructure:"path"`
	FFprobePath string `mapstructure:"ffprobe_path"`
}

type SamplerConfig struct {
	// TimeoutSeconds bounds the whole probe-and-capture pass for one upload.
	// A stalled decode fails the session instead of hanging it.
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

type AnalysisConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	Model          string `mapstructure:"model"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// If config path is provided, use it
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in default locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/clipviral/")
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".clipviral"))
	}

	// Read environment variables
	v.SetEnvPrefix("CLIPVIRAL")
	v.AutomaticEnv()

	// The Gemini key is conventionally passed as GEMINI_API_KEY. Its absence
	// is not a startup failure; the analysis call surfaces it.
	v.BindEnv("analysis.api_key", "CLIPVIRAL_ANALYSIS_API_KEY", "GEMINI_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Expand storage path
	if cfg.Storage.BasePath == "" {
		cfg.Storage.BasePath = "/var/clipviral"
	}
	cfg.Storage.BasePath = os.ExpandEnv(cfg.Storage.BasePath)

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_upload_size", 4294967296) // 4GB
	v.SetDefault("server.production", false)
	v.SetDefault("server.cors_origins", []string{"*"})

	// Storage defaults
	v.SetDefault("storage.base_path", "/var/clipviral")

	// FFmpeg defaults
	v.SetDefault("ffmpeg.path", "ffmpeg")
	v.SetDefault("ffmpeg.ffprobe_path", "ffprobe")

	// Sampler defaults
	v.SetDefault("sampler.timeout_seconds", 120)

	// Analysis defaults
	v.SetDefault("analysis.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("analysis.model", "gemini-3-flash-preview")
	v.SetDefault("analysis.timeout_seconds", 90)
}
