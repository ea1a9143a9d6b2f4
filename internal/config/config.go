package config

import (
	yamlenv "github.com/ifuryst/go-yaml-env"

	"github.com/vitrinalab/vitrina/pkg/logger"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Logger     logger.Config    `yaml:"logger"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Auth       AuthConfig       `yaml:"auth"`
	Dispatcher DispatcherConfig `yaml:"dispatcher"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Media      MediaConfig      `yaml:"media"`
	Email      EmailConfig      `yaml:"email"`
}

type ServerConfig struct {
	Port     int    `yaml:"port"`
	Host     string `yaml:"host"`
	Mode     string `yaml:"mode"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
	TimeZone string `yaml:"timezone"`
}

type OpenAIConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	TextModel  string `yaml:"text_model"`
	ImageModel string `yaml:"image_model"`
}

type AuthConfig struct {
	JWTSecret       string `yaml:"jwt_secret"`
	TokenTTL        string `yaml:"token_ttl"`
	AdminTOTPSecret string `yaml:"admin_totp_secret"`
	BootstrapAdmin  string `yaml:"bootstrap_admin"`
}

type DispatcherConfig struct {
	WebhookURL     string `yaml:"webhook_url"`
	CallbackSecret string `yaml:"callback_secret"`
	Timeout        string `yaml:"timeout"`
}

type SchedulerConfig struct {
	DispatchInterval string `yaml:"dispatch_interval"`
	Enabled          bool   `yaml:"enabled"`
}

type MediaConfig struct {
	MaxEdgePixels int `yaml:"max_edge_pixels"`
}

type EmailConfig struct {
	ResendAPIKey string `yaml:"resend_api_key"`
	FromAddress  string `yaml:"from_address"`
	FromName     string `yaml:"from_name"`
}

func LoadConfig(configPath string) (*Config, error) {
	cfg, err := yamlenv.LoadConfig[Config](configPath)
	if err != nil {
		return nil, err
	}

	// Set default values
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5620
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "debug"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.TimeZone == "" {
		cfg.Database.TimeZone = "UTC"
	}
	if cfg.OpenAI.TextModel == "" {
		cfg.OpenAI.TextModel = "gpt-4o-mini"
	}
	if cfg.OpenAI.ImageModel == "" {
		cfg.OpenAI.ImageModel = "gpt-image-1"
	}
	if cfg.Auth.TokenTTL == "" {
		cfg.Auth.TokenTTL = "24h"
	}
	if cfg.Dispatcher.Timeout == "" {
		cfg.Dispatcher.Timeout = "30s"
	}
	if cfg.Scheduler.DispatchInterval == "" {
		cfg.Scheduler.DispatchInterval = "1m"
	}
	if cfg.Media.MaxEdgePixels == 0 {
		cfg.Media.MaxEdgePixels = 2048
	}

	return cfg, nil
}
