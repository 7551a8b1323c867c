package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"port"`
	DatabaseDSN string `mapstructure:"database_dsn"`
	JWTSecret   string `mapstructure:"jwt_secret"`

	Domain   string `mapstructure:"domain"`
	BaseURL  string `mapstructure:"base_url"`
	MediaDir string `mapstructure:"media_dir"`
	Timezone string `mapstructure:"timezone"`

	AllowedOrigins []string `mapstructure:"allowed_origins"`

	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUsername string `mapstructure:"smtp_username"`
	SMTPPassword string `mapstructure:"smtp_password"`
	MailFrom     string `mapstructure:"mail_from"`

	// PasswordResetURL is the client page that receives the reset token,
	// e.g. https://app.example.com/reset-password
	PasswordResetURL string `mapstructure:"password_reset_url"`
}

// Current holds the loaded configuration for the process.
var Current *Config

// Load reads configuration from the environment and an optional config.yaml.
// Environment variables win over file values.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	// Unmarshal only sees keys viper knows about, so every key is bound to
	// its environment variable explicitly.
	for _, key := range []string{
		"port", "database_dsn", "jwt_secret", "domain", "base_url", "media_dir",
		"timezone", "allowed_origins", "smtp_host", "smtp_port", "smtp_username",
		"smtp_password", "mail_from", "password_reset_url",
	} {
		_ = v.BindEnv(key, strings.ToUpper(key))
	}

	v.SetDefault("port", "3000")
	v.SetDefault("media_dir", "./media")
	v.SetDefault("timezone", "Asia/Jakarta")
	v.SetDefault("allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("smtp_port", 587)
	v.SetDefault("mail_from", "noreply@matchreel.app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.DatabaseDSN == "" {
		return nil, fmt.Errorf("DATABASE_DSN is not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	Current = &cfg
	return &cfg, nil
}
