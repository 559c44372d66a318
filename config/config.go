package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Environment string          `mapstructure:"environment" yaml:"environment"`
	Server      ServerConfig    `mapstructure:"server" yaml:"server"`
	Sync        SyncConfig      `mapstructure:"sync" yaml:"sync"`
	Token       TokenConfig     `mapstructure:"token" yaml:"token"`
	DevServer   DevServerConfig `mapstructure:"dev_server" yaml:"dev_server"`
}

type ServerConfig struct {
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type SyncConfig struct {
	Interval    time.Duration `mapstructure:"interval" yaml:"interval"`
	MatchWindow time.Duration `mapstructure:"match_window" yaml:"match_window"`
}

type TokenConfig struct {
	// Path of the durable token file. Empty means ~/.free-chat/token.json.
	Path string `mapstructure:"path" yaml:"path"`
}

type DevServerConfig struct {
	Port      int        `mapstructure:"port" yaml:"port"`
	JwtSecret string     `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	Expire_H  int        `mapstructure:"expire_h" yaml:"expire_h"`
	Users     []SeedUser `mapstructure:"users" yaml:"users"`
}

type SeedUser struct {
	Username    string `mapstructure:"username" yaml:"username"`
	Password    string `mapstructure:"password" yaml:"password"`
	DisplayName string `mapstructure:"display_name" yaml:"display_name"`
}

func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("server.base_url", "http://localhost:8080")
	viper.SetDefault("server.timeout", 10*time.Second)
	viper.SetDefault("sync.interval", 5*time.Second)
	viper.SetDefault("sync.match_window", 10*time.Second)
	viper.SetDefault("token.path", "")
	viper.SetDefault("dev_server.port", 8080)
	viper.SetDefault("dev_server.jwt_secret", "free-chat-dev-secret")
	viper.SetDefault("dev_server.expire_h", 24)
}

func LoadConfig() (*AppConfig, error) {
	var config AppConfig

	setDefaults()

	viper.SetConfigFile("config/config.yml")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("CHAT")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// The config file is optional; defaults plus env cover the common case.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, err
		}
	}
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// TokenPath resolves the durable token file location.
func (c *AppConfig) TokenPath() (string, error) {
	if c.Token.Path != "" {
		return c.Token.Path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".free-chat", "token.json"), nil
}
