package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	Secret     string        `mapstructure:"secret"`
	PingPeriod time.Duration `mapstructure:"ping_period"`

	// External collaborators.
	CredentialEndpoint  string `mapstructure:"credential_endpoint"`
	ReplicationEndpoint string `mapstructure:"replication_endpoint"`
	Judge0URL           string `mapstructure:"judge0_url"`
	Judge0Key           string `mapstructure:"judge0_key"`
	Judge0Host          string `mapstructure:"judge0_host"`

	// RedisAddr enables the redis job store when set.
	RedisAddr string `mapstructure:"redis_addr"`

	// E2EECapable reflects whether this runtime can encrypt media frames.
	E2EECapable bool `mapstructure:"e2ee_capable"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("secret", "huddle-dev-secret")
	v.SetDefault("credential_endpoint", "http://localhost:5000/api/connection-details")
	v.SetDefault("replication_endpoint", "ws://localhost:1234/replicate")
	v.SetDefault("judge0_url", "https://judge0-ce.p.rapidapi.com")
	v.SetDefault("judge0_host", "judge0-ce.p.rapidapi.com")
	v.SetDefault("e2ee_capable", true)

	v.SetEnvPrefix("huddle")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	fmt.Printf("🧩 Mode: %s | Port: %d\n", cfg.Mode, cfg.Port)
	return &cfg, nil
}
