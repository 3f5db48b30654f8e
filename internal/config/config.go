package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"

	ReconnectNone = "none"
)

var (
	ErrUnknownStore           = errors.New("unknown session store")
	ErrUnknownReconnectPolicy = errors.New("unknown reconnect policy")
	ErrEmptyURL               = errors.New("server url is empty")
)

type Config struct {
	LogLevel         string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	ServerURL        string        `yaml:"server-url" env:"SERVER_URL" env-default:"http://localhost:8000"`
	WSServerURL      string        `yaml:"ws-server-url" env:"WS_SERVER_URL" env-default:"ws://localhost:8000"`
	PageURL          string        `yaml:"page-url" env:"PAGE_URL" env-default:"http://localhost:3000"`
	RequestTimeout   time.Duration `yaml:"request-timeout" env-default:"10s"`
	HandshakeTimeout time.Duration `yaml:"handshake-timeout" env-default:"10s"`
	MoveTimeout      time.Duration `yaml:"move-timeout" env-default:"10s"`
	ReconnectPolicy  string        `yaml:"reconnect-policy" env-default:"none"`
	SessionStore     string        `yaml:"session-store" env:"SESSION_STORE" env-default:"memory"`
	SessionTTL       time.Duration `yaml:"session-ttl" env-default:"24h"`
	Redis            Redis         `yaml:"redis"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	if err := config.Validate(); err != nil {
		panic(fmt.Errorf("invalid config: %w", err))
	}

	return config
}

// LoadEnv - load configuration from environment only, used when there is no config file.
func LoadEnv() (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadEnv(config); err != nil {
		return nil, fmt.Errorf("unable to read environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

func (that *Config) Validate() error {
	if that.ServerURL == "" || that.WSServerURL == "" {
		return ErrEmptyURL
	}

	switch that.SessionStore {
	case StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownStore, that.SessionStore)
	}

	if that.ReconnectPolicy != ReconnectNone {
		return fmt.Errorf("%w: %s", ErrUnknownReconnectPolicy, that.ReconnectPolicy)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
