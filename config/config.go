package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort      string        `env:"SERVER_PORT" envDefault:"8083"`
	EventServiceURL string        `env:"EVENT_SERVICE_URL" envDefault:"http://localhost:8081"`
	EventID         string        `env:"EVENT_ID,required,notEmpty"`
	APIToken        string        `env:"API_TOKEN"`
	RabbitURL       string        `env:"RABBITMQ_URL"` // empty disables broker integration
	ScanResetDelay  time.Duration `env:"SCAN_RESET_DELAY" envDefault:"2500ms"`
}

func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
