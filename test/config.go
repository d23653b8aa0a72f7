package test

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config tunes the integration scenario from the environment, so CI can
// stretch timeouts without touching the code.
type Config struct {
	ReceiveTimeout time.Duration `envconfig:"IT_RECEIVE_TIMEOUT" default:"3s"`
	Colours        bool          `envconfig:"IT_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
