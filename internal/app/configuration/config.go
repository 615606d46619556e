package configuration

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	ServerAddress   string `env:"SERVER_ADDRESS,default=127.0.0.1:8080"` // Address the standalone mock server listens on
	DefinitionsFile string `env:"DEFINITIONS_FILE"`                      // JSON file with the endpoint declarations to serve
	DisableHistory  bool   `env:"DISABLE_HISTORY"`                       // Switch off request recording
}

func NewFromEnv() (Config, error) {
	ctx := context.Background()

	var config Config
	err := envconfig.Process(ctx, &config)
	if err != nil {
		return config, errors.Wrap(err, "process env config")
	}
	return config, nil
}
