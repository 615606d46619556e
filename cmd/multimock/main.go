package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/multimock/multimock/internal/app/configuration"
	"github.com/multimock/multimock/pkg/mockserver"
)

func main() {
	config, err := configuration.NewFromEnv()
	if err != nil {
		log.Fatalf("unable to load configuration: %s", err)
	}

	server := mockserver.New(mockserver.Config{
		Addr:           config.ServerAddress,
		DisableHistory: config.DisableHistory,
	})

	if config.DefinitionsFile != "" {
		defs, err := configuration.LoadDefinitions(config.DefinitionsFile)
		if err != nil {
			log.Fatalf("unable to load definitions: %s", err)
		}
		for _, def := range defs {
			if err := server.Register(def); err != nil {
				log.Fatalf("unable to register %q: %s", def.Name(), err)
			}
		}
		log.Infof("loaded %d definitions from %s", len(defs), config.DefinitionsFile)
	}

	if err := server.Start(); err != nil {
		log.Fatal(err)
	}

	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error(err)
	}
}
