package main

import (
	"flag"
	"log"

	"github.com/quickie-study/quickie/internal/api"
	"github.com/quickie-study/quickie/internal/config"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", "app.yml", "Path to configuration file")
	flag.Parse()

	log.Printf("Starting Quickie BFF v%s with config: %s", version, *configPath)

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	a, err := api.NewApi(cfg)
	if err != nil {
		log.Fatal(err)
	}

	a.Serve()
}
