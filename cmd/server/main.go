package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/flourish/internal/server"
	"github.com/dmitrijs2005/flourish/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		log.Printf("server stopped: %v", err)
	}

}
