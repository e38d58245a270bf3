package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"authkeeper/internal/server"
	"authkeeper/internal/server/config"
)

func main() {

	// Missing .env is fine, the environment may be set by the runtime.
	_ = godotenv.Load()

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
