package main

import (
	"context"
	"log"

	"github.com/dkovalenko/fileharbor/internal/server"
	"github.com/dkovalenko/fileharbor/internal/server/config"
	"github.com/joho/godotenv"
)

func main() {

	ctx := context.Background()

	// .env is optional; real environments set variables directly
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config.LoadConfig()
	app, err := server.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
