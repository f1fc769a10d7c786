package main

import (
	"context"
	"log"

	"bookingsdash/internal/api"
	"bookingsdash/internal/config"
	"bookingsdash/internal/container"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	appContainer, err := container.New(ctx, appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(ctx)

	server := api.NewAPI(appContainer.Loader)
	if err := server.Start(":" + appConfig.Server.APIPort); err != nil {
		log.Fatal("Server failed:", err)
	}
}
