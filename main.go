package main

import (
	"context"
	"log"
	"os"

	"bookingsdash/internal/config"
	"bookingsdash/internal/container"
	"bookingsdash/internal/errors"
	"bookingsdash/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// ensureSnapshot runs the pipeline when the store has no snapshot yet and
// the workbook is on disk.
func ensureSnapshot(ctx context.Context, c *container.Container) error {
	_, err := c.Loader.Presenter(ctx)
	if err == nil || !errors.HasCode(err, errors.CodeNotFound) {
		return err
	}

	workbook := c.Config.Data.WorkbookFile
	if _, statErr := os.Stat(workbook); statErr != nil {
		log.Printf("No snapshot found and workbook %s is missing; run `bookings clean` first", workbook)
		return nil
	}

	log.Printf("No snapshot found, cleaning %s", workbook)
	snapshot, err := c.Pipeline.Run(ctx, workbook)
	if err != nil {
		return errors.Wrap(err, "initial pipeline run failed")
	}
	c.Loader.Set(snapshot)
	return nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	ctx := context.Background()

	// Create dependency injection container
	appContainer, err := container.New(ctx, appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(ctx)

	if err := ensureSnapshot(ctx, appContainer); err != nil {
		log.Fatalf("Failed to prepare snapshot: %v", err)
	}

	server, err := ui.NewServer(ui.Assets(), appContainer.Loader, appContainer.Logger)
	if err != nil {
		log.Fatalf("Failed to create dashboard server: %v", err)
	}

	if err := server.Start(":" + appConfig.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
