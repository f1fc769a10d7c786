package main

import (
	"context"
	"log"
	"os"

	"bookingsdash/adapters/sqlstore"
	"bookingsdash/internal/migration"
)

// Applies the snapshot schema to a database.
//
// Usage: migrate <postgres|sqlite> <database_url>
func main() {
	if len(os.Args) < 3 {
		log.Fatal("Usage: migrate <postgres|sqlite> <database_url>")
	}

	driver := os.Args[1]
	databaseURL := os.Args[2]
	if driver != sqlstore.DriverPostgres && driver != sqlstore.DriverSQLite {
		log.Fatalf("Unknown driver %q, want postgres or sqlite", driver)
	}

	// Open applies the migrations before returning.
	db, err := sqlstore.Open(context.Background(), driver, databaseURL)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	defer db.Close()

	log.Printf("Schema version %s applied to %s database", migration.NewRunner().Version(), driver)
}
