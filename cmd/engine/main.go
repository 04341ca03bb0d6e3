// Command engine is the HTTP control plane driver for oblivrel: it wires
// up the websocket hub, the plan-run audit store, and the gin router, then
// serves the plan-submission REST surface. Same optional-DB-connection
// guard and getEnvOrDefault helper, same wsHub.Run() goroutine pattern
// used by other gin-based services in this shape.
package main

import (
	"log"
	"os"

	"github.com/rawblock/oblivrel/internal/api"
	"github.com/rawblock/oblivrel/internal/db"
)

func main() {
	log.Println("Starting oblivrel engine (oblivious relational operator service)...")

	dbURL := os.Getenv("DATABASE_URL")
	var dbConn *db.PostgresStore
	if dbURL != "" {
		conn, err := db.Connect(dbURL)
		if err != nil {
			log.Printf("Warning: failed to connect to PostgreSQL, continuing without a plan-run audit log. Error: %v", err)
		} else {
			dbConn = conn
			defer dbConn.Close()
			if err := dbConn.InitSchema(); err != nil {
				log.Printf("Warning: DB schema init failed: %v", err)
			}
		}
	} else {
		log.Println("DATABASE_URL not set — running without a plan-run audit log")
	}

	wsHub := api.NewHub()
	go wsHub.Run()

	r := api.SetupRouter(dbConn, wsHub)

	port := getEnvOrDefault("PORT", "8080")
	log.Printf("engine listening on :%s\n", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

func getEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
