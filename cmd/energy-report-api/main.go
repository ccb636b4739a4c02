// @title Energy Report API
// @version 1.0
// @description Read-only access to energy report runs, their results and charts.
// @host localhost:8080
// @BasePath /api/v1
package main

import (
	"energy-pipeline/internal/api"
	"energy-pipeline/internal/store"
	"flag"
	"fmt"
	"log"
	"os"
)

func main() {
	dbPath := flag.String("db", "runs.db", "run store written by energy-report")
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	if _, err := os.Stat(*dbPath); err != nil {
		fmt.Fprintf(os.Stderr, "run store %s: %v\n", *dbPath, err)
		os.Exit(1)
	}
	if err := store.InitDB(*dbPath); err != nil {
		log.Fatalf("❌ Failed to open run store: %v", err)
	}
	defer store.Close()

	r := api.NewRouter()
	fmt.Printf("📚 Swagger UI at http://localhost%s/swagger/index.html\n", *addr)
	if err := r.Start(*addr); err != nil {
		log.Printf("❌ Server stopped: %v", err)
		store.Close()
		os.Exit(1)
	}
}
