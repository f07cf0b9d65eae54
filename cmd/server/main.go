package main

import (
	"fmt"
	"log"
	"os"

	"projmon/internal/config"
	"projmon/internal/database"
	"projmon/internal/server"
)

func main() {
	cfg := config.Load()
	database.Init(cfg.DBDSN)

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalf("failed to create upload dir: %v", err)
	}

	r := server.NewRouter(cfg)

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("starting server on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
