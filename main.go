package main

import (
	"fmt"
	"log"
	"os"

	"github.com/hajimeclub/portal/internal/auth"
	"github.com/hajimeclub/portal/internal/config"
	"github.com/hajimeclub/portal/internal/database"
	"github.com/hajimeclub/portal/internal/entrypoint"
	"github.com/hajimeclub/portal/internal/seed"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	switch os.Args[1] {
	case "seed":
		cfg := config.NewConfig()
		db, err := database.NewDatabase(cfg.Database.Path)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()

		hasher := auth.NewHasher(auth.ScryptParams{
			N: cfg.Auth.ScryptN,
			R: cfg.Auth.ScryptR,
			P: cfg.Auth.ScryptP,
		})
		if err := seed.Run(db, hasher); err != nil {
			log.Fatalf("Seed failed: %v", err)
		}

	case "-h", "--help", "help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command>\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve  Start the HTTP server (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  seed   Populate an empty database with starter data\n")
}
