// Package main runs the chesstalk server: a REST API that turns spoken or
// typed chess phrases into moves on a per-session board.
package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chess/cmd/chesstalk-server/cli"
	"chess/internal/server/http"
	"chess/internal/server/phrasebook"
	"chess/internal/server/processor"
	"chess/internal/server/service"
	"chess/internal/server/storage"
	"chess/internal/server/transcript"
)

const (
	gracefulShutdownTimeout = time.Second * 5
)

func main() {
	// Admin subcommands
	if len(os.Args) > 1 && (os.Args[1] == "db" || os.Args[1] == "phrase") {
		if err := cli.Run(os.Args[1:]); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		os.Exit(0)
	}

	var (
		apiHost        = flag.String("api-host", "localhost", "API server host")
		apiPort        = flag.Int("api-port", 8080, "API server port")
		dev            = flag.Bool("dev", false, "Development mode (relaxed rate limits, fixed token secret)")
		storagePath    = flag.String("storage-path", "", "Path to SQLite database file (disables persistence if empty)")
		phrasebookPath = flag.String("phrasebook-path", "", "Directory of the difficulty phrasebook (built-in words only if empty)")
		pidPath        = flag.String("pid", "", "Optional path to write PID file")
		pidLock        = flag.Bool("pid-lock", false, "Lock PID file to allow only one instance (requires -pid)")
	)
	flag.Parse()

	if *pidLock && *pidPath == "" {
		log.Fatal("Error: -pid-lock flag requires the -pid flag to be set")
	}

	if *pidPath != "" {
		cleanup, err := managePIDFile(*pidPath, *pidLock)
		if err != nil {
			log.Fatalf("Failed to manage PID file: %v", err)
		}
		defer cleanup()
		log.Printf("PID file created at: %s (lock: %v)", *pidPath, *pidLock)
	}

	// 1. Storage (optional), closed by service shutdown
	var store *storage.Store
	if *storagePath != "" {
		log.Printf("Initializing persistent storage at: %s", *storagePath)
		var err error
		store, err = storage.NewStore(*storagePath)
		if err != nil {
			log.Fatalf("Failed to initialize storage: %v", err)
		}
		if err := store.InitDB(); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
	} else {
		log.Printf("Persistent storage disabled (use -storage-path to enable)")
	}

	// 2. Phrasebook (optional) backing the difficulty parser
	var parser *transcript.DifficultyParser
	if *phrasebookPath != "" {
		book, err := phrasebook.Open(*phrasebookPath)
		if err != nil {
			log.Fatalf("Failed to open phrasebook: %v", err)
		}
		defer func() {
			if err := book.Close(); err != nil {
				log.Printf("Warning: failed to close phrasebook cleanly: %v", err)
			}
		}()
		parser = transcript.NewDifficultyParser(book)
		log.Printf("Phrasebook: %s", *phrasebookPath)
	} else {
		parser = transcript.NewDifficultyParser(nil)
	}

	// Session token secret
	var jwtSecret []byte
	if *dev {
		jwtSecret = []byte("dev-secret-minimum-32-characters-long")
		log.Printf("Using fixed JWT secret (dev mode)")
	} else {
		jwtSecret = make([]byte, 32)
		if _, err := rand.Read(jwtSecret); err != nil {
			log.Fatalf("Failed to generate JWT secret: %v", err)
		}
		log.Printf("JWT secret generated (session tokens valid until restart)")
	}

	// 3. Service with idle session cleanup
	svc := service.New(store, jwtSecret)

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	go svc.RunCleanupJob(cleanupCtx, service.CleanupJobInterval)

	// 4. Processor and HTTP app
	proc := processor.New(svc, parser)
	app := http.NewFiberApp(proc, svc, *dev)

	apiAddr := fmt.Sprintf("%s:%d", *apiHost, *apiPort)

	go func() {
		log.Printf("Chesstalk API Server starting...")
		log.Printf("API Listening on: http://%s", apiAddr)
		if *dev {
			log.Printf("Rate Limit: 20 requests/second per IP (DEV MODE)")
		} else {
			log.Printf("Rate Limit: 10 requests/second per IP")
		}
		log.Printf("Session Endpoints: http://%s/api/v1/sessions", apiAddr)
		log.Printf("Parse Endpoint: http://%s/api/v1/parse", apiAddr)
		log.Printf("Health: http://%s/health", apiAddr)

		if err := app.Listen(apiAddr); err != nil {
			log.Printf("API server listen error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if err := proc.Close(); err != nil {
		log.Printf("Processor close error: %v", err)
	}

	cleanupCancel()

	if err := svc.Shutdown(gracefulShutdownTimeout); err != nil {
		log.Printf("Service shutdown error: %v", err)
	}

	log.Println("Server exited")
}
