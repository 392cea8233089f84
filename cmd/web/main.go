package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/talentflow/dedupe/internal/app"
	"github.com/talentflow/dedupe/internal/config"
	"github.com/talentflow/dedupe/internal/debug"
	"github.com/talentflow/dedupe/internal/web"
)

func main() {
	// Load environment configuration
	if err := config.LoadEnv(); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}

	logger, closeLog := config.SetupLogger(
		config.GetEnv("DEDUPE_LOG_FILE", ""),
		config.ParseLevel(config.GetEnv("DEDUPE_LOG_LEVEL", "info")),
	)
	defer closeLog()
	debug.SetLogger(logger)

	fmt.Println("=== Candidate Dedupe API ===")

	webConfig := web.DefaultConfig()
	if path := config.GetEnv("WEB_CONFIG", ""); path != "" {
		loaded, err := web.LoadConfig(path)
		if err != nil {
			log.Fatalf("Failed to load web config %s: %v", path, err)
		}
		webConfig = loaded
	}

	// Environment overrides the JSON file
	webConfig.Server.Port = config.GetEnvInt("WEB_PORT", webConfig.Server.Port)
	webConfig.Server.Host = config.GetEnv("WEB_HOST", webConfig.Server.Host)
	webConfig.Auth.APIKey = config.GetEnv("WEB_API_KEY", webConfig.Auth.APIKey)
	webConfig.Auth.Enabled = webConfig.Auth.APIKey != ""
	webConfig.Features.MergeEnabled = config.GetEnvBool("ENABLE_MERGE", webConfig.Features.MergeEnabled)
	webConfig.Features.ConfigUpdateEnabled = config.GetEnvBool("ENABLE_CONFIG_UPDATE", webConfig.Features.ConfigUpdateEnabled)

	opts := app.OptionsFromEnv()
	opts.Logger = logger
	if os.Getenv("DEDUPE_DB_URL") == "" && opts.File == "" {
		opts.Driver = webConfig.Database.Driver
		opts.DSN = webConfig.Database.URL
	}
	if opts.DetectionConfig == "" {
		opts.DetectionConfig = webConfig.Detection.ConfigFile
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := app.Open(ctx, opts)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer backend.Close(context.Background())

	fmt.Printf("Storage: %s\n", backend.Describe())
	fmt.Printf("Server: http://%s:%d\n", webConfig.Server.Host, webConfig.Server.Port)
	fmt.Println("\nFeatures enabled:")
	fmt.Printf("  • Merge: %v\n", webConfig.Features.MergeEnabled)
	fmt.Printf("  • Config update: %v\n", webConfig.Features.ConfigUpdateEnabled)
	fmt.Printf("  • API key auth: %v\n", webConfig.Auth.Enabled)

	server := web.NewServer(webConfig, backend.Service, logger)
	if err := server.Start(ctx); err != nil {
		log.Printf("Server error: %v", err)
	}
}
