package main

import (
	"log"
	"os"

	"pdf-extract-service/internal/config"
	"pdf-extract-service/internal/mcpserver"
	"pdf-extract-service/pkg/logger"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	// stdout carries the MCP protocol, so all logging goes to stderr.
	appLogger := logger.NewLoggerWithWriter(os.Getenv("LOG_LEVEL"), os.Stderr)
	container := config.NewContainerWithLogger(appLogger)

	srv := mcpserver.New(container.Extractor, container.Logger)

	container.Logger.Info("MCP server listening on stdio")
	if err := srv.ServeStdio(); err != nil {
		log.Fatalf("MCP server error: %v", err)
	}
}
