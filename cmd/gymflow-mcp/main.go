package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	gymmcp "github.com/claude/gymflow/internal/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", os.Getenv("GYMFLOW_SERVER_URL"), "gymflow server URL (e.g. https://gymflow.tail1234.ts.net)")
	apiKey := flag.String("api-key", os.Getenv("GYMFLOW_AUTH_API_KEY"), "X-API-Key for the server, if it requires one")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("gymflow-mcp", Version)
		return
	}

	// stdout carries the MCP protocol; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *serverURL == "" {
		fmt.Fprintf(os.Stderr, "Usage: gymflow-mcp -server <URL> [-api-key KEY]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	client := gymmcp.NewHTTPClient(*serverURL, *apiKey)
	s := gymmcp.New(client, Version, log)

	log.Info("gymflow-mcp serving stdio", "server", *serverURL)
	if err := mcpserver.ServeStdio(s); err != nil {
		log.Error("stdio server error", "error", err)
		os.Exit(1)
	}
}
