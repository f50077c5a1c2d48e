// MedEasy MCP server: a conversational front-end over the MedEasy
// medication management backend. It exposes medicine search, routine
// registration, schedule reconciliation, and per-user TTS voice
// settings as MCP tools over stdio.
//
// Usage:
//
//	medeasy serve      # Start MCP server (stdio transport)
//	medeasy version    # Print version
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	medserver "github.com/medeasy-dev/medeasy-mcp/internal/server"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("medeasy v%s\n", medserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run() error {
	s, cleanup, err := medserver.New()
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// Cleanup on interrupt too. The stdio server exits when stdin
	// closes, so the handler only covers signal-driven shutdowns.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cleanup()
		os.Exit(0)
	}()

	return server.ServeStdio(s)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `medeasy - MedEasy MCP server

Usage:
  medeasy serve      Start the MCP server (stdio transport)
  medeasy version    Print version
  medeasy help       Show this help

Environment:
  MEDEASY_API_URL    MedEasy backend base URL (required)
  TOKEN_SECRET_KEY   JWT signing secret for voice setting tools
  OPENAI_API_KEY     Enables fuzzy schedule name matching
  OPENAI_MODEL       Matching model (default gpt-4o-mini)
  REDIS_ADDR         Voice settings store (default localhost:6379)
  REDIS_PASSWORD     Redis password, if any
  MEDEASY_TIMEZONE   Schedule timezone (default Asia/Seoul)
  MEDEASY_TIMEOUT    Outbound call timeout (default 20s)
`)
}
