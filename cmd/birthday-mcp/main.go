// Package main serves the generation operations as MCP tools over stdio.
//
// Image inputs are file paths readable by the server process; results are
// returned as inline image content and, when out_dir is set, written to disk.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"github.com/fpang/birthday-surprise/internal/boot"
	"github.com/fpang/birthday-surprise/internal/config"
	"github.com/fpang/birthday-surprise/internal/logging"
	"github.com/fpang/birthday-surprise/internal/metrics"
)

const (
	serverName    = "birthday-surprise"
	serverVersion = "1.0.0"
)

func main() {
	// stdout carries the protocol.
	metrics.SetOutput(os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	logging.InitLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := boot.Gateway(ctx, cfg, boot.Options{})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build gateway")
	}

	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	registerTools(server, &tools{gw: res.Gateway})

	log.Info().Bool("apiKey", res.HasKey).Msg("MCP server ready on stdio")
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("MCP server stopped")
	}
}
