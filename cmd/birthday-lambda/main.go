// Package main runs the birthday surprise API behind API Gateway.
//
// Sessions live in the memory of one warm Lambda instance, so the function
// is meant to run with reserved concurrency of one.
package main

import (
	"context"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/rs/zerolog/log"

	"github.com/fpang/birthday-surprise/internal/boot"
	"github.com/fpang/birthday-surprise/internal/config"
	"github.com/fpang/birthday-surprise/internal/logging"
	"github.com/fpang/birthday-surprise/internal/server"
	"github.com/fpang/birthday-surprise/internal/session"
)

// Set at build time with -ldflags.
var (
	commitHash = "dev"
	buildTime  = ""
)

var handler http.Handler

func init() {
	initStart := time.Now()
	logging.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	logging.InitLevel(cfg.LogLevel)

	ctx := context.Background()
	res, err := boot.Gateway(ctx, cfg, boot.Options{Lambda: true})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build gateway")
	}

	store := session.NewStore(res.Gateway,
		session.WithTTL(cfg.SessionTTL),
		session.WithSecretCode(cfg.SecretCode),
	)
	handler = server.New(store).Handler()

	boot.StartupLog("birthday-lambda", initStart, cfg, res).
		CommitHash(commitHash).
		BuildTime(buildTime).
		Log()
}

func main() {
	adapter := httpadapter.NewV2(handler)
	lambda.Start(adapter.ProxyWithContext)
}
