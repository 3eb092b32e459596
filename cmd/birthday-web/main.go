package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/birthday-surprise/internal/boot"
	"github.com/fpang/birthday-surprise/internal/config"
	"github.com/fpang/birthday-surprise/internal/logging"
	"github.com/fpang/birthday-surprise/internal/server"
	"github.com/fpang/birthday-surprise/internal/session"
)

// sweepInterval is how often expired sessions are closed.
const sweepInterval = time.Minute

// Set at build time with -ldflags.
var (
	commitHash = "dev"
	buildTime  = ""
)

// CLI flags
var (
	portFlag    int
	modelFlag   string
	backendFlag string
)

var rootCmd = &cobra.Command{
	Use:   "birthday-web",
	Short: "Serve the birthday surprise API",
	Long: `Birthday Web starts the HTTP API behind the birthday surprise presentation.
Each browser gets its own session that walks through the scenes and calls
Gemini to generate portraits, group photos, outfits, food and the secret
photoshoot.

Configuration comes from the environment (and a .env file); flags override it.

Examples:
  birthday-web
  birthday-web --port 9090
  birthday-web --model gemini-3-pro-image-preview --backend rest`,
	RunE: runMain,
}

func init() {
	rootCmd.Flags().IntVar(&portFlag, "port", 0, "Port to listen on (default from PORT)")
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Gemini image model (default from GEMINI_IMAGE_MODEL)")
	rootCmd.Flags().StringVar(&backendFlag, "backend", "", "Gateway backend: genai or rest (default from GATEWAY_BACKEND)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) error {
	initStart := time.Now()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	logging.InitLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := boot.Gateway(ctx, cfg, boot.Options{})
	if err != nil {
		return fmt.Errorf("failed to build gateway: %w", err)
	}

	store := session.NewStore(res.Gateway,
		session.WithTTL(cfg.SessionTTL),
		session.WithSecretCode(cfg.SecretCode),
	)
	defer store.Close()
	go store.Run(ctx, sweepInterval)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      server.New(store, server.WithBaseContext(ctx)).Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info().Msg("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Graceful shutdown failed")
		}
	}()

	boot.StartupLog("birthday-web", initStart, cfg, res).
		CommitHash(commitHash).
		BuildTime(buildTime).
		Config("port", fmt.Sprint(cfg.Port)).
		Log()
	fmt.Printf("\n  Birthday API: http://localhost:%d/api/health\n\n", cfg.Port)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("port") {
		cfg.Port = portFlag
	}
	if cmd.Flags().Changed("model") {
		cfg.Model = modelFlag
	}
	if cmd.Flags().Changed("backend") {
		cfg.Backend = backendFlag
	}
}
