package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/birthday-surprise/internal/boot"
	"github.com/fpang/birthday-surprise/internal/cli"
	"github.com/fpang/birthday-surprise/internal/config"
	"github.com/fpang/birthday-surprise/internal/gateway"
	"github.com/fpang/birthday-surprise/internal/logging"
	"github.com/fpang/birthday-surprise/internal/metrics"
)

// CLI flags
var (
	outFlag     string
	modelFlag   string
	backendFlag string
)

var gw *gateway.Gateway

var rootCmd = &cobra.Command{
	Use:   "birthday-cli",
	Short: "Run the birthday surprise generations from the terminal",
	Long: `Birthday CLI runs each image generation of the birthday surprise without
the web front end. Input photos are given as arguments; missing ones are
picked with a file dialog. Results are written to the output directory.

Examples:
  birthday-cli portrait me.jpg
  birthday-cli celebrate portrait-1.png partner.jpg friend.jpg -o ./party
  birthday-cli food "pani puri"
  birthday-cli photoshoot --backend rest`,
	PersistentPreRunE: setup,
	SilenceUsage:      true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outFlag, "out", "o", "birthday-output", "Directory to write generated images to")
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "Gemini image model (default from GEMINI_IMAGE_MODEL)")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "Gateway backend: genai or rest")

	rootCmd.AddCommand(
		imageCommand("portrait", "Restyle a photo into three party portraits", []string{"Select the birthday photo"},
			func(ctx context.Context, in []gateway.Image) (*gateway.Carousel, error) {
				return gw.StylizePortrait(ctx, in[0])
			}),
		imageCommand("celebrate", "Compose the portrait with two friends around a cupcake",
			[]string{"Select the portrait", "Select the partner's photo", "Select the friend's photo"},
			func(ctx context.Context, in []gateway.Image) (*gateway.Carousel, error) {
				return gw.CreateGroupCelebration(ctx, in[0], in[1], in[2])
			}),
		imageCommand("outfit", "Dress the portrait in an outfit", []string{"Select the portrait", "Select the outfit photo"},
			func(ctx context.Context, in []gateway.Image) (*gateway.Carousel, error) {
				return gw.ChangeOutfit(ctx, in[0], in[1])
			}),
		imageCommand("photoshoot", "Create the couple travel photoshoot", []string{"Select the partner's photo", "Select the honoree's photo"},
			func(ctx context.Context, in []gateway.Image) (*gateway.Carousel, error) {
				return gw.CreateCouplePhotoshoot(ctx, in[0], in[1])
			}),
		foodCmd,
		characterCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	metrics.Disable()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("model") {
		cfg.Model = modelFlag
	}
	if cmd.Flags().Changed("backend") {
		cfg.Backend = backendFlag
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logging.InitLevel(cfg.LogLevel)

	res, err := boot.Gateway(cmd.Context(), cfg, boot.Options{})
	if err != nil {
		return err
	}
	if !res.HasKey {
		return errors.New("no API key configured: set GEMINI_API_KEY or SSM_API_KEY_PARAM")
	}
	gw = res.Gateway
	return nil
}

// imageCommand builds a subcommand taking one image argument per prompt.
func imageCommand(use, short string, prompts []string, run func(context.Context, []gateway.Image) (*gateway.Carousel, error)) *cobra.Command {
	return &cobra.Command{
		Use:   fmt.Sprintf("%s [%d image paths]", use, len(prompts)),
		Short: short,
		Args:  cobra.MaximumNArgs(len(prompts)),
		RunE: func(cmd *cobra.Command, args []string) error {
			images := make([]gateway.Image, len(prompts))
			for i, prompt := range prompts {
				path := ""
				if i < len(args) {
					path = args[i]
				} else {
					picked, err := cli.PickImage(prompt)
					if err != nil {
						return err
					}
					path = picked
				}
				img, err := cli.LoadImage(path)
				if err != nil {
					return fmt.Errorf("%s: %w", filepath.Base(path), err)
				}
				fmt.Printf("📷 %s (%s, %s)\n", filepath.Base(path), img.MIMEType, cli.FormatBytes(len(img.Data)))
				images[i] = img
			}
			return generate(cmd.Context(), use, func(ctx context.Context) (*gateway.Carousel, error) {
				return run(ctx, images)
			})
		},
	}
}

var foodCmd = &cobra.Command{
	Use:   "food [name]",
	Short: "Photograph a craving",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		} else {
			name = cli.PromptForText("What are you craving?", "")
		}
		return generate(cmd.Context(), "food", func(ctx context.Context) (*gateway.Carousel, error) {
			return gw.GenerateFood(ctx, name)
		})
	},
}

var characterCmd = &cobra.Command{
	Use:   "character",
	Short: "Draw the kitchen character",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return generate(cmd.Context(), "character", gw.GenerateCharacter)
	},
}

func generate(ctx context.Context, name string, run func(context.Context) (*gateway.Carousel, error)) error {
	dir, err := cli.ResolveOutputDir(outFlag)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Println("⏳ Generating, this can take a minute...")
	start := time.Now()
	result, err := run(ctx)
	if err != nil {
		log.Error().Err(err).Str("operation", name).Msg("Generation failed")
		return err
	}

	paths, err := cli.WriteCarousel(dir, name, result)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("============================================")
	fmt.Printf("✅ %d of %d images in %s\n", len(result.Images), result.Requested, cli.FormatDurationShort(time.Since(start)))
	fmt.Println("============================================")
	for _, p := range paths {
		fmt.Printf("   %s\n", p)
	}
	return nil
}
