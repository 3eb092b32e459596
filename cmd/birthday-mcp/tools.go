package main

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fpang/birthday-surprise/internal/cli"
	"github.com/fpang/birthday-surprise/internal/gateway"
)

// generator is the part of the Gateway the tools call.
type generator interface {
	StylizePortrait(ctx context.Context, photo gateway.Image) (*gateway.Carousel, error)
	CreateGroupCelebration(ctx context.Context, portrait, partner, friend gateway.Image) (*gateway.Carousel, error)
	ChangeOutfit(ctx context.Context, portrait, outfit gateway.Image) (*gateway.Carousel, error)
	GenerateFood(ctx context.Context, name string) (*gateway.Carousel, error)
	GenerateCharacter(ctx context.Context) (*gateway.Carousel, error)
	CreateCouplePhotoshoot(ctx context.Context, partner, honoree gateway.Image) (*gateway.Carousel, error)
}

type tools struct {
	gw generator
}

// Output is the structured result of every tool.
type Output struct {
	Requested int      `json:"requested"`
	Generated int      `json:"generated"`
	Files     []string `json:"files,omitempty"`
}

type PortraitInput struct {
	Photo  string `json:"photo" jsonschema:"path to the birthday photo"`
	OutDir string `json:"out_dir,omitempty" jsonschema:"directory to write results to"`
}

type CelebrationInput struct {
	Portrait string `json:"portrait" jsonschema:"path to the generated portrait"`
	Partner  string `json:"partner" jsonschema:"path to the partner's photo"`
	Friend   string `json:"friend" jsonschema:"path to the friend's photo"`
	OutDir   string `json:"out_dir,omitempty" jsonschema:"directory to write results to"`
}

type OutfitInput struct {
	Portrait string `json:"portrait" jsonschema:"path to the portrait"`
	Outfit   string `json:"outfit" jsonschema:"path to the outfit photo"`
	OutDir   string `json:"out_dir,omitempty" jsonschema:"directory to write results to"`
}

type FoodInput struct {
	Name   string `json:"name" jsonschema:"the food to photograph"`
	OutDir string `json:"out_dir,omitempty" jsonschema:"directory to write results to"`
}

type CharacterInput struct {
	OutDir string `json:"out_dir,omitempty" jsonschema:"directory to write results to"`
}

type PhotoshootInput struct {
	Partner string `json:"partner" jsonschema:"path to the partner's photo"`
	Honoree string `json:"honoree" jsonschema:"path to the honoree's photo"`
	OutDir  string `json:"out_dir,omitempty" jsonschema:"directory to write results to"`
}

func registerTools(server *mcp.Server, t *tools) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "stylize_portrait",
		Description: "Restyles a photo into three identity-preserving birthday portraits",
	}, t.portrait)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "group_celebration",
		Description: "Composites the portrait with two companions around a birthday cupcake",
	}, t.celebration)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "change_outfit",
		Description: "Dresses the portrait subject in the outfit from a second photo",
	}, t.outfit)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_food",
		Description: "Renders a studio photograph of the named food",
	}, t.food)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_character",
		Description: "Draws the kitchen character",
	}, t.character)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "couple_photoshoot",
		Description: "Places two people into six travel photoshoot scenes",
	}, t.photoshoot)
}

func (t *tools) portrait(ctx context.Context, _ *mcp.CallToolRequest, in PortraitInput) (*mcp.CallToolResult, Output, error) {
	imgs, err := loadImages(in.Photo)
	if err != nil {
		return nil, Output{}, err
	}
	return finish(in.OutDir, "portrait")(t.gw.StylizePortrait(ctx, imgs[0]))
}

func (t *tools) celebration(ctx context.Context, _ *mcp.CallToolRequest, in CelebrationInput) (*mcp.CallToolResult, Output, error) {
	imgs, err := loadImages(in.Portrait, in.Partner, in.Friend)
	if err != nil {
		return nil, Output{}, err
	}
	return finish(in.OutDir, "celebrate")(t.gw.CreateGroupCelebration(ctx, imgs[0], imgs[1], imgs[2]))
}

func (t *tools) outfit(ctx context.Context, _ *mcp.CallToolRequest, in OutfitInput) (*mcp.CallToolResult, Output, error) {
	imgs, err := loadImages(in.Portrait, in.Outfit)
	if err != nil {
		return nil, Output{}, err
	}
	return finish(in.OutDir, "outfit")(t.gw.ChangeOutfit(ctx, imgs[0], imgs[1]))
}

func (t *tools) food(ctx context.Context, _ *mcp.CallToolRequest, in FoodInput) (*mcp.CallToolResult, Output, error) {
	return finish(in.OutDir, "food")(t.gw.GenerateFood(ctx, in.Name))
}

func (t *tools) character(ctx context.Context, _ *mcp.CallToolRequest, in CharacterInput) (*mcp.CallToolResult, Output, error) {
	return finish(in.OutDir, "character")(t.gw.GenerateCharacter(ctx))
}

func (t *tools) photoshoot(ctx context.Context, _ *mcp.CallToolRequest, in PhotoshootInput) (*mcp.CallToolResult, Output, error) {
	imgs, err := loadImages(in.Partner, in.Honoree)
	if err != nil {
		return nil, Output{}, err
	}
	return finish(in.OutDir, "photoshoot")(t.gw.CreateCouplePhotoshoot(ctx, imgs[0], imgs[1]))
}

func loadImages(paths ...string) ([]gateway.Image, error) {
	imgs := make([]gateway.Image, len(paths))
	for i, p := range paths {
		if p == "" {
			return nil, fmt.Errorf("image %d: %w", i+1, gateway.ErrMissingInput)
		}
		img, err := cli.LoadImage(p)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", p, err)
		}
		imgs[i] = img
	}
	return imgs, nil
}

// finish turns a gateway result into tool output, writing files when
// outDir is set.
func finish(outDir, prefix string) func(*gateway.Carousel, error) (*mcp.CallToolResult, Output, error) {
	return func(c *gateway.Carousel, err error) (*mcp.CallToolResult, Output, error) {
		if err != nil {
			return nil, Output{}, err
		}
		out := Output{Requested: c.Requested, Generated: len(c.Images)}
		if outDir != "" {
			dir, err := cli.ResolveOutputDir(outDir)
			if err != nil {
				return nil, Output{}, err
			}
			if out.Files, err = cli.WriteCarousel(dir, prefix, c); err != nil {
				return nil, Output{}, err
			}
		}

		result := &mcp.CallToolResult{}
		for _, img := range c.Images {
			result.Content = append(result.Content, &mcp.ImageContent{Data: img.Data, MIMEType: img.MIMEType})
		}
		return result, out, nil
	}
}
