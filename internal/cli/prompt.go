package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/ncruces/zenity"
	"github.com/rs/zerolog/log"

	"github.com/fpang/birthday-surprise/internal/filehandler"
)

// ErrCanceled is returned when the user dismisses a picker.
var ErrCanceled = errors.New("selection canceled")

// input is where prompts read from.
var input io.Reader = os.Stdin

// PromptForText asks for a line of text. Returns def if the user enters
// nothing.
func PromptForText(label, def string) string {
	if def != "" {
		fmt.Printf("%s [%s]: ", label, def)
	} else {
		fmt.Printf("%s: ", label)
	}

	reader := bufio.NewReader(input)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		log.Warn().Err(err).Msg("Failed to read input, using default")
		return def
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	return line
}

// PickImage opens a native file dialog filtered to supported images. When
// no dialog is available it falls back to a text prompt.
func PickImage(title string) (string, error) {
	patterns := make([]string, 0, len(filehandler.SupportedImageExtensions))
	for ext := range filehandler.SupportedImageExtensions {
		patterns = append(patterns, "*"+ext)
	}
	sort.Strings(patterns)

	path, err := zenity.SelectFile(
		zenity.Title(title),
		zenity.FileFilters{{Name: "Images", Patterns: patterns}},
	)
	switch {
	case err == nil:
		return path, nil
	case errors.Is(err, zenity.ErrCanceled):
		return "", ErrCanceled
	default:
		log.Debug().Err(err).Msg("File dialog unavailable, prompting instead")
	}

	path = PromptForText(title, "")
	if path == "" {
		return "", ErrCanceled
	}
	return path, nil
}
