// Package scene holds the presentation's scene-navigation state machine.
//
// The Navigator tracks the displayed scene and a back-navigable history.
// It has no knowledge of image generation; scene flows call the gateway
// first and only touch the Navigator once a call has fully resolved.
package scene

import (
	"fmt"
	"strings"
)

// Scene identifies one screen of the narrative. It carries no payload.
type Scene int

const (
	Intro Scene = iota
	Landing
	Photo
	Cake
	DressUp
	Food
	Spinner
	Closing
	Secret
)

var sceneNames = [...]string{
	Intro:   "intro",
	Landing: "landing",
	Photo:   "photo",
	Cake:    "cake",
	DressUp: "dressup",
	Food:    "food",
	Spinner: "spinner",
	Closing: "closing",
	Secret:  "secret",
}

// All lists every scene in narrative order.
var All = []Scene{Intro, Landing, Photo, Cake, DressUp, Food, Spinner, Closing, Secret}

// Valid reports whether s is one of the nine known scenes.
func (s Scene) Valid() bool {
	return s >= Intro && s <= Secret
}

func (s Scene) String() string {
	if !s.Valid() {
		return fmt.Sprintf("scene(%d)", int(s))
	}
	return sceneNames[s]
}

// Parse converts a scene name (case-insensitive) into a Scene.
func Parse(name string) (Scene, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range sceneNames {
		if n == name {
			return Scene(i), nil
		}
	}
	return Intro, fmt.Errorf("unknown scene %q", name)
}

// MarshalText renders the scene by name so JSON payloads stay readable.
func (s Scene) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid scene %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (s *Scene) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Next returns the scene that follows s in the linear narrative. Closing has
// no ordinary successor (Secret is reached only through the unlock code), so
// ok is false for Closing and Secret.
func Next(s Scene) (next Scene, ok bool) {
	switch s {
	case Closing, Secret:
		return s, false
	}
	if !s.Valid() {
		return s, false
	}
	return s + 1, true
}

// Theme is the backdrop a scene renders on.
type Theme string

const (
	ThemeNight Theme = "night"
	ThemePeach Theme = "peach"
)

// ThemeFor returns the dark backdrop for the opening, closing and secret
// scenes and the light peach one everywhere else.
func ThemeFor(s Scene) Theme {
	switch s {
	case Intro, Closing, Secret:
		return ThemeNight
	default:
		return ThemePeach
	}
}
