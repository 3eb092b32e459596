package session

import (
	"errors"
	"fmt"

	"github.com/fpang/birthday-surprise/internal/scene"
)

var (
	// ErrNotFound is returned for unknown or expired session IDs.
	ErrNotFound = errors.New("session not found")

	// ErrBusy is returned when a generation is already running in the session.
	ErrBusy = errors.New("a generation is already running for this session")
)

// WrongSceneError is returned when an action is attempted outside its scene.
type WrongSceneError struct {
	Want, Got scene.Scene
}

func (e *WrongSceneError) Error() string {
	return fmt.Sprintf("action belongs to the %s scene, current scene is %s", e.Want, e.Got)
}

// PreconditionError is a user-facing validation failure detected before any
// generation call is made.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string {
	return e.Message
}

// GenerationError is a total generation failure translated into the
// message a scene shows. The user may retry.
type GenerationError struct {
	Scene   scene.Scene
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	return e.Message + ": " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func precondition(format string, args ...any) error {
	return &PreconditionError{Message: fmt.Sprintf(format, args...)}
}

// Friendly failure messages shown by each scene after a total failure.
var failureMessages = map[scene.Scene]string{
	scene.Photo:   "The magic seems to be taking a break! A server error occurred. Please try again in a moment or use a different photo.",
	scene.Cake:    "Could not create the group photos due to a server error. Please try again in a moment.",
	scene.DressUp: "Oops! The magic fizzled out due to a server error. Please try again with another dress photo.",
	scene.Food:    "The kitchen had a hiccup! A server error occurred. Please try another craving.",
	scene.Secret:  "A magical error occurred while creating your memories. Please try again.",
}

// characterFailure is shown when the ambient character cannot be drawn. The
// character is not tied to a scene.
const characterFailure = "The chef stepped out of the kitchen. Please try again in a moment."

func generationFailed(s scene.Scene, err error) error {
	msg, ok := failureMessages[s]
	if !ok {
		msg = "Something went wrong. Please try again."
	}
	return &GenerationError{Scene: s, Message: msg, Err: err}
}
