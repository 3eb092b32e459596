package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/fpang/birthday-surprise/internal/filehandler"
	"github.com/fpang/birthday-surprise/internal/gateway"
	"github.com/fpang/birthday-surprise/internal/session"
)

// maxJSONBody bounds small JSON request bodies.
const maxJSONBody = 1 << 16

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Debug().Err(err).Msg("Failed to write JSON response")
	}
}

// httpError sends a JSON error response. The clientMsg is returned to the caller.
// Optional internalDetails are logged server-side but never sent to the client.
func httpError(w http.ResponseWriter, status int, clientMsg string, internalDetails ...string) {
	if len(internalDetails) > 0 {
		log.Error().
			Int("status", status).
			Str("clientMsg", clientMsg).
			Strs("internalDetails", internalDetails).
			Msg("HTTP error with internal details")
	}
	respondJSON(w, status, map[string]string{"error": clientMsg})
}

type retryableError struct {
	Error string `json:"error"`
	Retry bool   `json:"retry"`
}

// writeError maps domain errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var (
		wrongScene   *session.WrongSceneError
		precondition *session.PreconditionError
		generation   *session.GenerationError
		badRequest   *requestError
	)
	switch {
	case errors.Is(err, session.ErrNotFound):
		httpError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, session.ErrBusy):
		httpError(w, http.StatusConflict, "already generating")
	case errors.As(err, &wrongScene):
		httpError(w, http.StatusConflict, wrongScene.Error())
	case errors.As(err, &precondition):
		httpError(w, http.StatusBadRequest, precondition.Message)
	case errors.As(err, &badRequest):
		httpError(w, http.StatusBadRequest, badRequest.msg)
	case errors.Is(err, filehandler.ErrEmptyUpload),
		errors.Is(err, filehandler.ErrTooLarge),
		errors.Is(err, filehandler.ErrUnsupportedType),
		errors.Is(err, gateway.ErrInvalidDataURI):
		httpError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &generation):
		respondJSON(w, http.StatusBadGateway, retryableError{Error: generation.Message, Retry: true})
	default:
		httpError(w, http.StatusInternalServerError, "internal error", err.Error())
	}
}

// requestError is a malformed request detected by a handler.
type requestError struct {
	msg string
	err error
}

func (e *requestError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *requestError) Unwrap() error { return e.err }

func badRequest(msg string, err error) error {
	return &requestError{msg: msg, err: err}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		return badRequest("invalid JSON body", err)
	}
	return nil
}

type carouselResponse struct {
	Images    []string `json:"images"`
	Requested int      `json:"requested"`
	Degraded  bool     `json:"degraded"`
}

func newCarouselResponse(c *gateway.Carousel) carouselResponse {
	resp := carouselResponse{Images: make([]string, 0, len(c.Images)), Requested: c.Requested, Degraded: c.Degraded()}
	for _, img := range c.Images {
		resp.Images = append(resp.Images, img.DataURI())
	}
	return resp
}
