package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fpang/birthday-surprise/internal/scene"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": s.store.Len(),
	})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	sess := s.store.Create()
	respondJSON(w, http.StatusCreated, sess.Snapshot())
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, sessionFrom(r).Snapshot())
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(sessionFrom(r).ID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Scene *scene.Scene `json:"scene"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Scene == nil {
		writeError(w, badRequest("scene is required", nil))
		return
	}
	respondJSON(w, http.StatusOK, sessionFrom(r).Advance(*req.Scene))
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	view, ok := sessionFrom(r).AdvanceNext()
	if !ok {
		httpError(w, http.StatusConflict, "no scene follows "+view.Current.String())
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, sessionFrom(r).Back())
}

func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key string `json:"key"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Key == "" {
		httpError(w, http.StatusBadRequest, "key is required")
		return
	}
	unlocked, view := sessionFrom(r).Key(req.Key)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"unlocked": unlocked,
		"session":  view,
	})
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	sc, err := scene.Parse(chi.URLParam(r, "scene"))
	if err != nil {
		writeError(w, badRequest(err.Error(), nil))
		return
	}
	result, ok := sessionFrom(r).Result(sc)
	if !ok {
		httpError(w, http.StatusNotFound, "no result for scene "+sc.String())
		return
	}
	respondJSON(w, http.StatusOK, newCarouselResponse(result))
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	sc, err := scene.Parse(chi.URLParam(r, "scene"))
	if err != nil {
		writeError(w, badRequest(err.Error(), nil))
		return
	}
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil {
		writeError(w, badRequest("image index must be a number", err))
		return
	}
	result, ok := sessionFrom(r).Result(sc)
	if !ok || n < 0 || n >= len(result.Images) {
		httpError(w, http.StatusNotFound, "image not found")
		return
	}
	img := result.Images[n]
	w.Header().Set("Content-Type", img.MIMEType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Data)
}
