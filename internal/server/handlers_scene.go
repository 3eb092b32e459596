package server

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/fpang/birthday-surprise/internal/filehandler"
	"github.com/fpang/birthday-surprise/internal/gateway"
	"github.com/fpang/birthday-surprise/internal/session"
)

// maxMultipartMemory is the in-memory part of a multipart form; the rest
// spills to temporary files.
const maxMultipartMemory = 32 << 20

// readUploads collects the named slots from a multipart form. A slot may be
// a file part or a data URI field. Missing slots are left out so the scene
// can report its own precondition message.
func readUploads(w http.ResponseWriter, r *http.Request, slots ...string) (session.Uploads, error) {
	r.Body = http.MaxBytesReader(w, r.Body, int64(len(slots))*filehandler.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return nil, badRequest("invalid multipart form", err)
	}
	defer r.MultipartForm.RemoveAll()

	uploads := make(session.Uploads, len(slots))
	for _, slot := range slots {
		img, ok, err := readSlot(r, slot)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", slot, err)
		}
		if ok {
			uploads[slot] = img
		}
	}
	return uploads, nil
}

func readSlot(r *http.Request, slot string) (gateway.Image, bool, error) {
	file, header, err := r.FormFile(slot)
	switch {
	case err == nil:
		defer file.Close()
		return fromFile(file, header)
	case !errors.Is(err, http.ErrMissingFile):
		return gateway.Image{}, false, badRequest("unreadable upload", err)
	}

	uri := r.FormValue(slot)
	if uri == "" {
		return gateway.Image{}, false, nil
	}
	img, err := gateway.ParseDataURI(uri)
	if err != nil {
		return gateway.Image{}, false, err
	}
	photo, err := filehandler.Prepare(img.Data, img.MIMEType, slot)
	if err != nil {
		return gateway.Image{}, false, err
	}
	return gateway.NewImage(photo.Data, photo.MIMEType), true, nil
}

func fromFile(file multipart.File, header *multipart.FileHeader) (gateway.Image, bool, error) {
	photo, err := filehandler.ReadUpload(file, header.Header.Get("Content-Type"), header.Filename)
	if err != nil {
		return gateway.Image{}, false, err
	}
	return gateway.NewImage(photo.Data, photo.MIMEType), true, nil
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request, slots []string, run func(*session.Session, session.Uploads) (*gateway.Carousel, error)) {
	uploads, err := readUploads(w, r, slots...)
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := run(sessionFrom(r), uploads)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newCarouselResponse(result))
}

func (s *Server) handlePhotoGenerate(w http.ResponseWriter, r *http.Request) {
	s.generate(w, r, []string{session.SlotPhoto}, func(sess *session.Session, u session.Uploads) (*gateway.Carousel, error) {
		ctx, cancel := s.generationContext(r)
		defer cancel()
		return sess.GeneratePortraits(ctx, u)
	})
}

func (s *Server) handlePhotoSelect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index int `json:"index"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	view, err := sessionFrom(r).SelectPortrait(req.Index)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleCakeGenerate(w http.ResponseWriter, r *http.Request) {
	s.generate(w, r, []string{session.SlotPartner, session.SlotFriend}, func(sess *session.Session, u session.Uploads) (*gateway.Carousel, error) {
		ctx, cancel := s.generationContext(r)
		defer cancel()
		return sess.GenerateGroup(ctx, u)
	})
}

func (s *Server) handleDressUpGenerate(w http.ResponseWriter, r *http.Request) {
	s.generate(w, r, []string{session.SlotOutfit}, func(sess *session.Session, u session.Uploads) (*gateway.Carousel, error) {
		ctx, cancel := s.generationContext(r)
		defer cancel()
		return sess.ChangeOutfit(ctx, u)
	})
}

func (s *Server) handleDressUpAccept(w http.ResponseWriter, r *http.Request) {
	view, err := sessionFrom(r).AcceptOutfit()
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleFoodGenerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	ctx, cancel := s.generationContext(r)
	defer cancel()

	item, err := sessionFrom(r).GenerateFood(ctx, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"name":  item.Name,
		"image": item.Image.DataURI(),
	})
}

func (s *Server) handleCharacter(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.generationContext(r)
	defer cancel()

	img, err := sessionFrom(r).Character(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"image": img.DataURI()})
}

func (s *Server) handleSecretGenerate(w http.ResponseWriter, r *http.Request) {
	s.generate(w, r, []string{session.SlotPartner, session.SlotHonoree}, func(sess *session.Session, u session.Uploads) (*gateway.Carousel, error) {
		ctx, cancel := s.generationContext(r)
		defer cancel()
		return sess.GeneratePhotoshoot(ctx, u)
	})
}
