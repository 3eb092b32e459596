package session

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fpang/birthday-surprise/internal/gateway"
	"github.com/fpang/birthday-surprise/internal/scene"
)

// Upload slot names, as used in multipart forms.
const (
	SlotPhoto   = "photo"
	SlotPartner = "partner"
	SlotFriend  = "friend"
	SlotOutfit  = "outfit"
	SlotHonoree = "honoree"
)

// Uploads maps slot names to uploaded images.
type Uploads map[string]gateway.Image

func (u Uploads) has(slots ...string) bool {
	for _, slot := range slots {
		if u[slot].Empty() {
			return false
		}
	}
	return true
}

func (u Uploads) names() []string {
	out := make([]string, 0, len(u))
	for _, slot := range []string{SlotPhoto, SlotPartner, SlotFriend, SlotOutfit, SlotHonoree} {
		if !u[slot].Empty() {
			out = append(out, slot)
		}
	}
	return out
}

// begin checks that sc is displayed, that no generation is running and that
// check passes, then marks the scene as generating. A failed check is
// recorded on the scene so the snapshot shows the same message.
func (s *Session) begin(sc scene.Scene, uploads Uploads, check func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if cur := s.nav.Current(); cur != sc {
		return &WrongSceneError{Want: sc, Got: cur}
	}
	if s.busy {
		return ErrBusy
	}
	st := s.stage(sc)
	if check != nil {
		if err := check(); err != nil {
			st.err = err.Error()
			return err
		}
	}
	s.busy = true
	st.status = StatusGenerating
	st.err = ""
	st.uploaded = uploads.names()
	return nil
}

// finish records the outcome of a generation started by begin. On failure
// the scene's uploads are cleared so the user can submit again.
func (s *Session) finish(sc scene.Scene, result *gateway.Carousel, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.busy = false
	st := s.stage(sc)

	if err != nil {
		genErr := generationFailed(sc, err)
		st.status = StatusFailed
		st.err = genErr.(*GenerationError).Message
		st.uploaded = nil
		st.result = nil
		log.Error().
			Err(err).
			Str("session", s.ID).
			Stringer("scene", sc).
			Str("class", string(gateway.Classify(err))).
			Msg("Scene generation failed")
		return genErr
	}

	st.status = StatusReady
	st.result = result
	if result.Degraded() {
		log.Info().
			Str("session", s.ID).
			Stringer("scene", sc).
			Int("images", len(result.Images)).
			Int("requested", result.Requested).
			Msg("Some variants were dropped")
	}
	return nil
}

// GeneratePortraits restyles the uploaded photo into party portraits.
func (s *Session) GeneratePortraits(ctx context.Context, uploads Uploads) (*gateway.Carousel, error) {
	err := s.begin(scene.Photo, uploads, func() error {
		if !uploads.has(SlotPhoto) {
			return precondition("Please upload a photo first!")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result, err := s.gw.StylizePortrait(ctx, uploads[SlotPhoto])
	if err := s.finish(scene.Photo, result, err); err != nil {
		return nil, err
	}
	return result, nil
}

// SelectPortrait carries the chosen portrait forward and moves to Cake.
func (s *Session) SelectPortrait(index int) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if cur := s.nav.Current(); cur != scene.Photo {
		return View{}, &WrongSceneError{Want: scene.Photo, Got: cur}
	}
	if s.busy {
		return View{}, ErrBusy
	}
	st := s.stage(scene.Photo)
	if st.result == nil {
		return View{}, precondition("Please upload a photo first!")
	}
	if index < 0 || index >= len(st.result.Images) {
		return View{}, precondition("Please choose one of the %d portraits.", len(st.result.Images))
	}
	s.portrait = st.result.Images[index]
	s.advanceLocked(scene.Cake)
	return s.viewLocked(), nil
}

// GenerateGroup composites the portrait with the two companion photos.
func (s *Session) GenerateGroup(ctx context.Context, uploads Uploads) (*gateway.Carousel, error) {
	var portrait gateway.Image
	err := s.begin(scene.Cake, uploads, func() error {
		if s.portrait.Empty() {
			return precondition("An error occurred. %s's photo is missing. Please return to the previous step.", s.cast.Honoree)
		}
		if !uploads.has(SlotPartner, SlotFriend) {
			return precondition("Please upload both photos to continue.")
		}
		portrait = s.portrait
		return nil
	})
	if err != nil {
		return nil, err
	}

	result, err := s.gw.CreateGroupCelebration(ctx, portrait, uploads[SlotPartner], uploads[SlotFriend])
	if err := s.finish(scene.Cake, result, err); err != nil {
		return nil, err
	}
	return result, nil
}

// ChangeOutfit dresses the portrait in the uploaded outfit.
func (s *Session) ChangeOutfit(ctx context.Context, uploads Uploads) (*gateway.Carousel, error) {
	var portrait gateway.Image
	err := s.begin(scene.DressUp, uploads, func() error {
		if s.portrait.Empty() {
			return precondition("%s's photo is missing. Please go back.", s.cast.Honoree)
		}
		if !uploads.has(SlotOutfit) {
			return precondition("Please upload a photo of an outfit!")
		}
		portrait = s.portrait
		return nil
	})
	if err != nil {
		return nil, err
	}

	result, err := s.gw.ChangeOutfit(ctx, portrait, uploads[SlotOutfit])
	if err := s.finish(scene.DressUp, result, err); err != nil {
		return nil, err
	}
	return result, nil
}

// AcceptOutfit makes the dressed-up image the portrait and moves to Food.
func (s *Session) AcceptOutfit() (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if cur := s.nav.Current(); cur != scene.DressUp {
		return View{}, &WrongSceneError{Want: scene.DressUp, Got: cur}
	}
	if s.busy {
		return View{}, ErrBusy
	}
	st := s.stage(scene.DressUp)
	if st.result == nil || len(st.result.Images) == 0 {
		return View{}, precondition("Please upload a photo of an outfit!")
	}
	s.portrait = st.result.First()
	s.advanceLocked(scene.Food)
	return s.viewLocked(), nil
}

// GenerateFood adds a photograph of the craving to the food gallery. A
// failure leaves the gallery as it was.
func (s *Session) GenerateFood(ctx context.Context, name string) (FoodItem, error) {
	name = strings.TrimSpace(name)
	err := s.begin(scene.Food, nil, func() error {
		if name == "" {
			return precondition("Please tell me what you're craving!")
		}
		return nil
	})
	if err != nil {
		return FoodItem{}, err
	}

	result, err := s.gw.GenerateFood(ctx, name)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.busy = false
	st := s.stage(scene.Food)
	if err != nil {
		genErr := generationFailed(scene.Food, err)
		st.status = StatusFailed
		st.err = genErr.(*GenerationError).Message
		log.Error().
			Err(err).
			Str("session", s.ID).
			Str("food", name).
			Msg("Food generation failed")
		return FoodItem{}, genErr
	}

	item := FoodItem{Name: name, Image: result.First()}
	s.foods = append(s.foods, item)
	gallery := &gateway.Carousel{Requested: len(s.foods)}
	for _, f := range s.foods {
		gallery.Images = append(gallery.Images, f.Image)
	}
	st.status = StatusReady
	st.result = gallery
	return item, nil
}

// Food returns the gallery entry at index.
func (s *Session) Food(index int) (FoodItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.foods) {
		return FoodItem{}, false
	}
	return s.foods[index], true
}

// Character returns the kitchen character image, generating it on first
// use. Later calls reuse the cached image.
func (s *Session) Character(ctx context.Context) (gateway.Image, error) {
	s.mu.Lock()
	if s.character != nil {
		img := *s.character
		s.mu.Unlock()
		return img, nil
	}
	s.mu.Unlock()

	result, err := s.gw.GenerateCharacter(ctx)
	if err != nil {
		s.mu.Lock()
		current := s.nav.Current()
		s.mu.Unlock()
		log.Warn().
			Err(err).
			Str("session", s.ID).
			Str("class", string(gateway.Classify(err))).
			Msg("Character generation failed")
		return gateway.Image{}, &GenerationError{Scene: current, Message: characterFailure, Err: err}
	}
	img := result.First()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.character == nil {
		s.character = &img
	}
	return *s.character, nil
}

// GeneratePhotoshoot composites the couple into the travel photoshoot.
func (s *Session) GeneratePhotoshoot(ctx context.Context, uploads Uploads) (*gateway.Carousel, error) {
	err := s.begin(scene.Secret, uploads, func() error {
		if !uploads.has(SlotPartner, SlotHonoree) {
			return precondition("Please upload photos for both %s and %s.", s.cast.Partner, s.cast.Honoree)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result, err := s.gw.CreateCouplePhotoshoot(ctx, uploads[SlotPartner], uploads[SlotHonoree])
	if err := s.finish(scene.Secret, result, err); err != nil {
		return nil, err
	}
	return result, nil
}
