// Package session holds the in-memory state of one presentation run and the
// scene flows that connect the Navigator to the Gateway.
//
// A scene flow checks that its scene is displayed and that its inputs are
// present, calls the Gateway without holding the session lock, and only
// then records the result. The Navigator is touched after the call
// resolves. Nothing is persisted; a session disappears when it expires or
// is deleted.
package session

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/birthday-surprise/internal/ambient"
	"github.com/fpang/birthday-surprise/internal/assets"
	"github.com/fpang/birthday-surprise/internal/gateway"
	"github.com/fpang/birthday-surprise/internal/scene"
)

// Status is the lifecycle of a scene's generation.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusGenerating Status = "generating"
	StatusReady      Status = "ready"
	StatusFailed     Status = "failed"
)

// stage is one scene's transient upload and result state.
type stage struct {
	status   Status
	err      string
	uploaded []string
	result   *gateway.Carousel
}

// FoodItem is one entry of the food gallery.
type FoodItem struct {
	Name  string
	Image gateway.Image
}

// Session is one browser's presentation run.
type Session struct {
	ID        string
	CreatedAt time.Time

	gw   *gateway.Gateway
	cast assets.Cast
	now  func() time.Time

	mu        sync.Mutex
	lastSeen  time.Time
	nav       *scene.Navigator
	audio     *ambient.Handle
	keys      *scene.KeyListener
	keySub    *scene.Subscription
	busy      bool
	closed    bool
	stages    map[scene.Scene]*stage
	portrait  gateway.Image
	foods     []FoodItem
	character *gateway.Image
}

func newSession(id string, gw *gateway.Gateway, player *ambient.Player, secretCode string, now func() time.Time) *Session {
	s := &Session{
		ID:        id,
		CreatedAt: now(),
		gw:        gw,
		cast:      gw.Cast(),
		now:       now,
		lastSeen:  now(),
		audio:     player.Acquire(),
		keys:      scene.NewKeyListener(secretCode, nil),
		stages:    make(map[scene.Scene]*stage),
	}
	s.nav = scene.NewNavigator(scene.WithAudioHook(s.audio.Unmute))
	return s
}

// StageView is the client-facing summary of a scene's generation state.
type StageView struct {
	Status    Status   `json:"status"`
	Error     string   `json:"error,omitempty"`
	Uploaded  []string `json:"uploaded,omitempty"`
	Images    int      `json:"images,omitempty"`
	Requested int      `json:"requested,omitempty"`
}

// View is the JSON snapshot sent to the front end.
type View struct {
	ID string `json:"id"`
	scene.State
	Audio       ambient.State             `json:"audio"`
	Listening   bool                      `json:"listening"`
	Busy        bool                      `json:"busy"`
	Cast        assets.Cast               `json:"cast"`
	HasPortrait bool                      `json:"hasPortrait"`
	Stages      map[scene.Scene]StageView `json:"stages,omitempty"`
	Foods       []string                  `json:"foods,omitempty"`
}

// Snapshot returns the current view.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	v := View{
		ID:          s.ID,
		State:       s.nav.Snapshot(),
		Audio:       s.audio.State(),
		Listening:   s.keys.Active(),
		Busy:        s.busy,
		Cast:        s.cast,
		HasPortrait: !s.portrait.Empty(),
	}
	if len(s.stages) > 0 {
		v.Stages = make(map[scene.Scene]StageView, len(s.stages))
		for sc, st := range s.stages {
			sv := StageView{Status: st.status, Error: st.err, Uploaded: append([]string(nil), st.uploaded...)}
			if st.result != nil {
				sv.Images = len(st.result.Images)
				sv.Requested = st.result.Requested
			}
			v.Stages[sc] = sv
		}
	}
	for _, f := range s.foods {
		v.Foods = append(v.Foods, f.Name)
	}
	return v
}

// Advance moves to target. Any scene may follow any scene.
func (s *Session) Advance(target scene.Scene) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.advanceLocked(target)
	return s.viewLocked()
}

// AdvanceNext moves to the next scene of the narrative. It reports false
// when the current scene has no successor.
func (s *Session) AdvanceNext() (View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	next, ok := scene.Next(s.nav.Current())
	if ok {
		s.advanceLocked(next)
	}
	return s.viewLocked(), ok
}

// Back returns to the previous scene; with no history it does nothing.
func (s *Session) Back() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.nav.Retreat()
	s.syncListenerLocked()
	return s.viewLocked()
}

// Key delivers one key press to the secret-code listener. Keys only count
// while the Closing scene is displayed; typing the code opens Secret.
func (s *Session) Key(key string) (bool, View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	unlocked := s.keys.Key(key)
	if unlocked {
		log.Info().Str("session", s.ID).Msg("Secret code entered")
		s.advanceLocked(scene.Secret)
	}
	return unlocked, s.viewLocked()
}

func (s *Session) advanceLocked(target scene.Scene) {
	s.nav.Advance(target)
	s.syncListenerLocked()
	log.Debug().
		Str("session", s.ID).
		Stringer("scene", target).
		Msg("Scene advanced")
}

// syncListenerLocked keeps the key subscription scoped to the Closing scene,
// however the scene is left.
func (s *Session) syncListenerLocked() {
	onClosing := s.nav.Current() == scene.Closing
	switch {
	case onClosing && s.keySub == nil && !s.closed:
		s.keySub = s.keys.Subscribe()
	case !onClosing && s.keySub != nil:
		s.keySub.Close()
		s.keySub = nil
	}
}

// Result returns the latest carousel produced in sc.
func (s *Session) Result(sc scene.Scene) (*gateway.Carousel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	st, ok := s.stages[sc]
	if !ok || st.result == nil {
		return nil, false
	}
	return st.result, true
}

// Portrait returns the portrait carried forward from the Photo scene.
func (s *Session) Portrait() (gateway.Image, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.portrait, !s.portrait.Empty()
}

// LastSeen reports the last time the session was used.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Close releases the session's audio handle and key subscription. It is
// safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.keySub != nil {
		s.keySub.Close()
		s.keySub = nil
	}
	s.audio.Release()
}

func (s *Session) touch() {
	s.lastSeen = s.now()
}

func (s *Session) stage(sc scene.Scene) *stage {
	st, ok := s.stages[sc]
	if !ok {
		st = &stage{status: StatusIdle}
		s.stages[sc] = st
	}
	return st
}
