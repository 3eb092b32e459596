// Package ambient manages the background music track shared by every
// session in the process.
//
// The browser-side player is a single embedded video element; the server
// keeps one process-scoped Player describing it. Sessions acquire a Handle
// when they start and release it on teardown. The first acquisition
// initialises the player, the last release tears it down, and releasing a
// handle twice is harmless.
package ambient

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Track describes the looping background track.
type Track struct {
	VideoID string  `json:"videoId"`
	Volume  float64 `json:"volume"`
	Loop    bool    `json:"loop"`
}

// DefaultTrack is the lofi mix the presentation plays once the intro ends.
var DefaultTrack = Track{VideoID: "rUxyKA_-grg", Volume: 0.5, Loop: true}

// Player is the process-wide ambient audio resource.
type Player struct {
	mu      sync.Mutex
	track   Track
	holders int
	ready   bool
}

var (
	defaultPlayer     *Player
	defaultPlayerOnce sync.Once
)

// Default returns the process-scoped Player, creating it on first use.
func Default() *Player {
	defaultPlayerOnce.Do(func() {
		defaultPlayer = NewPlayer(DefaultTrack)
	})
	return defaultPlayer
}

// NewPlayer returns an idle player for track. Most callers want Default;
// tests build their own.
func NewPlayer(track Track) *Player {
	return &Player{track: track}
}

// Acquire registers a new holder and returns its handle. The handle starts
// muted, matching browser autoplay rules.
func (p *Player) Acquire() *Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ready {
		p.ready = true
		log.Debug().Str("videoId", p.track.VideoID).Msg("Ambient player initialised")
	}
	p.holders++
	return &Handle{player: p, muted: true}
}

// Holders returns the number of live handles.
func (p *Player) Holders() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.holders
}

// Ready reports whether the player is initialised.
func (p *Player) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready
}

func (p *Player) release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.holders == 0 {
		return
	}
	p.holders--
	if p.holders == 0 {
		p.ready = false
		log.Debug().Str("videoId", p.track.VideoID).Msg("Ambient player torn down")
	}
}

// Handle is one session's claim on the player.
type Handle struct {
	player   *Player
	mu       sync.Mutex
	muted    bool
	released bool
}

// Unmute turns the session's audio on. It is safe to call repeatedly.
func (h *Handle) Unmute() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.muted = false
}

// Release gives the handle back. Only the first call has an effect.
func (h *Handle) Release() {
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return
	}
	h.released = true
	h.muted = true
	h.mu.Unlock()
	h.player.release()
}

// State is what the front end needs to drive its embedded player.
type State struct {
	Track
	Playing bool `json:"playing"`
}

// State reports the track and whether this handle is audible.
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return State{Track: h.player.track, Playing: !h.muted && !h.released}
}
