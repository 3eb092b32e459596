package scene

// Navigator owns the navigation state of one session: the displayed scene,
// the history of scenes that led to it, and the ambient-audio latch.
//
// Invariant: history never contains the current scene. Advance pushes the
// current scene before replacing it; Retreat pops the tail back into current.
//
// A Navigator is not safe for concurrent use; the owning session serialises
// access to it.
type Navigator struct {
	current      Scene
	history      []Scene
	audioEnabled bool
	onAudio      func()
}

// Option configures a Navigator.
type Option func(*Navigator)

// WithAudioHook registers fn to run exactly once, the first time the
// audio latch flips on.
func WithAudioHook(fn func()) Option {
	return func(n *Navigator) {
		n.onAudio = fn
	}
}

// NewNavigator returns a Navigator positioned on Intro with empty history.
func NewNavigator(opts ...Option) *Navigator {
	n := &Navigator{current: Intro}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Current returns the displayed scene.
func (n *Navigator) Current() Scene {
	return n.current
}

// History returns a copy of the back stack, oldest first.
func (n *Navigator) History() []Scene {
	out := make([]Scene, len(n.history))
	copy(out, n.history)
	return out
}

// AudioEnabled reports whether ambient audio has been switched on.
// Once true it stays true for the life of the Navigator.
func (n *Navigator) AudioEnabled() bool {
	return n.audioEnabled
}

// Advance moves to target. Any scene may follow any scene; the narrative
// order is a UI concern (see Next).
func (n *Navigator) Advance(target Scene) {
	if target != Intro && !n.audioEnabled {
		n.audioEnabled = true
		if n.onAudio != nil {
			n.onAudio()
		}
	}
	n.history = append(n.history, n.current)
	n.current = target
}

// Retreat returns to the previous scene. It is a no-op on empty history and
// never touches the audio latch.
func (n *Navigator) Retreat() {
	if len(n.history) == 0 {
		return
	}
	last := len(n.history) - 1
	n.current = n.history[last]
	n.history = n.history[:last]
}

// BackVisible reports whether the back affordance is shown on s.
func BackVisible(s Scene) bool {
	return s != Intro && s != Secret
}

// State is a point-in-time copy of a Navigator, shaped for rendering.
type State struct {
	Current      Scene   `json:"current"`
	History      []Scene `json:"history"`
	AudioEnabled bool    `json:"audioEnabled"`
	BackVisible  bool    `json:"backVisible"`
	Theme        Theme   `json:"theme"`
}

// Snapshot captures the current navigation state.
func (n *Navigator) Snapshot() State {
	return State{
		Current:      n.current,
		History:      n.History(),
		AudioEnabled: n.audioEnabled,
		BackVisible:  BackVisible(n.current),
		Theme:        ThemeFor(n.current),
	}
}
