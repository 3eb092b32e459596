package scene

import (
	"sync"
	"unicode/utf8"
)

// DefaultSecretCode unlocks the Secret scene from Closing.
const DefaultSecretCode = "bubu@1819"

// keyBackspace is the only named key the matcher reacts to.
const keyBackspace = "Backspace"

// SecretMatcher watches a stream of key events for a fixed code.
//
// Keys are either single characters ("b", "@", "1") or named keys
// ("Shift", "Enter", "Backspace"). Named keys other than Backspace are
// ignored, so holding Shift to type "@" never breaks a sequence: the
// browser reports the shifted character as its own single-character key.
// Backspace drops the last typed rune. After every key the buffer is
// checked for the code as a suffix; on a miss it is trimmed to the last
// len(code) runes.
type SecretMatcher struct {
	code   []rune
	buffer []rune
}

// NewSecretMatcher returns a matcher for code. An empty code falls back to
// DefaultSecretCode.
func NewSecretMatcher(code string) *SecretMatcher {
	if code == "" {
		code = DefaultSecretCode
	}
	return &SecretMatcher{code: []rune(code)}
}

// Feed processes one key event and reports whether it completed the code.
// A successful match clears the buffer.
func (m *SecretMatcher) Feed(key string) bool {
	switch {
	case key == keyBackspace:
		if len(m.buffer) > 0 {
			m.buffer = m.buffer[:len(m.buffer)-1]
		}
	case utf8.RuneCountInString(key) == 1:
		r, _ := utf8.DecodeRuneInString(key)
		m.buffer = append(m.buffer, r)
	default:
		return false
	}

	if m.hasSuffix() {
		m.buffer = m.buffer[:0]
		return true
	}
	if extra := len(m.buffer) - len(m.code); extra > 0 {
		m.buffer = append(m.buffer[:0], m.buffer[extra:]...)
	}
	return false
}

// Buffered returns what the matcher currently remembers.
func (m *SecretMatcher) Buffered() string {
	return string(m.buffer)
}

func (m *SecretMatcher) hasSuffix() bool {
	if len(m.buffer) < len(m.code) {
		return false
	}
	tail := m.buffer[len(m.buffer)-len(m.code):]
	for i, r := range m.code {
		if tail[i] != r {
			return false
		}
	}
	return true
}

// Subscription is a scoped listener registration. Close is idempotent and
// must be called on every exit path of the scope that created it.
type Subscription struct {
	once    sync.Once
	release func()
}

// NewSubscription wraps release so it runs at most once.
func NewSubscription(release func()) *Subscription {
	return &Subscription{release: release}
}

// Close releases the subscription.
func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.release != nil {
			s.release()
		}
	})
}

// KeyListener routes key events to a SecretMatcher while subscribed.
type KeyListener struct {
	mu       sync.Mutex
	matcher  *SecretMatcher
	onUnlock func()
	active   bool
}

// NewKeyListener builds a listener that calls onUnlock when code is typed.
func NewKeyListener(code string, onUnlock func()) *KeyListener {
	return &KeyListener{matcher: NewSecretMatcher(code), onUnlock: onUnlock}
}

// Subscribe starts routing keys. The returned Subscription stops routing
// and forgets any partially typed code when closed.
func (l *KeyListener) Subscribe() *Subscription {
	l.mu.Lock()
	l.active = true
	l.mu.Unlock()
	return NewSubscription(func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.active = false
		l.matcher.buffer = l.matcher.buffer[:0]
	})
}

// Active reports whether the listener is currently subscribed.
func (l *KeyListener) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// Key delivers one key event. Events outside a subscription are dropped.
// It reports whether the event unlocked the secret.
func (l *KeyListener) Key(key string) bool {
	l.mu.Lock()
	if !l.active {
		l.mu.Unlock()
		return false
	}
	unlocked := l.matcher.Feed(key)
	l.mu.Unlock()

	if unlocked && l.onUnlock != nil {
		l.onUnlock()
	}
	return unlocked
}
