package scene

import "testing"

func feedAll(m *SecretMatcher, keys ...string) bool {
	unlocked := false
	for _, k := range keys {
		if m.Feed(k) {
			unlocked = true
		}
	}
	return unlocked
}

func splitKeys(s string) []string {
	keys := make([]string, 0, len(s))
	for _, r := range s {
		keys = append(keys, string(r))
	}
	return keys
}

func TestSecretMatcher_ExactCode(t *testing.T) {
	m := NewSecretMatcher("")
	if !feedAll(m, splitKeys(DefaultSecretCode)...) {
		t.Fatal("expected unlock after typing the code")
	}
	if m.Buffered() != "" {
		t.Errorf("expected buffer reset after unlock, got %q", m.Buffered())
	}
}

func TestSecretMatcher_CodeAfterNoise(t *testing.T) {
	m := NewSecretMatcher("")
	keys := append(splitKeys("hello world"), splitKeys(DefaultSecretCode)...)
	if !feedAll(m, keys...) {
		t.Fatal("expected unlock when code follows other text")
	}
}

func TestSecretMatcher_NamedKeysIgnored(t *testing.T) {
	m := NewSecretMatcher("")
	keys := []string{"b", "u", "b", "u", "Shift", "@", "Shift", "1", "8", "ArrowLeft", "1", "9"}
	if !feedAll(m, keys...) {
		t.Fatal("named keys other than Backspace must not break the sequence")
	}
}

func TestSecretMatcher_Backspace(t *testing.T) {
	m := NewSecretMatcher("")
	keys := append(splitKeys("bubu@18x"), "Backspace")
	keys = append(keys, "1", "9")
	if !feedAll(m, keys...) {
		t.Fatal("expected backspace to correct the typo")
	}

	m = NewSecretMatcher("")
	if m.Feed("Backspace") {
		t.Fatal("backspace on empty buffer must not unlock")
	}
	if m.Buffered() != "" {
		t.Errorf("expected empty buffer, got %q", m.Buffered())
	}
}

func TestSecretMatcher_BufferBounded(t *testing.T) {
	m := NewSecretMatcher("abc")
	feedAll(m, splitKeys("zzzzzzzzzz")...)
	if got := m.Buffered(); got != "zzz" {
		t.Errorf("expected buffer trimmed to code length, got %q", got)
	}
}

func TestSecretMatcher_WrongCode(t *testing.T) {
	m := NewSecretMatcher("")
	if feedAll(m, splitKeys("bubu@1818")...) {
		t.Error("unexpected unlock for wrong code")
	}
}

func TestKeyListener_OnlyWhileSubscribed(t *testing.T) {
	unlocks := 0
	l := NewKeyListener("ab", func() { unlocks++ })

	l.Key("a")
	if l.Key("b") {
		t.Fatal("keys before Subscribe must be dropped")
	}

	sub := l.Subscribe()
	l.Key("a")
	sub.Close()
	sub.Close()
	if l.Active() {
		t.Fatal("expected listener inactive after Close")
	}

	sub = l.Subscribe()
	defer sub.Close()
	if l.Key("b") {
		t.Fatal("partial code must be forgotten across subscriptions")
	}
	l.Key("a")
	if !l.Key("b") {
		t.Fatal("expected unlock")
	}
	if unlocks != 1 {
		t.Errorf("expected 1 unlock callback, got %d", unlocks)
	}
}

func TestSubscription_NilSafe(t *testing.T) {
	var s *Subscription
	s.Close()
}
