package token

import (
	"path/filepath"
	"testing"
)

func TestAcquire_MintsOncePerMode(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "session.json"))

	first, err := s.Acquire("training")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if first.Token == "" || first.Mode != "training" {
		t.Fatalf("token = %+v", first)
	}

	second, err := s.Acquire("training")
	if err != nil {
		t.Fatalf("Acquire again: %v", err)
	}
	if second.Token != first.Token {
		t.Errorf("token changed within one session: %s vs %s", first.Token, second.Token)
	}
}

func TestAcquire_SurvivesReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	first, err := NewStore(path).Acquire("challenge")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	// A fresh store over the same file models resume-after-suspend.
	resumed, err := NewStore(path).Acquire("challenge")
	if err != nil {
		t.Fatalf("Acquire after reload: %v", err)
	}
	if resumed.Token != first.Token {
		t.Errorf("resumed token = %s, want %s", resumed.Token, first.Token)
	}
}

func TestAcquire_ModeChangeMintsNewToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s := NewStore(path)

	training, _ := s.Acquire("training")
	challenge, err := s.Acquire("challenge")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if challenge.Token == training.Token {
		t.Error("expected a fresh token for a different mode")
	}
}

func TestClear_ForgetsToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s := NewStore(path)

	first, _ := s.Acquire("training")
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if s.Current() != nil {
		t.Error("Current should be nil after Clear")
	}

	next, err := NewStore(path).Acquire("training")
	if err != nil {
		t.Fatalf("Acquire after Clear: %v", err)
	}
	if next.Token == first.Token {
		t.Error("stale token reused after Clear")
	}
}

func TestClear_NoTokenIsFine(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "session.json"))
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear on empty store: %v", err)
	}
}
