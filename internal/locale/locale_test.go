package locale

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "en", want: "en"},
		{in: "en-US", want: "en"},
		{in: "pt_BR", want: "pt"},
		{in: "", wantErr: true},
		{in: "no-such-lang-tag!", wantErr: true},
	}
	for _, tt := range tests {
		got, err := Normalize(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Normalize(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("Normalize(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSet_NotifiesSubscribers(t *testing.T) {
	p := NewProvider("en")

	var seen []string
	p.Subscribe(func(lang string) { seen = append(seen, lang) })

	if err := p.Set("fr"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if p.Current() != "fr" {
		t.Errorf("Current = %q, want fr", p.Current())
	}
	if len(seen) != 1 || seen[0] != "fr" {
		t.Errorf("notifications = %v, want [fr]", seen)
	}
}

func TestSet_SameLanguageIsSilent(t *testing.T) {
	p := NewProvider("en")

	calls := 0
	p.Subscribe(func(string) { calls++ })

	_ = p.Set("en")
	_ = p.Set("en-GB") // same base language
	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
}

func TestNewProvider_FallsBackToDefault(t *testing.T) {
	p := NewProvider("???")
	if p.Current() != DefaultLanguage {
		t.Errorf("Current = %q, want %q", p.Current(), DefaultLanguage)
	}
}
