package locale

import (
	"fmt"
	"sync"

	"golang.org/x/text/language"
)

// DefaultLanguage is used when no language is configured.
const DefaultLanguage = "en"

// Provider holds the current display language and notifies subscribers
// when it changes. The connection manager subscribes so a change is
// forwarded on the live session without a reconnect.
type Provider struct {
	mu      sync.Mutex
	current string
	subs    []func(lang string)
}

// NewProvider creates a provider. An invalid or empty initial code falls
// back to DefaultLanguage.
func NewProvider(initial string) *Provider {
	lang, err := Normalize(initial)
	if err != nil {
		lang = DefaultLanguage
	}
	return &Provider{current: lang}
}

// Current returns the active language code.
func (p *Provider) Current() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Set switches the language and notifies subscribers. Setting the current
// language again is a no-op so subscribers never see duplicate changes.
func (p *Provider) Set(code string) error {
	lang, err := Normalize(code)
	if err != nil {
		return err
	}

	p.mu.Lock()
	if lang == p.current {
		p.mu.Unlock()
		return nil
	}
	p.current = lang
	subs := make([]func(string), len(p.subs))
	copy(subs, p.subs)
	p.mu.Unlock()

	for _, fn := range subs {
		fn(lang)
	}
	return nil
}

// Subscribe registers a change callback. Callbacks run synchronously on
// the goroutine calling Set.
func (p *Provider) Subscribe(fn func(lang string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subs = append(p.subs, fn)
}

// Normalize validates a BCP-47 code and returns its canonical base form
// ("en-US" → "en").
func Normalize(code string) (string, error) {
	tag, err := language.Parse(code)
	if err != nil {
		return "", fmt.Errorf("invalid language %q: %w", code, err)
	}
	base, _ := tag.Base()
	return base.String(), nil
}
