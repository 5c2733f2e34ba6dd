// Package translate suggests Italian renderings of English vocabulary via
// the unofficial Google Translate endpoint. Suggestions are best-effort;
// callers fall back to manual entry when the service is unreachable.
package translate

import (
	"fmt"
	"strings"
	"time"

	"github.com/bregydoc/gtranslate"
)

// Suggester translates English business terms to Italian.
type Suggester struct {
	tries int
	delay time.Duration
}

// NewSuggester builds a Suggester retrying up to tries times with delay
// between attempts. Non-positive values fall back to 2 tries, 500ms.
func NewSuggester(tries int, delay time.Duration) *Suggester {
	if tries <= 0 {
		tries = 2
	}
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	return &Suggester{tries: tries, delay: delay}
}

// Suggest returns an Italian translation of the English term.
func (s *Suggester) Suggest(english string) (string, error) {
	english = strings.TrimSpace(english)
	if english == "" {
		return "", fmt.Errorf("translate: empty term")
	}

	out, err := gtranslate.TranslateWithParams(english, gtranslate.TranslationParams{
		From:       "en",
		To:         "it",
		Tries:      s.tries,
		Delay:      s.delay,
		GoogleHost: "google.com",
	})
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("translate: empty result for %q", english)
	}
	return out, nil
}
