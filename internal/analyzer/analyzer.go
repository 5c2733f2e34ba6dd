package analyzer

import (
	"strings"

	"github.com/learnwithedward/mailcoach/internal/scenario"
)

// Feature names reported by Analyze.
const (
	FeatureGreeting = "Greeting"
	FeatureClosing  = "Closing"
	FeaturePolite   = "Polite Language"
	FeaturePurpose  = "Clear Purpose"
	FeatureTone     = "Professional Tone"
)

// Smell names reported by Analyze.
const (
	SmellPassiveVoice  = "Passive voice"
	SmellLongSentences = "Long sentences"
	SmellComplexWords  = "Complex words"
	SmellContractions  = "Contractions"
	SmellWeakPhrases   = "Weak phrases"
)

// Feature is a binary structural property of an email with its
// recommendation text. The message is the same whether the feature is
// present or missing; the UI decides how to phrase pass/fail around it.
type Feature struct {
	Present bool   `json:"present"`
	Message string `json:"message"`
}

// Report is the result of analyzing one email draft. It is derived data,
// never persisted.
type Report struct {
	WordCount      int                 `json:"word_count"`
	SentenceCount  int                 `json:"sentence_count"`
	ParagraphCount int                 `json:"paragraph_count"`
	Features       map[string]Feature  `json:"features"`
	Smells         map[string][]string `json:"smells"`
}

// FeatureNames lists the features in display order.
func FeatureNames() []string {
	return []string{FeatureGreeting, FeatureClosing, FeaturePolite, FeaturePurpose, FeatureTone}
}

const (
	longSentenceTokens = 25
	evidenceSnippetLen = 50
)

var (
	closingWords  = []string{"regards", "sincerely", "best", "cheers", "cordially"}
	politeWords   = []string{"please", "thank you", "appreciate", "grateful"}
	purposeWords  = []string{"purpose", "reason", "writing", "contacting"}
	informalWords = []string{"hey", "hi", "what's up", "lol"}

	passiveMarkers = []string{"was done", "were given", "is being", "has been"}
	complexWords   = []string{"utilize", "endeavor", "fabricate", "elucidate"}
	contractions   = []string{"don't", "can't", "won't", "isn't"}
	weakPhrases    = []string{"i think", "just", "maybe", "perhaps", "a bit"}
)

const (
	msgGreeting = "Should include a proper greeting (e.g., 'Dear [Name]')"
	msgClosing  = "Should include a proper closing (e.g., 'Best regards')"
	msgPolite   = "Should include polite phrases"
	msgPurpose  = "Should clearly state the purpose of the email"
	msgTone     = "Should maintain professional tone"
)

// Analyze evaluates an email draft against the structure features and style
// smells. It is a pure function: total over any string input, no side
// effects, safe to call concurrently. Callers normally skip blank drafts;
// invoked directly on one it returns zero counts with only Professional Tone
// vacuously present.
func Analyze(text string, sc scenario.Scenario) *Report {
	lower := strings.ToLower(text)

	r := &Report{
		WordCount:      len(strings.Fields(text)),
		SentenceCount:  countSentences(text),
		ParagraphCount: countParagraphs(text),
		Features:       make(map[string]Feature, 5),
		Smells:         make(map[string][]string),
	}

	// Clear Purpose also accepts any whitespace token of the lowercased
	// prompt, short words included.
	promptTokens := strings.Fields(strings.ToLower(sc.Prompt))

	r.Features[FeatureGreeting] = Feature{
		Present: strings.Contains(lower, "dear"),
		Message: msgGreeting,
	}
	r.Features[FeatureClosing] = Feature{
		Present: containsAny(lower, closingWords),
		Message: msgClosing,
	}
	r.Features[FeaturePolite] = Feature{
		Present: containsAny(lower, politeWords),
		Message: msgPolite,
	}
	r.Features[FeaturePurpose] = Feature{
		Present: containsAny(lower, purposeWords) || containsAny(lower, promptTokens),
		Message: msgPurpose,
	}
	r.Features[FeatureTone] = Feature{
		Present: !containsAny(lower, informalWords),
		Message: msgTone,
	}

	if ev := findPhrases(lower, passiveMarkers); len(ev) > 0 {
		r.Smells[SmellPassiveVoice] = ev
	}
	if ev := longSentences(text); len(ev) > 0 {
		r.Smells[SmellLongSentences] = ev
	}
	if ev := findPhrases(lower, complexWords); len(ev) > 0 {
		r.Smells[SmellComplexWords] = ev
	}
	if ev := findPhrases(lower, contractions); len(ev) > 0 {
		r.Smells[SmellContractions] = ev
	}
	if ev := findPhrases(lower, weakPhrases); len(ev) > 0 {
		r.Smells[SmellWeakPhrases] = ev
	}

	return r
}

// countSentences counts non-empty segments splitting on the literal '.'.
// This undercounts or overcounts around abbreviations and missing terminal
// punctuation; that is the specified algorithm.
func countSentences(text string) int {
	n := 0
	for _, s := range strings.Split(text, ".") {
		if strings.TrimSpace(s) != "" {
			n++
		}
	}
	return n
}

// countParagraphs counts non-empty segments splitting on a blank line.
func countParagraphs(text string) int {
	n := 0
	for _, p := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(p) != "" {
			n++
		}
	}
	return n
}

// containsAny reports whether lower contains any of the phrases as a
// substring. Phrases are already lowercase.
func containsAny(lower string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// findPhrases returns the rule phrases found in lower, in rule order.
func findPhrases(lower string, phrases []string) []string {
	var found []string
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			found = append(found, p)
		}
	}
	return found
}

// longSentences returns a truncated evidence snippet for every '.'-split
// sentence with more than longSentenceTokens whitespace tokens, in original
// order.
func longSentences(text string) []string {
	var out []string
	for _, s := range strings.Split(text, ".") {
		if len(strings.Fields(s)) <= longSentenceTokens {
			continue
		}
		out = append(out, snippet(strings.TrimSpace(s)))
	}
	return out
}

func snippet(s string) string {
	runes := []rune(s)
	if len(runes) > evidenceSnippetLen {
		runes = runes[:evidenceSnippetLen]
	}
	return string(runes) + "..."
}
