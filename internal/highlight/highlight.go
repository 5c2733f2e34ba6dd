package highlight

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/learnwithedward/mailcoach/internal/scenario"
)

// Highlight categories, in rule priority order.
const (
	CategoryGreeting        = "Greeting"
	CategoryClosing         = "Closing"
	CategoryPolite          = "Polite"
	CategoryInformal        = "Informal"
	CategoryWeakPhrase      = "Weak phrase"
	CategoryComplexWord     = "Complex word"
	CategoryContraction     = "Contraction"
	CategoryHesitation      = "Hesitation"
	CategoryScenarioKeyword = "Scenario keyword"
)

// Scenario keywords are drawn from prompt/context words longer than this.
const minKeywordLen = 4

type rule struct {
	re       *regexp.Regexp
	category string
}

// Fixed-category rules. All whole-word and case-insensitive; matched text
// keeps its original casing.
var fixedRules = []rule{
	{regexp.MustCompile(`(?i)\b(?:dear)\b`), CategoryGreeting},
	{regexp.MustCompile(`(?i)\b(?:regards|sincerely|best|cheers|cordially)\b`), CategoryClosing},
	{regexp.MustCompile(`(?i)\b(?:please|thank you|appreciate|grateful)\b`), CategoryPolite},
	{regexp.MustCompile(`(?i)\b(?:hey|hi|what's up|lol)\b`), CategoryInformal},
	{regexp.MustCompile(`(?i)\b(?:just|maybe|perhaps|a bit)\b`), CategoryWeakPhrase},
	{regexp.MustCompile(`(?i)\b(?:utilize|endeavor|fabricate|elucidate)\b`), CategoryComplexWord},
	{regexp.MustCompile(`(?i)\b(?:don't|can't|won't|isn't)\b`), CategoryContraction},
	{regexp.MustCompile(`(?i)\b(?:i think|i believe|in my opinion)\b`), CategoryHesitation},
}

// segment is a run of learner text with the categories that wrapped it so
// far, outermost first. Rules match segment text only, never emitted markup.
type segment struct {
	text string
	cats []string
}

// Render produces an HTML rendering of the draft with every rule match
// wrapped in a category-tagged span. Rules apply in priority order, each to
// the output of the previous, so a later rule may re-wrap text already
// tagged by an earlier one (earlier rule becomes the outer span). Applying
// Render to its own output is therefore not idempotent. Text is escaped at
// final assembly, so input containing markup syntax stays inert.
func Render(text string, sc scenario.Scenario) string {
	segs := []segment{{text: text}}

	for _, r := range fixedRules {
		segs = applyRule(segs, r)
	}
	for _, r := range scenarioRules(sc) {
		segs = applyRule(segs, r)
	}

	var b strings.Builder
	for _, s := range segs {
		esc := html.EscapeString(s.text)
		for i := len(s.cats) - 1; i >= 0; i-- {
			esc = openTag(s.cats[i]) + esc + "</span>"
		}
		b.WriteString(esc)
	}
	return b.String()
}

// scenarioRules builds one word-boundary rule per distinct word longer than
// minKeywordLen from the lowercased prompt then context, in the order the
// words are encountered. Built fresh per call; there is no shared rule
// registry.
func scenarioRules(sc scenario.Scenario) []rule {
	words := strings.Fields(strings.ToLower(sc.Prompt))
	words = append(words, strings.Fields(strings.ToLower(sc.Context))...)

	seen := make(map[string]struct{}, len(words))
	var rules []rule
	for _, w := range words {
		if utf8.RuneCountInString(w) <= minKeywordLen {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		rules = append(rules, rule{
			re:       regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(w) + `\b`),
			category: CategoryScenarioKeyword,
		})
	}
	return rules
}

// applyRule splits every segment around the rule's matches and tags the
// matched parts. Word-boundary rules only ever split at word boundaries, so
// later rules still see whole words at segment edges. A phrase interrupted
// by an earlier split does not match, mirroring how an inserted tag breaks
// phrase matches in naive sequential re-wrapping.
func applyRule(segs []segment, r rule) []segment {
	out := make([]segment, 0, len(segs))
	for _, s := range segs {
		locs := r.re.FindAllStringIndex(s.text, -1)
		if len(locs) == 0 {
			out = append(out, s)
			continue
		}
		prev := 0
		for _, loc := range locs {
			if loc[0] > prev {
				out = append(out, segment{text: s.text[prev:loc[0]], cats: s.cats})
			}
			cats := make([]string, 0, len(s.cats)+1)
			cats = append(cats, s.cats...)
			cats = append(cats, r.category)
			out = append(out, segment{text: s.text[loc[0]:loc[1]], cats: cats})
			prev = loc[1]
		}
		if prev < len(s.text) {
			out = append(out, segment{text: s.text[prev:], cats: s.cats})
		}
	}
	return out
}

func openTag(category string) string {
	return `<span class="hl hl-` + slug(category) + `" title="` + category + `">`
}

func slug(category string) string {
	return strings.ReplaceAll(strings.ToLower(category), " ", "-")
}
