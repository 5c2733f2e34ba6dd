package vocab

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/abadojack/whatlanggo"
)

// Word is one bilingual vocabulary entry. Definition and Example are
// optional. The dedup key is the English term, compared case-insensitively.
type Word struct {
	English    string `json:"english"`
	Italian    string `json:"italian"`
	Definition string `json:"definition"`
	Example    string `json:"example"`
}

// ErrDuplicate is returned by Add when the English term already exists
// (case-insensitively).
var ErrDuplicate = errors.New("vocab: word already exists")

// Store is an append-only vocabulary list backed by a flat JSON file.
// Entries are never updated or deleted. Writers are serialized internally.
type Store struct {
	path string

	mu    sync.Mutex
	words []Word
	index map[string]struct{}
}

// Open loads the vocabulary from path, merging in any built-in defaults not
// already present (file entries win on the case-insensitive English key). A
// missing file starts the store from the defaults alone; nothing is written
// until the first Add.
func Open(path string) (*Store, error) {
	s := &Store{
		path:  path,
		index: make(map[string]struct{}),
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			var loaded []Word
			if err := json.Unmarshal(data, &loaded); err != nil {
				return nil, fmt.Errorf("vocab: parse %s: %w", path, err)
			}
			for _, w := range loaded {
				s.insert(w)
			}
		case os.IsNotExist(err):
			// fresh store
		default:
			return nil, fmt.Errorf("vocab: read %s: %w", path, err)
		}
	}

	for _, w := range Defaults() {
		s.insert(w)
	}

	return s, nil
}

// insert adds w in memory unless its key is taken. Callers hold no lock;
// only Open uses it, before the store is shared.
func (s *Store) insert(w Word) {
	key := dedupKey(w.English)
	if key == "" {
		return
	}
	if _, dup := s.index[key]; dup {
		return
	}
	s.index[key] = struct{}{}
	s.words = append(s.words, w)
}

// Add appends a new word and rewrites the backing file. The English term is
// the identity: "Deadline" and "deadline" are the same entry.
func (s *Store) Add(w Word) error {
	w.English = strings.TrimSpace(w.English)
	w.Italian = strings.TrimSpace(w.Italian)

	key := dedupKey(w.English)
	if key == "" {
		return errors.New("vocab: english term is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.index[key]; dup {
		return ErrDuplicate
	}

	words := append(append([]Word{}, s.words...), w)
	if s.path != "" {
		if err := writeFile(s.path, words); err != nil {
			return err
		}
	}

	s.index[key] = struct{}{}
	s.words = words
	return nil
}

// Words returns all entries sorted by English term.
func (s *Store) Words() []Word {
	s.mu.Lock()
	out := make([]Word, len(s.words))
	copy(out, s.words)
	s.mu.Unlock()

	sortWords(out)
	return out
}

// Search returns entries whose English or Italian term contains the query,
// case-insensitively, sorted by English term.
func (s *Store) Search(query string) []Word {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return s.Words()
	}

	s.mu.Lock()
	var out []Word
	for _, w := range s.words {
		if strings.Contains(strings.ToLower(w.English), q) ||
			strings.Contains(strings.ToLower(w.Italian), q) {
			out = append(out, w)
		}
	}
	s.mu.Unlock()

	sortWords(out)
	return out
}

// Len reports the number of stored words.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.words)
}

// LanguageNote flags entries whose fields look swapped. Detection on single
// short terms is unreliable, so only multi-word text with a reliable
// detection produces a note; the add itself always proceeds.
func LanguageNote(w Word) string {
	if looksLike(w.English, whatlanggo.Ita) {
		return fmt.Sprintf("%q looks Italian; english and italian may be swapped", w.English)
	}
	if looksLike(w.Italian, whatlanggo.Eng) {
		return fmt.Sprintf("%q looks English; english and italian may be swapped", w.Italian)
	}
	return ""
}

func looksLike(text string, lang whatlanggo.Lang) bool {
	if len(strings.Fields(text)) < 2 {
		return false
	}
	info := whatlanggo.Detect(text)
	return info.IsReliable() && info.Lang == lang
}

func dedupKey(english string) string {
	return strings.ToLower(strings.TrimSpace(english))
}

func sortWords(words []Word) {
	sort.Slice(words, func(i, j int) bool {
		return strings.ToLower(words[i].English) < strings.ToLower(words[j].English)
	})
}

func writeFile(path string, words []Word) error {
	data, err := json.MarshalIndent(words, "", "  ")
	if err != nil {
		return fmt.Errorf("vocab: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil && !os.IsExist(err) {
		return fmt.Errorf("vocab: create dirs: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("vocab: write %s: %w", path, err)
	}
	return nil
}

// Defaults returns the built-in business vocabulary.
func Defaults() []Word {
	return []Word{
		{English: "deadline", Italian: "scadenza"},
		{English: "stakeholder", Italian: "portatore di interessi"},
		{English: "milestone", Italian: "pietra miliare"},
		{English: "deliverable", Italian: "risultato consegnabile"},
		{English: "benchmark", Italian: "punto di riferimento"},
		{English: "feedback", Italian: "riscontro"},
		{English: "follow-up", Italian: "follow-up"},
		{English: "brainstorming", Italian: "brainstorming"},
		{English: "workshop", Italian: "workshop"},
		{English: "quarterly", Italian: "trimestrale"},
		{English: "sustainable", Italian: "sostenibile"},
		{English: "streamline", Italian: "razionalizzare"},
		{English: "leverage", Italian: "sfruttare"},
		{English: "synergy", Italian: "sinergia"},
		{English: "bandwidth", Italian: "capacità"},
		{English: "actionable", Italian: "attuabile"},
		{English: "roadmap", Italian: "roadmap"},
		{English: "onboarding", Italian: "onboarding"},
		{English: "touchpoint", Italian: "punto di contatto"},
		{English: "upskill", Italian: "migliorare le competenze"},
	}
}
