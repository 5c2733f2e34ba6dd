package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/learnwithedward/mailcoach/internal/analyzer"
	"github.com/learnwithedward/mailcoach/internal/config"
	"github.com/learnwithedward/mailcoach/internal/dictionary"
	"github.com/learnwithedward/mailcoach/internal/highlight"
	"github.com/learnwithedward/mailcoach/internal/report"
	"github.com/learnwithedward/mailcoach/internal/scenario"
	"github.com/learnwithedward/mailcoach/internal/vocab"
)

// Translator suggests an Italian rendering of an English term. Nil disables
// auto-suggestion on vocabulary adds.
type Translator interface {
	Suggest(english string) (string, error)
}

// Dictionary looks up an English word. A nil entry with nil error means the
// word is unknown upstream.
type Dictionary interface {
	Lookup(ctx context.Context, word string) (*dictionary.Entry, error)
}

// Server wraps the HTTP components of the practice tool.
type Server struct {
	mux        *http.ServeMux
	cfg        *config.Config
	catalog    *scenario.Catalog
	store      *vocab.Store
	dict       Dictionary
	translator Translator
	emitter    *report.Emitter
}

// New creates a server with all routes registered. dict, translator, and
// emitter may be nil; the corresponding endpoints degrade gracefully.
func New(cfg *config.Config, catalog *scenario.Catalog, store *vocab.Store, dict Dictionary, translator Translator, emitter *report.Emitter) *Server {
	s := &Server{
		mux:        http.NewServeMux(),
		cfg:        cfg,
		catalog:    catalog,
		store:      store,
		dict:       dict,
		translator: translator,
		emitter:    emitter,
	}

	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/v1/scenarios", s.handleScenarios)
	s.mux.HandleFunc("/v1/analyze", s.handleAnalyze)
	s.mux.HandleFunc("/v1/highlight", s.handleHighlight)
	s.mux.HandleFunc("/v1/submit", s.handleSubmit)
	s.mux.HandleFunc("/v1/vocabulary", s.handleVocabulary)
	s.mux.HandleFunc("/v1/dictionary/", s.handleDictionary)

	return s
}

// Handler returns the HTTP handler with the request body cap applied.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxRequestBodyBytes)
		}
		s.mux.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleScenarios(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.catalog.All())
}

// draftRequest is the body shared by analyze, highlight, and submit. The
// scenario is picked by catalog title, or given inline via prompt/context;
// title wins when both are present. Neither set means no scenario keywords
// and Clear Purpose falls back to its fixed word list.
type draftRequest struct {
	Text     string `json:"text"`
	Scenario string `json:"scenario"`
	Prompt   string `json:"prompt"`
	Context  string `json:"context"`
}

func (s *Server) decodeDraft(w http.ResponseWriter, r *http.Request) (draftRequest, scenario.Scenario, bool) {
	var req draftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeAPIError(w, http.StatusRequestEntityTooLarge, "request body too large", "validation_error")
			return req, scenario.Scenario{}, false
		}
		writeAPIError(w, http.StatusBadRequest, "invalid JSON body", "validation_error")
		return req, scenario.Scenario{}, false
	}

	if req.Scenario != "" {
		sc, ok := s.catalog.ByTitle(req.Scenario)
		if !ok {
			writeAPIError(w, http.StatusNotFound, "unknown scenario: "+req.Scenario, "not_found")
			return req, scenario.Scenario{}, false
		}
		return req, sc, true
	}

	return req, scenario.Scenario{
		Prompt:  req.Prompt,
		Context: req.Context,
	}, true
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, sc, ok := s.decodeDraft(w, r)
	if !ok {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeAPIError(w, http.StatusBadRequest, "text must not be blank", "validation_error")
		return
	}

	writeJSON(w, http.StatusOK, analyzer.Analyze(req.Text, sc))
}

func (s *Server) handleHighlight(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, sc, ok := s.decodeDraft(w, r)
	if !ok {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeAPIError(w, http.StatusBadRequest, "text must not be blank", "validation_error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"html": highlight.Render(req.Text, sc),
	})
}

type submitResponse struct {
	Report *analyzer.Report `json:"report"`
	HTML   string           `json:"html"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, sc, ok := s.decodeDraft(w, r)
	if !ok {
		return
	}
	trimmed := strings.TrimSpace(req.Text)
	if trimmed == "" {
		writeAPIError(w, http.StatusBadRequest, "text must not be blank", "validation_error")
		return
	}
	if utf8.RuneCountInString(trimmed) < s.cfg.Submission.MinLength {
		writeAPIError(w, http.StatusUnprocessableEntity, "draft too short to analyze; keep writing", "validation_error")
		return
	}

	rep := analyzer.Analyze(req.Text, sc)
	html := highlight.Render(req.Text, sc)

	s.emitPractice(r.Context(), sc, rep)

	writeJSON(w, http.StatusOK, submitResponse{Report: rep, HTML: html})
}

type addWordRequest struct {
	English    string `json:"english"`
	Italian    string `json:"italian"`
	Definition string `json:"definition"`
	Example    string `json:"example"`
}

type addWordResponse struct {
	Word vocab.Word `json:"word"`
	Note string     `json:"note,omitempty"`
}

func (s *Server) handleVocabulary(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.store.Search(r.URL.Query().Get("q")))

	case http.MethodPost:
		var req addWordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				writeAPIError(w, http.StatusRequestEntityTooLarge, "request body too large", "validation_error")
				return
			}
			writeAPIError(w, http.StatusBadRequest, "invalid JSON body", "validation_error")
			return
		}
		if strings.TrimSpace(req.English) == "" {
			writeAPIError(w, http.StatusBadRequest, "english term must not be blank", "validation_error")
			return
		}

		word := vocab.Word{
			English:    strings.TrimSpace(req.English),
			Italian:    strings.TrimSpace(req.Italian),
			Definition: strings.TrimSpace(req.Definition),
			Example:    strings.TrimSpace(req.Example),
		}

		if word.Italian == "" {
			if s.translator == nil {
				writeAPIError(w, http.StatusBadRequest, "italian term must not be blank", "validation_error")
				return
			}
			suggestion, err := s.translator.Suggest(word.English)
			if err != nil {
				log.Printf("translate suggestion for %q failed: %v", word.English, err)
				writeAPIError(w, http.StatusBadRequest, "italian term must not be blank (auto-suggestion unavailable)", "validation_error")
				return
			}
			word.Italian = suggestion
		}

		if err := s.store.Add(word); err != nil {
			if errors.Is(err, vocab.ErrDuplicate) {
				writeAPIError(w, http.StatusConflict, "word already in vocabulary: "+word.English, "conflict")
				return
			}
			log.Printf("vocabulary add failed: %v", err)
			writeAPIError(w, http.StatusInternalServerError, "could not save word", "internal_error")
			return
		}

		writeJSON(w, http.StatusCreated, addWordResponse{
			Word: word,
			Note: vocab.LanguageNote(word),
		})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleDictionary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	word := strings.TrimPrefix(r.URL.Path, "/v1/dictionary/")
	if word == "" || strings.Contains(word, "/") {
		writeAPIError(w, http.StatusBadRequest, "word must be a single path segment", "validation_error")
		return
	}
	if s.dict == nil {
		writeAPIError(w, http.StatusServiceUnavailable, "dictionary lookups are disabled", "unavailable")
		return
	}

	entry, err := s.dict.Lookup(r.Context(), word)
	if err != nil {
		log.Printf("dictionary lookup %q failed: %v", word, err)
		writeAPIError(w, http.StatusBadGateway, "dictionary service unavailable", "upstream_error")
		return
	}
	if entry == nil {
		writeAPIError(w, http.StatusNotFound, "no dictionary entry for: "+word, "not_found")
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

// emitPractice records the submission outcome. Non-blocking; a full queue
// drops the event.
func (s *Server) emitPractice(ctx context.Context, sc scenario.Scenario, rep *analyzer.Report) {
	if s.emitter == nil {
		return
	}

	var present, missing []string
	for _, name := range analyzer.FeatureNames() {
		if rep.Features[name].Present {
			present = append(present, name)
		} else {
			missing = append(missing, name)
		}
	}

	s.emitter.Emit(ctx, &report.Event{
		Timestamp:       time.Now().UTC(),
		Scenario:        sc.Scenario,
		Difficulty:      sc.Difficulty,
		WordCount:       rep.WordCount,
		SentenceCount:   rep.SentenceCount,
		ParagraphCount:  rep.ParagraphCount,
		FeaturesPresent: present,
		FeaturesMissing: missing,
		Smells:          rep.Smells,
	})
}

type apiErrorBody struct {
	Error apiErrorDetail `json:"error"`
}

type apiErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func writeAPIError(w http.ResponseWriter, status int, message, typ string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiErrorBody{
		Error: apiErrorDetail{
			Message: message,
			Type:    typ,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}
