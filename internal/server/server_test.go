package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/learnwithedward/mailcoach/internal/analyzer"
	"github.com/learnwithedward/mailcoach/internal/config"
	"github.com/learnwithedward/mailcoach/internal/dictionary"
	"github.com/learnwithedward/mailcoach/internal/report"
	"github.com/learnwithedward/mailcoach/internal/scenario"
	"github.com/learnwithedward/mailcoach/internal/vocab"
)

type fakeDict struct {
	entry *dictionary.Entry
	err   error
}

func (f *fakeDict) Lookup(context.Context, string) (*dictionary.Entry, error) {
	return f.entry, f.err
}

type fakeTranslator struct {
	out string
	err error
}

func (f *fakeTranslator) Suggest(string) (string, error) { return f.out, f.err }

// captureSink records the most recent event for assertions.
type captureSink struct {
	mu sync.Mutex
	ev *report.Event
}

func (c *captureSink) Name() string { return "capture" }

func (c *captureSink) Deliver(_ context.Context, ev *report.Event) error {
	c.mu.Lock()
	c.ev = ev
	c.mu.Unlock()
	return nil
}

func (c *captureSink) Close(context.Context) error { return nil }

func (c *captureSink) last() *report.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ev
}

type testDeps struct {
	dict       Dictionary
	translator Translator
	emitter    *report.Emitter
}

func newTestServer(t *testing.T, deps testDeps) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Addr:                ":0",
			MaxRequestBodyBytes: 1 << 20,
		},
		Submission: config.SubmissionConfig{MinLength: 20},
	}
	store, err := vocab.Open(filepath.Join(t.TempDir(), "vocab.json"))
	if err != nil {
		t.Fatalf("vocab.Open: %v", err)
	}

	srv := New(cfg, scenario.NewCatalog(scenario.Defaults()), store, deps.dict, deps.translator, deps.emitter)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

type errBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

type submitBody struct {
	Report *analyzer.Report `json:"report"`
	HTML   string           `json:"html"`
}

type addWordBody struct {
	Word vocab.Word `json:"word"`
	Note string     `json:"note"`
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, testDeps{})
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody[map[string]string](t, resp)
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestScenarios(t *testing.T) {
	ts := newTestServer(t, testDeps{})
	resp, err := http.Get(ts.URL + "/v1/scenarios")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	scenarios := decodeBody[[]scenario.Scenario](t, resp)
	if len(scenarios) != len(scenario.Defaults()) {
		t.Errorf("scenarios = %d, want %d", len(scenarios), len(scenario.Defaults()))
	}
}

func TestAnalyze(t *testing.T) {
	ts := newTestServer(t, testDeps{})

	resp := postJSON(t, ts.URL+"/v1/analyze", map[string]string{
		"text":     "Dear Sam, I just wanted to say thank you. Best regards, Alex.",
		"scenario": "Thank You Email",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	rep := decodeBody[analyzer.Report](t, resp)
	if rep.WordCount != 12 {
		t.Errorf("word count = %d, want 12", rep.WordCount)
	}
	if !rep.Features[analyzer.FeatureGreeting].Present {
		t.Error("greeting should be present")
	}
	if got := rep.Smells[analyzer.SmellWeakPhrases]; len(got) != 1 || got[0] != "just" {
		t.Errorf("weak phrases = %v", got)
	}
}

func TestAnalyzeBlankText(t *testing.T) {
	ts := newTestServer(t, testDeps{})
	resp := postJSON(t, ts.URL+"/v1/analyze", map[string]string{"text": "   \n  "})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	body := decodeBody[errBody](t, resp)
	if body.Error.Type != "validation_error" {
		t.Errorf("error type = %q", body.Error.Type)
	}
}

func TestAnalyzeUnknownScenario(t *testing.T) {
	ts := newTestServer(t, testDeps{})
	resp := postJSON(t, ts.URL+"/v1/analyze", map[string]string{
		"text":     "Dear Sam, thank you.",
		"scenario": "No Such Scenario",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	body := decodeBody[errBody](t, resp)
	if body.Error.Type != "not_found" {
		t.Errorf("error type = %q", body.Error.Type)
	}
}

func TestAnalyzeInvalidJSON(t *testing.T) {
	ts := newTestServer(t, testDeps{})
	resp, err := http.Post(ts.URL+"/v1/analyze", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestAnalyzeInlineScenario(t *testing.T) {
	ts := newTestServer(t, testDeps{})
	resp := postJSON(t, ts.URL+"/v1/analyze", map[string]string{
		"text":   "Dear team, about the budget approval.",
		"prompt": "Ask about budget approval",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	rep := decodeBody[analyzer.Report](t, resp)
	if !rep.Features[analyzer.FeaturePurpose].Present {
		t.Error("purpose should be satisfied by inline prompt tokens")
	}
}

func TestHighlight(t *testing.T) {
	ts := newTestServer(t, testDeps{})
	resp := postJSON(t, ts.URL+"/v1/highlight", map[string]string{
		"text":     "Dear Sam, thank you for the project update.",
		"scenario": "Project Update",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody[map[string]string](t, resp)
	html := body["html"]
	if !strings.Contains(html, `title="Greeting"`) {
		t.Errorf("greeting span missing: %q", html)
	}
	if !strings.Contains(html, `title="Scenario keyword"`) {
		t.Errorf("scenario keyword span missing: %q", html)
	}
}

func TestSubmit(t *testing.T) {
	sink := &captureSink{}
	em := report.NewEmitter(report.EmitterConfig{QueueSize: 4, Workers: 1}, []report.Sink{sink})
	ts := newTestServer(t, testDeps{emitter: em})

	resp := postJSON(t, ts.URL+"/v1/submit", map[string]string{
		"text":     "Dear Sam, I am writing to thank you for your help with the project. Best regards, Alex.",
		"scenario": "Thank You Email",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody[submitBody](t, resp)
	if body.Report == nil || body.Report.WordCount == 0 {
		t.Errorf("report missing: %+v", body.Report)
	}
	if !strings.Contains(body.HTML, "<span") {
		t.Errorf("html missing spans: %q", body.HTML)
	}

	em.Close(context.Background())
	ev := sink.last()
	if ev == nil {
		t.Fatal("no practice event recorded")
	}
	if ev.Scenario != "Thank You Email" || ev.Difficulty != scenario.DifficultyEasy {
		t.Errorf("event = %+v", ev)
	}
	if ev.WordCount != body.Report.WordCount {
		t.Errorf("event word count = %d, report = %d", ev.WordCount, body.Report.WordCount)
	}
}

func TestSubmitTooShort(t *testing.T) {
	ts := newTestServer(t, testDeps{})
	resp := postJSON(t, ts.URL+"/v1/submit", map[string]string{
		"text": "   too short   ",
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	body := decodeBody[errBody](t, resp)
	if body.Error.Type != "validation_error" {
		t.Errorf("error type = %q", body.Error.Type)
	}
}

func TestVocabularyList(t *testing.T) {
	ts := newTestServer(t, testDeps{})

	resp, err := http.Get(ts.URL + "/v1/vocabulary")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	words := decodeBody[[]vocab.Word](t, resp)
	if len(words) != len(vocab.Defaults()) {
		t.Errorf("words = %d, want %d defaults", len(words), len(vocab.Defaults()))
	}

	resp, err = http.Get(ts.URL + "/v1/vocabulary?q=scadenza")
	if err != nil {
		t.Fatal(err)
	}
	words = decodeBody[[]vocab.Word](t, resp)
	if len(words) != 1 || words[0].English != "deadline" {
		t.Errorf("search result = %v", words)
	}
}

func TestVocabularyAdd(t *testing.T) {
	ts := newTestServer(t, testDeps{})

	resp := postJSON(t, ts.URL+"/v1/vocabulary", map[string]string{
		"english": "invoice",
		"italian": "fattura",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	created := decodeBody[addWordBody](t, resp)
	if created.Word.English != "invoice" {
		t.Errorf("created = %+v", created.Word)
	}

	// Duplicate, different casing.
	resp = postJSON(t, ts.URL+"/v1/vocabulary", map[string]string{
		"english": "Invoice",
		"italian": "fattura",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want 409", resp.StatusCode)
	}
	body := decodeBody[errBody](t, resp)
	if body.Error.Type != "conflict" {
		t.Errorf("error type = %q", body.Error.Type)
	}
}

func TestVocabularyAddBlankItalian(t *testing.T) {
	t.Run("no translator", func(t *testing.T) {
		ts := newTestServer(t, testDeps{})
		resp := postJSON(t, ts.URL+"/v1/vocabulary", map[string]string{"english": "invoice"})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", resp.StatusCode)
		}
	})

	t.Run("translator suggests", func(t *testing.T) {
		ts := newTestServer(t, testDeps{translator: &fakeTranslator{out: "fattura"}})
		resp := postJSON(t, ts.URL+"/v1/vocabulary", map[string]string{"english": "invoice"})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want 201", resp.StatusCode)
		}
		created := decodeBody[addWordBody](t, resp)
		if created.Word.Italian != "fattura" {
			t.Errorf("italian = %q, want suggested fattura", created.Word.Italian)
		}
	})

	t.Run("translator fails", func(t *testing.T) {
		ts := newTestServer(t, testDeps{translator: &fakeTranslator{err: errors.New("offline")}})
		resp := postJSON(t, ts.URL+"/v1/vocabulary", map[string]string{"english": "invoice"})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", resp.StatusCode)
		}
	})
}

func TestDictionary(t *testing.T) {
	entry := &dictionary.Entry{
		Word:     "deadline",
		Phonetic: "/ˈdɛdlaɪn/",
		Definitions: []dictionary.Definition{
			{PartOfSpeech: "noun", Definition: "A date on or before which something must be completed."},
		},
	}

	t.Run("found", func(t *testing.T) {
		ts := newTestServer(t, testDeps{dict: &fakeDict{entry: entry}})
		resp, err := http.Get(ts.URL + "/v1/dictionary/deadline")
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
		got := decodeBody[dictionary.Entry](t, resp)
		if got.Word != "deadline" || len(got.Definitions) != 1 {
			t.Errorf("entry = %+v", got)
		}
	})

	t.Run("unknown word", func(t *testing.T) {
		ts := newTestServer(t, testDeps{dict: &fakeDict{}})
		resp, err := http.Get(ts.URL + "/v1/dictionary/zzzzz")
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", resp.StatusCode)
		}
		body := decodeBody[errBody](t, resp)
		if body.Error.Type != "not_found" {
			t.Errorf("error type = %q", body.Error.Type)
		}
	})

	t.Run("upstream error", func(t *testing.T) {
		ts := newTestServer(t, testDeps{dict: &fakeDict{err: errors.New("timeout")}})
		resp, err := http.Get(ts.URL + "/v1/dictionary/deadline")
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusBadGateway {
			t.Fatalf("status = %d, want 502", resp.StatusCode)
		}
		body := decodeBody[errBody](t, resp)
		if body.Error.Type != "upstream_error" {
			t.Errorf("error type = %q", body.Error.Type)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		ts := newTestServer(t, testDeps{})
		resp, err := http.Get(ts.URL + "/v1/dictionary/deadline")
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want 503", resp.StatusCode)
		}
	})
}

func TestRequestBodyLimit(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Addr:                ":0",
			MaxRequestBodyBytes: 64,
		},
		Submission: config.SubmissionConfig{MinLength: 20},
	}
	store, err := vocab.Open(filepath.Join(t.TempDir(), "vocab.json"))
	if err != nil {
		t.Fatal(err)
	}
	srv := New(cfg, scenario.NewCatalog(scenario.Defaults()), store, nil, nil, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	big := strings.Repeat("a", 200)
	resp := postJSON(t, ts.URL+"/v1/analyze", map[string]string{"text": big})
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", resp.StatusCode)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, testDeps{})

	resp, err := http.Post(ts.URL+"/v1/scenarios", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST /v1/scenarios status = %d, want 405", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/v1/analyze")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET /v1/analyze status = %d, want 405", resp.StatusCode)
	}
}
