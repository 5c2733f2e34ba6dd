package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// DefaultBaseURL is the public English dictionary endpoint.
const DefaultBaseURL = "https://api.dictionaryapi.dev/api/v2/entries/en"

const (
	maxResponseBytes = 1 << 20
	retryPause       = 500 * time.Millisecond
)

// Entry is one dictionary entry for a looked-up word.
type Entry struct {
	Word        string       `json:"word"`
	Phonetic    string       `json:"phonetic"`
	Definitions []Definition `json:"definitions"`
}

// Definition is a single sense of a word.
type Definition struct {
	PartOfSpeech string `json:"part_of_speech"`
	Definition   string `json:"definition"`
	Example      string `json:"example,omitempty"`
}

// Client queries the external dictionary API. Lookups are spaced at least
// minInterval apart across all callers to stay friendly to the free tier.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	minInterval time.Duration

	mu   sync.Mutex
	next time.Time
}

// NewClient builds a dictionary client. Zero timeout or interval fall back
// to safe values.
func NewClient(baseURL string, timeout, minInterval time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: timeout},
		minInterval: minInterval,
	}
}

// Lookup fetches the first dictionary entry for word. A word the upstream
// does not know returns (nil, nil); transport and upstream failures return
// an error after one retry.
func (c *Client) Lookup(ctx context.Context, word string) (*Entry, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return nil, fmt.Errorf("dictionary: empty word")
	}

	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	reqURL := c.baseURL + "/" + url.PathEscape(word)

	body, status, err := c.doWithRetry(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("dictionary: upstream returned status %d", status)
	}

	return parseResponse(word, body)
}

// wait blocks until the rate-limit slot opens, honoring ctx cancellation.
func (c *Client) wait(ctx context.Context) error {
	if c.minInterval <= 0 {
		return nil
	}

	c.mu.Lock()
	now := time.Now()
	delay := c.next.Sub(now)
	if delay < 0 {
		delay = 0
	}
	c.next = now.Add(delay + c.minInterval)
	c.mu.Unlock()

	if delay == 0 {
		return nil
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// doWithRetry performs the GET, retrying once after a short pause on a
// network error or 5xx. 404 is a definitive answer, not a failure.
func (c *Client) doWithRetry(ctx context.Context, reqURL string) ([]byte, int, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			t := time.NewTimer(retryPause)
			select {
			case <-t.C:
			case <-ctx.Done():
				t.Stop()
				return nil, 0, ctx.Err()
			}
		}

		body, status, err := c.do(ctx, reqURL)
		if err != nil {
			lastErr = err
			continue
		}
		if status >= 500 {
			lastErr = fmt.Errorf("dictionary: upstream returned status %d", status)
			continue
		}
		return body, status, nil
	}
	return nil, 0, lastErr
}

func (c *Client) do(ctx context.Context, reqURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("dictionary: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("dictionary: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, 0, fmt.Errorf("dictionary: read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

// upstream wire shapes (array of entries, meanings nested by part of speech)
type apiEntry struct {
	Word      string `json:"word"`
	Phonetic  string `json:"phonetic"`
	Phonetics []struct {
		Text string `json:"text"`
	} `json:"phonetics"`
	Meanings []struct {
		PartOfSpeech string `json:"partOfSpeech"`
		Definitions  []struct {
			Definition string `json:"definition"`
			Example    string `json:"example"`
		} `json:"definitions"`
	} `json:"meanings"`
}

func parseResponse(word string, body []byte) (*Entry, error) {
	var entries []apiEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("dictionary: decode response: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	first := entries[0]
	entry := &Entry{
		Word:     first.Word,
		Phonetic: first.Phonetic,
	}
	if entry.Word == "" {
		entry.Word = word
	}
	if entry.Phonetic == "" {
		for _, p := range first.Phonetics {
			if p.Text != "" {
				entry.Phonetic = p.Text
				break
			}
		}
	}
	for _, m := range first.Meanings {
		for _, d := range m.Definitions {
			entry.Definitions = append(entry.Definitions, Definition{
				PartOfSpeech: m.PartOfSpeech,
				Definition:   d.Definition,
				Example:      d.Example,
			})
		}
	}
	return entry, nil
}
