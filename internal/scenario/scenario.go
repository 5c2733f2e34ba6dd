package scenario

import (
	"encoding/json"
	"log"
	"os"
)

// Difficulty tiers used by the catalog.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// Scenario is a writing prompt bundle presented to the learner.
type Scenario struct {
	Scenario   string `json:"scenario"`
	Prompt     string `json:"prompt"`
	Context    string `json:"context"`
	Difficulty string `json:"difficulty"`
}

// Catalog holds the scenarios available for a session. Scenarios are loaded
// once at startup and never mutated afterwards.
type Catalog struct {
	scenarios []Scenario
	byTitle   map[string]int
}

// Load reads the scenario catalog from a JSON file (an array of scenario
// objects). A missing, unreadable, or malformed file falls back to the
// built-in defaults so the tool always has something to practice on.
func Load(path string) *Catalog {
	if path == "" {
		return NewCatalog(Defaults())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("scenario: cannot read %s: %v; using built-in catalog", path, err)
		}
		return NewCatalog(Defaults())
	}

	var scenarios []Scenario
	if err := json.Unmarshal(data, &scenarios); err != nil {
		log.Printf("scenario: cannot parse %s: %v; using built-in catalog", path, err)
		return NewCatalog(Defaults())
	}
	if len(scenarios) == 0 {
		return NewCatalog(Defaults())
	}

	return NewCatalog(scenarios)
}

// NewCatalog builds a catalog from a scenario list. Duplicate titles confuse
// selection, so they are logged; the first entry wins for title lookup but
// all entries stay listed.
func NewCatalog(scenarios []Scenario) *Catalog {
	c := &Catalog{
		scenarios: scenarios,
		byTitle:   make(map[string]int, len(scenarios)),
	}
	for i, sc := range scenarios {
		if _, dup := c.byTitle[sc.Scenario]; dup {
			log.Printf("scenario: duplicate title %q in catalog", sc.Scenario)
			continue
		}
		c.byTitle[sc.Scenario] = i
	}
	return c
}

// All returns the scenarios in catalog order.
func (c *Catalog) All() []Scenario {
	out := make([]Scenario, len(c.scenarios))
	copy(out, c.scenarios)
	return out
}

// ByTitle looks a scenario up by its title.
func (c *Catalog) ByTitle(title string) (Scenario, bool) {
	i, ok := c.byTitle[title]
	if !ok {
		return Scenario{}, false
	}
	return c.scenarios[i], true
}

// Len reports the number of scenarios in the catalog.
func (c *Catalog) Len() int { return len(c.scenarios) }

// Defaults returns the built-in scenario catalog.
func Defaults() []Scenario {
	return []Scenario{
		{
			Scenario:   "Job Application Follow-up",
			Prompt:     "Write a polite follow-up email after a job interview",
			Context:    "You had an interview 5 days ago and want to check on the status",
			Difficulty: DifficultyMedium,
		},
		{
			Scenario:   "Client Complaint Response",
			Prompt:     "Respond professionally to a dissatisfied client",
			Context:    "A client is unhappy with delayed delivery of your service",
			Difficulty: DifficultyHard,
		},
		{
			Scenario:   "Meeting Request",
			Prompt:     "Request a meeting with a potential business partner",
			Context:    "You want to discuss a possible collaboration next week",
			Difficulty: DifficultyEasy,
		},
		{
			Scenario:   "Project Update",
			Prompt:     "Write an update email about an ongoing project",
			Context:    "You need to inform stakeholders about project progress and next steps",
			Difficulty: DifficultyMedium,
		},
		{
			Scenario:   "Networking Email",
			Prompt:     "Write an email to connect with a professional in your field",
			Context:    "You met this person briefly at a conference and want to follow up",
			Difficulty: DifficultyMedium,
		},
		{
			Scenario:   "Apology Email",
			Prompt:     "Write an email apologizing for a mistake",
			Context:    "Your company made an error in a client's order",
			Difficulty: DifficultyHard,
		},
		{
			Scenario:   "Thank You Email",
			Prompt:     "Write an email expressing gratitude",
			Context:    "A colleague helped you with an important project",
			Difficulty: DifficultyEasy,
		},
	}
}
