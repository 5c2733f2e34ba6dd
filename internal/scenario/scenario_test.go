package scenario

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	defaults := Defaults()
	if len(defaults) != 7 {
		t.Fatalf("Defaults() has %d scenarios, want 7", len(defaults))
	}
	for _, sc := range defaults {
		if sc.Scenario == "" || sc.Prompt == "" || sc.Context == "" {
			t.Errorf("scenario %+v has empty fields", sc)
		}
		switch sc.Difficulty {
		case DifficultyEasy, DifficultyMedium, DifficultyHard:
		default:
			t.Errorf("scenario %q has unknown difficulty %q", sc.Scenario, sc.Difficulty)
		}
	}
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	c := Load(filepath.Join(t.TempDir(), "nope.json"))
	if c.Len() != len(Defaults()) {
		t.Errorf("Len = %d, want the %d built-ins", c.Len(), len(Defaults()))
	}
}

func TestLoadMalformedFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenarios.json")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := Load(path)
	if c.Len() != len(Defaults()) {
		t.Errorf("Len = %d, want the %d built-ins", c.Len(), len(Defaults()))
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenarios.json")
	payload := `[{"scenario":"Budget Request","prompt":"Ask for budget","context":"Quarterly planning","difficulty":"Medium"}]`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}

	c := Load(path)
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
	sc, ok := c.ByTitle("Budget Request")
	if !ok {
		t.Fatal("ByTitle(Budget Request) not found")
	}
	if sc.Prompt != "Ask for budget" {
		t.Errorf("prompt = %q", sc.Prompt)
	}
}

func TestByTitle(t *testing.T) {
	c := NewCatalog(Defaults())

	sc, ok := c.ByTitle("Meeting Request")
	if !ok {
		t.Fatal("Meeting Request missing from defaults")
	}
	if sc.Difficulty != DifficultyEasy {
		t.Errorf("difficulty = %q, want Easy", sc.Difficulty)
	}

	if _, ok := c.ByTitle("No Such Scenario"); ok {
		t.Error("unknown title should not resolve")
	}
}

func TestDuplicateTitlesFirstWins(t *testing.T) {
	c := NewCatalog([]Scenario{
		{Scenario: "Dup", Prompt: "first"},
		{Scenario: "Dup", Prompt: "second"},
	})
	if c.Len() != 2 {
		t.Errorf("Len = %d, want both entries listed", c.Len())
	}
	sc, ok := c.ByTitle("Dup")
	if !ok || sc.Prompt != "first" {
		t.Errorf("ByTitle(Dup) = %+v, want the first entry", sc)
	}
}
