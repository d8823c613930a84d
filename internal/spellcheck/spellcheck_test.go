package spellcheck_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leth4/leto-sub000/internal/spellcheck"
)

func TestChecker_InactiveAcceptsEverything(t *testing.T) {
	c := spellcheck.New("", nil)
	if c.Active() {
		t.Fatal("expected checker to start inactive")
	}
	if !c.IsCorrect("qwzx") {
		t.Error("expected unloaded dictionary to accept any word")
	}
}

func TestChecker_Toggle(t *testing.T) {
	c := spellcheck.New("", nil)
	if !c.Toggle() {
		t.Fatal("expected first toggle to activate")
	}
	if !c.IsCorrect("Hello") {
		t.Error("expected case-insensitive match for Hello")
	}
	if c.IsCorrect("helo") {
		t.Error("expected helo to be flagged")
	}
	if !c.IsCorrect("") {
		t.Error("empty word is always correct")
	}
	if c.Toggle() {
		t.Error("expected second toggle to deactivate")
	}
}

func TestChecker_UserDictionary(t *testing.T) {
	c := spellcheck.New("", []string{"zettel"})
	c.SetActive(true)
	if !c.IsCorrect("Zettel") {
		t.Error("expected user word to be accepted")
	}
	c.AddWord(" Leto ")
	if !c.IsCorrect("leto") {
		t.Error("expected added word to be accepted")
	}
	got := c.UserWords()
	if len(got) != 2 || got[1] != "leto" {
		t.Errorf("user words = %v", got)
	}
}

func TestChecker_ExtraDictionaryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.txt")
	if err := os.WriteFile(path, []byte("Kanban\nwhiteboard\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := spellcheck.New(path, nil)
	c.SetActive(true)
	if !c.IsCorrect("kanban") || !c.IsCorrect("whiteboard") {
		t.Error("expected words from the extra dictionary")
	}
}

func TestChecker_MissingDictionaryFileStillLoadsBase(t *testing.T) {
	c := spellcheck.New(filepath.Join(t.TempDir(), "missing.txt"), nil)
	c.SetActive(true)
	if !c.IsCorrect("board") {
		t.Error("expected base words despite missing extra dictionary")
	}
}

func TestChecker_Suggest(t *testing.T) {
	c := spellcheck.New("", nil)
	got := c.Suggest("helo")
	if len(got) == 0 {
		t.Fatal("expected suggestions")
	}
	if got[0] != "hello" {
		t.Errorf("best suggestion = %q, want hello (all: %v)", got[0], got)
	}
	if len(got) > spellcheck.MaxSuggestions {
		t.Errorf("got %d suggestions, limit is %d", len(got), spellcheck.MaxSuggestions)
	}
	for _, s := range got {
		if s == "helo" {
			t.Error("suggestions must not contain the word itself")
		}
	}
}

func TestChecker_SuggestSkipsLongWords(t *testing.T) {
	c := spellcheck.New("", nil)
	if got := c.Suggest(strings.Repeat("a", spellcheck.MaxWordLength+1)); got != nil {
		t.Errorf("expected no suggestions, got %v", got)
	}
}
