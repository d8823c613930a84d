// Package spellcheck provides the dictionary used to flag misspelled words
// in text cards and to suggest corrections.
package spellcheck

import (
	_ "embed"
	"log"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
)

//go:embed words.txt
var baseWords string

const (
	MaxSuggestions = 10
	MaxWordLength  = 17

	alphabet = "abcdefghijklmnopqrstuvwxyz"
)

// Checker implements domain.Spellchecker. The dictionary is only built the
// first time checking is switched on.
type Checker struct {
	mu             sync.RWMutex
	words          *trie
	user           []string
	active         bool
	dictionaryPath string
}

// New creates a Checker. dictionaryPath optionally points at an extra word
// list (one word per line) merged with the built-in one.
func New(dictionaryPath string, userWords []string) *Checker {
	return &Checker{
		dictionaryPath: dictionaryPath,
		user:           append([]string(nil), userWords...),
	}
}

// Toggle flips checking on or off and returns the new state.
func (c *Checker) Toggle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoaded()
	c.active = !c.active
	return c.active
}

func (c *Checker) SetActive(active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if active {
		c.ensureLoaded()
	}
	c.active = active
}

func (c *Checker) Active() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// IsCorrect reports whether word is in the dictionary. Lookup ignores case
// and the empty word is always correct.
func (c *Checker) IsCorrect(word string) bool {
	if word == "" {
		return true
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.words == nil {
		return true
	}
	return c.words.contains(strings.ToLower(word))
}

// AddWord stores word in the user dictionary.
func (c *Checker) AddWord(word string) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = append(c.user, word)
	if c.words != nil {
		c.words.add(word)
	}
}

// UserWords returns a copy of the user dictionary.
func (c *Checker) UserWords() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.user...)
}

// Suggest returns up to MaxSuggestions dictionary words within two edits of
// word, best first. Words longer than MaxWordLength get no suggestions.
func (c *Checker) Suggest(word string) []string {
	word = strings.ToLower(word)
	if word == "" || len(word) > MaxWordLength {
		return nil
	}

	c.mu.Lock()
	c.ensureLoaded()
	c.mu.Unlock()

	c.mu.RLock()
	defer c.mu.RUnlock()

	first := variations(word)
	seen := make(map[string]bool, len(first))
	var results []string
	consider := func(w string) {
		if seen[w] {
			return
		}
		seen[w] = true
		if w != word && c.words.contains(w) {
			results = append(results, w)
		}
	}
	for _, e := range first {
		consider(e)
	}
	for _, e := range first {
		for _, e2 := range variations(e) {
			consider(e2)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return score(results[i], word) < score(results[j], word)
	})
	if len(results) > MaxSuggestions {
		results = results[:MaxSuggestions]
	}
	return results
}

// ensureLoaded builds the trie. Callers hold the write lock.
func (c *Checker) ensureLoaded() {
	if c.words != nil {
		return
	}
	t := newTrie()
	addLines(t, baseWords)
	if c.dictionaryPath != "" {
		data, err := os.ReadFile(c.dictionaryPath)
		if err != nil {
			log.Printf("spellcheck: read dictionary %s: %v", c.dictionaryPath, err)
		} else {
			addLines(t, string(data))
		}
	}
	for _, w := range c.user {
		t.add(w)
	}
	c.words = t
}

func addLines(t *trie, s string) {
	for _, line := range strings.Split(s, "\n") {
		if w := strings.ToLower(strings.TrimSpace(line)); w != "" && !strings.HasPrefix(w, "#") {
			t.add(w)
		}
	}
}

// variations returns every single-edit variant of word: insertions,
// deletions, adjacent transpositions and substitutions.
func variations(word string) []string {
	n := len(word)
	out := make([]string, 0, 26*(2*n+1)+2*n)
	for i := 0; i <= n; i++ {
		for j := 0; j < len(alphabet); j++ {
			out = append(out, word[:i]+alphabet[j:j+1]+word[i:])
		}
	}
	if n > 1 {
		for i := 0; i < n; i++ {
			out = append(out, word[:i]+word[i+1:])
		}
		for i := 0; i < n-1; i++ {
			out = append(out, word[:i]+word[i+1:i+2]+word[i:i+1]+word[i+2:])
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < len(alphabet); j++ {
			out = append(out, word[:i]+alphabet[j:j+1]+word[i+1:])
		}
	}
	return out
}

// score ranks a candidate against the misspelled word. Lower is better.
func score(candidate, word string) int {
	s := levenshtein.ComputeDistance(candidate, word)
	if candidate[0] != word[0] {
		s += 2
	}
	return s + levenshtein.ComputeDistance(soundex(candidate), soundex(word))
}

const soundexCodes = "01230120022455012623010202"

func soundex(word string) string {
	if word == "" {
		return ""
	}
	out := []byte{upper(word[0])}
	for i := 1; i < len(word) && len(out) < 4; i++ {
		ch := upper(word[i])
		if ch < 'A' || ch > 'Z' {
			continue
		}
		code := soundexCodes[ch-'A']
		if code != '0' && code != out[len(out)-1] {
			out = append(out, code)
		}
	}
	for len(out) < 4 {
		out = append(out, '0')
	}
	return string(out)
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

// ─────────────────────────────────────────────────────────────
// trie
// ─────────────────────────────────────────────────────────────

type trieNode struct {
	children map[rune]*trieNode
	end      bool
}

type trie struct {
	root *trieNode
}

func newTrie() *trie {
	return &trie{root: &trieNode{children: map[rune]*trieNode{}}}
}

func (t *trie) add(word string) {
	n := t.root
	for _, r := range word {
		next, ok := n.children[r]
		if !ok {
			next = &trieNode{children: map[rune]*trieNode{}}
			n.children[r] = next
		}
		n = next
	}
	n.end = true
}

func (t *trie) contains(word string) bool {
	n := t.root
	for _, r := range word {
		next, ok := n.children[r]
		if !ok {
			return false
		}
		n = next
	}
	return n.end
}
