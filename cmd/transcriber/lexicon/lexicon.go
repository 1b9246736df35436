// Package lexicon holds the pluggable word lists the Text Normalizer
// consults when fixing up proper nouns and acronyms: countries, cities,
// personal names, and known acronyms. Callers build a Lexicon once (New plus
// any Merge calls) and reuse it across documents; Merge is the only method
// that changes it.
package lexicon

import "strings"

// Lexicon is a case-insensitive lookup table mapping a lowercase
// token to its canonical casing.
type Lexicon struct {
	canonical map[string]string
}

// Default returns a small built-in lexicon covering common countries,
// cities, and acronyms likely to show up in general-purpose transcripts.
// Callers with domain-specific vocabulary should build their own with New
// and merge it with Default's entries via Merge.
func Default() *Lexicon {
	l := New(defaultCountries)
	l.Merge(New(defaultCities))
	l.Merge(New(defaultAcronyms))
	l.Merge(New(defaultNames))
	return l
}

// New builds a Lexicon from a list of canonically-cased words or phrases.
func New(words []string) *Lexicon {
	l := &Lexicon{canonical: make(map[string]string, len(words))}
	for _, w := range words {
		l.canonical[strings.ToLower(w)] = w
	}
	return l
}

// Merge folds other's entries into l, overwriting any existing key.
func (l *Lexicon) Merge(other *Lexicon) {
	if other == nil {
		return
	}
	for k, v := range other.canonical {
		l.canonical[k] = v
	}
}

// Lookup returns the canonical casing for token (case-insensitively matched)
// and whether it was found.
func (l *Lexicon) Lookup(token string) (string, bool) {
	if l == nil {
		return "", false
	}
	v, ok := l.canonical[strings.ToLower(token)]
	return v, ok
}

var defaultCountries = []string{
	"United States", "USA", "United Kingdom", "UK", "Canada", "Mexico",
	"France", "Germany", "Spain", "Italy", "China", "Japan", "India",
	"Brazil", "Australia", "Russia", "Ukraine", "Ireland", "Netherlands",
}

var defaultCities = []string{
	"New York", "London", "Paris", "Berlin", "Tokyo", "Beijing", "Moscow",
	"Toronto", "Chicago", "Boston", "Seattle", "Austin", "Dublin", "Madrid",
}

var defaultAcronyms = []string{
	"USA", "UK", "API", "CPU", "GPU", "HTML", "HTTP", "HTTPS", "JSON",
	"URL", "SQL", "CEO", "CTO", "FBI", "CIA", "NASA", "FAQ", "DNA", "AI",
}

var defaultNames = []string{
	"John", "Jane", "Michael", "Sarah", "David", "Emily", "Robert", "Maria",
}
