// Package normalize cleans up transcript prose: a pure, deterministic
// string-to-string rewriter applied after overlap removal, on the
// transcript branch only. One pipeline covers both the gentle and the
// aggressive variant (RemoveFillers/AggressiveCleaning flags);
// proper-noun/acronym casing is resolved against a pluggable
// lexicon.Lexicon instead of a hardcoded list.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/dusancv22/video-transcriber/cmd/transcriber/config"
	"github.com/dusancv22/video-transcriber/cmd/transcriber/lexicon"
)

var (
	bracketRE  = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)`)
	wsRE       = regexp.MustCompile(`\s+`)
	sentenceRE = regexp.MustCompile(`[.!?]\s+`)
	hasPunctRE = regexp.MustCompile(`[.!?]`)
)

// fillerPhrases is checked before fillerWords so multi-word fillers are
// matched whole rather than leaving a stray trailing word behind.
var fillerPhrases = []string{"you know", "i mean", "sort of", "kind of like"}
var fillerWords = map[string]bool{
	"um": true, "uh": true, "umm": true, "uhh": true, "er": true, "erm": true,
}

var strongStarters = map[string]bool{
	"and": true, "but": true, "so": true, "however": true, "therefore": true, "meanwhile": true,
}

var questionWords = map[string]bool{
	"who": true, "what": true, "when": true, "where": true, "why": true, "how": true,
	"is": true, "are": true, "do": true, "does": true, "did": true, "can": true,
	"could": true, "would": true, "will": true, "should": true,
}

var questionPhrases = []string{"is it", "do you", "did you", "can you", "would you"}

var contractions = map[string]string{
	"gonna": "going to",
	"wanna": "want to",
	"gotta": "got to",
	"kinda": "kind of",
	"cause": "because",
}

var pronounsAndModals = map[string]bool{
	"i": true, "you": true, "we": true, "they": true, "he": true, "she": true, "it": true,
	"would": true, "could": true, "might": true, "will": true, "can": true,
}

// Normalizer runs the fixed cleanup stage order over a block of text.
type Normalizer struct {
	opts config.TextOptions
	lex  *lexicon.Lexicon
}

func New(opts config.TextOptions, lex *lexicon.Lexicon) *Normalizer {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &Normalizer{opts: opts, lex: lex}
}

// Normalize runs the full stage pipeline over text and returns the rewritten
// result. It is pure and idempotent: calling it twice on its own output
// yields the same string.
func (n *Normalizer) Normalize(text string) string {
	text = norm.NFC.String(text)
	text = basicClean(text)

	if n.opts.RemoveFillers {
		text = removeFillers(text)
	}

	text = expandContractions(text)
	text = dedupeRepeatedWords(text)

	sentences := splitSentences(text)
	for i, s := range sentences {
		sentences[i] = n.fixSentence(s)
	}

	return paragraph(sentences)
}

func basicClean(text string) string {
	text = bracketRE.ReplaceAllString(text, "")
	text = wsRE.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func removeFillers(text string) string {
	lower := strings.ToLower(text)
	for _, phrase := range fillerPhrases {
		for {
			idx := strings.Index(lower, phrase)
			if idx < 0 {
				break
			}
			text = text[:idx] + text[idx+len(phrase):]
			lower = strings.ToLower(text)
		}
	}

	words := strings.Fields(text)
	out := make([]string, 0, len(words))
	for i, w := range words {
		bare := strings.ToLower(strings.Trim(w, ".,!?;:"))
		if bare == "like" {
			if i > 0 && pronounsAndModals[strings.ToLower(strings.Trim(words[i-1], ".,!?;:"))] {
				out = append(out, w)
				continue
			}
			continue
		}
		if fillerWords[bare] {
			continue
		}
		out = append(out, w)
	}

	return strings.Join(out, " ")
}

func expandContractions(text string) string {
	words := strings.Fields(text)
	for i, w := range words {
		trailing := ""
		bare := w
		if len(bare) > 0 {
			last := bare[len(bare)-1]
			if last == '.' || last == ',' || last == '!' || last == '?' {
				trailing = string(last)
				bare = bare[:len(bare)-1]
			}
		}
		if expansion, ok := contractions[strings.ToLower(bare)]; ok {
			words[i] = expansion + trailing
		}
	}
	return strings.Join(words, " ")
}

func dedupeRepeatedWords(text string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}

	out := make([]string, 0, len(words))
	out = append(out, words[0])
	for i := 1; i < len(words); i++ {
		if strings.EqualFold(words[i], words[i-1]) {
			continue
		}
		out = append(out, words[i])
	}
	return strings.Join(out, " ")
}

// splitSentences divides text into sentences. If terminal punctuation is
// already present it splits on it; otherwise it falls back to word-count
// and strong-starter heuristics.
func splitSentences(text string) []string {
	if text == "" {
		return nil
	}

	if hasPunctRE.MatchString(text) {
		var out []string
		start := 0
		for _, loc := range sentenceRE.FindAllStringIndex(text, -1) {
			if p := strings.TrimSpace(text[start : loc[0]+1]); p != "" {
				out = append(out, p)
			}
			start = loc[1]
		}
		if p := strings.TrimSpace(text[start:]); p != "" {
			out = append(out, p)
		}
		return out
	}

	words := strings.Fields(text)
	var sentences []string
	var cur []string

	flush := func() {
		if len(cur) > 0 {
			sentences = append(sentences, strings.Join(cur, " "))
			cur = nil
		}
	}

	for i, w := range words {
		cur = append(cur, w)
		if len(cur) >= 25 {
			flush()
			continue
		}
		if i+1 >= len(words) {
			continue
		}
		next := strings.ToLower(words[i+1])
		if len(cur) >= 8 && strongStarters[next] {
			flush()
			continue
		}
		if len(cur) >= 15 && pronounsAndModals[next] {
			flush()
		}
	}
	flush()

	return sentences
}

func (n *Normalizer) fixSentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}

	words := strings.Fields(s)
	for i, w := range words {
		lower := strings.ToLower(w)
		trimmed := strings.Trim(lower, ".,!?;:")

		if trimmed == "i" {
			words[i] = replaceCaseInsensitiveCore(w, "I")
			continue
		}

		if canonical, ok := n.lex.Lookup(trimmed); ok {
			words[i] = replaceCaseInsensitiveCore(w, canonical)
		}
	}

	s = strings.Join(words, " ")
	s = capitalizeFirstAlpha(s)
	s = terminate(s)
	return s
}

func replaceCaseInsensitiveCore(original, canonical string) string {
	lead, _, trail := splitPunct(original)
	return lead + canonical + trail
}

func splitPunct(w string) (lead, core, trail string) {
	start := 0
	for start < len(w) && !isAlnumRune(rune(w[start])) {
		start++
	}
	end := len(w)
	for end > start && !isAlnumRune(rune(w[end-1])) {
		end--
	}
	if start >= end {
		return w, "", ""
	}
	return w[:start], w[start:end], w[end:]
}

func isAlnumRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func capitalizeFirstAlpha(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsLetter(r) {
			runes[i] = unicode.ToUpper(r)
			return string(runes)
		}
	}
	return s
}

func terminate(s string) string {
	trimmed := strings.TrimRight(s, " ")
	if trimmed == "" {
		return s
	}
	last := trimmed[len(trimmed)-1]
	if last == '.' || last == '!' || last == '?' {
		return trimmed
	}

	if isQuestion(trimmed) {
		return trimmed + "?"
	}
	return trimmed + "."
}

func isQuestion(s string) bool {
	lower := strings.ToLower(s)
	for _, phrase := range questionPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}

	words := strings.Fields(lower)
	if len(words) == 0 {
		return false
	}
	return questionWords[strings.Trim(words[0], ".,!?;:")]
}

// paragraph groups sentences into paragraphs of 3-5 sentences, starting a
// new paragraph after a transition-word sentence or when the cap is hit.
func paragraph(sentences []string) string {
	if len(sentences) == 0 {
		return ""
	}

	var paragraphs []string
	var cur []string

	flush := func() {
		if len(cur) > 0 {
			paragraphs = append(paragraphs, strings.Join(cur, " "))
			cur = nil
		}
	}

	for _, s := range sentences {
		cur = append(cur, s)

		firstWord := ""
		if fields := strings.Fields(s); len(fields) > 0 {
			firstWord = strings.ToLower(strings.Trim(fields[0], ".,!?;:"))
		}

		if len(cur) >= 5 || (len(cur) >= 3 && strongStarters[firstWord]) {
			flush()
		}
	}
	flush()

	return strings.Join(paragraphs, "\n\n")
}
