package orchestrator

import (
	"regexp"
	"strings"

	"github.com/dusancv22/video-transcriber/cmd/transcriber/model"
)

// closingArtifacts is the deny-list of common STT hallucinations that show
// up as a trailing sentence on silent/ambient audio.
var closingArtifacts = []string{
	"thank you.",
	"thank you for watching.",
	"thanks for watching.",
}

var wsRE = regexp.MustCompile(`\s+`)

func normalizeWord(w string) string {
	return strings.ToLower(strings.Trim(w, ".,!?;:\"'"))
}

// ScrubberOptions configures the repetition scrubber.
type ScrubberOptions struct {
	WindowMin  int // minimum window size, in words
	WindowMax  int // maximum window size, in words
	MaxRepeats int // max consecutive repeats tolerated before collapsing
}

func (o ScrubberOptions) withDefaults() ScrubberOptions {
	if o.WindowMin == 0 {
		o.WindowMin = 2
	}
	if o.WindowMax == 0 {
		o.WindowMax = 5
	}
	if o.MaxRepeats == 0 {
		o.MaxRepeats = 3
	}
	return o
}

// ScrubWords collapses runs where a window of WindowMin..WindowMax words
// repeats more than MaxRepeats times consecutively down to a single copy,
// and strips a known closing artifact when it is the final sentence.
func ScrubWords(words []model.Word, opts ScrubberOptions) []model.Word {
	opts = opts.withDefaults()

	if len(words) == 0 {
		return words
	}

	out := collapseRepeatedWindows(words, opts)
	out = stripClosingArtifactWords(out)
	return out
}

func collapseRepeatedWindows(words []model.Word, opts ScrubberOptions) []model.Word {
	norm := make([]string, len(words))
	for i, w := range words {
		norm[i] = normalizeWord(w.Text)
	}

	var out []model.Word
	i := 0
	for i < len(words) {
		collapsed := false
		for k := opts.WindowMax; k >= opts.WindowMin; k-- {
			if i+k > len(words) {
				continue
			}
			window := norm[i : i+k]
			repeats := 1
			j := i + k
			for j+k <= len(words) && equalSlices(norm[j:j+k], window) {
				repeats++
				j += k
			}
			if repeats > opts.MaxRepeats {
				out = append(out, words[i:i+k]...)
				i = j
				collapsed = true
				break
			}
		}
		if !collapsed {
			out = append(out, words[i])
			i++
		}
	}

	return out
}

func equalSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func stripClosingArtifactWords(words []model.Word) []model.Word {
	if len(words) == 0 {
		return words
	}

	text := strings.ToLower(wsRE.ReplaceAllString(joinWords(words), " "))
	for _, artifact := range closingArtifacts {
		if strings.HasSuffix(text, artifact) {
			// Walk back from the end dropping words until the artifact's
			// word count has been removed.
			artifactWordCount := len(strings.Fields(artifact))
			if artifactWordCount < len(words) {
				return words[:len(words)-artifactWordCount]
			}
			if artifactWordCount == len(words) {
				return nil
			}
		}
	}

	return words
}

func joinWords(words []model.Word) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

// ScrubText is the fallback text-level scrubber used when a backend returns
// no word-level timestamps (e.g. Azure without word timing enabled). It
// applies the same window-repetition and closing-artifact rules over
// whitespace-split tokens.
func ScrubText(text string, opts ScrubberOptions) string {
	opts = opts.withDefaults()

	fields := strings.Fields(text)
	if len(fields) == 0 {
		return text
	}

	words := make([]model.Word, len(fields))
	for i, f := range fields {
		words[i] = model.Word{Text: f}
	}

	words = collapseRepeatedWindows(words, opts)
	words = stripClosingArtifactWords(words)

	return joinWords(words)
}
