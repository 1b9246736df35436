package orchestrator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dusancv22/video-transcriber/cmd/transcriber/model"
)

func wordsFromText(text string) []model.Word {
	fields := strings.Fields(text)
	ws := make([]model.Word, len(fields))
	for i, f := range fields {
		ws[i] = model.Word{Text: f, StartS: float64(i), EndS: float64(i) + 0.5}
	}
	return ws
}

func textOf(ws []model.Word) string {
	parts := make([]string, len(ws))
	for i, w := range ws {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

func TestScrubWordsCollapsesRepetitionLoop(t *testing.T) {
	// The classic hallucination: "thank you" looped a dozen times before the
	// real closing phrase.
	in := wordsFromText(strings.Repeat("thank you ", 12) + "for watching")

	out := ScrubWords(in, ScrubberOptions{})
	text := strings.ToLower(textOf(out))

	require.Less(t, len(out), len(in))
	require.LessOrEqual(t, strings.Count(text, "thank you"), 2)
	require.Contains(t, text, "for watching")
}

func TestScrubWordsLeavesShortRepeatsAlone(t *testing.T) {
	// Three repeats is within tolerance; only more than MaxRepeats collapses.
	in := wordsFromText("no no no way")
	out := ScrubWords(in, ScrubberOptions{})
	require.Len(t, out, len(in))
}

func TestScrubWordsStripsClosingArtifact(t *testing.T) {
	tcs := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "thanks for watching stripped",
			in:   "and that wraps it up thanks for watching.",
			want: "and that wraps it up",
		},
		{
			name: "thank you stripped",
			in:   "see you next time thank you.",
			want: "see you next time",
		},
		{
			name: "artifact mid-sentence kept",
			in:   "i want to thank you for coming today",
			want: "i want to thank you for coming today",
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			out := ScrubWords(wordsFromText(tc.in), ScrubberOptions{})
			require.Equal(t, tc.want, textOf(out))
		})
	}
}

func TestScrubWordsArtifactOnlyInputEmpties(t *testing.T) {
	out := ScrubWords(wordsFromText("thank you for watching."), ScrubberOptions{})
	require.Empty(t, out)
}

func TestScrubTextMatchesWordScrubber(t *testing.T) {
	in := strings.Repeat("so so so ", 5) + "anyway"
	out := ScrubText(in, ScrubberOptions{})
	require.Less(t, len(strings.Fields(out)), len(strings.Fields(in)))
	require.Contains(t, out, "anyway")
}

func TestScrubWordsRespectsConfiguredRepeats(t *testing.T) {
	in := wordsFromText("go on go on go on go on stop")

	// Default tolerance (3) collapses a 4-run of the 2-word window...
	out := ScrubWords(in, ScrubberOptions{})
	require.Equal(t, "go on stop", textOf(out))

	// ...but a raised tolerance keeps it.
	out = ScrubWords(in, ScrubberOptions{MaxRepeats: 5})
	require.Equal(t, "go on go on go on go on stop", textOf(out))
}
