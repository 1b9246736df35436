package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dusancv22/video-transcriber/cmd/transcriber/config"
)

func TestBasicCleanStripsBracketsAndWhitespace(t *testing.T) {
	require.Equal(t, "hello world", basicClean("hello   [noise] world"))
	require.Equal(t, "hello world", basicClean("hello (inaudible) world"))
}

func TestRemoveFillersPreservesVerbalLike(t *testing.T) {
	out := removeFillers("um i like to run and uh you know it works")
	require.Contains(t, out, "i like to run")
	require.NotContains(t, out, "um")
	require.NotContains(t, out, "uh")
	require.NotContains(t, out, "you know")
}

func TestExpandContractions(t *testing.T) {
	require.Equal(t, "I am going to go.", expandContractions("I am gonna go."))
	require.Equal(t, "We want to try it", expandContractions("We wanna try it"))
}

func TestDedupeRepeatedWords(t *testing.T) {
	require.Equal(t, "the cat sat", dedupeRepeatedWords("the the the the cat sat"))
}

func TestSplitSentencesWithPunctuation(t *testing.T) {
	out := splitSentences("Hello there. How are you? I am fine!")
	require.Equal(t, []string{"Hello there.", "How are you?", "I am fine!"}, out)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	opts := config.TextOptions{RemoveFillers: true}
	n := New(opts, nil)

	once := n.Normalize("um so i think this is great and uh it works well")
	twice := n.Normalize(once)
	require.Equal(t, once, twice)
}

func TestNormalizeCapitalizesAndUppercasesI(t *testing.T) {
	n := New(config.TextOptions{}, nil)
	out := n.Normalize("i think this is fine")
	require.True(t, strings.HasPrefix(out, "I "))
}

func TestNormalizeAddsQuestionMark(t *testing.T) {
	n := New(config.TextOptions{}, nil)
	out := n.Normalize("do you want to come")
	require.True(t, strings.HasSuffix(out, "?"))
}
