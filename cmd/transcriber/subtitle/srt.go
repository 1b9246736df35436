package subtitle

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dusancv22/video-transcriber/cmd/transcriber/model"
)

// srtTimestamp formats seconds as HH:MM:SS,mmm.
func srtTimestamp(seconds float64) string {
	return formatClock(seconds, ",")
}

// WriteSRT serializes cues in SRT format: 1-based index, a blank-line
// separator between cues, and a trailing newline at EOF.
func WriteSRT(w io.Writer, cues []model.SubtitleCue) error {
	for i, c := range cues {
		idx := c.Index
		if idx == 0 {
			idx = i + 1
		}
		if _, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n", idx, srtTimestamp(c.StartS), srtTimestamp(c.EndS), strings.Join(c.Lines, "\n")); err != nil {
			return fmt.Errorf("failed to write SRT cue: %w", err)
		}
	}
	return nil
}

// formatClock renders seconds as HH:MM:SS<sep>mmm.
func formatClock(seconds float64, sep string) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMs := int64(math.Round(seconds * 1000))

	h := totalMs / 3600000
	totalMs -= h * 3600000
	m := totalMs / 60000
	totalMs -= m * 60000
	s := totalMs / 1000
	ms := totalMs - s*1000

	return fmt.Sprintf("%02d:%02d:%02d%s%03d", h, m, s, sep, ms)
}
