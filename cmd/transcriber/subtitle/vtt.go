package subtitle

import (
	"fmt"
	"io"
	"strings"

	"github.com/dusancv22/video-transcriber/cmd/transcriber/model"
)

// vttTimestamp formats seconds as HH:MM:SS.mmm.
func vttTimestamp(seconds float64) string {
	return formatClock(seconds, ".")
}

// WriteVTT serializes cues as a WebVTT file: a "WEBVTT\n\n" header followed
// by one cue block per entry. A file with zero cues still gets the header.
func WriteVTT(w io.Writer, cues []model.SubtitleCue) error {
	if _, err := fmt.Fprintf(w, "WEBVTT\n\n"); err != nil {
		return fmt.Errorf("failed to write VTT header: %w", err)
	}

	for i, c := range cues {
		idx := c.Index
		if idx == 0 {
			idx = i + 1
		}
		if _, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n", idx, vttTimestamp(c.StartS), vttTimestamp(c.EndS), strings.Join(c.Lines, "\n")); err != nil {
			return fmt.Errorf("failed to write VTT cue: %w", err)
		}
	}

	return nil
}
