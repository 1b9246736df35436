package subtitle

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dusancv22/video-transcriber/cmd/transcriber/model"
)

const assHeader = `[Script Info]
Title: Generated subtitles
ScriptType: v4.00+
WrapStyle: 0
ScaledBorderAndShadow: yes
YCbCr Matrix: TV.601

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,Arial,24,&H00FFFFFF,&H000000FF,&H00000000,&H80000000,0,0,0,0,100,100,0,0,1,1,0,2,10,10,10,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
`

// assTimestamp formats seconds as H:MM:SS.cc (centiseconds).
func assTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalCs := int64(math.Round(seconds * 100))

	h := totalCs / 360000
	totalCs -= h * 360000
	m := totalCs / 6000
	totalCs -= m * 6000
	s := totalCs / 100
	cs := totalCs - s*100

	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs)
}

// WriteASS serializes cues as a standard [Script Info]/[V4+ Styles]/[Events]
// ASS file, with "\N" as the forced line break inside Dialogue text.
func WriteASS(w io.Writer, cues []model.SubtitleCue) error {
	if _, err := io.WriteString(w, assHeader); err != nil {
		return fmt.Errorf("failed to write ASS header: %w", err)
	}

	for _, c := range cues {
		text := strings.Join(c.Lines, `\N`)
		if _, err := fmt.Fprintf(w, "Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n", assTimestamp(c.StartS), assTimestamp(c.EndS), text); err != nil {
			return fmt.Errorf("failed to write ASS dialogue line: %w", err)
		}
	}

	return nil
}
