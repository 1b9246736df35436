package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/dusancv22/video-transcriber/cmd/transcriber/model"
)

var (
	srtTimeRE = regexp.MustCompile(`(\d{2}:\d{2}:\d{2},\d{3})\s+-->\s+(\d{2}:\d{2}:\d{2},\d{3})`)
	vttTimeRE = regexp.MustCompile(`(\d{2}:\d{2}:\d{2}\.\d{3})\s+-->\s+(\d{2}:\d{2}:\d{2}\.\d{3})`)
	assTimeRE = regexp.MustCompile(`^(\d+):(\d{2}):(\d{2})\.(\d{2})$`)
)

// parseClock reads an HH:MM:SS<sep>mmm timestamp back into seconds, the
// inverse of formatClock.
func parseClock(ts, sep string) (float64, error) {
	parts := strings.Split(ts, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", ts)
	}

	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hours in %q: %w", ts, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minutes in %q: %w", ts, err)
	}

	secParts := strings.Split(parts[2], sep)
	if len(secParts) != 2 {
		return 0, fmt.Errorf("invalid seconds in %q", ts)
	}
	s, err := strconv.Atoi(secParts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid seconds in %q: %w", ts, err)
	}
	ms, err := strconv.Atoi(secParts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid milliseconds in %q: %w", ts, err)
	}

	return float64(h)*3600 + float64(m)*60 + float64(s) + float64(ms)/1000, nil
}

// ParseSRT reads cues back out of an SRT stream produced by WriteSRT (or any
// standard SRT file).
func ParseSRT(r io.Reader) ([]model.SubtitleCue, error) {
	return parseBlocks(r, srtTimeRE, ",")
}

// ParseVTT reads cues back out of a WebVTT stream produced by WriteVTT. The
// header line and any cue identifiers are skipped; only timed blocks become
// cues.
func ParseVTT(r io.Reader) ([]model.SubtitleCue, error) {
	return parseBlocks(r, vttTimeRE, ".")
}

func parseBlocks(r io.Reader, timeRE *regexp.Regexp, sep string) ([]model.SubtitleCue, error) {
	var cues []model.SubtitleCue
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		matches := timeRE.FindStringSubmatch(line)
		if matches == nil {
			continue
		}

		start, err := parseClock(matches[1], sep)
		if err != nil {
			return nil, err
		}
		end, err := parseClock(matches[2], sep)
		if err != nil {
			return nil, err
		}

		var lines []string
		for scanner.Scan() {
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				break
			}
			lines = append(lines, text)
		}

		cues = append(cues, model.SubtitleCue{
			Index:  len(cues) + 1,
			StartS: start,
			EndS:   end,
			Lines:  lines,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan subtitle stream: %w", err)
	}
	return cues, nil
}

// ParseASS reads Dialogue events back out of an ASS stream produced by
// WriteASS. Only the Start, End, and Text fields are recovered; styling is
// ignored.
func ParseASS(r io.Reader) ([]model.SubtitleCue, error) {
	var cues []model.SubtitleCue
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "Dialogue:") {
			continue
		}

		// Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
		fields := strings.SplitN(strings.TrimPrefix(line, "Dialogue:"), ",", 10)
		if len(fields) < 10 {
			return nil, fmt.Errorf("malformed Dialogue line: %q", line)
		}

		start, err := parseASSTime(strings.TrimSpace(fields[1]))
		if err != nil {
			return nil, err
		}
		end, err := parseASSTime(strings.TrimSpace(fields[2]))
		if err != nil {
			return nil, err
		}

		cues = append(cues, model.SubtitleCue{
			Index:  len(cues) + 1,
			StartS: start,
			EndS:   end,
			Lines:  strings.Split(fields[9], `\N`),
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan ASS stream: %w", err)
	}
	return cues, nil
}

// parseASSTime reads an H:MM:SS.cc timestamp, the inverse of assTimestamp.
func parseASSTime(ts string) (float64, error) {
	matches := assTimeRE.FindStringSubmatch(ts)
	if matches == nil {
		return 0, fmt.Errorf("invalid ASS timestamp %q", ts)
	}

	h, _ := strconv.Atoi(matches[1])
	m, _ := strconv.Atoi(matches[2])
	s, _ := strconv.Atoi(matches[3])
	cs, _ := strconv.Atoi(matches[4])

	return float64(h)*3600 + float64(m)*60 + float64(s) + float64(cs)/100, nil
}
