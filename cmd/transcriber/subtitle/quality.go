package subtitle

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/dusancv22/video-transcriber/cmd/transcriber/model"
)

// QualityMetrics summarizes how much a rebuild shifted cue timing relative
// to a previous cue set. It is a standalone diagnostic that the Coordinator
// does not call. It measures only; it does not gate.
type QualityMetrics struct {
	CueCount     int
	ShiftMedian  float64
	ShiftStdDev  float64
	ShiftMax     float64
	ZeroDuration int
	NewOverlaps  int
}

// AnalyzeShift compares two cue sets of equal length, cue by cue, and
// reports the distribution of start-time shifts plus basic integrity
// counts (zero/negative-duration cues, newly introduced overlaps).
func AnalyzeShift(before, after []model.SubtitleCue) (QualityMetrics, error) {
	if len(before) != len(after) {
		return QualityMetrics{}, fmt.Errorf("cue count mismatch: %d before, %d after", len(before), len(after))
	}
	if len(before) == 0 {
		return QualityMetrics{}, nil
	}

	shifts := make([]float64, len(before))
	maxShift := 0.0
	for i := range before {
		shift := after[i].StartS - before[i].StartS
		shifts[i] = shift
		if abs(shift) > maxShift {
			maxShift = abs(shift)
		}
	}

	sorted := append([]float64{}, shifts...)
	sort.Float64s(sorted)

	return QualityMetrics{
		CueCount:     len(before),
		ShiftMedian:  stat.Quantile(0.5, stat.Empirical, sorted, nil),
		ShiftStdDev:  stat.StdDev(shifts, nil),
		ShiftMax:     maxShift,
		ZeroDuration: countZeroDuration(after),
		NewOverlaps:  countNewOverlaps(before, after),
	}, nil
}

func countZeroDuration(cues []model.SubtitleCue) int {
	n := 0
	for _, c := range cues {
		if c.EndS <= c.StartS {
			n++
		}
	}
	return n
}

func countNewOverlaps(before, after []model.SubtitleCue) int {
	n := 0
	for i := 1; i < len(after); i++ {
		overlapsAfter := after[i].StartS < after[i-1].EndS
		overlapsBefore := i < len(before) && before[i].StartS < before[i-1].EndS
		if overlapsAfter && !overlapsBefore {
			n++
		}
	}
	return n
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
