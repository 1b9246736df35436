// Package model holds the value objects passed between pipeline stages.
//
// None of these types are mutated after a stage hands them to the next one;
// ownership transfers at the stage boundary.
package model

// Word is a single recognized token with timestamps on the original audio
// timeline (after any reprojection done by the orchestrator).
type Word struct {
	Text        string
	StartS      float64
	EndS        float64
	Probability float64
}

// TimedSegment is a contiguous span of recognized speech. Words may be empty
// when the speech-to-text backend has no word-level granularity.
type TimedSegment struct {
	StartS float64
	EndS   float64
	Text   string
	Words  []Word
}

// Duration returns the segment's length in seconds.
func (s TimedSegment) Duration() float64 {
	return s.EndS - s.StartS
}

// TranscriptionResult is the output of the Transcription Orchestrator for a
// single AudioSegment, already reprojected onto the original audio timeline.
type TranscriptionResult struct {
	Segments        []TimedSegment
	Language        string
	SourceDurationS float64
	Method          string
	RegionsSkipped  int
}

// SpeechRegion is a VAD-detected interval on the timeline it was detected
// against (a segment's local timeline until the orchestrator offsets it).
type SpeechRegion struct {
	StartS float64
	EndS   float64
}

// AudioSegment is a contiguous slice of the source audio produced by the
// Audio Segmenter.
type AudioSegment struct {
	Path            string
	Index           int
	StartS          float64
	EndS            float64
	HasStartOverlap bool
	HasEndOverlap   bool
	OverlapS        float64
}

// SplitMetadata is the full ordering of segments captured by the Audio
// Segmenter; the Text Combiner consults it to know where to expect overlap.
type SplitMetadata struct {
	Segments []AudioSegment
}

// SubtitleCue is a single displayable subtitle unit.
type SubtitleCue struct {
	Index  int
	StartS float64
	EndS   float64
	Lines  []string
}
