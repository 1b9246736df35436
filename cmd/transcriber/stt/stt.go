// Package stt defines the speech-to-text backend contract the transcription
// orchestrator drives. Two concrete backends implement it: stt/whisper (a
// local whisper.cpp model) and stt/azure (Azure Cognitive Services Speech).
package stt

import "context"

// TranscribeOptions carries the repetition-suppression parameter set the
// orchestrator passes on every call: greedy/beam decode at temperature 0,
// no cross-region context bleed, and word-level timestamps.
type TranscribeOptions struct {
	Language                  string
	WordTimestamps            bool
	Beam                      int
	Temperature               float64
	CompressionRatioThreshold float64
	LogProbThreshold          float64
	ConditionOnPreviousText   bool
	SuppressBlank             bool
	InitialPrompt             string
}

// Word is a single recognized token with probability, before reprojection
// onto the original timeline.
type Word struct {
	Text        string
	StartS      float64
	EndS        float64
	Probability float64
}

// Segment is a raw STT segment, in the timeline of the audio slice that was
// transcribed (not yet shifted by the orchestrator).
type Segment struct {
	StartS float64
	EndS   float64
	Text   string
	Words  []Word
}

// Result is what a Transcriber call returns.
type Result struct {
	Language string
	Segments []Segment
}

// Transcriber is the speech-to-text backend contract.
type Transcriber interface {
	Transcribe(ctx context.Context, samples []float32, sampleRate int, opts TranscribeOptions) (Result, error)
	Destroy() error
}
