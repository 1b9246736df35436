// Package orchestrator turns one audio segment into a transcription: it
// runs VAD over the segment's PCM, calls the speech-to-text backend on each
// padded speech region with parameters chosen to suppress repetition loops,
// reprojects timestamps back onto the original audio timeline, and scrubs
// repeated phrases out of the result. When every region fails it falls back
// to a single whole-segment transcription.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dusancv22/video-transcriber/cmd/transcriber/config"
	"github.com/dusancv22/video-transcriber/cmd/transcriber/model"
	"github.com/dusancv22/video-transcriber/cmd/transcriber/pipelineerr"
	"github.com/dusancv22/video-transcriber/cmd/transcriber/stt"
	"github.com/dusancv22/video-transcriber/cmd/transcriber/vad"
)

// Options bundles the orchestrator's tunables beyond the raw VAD config:
// the scrubber settings and the decode parameters forwarded to the
// speech-to-text backend.
type Options struct {
	VAD      config.VADOptions
	Scrubber ScrubberOptions

	Beam                      int
	Temperature               float64
	CompressionRatioThreshold float64
	LogProbThreshold          float64
	SuppressBlank             bool
}

func (o Options) sttOptions(language string) stt.TranscribeOptions {
	return stt.TranscribeOptions{
		Language:                  language,
		WordTimestamps:            true,
		Beam:                      o.Beam,
		Temperature:               o.Temperature,
		CompressionRatioThreshold: o.CompressionRatioThreshold,
		LogProbThreshold:          o.LogProbThreshold,
		ConditionOnPreviousText:   false,
		SuppressBlank:             o.SuppressBlank,
	}
}

// Orchestrator transcribes one audio segment at a time. The VAD detector
// and STT transcriber are process-lifetime shared handles; callers must
// serialize calls across segments the same way the Job Coordinator does.
type Orchestrator struct {
	detector    vad.Detector
	transcriber stt.Transcriber
	opts        Options
}

func New(detector vad.Detector, transcriber stt.Transcriber, opts Options) *Orchestrator {
	return &Orchestrator{detector: detector, transcriber: transcriber, opts: opts}
}

// regionOutcome is the per-region result: either a contribution of
// segments, or an explicit skip with a reason. Skips never abort the
// segment; they just leave a gap.
type regionOutcome struct {
	segments []model.TimedSegment
	language string
	skipped  bool
	reason   string
}

// TranscribeSegment transcribes one AudioSegment's decoded PCM, returning
// a TranscriptionResult whose timestamps are already on the original audio
// timeline.
func (o *Orchestrator) TranscribeSegment(ctx context.Context, seg model.AudioSegment, samples []float32, sampleRate int, language string) (model.TranscriptionResult, error) {
	vadOpts := o.opts.VAD
	regions, err := o.detector.Detect(ctx, samples, vad.DetectOptions{
		Threshold:    vadOpts.Threshold,
		MinSpeechMs:  vadOpts.MinSpeechMs,
		MinSilenceMs: vadOpts.MinSilenceMs,
		SampleRate:   sampleRate,
	})
	if err != nil {
		return model.TranscriptionResult{}, &pipelineerr.Error{Kind: pipelineerr.ErrorKindModelUnavailable, Stage: "vad", Path: seg.Path, Err: err}
	}

	regions = vad.MergeCloseRegions(regions, vadOpts.MaxGapS)

	if len(regions) == 0 {
		slog.Debug("no speech regions detected, returning empty transcription", slog.String("path", seg.Path))
		return model.TranscriptionResult{SourceDurationS: seg.EndS - seg.StartS}, nil
	}

	duration := float64(len(samples)) / float64(sampleRate)
	var allSegments []model.TimedSegment
	skippedAll := true
	skipped := 0

	for _, region := range regions {
		select {
		case <-ctx.Done():
			return model.TranscriptionResult{}, &pipelineerr.Error{Kind: pipelineerr.ErrorKindCancelled, Stage: "orchestrator", Path: seg.Path, Err: ctx.Err()}
		default:
		}

		outcome := o.processRegion(ctx, region, samples, sampleRate, duration, seg, language)
		if outcome.skipped {
			skipped++
			slog.Warn("region transcription skipped", slog.String("reason", outcome.reason), slog.String("path", seg.Path))
			continue
		}

		skippedAll = false
		allSegments = append(allSegments, outcome.segments...)
		// Pin subsequent regions to the first region's detected language so a
		// segment doesn't flip languages mid-way on an ambiguous region.
		if (language == "" || language == "auto") && outcome.language != "" {
			language = outcome.language
		}
	}

	if skippedAll {
		slog.Warn("all regions failed, falling back to whole-segment transcription", slog.String("path", seg.Path))
		fallback, ferr := o.transcribeWhole(ctx, samples, sampleRate, seg, language)
		if ferr != nil {
			return model.TranscriptionResult{}, &pipelineerr.Error{Kind: pipelineerr.ErrorKindSegmentFailed, Stage: "orchestrator", Path: seg.Path, Err: ferr}
		}
		allSegments = fallback
	}

	allSegments = scrubSegments(allSegments, o.opts.Scrubber)

	return model.TranscriptionResult{
		Segments:        allSegments,
		Language:        language,
		SourceDurationS: duration,
		Method:          "vad-gated",
		RegionsSkipped:  skipped,
	}, nil
}

// processRegion pads the region, slices its samples out of the segment,
// transcribes the slice, and shifts the result onto the original timeline;
// any failure along the way skips the region.
func (o *Orchestrator) processRegion(ctx context.Context, region model.SpeechRegion, samples []float32, sampleRate int, duration float64, seg model.AudioSegment, language string) regionOutcome {
	pad := o.opts.VAD.PaddingS

	start := region.StartS - pad
	if start < 0 {
		start = 0
	}
	end := region.EndS + pad
	if end > duration {
		end = duration
	}

	startSample := int(start * float64(sampleRate))
	endSample := int(end * float64(sampleRate))
	if startSample < 0 {
		startSample = 0
	}
	if endSample > len(samples) {
		endSample = len(samples)
	}
	if startSample >= endSample {
		return regionOutcome{skipped: true, reason: "empty region slice after padding"}
	}

	slice := samples[startSample:endSample]

	result, err := o.transcriber.Transcribe(ctx, slice, sampleRate, o.opts.sttOptions(language))
	if err != nil {
		return regionOutcome{skipped: true, reason: err.Error()}
	}

	offset := region.StartS + seg.StartS

	segments := make([]model.TimedSegment, 0, len(result.Segments))
	for _, s := range result.Segments {
		segments = append(segments, shiftSegment(s, offset))
	}

	return regionOutcome{segments: segments, language: result.Language}
}

func (o *Orchestrator) transcribeWhole(ctx context.Context, samples []float32, sampleRate int, seg model.AudioSegment, language string) ([]model.TimedSegment, error) {
	result, err := o.transcriber.Transcribe(ctx, samples, sampleRate, o.opts.sttOptions(language))
	if err != nil {
		return nil, fmt.Errorf("whole-segment fallback failed: %w", err)
	}

	segments := make([]model.TimedSegment, 0, len(result.Segments))
	for _, s := range result.Segments {
		segments = append(segments, shiftSegment(s, seg.StartS))
	}
	return segments, nil
}

func shiftSegment(s stt.Segment, offset float64) model.TimedSegment {
	words := make([]model.Word, 0, len(s.Words))
	for _, w := range s.Words {
		words = append(words, model.Word{
			Text:        w.Text,
			StartS:      w.StartS + offset,
			EndS:        w.EndS + offset,
			Probability: w.Probability,
		})
	}

	return model.TimedSegment{
		StartS: s.StartS + offset,
		EndS:   s.EndS + offset,
		Text:   s.Text,
		Words:  words,
	}
}

func scrubSegments(segments []model.TimedSegment, opts ScrubberOptions) []model.TimedSegment {
	out := make([]model.TimedSegment, len(segments))
	for i, s := range segments {
		if len(s.Words) > 0 {
			s.Words = ScrubWords(s.Words, opts)
			s.Text = joinWords(s.Words)
		} else {
			s.Text = ScrubText(s.Text, opts)
		}
		out[i] = s
	}
	return out
}
