// Package job drives one input file through the whole pipeline: decode,
// segment, VAD-gated transcription, segment boundary optimization, overlap
// removal, prose normalization, and subtitle output. The Coordinator owns
// the temp directory lifecycle, progress reporting, and cancellation.
//
// Run is synchronous; running many files concurrently means running one
// Coordinator per file from the caller's own goroutines. The decoder, VAD
// detector, and transcriber are shared, process-lifetime collaborators.
package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/dusancv22/video-transcriber/cmd/transcriber/audio"
	"github.com/dusancv22/video-transcriber/cmd/transcriber/combiner"
	"github.com/dusancv22/video-transcriber/cmd/transcriber/config"
	"github.com/dusancv22/video-transcriber/cmd/transcriber/lexicon"
	"github.com/dusancv22/video-transcriber/cmd/transcriber/metrics"
	"github.com/dusancv22/video-transcriber/cmd/transcriber/model"
	"github.com/dusancv22/video-transcriber/cmd/transcriber/normalize"
	"github.com/dusancv22/video-transcriber/cmd/transcriber/orchestrator"
	"github.com/dusancv22/video-transcriber/cmd/transcriber/pipelineerr"
	"github.com/dusancv22/video-transcriber/cmd/transcriber/segmentopt"
	"github.com/dusancv22/video-transcriber/cmd/transcriber/stt"
	"github.com/dusancv22/video-transcriber/cmd/transcriber/subtitle"
	"github.com/dusancv22/video-transcriber/cmd/transcriber/vad"
)

// ProgressFunc receives a monotonically increasing percent-complete value
// (0-100) and a short stage label: 0-30% decode+segment, 30-70%
// VAD+transcribe, 70-85% combine+normalize, 85-100% subtitle build + file
// writes.
type ProgressFunc func(percent int, stage string)

// Timings is the per-stage wall-clock report returned with a Result.
type Timings map[string]time.Duration

// Result is Run's return value.
type Result struct {
	TranscriptPath string
	SubtitlePaths  map[config.OutputFormat]string
	Language       string
	Timings        Timings
	Combiner       combiner.Stats
}

// Coordinator drives one file through the pipeline. The Decoder, VAD
// detector, and STT transcriber are process-lifetime collaborators
// constructed once by the caller and shared across Coordinators.
type Coordinator struct {
	cfg     config.JobConfig
	decoder audio.Decoder
	vadDet  vad.Detector
	sttT    stt.Transcriber
	lex     *lexicon.Lexicon
	metrics *metrics.Metrics
}

// New constructs a Coordinator for one job's worth of config. lex and m may
// be nil; a nil lexicon falls back to lexicon.Default(), a nil metrics
// bundle disables instrumentation.
func New(cfg config.JobConfig, decoder audio.Decoder, detector vad.Detector, transcriber stt.Transcriber, lex *lexicon.Lexicon, m *metrics.Metrics) *Coordinator {
	cfg.SetDefaults()
	return &Coordinator{cfg: cfg, decoder: decoder, vadDet: detector, sttT: transcriber, lex: lex, metrics: m}
}

// Run executes the pipeline: decode, segment, VAD-gate and transcribe each
// segment, optimize and combine segment boundaries, normalize prose, build
// subtitle cues, and serialize every configured output. progress may be nil.
func (c *Coordinator) Run(ctx context.Context, progress ProgressFunc) (Result, error) {
	if err := c.cfg.IsValid(); err != nil {
		return Result{}, &pipelineerr.Error{Kind: pipelineerr.ErrorKindInputUnreadable, Stage: "validate", Path: c.cfg.InputPath, Err: err}
	}
	if err := checkOutputWritable(c.cfg.OutDir); err != nil {
		return Result{}, &pipelineerr.Error{Kind: pipelineerr.ErrorKindOutputUnwritable, Stage: "validate", Path: c.cfg.OutDir, Err: err}
	}

	report := progress
	if report == nil {
		report = func(int, string) {}
	}

	jobID := uuid.NewString()
	logger := slog.Default().With(slog.String("jobID", jobID), slog.String("input", c.cfg.InputPath))

	tempDir, err := os.MkdirTemp("", "video-transcriber-"+jobID+"-")
	if err != nil {
		return Result{}, &pipelineerr.Error{Kind: pipelineerr.ErrorKindOutputUnwritable, Stage: "init", Err: fmt.Errorf("failed to allocate temp dir: %w", err)}
	}
	defer func() {
		if err := os.RemoveAll(tempDir); err != nil {
			logger.Warn("failed to remove temp dir", slog.String("err", err.Error()))
		}
	}()

	timings := make(Timings)
	track := func(stage string) func() {
		start := time.Now()
		return func() {
			d := time.Since(start)
			timings[stage] = d
			if c.metrics != nil {
				c.metrics.ObserveStage(stage, d.Seconds())
			}
		}
	}

	result, err := c.run(ctx, jobID, tempDir, logger, report, track, timings)
	if err != nil {
		if pipelineerr.IsCancelled(err) {
			if c.metrics != nil {
				c.metrics.IncJob("cancelled")
			}
		} else if c.metrics != nil {
			c.metrics.IncJob("failed")
		}
		return Result{}, err
	}

	if c.metrics != nil {
		c.metrics.IncJob("success")
	}
	return result, nil
}

func (c *Coordinator) run(ctx context.Context, jobID, tempDir string, logger *slog.Logger, report ProgressFunc, track func(string) func(), timings Timings) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, cancelledErr("init", c.cfg.InputPath)
	}

	done := track("decode")
	samples, sampleRate, err := c.decoder.Decode(ctx, c.cfg.InputPath)
	done()
	if err != nil {
		return Result{}, &pipelineerr.Error{Kind: pipelineerr.ErrorKindInputUnreadable, Stage: "decode", Path: c.cfg.InputPath, Err: err}
	}
	if len(samples) == 0 {
		return Result{}, &pipelineerr.Error{Kind: pipelineerr.ErrorKindNoAudioTrack, Stage: "decode", Path: c.cfg.InputPath, Err: fmt.Errorf("decoder returned no samples")}
	}
	report(10, "decode")

	if err := ctx.Err(); err != nil {
		return Result{}, cancelledErr("segment", c.cfg.InputPath)
	}

	done = track("segment")
	segmenter := audio.NewSegmenter(c.cfg.OutputOptions.Audio)
	meta, err := segmenter.Split(c.cfg.InputPath, samples, sampleRate, tempDir)
	done()
	if err != nil {
		return Result{}, &pipelineerr.Error{Kind: pipelineerr.ErrorKindInputUnreadable, Stage: "segment", Path: c.cfg.InputPath, Err: err}
	}
	if c.metrics != nil {
		c.metrics.AddSegments(len(meta.Segments))
	}
	report(30, "segment")
	logger.Debug("split audio into segments", slog.Int("numSegments", len(meta.Segments)))

	done = track("transcribe")
	groups, language, err := c.transcribeSegments(ctx, meta, samples, sampleRate, logger, report)
	done()
	if err != nil {
		return Result{}, err
	}
	report(70, "transcribe")

	done = track("combine")
	combined, combinerStats := combiner.New(c.cfg.OutputOptions.Combiner).CombineSegments(groups, meta)
	done()
	if c.metrics != nil {
		c.metrics.AddWordsRemoved(combinerStats.WordsRemoved)
	}

	done = track("normalize")
	prose := joinSegmentText(combined)
	normalized := normalize.New(c.cfg.OutputOptions.Text, c.lex).Normalize(prose)
	done()
	report(85, "combine+normalize")

	var transcriptPath string
	if c.cfg.WriteTranscript {
		transcriptPath = filepath.Join(c.cfg.OutDir, baseName(c.cfg.InputPath)+".txt")
		if err := os.WriteFile(transcriptPath, []byte(normalized+"\n"), 0o644); err != nil {
			return Result{}, &pipelineerr.Error{Kind: pipelineerr.ErrorKindOutputUnwritable, Stage: "write_transcript", Path: transcriptPath, Err: err}
		}
	}

	if err := ctx.Err(); err != nil {
		return Result{}, cancelledErr("subtitle", c.cfg.InputPath)
	}

	done = track("subtitle")
	cues := subtitle.New(c.cfg.OutputOptions.Subtitle).Build(combined)
	if c.metrics != nil {
		c.metrics.AddCues(len(cues))
	}

	subtitlePaths, err := c.writeSubtitles(cues)
	done()
	if err != nil {
		return Result{}, err
	}
	report(100, "subtitle")

	return Result{
		TranscriptPath: transcriptPath,
		SubtitlePaths:  subtitlePaths,
		Language:       language,
		Timings:        timings,
		Combiner:       combinerStats,
	}, nil
}

// transcribeSegments runs VAD-gated transcription over each AudioSegment in
// order, then segment boundary optimization on each segment's own result
// before it is handed to the combiner. Cancellation is checked between
// segments.
func (c *Coordinator) transcribeSegments(ctx context.Context, meta model.SplitMetadata, samples []float32, sampleRate int, logger *slog.Logger, report ProgressFunc) ([][]model.TimedSegment, string, error) {
	orch := orchestrator.New(c.vadDet, c.sttT, orchestrator.Options{
		VAD: c.cfg.OutputOptions.VAD,
		Scrubber: orchestrator.ScrubberOptions{
			WindowMin:  c.cfg.OutputOptions.Scrubber.WindowMin,
			WindowMax:  c.cfg.OutputOptions.Scrubber.WindowMax,
			MaxRepeats: c.cfg.OutputOptions.Scrubber.MaxRepeats,
		},
		Beam:                      5,
		Temperature:               0,
		CompressionRatioThreshold: 2.4,
		LogProbThreshold:          -1.0,
		SuppressBlank:             true,
	})
	optimizer := segmentopt.New(c.cfg.OutputOptions.SegmentOpt)

	groups := make([][]model.TimedSegment, len(meta.Segments))
	var language string

	for i, seg := range meta.Segments {
		if err := ctx.Err(); err != nil {
			return nil, "", cancelledErr("transcribe", seg.Path)
		}

		segSamples := sliceSegment(samples, seg, sampleRate)

		result, err := orch.TranscribeSegment(ctx, seg, segSamples, sampleRate, c.cfg.Language)
		if err != nil {
			if pipelineerr.IsCancelled(err) {
				return nil, "", err
			}
			var pErr *pipelineerr.Error
			if errors.As(err, &pErr) && pErr.Kind == pipelineerr.ErrorKindModelUnavailable {
				return nil, "", err
			}
			logger.Warn("segment transcription failed, leaving it empty", slog.String("path", seg.Path), slog.String("err", err.Error()))
			groups[i] = nil
			continue
		}

		if language == "" && result.Language != "" {
			language = result.Language
		}
		if c.metrics != nil && result.RegionsSkipped > 0 {
			c.metrics.AddRegionsSkipped(result.RegionsSkipped)
		}

		groups[i] = optimizer.Optimize(result.Segments)

		pct := 30 + (i+1)*40/len(meta.Segments)
		report(pct, "transcribe")
	}

	return groups, language, nil
}

func (c *Coordinator) writeSubtitles(cues []model.SubtitleCue) (map[config.OutputFormat]string, error) {
	paths := make(map[config.OutputFormat]string, len(c.cfg.SubtitleFormats))
	base := baseName(c.cfg.InputPath)

	for _, format := range c.cfg.SubtitleFormats {
		path := filepath.Join(c.cfg.OutDir, base+"."+string(format))

		f, err := os.Create(path)
		if err != nil {
			return nil, &pipelineerr.Error{Kind: pipelineerr.ErrorKindOutputUnwritable, Stage: "write_subtitle", Path: path, Err: err}
		}

		var writeErr error
		switch format {
		case config.OutputFormatSRT:
			writeErr = subtitle.WriteSRT(f, cues)
		case config.OutputFormatVTT:
			writeErr = subtitle.WriteVTT(f, cues)
		case config.OutputFormatASS:
			writeErr = subtitle.WriteASS(f, cues)
		default:
			writeErr = fmt.Errorf("unsupported subtitle format %q", format)
		}
		closeErr := f.Close()

		if writeErr != nil {
			return nil, &pipelineerr.Error{Kind: pipelineerr.ErrorKindOutputUnwritable, Stage: "write_subtitle", Path: path, Err: writeErr}
		}
		if closeErr != nil {
			return nil, &pipelineerr.Error{Kind: pipelineerr.ErrorKindOutputUnwritable, Stage: "write_subtitle", Path: path, Err: closeErr}
		}

		paths[format] = path
	}

	return paths, nil
}

// sliceSegment extracts an AudioSegment's own samples out of the full
// decoded buffer by its StartS/EndS offsets, rather than re-reading the
// segment file the Segmenter wrote to disk: the single-segment case
// references the original (possibly non-WAV) input path directly, so a
// disk round-trip can't be uniform across both cases.
func sliceSegment(samples []float32, seg model.AudioSegment, sampleRate int) []float32 {
	start := int(seg.StartS * float64(sampleRate))
	end := int(seg.EndS * float64(sampleRate))
	if start < 0 {
		start = 0
	}
	if end > len(samples) {
		end = len(samples)
	}
	if start >= end {
		return nil
	}
	return samples[start:end]
}

func joinSegmentText(segments []model.TimedSegment) string {
	var out []byte
	for _, seg := range segments {
		if seg.Text == "" {
			continue
		}
		if len(out) > 0 {
			out = append(out, ' ')
		}
		out = append(out, seg.Text...)
	}
	return string(out)
}

func baseName(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}

func checkOutputWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	probe, err := os.CreateTemp(dir, ".write-check-*")
	if err != nil {
		return fmt.Errorf("output directory is not writable: %w", err)
	}
	name := probe.Name()
	probe.Close()
	return os.Remove(name)
}

func cancelledErr(stage, path string) error {
	return &pipelineerr.Error{Kind: pipelineerr.ErrorKindCancelled, Stage: stage, Path: path, Err: context.Canceled}
}
