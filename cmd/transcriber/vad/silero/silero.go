// Package silero adapts github.com/streamer45/silero-vad-go/speech into the
// vad.Detector contract, running one detection pass per whole decoded
// segment.
package silero

import (
	"context"
	"fmt"
	"sync"

	"github.com/streamer45/silero-vad-go/speech"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/dusancv22/video-transcriber/cmd/transcriber/model"
	"github.com/dusancv22/video-transcriber/cmd/transcriber/vad"
)

const windowSize = 1536

// RuntimeConfig points at the process-lifetime ONNX Runtime shared library.
// The library path is an explicit init-time dependency, set once before the
// first Detector is created, rather than an import-time side effect.
type RuntimeConfig struct {
	LibraryPath string
}

var runtimeInitOnce sync.Once
var runtimeInitErr error

// InitRuntime sets the ONNX Runtime shared library path exactly once per
// process. Subsequent calls are no-ops whatever path they pass, and return
// the first call's result.
func InitRuntime(cfg RuntimeConfig) error {
	runtimeInitOnce.Do(func() {
		if cfg.LibraryPath != "" {
			ort.SetSharedLibraryPath(cfg.LibraryPath)
		}
		runtimeInitErr = ort.InitializeEnvironment()
	})
	return runtimeInitErr
}

// Detector wraps a Silero VAD model. It is safe to reuse across many Detect
// calls but not safe for concurrent use; callers must serialize invocations
// the same way the Job Coordinator serializes STT calls.
type Detector struct {
	modelPath string
	mu        sync.Mutex
}

func NewDetector(modelPath string) *Detector {
	return &Detector{modelPath: modelPath}
}

func (d *Detector) Detect(_ context.Context, samples []float32, opts vad.DetectOptions) ([]model.SpeechRegion, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(samples) == 0 {
		return nil, nil
	}

	sd, err := speech.NewDetector(speech.DetectorConfig{
		ModelPath:            d.modelPath,
		SampleRate:           opts.SampleRate,
		WindowSize:           windowSize,
		Threshold:            float32(opts.Threshold),
		MinSilenceDurationMs: opts.MinSilenceMs,
		SpeechPadMs:          0, // padding is applied by the orchestrator, not here
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create VAD detector: %w", err)
	}
	defer sd.Destroy()

	segments, err := sd.Detect(samples)
	if err != nil {
		return nil, fmt.Errorf("failed to run VAD detection: %w", err)
	}

	minSpeechS := float64(opts.MinSpeechMs) / 1000.0

	regions := make([]model.SpeechRegion, 0, len(segments))
	for _, seg := range segments {
		region := model.SpeechRegion{
			StartS: float64(seg.SpeechStartAt),
			EndS:   float64(seg.SpeechEndAt),
		}
		if region.EndS-region.StartS < minSpeechS {
			continue
		}
		regions = append(regions, region)
	}

	return regions, nil
}
