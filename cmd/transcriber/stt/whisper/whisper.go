// Package whisper adapts a local whisper.cpp model into stt.Transcriber,
// wiring through the repetition-suppression parameter set: temperature 0
// with beam search, no_context (no cross-call conditioning), suppress-blank,
// and word-level token timestamps.
package whisper

// #cgo LDFLAGS: -l:libwhisper.a -lm -lstdc++
// #include <whisper.h>
// #include <stdlib.h>
import "C"

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"
	"unsafe"

	"github.com/dusancv22/video-transcriber/cmd/transcriber/stt"
)

// Config describes the GGML model file and thread budget for a Context.
type Config struct {
	// ModelFile is the path to the GGML model file to use.
	ModelFile string
	// NumThreads is the number of system threads used per transcription.
	NumThreads int
}

func (c Config) IsValid() error {
	if c == (Config{}) {
		return fmt.Errorf("invalid empty config")
	}

	if c.ModelFile == "" {
		return fmt.Errorf("invalid ModelFile: should not be empty")
	}

	if _, err := os.Stat(c.ModelFile); err != nil {
		return fmt.Errorf("invalid ModelFile: failed to stat model file: %w", err)
	}

	if numCPU := runtime.NumCPU(); c.NumThreads == 0 || c.NumThreads > numCPU {
		return fmt.Errorf("invalid NumThreads: should be in the range [1, %d]", numCPU)
	}

	return nil
}

// Context wraps a loaded whisper.cpp model. The underlying C context is not
// safe for concurrent Transcribe calls; callers must serialize invocations,
// same as any other shared model handle in this pipeline.
type Context struct {
	cfg Config
	ctx *C.struct_whisper_context
	mu  sync.Mutex
}

func NewContext(cfg Config) (*Context, error) {
	if err := cfg.IsValid(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	path := C.CString(cfg.ModelFile)
	defer C.free(unsafe.Pointer(path))

	ctx := C.whisper_init_from_file(path)
	if ctx == nil {
		return nil, fmt.Errorf("failed to load model file")
	}

	return &Context{cfg: cfg, ctx: ctx}, nil
}

func (c *Context) Destroy() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctx == nil {
		return fmt.Errorf("context is not initialized")
	}
	C.whisper_free(c.ctx)
	c.ctx = nil
	return nil
}

func (c *Context) Transcribe(_ context.Context, samples []float32, _ int, opts stt.TranscribeOptions) (stt.Result, error) {
	if len(samples) == 0 {
		return stt.Result{}, fmt.Errorf("samples should not be empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	strategy := C.WHISPER_SAMPLING_GREEDY
	if opts.Beam > 0 {
		strategy = C.WHISPER_SAMPLING_BEAM_SEARCH
	}

	params := C.whisper_full_default_params(strategy)
	params.n_threads = C.int(c.cfg.NumThreads)
	params.max_len = C.int(8)
	params.split_on_word = C.bool(true)

	// Anti-repetition parameter set: no cross-region context bleed,
	// greedy/low-temperature decode, and a bail-out when the model
	// degenerates into a loop rather than looping forever.
	params.no_context = C.bool(!opts.ConditionOnPreviousText)
	params.temperature = C.float(opts.Temperature)
	params.suppress_blank = C.bool(opts.SuppressBlank)
	if opts.CompressionRatioThreshold > 0 {
		// whisper.cpp exposes this as an entropy threshold rather than a
		// direct compression-ratio cutoff; we map the configured value
		// through directly, same scale order as the reference parameter.
		params.entropy_thold = C.float(opts.CompressionRatioThreshold)
	}
	if opts.LogProbThreshold != 0 {
		params.logprob_thold = C.float(opts.LogProbThreshold)
	}
	if opts.Beam > 0 {
		params.beam_search.beam_size = C.int(opts.Beam)
	}
	params.token_timestamps = C.bool(opts.WordTimestamps)

	var langCStr *C.char
	if opts.Language != "" && opts.Language != "auto" {
		langCStr = C.CString(opts.Language)
		defer C.free(unsafe.Pointer(langCStr))
		params.language = langCStr
	}

	var promptCStr *C.char
	if opts.InitialPrompt != "" {
		promptCStr = C.CString(opts.InitialPrompt)
		defer C.free(unsafe.Pointer(promptCStr))
		params.initial_prompt = promptCStr
	}

	ret := C.whisper_full(c.ctx, params, (*C.float)(&samples[0]), C.int(len(samples)))
	if ret != 0 {
		return stt.Result{}, fmt.Errorf("whisper_full failed with code %d", ret)
	}

	n := int(C.whisper_full_n_segments(c.ctx))
	segments := make([]stt.Segment, n)
	for i := 0; i < n; i++ {
		segments[i].Text = C.GoString(C.whisper_full_get_segment_text(c.ctx, C.int(i)))
		segments[i].StartS = float64(C.whisper_full_get_segment_t0(c.ctx, C.int(i))) / 100.0
		segments[i].EndS = float64(C.whisper_full_get_segment_t1(c.ctx, C.int(i))) / 100.0

		if opts.WordTimestamps {
			nTokens := int(C.whisper_full_n_tokens(c.ctx, C.int(i)))
			words := make([]stt.Word, 0, nTokens)
			for j := 0; j < nTokens; j++ {
				data := C.whisper_full_get_token_data(c.ctx, C.int(i), C.int(j))
				text := C.GoString(C.whisper_full_get_token_text(c.ctx, C.int(i), C.int(j)))
				if text == "" {
					continue
				}
				words = append(words, stt.Word{
					Text:        text,
					StartS:      float64(data.t0) / 100.0,
					EndS:        float64(data.t1) / 100.0,
					Probability: float64(data.p),
				})
			}
			segments[i].Words = words
		}
	}

	lang := ""
	if langID := int(C.whisper_full_lang_id(c.ctx)); langID >= 0 {
		lang = C.GoString(C.whisper_lang_str(C.int(langID)))
	}

	return stt.Result{Language: lang, Segments: segments}, nil
}
