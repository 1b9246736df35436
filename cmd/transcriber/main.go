package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/dusancv22/video-transcriber/cmd/transcriber/audio"
	"github.com/dusancv22/video-transcriber/cmd/transcriber/config"
	"github.com/dusancv22/video-transcriber/cmd/transcriber/job"
	"github.com/dusancv22/video-transcriber/cmd/transcriber/lexicon"
	"github.com/dusancv22/video-transcriber/cmd/transcriber/metrics"
	"github.com/dusancv22/video-transcriber/cmd/transcriber/stt"
	"github.com/dusancv22/video-transcriber/cmd/transcriber/stt/azure"
	"github.com/dusancv22/video-transcriber/cmd/transcriber/stt/whisper"
	"github.com/dusancv22/video-transcriber/cmd/transcriber/vad"
	"github.com/dusancv22/video-transcriber/cmd/transcriber/vad/silero"
)

const runTimeout = 2 * time.Hour

// applyCLIFlags overlays config.FromEnv() with command-line flags, letting an
// operator invoke the binary directly against a file without exporting
// every INPUT_PATH/OUT_DIR/... environment variable first.
func applyCLIFlags(cfg *config.JobConfig) {
	pflag.StringVar(&cfg.InputPath, "input", cfg.InputPath, "path to the input video/audio file")
	pflag.StringVar(&cfg.OutDir, "out-dir", cfg.OutDir, "directory to write the transcript and subtitles to")
	pflag.StringVar(&cfg.Language, "language", cfg.Language, `source language, or "auto" to detect it`)
	pflag.IntVar(&cfg.NumThreads, "threads", cfg.NumThreads, "number of STT threads to use")
	pflag.BoolVar(&cfg.WriteTranscript, "write-transcript", cfg.WriteTranscript, "write a plain-text transcript alongside the subtitles")

	var formats []string
	for _, f := range cfg.SubtitleFormats {
		formats = append(formats, string(f))
	}
	pflag.StringSliceVar(&formats, "subtitle-formats", formats, "comma-separated list of srt,vtt,ass")
	pflag.Parse()

	cfg.SubtitleFormats = nil
	for _, f := range formats {
		cfg.SubtitleFormats = append(cfg.SubtitleFormats, config.OutputFormat(f))
	}
}

func slogReplaceAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.SourceKey {
		source := a.Value.Any().(*slog.Source)
		if source.File == "" {
			// Log from a dependency (e.g. the STT or VAD bindings).
			if pc, file, line, ok := runtime.Caller(7); ok {
				if f := runtime.FuncForPC(pc); f != nil {
					source.File = filepath.Base(filepath.Dir(file)) + "/" + filepath.Base(file)
					source.Line = line
				}
			}
		} else {
			source.File = filepath.Base(source.File)
		}
	}
	return a
}

// buildTranscriber selects the stt.Transcriber backend config.TranscribeAPI
// names, reading the engine-specific location (model file, API key) from the
// process environment the same way the ONNX/Silero model path below is.
func buildTranscriber(cfg config.JobConfig, dataPath string) (stt.Transcriber, error) {
	switch cfg.TranscribeAPI {
	case config.TranscribeAPIAzure:
		return azure.NewRecognizer(azure.Config{
			SpeechKey:    os.Getenv("AZURE_SPEECH_KEY"),
			SpeechRegion: os.Getenv("AZURE_SPEECH_REGION"),
			DataDir:      dataPath,
		})
	case config.TranscribeAPIWhisperCPP:
		return whisper.NewContext(whisper.Config{
			ModelFile:  os.Getenv("WHISPER_MODEL_FILE"),
			NumThreads: cfg.NumThreads,
		})
	default:
		return nil, fmt.Errorf("unsupported TranscribeAPI %q", cfg.TranscribeAPI)
	}
}

func buildDetector() (vad.Detector, error) {
	if err := silero.InitRuntime(silero.RuntimeConfig{LibraryPath: os.Getenv("ONNX_LIBRARY_PATH")}); err != nil {
		return nil, fmt.Errorf("failed to initialize VAD runtime: %w", err)
	}
	return silero.NewDetector(os.Getenv("VAD_MODEL_PATH")), nil
}

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("failed to load config", slog.String("err", err.Error()))
		os.Exit(1)
	}
	cfg.SetDefaults()
	applyCLIFlags(&cfg)

	if cfg.OutDir == "" {
		cfg.OutDir = "."
	}
	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		slog.Error("failed to create output directory", slog.String("err", err.Error()))
		os.Exit(1)
	}

	logFile, err := os.Create(filepath.Join(cfg.OutDir, "transcriber.log"))
	if err != nil {
		slog.Error("failed to create log file", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer logFile.Close()

	// This lets us write logs simultaneously to console and file.
	logWriter := io.MultiWriter(os.Stdout, logFile)

	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource:   true,
		Level:       slog.LevelDebug,
		ReplaceAttr: slogReplaceAttr,
	}))
	slog.SetDefault(logger)

	pid := os.Getpid()
	if err := os.WriteFile("/tmp/transcriber.pid", []byte(fmt.Sprintf("%d", pid)), 0666); err != nil {
		slog.Error("failed to write pid file", slog.String("err", err.Error()))
		os.Exit(1)
	}

	decoder := audio.NewFFmpegDecoder(os.Getenv("FFMPEG_PATH"))

	detector, err := buildDetector()
	if err != nil {
		slog.Error("failed to create VAD detector", slog.String("err", err.Error()))
		os.Exit(1)
	}

	transcriber, err := buildTranscriber(cfg, cfg.OutDir)
	if err != nil {
		slog.Error("failed to create STT transcriber", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := transcriber.Destroy(); err != nil {
			slog.Warn("failed to destroy transcriber", slog.String("err", err.Error()))
		}
	}()

	m := metrics.New()

	coordinator := job.New(cfg, decoder, detector, transcriber, lexicon.Default(), m)

	slog.Info("starting transcription job", slog.String("input", cfg.InputPath))

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		slog.Info("received termination signal, cancelling job")
		cancel()
	}()

	result, err := coordinator.Run(ctx, func(percent int, stage string) {
		slog.Debug("progress", slog.Int("percent", percent), slog.String("stage", stage))
	})
	if err != nil {
		slog.Error("transcription job failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	slog.Info("transcription job finished",
		slog.String("transcript", result.TranscriptPath),
		slog.Any("subtitles", result.SubtitlePaths),
		slog.String("language", result.Language))
}
