// Package azure adapts Azure Cognitive Services Speech into stt.Transcriber
// as the alternative to the local whisper.cpp backend, selected by
// config.TranscribeAPI. Each call pushes one whole decoded PCM slice
// (already padded, already VAD-gated) through a one-shot recognition
// session.
package azure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/Microsoft/cognitive-services-speech-sdk-go/audio"
	"github.com/Microsoft/cognitive-services-speech-sdk-go/common"
	"github.com/Microsoft/cognitive-services-speech-sdk-go/speech"

	audiopkg "github.com/dusancv22/video-transcriber/cmd/transcriber/audio"
	"github.com/dusancv22/video-transcriber/cmd/transcriber/stt"
)

const sampleRate = 16000

// Config describes the Azure subscription and where to write the SDK's own
// diagnostic log.
type Config struct {
	SpeechKey    string
	SpeechRegion string
	DataDir      string
}

func (c Config) IsValid() error {
	if c.SpeechKey == "" {
		return fmt.Errorf("invalid SpeechKey: should not be empty")
	}
	if c.SpeechRegion == "" {
		return fmt.Errorf("invalid SpeechRegion: should not be empty")
	}
	if c.DataDir == "" {
		return fmt.Errorf("invalid DataDir: should not be empty")
	}
	return nil
}

// Recognizer is the Azure-backed stt.Transcriber implementation.
type Recognizer struct {
	cfg          Config
	speechConfig *speech.SpeechConfig
}

func NewRecognizer(cfg Config) (*Recognizer, error) {
	if err := cfg.IsValid(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	speechConfig, err := speech.NewSpeechConfigFromSubscription(cfg.SpeechKey, cfg.SpeechRegion)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech config: %w", err)
	}
	if err := speechConfig.SetProperty(common.SpeechLogFilename, filepath.Join(cfg.DataDir, "azure.log")); err != nil {
		return nil, fmt.Errorf("failed to set log property: %w", err)
	}

	return &Recognizer{cfg: cfg, speechConfig: speechConfig}, nil
}

func initRecognizer(speechConfig *speech.SpeechConfig) (*speech.SpeechRecognizer, *audio.AudioConfig, *audio.PushAudioInputStream, error) {
	audioStream, err := audio.CreatePushAudioInputStream()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create audio stream: %w", err)
	}

	audioConfig, err := audio.NewAudioConfigFromStreamInput(audioStream)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create audio config: %w", err)
	}

	recognizer, err := speech.NewSpeechRecognizerFromConfig(speechConfig, audioConfig)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create speech recognizer: %w", err)
	}

	recognizer.SessionStarted(func(event speech.SessionEventArgs) {
		defer event.Close()
		slog.Debug("session started", slog.String("sessionID", event.SessionID))
	})
	recognizer.SessionStopped(func(event speech.SessionEventArgs) {
		defer event.Close()
		slog.Debug("session stopped", slog.String("sessionID", event.SessionID))
	})
	recognizer.Canceled(func(event speech.SpeechRecognitionCanceledEventArgs) {
		defer event.Close()
		slog.Debug("transcription canceled", slog.String("details", event.ErrorDetails))
	})

	return recognizer, audioConfig, audioStream, nil
}

func (r *Recognizer) Transcribe(ctx context.Context, samples []float32, _ int, opts stt.TranscribeOptions) (stt.Result, error) {
	if len(samples) == 0 {
		return stt.Result{}, fmt.Errorf("samples should not be empty")
	}

	inputDuration := time.Duration(float64(len(samples))/float64(sampleRate)) * time.Second

	recognizer, audioConfig, audioStream, err := initRecognizer(r.speechConfig)
	if err != nil {
		return stt.Result{}, fmt.Errorf("failed to initialize recognizer: %w", err)
	}
	defer func() {
		audioStream.CloseStream()
		audioConfig.Close()
		recognizer.Close()
	}()

	if opts.Language != "" && opts.Language != "auto" {
		if err := r.speechConfig.SetSpeechRecognitionLanguage(opts.Language); err != nil {
			slog.Warn("failed to set recognition language", slog.String("err", err.Error()))
		}
	}

	resultsCh := make(chan speech.SpeechRecognitionResult, 1)
	errCh := make(chan error, 1)
	recognizer.Recognized(func(event speech.SpeechRecognitionEventArgs) {
		defer event.Close()

		if event.Result.Reason == common.NoMatch {
			return
		}
		if event.Result.Reason == common.Canceled {
			return
		}
		if len(event.Result.Text) == 0 {
			return
		}

		resultsCh <- event.Result
	})

	eosCh := make(chan struct{})
	recognizer.Canceled(func(event speech.SpeechRecognitionCanceledEventArgs) {
		defer event.Close()
		if event.Reason == common.EndOfStream {
			close(eosCh)
		} else if event.Reason == common.Error {
			errCh <- errors.New(event.ErrorDetails)
		}
	})

	if err := <-recognizer.StartContinuousRecognitionAsync(); err != nil {
		return stt.Result{}, fmt.Errorf("failed to start recognizer: %w", err)
	}
	defer func() {
		if err := <-recognizer.StopContinuousRecognitionAsync(); err != nil {
			slog.Error("failed to stop recognizer", slog.String("err", err.Error()))
		}
	}()

	if err := audioStream.Write(audiopkg.EncodeWAV(samples, sampleRate)); err != nil {
		return stt.Result{}, fmt.Errorf("failed to write audio data: %w", err)
	}
	audioStream.CloseStream()

	timeoutCh := time.After(max(inputDuration*2, 10*time.Second))

	var segments []stt.Segment
	var language string
	for {
		select {
		case <-ctx.Done():
			return stt.Result{}, ctx.Err()
		case result := <-resultsCh:
			segments = append(segments, stt.Segment{
				StartS: result.Offset.Seconds(),
				EndS:   result.Offset.Seconds() + result.Duration.Seconds(),
				Text:   result.Text,
			})
		case <-timeoutCh:
			return stt.Result{}, fmt.Errorf("timed out waiting for transcription")
		case err := <-errCh:
			return stt.Result{}, fmt.Errorf("transcription failed: %w", err)
		case <-eosCh:
			return stt.Result{Language: language, Segments: segments}, nil
		}
	}
}

func (r *Recognizer) Destroy() error {
	if r.speechConfig != nil {
		r.speechConfig.Close()
	}
	return nil
}
