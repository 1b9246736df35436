package audio

import "context"

// Decoder turns a container file (mp4, mkv, wav, mp3, whatever ffmpeg or an
// equivalent understands) into mono PCM at a known sample rate. The
// pipeline never decodes media itself — the Job Coordinator takes a Decoder
// as a constructor dependency, the same way it takes a vad.Detector and an
// stt.Transcriber.
type Decoder interface {
	Decode(ctx context.Context, path string) (samples []float32, sampleRate int, err error)
}
