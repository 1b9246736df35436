package pipelineerr

import "fmt"

// ErrorKind classifies a pipeline failure: local failures never escape the
// orchestrator, everything else bubbles up carrying kind, stage, and path.
type ErrorKind string

const (
	// ErrorKindInputUnreadable means the source file is missing, empty, or
	// undecodable. Fatal for this file.
	ErrorKindInputUnreadable ErrorKind = "input_unreadable"
	// ErrorKindNoAudioTrack means decode succeeded but no audio stream was
	// found. Fatal for this file.
	ErrorKindNoAudioTrack ErrorKind = "no_audio_track"
	// ErrorKindModelUnavailable means the STT or VAD model failed to load.
	// Fatal; never retried silently.
	ErrorKindModelUnavailable ErrorKind = "model_unavailable"
	// ErrorKindRegionFailed means a single VAD region failed to transcribe.
	// Local; the region is skipped and the run continues.
	ErrorKindRegionFailed ErrorKind = "region_failed"
	// ErrorKindSegmentFailed means a whole audio segment failed STT after the
	// non-VAD fallback. Local; the segment's text is left empty.
	ErrorKindSegmentFailed ErrorKind = "segment_failed"
	// ErrorKindOutputUnwritable means the destination directory isn't
	// writable or lacks space. Fatal, checked before any stage work begins.
	ErrorKindOutputUnwritable ErrorKind = "output_unwritable"
	// ErrorKindCancelled means the job was cancelled; distinct from failure.
	ErrorKindCancelled ErrorKind = "cancelled"
)

// Error is the typed error the Coordinator surfaces to its caller. It always
// carries the kind, the stage that raised it, and — when relevant — the
// input path.
type Error struct {
	Kind  ErrorKind
	Stage string
	Path  string
	Err   error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: stage %q, path %q: %v", e.Kind, e.Stage, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: stage %q: %v", e.Kind, e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsCancelled reports whether err is (or wraps) a Cancelled job Error.
func IsCancelled(err error) bool {
	var jErr *Error
	if ok := asJobError(err, &jErr); ok {
		return jErr.Kind == ErrorKindCancelled
	}
	return false
}

func asJobError(err error, target **Error) bool {
	for err != nil {
		if jErr, ok := err.(*Error); ok {
			*target = jErr
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
