package pipelineerr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorString(t *testing.T) {
	err := &Error{
		Kind:  ErrorKindInputUnreadable,
		Stage: "decode",
		Path:  "/tmp/in.mp4",
		Err:   errors.New("boom"),
	}
	require.Contains(t, err.Error(), "input_unreadable")
	require.Contains(t, err.Error(), "decode")
	require.Contains(t, err.Error(), "/tmp/in.mp4")

	noPath := &Error{Kind: ErrorKindModelUnavailable, Stage: "vad", Err: errors.New("boom")}
	require.NotContains(t, noPath.Error(), `path`)
}

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("root cause")
	err := &Error{Kind: ErrorKindSegmentFailed, Stage: "orchestrator", Err: inner}
	require.ErrorIs(t, err, inner)
}

func TestIsCancelled(t *testing.T) {
	tcs := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil",
			err:  nil,
			want: false,
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: false,
		},
		{
			name: "cancelled kind",
			err:  &Error{Kind: ErrorKindCancelled, Stage: "transcribe", Err: context.Canceled},
			want: true,
		},
		{
			name: "other kind",
			err:  &Error{Kind: ErrorKindSegmentFailed, Stage: "transcribe", Err: errors.New("boom")},
			want: false,
		},
		{
			name: "wrapped cancelled kind",
			err:  fmt.Errorf("outer: %w", &Error{Kind: ErrorKindCancelled, Stage: "transcribe", Err: context.Canceled}),
			want: true,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, IsCancelled(tc.err))
		})
	}
}
