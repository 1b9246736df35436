package subtitle

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dusancv22/video-transcriber/cmd/transcriber/model"
)

func TestAnalyzeShift(t *testing.T) {
	tcs := []struct {
		name       string
		before     []model.SubtitleCue
		after      []model.SubtitleCue
		wantMedian float64
		wantMax    float64
		wantErr    bool
	}{
		{
			name:   "empty sets",
			before: nil,
			after:  nil,
		},
		{
			name: "identical cues shift nothing",
			before: []model.SubtitleCue{
				{StartS: 1, EndS: 2},
				{StartS: 3, EndS: 4},
			},
			after: []model.SubtitleCue{
				{StartS: 1, EndS: 2},
				{StartS: 3, EndS: 4},
			},
			wantMedian: 0,
			wantMax:    0,
		},
		{
			name: "uniform forward shift",
			before: []model.SubtitleCue{
				{StartS: 1, EndS: 2},
				{StartS: 3, EndS: 4},
				{StartS: 5, EndS: 6},
			},
			after: []model.SubtitleCue{
				{StartS: 1.5, EndS: 2.5},
				{StartS: 3.5, EndS: 4.5},
				{StartS: 5.5, EndS: 6.5},
			},
			wantMedian: 0.5,
			wantMax:    0.5,
		},
		{
			name:    "count mismatch is an error",
			before:  []model.SubtitleCue{{StartS: 1, EndS: 2}},
			after:   nil,
			wantErr: true,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			got, err := AnalyzeShift(tc.before, tc.after)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, len(tc.before), got.CueCount)
			require.InDelta(t, tc.wantMedian, got.ShiftMedian, 0.001)
			require.InDelta(t, tc.wantMax, got.ShiftMax, 0.001)
		})
	}
}

func TestAnalyzeShiftCountsIntegrityIssues(t *testing.T) {
	before := []model.SubtitleCue{
		{StartS: 1, EndS: 2},
		{StartS: 3, EndS: 4},
	}
	after := []model.SubtitleCue{
		{StartS: 1, EndS: 1}, // zero duration
		{StartS: 0.5, EndS: 4},
	}

	got, err := AnalyzeShift(before, after)
	require.NoError(t, err)
	require.Equal(t, 1, got.ZeroDuration)
	require.Equal(t, 1, got.NewOverlaps)
}
