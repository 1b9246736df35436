package vad

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dusancv22/video-transcriber/cmd/transcriber/model"
)

func TestMergeCloseRegions(t *testing.T) {
	tcs := []struct {
		name    string
		regions []model.SpeechRegion
		maxGapS float64
		want    []model.SpeechRegion
	}{
		{
			name:    "empty",
			regions: nil,
			maxGapS: 0.5,
			want:    nil,
		},
		{
			name: "single region untouched",
			regions: []model.SpeechRegion{
				{StartS: 1, EndS: 2},
			},
			maxGapS: 0.5,
			want: []model.SpeechRegion{
				{StartS: 1, EndS: 2},
			},
		},
		{
			name: "close regions merge",
			regions: []model.SpeechRegion{
				{StartS: 1, EndS: 2},
				{StartS: 2.3, EndS: 3},
			},
			maxGapS: 0.5,
			want: []model.SpeechRegion{
				{StartS: 1, EndS: 3},
			},
		},
		{
			name: "far regions stay separate",
			regions: []model.SpeechRegion{
				{StartS: 1, EndS: 2},
				{StartS: 5, EndS: 6},
			},
			maxGapS: 0.5,
			want: []model.SpeechRegion{
				{StartS: 1, EndS: 2},
				{StartS: 5, EndS: 6},
			},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			got := MergeCloseRegions(tc.regions, tc.maxGapS)
			require.Equal(t, tc.want, got)
		})
	}
}
