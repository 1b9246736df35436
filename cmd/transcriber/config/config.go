package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
)

const (
	// defaults
	ModelSizeDefault        = ModelSizeBase
	NumThreadsDefault       = 2
	TranscribeAPIDefault    = TranscribeAPIWhisperCPP
	LanguageDefault         = "auto"
	MaxSegmentBytesDefault  = 25 * 1024 * 1024
	SegmentOverlapSDefault  = 2.5
	VADThresholdDefault     = 0.30
	VADMinSpeechMsDefault   = 100
	VADMinSilenceMsDefault  = 300
	VADMaxGapSDefault       = 0.5
	VADPaddingSDefault      = 0.2
	MaxCharsPerLineDefault  = 42
	RemoveFillersDefault    = true
	MinOverlapWordsDefault  = 3
	SimilarityThreshDefault = 0.80
	OrphanMaxWordsDefault   = 2
	OrphanMaxGapSDefault    = 1.0
	PauseSplitMinSDefault   = 4.0
	PauseSplitGapSDefault   = 0.3
	MinSegmentSDefault      = 1.0
	MaxSegmentSDefault      = 7.0
	ScrubWindowMinDefault   = 2
	ScrubWindowMaxDefault   = 5
	ScrubMaxRepeatsDefault  = 3
)

// OutputFormat is a subtitle serialization the Subtitle Builder can emit.
type OutputFormat string

const (
	OutputFormatSRT OutputFormat = "srt"
	OutputFormatVTT OutputFormat = "vtt"
	OutputFormatASS OutputFormat = "ass"
)

func (f OutputFormat) IsValid() bool {
	switch f {
	case OutputFormatSRT, OutputFormatVTT, OutputFormatASS:
		return true
	default:
		return false
	}
}

// ModelSize is the model size hint forwarded to the speech-to-text backend.
type ModelSize string

const (
	ModelSizeTiny   ModelSize = "tiny"
	ModelSizeBase   ModelSize = "base"
	ModelSizeSmall  ModelSize = "small"
	ModelSizeMedium ModelSize = "medium"
	ModelSizeLarge  ModelSize = "large"
)

func (m ModelSize) IsValid() bool {
	switch m {
	case ModelSizeTiny, ModelSizeBase, ModelSizeSmall, ModelSizeMedium, ModelSizeLarge:
		return true
	default:
		return false
	}
}

// TranscribeAPI selects which stt.Transcriber implementation backs
// transcription.
type TranscribeAPI string

const (
	TranscribeAPIWhisperCPP TranscribeAPI = "whisper.cpp"
	TranscribeAPIAzure      TranscribeAPI = "azure"
)

func (a TranscribeAPI) IsValid() bool {
	switch a {
	case TranscribeAPIWhisperCPP, TranscribeAPIAzure:
		return true
	default:
		return false
	}
}

// AudioOptions configures the audio segmenter.
type AudioOptions struct {
	MaxSegmentBytes int64
	OverlapS        float64
}

func (o *AudioOptions) SetDefaults() {
	if o.MaxSegmentBytes == 0 {
		o.MaxSegmentBytes = MaxSegmentBytesDefault
	}
	if o.OverlapS == 0 {
		o.OverlapS = SegmentOverlapSDefault
	}
}

func (o *AudioOptions) IsValid() error {
	if o.MaxSegmentBytes <= 0 {
		return fmt.Errorf("MaxSegmentBytes should be a positive number")
	}
	if o.OverlapS <= 0 {
		return fmt.Errorf("OverlapS should be a positive number")
	}
	return nil
}

func (o *AudioOptions) IsEmpty() bool {
	return o == nil || *o == AudioOptions{}
}

func (o *AudioOptions) ToEnv() []string {
	return []string{
		fmt.Sprintf("AUDIO_MAX_SEGMENT_BYTES=%d", o.MaxSegmentBytes),
		fmt.Sprintf("AUDIO_OVERLAP_S=%f", o.OverlapS),
	}
}

func (o *AudioOptions) FromEnv() {
	if v, err := strconv.ParseInt(os.Getenv("AUDIO_MAX_SEGMENT_BYTES"), 10, 64); err == nil {
		o.MaxSegmentBytes = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("AUDIO_OVERLAP_S"), 64); err == nil {
		o.OverlapS = v
	}
}

func (o *AudioOptions) ToMap() map[string]any {
	return map[string]any{
		"audio_max_segment_bytes": o.MaxSegmentBytes,
		"audio_overlap_s":         o.OverlapS,
	}
}

func (o *AudioOptions) FromMap(m map[string]any) {
	switch v := m["audio_max_segment_bytes"].(type) {
	case int64:
		o.MaxSegmentBytes = v
	case int:
		o.MaxSegmentBytes = int64(v)
	case float64:
		o.MaxSegmentBytes = int64(v)
	}
	if v, ok := m["audio_overlap_s"].(float64); ok {
		o.OverlapS = v
	}
}

// VADOptions configures voice-activity detection.
type VADOptions struct {
	Threshold    float64
	MinSpeechMs  int
	MinSilenceMs int
	MaxGapS      float64
	PaddingS     float64
	SampleRate   int
}

func (o *VADOptions) SetDefaults() {
	if o.Threshold == 0 {
		o.Threshold = VADThresholdDefault
	}
	if o.MinSpeechMs == 0 {
		o.MinSpeechMs = VADMinSpeechMsDefault
	}
	if o.MinSilenceMs == 0 {
		o.MinSilenceMs = VADMinSilenceMsDefault
	}
	if o.MaxGapS == 0 {
		o.MaxGapS = VADMaxGapSDefault
	}
	if o.PaddingS == 0 {
		o.PaddingS = VADPaddingSDefault
	}
	if o.SampleRate == 0 {
		o.SampleRate = 16000
	}
}

func (o *VADOptions) IsValid() error {
	if o.Threshold <= 0 || o.Threshold >= 1 {
		return fmt.Errorf("Threshold should be in the range (0, 1)")
	}
	if o.MinSpeechMs <= 0 {
		return fmt.Errorf("MinSpeechMs should be a positive number")
	}
	if o.MinSilenceMs <= 0 {
		return fmt.Errorf("MinSilenceMs should be a positive number")
	}
	if o.SampleRate <= 0 {
		return fmt.Errorf("SampleRate should be a positive number")
	}
	return nil
}

func (o *VADOptions) IsEmpty() bool {
	return o == nil || *o == VADOptions{}
}

func (o *VADOptions) ToEnv() []string {
	return []string{
		fmt.Sprintf("VAD_THRESHOLD=%f", o.Threshold),
		fmt.Sprintf("VAD_MIN_SPEECH_MS=%d", o.MinSpeechMs),
		fmt.Sprintf("VAD_MIN_SILENCE_MS=%d", o.MinSilenceMs),
		fmt.Sprintf("VAD_MAX_GAP_S=%f", o.MaxGapS),
		fmt.Sprintf("VAD_PADDING_S=%f", o.PaddingS),
		fmt.Sprintf("VAD_SAMPLE_RATE=%d", o.SampleRate),
	}
}

func (o *VADOptions) FromEnv() {
	if v, err := strconv.ParseFloat(os.Getenv("VAD_THRESHOLD"), 64); err == nil {
		o.Threshold = v
	}
	o.MinSpeechMs, _ = strconv.Atoi(os.Getenv("VAD_MIN_SPEECH_MS"))
	o.MinSilenceMs, _ = strconv.Atoi(os.Getenv("VAD_MIN_SILENCE_MS"))
	if v, err := strconv.ParseFloat(os.Getenv("VAD_MAX_GAP_S"), 64); err == nil {
		o.MaxGapS = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("VAD_PADDING_S"), 64); err == nil {
		o.PaddingS = v
	}
	o.SampleRate, _ = strconv.Atoi(os.Getenv("VAD_SAMPLE_RATE"))
}

func (o *VADOptions) ToMap() map[string]any {
	return map[string]any{
		"vad_threshold":      o.Threshold,
		"vad_min_speech_ms":  o.MinSpeechMs,
		"vad_min_silence_ms": o.MinSilenceMs,
		"vad_max_gap_s":      o.MaxGapS,
		"vad_padding_s":      o.PaddingS,
		"vad_sample_rate":    o.SampleRate,
	}
}

func (o *VADOptions) FromMap(m map[string]any) {
	if v, ok := m["vad_threshold"].(float64); ok {
		o.Threshold = v
	}
	switch v := m["vad_min_speech_ms"].(type) {
	case int:
		o.MinSpeechMs = v
	case float64:
		o.MinSpeechMs = int(v)
	}
	switch v := m["vad_min_silence_ms"].(type) {
	case int:
		o.MinSilenceMs = v
	case float64:
		o.MinSilenceMs = int(v)
	}
	if v, ok := m["vad_max_gap_s"].(float64); ok {
		o.MaxGapS = v
	}
	if v, ok := m["vad_padding_s"].(float64); ok {
		o.PaddingS = v
	}
	switch v := m["vad_sample_rate"].(type) {
	case int:
		o.SampleRate = v
	case float64:
		o.SampleRate = int(v)
	}
}

// CombinerOptions configures the overlap-aware text combiner.
type CombinerOptions struct {
	MinOverlapWords     int
	SimilarityThreshold float64
}

func (o *CombinerOptions) SetDefaults() {
	if o.MinOverlapWords == 0 {
		o.MinOverlapWords = MinOverlapWordsDefault
	}
	if o.SimilarityThreshold == 0 {
		o.SimilarityThreshold = SimilarityThreshDefault
	}
}

func (o *CombinerOptions) IsValid() error {
	if o.MinOverlapWords <= 0 {
		return fmt.Errorf("MinOverlapWords should be a positive number")
	}
	if o.SimilarityThreshold <= 0 || o.SimilarityThreshold > 1 {
		return fmt.Errorf("SimilarityThreshold should be in the range (0, 1]")
	}
	return nil
}

func (o *CombinerOptions) IsEmpty() bool {
	return o == nil || *o == CombinerOptions{}
}

func (o *CombinerOptions) ToEnv() []string {
	return []string{
		fmt.Sprintf("COMBINER_MIN_OVERLAP_WORDS=%d", o.MinOverlapWords),
		fmt.Sprintf("COMBINER_SIMILARITY_THRESHOLD=%f", o.SimilarityThreshold),
	}
}

func (o *CombinerOptions) FromEnv() {
	o.MinOverlapWords, _ = strconv.Atoi(os.Getenv("COMBINER_MIN_OVERLAP_WORDS"))
	if v, err := strconv.ParseFloat(os.Getenv("COMBINER_SIMILARITY_THRESHOLD"), 64); err == nil {
		o.SimilarityThreshold = v
	}
}

func (o *CombinerOptions) ToMap() map[string]any {
	return map[string]any{
		"combiner_min_overlap_words":    o.MinOverlapWords,
		"combiner_similarity_threshold": o.SimilarityThreshold,
	}
}

func (o *CombinerOptions) FromMap(m map[string]any) {
	switch v := m["combiner_min_overlap_words"].(type) {
	case int:
		o.MinOverlapWords = v
	case float64:
		o.MinOverlapWords = int(v)
	}
	if v, ok := m["combiner_similarity_threshold"].(float64); ok {
		o.SimilarityThreshold = v
	}
}

// ScrubberOptions configures the Transcription Orchestrator's repetition
// scrubber: a window of WindowMin..WindowMax words repeating more than
// MaxRepeats times consecutively is collapsed to a single copy.
type ScrubberOptions struct {
	WindowMin  int
	WindowMax  int
	MaxRepeats int
}

func (o *ScrubberOptions) SetDefaults() {
	if o.WindowMin == 0 {
		o.WindowMin = ScrubWindowMinDefault
	}
	if o.WindowMax == 0 {
		o.WindowMax = ScrubWindowMaxDefault
	}
	if o.MaxRepeats == 0 {
		o.MaxRepeats = ScrubMaxRepeatsDefault
	}
}

func (o *ScrubberOptions) IsValid() error {
	if o.WindowMin <= 0 {
		return fmt.Errorf("WindowMin should be a positive number")
	}
	if o.WindowMax < o.WindowMin {
		return fmt.Errorf("WindowMax should not be smaller than WindowMin")
	}
	if o.MaxRepeats <= 0 {
		return fmt.Errorf("MaxRepeats should be a positive number")
	}
	return nil
}

func (o *ScrubberOptions) IsEmpty() bool {
	return o == nil || *o == ScrubberOptions{}
}

func (o *ScrubberOptions) ToEnv() []string {
	return []string{
		fmt.Sprintf("SCRUBBER_WINDOW_MIN=%d", o.WindowMin),
		fmt.Sprintf("SCRUBBER_WINDOW_MAX=%d", o.WindowMax),
		fmt.Sprintf("SCRUBBER_MAX_REPEATS=%d", o.MaxRepeats),
	}
}

func (o *ScrubberOptions) FromEnv() {
	o.WindowMin, _ = strconv.Atoi(os.Getenv("SCRUBBER_WINDOW_MIN"))
	o.WindowMax, _ = strconv.Atoi(os.Getenv("SCRUBBER_WINDOW_MAX"))
	o.MaxRepeats, _ = strconv.Atoi(os.Getenv("SCRUBBER_MAX_REPEATS"))
}

func (o *ScrubberOptions) ToMap() map[string]any {
	return map[string]any{
		"scrubber_window_min":  o.WindowMin,
		"scrubber_window_max":  o.WindowMax,
		"scrubber_max_repeats": o.MaxRepeats,
	}
}

func (o *ScrubberOptions) FromMap(m map[string]any) {
	switch v := m["scrubber_window_min"].(type) {
	case int:
		o.WindowMin = v
	case float64:
		o.WindowMin = int(v)
	}
	switch v := m["scrubber_window_max"].(type) {
	case int:
		o.WindowMax = v
	case float64:
		o.WindowMax = int(v)
	}
	switch v := m["scrubber_max_repeats"].(type) {
	case int:
		o.MaxRepeats = v
	case float64:
		o.MaxRepeats = int(v)
	}
}

// SegmentOptOptions configures the segment boundary optimizer.
type SegmentOptOptions struct {
	OrphanMaxWords int
	OrphanMaxGapS  float64
	PauseSplitMinS float64
	PauseSplitGapS float64
	MinSegmentS    float64
	MaxSegmentS    float64
}

func (o *SegmentOptOptions) SetDefaults() {
	if o.OrphanMaxWords == 0 {
		o.OrphanMaxWords = OrphanMaxWordsDefault
	}
	if o.OrphanMaxGapS == 0 {
		o.OrphanMaxGapS = OrphanMaxGapSDefault
	}
	if o.PauseSplitMinS == 0 {
		o.PauseSplitMinS = PauseSplitMinSDefault
	}
	if o.PauseSplitGapS == 0 {
		o.PauseSplitGapS = PauseSplitGapSDefault
	}
	if o.MinSegmentS == 0 {
		o.MinSegmentS = MinSegmentSDefault
	}
	if o.MaxSegmentS == 0 {
		o.MaxSegmentS = MaxSegmentSDefault
	}
}

func (o *SegmentOptOptions) IsValid() error {
	if o.OrphanMaxWords < 0 {
		return fmt.Errorf("OrphanMaxWords should not be negative")
	}
	if o.OrphanMaxGapS <= 0 {
		return fmt.Errorf("OrphanMaxGapS should be a positive number")
	}
	if o.PauseSplitMinS <= 0 {
		return fmt.Errorf("PauseSplitMinS should be a positive number")
	}
	if o.PauseSplitGapS <= 0 {
		return fmt.Errorf("PauseSplitGapS should be a positive number")
	}
	if o.MinSegmentS <= 0 || o.MaxSegmentS <= o.MinSegmentS {
		return fmt.Errorf("MinSegmentS/MaxSegmentS should satisfy 0 < MinSegmentS < MaxSegmentS")
	}
	return nil
}

func (o *SegmentOptOptions) IsEmpty() bool {
	return o == nil || *o == SegmentOptOptions{}
}

func (o *SegmentOptOptions) ToEnv() []string {
	return []string{
		fmt.Sprintf("SEGMENTOPT_ORPHAN_MAX_WORDS=%d", o.OrphanMaxWords),
		fmt.Sprintf("SEGMENTOPT_ORPHAN_MAX_GAP_S=%f", o.OrphanMaxGapS),
		fmt.Sprintf("SEGMENTOPT_PAUSE_SPLIT_MIN_S=%f", o.PauseSplitMinS),
		fmt.Sprintf("SEGMENTOPT_PAUSE_SPLIT_GAP_S=%f", o.PauseSplitGapS),
		fmt.Sprintf("SEGMENTOPT_MIN_SEGMENT_S=%f", o.MinSegmentS),
		fmt.Sprintf("SEGMENTOPT_MAX_SEGMENT_S=%f", o.MaxSegmentS),
	}
}

func (o *SegmentOptOptions) FromEnv() {
	o.OrphanMaxWords, _ = strconv.Atoi(os.Getenv("SEGMENTOPT_ORPHAN_MAX_WORDS"))
	if v, err := strconv.ParseFloat(os.Getenv("SEGMENTOPT_ORPHAN_MAX_GAP_S"), 64); err == nil {
		o.OrphanMaxGapS = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("SEGMENTOPT_PAUSE_SPLIT_MIN_S"), 64); err == nil {
		o.PauseSplitMinS = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("SEGMENTOPT_PAUSE_SPLIT_GAP_S"), 64); err == nil {
		o.PauseSplitGapS = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("SEGMENTOPT_MIN_SEGMENT_S"), 64); err == nil {
		o.MinSegmentS = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("SEGMENTOPT_MAX_SEGMENT_S"), 64); err == nil {
		o.MaxSegmentS = v
	}
}

func (o *SegmentOptOptions) ToMap() map[string]any {
	return map[string]any{
		"segmentopt_orphan_max_words":  o.OrphanMaxWords,
		"segmentopt_orphan_max_gap_s":  o.OrphanMaxGapS,
		"segmentopt_pause_split_min_s": o.PauseSplitMinS,
		"segmentopt_pause_split_gap_s": o.PauseSplitGapS,
		"segmentopt_min_segment_s":     o.MinSegmentS,
		"segmentopt_max_segment_s":     o.MaxSegmentS,
	}
}

func (o *SegmentOptOptions) FromMap(m map[string]any) {
	switch v := m["segmentopt_orphan_max_words"].(type) {
	case int:
		o.OrphanMaxWords = v
	case float64:
		o.OrphanMaxWords = int(v)
	}
	if v, ok := m["segmentopt_orphan_max_gap_s"].(float64); ok {
		o.OrphanMaxGapS = v
	}
	if v, ok := m["segmentopt_pause_split_min_s"].(float64); ok {
		o.PauseSplitMinS = v
	}
	if v, ok := m["segmentopt_pause_split_gap_s"].(float64); ok {
		o.PauseSplitGapS = v
	}
	if v, ok := m["segmentopt_min_segment_s"].(float64); ok {
		o.MinSegmentS = v
	}
	if v, ok := m["segmentopt_max_segment_s"].(float64); ok {
		o.MaxSegmentS = v
	}
}

// SubtitleOptions configures the subtitle builder.
type SubtitleOptions struct {
	MaxWords        int
	MaxCueS         float64
	MaxCharsPerLine int

	// WordGapS is the inter-word gap (seconds) that forces a cue break.
	WordGapS float64
	// CueStartPadS is subtracted from the first word's start when timing a
	// cue; CueEndPadS is added to the last word's end.
	CueStartPadS float64
	CueEndPadS   float64
	// MinCueGapS is the minimum enforced gap between adjacent cues.
	MinCueGapS float64
	// SpeakingWPM/ReadingWPM/MinCueDuration feed the no-word-timestamp
	// duration fallback.
	SpeakingWPM    float64
	ReadingWPM     float64
	MinCueDuration float64
	// OrphanMaxWords/OrphanBackGapS/OrphanForwardGapS configure the cue-level
	// orphan smoothing pre-pass. It is distinct from the segment optimizer's
	// orphan merge; each catches strays the other misses.
	OrphanMaxWords    int
	OrphanBackGapS    float64
	OrphanForwardGapS float64
}

func (o *SubtitleOptions) SetDefaults() {
	if o.MaxWords == 0 {
		o.MaxWords = 10
	}
	if o.MaxCueS == 0 {
		o.MaxCueS = 7.0
	}
	if o.MaxCharsPerLine == 0 {
		o.MaxCharsPerLine = MaxCharsPerLineDefault
	}
	if o.WordGapS == 0 {
		o.WordGapS = 0.30
	}
	if o.CueStartPadS == 0 {
		o.CueStartPadS = 0.1
	}
	if o.CueEndPadS == 0 {
		o.CueEndPadS = 0.3
	}
	if o.MinCueGapS == 0 {
		o.MinCueGapS = 0.05
	}
	if o.SpeakingWPM == 0 {
		o.SpeakingWPM = 140
	}
	if o.ReadingWPM == 0 {
		o.ReadingWPM = 160
	}
	if o.MinCueDuration == 0 {
		o.MinCueDuration = 1.0
	}
	if o.OrphanMaxWords == 0 {
		o.OrphanMaxWords = 3
	}
	if o.OrphanBackGapS == 0 {
		o.OrphanBackGapS = 1.0
	}
	if o.OrphanForwardGapS == 0 {
		o.OrphanForwardGapS = 1.5
	}
}

func (o *SubtitleOptions) IsValid() error {
	if o.MaxWords <= 0 {
		return fmt.Errorf("MaxWords should be a positive number")
	}
	if o.MaxCueS <= 0 {
		return fmt.Errorf("MaxCueS should be a positive number")
	}
	if o.MaxCharsPerLine <= 0 {
		return fmt.Errorf("MaxCharsPerLine should be a positive number")
	}
	if o.WordGapS <= 0 {
		return fmt.Errorf("WordGapS should be a positive number")
	}
	if o.MinCueGapS < 0 {
		return fmt.Errorf("MinCueGapS should not be negative")
	}
	return nil
}

func (o *SubtitleOptions) IsEmpty() bool {
	return o == nil || *o == SubtitleOptions{}
}

func (o *SubtitleOptions) ToEnv() []string {
	return []string{
		fmt.Sprintf("SUBTITLE_MAX_WORDS=%d", o.MaxWords),
		fmt.Sprintf("SUBTITLE_MAX_CUE_S=%f", o.MaxCueS),
		fmt.Sprintf("SUBTITLE_MAX_CHARS_PER_LINE=%d", o.MaxCharsPerLine),
		fmt.Sprintf("SUBTITLE_WORD_GAP_S=%f", o.WordGapS),
		fmt.Sprintf("SUBTITLE_CUE_START_PAD_S=%f", o.CueStartPadS),
		fmt.Sprintf("SUBTITLE_CUE_END_PAD_S=%f", o.CueEndPadS),
		fmt.Sprintf("SUBTITLE_MIN_CUE_GAP_S=%f", o.MinCueGapS),
		fmt.Sprintf("SUBTITLE_SPEAKING_WPM=%f", o.SpeakingWPM),
		fmt.Sprintf("SUBTITLE_READING_WPM=%f", o.ReadingWPM),
		fmt.Sprintf("SUBTITLE_MIN_CUE_DURATION_S=%f", o.MinCueDuration),
		fmt.Sprintf("SUBTITLE_ORPHAN_MAX_WORDS=%d", o.OrphanMaxWords),
		fmt.Sprintf("SUBTITLE_ORPHAN_BACK_GAP_S=%f", o.OrphanBackGapS),
		fmt.Sprintf("SUBTITLE_ORPHAN_FORWARD_GAP_S=%f", o.OrphanForwardGapS),
	}
}

func (o *SubtitleOptions) FromEnv() {
	o.MaxWords, _ = strconv.Atoi(os.Getenv("SUBTITLE_MAX_WORDS"))
	if v, err := strconv.ParseFloat(os.Getenv("SUBTITLE_MAX_CUE_S"), 64); err == nil {
		o.MaxCueS = v
	}
	o.MaxCharsPerLine, _ = strconv.Atoi(os.Getenv("SUBTITLE_MAX_CHARS_PER_LINE"))
	if v, err := strconv.ParseFloat(os.Getenv("SUBTITLE_WORD_GAP_S"), 64); err == nil {
		o.WordGapS = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("SUBTITLE_CUE_START_PAD_S"), 64); err == nil {
		o.CueStartPadS = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("SUBTITLE_CUE_END_PAD_S"), 64); err == nil {
		o.CueEndPadS = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("SUBTITLE_MIN_CUE_GAP_S"), 64); err == nil {
		o.MinCueGapS = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("SUBTITLE_SPEAKING_WPM"), 64); err == nil {
		o.SpeakingWPM = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("SUBTITLE_READING_WPM"), 64); err == nil {
		o.ReadingWPM = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("SUBTITLE_MIN_CUE_DURATION_S"), 64); err == nil {
		o.MinCueDuration = v
	}
	o.OrphanMaxWords, _ = strconv.Atoi(os.Getenv("SUBTITLE_ORPHAN_MAX_WORDS"))
	if v, err := strconv.ParseFloat(os.Getenv("SUBTITLE_ORPHAN_BACK_GAP_S"), 64); err == nil {
		o.OrphanBackGapS = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("SUBTITLE_ORPHAN_FORWARD_GAP_S"), 64); err == nil {
		o.OrphanForwardGapS = v
	}
}

func (o *SubtitleOptions) ToMap() map[string]any {
	return map[string]any{
		"subtitle_max_words":            o.MaxWords,
		"subtitle_max_cue_s":            o.MaxCueS,
		"subtitle_max_chars_per_line":   o.MaxCharsPerLine,
		"subtitle_word_gap_s":           o.WordGapS,
		"subtitle_cue_start_pad_s":      o.CueStartPadS,
		"subtitle_cue_end_pad_s":        o.CueEndPadS,
		"subtitle_min_cue_gap_s":        o.MinCueGapS,
		"subtitle_speaking_wpm":         o.SpeakingWPM,
		"subtitle_reading_wpm":          o.ReadingWPM,
		"subtitle_min_cue_duration_s":   o.MinCueDuration,
		"subtitle_orphan_max_words":     o.OrphanMaxWords,
		"subtitle_orphan_back_gap_s":    o.OrphanBackGapS,
		"subtitle_orphan_forward_gap_s": o.OrphanForwardGapS,
	}
}

func (o *SubtitleOptions) FromMap(m map[string]any) {
	switch v := m["subtitle_max_words"].(type) {
	case int:
		o.MaxWords = v
	case float64:
		o.MaxWords = int(v)
	}
	if v, ok := m["subtitle_max_cue_s"].(float64); ok {
		o.MaxCueS = v
	}
	switch v := m["subtitle_max_chars_per_line"].(type) {
	case int:
		o.MaxCharsPerLine = v
	case float64:
		o.MaxCharsPerLine = int(v)
	}
	if v, ok := m["subtitle_word_gap_s"].(float64); ok {
		o.WordGapS = v
	}
	if v, ok := m["subtitle_cue_start_pad_s"].(float64); ok {
		o.CueStartPadS = v
	}
	if v, ok := m["subtitle_cue_end_pad_s"].(float64); ok {
		o.CueEndPadS = v
	}
	if v, ok := m["subtitle_min_cue_gap_s"].(float64); ok {
		o.MinCueGapS = v
	}
	if v, ok := m["subtitle_speaking_wpm"].(float64); ok {
		o.SpeakingWPM = v
	}
	if v, ok := m["subtitle_reading_wpm"].(float64); ok {
		o.ReadingWPM = v
	}
	if v, ok := m["subtitle_min_cue_duration_s"].(float64); ok {
		o.MinCueDuration = v
	}
	switch v := m["subtitle_orphan_max_words"].(type) {
	case int:
		o.OrphanMaxWords = v
	case float64:
		o.OrphanMaxWords = int(v)
	}
	if v, ok := m["subtitle_orphan_back_gap_s"].(float64); ok {
		o.OrphanBackGapS = v
	}
	if v, ok := m["subtitle_orphan_forward_gap_s"].(float64); ok {
		o.OrphanForwardGapS = v
	}
}

// TextOptions configures the transcript prose normalizer.
type TextOptions struct {
	RemoveFillers      bool
	AggressiveCleaning bool
}

func (o *TextOptions) SetDefaults() {
	o.RemoveFillers = RemoveFillersDefault
}

func (o *TextOptions) IsValid() error {
	return nil
}

func (o *TextOptions) IsEmpty() bool {
	return o == nil || *o == TextOptions{}
}

func (o *TextOptions) ToEnv() []string {
	return []string{
		fmt.Sprintf("TEXT_REMOVE_FILLERS=%t", o.RemoveFillers),
		fmt.Sprintf("TEXT_AGGRESSIVE_CLEANING=%t", o.AggressiveCleaning),
	}
}

func (o *TextOptions) FromEnv() {
	o.RemoveFillers, _ = strconv.ParseBool(os.Getenv("TEXT_REMOVE_FILLERS"))
	o.AggressiveCleaning, _ = strconv.ParseBool(os.Getenv("TEXT_AGGRESSIVE_CLEANING"))
}

func (o *TextOptions) ToMap() map[string]any {
	return map[string]any{
		"text_remove_fillers":      o.RemoveFillers,
		"text_aggressive_cleaning": o.AggressiveCleaning,
	}
}

func (o *TextOptions) FromMap(m map[string]any) {
	o.RemoveFillers, _ = m["text_remove_fillers"].(bool)
	o.AggressiveCleaning, _ = m["text_aggressive_cleaning"].(bool)
}

// OutputOptions composes the per-stage option groups.
type OutputOptions struct {
	Audio      AudioOptions
	VAD        VADOptions
	Scrubber   ScrubberOptions
	SegmentOpt SegmentOptOptions
	Combiner   CombinerOptions
	Subtitle   SubtitleOptions
	Text       TextOptions
}

// JobConfig is the top-level pipeline configuration, one per input file.
type JobConfig struct {
	// input config
	InputPath       string
	OutDir          string
	Language        string
	NumThreads      int
	WriteTranscript bool
	SubtitleFormats []OutputFormat

	// engine config
	TranscribeAPI        TranscribeAPI
	TranscribeAPIOptions map[string]any
	ModelSize            ModelSize

	// per-stage option groups
	OutputOptions OutputOptions
}

func (cfg JobConfig) IsValid() error {
	if cfg.InputPath == "" {
		return fmt.Errorf("InputPath cannot be empty")
	}

	if cfg.OutDir == "" {
		return fmt.Errorf("OutDir cannot be empty")
	}

	if !cfg.TranscribeAPI.IsValid() {
		return fmt.Errorf("TranscribeAPI value is not valid")
	}
	if !cfg.ModelSize.IsValid() {
		return fmt.Errorf("ModelSize value is not valid")
	}

	if len(cfg.SubtitleFormats) == 0 {
		return fmt.Errorf("SubtitleFormats cannot be empty")
	}
	for _, f := range cfg.SubtitleFormats {
		if !f.IsValid() {
			return fmt.Errorf("SubtitleFormats contains an invalid format: %q", f)
		}
	}

	numCPU := runtime.NumCPU()
	if cfg.NumThreads < 1 || cfg.NumThreads > numCPU {
		return fmt.Errorf("NumThreads should be in the range [1, %d]", numCPU)
	}

	if err := cfg.OutputOptions.Audio.IsValid(); err != nil {
		return err
	}
	if err := cfg.OutputOptions.VAD.IsValid(); err != nil {
		return err
	}
	if err := cfg.OutputOptions.Scrubber.IsValid(); err != nil {
		return err
	}
	if err := cfg.OutputOptions.SegmentOpt.IsValid(); err != nil {
		return err
	}
	if err := cfg.OutputOptions.Combiner.IsValid(); err != nil {
		return err
	}
	if err := cfg.OutputOptions.Subtitle.IsValid(); err != nil {
		return err
	}
	return cfg.OutputOptions.Text.IsValid()
}

func (cfg *JobConfig) SetDefaults() {
	if cfg.Language == "" {
		cfg.Language = LanguageDefault
	}

	if cfg.TranscribeAPI == "" {
		cfg.TranscribeAPI = TranscribeAPIDefault
	}

	if cfg.ModelSize == "" {
		cfg.ModelSize = ModelSizeDefault
	}

	if len(cfg.SubtitleFormats) == 0 {
		cfg.SubtitleFormats = []OutputFormat{OutputFormatSRT, OutputFormatVTT}
	}

	if cfg.NumThreads == 0 {
		cfg.NumThreads = max(1, runtime.NumCPU()/2)
	}

	if cfg.OutputOptions.Audio.IsEmpty() {
		cfg.OutputOptions.Audio.SetDefaults()
	}
	if cfg.OutputOptions.VAD.IsEmpty() {
		cfg.OutputOptions.VAD.SetDefaults()
	}
	if cfg.OutputOptions.Scrubber.IsEmpty() {
		cfg.OutputOptions.Scrubber.SetDefaults()
	}
	if cfg.OutputOptions.SegmentOpt.IsEmpty() {
		cfg.OutputOptions.SegmentOpt.SetDefaults()
	}
	if cfg.OutputOptions.Combiner.IsEmpty() {
		cfg.OutputOptions.Combiner.SetDefaults()
	}
	if cfg.OutputOptions.Subtitle.IsEmpty() {
		cfg.OutputOptions.Subtitle.SetDefaults()
	}
	if cfg.OutputOptions.Text.IsEmpty() {
		cfg.OutputOptions.Text.SetDefaults()
	}
}

func (cfg JobConfig) ToEnv() []string {
	formats := make([]string, len(cfg.SubtitleFormats))
	for i, f := range cfg.SubtitleFormats {
		formats[i] = string(f)
	}

	vars := []string{
		fmt.Sprintf("INPUT_PATH=%s", cfg.InputPath),
		fmt.Sprintf("OUT_DIR=%s", cfg.OutDir),
		fmt.Sprintf("LANGUAGE=%s", cfg.Language),
		fmt.Sprintf("NUM_THREADS=%d", cfg.NumThreads),
		fmt.Sprintf("WRITE_TRANSCRIPT=%t", cfg.WriteTranscript),
		fmt.Sprintf("SUBTITLE_FORMATS=%s", strings.Join(formats, ",")),
		fmt.Sprintf("TRANSCRIBE_API=%s", cfg.TranscribeAPI),
		fmt.Sprintf("MODEL_SIZE=%s", cfg.ModelSize),
	}

	if cfg.TranscribeAPIOptions != nil {
		data, err := json.Marshal(cfg.TranscribeAPIOptions)
		if err != nil {
			slog.Error("failed to marshal TranscribeAPIOptions", slog.String("err", err.Error()))
		} else {
			vars = append(vars, fmt.Sprintf("TRANSCRIBE_API_OPTIONS='%s'", string(data)))
		}
	}

	vars = append(vars, cfg.OutputOptions.Audio.ToEnv()...)
	vars = append(vars, cfg.OutputOptions.VAD.ToEnv()...)
	vars = append(vars, cfg.OutputOptions.Scrubber.ToEnv()...)
	vars = append(vars, cfg.OutputOptions.SegmentOpt.ToEnv()...)
	vars = append(vars, cfg.OutputOptions.Combiner.ToEnv()...)
	vars = append(vars, cfg.OutputOptions.Subtitle.ToEnv()...)
	vars = append(vars, cfg.OutputOptions.Text.ToEnv()...)

	return vars
}

func (cfg JobConfig) ToMap() map[string]any {
	formats := make([]string, len(cfg.SubtitleFormats))
	for i, f := range cfg.SubtitleFormats {
		formats[i] = string(f)
	}

	apiOptsJSON, err := json.Marshal(cfg.TranscribeAPIOptions)
	if err != nil {
		slog.Error("failed to marshal TranscribeAPIOptions", slog.String("err", err.Error()))
	}

	m := map[string]any{
		"input_path":             cfg.InputPath,
		"out_dir":                cfg.OutDir,
		"language":               cfg.Language,
		"num_threads":            cfg.NumThreads,
		"write_transcript":       cfg.WriteTranscript,
		"subtitle_formats":       strings.Join(formats, ","),
		"transcribe_api":         cfg.TranscribeAPI,
		"transcribe_api_options": string(apiOptsJSON),
		"model_size":             cfg.ModelSize,
	}

	for k, v := range cfg.OutputOptions.Audio.ToMap() {
		m[k] = v
	}
	for k, v := range cfg.OutputOptions.VAD.ToMap() {
		m[k] = v
	}
	for k, v := range cfg.OutputOptions.Scrubber.ToMap() {
		m[k] = v
	}
	for k, v := range cfg.OutputOptions.SegmentOpt.ToMap() {
		m[k] = v
	}
	for k, v := range cfg.OutputOptions.Combiner.ToMap() {
		m[k] = v
	}
	for k, v := range cfg.OutputOptions.Subtitle.ToMap() {
		m[k] = v
	}
	for k, v := range cfg.OutputOptions.Text.ToMap() {
		m[k] = v
	}

	return m
}

func (cfg *JobConfig) FromMap(m map[string]any) *JobConfig {
	cfg.InputPath, _ = m["input_path"].(string)
	cfg.OutDir, _ = m["out_dir"].(string)
	cfg.Language, _ = m["language"].(string)
	cfg.WriteTranscript, _ = m["write_transcript"].(bool)

	switch v := m["num_threads"].(type) {
	case int:
		cfg.NumThreads = v
	case float64:
		cfg.NumThreads = int(v)
	}

	if formats, ok := m["subtitle_formats"].(string); ok && formats != "" {
		cfg.SubtitleFormats = nil
		for _, f := range strings.Split(formats, ",") {
			cfg.SubtitleFormats = append(cfg.SubtitleFormats, OutputFormat(f))
		}
	}

	if api, ok := m["transcribe_api"].(string); ok {
		cfg.TranscribeAPI = TranscribeAPI(api)
	} else {
		cfg.TranscribeAPI, _ = m["transcribe_api"].(TranscribeAPI)
	}

	if opts, ok := m["transcribe_api_options"].(string); ok && opts != "" {
		if err := json.Unmarshal([]byte(opts), &cfg.TranscribeAPIOptions); err != nil {
			slog.Error("failed to unmarshal TranscribeAPIOptions", slog.String("err", err.Error()))
		}
	}

	if modelSize, ok := m["model_size"].(string); ok {
		cfg.ModelSize = ModelSize(modelSize)
	} else {
		cfg.ModelSize, _ = m["model_size"].(ModelSize)
	}

	cfg.OutputOptions.Audio.FromMap(m)
	cfg.OutputOptions.VAD.FromMap(m)
	cfg.OutputOptions.Scrubber.FromMap(m)
	cfg.OutputOptions.SegmentOpt.FromMap(m)
	cfg.OutputOptions.Combiner.FromMap(m)
	cfg.OutputOptions.Subtitle.FromMap(m)
	cfg.OutputOptions.Text.FromMap(m)

	return cfg
}

func FromEnv() (JobConfig, error) {
	var cfg JobConfig
	cfg.InputPath = os.Getenv("INPUT_PATH")
	cfg.OutDir = os.Getenv("OUT_DIR")
	cfg.Language = os.Getenv("LANGUAGE")
	cfg.NumThreads, _ = strconv.Atoi(os.Getenv("NUM_THREADS"))
	cfg.WriteTranscript, _ = strconv.ParseBool(os.Getenv("WRITE_TRANSCRIPT"))

	if formats := os.Getenv("SUBTITLE_FORMATS"); formats != "" {
		for _, f := range strings.Split(formats, ",") {
			cfg.SubtitleFormats = append(cfg.SubtitleFormats, OutputFormat(f))
		}
	}

	if val := os.Getenv("TRANSCRIBE_API"); val != "" {
		cfg.TranscribeAPI = TranscribeAPI(val)
	}

	if val := os.Getenv("MODEL_SIZE"); val != "" {
		cfg.ModelSize = ModelSize(val)
	}

	if val := os.Getenv("TRANSCRIBE_API_OPTIONS"); val != "" {
		if err := json.Unmarshal([]byte(val), &cfg.TranscribeAPIOptions); err != nil {
			return cfg, fmt.Errorf("failed to unmarshal TranscribeAPIOptions: %w", err)
		}
	}

	cfg.OutputOptions.Audio.FromEnv()
	cfg.OutputOptions.VAD.FromEnv()
	cfg.OutputOptions.Scrubber.FromEnv()
	cfg.OutputOptions.SegmentOpt.FromEnv()
	cfg.OutputOptions.Combiner.FromEnv()
	cfg.OutputOptions.Subtitle.FromEnv()
	cfg.OutputOptions.Text.FromEnv()

	return cfg, nil
}
