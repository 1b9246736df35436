// Package metrics exposes Prometheus counters/histograms for the Job
// Coordinator's per-stage timing and outcome tracking. A registry is
// created once per process and handed to the Coordinator as an explicit
// process-lifetime handle, the same way the VAD and STT models are.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "video_transcriber"

// Metrics bundles the counters and histograms the Job Coordinator updates
// as it drives a file through the pipeline.
type Metrics struct {
	registry *prometheus.Registry

	jobsTotal      *prometheus.CounterVec
	stageDuration  *prometheus.HistogramVec
	segmentsTotal  prometheus.Counter
	regionsSkipped prometheus.Counter
	wordsRemoved   prometheus.Counter
	cuesEmitted    prometheus.Counter
}

// New creates a Metrics bundle registered against a fresh registry. Callers
// that want to expose /metrics can retrieve the registry with Registry().
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		jobsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_total",
			Help:      "Total number of transcription jobs, labeled by outcome.",
		}, []string{"outcome"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall-clock duration of each pipeline stage.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		segmentsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_segments_total",
			Help:      "Total number of AudioSegments produced by the Segmenter.",
		}),
		regionsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vad_regions_skipped_total",
			Help:      "Total number of VAD regions skipped after a failed transcription.",
		}),
		wordsRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "combiner_words_removed_total",
			Help:      "Total number of words dropped by the Text Combiner's overlap detection.",
		}),
		cuesEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subtitle_cues_emitted_total",
			Help:      "Total number of subtitle cues emitted by the Subtitle Builder.",
		}),
	}

	reg.MustRegister(m.jobsTotal, m.stageDuration, m.segmentsTotal, m.regionsSkipped, m.wordsRemoved, m.cuesEmitted)

	return m
}

// Registry returns the underlying Prometheus registry for serving /metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveStage records how long a named pipeline stage took.
func (m *Metrics) ObserveStage(stage string, seconds float64) {
	m.stageDuration.WithLabelValues(stage).Observe(seconds)
}

// IncJob records a finished job, labeled "success", "failed", or "cancelled".
func (m *Metrics) IncJob(outcome string) {
	m.jobsTotal.WithLabelValues(outcome).Inc()
}

// AddSegments records how many AudioSegments a job's Segmenter produced.
func (m *Metrics) AddSegments(n int) {
	m.segmentsTotal.Add(float64(n))
}

// AddRegionsSkipped records how many VAD regions a job skipped.
func (m *Metrics) AddRegionsSkipped(n int) {
	m.regionsSkipped.Add(float64(n))
}

// AddWordsRemoved records the Text Combiner's deduplication count for a job.
func (m *Metrics) AddWordsRemoved(n int) {
	m.wordsRemoved.Add(float64(n))
}

// AddCues records how many subtitle cues a job's Subtitle Builder emitted.
func (m *Metrics) AddCues(n int) {
	m.cuesEmitted.Add(float64(n))
}
