package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	apperrors "github.com/agbru/pdfbasics/internal/errors"
)

// Recorder collects merge and inspection metrics in a private Prometheus
// registry. There is no HTTP listener; WriteTextfile exports the registry in
// the node_exporter textfile format.
type Recorder struct {
	registry *prometheus.Registry

	merges      *prometheus.CounterVec
	duration    prometheus.Histogram
	sources     prometheus.Histogram
	outputBytes prometheus.Histogram
	inspections *prometheus.CounterVec
}

// NewRecorder creates a Recorder and registers its collectors, including
// runtime memory gauges fed by a MemoryCollector.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		merges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pdfbasics",
			Name:      "merges_total",
			Help:      "Merge attempts by result and failing stage.",
		}, []string{"result", "stage"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pdfbasics",
			Name:      "merge_duration_seconds",
			Help:      "Time spent merging, from first read to merged bytes in memory.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		sources: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pdfbasics",
			Name:      "merge_sources",
			Help:      "Number of source documents per merge.",
			Buckets:   []float64{1, 2, 3, 5, 10, 20, 50, 100},
		}),
		outputBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pdfbasics",
			Name:      "merge_output_bytes",
			Help:      "Size of successfully merged documents.",
			Buckets:   prometheus.ExponentialBuckets(16*1024, 4, 10),
		}),
		inspections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pdfbasics",
			Name:      "inspections_total",
			Help:      "Documents inspected, by result.",
		}, []string{"result"}),
	}

	mc := NewMemoryCollector()
	heap := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "pdfbasics",
		Name:      "heap_alloc_bytes",
		Help:      "Heap bytes in use at collection time.",
	}, func() float64 { return float64(mc.Snapshot().HeapAlloc) })

	r.registry.MustRegister(r.merges, r.duration, r.sources, r.outputBytes, r.inspections, heap)
	return r
}

// ObserveMerge records one merge attempt. It satisfies merge.Recorder.
func (r *Recorder) ObserveMerge(sources int, size int64, duration time.Duration, err error) {
	r.sources.Observe(float64(sources))
	if err != nil {
		r.merges.WithLabelValues("failure", failureStage(err)).Inc()
		return
	}
	r.merges.WithLabelValues("success", "none").Inc()
	r.duration.Observe(duration.Seconds())
	r.outputBytes.Observe(float64(size))
}

// ObserveInspection records the outcome of inspecting one document.
func (r *Recorder) ObserveInspection(err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	r.inspections.WithLabelValues(result).Inc()
}

// Gatherer exposes the underlying registry.
func (r *Recorder) Gatherer() prometheus.Gatherer { return r.registry }

// WriteTextfile writes the current metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

func failureStage(err error) string {
	if apperrors.IsContextError(err) {
		return "canceled"
	}
	var me *apperrors.MergeError
	if errors.As(err, &me) {
		return string(me.Stage)
	}
	return "unknown"
}
