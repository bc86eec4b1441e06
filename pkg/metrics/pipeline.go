package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics records extraction and payment batch activity.
type PipelineMetrics struct {
	extractionDuration *prometheus.HistogramVec
	extractionOutcome  *prometheus.CounterVec
	batchLines         *prometheus.CounterVec
	duplicateUploads   prometheus.Counter
}

// NewPipelineMetrics registers the pipeline metrics on the provided registerer.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	if reg == nil {
		return &PipelineMetrics{}
	}
	extractionDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "extraction_duration_seconds",
		Help:    "Duration of invoice extraction runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"model"})
	extractionOutcome := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "extraction_outcome_total",
		Help: "Extraction runs by resulting invoice status.",
	}, []string{"status"})
	batchLines := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_batch_lines_total",
		Help: "Payment file lines generated by layout.",
	}, []string{"layout"})
	duplicateUploads := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "duplicate_uploads_total",
		Help: "Uploads rejected as content-hash duplicates.",
	})
	reg.MustRegister(extractionDuration, extractionOutcome, batchLines, duplicateUploads)
	return &PipelineMetrics{
		extractionDuration: extractionDuration,
		extractionOutcome:  extractionOutcome,
		batchLines:         batchLines,
		duplicateUploads:   duplicateUploads,
	}
}

// ObserveExtraction records the duration of one extraction run.
func (p *PipelineMetrics) ObserveExtraction(model string, duration time.Duration) {
	if p == nil || p.extractionDuration == nil {
		return
	}
	p.extractionDuration.WithLabelValues(normalizeLabel(model)).Observe(duration.Seconds())
}

// IncExtractionOutcome increments the counter for the resulting status.
func (p *PipelineMetrics) IncExtractionOutcome(status string) {
	if p == nil || p.extractionOutcome == nil {
		return
	}
	p.extractionOutcome.WithLabelValues(normalizeLabel(status)).Inc()
}

// AddBatchLines records how many lines a batch produced for a layout.
func (p *PipelineMetrics) AddBatchLines(layout string, count int) {
	if p == nil || p.batchLines == nil || count <= 0 {
		return
	}
	p.batchLines.WithLabelValues(normalizeLabel(layout)).Add(float64(count))
}

// IncDuplicateUpload counts a rejected duplicate upload.
func (p *PipelineMetrics) IncDuplicateUpload() {
	if p == nil || p.duplicateUploads == nil {
		return
	}
	p.duplicateUploads.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
