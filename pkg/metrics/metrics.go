package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Compression metrics
	CompressionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imgshrink_compressions_total",
			Help: "Total number of compression runs by outcome",
		},
		[]string{"outcome"}, // skipped, compressed, min_quality, exhausted, failed
	)

	FailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imgshrink_failures_total",
			Help: "Total number of failed compression runs by error kind",
		},
		[]string{"kind"}, // decode, encode, io
	)

	CompressionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "imgshrink_compression_duration_seconds",
			Help:    "Compression duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"path"}, // skip, search
	)

	CompressionBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "imgshrink_compression_bytes",
			Help:    "Compression input/output bytes",
			Buckets: []float64{10240, 102400, 512000, 1048576, 2097152, 5242880, 10485760, 52428800},
		},
		[]string{"direction"}, // input, output
	)

	// Quality search metrics
	EncodeAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "imgshrink_encode_attempts",
			Help:    "Number of encodes performed per compression run",
			Buckets: prometheus.LinearBuckets(1, 1, 20),
		},
	)

	FinalQuality = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "imgshrink_final_quality",
			Help: "JPEG quality of the last written output",
		},
	)
)

// RecordCompression records a finished compression run. outputBytes is
// ignored when no output was written.
func RecordCompression(outcome, path string, duration float64, inputBytes, outputBytes, attempts, quality int) {
	CompressionsTotal.WithLabelValues(outcome).Inc()
	CompressionDuration.WithLabelValues(path).Observe(duration)
	CompressionBytes.WithLabelValues("input").Observe(float64(inputBytes))
	if outputBytes > 0 {
		CompressionBytes.WithLabelValues("output").Observe(float64(outputBytes))
		FinalQuality.Set(float64(quality))
	}
	EncodeAttempts.Observe(float64(attempts))
}

// RecordFailure records a failed run.
func RecordFailure(kind string) {
	CompressionsTotal.WithLabelValues("failed").Inc()
	FailuresTotal.WithLabelValues(kind).Inc()
}

// WriteTextfile dumps every registered metric in the text exposition format,
// for pickup by a node_exporter textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
