package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	pointsIngested *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	lastPrice      *prometheus.GaugeVec
	latency        *prometheus.HistogramVec
	trainingRuns   *prometheus.CounterVec
	predictions    *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		pointsIngested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinsight_points_ingested_total",
				Help: "Total number of price points ingested per backend",
			},
			[]string{"backend", "instrument"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinsight_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "coinsight_last_price",
				Help: "Last observed price for an instrument",
			},
			[]string{"instrument"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coinsight_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		trainingRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinsight_training_runs_total",
				Help: "Total number of model training runs",
			},
			[]string{"instrument", "horizon", "model"},
		),
		predictions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinsight_predictions_total",
				Help: "Total number of forecasts served",
			},
			[]string{"instrument", "horizon"},
		),
	}
}

// RecordPointsIngested records price points written to a backend.
func (r *Recorder) RecordPointsIngested(backend, instrument string, n int) {
	r.pointsIngested.WithLabelValues(backend, instrument).Add(float64(n))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last observed price for an instrument.
func (r *Recorder) RecordLastPrice(instrument string, price float64) {
	r.lastPrice.WithLabelValues(instrument).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordTrainingRun records one completed training run and the model kind
// that won selection.
func (r *Recorder) RecordTrainingRun(instrument string, horizonDays int, selected string) {
	r.trainingRuns.WithLabelValues(instrument, strconv.Itoa(horizonDays), selected).Inc()
}

// RecordPrediction records one served forecast.
func (r *Recorder) RecordPrediction(instrument string, horizonDays int) {
	r.predictions.WithLabelValues(instrument, strconv.Itoa(horizonDays)).Inc()
}
