package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	LabelEmotion = "emotion"
	LabelKind    = "kind"
	LabelResult  = "result"
	LabelStatus  = "status_code"
	LabelRoute   = "route"

	CacheHit  = "hit"
	CacheMiss = "miss"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics is a
// valid no-op recorder.
type Metrics struct {
	PredictionsTotal   *prometheus.CounterVec
	PredictionErrors   *prometheus.CounterVec
	PredictionDuration prometheus.Histogram
	CacheLookups       *prometheus.CounterVec
	RequestsTotal      *prometheus.CounterVec
	ClassifierHealthy  prometheus.Gauge
}

// NewMetrics registers every collector on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PredictionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emotion_predictions_total",
				Help: "Successful predictions by decoded emotion",
			},
			[]string{LabelEmotion},
		),
		PredictionErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emotion_prediction_errors_total",
				Help: "Failed predictions by error kind",
			},
			[]string{LabelKind},
		),
		PredictionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "emotion_prediction_duration_seconds",
				Help:    "Latency of a single pipeline run including cache lookups",
				Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
		),
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emotion_cache_lookups_total",
				Help: "Prediction cache lookups by result",
			},
			[]string{LabelResult},
		),
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emotion_http_requests_total",
				Help: "HTTP requests by route and status code",
			},
			[]string{LabelRoute, LabelStatus},
		),
		ClassifierHealthy: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "emotion_classifier_healthy",
				Help: "1 when the last classifier probe succeeded",
			},
		),
	}
}

func (m *Metrics) ObservePrediction(emotion string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.PredictionsTotal.WithLabelValues(emotion).Inc()
	m.PredictionDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveError(kind string) {
	if m == nil {
		return
	}
	m.PredictionErrors.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := CacheMiss
	if hit {
		result = CacheHit
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveRequest(route, status string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(route, status).Inc()
}

func (m *Metrics) SetClassifierHealthy(healthy bool) {
	if m == nil {
		return
	}
	if healthy {
		m.ClassifierHealthy.Set(1)
	} else {
		m.ClassifierHealthy.Set(0)
	}
}
