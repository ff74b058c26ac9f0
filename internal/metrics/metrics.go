package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StreamsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "brainwave_streams_active",
		Help: "Currently connected sample streams",
	})

	StreamsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "brainwave_streams_total",
		Help: "Total sample streams processed",
	})

	SamplesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "brainwave_samples_processed_total",
		Help: "Samples consumed, by sensor contact state",
	}, []string{"contact"})

	EmotionsClassified = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "brainwave_emotions_classified_total",
		Help: "Active samples classified, by emotion label",
	}, []string{"emotion"})

	SessionsFinalized = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "brainwave_sessions_finalized_total",
		Help: "Sessions closed, by kind (complete or incomplete)",
	}, []string{"kind"})

	SessionSamples = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "brainwave_session_samples",
		Help:    "Active samples per finalized session",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
	})

	HubReconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "brainwave_hub_reconnects_total",
		Help: "Reconnect attempts to the sensor hub",
	})

	DecodeErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "brainwave_decode_errors_total",
		Help: "Stream messages that could not be decoded into a sample",
	})

	GenerationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "brainwave_generation_duration_seconds",
		Help:    "Audio generation latency per engine",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
	}, []string{"engine"})

	TracksGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "brainwave_tracks_generated_total",
		Help: "Audio tracks written, by kind (session or community)",
	}, []string{"kind"})

	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "brainwave_errors_total",
		Help: "Error counts by stage",
	}, []string{"stage", "error_type"})
)
