package manager

import "github.com/prometheus/client_golang/prometheus"

// Prediction outcomes recorded by predictionsTotal.
const (
	outcomeOK         = "ok"
	outcomeValidation = "validation_error"
	outcomePrediction = "prediction_error"
	outcomeNotReady   = "not_ready"
)

var (
	predictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "survivald",
			Name:      "predictions_total",
			Help:      "Prediction requests by outcome",
		},
		[]string{"outcome"},
	)

	modelReady = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "survivald",
			Name:      "model_ready",
			Help:      "1 when the model is loaded and serving, 0 otherwise",
		},
	)

	modelLoadDuration = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "survivald",
			Name:      "model_load_duration_seconds",
			Help:      "Wall time of the startup model load",
		},
	)
)

func init() {
	prometheus.MustRegister(predictionsTotal, modelReady, modelLoadDuration)
}
