package text2img_gan

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics Prometheus view of training run. Plugs in as ProgressSink and as StepHook (via Step)
type Metrics struct {
	epochs       prometheus.Counter
	steps        *prometheus.CounterVec
	loss         *prometheus.GaugeVec
	epochSeconds prometheus.Histogram
}

// NewMetrics Registers training metrics in reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		epochs: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "text2img",
			Subsystem: "train",
			Name:      "epochs_total",
			Help:      "Number of finished training epochs",
		}),
		steps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "text2img",
			Subsystem: "train",
			Name:      "steps_total",
			Help:      "Number of finished training steps by trained model",
		}, []string{"model"}),
		loss: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "text2img",
			Subsystem: "train",
			Name:      "epoch_loss",
			Help:      "Mean loss over last finished epoch",
		}, []string{"model"}),
		epochSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "text2img",
			Subsystem: "train",
			Name:      "epoch_duration_seconds",
			Help:      "Time taken by one epoch",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
	}
}

// Progress Implements ProgressSink
func (m *Metrics) Progress(report EpochReport) {
	m.epochs.Inc()
	m.loss.WithLabelValues(kindDiscriminator).Set(report.DiscriminatorLoss)
	m.loss.WithLabelValues(kindGenerator).Set(report.GeneratorLoss)
	m.epochSeconds.Observe(report.Elapsed.Seconds())
}

// Step Counts finished step. Has StepHook signature
func (m *Metrics) Step(ev StepEvent) {
	switch ev.Kind {
	case StepDiscriminator:
		m.steps.WithLabelValues(kindDiscriminator).Inc()
	case StepGenerator:
		m.steps.WithLabelValues(kindGenerator).Inc()
	}
}
