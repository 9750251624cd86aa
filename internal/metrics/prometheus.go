package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type promMetrics struct {
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
	llmTok   *prometheus.CounterVec
}

func newPromMetrics(reg prometheus.Registerer) *promMetrics {
	f := promauto.With(reg)
	return &promMetrics{
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "voicejournal_operation_duration_seconds",
			Help:    "Duration of provider, storage and pipeline operations",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"op"}),
		total: f.NewCounterVec(prometheus.CounterOpts{
			Name: "voicejournal_operations_total",
			Help: "Operations by outcome",
		}, []string{"op", "outcome"}),
		llmTok: f.NewCounterVec(prometheus.CounterOpts{
			Name: "voicejournal_llm_tokens_total",
			Help: "Language model tokens by direction",
		}, []string{"direction"}),
	}
}

func (p *promMetrics) observe(op string, d time.Duration, err error) {
	if p == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	p.duration.WithLabelValues(op).Observe(d.Seconds())
	p.total.WithLabelValues(op, outcome).Inc()
}

func (p *promMetrics) tokens(in, out int64) {
	if p == nil {
		return
	}
	p.llmTok.WithLabelValues("input").Add(float64(in))
	p.llmTok.WithLabelValues("output").Add(float64(out))
}
