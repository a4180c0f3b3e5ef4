package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Uploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "riskbot",
		Name:      "uploads_total",
		Help:      "Uploaded documents by outcome.",
	}, []string{"outcome"})

	IndexedChunks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "riskbot",
		Name:      "indexed_chunks_total",
		Help:      "Chunks written to the vector collection.",
	})

	Findings = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "riskbot",
		Name:      "findings_total",
		Help:      "Findings extracted, by type.",
	}, []string{"type"})

	LLMRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "riskbot",
		Name:      "llm_requests_total",
		Help:      "Model calls by purpose and outcome.",
	}, []string{"purpose", "outcome"})

	LLMDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "riskbot",
		Name:      "llm_request_duration_seconds",
		Help:      "Model call latency.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"purpose"})
)

const (
	PurposeDetect = "detect"
	PurposeAnswer = "answer"
)

// ObserveLLM records one model call started at start.
func ObserveLLM(purpose string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	LLMRequests.WithLabelValues(purpose, outcome).Inc()
	LLMDuration.WithLabelValues(purpose).Observe(time.Since(start).Seconds())
}
