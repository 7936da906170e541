package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeGenerated   = "generated"
	outcomeDegraded    = "degraded"
	outcomeRemote      = "remote"
	outcomeFallback    = "fallback"
	outcomeUnavailable = "unavailable"
	outcomeSuccess     = "success"
	outcomeFailure     = "failure"
)

var (
	promptStageTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mnemonic_prompt_stage_total",
			Help: "Prompt stage outcomes (generated or degraded to the passphrase).",
		},
		[]string{"outcome"},
	)
	imageStageTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mnemonic_image_stage_total",
			Help: "Image stage outcomes (remote, fallback or unavailable).",
		},
		[]string{"outcome"},
	)
	persistTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mnemonic_persist_total",
			Help: "Persist stage outcomes.",
		},
		[]string{"outcome"},
	)
	pipelineDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mnemonic_pipeline_duration_seconds",
		Help:    "Duration of one mnemonic image pipeline invocation.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	})
)
