package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "skyanswers"

var (
	CredentialAcquisitions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credential_acquisitions_total",
		Help:      "Bearer tokens obtained from the credential endpoint.",
	})

	Rooms = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rooms_total",
		Help:      "Task set resolutions by outcome.",
	}, []string{"outcome"})

	Tasks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_total",
		Help:      "Per-task processing by outcome.",
	}, []string{"outcome"})

	Answers = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "answers_total",
		Help:      "Extracted answers by widget rule.",
	}, []string{"rule"})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Answer cache lookups by layer and result.",
	}, []string{"layer", "result"})
)

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }
