// Package metrics provides Prometheus metrics for jobrank.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "jobrank"

var (
	// ProviderFetchesTotal counts provider calls by outcome.
	ProviderFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_fetches_total",
			Help:      "Total number of source provider fetches",
		},
		[]string{"provider", "status"},
	)

	// ProviderFetchDuration measures provider call duration.
	ProviderFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_fetch_duration_seconds",
			Help:      "Duration of source provider fetches in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	// PostingsFetchedTotal counts postings returned by providers before deduplication.
	PostingsFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "postings_fetched_total",
			Help:      "Total number of postings returned by providers",
		},
		[]string{"provider"},
	)

	// MalformedItemsTotal counts provider items skipped during normalization.
	MalformedItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "malformed_items_total",
			Help:      "Total number of provider items that could not be normalized",
		},
		[]string{"provider"},
	)

	// DuplicatesTotal counts postings collapsed by fingerprint.
	DuplicatesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_postings_total",
			Help:      "Total number of postings dropped as duplicates",
		},
	)

	// PostingsFilteredTotal counts postings dropped by each filter step.
	PostingsFilteredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "postings_filtered_total",
			Help:      "Total number of postings dropped by filters",
		},
		[]string{"filter"},
	)

	// SemanticFallbacksTotal counts searches scored without a semantic signal.
	SemanticFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "semantic_fallbacks_total",
			Help:      "Total number of searches that used the neutral semantic score",
		},
		[]string{"reason"},
	)

	// SearchesTotal counts searches by result.
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Total number of searches",
		},
		[]string{"result"},
	)
)

// WriteToFile stores the default registry in the text exposition format.
func WriteToFile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
