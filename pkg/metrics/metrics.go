package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	rackPlanner = "rack_planner"

	// Collection store metrics
	collectionWritesTotal  = "collection_writes_total"
	collectionReloadsTotal = "collection_reloads_total"

	// Labels
	collectionLabel = "collection"
	statusLabel     = "status"

	StatusSuccess = "success"
	StatusFailure = "failure"
)

var collectionWritesLabels = []string{
	collectionLabel,
	statusLabel,
}

var collectionReloadsLabels = []string{
	statusLabel,
}

/**
* Metrics definition
**/
var collectionWritesTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: rackPlanner,
		Name:      collectionWritesTotal,
		Help:      "number of whole-collection writes to disk",
	},
	collectionWritesLabels,
)

var collectionReloadsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: rackPlanner,
		Name:      collectionReloadsTotal,
		Help:      "number of full reloads of the collection cache",
	},
	collectionReloadsLabels,
)

func IncreaseCollectionWritesMetric(collection string, status string) {
	labels := prometheus.Labels{
		collectionLabel: collection,
		statusLabel:     status,
	}
	collectionWritesTotalMetric.With(labels).Inc()
}

func IncreaseCollectionReloadsMetric(status string) {
	labels := prometheus.Labels{
		statusLabel: status,
	}
	collectionReloadsTotalMetric.With(labels).Inc()
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(collectionWritesTotalMetric)
	prometheus.MustRegister(collectionReloadsTotalMetric)
}
