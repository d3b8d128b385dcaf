package photomap

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	filesAttempted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photomap_files_attempted_total",
			Help: "Photo files examined for location metadata",
		},
	)

	recordsAdded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photomap_records_total",
			Help: "Photo records added to the dataset",
		},
	)

	filesSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photomap_skipped_total",
			Help: "Photo files skipped, by reason",
		},
		[]string{"reason"},
	)
)

func recordResult(r Result) {
	filesAttempted.Inc()
	if r.OK() {
		recordsAdded.Inc()
		return
	}
	filesSkipped.WithLabelValues(string(r.Reason)).Inc()
}
