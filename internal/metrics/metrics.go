package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	UploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "technest_media_uploads_total",
		Help: "Media uploads by outcome",
	}, []string{"outcome"})

	SweepDeletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "technest_media_sweep_deleted_total",
		Help: "Orphaned media records deleted by the sweeper",
	})

	CompressionQuality = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "technest_media_compression_quality",
		Help:    "Quality setting chosen by the compression encoder",
		Buckets: prometheus.LinearBuckets(30, 10, 7),
	})
)

func Init() {
	prometheus.MustRegister(UploadsTotal, SweepDeletedTotal, CompressionQuality)
}

// Handler returns the scrape endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
