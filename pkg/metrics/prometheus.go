// Package metrics exposes Prometheus counters for the posting flow.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	postingsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookentry_postings_processed_total",
		Help: "Postings processed by operation and response code",
	}, []string{"operation", "response_code"})

	eventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookentry_events_published_total",
		Help: "Account events handed to the publisher by event type",
	}, []string{"event_type"})
)

// PostingProcessed counts one completed deposit, transfer or reversal.
func PostingProcessed(operation, responseCode string) {
	postingsProcessed.WithLabelValues(operation, responseCode).Inc()
}

// EventPublished counts one event handed to the stream publisher.
func EventPublished(eventType string) {
	eventsPublished.WithLabelValues(eventType).Inc()
}

// Handler serves the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
