package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "outliner"

var (
	documentsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_processed_total",
			Help:      "Documents processed by mode and result (ok, empty, failed)",
		},
		[]string{"mode", "result"},
	)

	documentDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "document_duration_seconds",
			Help:      "Time to ingest and outline one document",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"mode"},
	)

	headingsExtracted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "headings_extracted_total",
			Help:      "Outline entries emitted by level",
		},
		[]string{"level"},
	)

	documentTypes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "document_types_total",
			Help:      "Documents by detected language and document type",
		},
		[]string{"language", "doc_type"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Result cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	slowDocuments = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slow_documents_total",
			Help:      "Documents that exceeded the soft time budget",
		},
	)
)

var once sync.Once

// Init registers collectors. Safe to call more than once.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(documentsProcessed, documentDuration, headingsExtracted, documentTypes, cacheLookups, slowDocuments)
	})
}

// Handler returns the http.Handler for /metrics
func Handler() http.Handler { return promhttp.Handler() }

func ObserveDocument(mode, result string, dur time.Duration) {
	documentsProcessed.WithLabelValues(mode, result).Inc()
	documentDuration.WithLabelValues(mode).Observe(dur.Seconds())
}

func AddHeadings(level string, n int) { headingsExtracted.WithLabelValues(level).Add(float64(n)) }

func IncDocumentType(language, docType string) {
	documentTypes.WithLabelValues(language, docType).Inc()
}

func IncCache(result string) { cacheLookups.WithLabelValues(result).Inc() }

func IncSlow() { slowDocuments.Inc() }
