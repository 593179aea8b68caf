package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docuchat_http_requests_total",
			Help: "Total number of HTTP requests processed by the service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docuchat_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	ocrProcessingDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "docuchat_ocr_processing_duration_seconds",
			Help:    "End-to-end OCR processing latencies in seconds.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)
	ocrDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docuchat_ocr_documents_total",
			Help: "Total number of OCR documents processed, by final status.",
		},
		[]string{"status"},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "docuchat_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		ocrProcessingDuration,
		ocrDocumentsTotal,
		amqpPublishErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func ObserveOCRProcessing(d time.Duration, status string) {
	ocrProcessingDuration.Observe(d.Seconds())
	ocrDocumentsTotal.WithLabelValues(status).Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
