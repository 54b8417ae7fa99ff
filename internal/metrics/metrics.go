package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_requests_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status_code"},
	)

	// Auth domain metrics
	authOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_operations_total",
			Help: "Total number of auth operations",
		},
		[]string{"operation", "status"}, // register/login, success/failure
	)

	seedRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seed_runs_total",
			Help: "Total number of first-run seeding attempts",
		},
		[]string{"status"}, // success/failure/skipped
	)

	// DynamoDB call metrics
	dynamoOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dynamodb_operations_total",
			Help: "Total number of DynamoDB operations",
		},
		[]string{"operation", "status"}, // query/put/update/scan, success/failure
	)

	dynamoOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dynamodb_operation_duration_seconds",
			Help:    "DynamoDB operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		},
		[]string{"operation"},
	)
)

// Init initializes the metrics
func Init() error {
	// Register metrics
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		authOperationsTotal,
		seedRunsTotal,
		dynamoOperationsTotal,
		dynamoOperationDuration,
	)

	return nil
}

// HTTPMetricsMiddleware records HTTP metrics
func HTTPMetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		// Process request
		err := c.Next()

		// Record metrics
		duration := time.Since(start).Seconds()
		method := c.Method()
		route := c.Route().Path
		if route == "" {
			route = c.Path()
		}
		statusCode := strconv.Itoa(c.Response().StatusCode())

		httpRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
		httpRequestDuration.WithLabelValues(method, route, statusCode).Observe(duration)

		return err
	}
}

// RecordAuthOperation records register/login outcomes
func RecordAuthOperation(operation, status string) {
	authOperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordSeedRun records first-run seeding attempts
func RecordSeedRun(status string) {
	seedRunsTotal.WithLabelValues(status).Inc()
}

// RecordDynamoOperation records DynamoDB operations
func RecordDynamoOperation(operation, status string, duration time.Duration) {
	dynamoOperationsTotal.WithLabelValues(operation, status).Inc()
	dynamoOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// PrometheusHandler returns the Prometheus metrics handler
func PrometheusHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
