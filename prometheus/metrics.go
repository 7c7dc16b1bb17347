package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Login counters
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "portal_login_total",
			Help: "Total number of login attempts",
		},
	)

	// Registration counters
	RegisterCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "portal_register_total",
			Help: "Total number of user registrations",
		},
	)

	// Tenant operation counter
	TenantOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_tenant_operations_total",
			Help: "Total number of tenant operations",
		},
		[]string{"operation"}, // operation can be "create", "access", "update", "delete", etc.
	)

	// User operation counter
	UserOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_user_operations_total",
			Help: "Total number of user operations",
		},
		[]string{"operation"},
	)

	// Role operation counter
	RoleOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_role_operations_total",
			Help: "Total number of role operations",
		},
		[]string{"operation"},
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // type can be "login_failure", "invalid_token", "db_error" etc.
	)

	// Permission denial counter
	PermissionDeniedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_permission_denied_total",
			Help: "Total number of requests denied by the permission gate",
		},
		[]string{"permission"},
	)

	// Request error counter by status
	RequestErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_request_errors_total",
			Help: "Total number of failed requests by status",
		},
		[]string{"status"},
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // operation can be "query", "insert", "update", "delete"
	)
)

// Gauge metrics
var (
	// Active tenants
	ActiveTenantsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "portal_active_tenants",
			Help: "Number of currently active tenants",
		},
	)

	// Active tokens
	ActiveTokensGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "portal_active_tokens",
			Help: "Number of currently active authentication tokens",
		},
	)

	// System info
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "portal_info",
			Help: "Information about the admin portal service",
		},
		[]string{"version"},
	)
)

func init() {
	// Register counters
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(RegisterCounter)
	prometheus.MustRegister(TenantOperationCounter)
	prometheus.MustRegister(UserOperationCounter)
	prometheus.MustRegister(RoleOperationCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(PermissionDeniedCounter)
	prometheus.MustRegister(RequestErrorCounter)

	// Register histograms
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	// Register gauges
	prometheus.MustRegister(ActiveTenantsGauge)
	prometheus.MustRegister(ActiveTokensGauge)
	prometheus.MustRegister(InfoGauge)

	// Set initial service info
	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// RecordAuthError increments the auth error counter for the given type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordPermissionDenied increments the denial counter for a permission code
func RecordPermissionDenied(permission string) {
	PermissionDeniedCounter.With(prometheus.Labels{"permission": permission}).Inc()
}

// RecordRequestError increments the failed-request counter for a status
func RecordRequestError(status int) {
	RequestErrorCounter.With(prometheus.Labels{"status": strconv.Itoa(status)}).Inc()
}

// RecordTenantOperation increments the tenant operation counter
func RecordTenantOperation(operation string) {
	TenantOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordUserOperation increments the user operation counter
func RecordUserOperation(operation string) {
	UserOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordRoleOperation increments the role operation counter
func RecordRoleOperation(operation string) {
	RoleOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// IncreaseActiveTokens increments the active tokens gauge
func IncreaseActiveTokens() {
	ActiveTokensGauge.Inc()
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			return err
		}
	}
}
