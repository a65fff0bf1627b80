package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// View update metrics
	ViewUpdatesTotal *prometheus.CounterVec

	// Budget metrics
	BudgetDebitsTotal   prometheus.Counter
	BudgetDebitedAmount prometheus.Counter
	BudgetExceededTotal prometheus.Counter

	// Application lifecycle metrics
	ApplicationDecisionsTotal *prometheus.CounterVec

	// Payment metrics
	PaymentVerificationsTotal *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Database metrics
	DBConnectionsActive prometheus.Gauge
	DBConnectionsIdle   prometheus.Gauge
}

var metrics *Metrics

// Init initializes all Prometheus metrics
func Init() *Metrics {
	if metrics != nil {
		return metrics
	}

	metrics = &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		ViewUpdatesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "view_updates_total",
				Help: "Total number of view update attempts by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),

		BudgetDebitsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "budget_debits_total",
				Help: "Total number of successful campaign budget debits",
			},
		),
		BudgetDebitedAmount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "budget_debited_amount_total",
				Help: "Total currency amount debited from campaign budgets",
			},
		),
		BudgetExceededTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "budget_exceeded_total",
				Help: "Total number of view updates rejected by the budget admission check",
			},
		),

		ApplicationDecisionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "application_decisions_total",
				Help: "Total number of application status decisions",
			},
			[]string{"decision"},
		),

		PaymentVerificationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_verifications_total",
				Help: "Total number of payment verification attempts by status",
			},
			[]string{"status"},
		),

		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_limit_hits_total",
				Help: "Total number of rate limited requests",
			},
			[]string{"endpoint"},
		),

		DBConnectionsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "db_connections_active",
				Help: "Number of active database connections",
			},
		),
		DBConnectionsIdle: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "db_connections_idle",
				Help: "Number of idle database connections",
			},
		),
	}

	return metrics
}

// Get returns the metrics instance, initializing if necessary
func Get() *Metrics {
	if metrics == nil {
		return Init()
	}
	return metrics
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// GinHandler returns a Gin-compatible handler for Prometheus metrics
func GinHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// MetricsMiddleware is a Gin middleware for collecting HTTP metrics
func MetricsMiddleware() gin.HandlerFunc {
	m := Get()
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		method := c.Request.Method

		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}

// RecordViewUpdate records a view update attempt
func RecordViewUpdate(kind, outcome string) {
	Get().ViewUpdatesTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordBudgetDebit records a successful campaign budget debit
func RecordBudgetDebit(amount float64) {
	Get().BudgetDebitsTotal.Inc()
	Get().BudgetDebitedAmount.Add(amount)
}

// RecordBudgetExceeded records a rejected view update
func RecordBudgetExceeded() {
	Get().BudgetExceededTotal.Inc()
}

// RecordApplicationDecision records an application status decision
func RecordApplicationDecision(decision string) {
	Get().ApplicationDecisionsTotal.WithLabelValues(decision).Inc()
}

// RecordPaymentVerification records a payment verification attempt
func RecordPaymentVerification(status string) {
	Get().PaymentVerificationsTotal.WithLabelValues(status).Inc()
}

// RecordRateLimitHit records a rate limit hit
func RecordRateLimitHit(endpoint string) {
	Get().RateLimitHits.WithLabelValues(endpoint).Inc()
}

// SetDBConnections sets database connection metrics
func SetDBConnections(active, idle int) {
	Get().DBConnectionsActive.Set(float64(active))
	Get().DBConnectionsIdle.Set(float64(idle))
}
