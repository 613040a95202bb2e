package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the server's Prometheus instruments.
type Metrics struct {
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	invoicesComputed *prometheus.CounterVec
	timesheetRows    *prometheus.CounterVec
}

func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arledger_http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "arledger_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"route", "method"}),
		invoicesComputed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arledger_invoice_computations_total",
			Help: "Invoice computations by outcome.",
		}, []string{"outcome"}),
		timesheetRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arledger_timesheet_rows_total",
			Help: "Timesheet rows validated by outcome.",
		}, []string{"outcome"}),
	}

	registry.MustRegister(m.httpRequests, m.httpDuration, m.invoicesComputed, m.timesheetRows)
	return m
}

// GinMiddleware records request counts and latency per route.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		m.httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// RecordInvoiceRun counts computed and failed customers in one run.
func (m *Metrics) RecordInvoiceRun(computed, failed int) {
	m.invoicesComputed.WithLabelValues("computed").Add(float64(computed))
	m.invoicesComputed.WithLabelValues("failed").Add(float64(failed))
}

// RecordTimesheetRows counts accepted and rejected timesheet rows.
func (m *Metrics) RecordTimesheetRows(accepted, rejected int) {
	m.timesheetRows.WithLabelValues("accepted").Add(float64(accepted))
	m.timesheetRows.WithLabelValues("rejected").Add(float64(rejected))
}
