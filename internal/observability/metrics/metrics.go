package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "aeroledger_"

	// ResultSuccess and ResultError label metric outcomes.
	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	loginTotal *prometheus.CounterVec

	recordWrites *prometheus.CounterVec

	reportBuildTotal    *prometheus.CounterVec
	reportBuildLatency  *prometheus.HistogramVec
	reportExportTotal   *prometheus.CounterVec
	reportExportLatency *prometheus.HistogramVec

	dbOpenConnections prometheus.GaugeFunc
)

// Init registers observability metrics and the DB-backed gauge.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by method and status class",
			},
			[]string{"method", "status"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_latency_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		)

		loginTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "logins_total",
				Help: "Total login attempts by result",
			},
			[]string{"result"},
		)

		recordWrites = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "record_writes_total",
				Help: "Total record mutations by resource and operation",
			},
			[]string{"resource", "op"},
		)

		reportBuildTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_build_total",
				Help: "Total expense report builds by result",
			},
			[]string{"result"},
		)
		reportBuildLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_build_latency_seconds",
				Help:    "Expense report build latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		reportExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_export_total",
				Help: "Total report exports by format and result",
			},
			[]string{"format", "result"},
		)
		reportExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_export_latency_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		)

		collectors := []prometheus.Collector{
			httpRequests, httpLatency, loginTotal, recordWrites,
			reportBuildTotal, reportBuildLatency, reportExportTotal, reportExportLatency,
		}
		if db != nil {
			dbOpenConnections = prometheus.NewGaugeFunc(
				prometheus.GaugeOpts{
					Name: metricPrefix + "db_open_connections",
					Help: "Open connections in the database pool",
				},
				func() float64 { return float64(db.Stats().OpenConnections) },
			)
			collectors = append(collectors, dbOpenConnections)
		}
		for _, collector := range collectors {
			if err := prometheus.Register(collector); err != nil {
				if logger != nil {
					logger.Printf("metrics register error: %v", err)
				}
			}
		}
	})
}

// ObserveHTTPRequest records one served request.
func ObserveHTTPRequest(method, status string, elapsed time.Duration) {
	if httpRequests == nil {
		return
	}
	httpRequests.WithLabelValues(method, status).Inc()
	httpLatency.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveLogin records a login attempt.
func ObserveLogin(result string) {
	if loginTotal == nil {
		return
	}
	loginTotal.WithLabelValues(result).Inc()
}

// ObserveRecordWrite records a CRUD mutation.
func ObserveRecordWrite(resource, op string) {
	if recordWrites == nil {
		return
	}
	recordWrites.WithLabelValues(resource, op).Inc()
}

// ObserveReportBuild records a report aggregation run.
func ObserveReportBuild(result string, elapsed time.Duration) {
	if reportBuildTotal == nil {
		return
	}
	reportBuildTotal.WithLabelValues(result).Inc()
	reportBuildLatency.WithLabelValues(result).Observe(elapsed.Seconds())
}

// ObserveReportExport records a report export.
func ObserveReportExport(format, result string, elapsed time.Duration) {
	if reportExportTotal == nil {
		return
	}
	reportExportTotal.WithLabelValues(format, result).Inc()
	reportExportLatency.WithLabelValues(format).Observe(elapsed.Seconds())
}
