package metrics

import (
	"database/sql"
	"log"

	"github.com/prometheus/client_golang/prometheus"
)

// RegisterDBMetrics adds gauges backed by live database counts. Only
// meaningful when the service runs on the Postgres stores.
func RegisterDBMetrics(db *sql.DB, logger *log.Logger) {
	if db == nil {
		return
	}
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "db_active_sessions",
			Help: "Open parking sessions counted from the database",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM parking_sessions WHERE is_active")
		},
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "db_occupied_slots",
			Help: "Slots currently reported occupied",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM parking_slots WHERE status = 'occupied'")
		},
	))
}

func queryCount(db *sql.DB, logger *log.Logger, query string) float64 {
	if db == nil {
		return 0
	}
	var count int64
	if err := db.QueryRow(query).Scan(&count); err != nil {
		if logger != nil {
			logger.Printf("metrics query failed: %v", err)
		}
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}
