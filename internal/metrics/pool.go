package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// PoolCollector implements prometheus.Collector for the store's pgxpool.
// Stats are read during each scrape; a nil pool (memory backend) emits nothing.
type PoolCollector struct {
	pool *pgxpool.Pool

	acquiredConns        *prometheus.Desc
	idleConns            *prometheus.Desc
	totalConns           *prometheus.Desc
	maxConns             *prometheus.Desc
	acquireCount         *prometheus.Desc
	acquireDuration      *prometheus.Desc
	canceledAcquireCount *prometheus.Desc
}

func poolDesc(name, help string) *prometheus.Desc {
	return prometheus.NewDesc(prometheus.BuildFQName(namespace, "pgxpool", name), help, nil, nil)
}

// NewPoolCollector creates a collector for pool.
func NewPoolCollector(pool *pgxpool.Pool) *PoolCollector {
	return &PoolCollector{
		pool:                 pool,
		acquiredConns:        poolDesc("acquired_conns", "Number of currently acquired connections."),
		idleConns:            poolDesc("idle_conns", "Number of idle connections in the pool."),
		totalConns:           poolDesc("total_conns", "Total number of connections in the pool."),
		maxConns:             poolDesc("max_conns", "Maximum number of connections allowed."),
		acquireCount:         poolDesc("acquire_count", "Cumulative count of successful connection acquires."),
		acquireDuration:      poolDesc("acquire_duration_seconds", "Cumulative time spent acquiring connections."),
		canceledAcquireCount: poolDesc("canceled_acquire_count", "Cumulative count of acquires canceled by context."),
	}
}

// Describe implements prometheus.Collector.
func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquiredConns
	ch <- c.idleConns
	ch <- c.totalConns
	ch <- c.maxConns
	ch <- c.acquireCount
	ch <- c.acquireDuration
	ch <- c.canceledAcquireCount
}

// Collect implements prometheus.Collector.
func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	if c.pool == nil {
		return
	}
	stat := c.pool.Stat()

	ch <- prometheus.MustNewConstMetric(c.acquiredConns, prometheus.GaugeValue, float64(stat.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(c.idleConns, prometheus.GaugeValue, float64(stat.IdleConns()))
	ch <- prometheus.MustNewConstMetric(c.totalConns, prometheus.GaugeValue, float64(stat.TotalConns()))
	ch <- prometheus.MustNewConstMetric(c.maxConns, prometheus.GaugeValue, float64(stat.MaxConns()))
	ch <- prometheus.MustNewConstMetric(c.acquireCount, prometheus.CounterValue, float64(stat.AcquireCount()))
	ch <- prometheus.MustNewConstMetric(c.acquireDuration, prometheus.CounterValue, stat.AcquireDuration().Seconds())
	ch <- prometheus.MustNewConstMetric(c.canceledAcquireCount, prometheus.CounterValue, float64(stat.CanceledAcquireCount()))
}
