package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 积分操作结果标签
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeReplayed = "replayed"
	OutcomeNoop     = "noop"
	OutcomeError    = "error"
)

var (
	// HTTPRequestsTotal HTTP 请求计数
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration HTTP 请求耗时
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// LedgerOperationsTotal 积分引擎操作计数
	LedgerOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loyalty_ledger_operations_total",
			Help: "Loyalty ledger operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	// PointsTotal 积分变动累计
	PointsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loyalty_points_total",
			Help: "Points moved through the ledger by transaction type",
		},
		[]string{"type"},
	)

	// CommitRetriesTotal 事务冲突重试次数
	CommitRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loyalty_commit_retries_total",
			Help: "Ledger transaction retries caused by write conflicts",
		},
		[]string{"operation"},
	)
)

// ObserveLedger 记录一次积分引擎操作
func ObserveLedger(operation, outcome string) {
	LedgerOperationsTotal.WithLabelValues(operation, outcome).Inc()
}

// AddPoints 累计积分变动（取绝对值）
func AddPoints(txnType string, amount int64) {
	if amount < 0 {
		amount = -amount
	}
	if amount == 0 {
		return
	}
	PointsTotal.WithLabelValues(txnType).Add(float64(amount))
}
