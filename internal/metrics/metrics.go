// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ストア操作の結果ラベル
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ミドルウェア、リポジトリ、サービス層から利用する。
type MetricsCollector interface {
	RecordHTTPRequest(method string, statusCode int, duration time.Duration)
	RecordStoreOperation(collection, operation string, err error, duration time.Duration)
	RecordAuthAttempt(result string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpRequests  *prometheus.CounterVec
	httpDuration  prometheus.Histogram
	storeOps      *prometheus.CounterVec
	storeDuration *prometheus.HistogramVec
	authAttempts  *prometheus.CounterVec
}

var _ MetricsCollector = (*Collector)(nil)

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "infectados_http_requests_total",
			Help: "メソッド・ステータスコード別のHTTPリクエスト数",
		}, []string{"method", "status"}),
		httpDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "infectados_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		storeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "infectados_store_operations_total",
			Help: "コレクション・操作・結果別のストア操作数",
		}, []string{"collection", "operation", "result"}),
		storeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "infectados_store_operation_duration_seconds",
			Help:    "ストア操作の処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"collection", "operation"}),
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "infectados_auth_attempts_total",
			Help: "結果別の認証試行数",
		}, []string{"result"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.storeOps,
		c.storeDuration,
		c.authAttempts,
	)

	return c
}

// RecordHTTPRequest はHTTPリクエストの結果と処理時間を記録する。
func (c *Collector) RecordHTTPRequest(method string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	c.httpDuration.Observe(duration.Seconds())
}

// RecordStoreOperation はストア操作の結果と処理時間を記録する。
func (c *Collector) RecordStoreOperation(collection, operation string, err error, duration time.Duration) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	c.storeOps.WithLabelValues(collection, operation, result).Inc()
	c.storeDuration.WithLabelValues(collection, operation).Observe(duration.Seconds())
}

// RecordAuthAttempt は認証試行の結果を記録する。
func (c *Collector) RecordAuthAttempt(result string) {
	c.authAttempts.WithLabelValues(result).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
