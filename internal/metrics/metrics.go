// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ミドルウェアやサービス層から利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
	RecordLoginFailure()
	RecordUnsupportedBlock(blockType string)
	RecordUpload(contentType string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus        *prometheus.CounterVec
	requestLatency    prometheus.Histogram
	loginFailures     prometheus.Counter
	unsupportedBlocks *prometheus.CounterVec
	uploads           *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kantancms_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kantancms_request_latency_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		loginFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kantancms_login_failures_total",
			Help: "ログイン失敗の合計数",
		}),
		unsupportedBlocks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kantancms_unsupported_blocks_total",
			Help: "レンダリング時に検出した未対応ブロック種別の数",
		}, []string{"block_type"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kantancms_uploads_total",
			Help: "受理したファイルアップロードの数",
		}, []string{"content_type"}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestLatency,
		c.loginFailures,
		c.unsupportedBlocks,
		c.uploads,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordLoginFailure はログイン失敗を記録する。
func (c *Collector) RecordLoginFailure() {
	c.loginFailures.Inc()
}

// RecordUnsupportedBlock は未対応ブロック種別の検出を記録する。
func (c *Collector) RecordUnsupportedBlock(blockType string) {
	c.unsupportedBlocks.WithLabelValues(blockType).Inc()
}

// RecordUpload は受理したアップロードを記録する。
func (c *Collector) RecordUpload(contentType string) {
	c.uploads.WithLabelValues(contentType).Inc()
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
