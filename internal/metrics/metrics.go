// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラーやバックグラウンドジョブから利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordLoginSuccess()
	RecordLoginFailure()
	RecordCommentCreated()
	RecordSessionsDeleted(count int64)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus      *prometheus.CounterVec
	loginSuccess    prometheus.Counter
	loginFail       prometheus.Counter
	commentsCreated prometheus.Counter
	sessionsDeleted prometheus.Counter
	igdbLatency     *prometheus.HistogramVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gametrackr_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gametrackr_login_success_total",
			Help: "ログイン成功の合計数",
		}),
		loginFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gametrackr_login_fail_total",
			Help: "ログイン失敗の合計数",
		}),
		commentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gametrackr_comments_created_total",
			Help: "投稿されたコメントの合計数",
		}),
		sessionsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gametrackr_sessions_deleted_total",
			Help: "クリーンアップで削除された期限切れセッションの合計数",
		}),
		igdbLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gametrackr_igdb_latency_seconds",
			Help:    "IGDB APIリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.loginSuccess,
		c.loginFail,
		c.commentsCreated,
		c.sessionsDeleted,
		c.igdbLatency,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordLoginSuccess はログイン成功を記録する。
func (c *Collector) RecordLoginSuccess() {
	c.loginSuccess.Inc()
}

// RecordLoginFailure はログイン失敗を記録する。
func (c *Collector) RecordLoginFailure() {
	c.loginFail.Inc()
}

// RecordCommentCreated はコメント投稿を記録する。
func (c *Collector) RecordCommentCreated() {
	c.commentsCreated.Inc()
}

// RecordSessionsDeleted はクリーンアップで削除されたセッション数を記録する。
func (c *Collector) RecordSessionsDeleted(count int64) {
	c.sessionsDeleted.Add(float64(count))
}

// InstrumentIGDBTransport はIGDBへのHTTPリクエストのレイテンシを記録する
// RoundTripperでラップする。nextがnilの場合はhttp.DefaultTransportを使う。
func (c *Collector) InstrumentIGDBTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return promhttp.InstrumentRoundTripperDuration(c.igdbLatency, next)
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
