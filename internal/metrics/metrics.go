// Package metrics 暴露轮换引擎与 HTTP 层的 Prometheus 指标。
//
// 所有方法对 nil *Metrics 安全，未启用指标时可直接传 nil。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 分配来源标签
const (
	SourceRotated    = "rotated"
	SourceRoundRobin = "round_robin"
	SourceBalanced   = "balanced"
	SourceEnrolled   = "enrolled"
)

// Metrics Prometheus 指标集合
type Metrics struct {
	gatherer prometheus.Gatherer

	periodsOpened        prometheus.Counter
	periodsLocked        prometheus.Counter
	assignmentsCreated   *prometheus.CounterVec
	missedOnLock         prometheus.Counter
	progressUpdates      *prometheus.CounterVec
	participantsEnrolled prometheus.Counter

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New 创建并注册指标；reg 为 nil 时使用独立的 Registry
func New(reg *prometheus.Registry, namespace string) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	if namespace == "" {
		namespace = "tilawah"
	}

	m := &Metrics{
		gatherer: reg,
		periodsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rotation",
			Name:      "periods_opened_total",
			Help:      "Total periods opened.",
		}),
		periodsLocked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rotation",
			Name:      "periods_locked_total",
			Help:      "Total periods locked.",
		}),
		assignmentsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rotation",
			Name:      "assignments_created_total",
			Help:      "Assignments created by slot source.",
		}, []string{"source"}),
		missedOnLock: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rotation",
			Name:      "assignments_missed_on_lock_total",
			Help:      "Pending assignments reclassified as missed when a period was locked.",
		}),
		progressUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "progress",
			Name:      "updates_total",
			Help:      "Progress status updates by target status.",
		}, []string{"status"}),
		participantsEnrolled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "participants",
			Name:      "enrolled_total",
			Help:      "Total participants enrolled.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		m.periodsOpened,
		m.periodsLocked,
		m.assignmentsCreated,
		m.missedOnLock,
		m.progressUpdates,
		m.participantsEnrolled,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// Handler 返回 /metrics 处理器
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// PeriodOpened 记录一次开启周期
func (m *Metrics) PeriodOpened() {
	if m == nil {
		return
	}
	m.periodsOpened.Inc()
}

// AssignmentsCreated 按来源累加新建分配数
func (m *Metrics) AssignmentsCreated(source string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.assignmentsCreated.WithLabelValues(source).Add(float64(n))
}

// PeriodLocked 记录一次锁定及被改为 missed 的分配数
func (m *Metrics) PeriodLocked(missed int64) {
	if m == nil {
		return
	}
	m.periodsLocked.Inc()
	if missed > 0 {
		m.missedOnLock.Add(float64(missed))
	}
}

// ProgressUpdated 记录一次进度变更
func (m *Metrics) ProgressUpdated(status string) {
	if m == nil {
		return
	}
	m.progressUpdates.WithLabelValues(status).Inc()
}

// ParticipantsEnrolled 累加新增参与者数
func (m *Metrics) ParticipantsEnrolled(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.participantsEnrolled.Add(float64(n))
}

// ObserveHTTP 记录一次 HTTP 请求
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
