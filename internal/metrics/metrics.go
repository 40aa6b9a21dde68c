// Package metrics 提供Prometheus监控指标
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry 应用专用指标注册表
var Registry = prometheus.NewRegistry()

// factory 将指标直接注册到应用注册表
var factory = promauto.With(Registry)

// HTTP 指标
var (
	httpRequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lumiplan",
		Name:      "http_requests_total",
		Help:      "HTTP请求总数",
	}, []string{"method", "path", "status"})

	httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "lumiplan",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP请求延迟",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
	}, []string{"method", "path"})
)

// 排期核心指标
var (
	conflictChecksTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lumiplan",
		Name:      "conflict_checks_total",
		Help:      "冲突检测次数",
	}, []string{"result"})

	conflictsFoundTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: "lumiplan",
		Name:      "conflicts_found_total",
		Help:      "检出的冲突排期项总数",
	})

	capacityPlansTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: "lumiplan",
		Name:      "capacity_plans_total",
		Help:      "容量规划次数",
	})

	capacityPlanDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: "lumiplan",
		Name:      "capacity_plan_duration_seconds",
		Help:      "容量规划计算延迟",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	})

	teamUtilizationPercent = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "lumiplan",
		Name:      "team_utilization_percent",
		Help:      "最近一次规划的团队利用率",
	})

	alertsGeneratedTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lumiplan",
		Name:      "alerts_generated_total",
		Help:      "生成的负载均衡提醒数",
	}, []string{"type", "severity"})

	recommendationsTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: "lumiplan",
		Name:      "technician_recommendations_total",
		Help:      "技师推荐请求次数",
	})
)

// Handler 返回 /metrics 处理器
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordRequestMetrics 记录HTTP请求指标
func RecordRequestMetrics(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordConflictCheck 记录一次冲突检测
func RecordConflictCheck(hasConflict bool, conflicts int) {
	result := "clear"
	if hasConflict {
		result = "conflict"
	}
	conflictChecksTotal.WithLabelValues(result).Inc()
	conflictsFoundTotal.Add(float64(conflicts))
}

// RecordCapacityPlan 记录一次容量规划
func RecordCapacityPlan(duration time.Duration, teamUtilization int) {
	capacityPlansTotal.Inc()
	capacityPlanDuration.Observe(duration.Seconds())
	teamUtilizationPercent.Set(float64(teamUtilization))
}

// RecordAlert 记录一条生成的提醒
func RecordAlert(alertType, severity string) {
	alertsGeneratedTotal.WithLabelValues(alertType, severity).Inc()
}

// RecordRecommendation 记录一次技师推荐请求
func RecordRecommendation() {
	recommendationsTotal.Inc()
}
