// Package metrics 提供Prometheus监控指标
package metrics

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// 指标名称
const (
	HTTPRequestsTotal    = "weekshift_http_requests_total"
	HTTPRequestDuration  = "weekshift_http_request_duration_seconds"
	ScheduleRunsTotal    = "weekshift_schedule_runs_total"
	ScheduleRunDuration  = "weekshift_schedule_run_duration_seconds"
	ShiftShortfallsTotal = "weekshift_shift_shortfalls_total"
	CoverageRate         = "weekshift_coverage_rate"
	FairnessGini         = "weekshift_fairness_gini"
	ActiveRuns           = "weekshift_active_runs"
)

// labelSeparator 标签值之间的分隔符，不会出现在合法标签值中
const labelSeparator = "\xff"

// MetricsRegistry 指标注册表
type MetricsRegistry struct {
	counters   map[string]*Counter
	gauges     map[string]*Gauge
	histograms map[string]*Histogram
	mu         sync.RWMutex
}

// Counter 计数器
type Counter struct {
	Name   string
	Help   string
	Labels []string
	values map[string]float64
	mu     sync.RWMutex
}

// Gauge 仪表盘
type Gauge struct {
	Name   string
	Help   string
	Labels []string
	values map[string]float64
	mu     sync.RWMutex
}

// Histogram 直方图
type Histogram struct {
	Name    string
	Help    string
	Labels  []string
	Buckets []float64
	counts  map[string][]int
	sums    map[string]float64
	mu      sync.RWMutex
}

var (
	registry *MetricsRegistry
	once     sync.Once
)

// NewRegistry 创建注册表并注册默认指标
func NewRegistry() *MetricsRegistry {
	r := &MetricsRegistry{
		counters:   make(map[string]*Counter),
		gauges:     make(map[string]*Gauge),
		histograms: make(map[string]*Histogram),
	}
	r.registerDefaults()
	return r
}

// GetRegistry 获取全局注册表
func GetRegistry() *MetricsRegistry {
	once.Do(func() {
		registry = NewRegistry()
	})
	return registry
}

// registerDefaults 注册默认指标
func (r *MetricsRegistry) registerDefaults() {
	r.NewCounter(HTTPRequestsTotal, "HTTP请求总数", []string{"method", "path", "status"})
	r.NewHistogram(HTTPRequestDuration, "HTTP请求延迟",
		[]string{"method", "path"},
		[]float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0})

	// 排班运行
	r.NewCounter(ScheduleRunsTotal, "周排班运行次数", []string{"source", "status"})
	r.NewHistogram(ScheduleRunDuration, "周排班运行耗时",
		[]string{"source"},
		[]float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0})
	r.NewGauge(ActiveRuns, "正在进行的排班运行数", []string{})

	// 排班质量
	r.NewCounter(ShiftShortfallsTotal, "未达最低人数的班次数", []string{"day", "shift"})
	r.NewGauge(CoverageRate, "最近一次排班的覆盖率", []string{"source"})
	r.NewGauge(FairnessGini, "最近一次排班出勤天数基尼系数", []string{"source"})
}

// NewCounter 创建计数器
func (r *MetricsRegistry) NewCounter(name, help string, labels []string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()

	counter := &Counter{
		Name:   name,
		Help:   help,
		Labels: labels,
		values: make(map[string]float64),
	}
	r.counters[name] = counter
	return counter
}

// NewGauge 创建仪表盘
func (r *MetricsRegistry) NewGauge(name, help string, labels []string) *Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()

	gauge := &Gauge{
		Name:   name,
		Help:   help,
		Labels: labels,
		values: make(map[string]float64),
	}
	r.gauges[name] = gauge
	return gauge
}

// NewHistogram 创建直方图
func (r *MetricsRegistry) NewHistogram(name, help string, labels []string, buckets []float64) *Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()

	histogram := &Histogram{
		Name:    name,
		Help:    help,
		Labels:  labels,
		Buckets: buckets,
		counts:  make(map[string][]int),
		sums:    make(map[string]float64),
	}
	r.histograms[name] = histogram
	return histogram
}

// GetCounter 获取计数器
func (r *MetricsRegistry) GetCounter(name string) *Counter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counters[name]
}

// GetGauge 获取仪表盘
func (r *MetricsRegistry) GetGauge(name string) *Gauge {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gauges[name]
}

// GetHistogram 获取直方图
func (r *MetricsRegistry) GetHistogram(name string) *Histogram {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.histograms[name]
}

// Counter methods

// Inc 增加计数
func (c *Counter) Inc(labelValues ...string) {
	c.Add(1, labelValues...)
}

// Add 增加指定值
func (c *Counter) Add(value float64, labelValues ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[labelKey(labelValues)] += value
}

// Value 返回当前值
func (c *Counter) Value(labelValues ...string) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values[labelKey(labelValues)]
}

// Gauge methods

// Set 设置值
func (g *Gauge) Set(value float64, labelValues ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.values[labelKey(labelValues)] = value
}

// Inc 增加
func (g *Gauge) Inc(labelValues ...string) {
	g.Add(1, labelValues...)
}

// Dec 减少
func (g *Gauge) Dec(labelValues ...string) {
	g.Add(-1, labelValues...)
}

// Add 增加指定值
func (g *Gauge) Add(value float64, labelValues ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.values[labelKey(labelValues)] += value
}

// Value 返回当前值
func (g *Gauge) Value(labelValues ...string) float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.values[labelKey(labelValues)]
}

// Histogram methods

// Observe 记录观测值
func (h *Histogram) Observe(value float64, labelValues ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := labelKey(labelValues)
	if _, exists := h.counts[key]; !exists {
		h.counts[key] = make([]int, len(h.Buckets)+1)
	}

	// 只计入第一个满足的 bucket，输出时再累加
	idx := sort.SearchFloat64s(h.Buckets, value)
	h.counts[key][idx]++
	h.sums[key] += value
}

// labelKey 生成标签键
func labelKey(labels []string) string {
	return strings.Join(labels, labelSeparator)
}

// Handler 返回Prometheus格式的指标HTTP处理器
func Handler() http.Handler {
	return GetRegistry().Handler()
}

// Handler 返回当前注册表的HTTP处理器
func (r *MetricsRegistry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		r.Expose(w)
	})
}

// Expose 以Prometheus文本格式输出所有指标，按名称和标签排序
func (r *MetricsRegistry) Expose(w io.Writer) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range sortedKeys(r.counters) {
		counter := r.counters[name]
		counter.mu.RLock()
		writeHeader(w, counter.Name, counter.Help, "counter")
		for _, key := range sortedKeys(counter.values) {
			writeSample(w, counter.Name, formatLabels(counter.Labels, key), counter.values[key])
		}
		counter.mu.RUnlock()
	}

	for _, name := range sortedKeys(r.gauges) {
		gauge := r.gauges[name]
		gauge.mu.RLock()
		writeHeader(w, gauge.Name, gauge.Help, "gauge")
		for _, key := range sortedKeys(gauge.values) {
			writeSample(w, gauge.Name, formatLabels(gauge.Labels, key), gauge.values[key])
		}
		gauge.mu.RUnlock()
	}

	for _, name := range sortedKeys(r.histograms) {
		histogram := r.histograms[name]
		histogram.mu.RLock()
		writeHeader(w, histogram.Name, histogram.Help, "histogram")
		for _, key := range sortedKeys(histogram.counts) {
			labels := formatLabels(histogram.Labels, key)
			counts := histogram.counts[key]
			cumulative := 0
			for i, bucket := range histogram.Buckets {
				cumulative += counts[i]
				fmt.Fprintf(w, "%s_bucket{%s} %d\n", histogram.Name, joinLabels(labels, fmt.Sprintf("le=%q", formatFloat(bucket))), cumulative)
			}
			cumulative += counts[len(histogram.Buckets)]
			fmt.Fprintf(w, "%s_bucket{%s} %d\n", histogram.Name, joinLabels(labels, `le="+Inf"`), cumulative)
			writeSample(w, histogram.Name+"_sum", labels, histogram.sums[key])
			fmt.Fprintf(w, "%s_count%s %d\n", histogram.Name, wrapLabels(labels), cumulative)
		}
		histogram.mu.RUnlock()
	}
}

func writeHeader(w io.Writer, name, help, kind string) {
	fmt.Fprintf(w, "# HELP %s %s\n", name, help)
	fmt.Fprintf(w, "# TYPE %s %s\n", name, kind)
}

func writeSample(w io.Writer, name, labels string, value float64) {
	fmt.Fprintf(w, "%s%s %s\n", name, wrapLabels(labels), formatFloat(value))
}

func wrapLabels(labels string) string {
	if labels == "" {
		return ""
	}
	return "{" + labels + "}"
}

func joinLabels(labels, extra string) string {
	if labels == "" {
		return extra
	}
	return labels + "," + extra
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// formatLabels 格式化标签
func formatLabels(names []string, key string) string {
	if len(names) == 0 {
		return ""
	}
	vals := strings.Split(key, labelSeparator)
	pairs := make([]string, len(names))
	for i, name := range names {
		val := ""
		if i < len(vals) {
			val = vals[i]
		}
		pairs[i] = fmt.Sprintf("%s=%q", name, val)
	}
	return strings.Join(pairs, ",")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RecordRequest 记录请求指标
func (r *MetricsRegistry) RecordRequest(method, path string, status int, duration time.Duration) {
	if counter := r.GetCounter(HTTPRequestsTotal); counter != nil {
		counter.Inc(method, path, strconv.Itoa(status))
	}
	if histogram := r.GetHistogram(HTTPRequestDuration); histogram != nil {
		histogram.Observe(duration.Seconds(), method, path)
	}
}

// RecordScheduleRun 记录一次排班运行
// source 标识调用来源，如 api / batch / page / cli
func (r *MetricsRegistry) RecordScheduleRun(source string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	if counter := r.GetCounter(ScheduleRunsTotal); counter != nil {
		counter.Inc(source, status)
	}
	if histogram := r.GetHistogram(ScheduleRunDuration); histogram != nil {
		histogram.Observe(duration.Seconds(), source)
	}
}

// RecordShortfall 记录未达最低人数的班次
func (r *MetricsRegistry) RecordShortfall(day, shift string) {
	if counter := r.GetCounter(ShiftShortfallsTotal); counter != nil {
		counter.Inc(day, shift)
	}
}

// SetCoverageRate 设置覆盖率
func (r *MetricsRegistry) SetCoverageRate(source string, rate float64) {
	if gauge := r.GetGauge(CoverageRate); gauge != nil {
		gauge.Set(rate, source)
	}
}

// SetFairnessGini 设置出勤天数基尼系数
func (r *MetricsRegistry) SetFairnessGini(source string, gini float64) {
	if gauge := r.GetGauge(FairnessGini); gauge != nil {
		gauge.Set(gini, source)
	}
}

// TrackRun 标记一次运行开始，返回结束函数
func (r *MetricsRegistry) TrackRun() func() {
	gauge := r.GetGauge(ActiveRuns)
	if gauge == nil {
		return func() {}
	}
	gauge.Inc()
	return func() { gauge.Dec() }
}
