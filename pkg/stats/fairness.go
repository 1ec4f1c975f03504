// Package stats 提供排班统计分析功能
package stats

import (
	"math"
	"sort"

	"github.com/paiban/weekshift/pkg/model"
)

// FairnessMetrics 公平性指标（仅分析本周结果，不参与排班决策）
type FairnessMetrics struct {
	DaysGini      float64 `json:"days_gini"`       // 出勤天数基尼系数 (0=完全公平, 1=完全不公平)
	DaysStdDev    float64 `json:"days_std_dev"`    // 出勤天数标准差
	AvgDaysWorked float64 `json:"avg_days_worked"` // 人均出勤天数
	MaxDaysWorked int     `json:"max_days_worked"` // 最多出勤天数
	MinDaysWorked int     `json:"min_days_worked"` // 最少出勤天数
	TopChoiceRate float64 `json:"top_choice_rate"` // 分配到当天首选班次的比例 (%)
	UnlistedRate  float64 `json:"unlisted_rate"`   // 分配到偏好中未列出班次的比例 (%)
	FairnessScore float64 `json:"fairness_score"`  // 综合评分 (0-100)
}

// FairnessAnalyzer 公平性分析器
type FairnessAnalyzer struct {
	fallback func(day model.Day) []model.ShiftKind
}

// NewFairnessAnalyzer 创建公平性分析器，fallback 为未给出偏好时的默认排序
func NewFairnessAnalyzer(fallback func(day model.Day) []model.ShiftKind) *FairnessAnalyzer {
	return &FairnessAnalyzer{fallback: fallback}
}

// Analyze 分析出勤分布与偏好满足情况
func (f *FairnessAnalyzer) Analyze(schedule *model.Schedule, employees []model.Employee) *FairnessMetrics {
	if len(employees) == 0 {
		return &FairnessMetrics{FairnessScore: 100}
	}

	days := make([]float64, len(employees))
	assignments, topChoice, unlisted := 0, 0, 0

	for i := range employees {
		e := &employees[i]
		for _, day := range schedule.Days() {
			shift, ok := schedule.ShiftOf(day, e.Name)
			if !ok {
				continue
			}
			days[i]++
			assignments++

			ranking, explicit := e.PreferenceFor(day)
			if !explicit && f.fallback != nil {
				ranking = f.fallback(day)
			}
			switch model.IndexOf(ranking, shift) {
			case 0:
				topChoice++
			case -1:
				unlisted++
			}
		}
	}

	avg := mean(days)
	stdDev := math.Sqrt(variance(days, avg))
	maxDays, minDays := valueRange(days)
	gini := calculateGini(days)

	metrics := &FairnessMetrics{
		DaysGini:      gini,
		DaysStdDev:    stdDev,
		AvgDaysWorked: avg,
		MaxDaysWorked: int(maxDays),
		MinDaysWorked: int(minDays),
		TopChoiceRate: percent(topChoice, assignments),
		UnlistedRate:  percent(unlisted, assignments),
	}
	if assignments == 0 {
		metrics.TopChoiceRate = 0
		metrics.UnlistedRate = 0
	}
	metrics.FairnessScore = overallScore(gini, metrics.TopChoiceRate, metrics.UnlistedRate)
	return metrics
}

// overallScore 综合评分：出勤均衡占 60%，首选满足占 30%，未列出班次扣 10%
func overallScore(gini, topChoiceRate, unlistedRate float64) float64 {
	score := 0.6*(1-gini)*100 + 0.3*topChoiceRate + 0.1*(100-unlistedRate)
	return math.Max(0, math.Min(100, score))
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func variance(values []float64, avg float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, v := range values {
		diff := v - avg
		sumSquares += diff * diff
	}
	return sumSquares / float64(len(values))
}

func valueRange(values []float64) (max, min float64) {
	if len(values) == 0 {
		return 0, 0
	}
	max, min = values[0], values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	return
}

// calculateGini 计算基尼系数
func calculateGini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	gini := 0.0
	for i, v := range sorted {
		gini += (2*float64(i+1) - float64(n) - 1) * v
	}

	gini = gini / (float64(n) * sum)
	return math.Max(0, math.Min(1, gini))
}
