// Package stats 提供排班统计分析功能
package stats

import (
	"github.com/paiban/weekshift/pkg/model"
)

// CoverageMetrics 覆盖率指标
type CoverageMetrics struct {
	// 整体覆盖率
	RequiredSlots   int     `json:"required_slots"`   // 最低需求人次（天数 x 班次数 x 最低人数）
	FilledSlots     int     `json:"filled_slots"`     // 已满足的需求人次
	OverallCoverage float64 `json:"overall_coverage"` // 整体覆盖率 (%)

	// 按日期统计
	DailyCoverage []DayCoverage `json:"daily_coverage"`

	// 按班次类型统计
	ShiftTypeCoverage map[model.ShiftKind]float64 `json:"shift_type_coverage"`

	// 问题识别
	Shortfalls  []Shortfall    `json:"shortfalls"`  // 人手不足班次
	Overstaffed []Shortfall    `json:"overstaffed"` // 超出最低人数的班次
	Unassigned  []DayAbsence   `json:"unassigned"`  // 每天未排班的员工
	Workload    []EmployeeLoad `json:"workload"`    // 员工出勤天数
}

// DayCoverage 每日覆盖情况
type DayCoverage struct {
	Day          model.Day `json:"day"`
	StaffCount   int       `json:"staff_count"`
	FilledSlots  int       `json:"filled_slots"`
	CoverageRate float64   `json:"coverage_rate"`
}

// Shortfall 班次人数与最低要求的差异
type Shortfall struct {
	Day      model.Day       `json:"day"`
	Shift    model.ShiftKind `json:"shift"`
	Required int             `json:"required"`
	Assigned int             `json:"assigned"`
	Shortage int             `json:"shortage"` // 负数表示超出
}

// DayAbsence 某天未排班的员工
type DayAbsence struct {
	Day       model.Day `json:"day"`
	Employees []string  `json:"employees"`
}

// EmployeeLoad 员工出勤
type EmployeeLoad struct {
	Name       string `json:"name"`
	DaysWorked int    `json:"days_worked"`
	AtLimit    bool   `json:"at_limit"` // 已达每周上限
}

// CoverageAnalyzer 覆盖率分析器
type CoverageAnalyzer struct {
	minPerShift        int
	maxDaysPerEmployee int
}

// NewCoverageAnalyzer 创建覆盖率分析器
func NewCoverageAnalyzer(minPerShift, maxDaysPerEmployee int) *CoverageAnalyzer {
	return &CoverageAnalyzer{
		minPerShift:        minPerShift,
		maxDaysPerEmployee: maxDaysPerEmployee,
	}
}

// Analyze 分析排班覆盖情况
// names 为参与排班的员工（按输入顺序），用于识别未排班的员工
func (c *CoverageAnalyzer) Analyze(schedule *model.Schedule, names []string) *CoverageMetrics {
	days := schedule.Days()
	shifts := schedule.Shifts()

	metrics := &CoverageMetrics{
		DailyCoverage:     make([]DayCoverage, 0, len(days)),
		ShiftTypeCoverage: make(map[model.ShiftKind]float64, len(shifts)),
		Shortfalls:        []Shortfall{},
		Overstaffed:       []Shortfall{},
		Unassigned:        []DayAbsence{},
		Workload:          make([]EmployeeLoad, 0, len(names)),
	}

	shiftFilled := make(map[model.ShiftKind]int, len(shifts))

	for _, day := range days {
		dc := DayCoverage{Day: day}
		for _, shift := range shifts {
			size := schedule.Size(day, shift)
			filled := min(size, c.minPerShift)

			dc.StaffCount += size
			dc.FilledSlots += filled
			shiftFilled[shift] += filled

			sf := Shortfall{
				Day:      day,
				Shift:    shift,
				Required: c.minPerShift,
				Assigned: size,
				Shortage: c.minPerShift - size,
			}
			switch {
			case size < c.minPerShift:
				metrics.Shortfalls = append(metrics.Shortfalls, sf)
			case size > c.minPerShift:
				metrics.Overstaffed = append(metrics.Overstaffed, sf)
			}
		}
		dc.CoverageRate = percent(dc.FilledSlots, len(shifts)*c.minPerShift)
		metrics.DailyCoverage = append(metrics.DailyCoverage, dc)
		metrics.FilledSlots += dc.FilledSlots

		var absent []string
		for _, name := range names {
			if _, ok := schedule.ShiftOf(day, name); !ok {
				absent = append(absent, name)
			}
		}
		if len(absent) > 0 {
			metrics.Unassigned = append(metrics.Unassigned, DayAbsence{Day: day, Employees: absent})
		}
	}

	metrics.RequiredSlots = len(days) * len(shifts) * c.minPerShift
	metrics.OverallCoverage = percent(metrics.FilledSlots, metrics.RequiredSlots)

	for _, shift := range shifts {
		metrics.ShiftTypeCoverage[shift] = percent(shiftFilled[shift], len(days)*c.minPerShift)
	}

	for _, name := range names {
		worked := schedule.DaysWorked(name)
		metrics.Workload = append(metrics.Workload, EmployeeLoad{
			Name:       name,
			DaysWorked: worked,
			AtLimit:    worked >= c.maxDaysPerEmployee,
		})
	}

	return metrics
}

// percent 计算百分比，分母为0视为完全覆盖
func percent(part, total int) float64 {
	if total == 0 {
		return 100
	}
	return float64(part) / float64(total) * 100
}
