// Package validator 提供排班验证功能
package validator

import (
	"fmt"
	"sort"

	"github.com/paiban/weekshift/pkg/model"
)

// ConflictType 冲突类型
type ConflictType string

const (
	ConflictDoubleBooking   ConflictType = "double_booking"   // 同一天被排入多个班次
	ConflictDuplicateEntry  ConflictType = "duplicate_entry"  // 同一班次名单中重复出现
	ConflictMaxDays         ConflictType = "max_days"         // 超过每周出勤上限
	ConflictUnknownEmployee ConflictType = "unknown_employee" // 名单中出现未知员工
)

// 严重程度
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Conflict 冲突信息
type Conflict struct {
	Type     ConflictType      `json:"type"`
	Severity string            `json:"severity"` // error/warning
	Employee string            `json:"employee"`
	Day      model.Day         `json:"day,omitempty"`
	Shifts   []model.ShiftKind `json:"shifts,omitempty"` // 相关的班次
	Message  string            `json:"message"`
}

// ConflictDetector 冲突检测器
type ConflictDetector struct {
	config *DetectorConfig
}

// DetectorConfig 检测器配置
type DetectorConfig struct {
	MaxDaysPerEmployee int  // 每周最多出勤天数
	CheckUnknown       bool // 是否检查未知员工
}

// DefaultDetectorConfig 返回默认配置
func DefaultDetectorConfig() *DetectorConfig {
	return &DetectorConfig{
		MaxDaysPerEmployee: 5,
		CheckUnknown:       true,
	}
}

// NewConflictDetector 创建冲突检测器
func NewConflictDetector(config *DetectorConfig) *ConflictDetector {
	if config == nil {
		config = DefaultDetectorConfig()
	}
	return &ConflictDetector{config: config}
}

// DetectAll 检测所有冲突
// known 为参与排班的员工；为空时跳过未知员工检查
func (d *ConflictDetector) DetectAll(schedule *model.Schedule, known []string) []Conflict {
	var conflicts []Conflict

	conflicts = append(conflicts, d.detectDuplicates(schedule)...)
	conflicts = append(conflicts, d.detectDoubleBookings(schedule)...)
	conflicts = append(conflicts, d.detectMaxDaysViolations(schedule)...)
	if d.config.CheckUnknown && len(known) > 0 {
		conflicts = append(conflicts, d.detectUnknownEmployees(schedule, known)...)
	}

	SortConflicts(conflicts)
	return conflicts
}

// detectDuplicates 检测同一班次名单内的重复
func (d *ConflictDetector) detectDuplicates(schedule *model.Schedule) []Conflict {
	var conflicts []Conflict
	for _, day := range schedule.Days() {
		for _, shift := range schedule.Shifts() {
			seen := make(map[string]bool)
			for _, name := range schedule.Roster(day, shift) {
				if seen[name] {
					conflicts = append(conflicts, Conflict{
						Type:     ConflictDuplicateEntry,
						Severity: SeverityError,
						Employee: name,
						Day:      day,
						Shifts:   []model.ShiftKind{shift},
						Message:  fmt.Sprintf("%s 在 %s %s 名单中重复出现", name, day, shift),
					})
				}
				seen[name] = true
			}
		}
	}
	return conflicts
}

// detectDoubleBookings 检测一天多班
func (d *ConflictDetector) detectDoubleBookings(schedule *model.Schedule) []Conflict {
	var conflicts []Conflict
	for _, day := range schedule.Days() {
		byEmployee := groupByEmployee(schedule, day)
		for _, name := range sortedKeys(byEmployee) {
			shifts := byEmployee[name]
			if len(shifts) < 2 {
				continue
			}
			conflicts = append(conflicts, Conflict{
				Type:     ConflictDoubleBooking,
				Severity: SeverityError,
				Employee: name,
				Day:      day,
				Shifts:   shifts,
				Message:  fmt.Sprintf("%s 在 %s 被排入 %d 个班次", name, day, len(shifts)),
			})
		}
	}
	return conflicts
}

// detectMaxDaysViolations 检测超过每周出勤上限
func (d *ConflictDetector) detectMaxDaysViolations(schedule *model.Schedule) []Conflict {
	if d.config.MaxDaysPerEmployee <= 0 {
		return nil
	}

	var conflicts []Conflict
	for _, name := range rosterNames(schedule) {
		worked := schedule.DaysWorked(name)
		if worked > d.config.MaxDaysPerEmployee {
			conflicts = append(conflicts, Conflict{
				Type:     ConflictMaxDays,
				Severity: SeverityError,
				Employee: name,
				Message:  fmt.Sprintf("%s 本周出勤 %d 天，超过上限 %d 天", name, worked, d.config.MaxDaysPerEmployee),
			})
		}
	}
	return conflicts
}

// detectUnknownEmployees 检测名单中的未知员工
func (d *ConflictDetector) detectUnknownEmployees(schedule *model.Schedule, known []string) []Conflict {
	knownSet := make(map[string]bool, len(known))
	for _, name := range known {
		knownSet[name] = true
	}

	var conflicts []Conflict
	for _, name := range rosterNames(schedule) {
		if !knownSet[name] {
			conflicts = append(conflicts, Conflict{
				Type:     ConflictUnknownEmployee,
				Severity: SeverityWarning,
				Employee: name,
				Message:  fmt.Sprintf("%s 不在员工列表中", name),
			})
		}
	}
	return conflicts
}

// HasErrors 是否存在 error 级别冲突
func HasErrors(conflicts []Conflict) bool {
	for _, c := range conflicts {
		if c.Severity == SeverityError {
			return true
		}
	}
	return false
}

// SortConflicts 按工作日、员工、类型排序，保证输出稳定
func SortConflicts(conflicts []Conflict) {
	sort.SliceStable(conflicts, func(i, j int) bool {
		a, b := conflicts[i], conflicts[j]
		if a.Day != b.Day {
			return a.Day.Index() < b.Day.Index()
		}
		if a.Employee != b.Employee {
			return a.Employee < b.Employee
		}
		return a.Type < b.Type
	})
}

// 辅助函数

// groupByEmployee 某天每位员工所在的班次（去重）
func groupByEmployee(schedule *model.Schedule, day model.Day) map[string][]model.ShiftKind {
	result := make(map[string][]model.ShiftKind)
	for _, shift := range schedule.Shifts() {
		for _, name := range schedule.Roster(day, shift) {
			if model.IndexOf(result[name], shift) < 0 {
				result[name] = append(result[name], shift)
			}
		}
	}
	return result
}

// rosterNames 排班表中出现过的所有员工，按姓名排序
func rosterNames(schedule *model.Schedule) []string {
	set := make(map[string][]model.ShiftKind)
	for _, day := range schedule.Days() {
		for name := range groupByEmployee(schedule, day) {
			set[name] = nil
		}
	}
	return sortedKeys(set)
}

func sortedKeys(m map[string][]model.ShiftKind) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
