// Package constraints 周排班约束库
package constraints

import (
	"strconv"
	"strings"

	"github.com/paiban/weekshift/pkg/model"
	"github.com/paiban/weekshift/pkg/scheduler/solver"
	"github.com/paiban/weekshift/pkg/validator"
)

// 约束类型
const (
	TypeHard = "hard" // 硬约束，排班结果必须满足
	TypeSoft = "soft" // 尽力满足，人手不足时允许违反
)

// ConstraintParam 约束参数定义
type ConstraintParam struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"` // int, string, array
	Description string   `json:"description"`
	Default     string   `json:"default,omitempty"`
	Min         string   `json:"min,omitempty"`
	Options     []string `json:"options,omitempty"`
}

// ConstraintDefinition 约束定义
type ConstraintDefinition struct {
	Name        string                   `json:"name"`
	DisplayName string                   `json:"display_name"`
	Type        string                   `json:"type"`
	Category    string                   `json:"category"`
	Description string                   `json:"description"`
	Conflicts   []validator.ConflictType `json:"conflicts,omitempty"` // 审计时对应的冲突类型
	Params      []ConstraintParam        `json:"params"`
}

// LibraryResponse 约束库响应
type LibraryResponse struct {
	Library []ConstraintDefinition `json:"library"`
}

// GetLibrary 返回排班引擎的约束及其参数，默认值取自 defaults
func GetLibrary(defaults solver.Config) []ConstraintDefinition {
	return []ConstraintDefinition{
		{
			Name:        "one_shift_per_day",
			DisplayName: "每天最多一个班次",
			Type:        TypeHard,
			Category:    "出勤限制",
			Description: "同一员工在同一天只能出现在一个班次中。",
			Conflicts:   []validator.ConflictType{validator.ConflictDoubleBooking, validator.ConflictDuplicateEntry},
			Params:      []ConstraintParam{},
		},
		{
			Name:        "max_days_per_week",
			DisplayName: "每周最多出勤天数",
			Type:        TypeHard,
			Category:    "出勤限制",
			Description: "员工达到上限后，本周剩余日期不再参与任何阶段的分配。",
			Conflicts:   []validator.ConflictType{validator.ConflictMaxDays},
			Params: []ConstraintParam{
				{Name: "max_days_per_employee", Type: "int", Description: "每名员工每周最多出勤天数", Default: strconv.Itoa(defaults.MaxDaysPerEmployee), Min: "1"},
			},
		},
		{
			Name:        "min_per_shift",
			DisplayName: "班次最低人数",
			Type:        TypeSoft,
			Category:    "人手覆盖",
			Description: "每天每个班次至少安排的人数。可用员工不足时该班次保持人手不足，不会跨天借人。",
			Params: []ConstraintParam{
				{Name: "min_per_shift", Type: "int", Description: "每个班次的最低人数", Default: strconv.Itoa(defaults.MinPerShift), Min: "1"},
			},
		},
		{
			Name:        "shift_preference",
			DisplayName: "班次偏好",
			Type:        TypeSoft,
			Category:    "员工偏好",
			Description: "首选班次优先发放；补缺时按该班次在员工偏好中的名次选人，名次相同按决胜规则。",
			Params: []ConstraintParam{
				{
					Name:        "tie_break",
					Type:        "string",
					Description: "补缺阶段偏好名次相同时的决胜规则",
					Default:     string(defaults.TieBreak),
					Options:     []string{string(solver.TieBreakInputOrder), string(solver.TieBreakName)},
				},
			},
		},
		{
			Name:        "planning_scope",
			DisplayName: "排班范围",
			Type:        TypeHard,
			Category:    "排班范围",
			Description: "参与排班的工作日与班次。工作日按周一到周日顺序逐日处理，班次顺序即补缺顺序。",
			Conflicts:   []validator.ConflictType{validator.ConflictUnknownEmployee},
			Params: []ConstraintParam{
				{Name: "days", Type: "array", Description: "参与排班的工作日", Default: joinStrings(defaults.Days), Options: joinOptions(model.AllDays())},
				{Name: "shifts", Type: "array", Description: "参与排班的班次", Default: joinStrings(defaults.Shifts), Options: joinOptions(model.AllShiftKinds())},
			},
		},
	}
}

// Find 按名称查找约束定义
func Find(library []ConstraintDefinition, name string) (ConstraintDefinition, bool) {
	for _, def := range library {
		if def.Name == name {
			return def, true
		}
	}
	return ConstraintDefinition{}, false
}

func joinOptions[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func joinStrings[T ~string](values []T) string {
	return strings.Join(joinOptions(values), ",")
}
