package solver

import (
	"fmt"

	"github.com/paiban/weekshift/pkg/errors"
	"github.com/paiban/weekshift/pkg/model"
)

// TieBreak 同等偏好名次时的决胜规则
type TieBreak string

const (
	// TieBreakInputOrder 按员工输入顺序（默认）
	TieBreakInputOrder TieBreak = "input_order"
	// TieBreakName 按员工姓名字典序
	TieBreakName TieBreak = "name"
)

// 默认参数
const (
	DefaultMinPerShift        = 2
	DefaultMaxDaysPerEmployee = 5
)

// Config 排班参数
type Config struct {
	Days               []model.Day       `json:"days" yaml:"days"`
	Shifts             []model.ShiftKind `json:"shifts" yaml:"shifts"`
	MinPerShift        int               `json:"min_per_shift" yaml:"min_per_shift"`
	MaxDaysPerEmployee int               `json:"max_days_per_employee" yaml:"max_days_per_employee"`
	TieBreak           TieBreak          `json:"tie_break,omitempty" yaml:"tie_break,omitempty"`
}

// DefaultConfig 返回默认配置：整周七天、早中晚三班、每班至少2人、每人每周最多5天
func DefaultConfig() Config {
	return Config{
		Days:               model.AllDays(),
		Shifts:             model.AllShiftKinds(),
		MinPerShift:        DefaultMinPerShift,
		MaxDaysPerEmployee: DefaultMaxDaysPerEmployee,
		TieBreak:           TieBreakInputOrder,
	}
}

// Validate 校验配置
func (c Config) Validate() error {
	if c.MinPerShift <= 0 {
		return errors.InvalidConfig("min_per_shift", fmt.Sprintf("必须为正数，当前为 %d", c.MinPerShift))
	}
	if c.MaxDaysPerEmployee <= 0 {
		return errors.InvalidConfig("max_days_per_employee", fmt.Sprintf("必须为正数，当前为 %d", c.MaxDaysPerEmployee))
	}
	if len(c.Days) == 0 {
		return errors.InvalidConfig("days", "工作日列表不能为空")
	}
	if len(c.Shifts) == 0 {
		return errors.InvalidConfig("shifts", "班次列表不能为空")
	}

	seenDays := make(map[model.Day]bool, len(c.Days))
	for i, d := range c.Days {
		if !d.Valid() {
			return errors.InvalidConfig("days", fmt.Sprintf("未知工作日 %q", d))
		}
		if seenDays[d] {
			return errors.InvalidConfig("days", fmt.Sprintf("工作日 %s 重复", d))
		}
		if i > 0 && d.Index() < c.Days[i-1].Index() {
			return errors.InvalidConfig("days", "工作日必须按周一到周日顺序排列")
		}
		seenDays[d] = true
	}

	seenShifts := make(map[model.ShiftKind]bool, len(c.Shifts))
	for _, s := range c.Shifts {
		if !s.Valid() {
			return errors.InvalidConfig("shifts", fmt.Sprintf("未知班次 %q", s))
		}
		if seenShifts[s] {
			return errors.InvalidConfig("shifts", fmt.Sprintf("班次 %s 重复", s))
		}
		seenShifts[s] = true
	}

	switch c.TieBreak {
	case "", TieBreakInputOrder, TieBreakName:
	default:
		return errors.InvalidConfig("tie_break", fmt.Sprintf("未知决胜规则 %q", c.TieBreak))
	}
	return nil
}

// DefaultPreference 返回某天未给出偏好时使用的排序：全部班次按标准顺序
func (c Config) DefaultPreference(day model.Day) []model.ShiftKind {
	return append([]model.ShiftKind(nil), c.Shifts...)
}

// hasShift 检查班次是否在本次排班范围内
func (c Config) hasShift(s model.ShiftKind) bool {
	return model.IndexOf(c.Shifts, s) >= 0
}
