// Package model 定义周排班引擎的核心数据模型
package model

import (
	"encoding/json"
	"fmt"
)

// Schedule 周排班表
// 工作日 -> 班次 -> 员工姓名列表（按分配顺序）
// 由 NewSchedule 一次性构建，之后只读
type Schedule struct {
	days    []Day
	shifts  []ShiftKind
	rosters map[Day]map[ShiftKind][]string
}

// ShiftRoster 单个班次的人员名单
type ShiftRoster struct {
	Shift     ShiftKind `json:"shift"`
	Employees []string  `json:"employees"`
}

// DayRoster 单日排班
type DayRoster struct {
	Day    Day           `json:"day"`
	Shifts []ShiftRoster `json:"shifts"`
}

// NewSchedule 根据名单构建排班表，会深拷贝 rosters
func NewSchedule(days []Day, shifts []ShiftKind, rosters map[Day]map[ShiftKind][]string) *Schedule {
	s := &Schedule{
		days:    append([]Day(nil), days...),
		shifts:  append([]ShiftKind(nil), shifts...),
		rosters: make(map[Day]map[ShiftKind][]string, len(days)),
	}
	for _, day := range days {
		s.rosters[day] = make(map[ShiftKind][]string, len(shifts))
		for _, shift := range shifts {
			names := rosters[day][shift]
			s.rosters[day][shift] = append(make([]string, 0, len(names)), names...)
		}
	}
	return s
}

// Days 返回排班覆盖的工作日
func (s *Schedule) Days() []Day {
	return append([]Day(nil), s.days...)
}

// Shifts 返回排班覆盖的班次
func (s *Schedule) Shifts() []ShiftKind {
	return append([]ShiftKind(nil), s.shifts...)
}

// Roster 返回某天某班次的人员（副本）
func (s *Schedule) Roster(day Day, shift ShiftKind) []string {
	return append([]string{}, s.rosters[day][shift]...)
}

// Size 返回某天某班次的人数
func (s *Schedule) Size(day Day, shift ShiftKind) int {
	return len(s.rosters[day][shift])
}

// ShiftOf 返回员工某天所在的班次
func (s *Schedule) ShiftOf(day Day, name string) (ShiftKind, bool) {
	for _, shift := range s.shifts {
		for _, n := range s.rosters[day][shift] {
			if n == name {
				return shift, true
			}
		}
	}
	return "", false
}

// DaysWorked 统计员工本周出勤天数
func (s *Schedule) DaysWorked(name string) int {
	count := 0
	for _, day := range s.days {
		if _, ok := s.ShiftOf(day, name); ok {
			count++
		}
	}
	return count
}

// Table 按工作日和班次顺序展开排班表
func (s *Schedule) Table() []DayRoster {
	table := make([]DayRoster, 0, len(s.days))
	for _, day := range s.days {
		dr := DayRoster{Day: day, Shifts: make([]ShiftRoster, 0, len(s.shifts))}
		for _, shift := range s.shifts {
			dr.Shifts = append(dr.Shifts, ShiftRoster{Shift: shift, Employees: s.Roster(day, shift)})
		}
		table = append(table, dr)
	}
	return table
}

// MarshalJSON 以有序数组输出，保证输出稳定
func (s *Schedule) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Table())
}

// UnmarshalJSON 解析有序数组格式的排班表
func (s *Schedule) UnmarshalJSON(data []byte) error {
	var table []DayRoster
	if err := json.Unmarshal(data, &table); err != nil {
		return err
	}

	var days []Day
	var shifts []ShiftKind
	seenShift := make(map[ShiftKind]bool)
	rosters := make(map[Day]map[ShiftKind][]string)

	for _, dr := range table {
		if !dr.Day.Valid() {
			return fmt.Errorf("未知工作日 %q", dr.Day)
		}
		if _, dup := rosters[dr.Day]; dup {
			return fmt.Errorf("工作日 %s 重复", dr.Day)
		}
		days = append(days, dr.Day)
		rosters[dr.Day] = make(map[ShiftKind][]string)
		for _, sr := range dr.Shifts {
			if !sr.Shift.Valid() {
				return fmt.Errorf("未知班次 %q", sr.Shift)
			}
			if !seenShift[sr.Shift] {
				seenShift[sr.Shift] = true
				shifts = append(shifts, sr.Shift)
			}
			rosters[dr.Day][sr.Shift] = append(rosters[dr.Day][sr.Shift], sr.Employees...)
		}
	}

	*s = *NewSchedule(days, shifts, rosters)
	return nil
}
