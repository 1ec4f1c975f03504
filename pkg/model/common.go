// Package model 定义周排班引擎的核心数据模型
package model

import (
	"fmt"
	"strings"
)

// Day 工作日标签
type Day string

const (
	Monday    Day = "Mon"
	Tuesday   Day = "Tue"
	Wednesday Day = "Wed"
	Thursday  Day = "Thu"
	Friday    Day = "Fri"
	Saturday  Day = "Sat"
	Sunday    Day = "Sun"
)

// ShiftKind 班次类型
type ShiftKind string

const (
	ShiftMorning   ShiftKind = "morning"   // 早班
	ShiftAfternoon ShiftKind = "afternoon" // 中班
	ShiftEvening   ShiftKind = "evening"   // 晚班
)

var (
	weekDays   = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
	shiftKinds = []ShiftKind{ShiftMorning, ShiftAfternoon, ShiftEvening}

	dayNames = map[Day]string{
		Monday:    "Monday",
		Tuesday:   "Tuesday",
		Wednesday: "Wednesday",
		Thursday:  "Thursday",
		Friday:    "Friday",
		Saturday:  "Saturday",
		Sunday:    "Sunday",
	}
)

// AllDays 返回一周七天（周一到周日，顺序有意义）
func AllDays() []Day {
	days := make([]Day, len(weekDays))
	copy(days, weekDays)
	return days
}

// AllShiftKinds 返回标准班次顺序（早、中、晚）
func AllShiftKinds() []ShiftKind {
	kinds := make([]ShiftKind, len(shiftKinds))
	copy(kinds, shiftKinds)
	return kinds
}

// Valid 检查是否为合法的工作日
func (d Day) Valid() bool {
	_, ok := dayNames[d]
	return ok
}

// FullName 返回完整名称，如 Monday
func (d Day) FullName() string {
	if name, ok := dayNames[d]; ok {
		return name
	}
	return string(d)
}

// Index 返回在一周中的位置，非法值返回 -1
func (d Day) Index() int {
	for i, day := range weekDays {
		if day == d {
			return i
		}
	}
	return -1
}

// ParseDay 解析工作日标签，支持 Mon / Monday，不区分大小写
func ParseDay(s string) (Day, bool) {
	s = strings.TrimSpace(s)
	for _, day := range weekDays {
		if strings.EqualFold(s, string(day)) || strings.EqualFold(s, dayNames[day]) {
			return day, true
		}
	}
	return "", false
}

// UnmarshalText 按 ParseDay 的规则解码，YAML 与 JSON 输入都接受 Mon / Monday
func (d *Day) UnmarshalText(text []byte) error {
	day, ok := ParseDay(string(text))
	if !ok {
		return fmt.Errorf("未知工作日 %q", string(text))
	}
	*d = day
	return nil
}

// Valid 检查是否为合法的班次类型
func (s ShiftKind) Valid() bool {
	for _, k := range shiftKinds {
		if k == s {
			return true
		}
	}
	return false
}

// Title 返回首字母大写的名称
func (s ShiftKind) Title() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// ParseShiftKind 解析班次类型，不区分大小写
func ParseShiftKind(s string) (ShiftKind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range shiftKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// UnmarshalText 按 ParseShiftKind 的规则解码
func (s *ShiftKind) UnmarshalText(text []byte) error {
	shift, ok := ParseShiftKind(string(text))
	if !ok {
		return fmt.Errorf("未知班次 %q", string(text))
	}
	*s = shift
	return nil
}

// IndexOf 返回班次在排序列表中的位置，未列出返回 -1
func IndexOf(ranking []ShiftKind, shift ShiftKind) int {
	for i, s := range ranking {
		if s == shift {
			return i
		}
	}
	return -1
}
