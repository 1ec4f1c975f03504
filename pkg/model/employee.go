// Package model 定义周排班引擎的核心数据模型
package model

// Preferences 员工每日班次偏好
// key: 工作日, value: 按优先级排序的班次列表（第一个为首选）
type Preferences map[Day][]ShiftKind

// Employee 员工
type Employee struct {
	Name        string      `json:"name"`
	Preferences Preferences `json:"preferences,omitempty"`
}

// NewEmployee 创建员工
func NewEmployee(name string) Employee {
	return Employee{Name: name, Preferences: make(Preferences)}
}

// Prefer 返回设置了某天班次偏好的副本，便于链式构造
func (e Employee) Prefer(day Day, ranking ...ShiftKind) Employee {
	prefs := make(Preferences, len(e.Preferences)+1)
	for d, l := range e.Preferences {
		prefs[d] = l
	}
	e.Preferences = prefs

	list := make([]ShiftKind, len(ranking))
	copy(list, ranking)
	e.Preferences[day] = list
	return e
}

// PreferenceFor 返回某天的偏好列表
// 第二个返回值表示该天是否显式给出了偏好（即使列表为空）
func (e *Employee) PreferenceFor(day Day) ([]ShiftKind, bool) {
	if e.Preferences == nil {
		return nil, false
	}
	list, ok := e.Preferences[day]
	return list, ok
}

// Names 按输入顺序返回员工姓名
func Names(employees []Employee) []string {
	names := make([]string, len(employees))
	for i, e := range employees {
		names[i] = e.Name
	}
	return names
}
