package model

// Ledger 出勤台账：员工 -> 已排班的工作日
// 仅在一次排班运行内使用，不跨运行保留
type Ledger struct {
	days map[string]map[Day]struct{}
}

// NewLedger 创建出勤台账
func NewLedger() *Ledger {
	return &Ledger{days: make(map[string]map[Day]struct{})}
}

// Record 记录员工在某天出勤
func (l *Ledger) Record(name string, day Day) {
	worked, ok := l.days[name]
	if !ok {
		worked = make(map[Day]struct{})
		l.days[name] = worked
	}
	worked[day] = struct{}{}
}

// DaysWorked 返回员工已出勤天数
func (l *Ledger) DaysWorked(name string) int {
	return len(l.days[name])
}

// WorkedOn 检查员工某天是否已排班
func (l *Ledger) WorkedOn(name string, day Day) bool {
	_, ok := l.days[name][day]
	return ok
}

// Snapshot 导出每位员工的出勤天数
func (l *Ledger) Snapshot() map[string]int {
	out := make(map[string]int, len(l.days))
	for name, worked := range l.days {
		out[name] = len(worked)
	}
	return out
}
