// Package solver 提供周排班求解器
package solver

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/paiban/weekshift/pkg/errors"
	"github.com/paiban/weekshift/pkg/logger"
	"github.com/paiban/weekshift/pkg/model"
)

// Solver 求解器接口
type Solver interface {
	// Solve 生成周排班
	Solve(ctx context.Context, employees []model.Employee) (*Result, error)

	// Name 返回求解器名称
	Name() string
}

// Result 求解结果
type Result struct {
	RunID      uuid.UUID       `json:"run_id"`
	Schedule   *model.Schedule `json:"schedule"`
	DaysWorked map[string]int  `json:"days_worked"`
	Statistics *Statistics     `json:"statistics"`
	Duration   time.Duration   `json:"duration"`
}

// Statistics 排班统计
type Statistics struct {
	TotalAssignments int `json:"total_assignments"`
	TopChoice        int `json:"top_choice"`    // 第一阶段按首选分配
	ShortageFill     int `json:"shortage_fill"` // 第二阶段补缺
	Leftover         int `json:"leftover"`      // 第三阶段冲突消解
	Shortfalls       int `json:"shortfalls"`    // 未达最低人数的班次
	Overflows        int `json:"overflows"`     // 超过最低人数的班次
}

// unlistedRank 未列出的班次排在所有真实名次之后
const unlistedRank = 1 << 30

// GreedySolver 单遍贪心周排班求解器
//
// 员工切片的顺序即输入顺序：第一阶段按此顺序发放首选，
// 第二阶段同名次时默认也按此顺序决胜，因此输入顺序会影响结果。
type GreedySolver struct {
	cfg    Config
	logger *logger.SchedulerLogger
}

// NewGreedySolver 创建贪心求解器，配置无效时返回 InvalidConfig
func NewGreedySolver(cfg Config) (*GreedySolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.TieBreak == "" {
		cfg.TieBreak = TieBreakInputOrder
	}
	return &GreedySolver{
		cfg:    cfg,
		logger: logger.NewSchedulerLogger(),
	}, nil
}

// WithLogger 替换日志器
func (s *GreedySolver) WithLogger(l *logger.SchedulerLogger) *GreedySolver {
	s.logger = l
	return s
}

// Name 返回求解器名称
func (s *GreedySolver) Name() string {
	return "GreedySolver"
}

// Config 返回求解器配置
func (s *GreedySolver) Config() Config {
	return s.cfg
}

// Assign 使用指定配置生成周排班
func Assign(employees []model.Employee, cfg Config) (*model.Schedule, error) {
	s, err := NewGreedySolver(cfg)
	if err != nil {
		return nil, err
	}
	result, err := s.Solve(context.Background(), employees)
	if err != nil {
		return nil, err
	}
	return result.Schedule, nil
}

// Solve 逐日生成排班，每天依次执行：首选分配、补缺、冲突消解
func (s *GreedySolver) Solve(ctx context.Context, employees []model.Employee) (*Result, error) {
	if err := s.validateEmployees(employees); err != nil {
		return nil, err
	}

	startTime := time.Now()
	runID := uuid.New()
	s.logger.StartSchedule(runID.String(), len(employees), len(s.cfg.Days))

	run := newWeekRun(s.cfg, employees, runID.String(), s.logger)
	for _, day := range s.cfg.Days {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		run.planDay(day)
	}

	result := &Result{
		RunID:      runID,
		Schedule:   model.NewSchedule(s.cfg.Days, s.cfg.Shifts, run.rosters),
		DaysWorked: run.ledger.Snapshot(),
		Statistics: run.stats,
		Duration:   time.Since(startTime),
	}
	for _, e := range employees {
		if _, ok := result.DaysWorked[e.Name]; !ok {
			result.DaysWorked[e.Name] = 0
		}
	}

	s.logger.ScheduleComplete(runID.String(), result.Duration, run.stats.Shortfalls)
	return result, nil
}

// validateEmployees 校验员工输入，任一问题即拒绝整份输入
func (s *GreedySolver) validateEmployees(employees []model.Employee) error {
	seen := make(map[string]bool, len(employees))
	for i, e := range employees {
		if e.Name == "" {
			return errors.InvalidInput(fmt.Sprintf("employees[%d].name", i), "员工姓名不能为空")
		}
		if seen[e.Name] {
			return errors.InvalidInput(fmt.Sprintf("employees[%d].name", i), fmt.Sprintf("员工 %s 重复", e.Name))
		}
		seen[e.Name] = true

		for day, ranking := range e.Preferences {
			if !day.Valid() {
				return errors.MalformedPreference(e.Name, string(day), "未知工作日")
			}
			if len(ranking) == 0 {
				return errors.MalformedPreference(e.Name, string(day), "偏好列表为空")
			}
			listed := make(map[model.ShiftKind]bool, len(ranking))
			for _, shift := range ranking {
				if !s.cfg.hasShift(shift) {
					return errors.MalformedPreference(e.Name, string(day), fmt.Sprintf("未知班次 %q", shift))
				}
				if listed[shift] {
					return errors.MalformedPreference(e.Name, string(day), fmt.Sprintf("班次 %s 重复", shift))
				}
				listed[shift] = true
			}
		}
	}
	return nil
}

// weekRun 一次排班运行的私有状态
type weekRun struct {
	cfg       Config
	employees []model.Employee
	runID     string
	logger    *logger.SchedulerLogger

	ledger  *model.Ledger
	rosters map[model.Day]map[model.ShiftKind][]string
	stats   *Statistics
}

func newWeekRun(cfg Config, employees []model.Employee, runID string, l *logger.SchedulerLogger) *weekRun {
	rosters := make(map[model.Day]map[model.ShiftKind][]string, len(cfg.Days))
	for _, day := range cfg.Days {
		rosters[day] = make(map[model.ShiftKind][]string, len(cfg.Shifts))
	}
	return &weekRun{
		cfg:       cfg,
		employees: employees,
		runID:     runID,
		logger:    l,
		ledger:    model.NewLedger(),
		rosters:   rosters,
		stats:     &Statistics{},
	}
}

// ranking 返回员工某天的偏好排序，未给出时使用默认排序
func (r *weekRun) ranking(e *model.Employee, day model.Day) []model.ShiftKind {
	if list, ok := e.PreferenceFor(day); ok {
		return list
	}
	return r.cfg.DefaultPreference(day)
}

// available 员工今天未排班且未达到每周上限
func (r *weekRun) available(name string, day model.Day) bool {
	return !r.ledger.WorkedOn(name, day) && r.ledger.DaysWorked(name) < r.cfg.MaxDaysPerEmployee
}

func (r *weekRun) assign(day model.Day, shift model.ShiftKind, name string) {
	r.rosters[day][shift] = append(r.rosters[day][shift], name)
	r.ledger.Record(name, day)
	r.stats.TotalAssignments++
}

// planDay 安排一天的排班，不回看之前的日期
func (r *weekRun) planDay(day model.Day) {
	roster := r.rosters[day]

	// 第一阶段：按输入顺序发放首选班次
	for i := range r.employees {
		e := &r.employees[i]
		if !r.available(e.Name, day) {
			continue
		}
		top := r.ranking(e, day)[0]
		if len(roster[top]) < r.cfg.MinPerShift {
			r.assign(day, top, e.Name)
			r.stats.TopChoice++
		}
	}

	// 第二阶段：逐班次补足最低人数
	for _, shift := range r.cfg.Shifts {
		for len(roster[shift]) < r.cfg.MinPerShift {
			pool := r.eligiblePool(day)
			if len(pool) == 0 {
				break
			}
			chosen := r.pick(day, shift, pool)
			r.assign(day, shift, chosen.Name)
			r.stats.ShortageFill++
		}
	}

	// 第三阶段：剩余员工按偏好放入第一个未列名的班次，不受最低人数限制
	for i := range r.employees {
		e := &r.employees[i]
		if !r.available(e.Name, day) {
			continue
		}
		for _, alt := range r.ranking(e, day) {
			if contains(roster[alt], e.Name) {
				continue
			}
			r.assign(day, alt, e.Name)
			r.stats.Leftover++
			break
		}
	}

	for _, shift := range r.cfg.Shifts {
		size := len(roster[shift])
		switch {
		case size < r.cfg.MinPerShift:
			r.stats.Shortfalls++
			r.logger.Shortfall(r.runID, string(day), string(shift), size, r.cfg.MinPerShift)
		case size > r.cfg.MinPerShift:
			r.stats.Overflows++
			r.logger.Overflow(r.runID, string(day), string(shift), size, r.cfg.MinPerShift)
		}
	}
}

// eligiblePool 今天尚未排班且未达每周上限的员工，保持输入顺序
func (r *weekRun) eligiblePool(day model.Day) []*model.Employee {
	var pool []*model.Employee
	for i := range r.employees {
		if r.available(r.employees[i].Name, day) {
			pool = append(pool, &r.employees[i])
		}
	}
	return pool
}

// pick 按该班次在偏好中的名次选人，名次相同按决胜规则
func (r *weekRun) pick(day model.Day, shift model.ShiftKind, pool []*model.Employee) *model.Employee {
	rank := func(e *model.Employee) int {
		if idx := model.IndexOf(r.ranking(e, day), shift); idx >= 0 {
			return idx
		}
		return unlistedRank
	}

	sort.SliceStable(pool, func(i, j int) bool {
		ri, rj := rank(pool[i]), rank(pool[j])
		if ri != rj {
			return ri < rj
		}
		if r.cfg.TieBreak == TieBreakName {
			return pool[i].Name < pool[j].Name
		}
		return false
	})
	return pool[0]
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
