package stats

import (
	"github.com/paiban/weekshift/pkg/model"
	"github.com/paiban/weekshift/pkg/scheduler/solver"
	"github.com/paiban/weekshift/pkg/validator"
)

// Report 排班审计报告
type Report struct {
	Coverage  *CoverageMetrics     `json:"coverage"`
	Fairness  *FairnessMetrics     `json:"fairness"`
	Conflicts []validator.Conflict `json:"conflicts"`
	Valid     bool                 `json:"valid"` // 无 error 级别冲突
}

// Audit 对排班结果做事后审计：覆盖率、出勤分布与不变量检查
// 审计只读取排班表，不会修改它
func Audit(schedule *model.Schedule, employees []model.Employee, cfg solver.Config) *Report {
	names := model.Names(employees)

	detector := validator.NewConflictDetector(&validator.DetectorConfig{
		MaxDaysPerEmployee: cfg.MaxDaysPerEmployee,
		CheckUnknown:       true,
	})
	conflicts := detector.DetectAll(schedule, names)
	if conflicts == nil {
		conflicts = []validator.Conflict{}
	}

	return &Report{
		Coverage:  NewCoverageAnalyzer(cfg.MinPerShift, cfg.MaxDaysPerEmployee).Analyze(schedule, names),
		Fairness:  NewFairnessAnalyzer(cfg.DefaultPreference).Analyze(schedule, employees),
		Conflicts: conflicts,
		Valid:     !validator.HasErrors(conflicts),
	}
}
