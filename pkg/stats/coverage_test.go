package stats

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/paiban/weekshift/pkg/model"
)

// twoDaySchedule 周一两班各2人，周二早班1人晚班3人
func twoDaySchedule() *model.Schedule {
	days := []model.Day{model.Monday, model.Tuesday}
	shifts := []model.ShiftKind{model.ShiftMorning, model.ShiftEvening}
	return model.NewSchedule(days, shifts, map[model.Day]map[model.ShiftKind][]string{
		model.Monday: {
			model.ShiftMorning: {"A", "B"},
			model.ShiftEvening: {"C", "D"},
		},
		model.Tuesday: {
			model.ShiftMorning: {"A"},
			model.ShiftEvening: {"B", "C", "D"},
		},
	})
}

func TestCoverageAnalyzer_Analyze(t *testing.T) {
	analyzer := NewCoverageAnalyzer(2, 2)

	metrics := analyzer.Analyze(twoDaySchedule(), []string{"A", "B", "C", "D", "E"})

	if metrics == nil {
		t.Fatal("Metrics should not be nil")
	}

	if metrics.RequiredSlots != 8 {
		t.Errorf("Expected 8 required slots, got %d", metrics.RequiredSlots)
	}
	// 周二早班缺1人，晚班多出的1人不计入
	if metrics.FilledSlots != 7 {
		t.Errorf("Expected 7 filled slots, got %d", metrics.FilledSlots)
	}
	if metrics.OverallCoverage != 87.5 {
		t.Errorf("Expected 87.5%% coverage, got %.1f%%", metrics.OverallCoverage)
	}

	if len(metrics.Shortfalls) != 1 {
		t.Fatalf("Expected 1 shortfall, got %d", len(metrics.Shortfalls))
	}
	sf := metrics.Shortfalls[0]
	if sf.Day != model.Tuesday || sf.Shift != model.ShiftMorning || sf.Shortage != 1 {
		t.Errorf("Unexpected shortfall: %+v", sf)
	}

	if len(metrics.Overstaffed) != 1 || metrics.Overstaffed[0].Shortage != -1 {
		t.Errorf("Expected Tuesday evening overstaffed by 1, got %+v", metrics.Overstaffed)
	}
}

func TestCoverageAnalyzer_DailyAndShiftType(t *testing.T) {
	metrics := NewCoverageAnalyzer(2, 5).Analyze(twoDaySchedule(), []string{"A", "B", "C", "D"})

	want := []DayCoverage{
		{Day: model.Monday, StaffCount: 4, FilledSlots: 4, CoverageRate: 100},
		{Day: model.Tuesday, StaffCount: 4, FilledSlots: 3, CoverageRate: 75},
	}
	if diff := cmp.Diff(want, metrics.DailyCoverage); diff != "" {
		t.Errorf("daily coverage mismatch (-want +got):\n%s", diff)
	}

	if metrics.ShiftTypeCoverage[model.ShiftMorning] != 75 {
		t.Errorf("Expected morning 75%%, got %.1f%%", metrics.ShiftTypeCoverage[model.ShiftMorning])
	}
	if metrics.ShiftTypeCoverage[model.ShiftEvening] != 100 {
		t.Errorf("Expected evening 100%%, got %.1f%%", metrics.ShiftTypeCoverage[model.ShiftEvening])
	}
}

func TestCoverageAnalyzer_Workload(t *testing.T) {
	metrics := NewCoverageAnalyzer(2, 2).Analyze(twoDaySchedule(), []string{"A", "B", "C", "D", "E"})

	want := []EmployeeLoad{
		{Name: "A", DaysWorked: 2, AtLimit: true},
		{Name: "B", DaysWorked: 2, AtLimit: true},
		{Name: "C", DaysWorked: 2, AtLimit: true},
		{Name: "D", DaysWorked: 2, AtLimit: true},
		{Name: "E", DaysWorked: 0, AtLimit: false},
	}
	if diff := cmp.Diff(want, metrics.Workload); diff != "" {
		t.Errorf("workload mismatch (-want +got):\n%s", diff)
	}

	wantAbsent := []DayAbsence{
		{Day: model.Monday, Employees: []string{"E"}},
		{Day: model.Tuesday, Employees: []string{"E"}},
	}
	if diff := cmp.Diff(wantAbsent, metrics.Unassigned); diff != "" {
		t.Errorf("unassigned mismatch (-want +got):\n%s", diff)
	}
}

func TestCoverageAnalyzer_EmptySchedule(t *testing.T) {
	schedule := model.NewSchedule(model.AllDays(), model.AllShiftKinds(), nil)

	metrics := NewCoverageAnalyzer(2, 5).Analyze(schedule, nil)

	if metrics.OverallCoverage != 0 {
		t.Errorf("Expected 0%% coverage, got %.1f%%", metrics.OverallCoverage)
	}
	if len(metrics.Shortfalls) != 21 {
		t.Errorf("Expected 21 shortfalls, got %d", len(metrics.Shortfalls))
	}
	if len(metrics.Unassigned) != 0 {
		t.Errorf("Expected no absences without employees, got %d", len(metrics.Unassigned))
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		part, total int
		want        float64
	}{
		{0, 0, 100},
		{1, 4, 25},
		{3, 3, 100},
	}

	for _, tt := range tests {
		if got := percent(tt.part, tt.total); got != tt.want {
			t.Errorf("percent(%d, %d) = %v, want %v", tt.part, tt.total, got, tt.want)
		}
	}
}
