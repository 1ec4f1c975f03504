package validator

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/paiban/weekshift/pkg/model"
)

type rosters = map[model.Day]map[model.ShiftKind][]string

func newSchedule(r rosters) *model.Schedule {
	return model.NewSchedule(model.AllDays(), model.AllShiftKinds(), r)
}

func TestConflictDetector_DetectAll(t *testing.T) {
	detector := NewConflictDetector(DefaultDetectorConfig())

	schedule := newSchedule(rosters{
		model.Monday: {
			model.ShiftMorning: {"员工1", "员工2"},
			model.ShiftEvening: {"员工3"},
		},
		model.Tuesday: {
			model.ShiftAfternoon: {"员工1"},
		},
	})

	conflicts := detector.DetectAll(schedule, []string{"员工1", "员工2", "员工3"})

	// 正常排班不应有冲突
	if len(conflicts) != 0 {
		t.Errorf("Expected 0 conflicts, got %d", len(conflicts))
		for _, c := range conflicts {
			t.Logf("Conflict: %s", c.Message)
		}
	}
}

func TestConflictDetector_DoubleBooking(t *testing.T) {
	detector := NewConflictDetector(DefaultDetectorConfig())

	schedule := newSchedule(rosters{
		model.Wednesday: {
			model.ShiftMorning: {"员工1"},
			model.ShiftEvening: {"员工1"},
		},
	})

	conflicts := detector.DetectAll(schedule, nil)

	if len(conflicts) != 1 {
		t.Fatalf("Expected 1 conflict, got %d", len(conflicts))
	}
	want := Conflict{
		Type:     ConflictDoubleBooking,
		Severity: SeverityError,
		Employee: "员工1",
		Day:      model.Wednesday,
		Shifts:   []model.ShiftKind{model.ShiftMorning, model.ShiftEvening},
	}
	if diff := cmp.Diff(want, conflicts[0], cmpIgnoreMessage); diff != "" {
		t.Errorf("conflict mismatch (-want +got):\n%s", diff)
	}
}

func TestConflictDetector_DuplicateEntry(t *testing.T) {
	detector := NewConflictDetector(DefaultDetectorConfig())

	schedule := newSchedule(rosters{
		model.Monday: {model.ShiftMorning: {"员工1", "员工1"}},
	})

	conflicts := detector.DetectAll(schedule, nil)

	if len(conflicts) != 1 || conflicts[0].Type != ConflictDuplicateEntry {
		t.Errorf("Expected a single duplicate entry, got %+v", conflicts)
	}
}

func TestConflictDetector_MaxDays(t *testing.T) {
	detector := NewConflictDetector(&DetectorConfig{MaxDaysPerEmployee: 2})

	r := rosters{}
	for _, day := range []model.Day{model.Monday, model.Tuesday, model.Wednesday} {
		r[day] = map[model.ShiftKind][]string{model.ShiftMorning: {"员工1", "员工2"}}
	}
	r[model.Thursday] = map[model.ShiftKind][]string{model.ShiftMorning: {"员工3"}}

	conflicts := detector.DetectAll(newSchedule(r), nil)

	if len(conflicts) != 2 {
		t.Fatalf("Expected 2 conflicts, got %d", len(conflicts))
	}
	for i, name := range []string{"员工1", "员工2"} {
		if conflicts[i].Type != ConflictMaxDays || conflicts[i].Employee != name {
			t.Errorf("conflicts[%d] = %+v, want max_days for %s", i, conflicts[i], name)
		}
	}
	if !HasErrors(conflicts) {
		t.Error("max_days should be an error")
	}
}

func TestConflictDetector_UnknownEmployee(t *testing.T) {
	tests := []struct {
		name     string
		config   *DetectorConfig
		known    []string
		expected int
	}{
		{"检查未知员工", DefaultDetectorConfig(), []string{"员工1"}, 1},
		{"未提供员工列表", DefaultDetectorConfig(), nil, 0},
		{"关闭检查", &DetectorConfig{MaxDaysPerEmployee: 5}, []string{"员工1"}, 0},
	}

	schedule := newSchedule(rosters{
		model.Friday: {model.ShiftEvening: {"员工1", "外来者"}},
	})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conflicts := NewConflictDetector(tt.config).DetectAll(schedule, tt.known)
			if len(conflicts) != tt.expected {
				t.Fatalf("Expected %d conflicts, got %d", tt.expected, len(conflicts))
			}
			if tt.expected > 0 {
				if conflicts[0].Employee != "外来者" || conflicts[0].Severity != SeverityWarning {
					t.Errorf("Unexpected conflict: %+v", conflicts[0])
				}
				if HasErrors(conflicts) {
					t.Error("unknown employee is only a warning")
				}
			}
		})
	}
}

func TestSortConflicts(t *testing.T) {
	conflicts := []Conflict{
		{Type: ConflictDoubleBooking, Employee: "B", Day: model.Tuesday},
		{Type: ConflictMaxDays, Employee: "A"},
		{Type: ConflictDoubleBooking, Employee: "A", Day: model.Tuesday},
		{Type: ConflictDoubleBooking, Employee: "C", Day: model.Monday},
	}

	SortConflicts(conflicts)

	var got []string
	for _, c := range conflicts {
		got = append(got, string(c.Day)+"/"+c.Employee)
	}
	want := []string{"/A", "Mon/C", "Tue/A", "Tue/B"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

var cmpIgnoreMessage = cmp.FilterPath(func(p cmp.Path) bool {
	return p.Last().String() == ".Message"
}, cmp.Ignore())
