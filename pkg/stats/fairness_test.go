package stats

import (
	"math"
	"testing"

	"github.com/paiban/weekshift/pkg/model"
)

func fallback(model.Day) []model.ShiftKind {
	return model.AllShiftKinds()
}

func TestFairnessAnalyzer_Analyze(t *testing.T) {
	analyzer := NewFairnessAnalyzer(fallback)

	employees := []model.Employee{
		model.NewEmployee("A").
			Prefer(model.Monday, model.ShiftMorning).
			Prefer(model.Tuesday, model.ShiftMorning, model.ShiftEvening),
		model.NewEmployee("B").Prefer(model.Monday, model.ShiftEvening),
		model.NewEmployee("C"),
		model.NewEmployee("D").
			Prefer(model.Monday, model.ShiftEvening).
			Prefer(model.Tuesday, model.ShiftEvening),
	}

	metrics := analyzer.Analyze(twoDaySchedule(), employees)

	if metrics == nil {
		t.Fatal("Metrics should not be nil")
	}

	// 每人都出勤2天，分布完全均衡
	if metrics.DaysGini != 0 {
		t.Errorf("Expected gini 0, got %f", metrics.DaysGini)
	}
	if metrics.AvgDaysWorked != 2 || metrics.MaxDaysWorked != 2 || metrics.MinDaysWorked != 2 {
		t.Errorf("Unexpected days worked: avg=%.1f max=%d min=%d",
			metrics.AvgDaysWorked, metrics.MaxDaysWorked, metrics.MinDaysWorked)
	}

	// 8次分配中 A 两次、D 两次为首选；B 周一早班不在其偏好中
	if metrics.TopChoiceRate != 50 {
		t.Errorf("Expected top choice 50%%, got %.2f%%", metrics.TopChoiceRate)
	}
	if metrics.UnlistedRate != 12.5 {
		t.Errorf("Expected unlisted 12.5%%, got %.2f%%", metrics.UnlistedRate)
	}

	if math.Abs(metrics.FairnessScore-83.75) > 1e-9 {
		t.Errorf("Expected score 83.75, got %f", metrics.FairnessScore)
	}
}

func TestFairnessAnalyzer_Uneven(t *testing.T) {
	schedule := model.NewSchedule(
		[]model.Day{model.Monday, model.Tuesday},
		[]model.ShiftKind{model.ShiftMorning},
		map[model.Day]map[model.ShiftKind][]string{
			model.Monday:  {model.ShiftMorning: {"A"}},
			model.Tuesday: {model.ShiftMorning: {"A"}},
		},
	)
	employees := []model.Employee{model.NewEmployee("A"), model.NewEmployee("B")}

	metrics := NewFairnessAnalyzer(fallback).Analyze(schedule, employees)

	if metrics.DaysGini <= 0 || metrics.DaysGini > 1 {
		t.Errorf("Gini coefficient should be in (0, 1], got %f", metrics.DaysGini)
	}
	if metrics.DaysStdDev != 1 {
		t.Errorf("Expected std dev 1, got %f", metrics.DaysStdDev)
	}
	if metrics.MinDaysWorked != 0 {
		t.Errorf("Expected min days 0, got %d", metrics.MinDaysWorked)
	}
}

func TestFairnessAnalyzer_EmptyInput(t *testing.T) {
	analyzer := NewFairnessAnalyzer(nil)

	metrics := analyzer.Analyze(model.NewSchedule(model.AllDays(), model.AllShiftKinds(), nil), nil)

	if metrics == nil {
		t.Fatal("Metrics should not be nil")
	}
	if metrics.FairnessScore != 100 {
		t.Errorf("Expected score 100 for empty input, got %f", metrics.FairnessScore)
	}
}

func TestCalculateGini(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"空输入", nil, 0},
		{"完全均衡", []float64{5, 5, 5}, 0},
		{"全为零", []float64{0, 0}, 0},
		{"一人承担", []float64{0, 4}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calculateGini(tt.values); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("calculateGini(%v) = %f, want %f", tt.values, got, tt.want)
			}
		})
	}
}
