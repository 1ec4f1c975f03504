package model

import (
	"encoding/json"
	"testing"
)

func TestParseDay(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Day
		ok       bool
	}{
		{"短名称", "Mon", Monday, true},
		{"完整名称", "Sunday", Sunday, true},
		{"大小写不敏感", "wednesday", Wednesday, true},
		{"带空格", "  Fri ", Friday, true},
		{"非法值", "Funday", "", false},
		{"空字符串", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day, ok := ParseDay(tt.input)
			if ok != tt.ok || day != tt.expected {
				t.Errorf("ParseDay(%q) = %v, %v, expected %v, %v", tt.input, day, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestParseShiftKind(t *testing.T) {
	tests := []struct {
		input    string
		expected ShiftKind
		ok       bool
	}{
		{"morning", ShiftMorning, true},
		{"Afternoon", ShiftAfternoon, true},
		{" evening ", ShiftEvening, true},
		{"night", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			kind, ok := ParseShiftKind(tt.input)
			if ok != tt.ok || kind != tt.expected {
				t.Errorf("ParseShiftKind(%q) = %v, %v, expected %v, %v", tt.input, kind, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestAllDays_Order(t *testing.T) {
	days := AllDays()
	if len(days) != 7 {
		t.Fatalf("Expected 7 days, got %d", len(days))
	}
	for i, d := range days {
		if d.Index() != i {
			t.Errorf("%s.Index() = %d, expected %d", d, d.Index(), i)
		}
	}

	// 返回副本，修改不影响后续调用
	days[0] = Sunday
	if AllDays()[0] != Monday {
		t.Error("AllDays should return a copy")
	}
}

func TestShiftKind_Title(t *testing.T) {
	if got := ShiftAfternoon.Title(); got != "Afternoon" {
		t.Errorf("Title() = %q, expected Afternoon", got)
	}
	if got := ShiftKind("").Title(); got != "" {
		t.Errorf("Title() of empty = %q", got)
	}
}

func TestIndexOf(t *testing.T) {
	ranking := []ShiftKind{ShiftEvening, ShiftMorning}
	if IndexOf(ranking, ShiftMorning) != 1 {
		t.Error("morning should be at index 1")
	}
	if IndexOf(ranking, ShiftAfternoon) != -1 {
		t.Error("afternoon is not listed")
	}
}

func TestUnmarshalText(t *testing.T) {
	var days []Day
	if err := json.Unmarshal([]byte(`["Monday", "tue", " Sun "]`), &days); err != nil {
		t.Fatalf("decode days: %v", err)
	}
	if len(days) != 3 || days[0] != Monday || days[1] != Tuesday || days[2] != Sunday {
		t.Errorf("days = %v", days)
	}

	var shifts []ShiftKind
	if err := json.Unmarshal([]byte(`["Evening", "morning"]`), &shifts); err != nil {
		t.Fatalf("decode shifts: %v", err)
	}
	if len(shifts) != 2 || shifts[0] != ShiftEvening || shifts[1] != ShiftMorning {
		t.Errorf("shifts = %v", shifts)
	}

	tests := []struct {
		name  string
		input string
		into  interface{}
	}{
		{"未知工作日", `["Funday"]`, &days},
		{"未知班次", `["night"]`, &shifts},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := json.Unmarshal([]byte(tt.input), tt.into); err == nil {
				t.Error("expected error")
			}
		})
	}
}
