package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/paiban/weekshift/pkg/errors"
	"github.com/paiban/weekshift/pkg/model"
	"github.com/paiban/weekshift/pkg/scheduler/solver"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "weekshift.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(FileEnv, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if diff := cmp.Diff(solver.DefaultConfig(), cfg.Scheduler.SolverConfig()); diff != "" {
		t.Errorf("default solver config mismatch (-want +got):\n%s", diff)
	}
	if cfg.App.Port != 7012 {
		t.Errorf("Expected port 7012, got %d", cfg.App.Port)
	}
	if !cfg.IsDevelopment() {
		t.Error("default env should be development")
	}
}

func TestLoadFile_YAML(t *testing.T) {
	path := writeFile(t, `
app:
  env: production
  port: 8080
scheduler:
  min_per_shift: 3
  max_days_per_employee: 4
  tie_break: name
  days: [Mon, Tue, Wed]
  shifts: [morning, evening]
input:
  preference_file: /data/prefs.csv
api:
  timeout: 5s
log:
  level: debug
  format: json
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	want := solver.Config{
		Days:               []model.Day{model.Monday, model.Tuesday, model.Wednesday},
		Shifts:             []model.ShiftKind{model.ShiftMorning, model.ShiftEvening},
		MinPerShift:        3,
		MaxDaysPerEmployee: 4,
		TieBreak:           solver.TieBreakName,
	}
	if diff := cmp.Diff(want, cfg.Scheduler.SolverConfig()); diff != "" {
		t.Errorf("solver config mismatch (-want +got):\n%s", diff)
	}

	if !cfg.IsProduction() || cfg.App.Port != 8080 {
		t.Errorf("app section not applied: %+v", cfg.App)
	}
	if cfg.Input.PreferenceFile != "/data/prefs.csv" {
		t.Errorf("Expected preference file from YAML, got %s", cfg.Input.PreferenceFile)
	}
	if cfg.API.Timeout != 5*time.Second {
		t.Errorf("Expected 5s timeout, got %v", cfg.API.Timeout)
	}
	// 未出现在文件中的字段保留默认值
	if cfg.API.RateLimit != 100 || cfg.Metrics.Path != "/metrics" {
		t.Errorf("defaults should survive partial file: %+v %+v", cfg.API, cfg.Metrics)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" || cfg.Log.Output != "stdout" {
		t.Errorf("log section mismatch: %+v", cfg.Log)
	}
}

func TestLoadFile_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "scheduler:\n  min_per_shift: 3\n")
	t.Setenv("SCHEDULER_MIN_PER_SHIFT", "1")
	t.Setenv("SCHEDULER_MAX_DAYS_PER_EMPLOYEE", "6")
	t.Setenv("API_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Scheduler.MinPerShift != 1 || cfg.Scheduler.MaxDaysPerEmployee != 6 {
		t.Errorf("env should override file: %+v", cfg.Scheduler)
	}
	if diff := cmp.Diff([]string{"https://a.example", "https://b.example"}, cfg.API.CORS.Origins); diff != "" {
		t.Errorf("origins mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFile_LongDayNames(t *testing.T) {
	path := writeFile(t, "scheduler:\n  days: [Monday, tuesday, Fri]\n  shifts: [Morning, evening]\n")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	sc := cfg.Scheduler.SolverConfig()
	if diff := cmp.Diff([]model.Day{model.Monday, model.Tuesday, model.Friday}, sc.Days); diff != "" {
		t.Errorf("days mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]model.ShiftKind{model.ShiftMorning, model.ShiftEvening}, sc.Shifts); diff != "" {
		t.Errorf("shifts mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{"最低人数为零", "scheduler:\n  min_per_shift: 0\n", nil},
		{"上限为负", "scheduler:\n  max_days_per_employee: -1\n", nil},
		{"未知决胜规则", "scheduler:\n  tie_break: random\n", nil},
		{"未知工作日", "scheduler:\n  days: [Mon, Funday]\n", nil},
		{"端口越界", "app:\n  port: 70000\n", nil},
		{"YAML 格式错误", "scheduler: [\n", nil},
		{"环境变量无效", "", map[string]string{"SCHEDULER_MIN_PER_SHIFT": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadFile(writeFile(t, tt.content))
			if !errors.Is(err, errors.CodeInvalidConfig) {
				t.Errorf("expected InvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, errors.CodeInvalidConfig) {
		t.Errorf("expected InvalidConfig, got %v", err)
	}
}
