package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/paiban/weekshift/internal/config"
	"github.com/paiban/weekshift/pkg/errors"
	"github.com/paiban/weekshift/pkg/model"
	"github.com/paiban/weekshift/pkg/preference"
	"github.com/paiban/weekshift/pkg/render"
	"github.com/paiban/weekshift/pkg/scheduler/solver"
)

// 输出格式
const (
	formatText = "text"
	formatJSON = "json"
	formatHTML = "html"
)

// runFlags plan 与 audit 共用的排班参数
type runFlags struct {
	file        string
	format      string
	minPerShift int
	maxDays     int
	tieBreak    string
}

func (f *runFlags) register(cmd *cobra.Command, formats string) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "员工偏好表 CSV（默认取配置 input.preference_file）")
	cmd.Flags().StringVar(&f.format, "format", formatText, "输出格式 ("+formats+")")
	cmd.Flags().IntVar(&f.minPerShift, "min-per-shift", 0, "每个班次的最低人数")
	cmd.Flags().IntVar(&f.maxDays, "max-days", 0, "每名员工每周最多出勤天数")
	cmd.Flags().StringVar(&f.tieBreak, "tie-break", "", "补缺阶段同名次决胜规则 (input_order/name)")
}

// resolve 合并配置文件、环境变量与命令行参数
func (f *runFlags) resolve(cmd *cobra.Command, global *globalFlags) (string, solver.Config, error) {
	cfg, err := config.LoadFile(global.configFile)
	if err != nil {
		return "", solver.Config{}, err
	}

	sc := cfg.Scheduler.SolverConfig()
	if cmd.Flags().Changed("min-per-shift") {
		sc.MinPerShift = f.minPerShift
	}
	if cmd.Flags().Changed("max-days") {
		sc.MaxDaysPerEmployee = f.maxDays
	}
	if cmd.Flags().Changed("tie-break") {
		sc.TieBreak = solver.TieBreak(f.tieBreak)
	}
	if err := sc.Validate(); err != nil {
		return "", solver.Config{}, err
	}

	file := f.file
	if file == "" {
		file = cfg.Input.PreferenceFile
	}
	return file, sc, nil
}

func newPlanCmd(global *globalFlags) *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "生成一周排班",
		Example: `  weekshift plan -f employee.csv
  weekshift plan -f employee.csv --format json --min-per-shift 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, sc, err := f.resolve(cmd, global)
			if err != nil {
				return err
			}
			return runPlan(cmd.Context(), cmd.OutOrStdout(), file, f.format, sc)
		},
	}
	f.register(cmd, "text/json/html")
	return cmd
}

func runPlan(ctx context.Context, w io.Writer, file, format string, sc solver.Config) error {
	employees, err := preference.Load(file)
	if err != nil {
		return err
	}

	s, err := solver.NewGreedySolver(sc)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	result, err := s.Solve(ctx, employees)
	if err != nil {
		return err
	}

	switch format {
	case formatText:
		return render.Text(w, result.Schedule)
	case formatJSON:
		return render.JSON(w, planOutput{
			RunID:      result.RunID.String(),
			Schedule:   result.Schedule,
			DaysWorked: result.DaysWorked,
			Statistics: result.Statistics,
		})
	case formatHTML:
		return render.HTML(w, result.Schedule, render.PageOptions{MinPerShift: sc.MinPerShift})
	default:
		return errors.InvalidInput("format", fmt.Sprintf("不支持的输出格式 %q", format))
	}
}

// planOutput plan --format json 的输出
type planOutput struct {
	RunID      string             `json:"run_id"`
	Schedule   *model.Schedule    `json:"schedule"`
	DaysWorked map[string]int     `json:"days_worked"`
	Statistics *solver.Statistics `json:"statistics"`
}
