package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/paiban/weekshift/pkg/errors"
	"github.com/paiban/weekshift/pkg/preference"
	"github.com/paiban/weekshift/pkg/render"
	"github.com/paiban/weekshift/pkg/scheduler/solver"
	"github.com/paiban/weekshift/pkg/stats"
)

func newAuditCmd(global *globalFlags) *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "生成排班并输出审计报告（人手不足、未排班员工、出勤天数）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, sc, err := f.resolve(cmd, global)
			if err != nil {
				return err
			}
			return runAudit(cmd.Context(), cmd.OutOrStdout(), file, f.format, sc)
		},
	}
	f.register(cmd, "text/json")
	return cmd
}

func runAudit(ctx context.Context, w io.Writer, file, format string, sc solver.Config) error {
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

	report := stats.Audit(result.Schedule, employees, sc)

	switch format {
	case formatJSON:
		return render.JSON(w, report)
	case formatText:
		return writeAuditText(w, report)
	default:
		return errors.InvalidInput("format", fmt.Sprintf("不支持的输出格式 %q", format))
	}
}

func writeAuditText(w io.Writer, report *stats.Report) error {
	var b strings.Builder
	cov := report.Coverage

	fmt.Fprintf(&b, "Coverage: %d/%d (%.1f%%)\n", cov.FilledSlots, cov.RequiredSlots, cov.OverallCoverage)

	b.WriteString("\nShortfalls:\n")
	if len(cov.Shortfalls) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, sf := range cov.Shortfalls {
		fmt.Fprintf(&b, "  %s %-9s: %d/%d\n", sf.Day, sf.Shift.Title(), sf.Assigned, sf.Required)
	}

	b.WriteString("\nUnassigned:\n")
	if len(cov.Unassigned) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, absent := range cov.Unassigned {
		fmt.Fprintf(&b, "  %s: %s\n", absent.Day, strings.Join(absent.Employees, ", "))
	}

	b.WriteString("\nDays worked:\n")
	for _, load := range cov.Workload {
		mark := ""
		if load.AtLimit {
			mark = " (limit)"
		}
		fmt.Fprintf(&b, "  %s: %d%s\n", load.Name, load.DaysWorked, mark)
	}

	if len(report.Conflicts) > 0 {
		b.WriteString("\nConflicts:\n")
		for _, c := range report.Conflicts {
			fmt.Fprintf(&b, "  [%s] %s\n", c.Severity, c.Message)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
