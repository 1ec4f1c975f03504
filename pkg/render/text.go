// Package render 将周排班表输出为终端文本、JSON 或 HTML
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/paiban/weekshift/pkg/model"
)

const (
	separatorWidth = 30
	noneLabel      = "(none)"
)

// Text 以终端表格输出排班表
//
//	Final weekly schedule:
//	==============================
//	Mon:
//	  Morning  : Alice, Bob
//	  Afternoon: (none)
func Text(w io.Writer, schedule *model.Schedule) error {
	var b strings.Builder

	b.WriteString("\nFinal weekly schedule:\n")
	b.WriteString(strings.Repeat("=", separatorWidth))
	b.WriteString("\n")

	for _, dr := range schedule.Table() {
		fmt.Fprintf(&b, "%s:\n", dr.Day)
		for _, sr := range dr.Shifts {
			fmt.Fprintf(&b, "  %-9s: %s\n", sr.Shift.Title(), joinNames(sr.Employees))
		}
		b.WriteString(strings.Repeat("-", separatorWidth))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// JSON 以缩进 JSON 输出排班表
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func joinNames(names []string) string {
	if len(names) == 0 {
		return noneLabel
	}
	return strings.Join(names, ", ")
}
