package render

import (
	"fmt"
	"io"

	g "maragu.dev/gomponents"
	c "maragu.dev/gomponents/components"
	h "maragu.dev/gomponents/html"

	"github.com/paiban/weekshift/pkg/model"
)

const pageStyle = `
body { font-family: sans-serif; margin: 2rem; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: .4rem .8rem; text-align: left; vertical-align: top; }
td.short { background: #fde2e2; }
td.none { color: #999; }
`

// PageOptions HTML 页面选项
type PageOptions struct {
	Title       string
	MinPerShift int // 大于0时标记人数不足的班次
}

// HTML 输出完整的排班页面：行为工作日，列为班次
func HTML(w io.Writer, schedule *model.Schedule, opts PageOptions) error {
	title := opts.Title
	if title == "" {
		title = "Weekly Schedule"
	}
	return page(title, scheduleTable(schedule, opts.MinPerShift)).Render(w)
}

func page(title string, body ...g.Node) g.Node {
	return h.Doctype(
		h.HTML(
			h.Lang("en"),
			h.Head(
				h.Meta(h.Charset("utf-8")),
				h.TitleEl(g.Text(title)),
				h.StyleEl(g.Raw(pageStyle)),
			),
			h.Body(
				h.H1(g.Text(title)),
				g.Group(body),
			),
		),
	)
}

func scheduleTable(schedule *model.Schedule, minPerShift int) g.Node {
	shifts := schedule.Shifts()

	return h.Table(
		h.THead(
			h.Tr(
				h.Th(g.Text("Day")),
				g.Map(shifts, func(s model.ShiftKind) g.Node {
					return h.Th(g.Text(s.Title()))
				}),
			),
		),
		h.TBody(
			g.Map(schedule.Table(), func(dr model.DayRoster) g.Node {
				return h.Tr(
					h.Th(g.Text(dr.Day.FullName())),
					g.Map(dr.Shifts, func(sr model.ShiftRoster) g.Node {
						return rosterCell(sr, minPerShift)
					}),
				)
			}),
		),
	)
}

func rosterCell(sr model.ShiftRoster, minPerShift int) g.Node {
	short := minPerShift > 0 && len(sr.Employees) < minPerShift
	return h.Td(
		c.Classes{
			"short": short,
			"none":  len(sr.Employees) == 0,
		},
		g.If(short, h.Title(fmt.Sprintf("%d/%d", len(sr.Employees), minPerShift))),
		g.Text(joinNames(sr.Employees)),
	)
}
