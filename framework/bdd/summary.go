package bdd

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type summaryCounts struct {
	examples   int
	assertions int
	failed     int
	skipped    int
}

// PrintSummary renders a table of the run with one row per suite and per context, and a total.
// Colored styles are only used if useColor is true.
func PrintSummary(w io.Writer, title string, results Results, useColor bool) {
	counts := make(map[string]summaryCounts)
	add := func(key string, assertions int, failed, skipped bool) {
		c := counts[key]
		c.examples++
		c.assertions += assertions
		if failed {
			c.failed++
		}
		if skipped {
			c.skipped++
		}
		counts[key] = c
	}
	for _, e := range results.Examples {
		add(e.ID[0], e.Assertions, e.Failed, false)
		add(ExampleID(e.ID[:2]).String(), e.Assertions, e.Failed, false)
	}
	for _, s := range results.Skipped {
		if len(s.ID) < 2 {
			continue
		}
		add(s.ID[0], 0, false, true)
		add(ExampleID(s.ID[:2]).String(), 0, false, true)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("%s (%s)", title, formatDuration(results.Duration)))
	t.AppendHeader(table.Row{
		"Type", "ID", "Duration", "Examples", "Assertions", "Failed", "Skipped", "Status",
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Type", AutoMerge: true},
		{Name: "ID", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Examples", Align: text.AlignRight},
		{Name: "Assertions", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Skipped", Align: text.AlignRight},
	})

	for _, s := range results.Suites {
		c := counts[s.Name]
		t.AppendRow(table.Row{
			"Suite", s.Name, formatDuration(s.Duration),
			c.examples, c.assertions, c.failed, c.skipped, statusString(s.Success),
		})
		for i, ctx := range s.Contexts {
			prefix := "├─"
			if i == len(s.Contexts)-1 {
				prefix = "└─"
			}
			cc := counts[ExampleID{s.Name, ctx.Name}.String()]
			t.AppendRow(table.Row{
				"", fmt.Sprintf("%s %s", prefix, ctx.Name), formatDuration(ctx.Duration),
				cc.examples, cc.assertions, cc.failed, cc.skipped, statusString(ctx.Errors == 0),
			})
		}
		t.AppendSeparator()
	}

	if useColor {
		if results.OK() {
			t.SetStyle(table.StyleColoredBlackOnGreenWhite)
		} else {
			t.SetStyle(table.StyleColoredBlackOnRedWhite)
		}
	}

	t.AppendFooter(table.Row{
		"TOTAL", "", formatDuration(results.Duration),
		len(results.Examples), results.Assertions(), len(results.Failures), len(results.Skipped),
		statusString(results.OK()),
	})
	t.Render()
}

func statusString(success bool) string {
	if success {
		return "pass"
	}
	return "fail"
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Truncate(time.Millisecond).String()
}
