// Package trace renders interpreter diagnostics and GC collection
// summaries to the terminal, styled with the same lipgloss palette
// used elsewhere in this module.
package trace

import (
	"fmt"

	"github.com/mabhi256/mjvm/internal/gc"
	"github.com/mabhi256/mjvm/internal/runtime"
	"github.com/mabhi256/mjvm/utils"
)

// Printer is a DiagnosticSink that writes each diagnostic to stdout
// as a styled, severity-colored line.
type Printer struct {
	count int
}

func NewPrinter() *Printer {
	return &Printer{}
}

func (p *Printer) Observe(d runtime.Diagnostic) {
	p.count++
	icon := utils.GetSeverityIcon(d.Severity.String())
	style := utils.GetSeverityStyle(d.Severity.String())
	fmt.Println(style.Render(fmt.Sprintf("%s %s", icon, d.Message)))
}

// Count reports how many diagnostics have been observed so far.
func (p *Printer) Count() int {
	return p.count
}

// PrintGCStats renders the full collection ledger: one line per
// collection plus, if the collector has a tuning suggestion, a
// trailing recommendation line.
func PrintGCStats(ledger *gc.Ledger) {
	records := ledger.All()
	if len(records) == 0 {
		fmt.Println(utils.MutedStyle.Render("no collections ran"))
		return
	}

	fmt.Println(utils.TitleStyle.Render("Garbage Collection Summary"))
	for _, r := range records {
		fmt.Println("  " + r.String())
	}

	occupancy := make([]float64, len(records))
	for i, r := range records {
		occupancy[i] = float64(r.ObjectsAfter)
	}
	fmt.Println()

	const minForPlot = 3
	if len(records) >= minForPlot {
		fmt.Println(utils.TitleStyle.Render("Occupancy over time"))
		fmt.Println(occupancyPlot(records))
	} else {
		fmt.Println(utils.FormatKeyValue("occupancy trend", utils.CreateSparkline(occupancy, len(occupancy)), 16))
	}

	if suggestion := ledger.Recommend(); suggestion != "" {
		fmt.Println()
		fmt.Println(utils.WarningStyle.Render("💡 " + suggestion))
	}
}

// occupancyPlot renders the ledger's post-collection object counts as
// a full line chart, used once a run has enough collections for a
// trend to be worth more than a one-line sparkline.
func occupancyPlot(records []gc.Record) string {
	points := make([]utils.DataPoint, len(records))
	for i, r := range records {
		points[i] = utils.DataPoint{
			Value:     float64(r.ObjectsAfter),
			Timestamp: r.Timestamp,
			Icon:      utils.GoodStyle.Render("●"),
		}
	}
	config := utils.ChartConfig{
		Width:  utils.MinChartWidth + 40,
		Height: utils.ChartHeight,
		Styles: utils.DefaultChartStyles(),
		Legend: "live objects after each collection",
	}
	return utils.CreatePlot(points, "", config)
}
