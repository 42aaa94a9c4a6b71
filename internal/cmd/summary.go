package cmd

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"module-tariff/middleware/tariff/infra"
)

func renderStats(stats *infra.MemoryStatsStore) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Specifier", "Applied", "Original", "Imposed"})

	bySpec := stats.BySpecifier()
	for _, spec := range slices.Sorted(maps.Keys(bySpec)) {
		c := bySpec[spec]
		t.AppendRow(table.Row{spec, c.Applied, millis(c.Original), millis(c.Wait)})
	}

	total := stats.Total()
	t.AppendFooter(table.Row{"total", total.Applied, millis(total.Original), millis(total.Wait)})
	return t.Render() + "\n"
}

func millis(d time.Duration) string {
	return fmt.Sprintf("%.3f ms", float64(d)/float64(time.Millisecond))
}
