package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"module-tariff/middleware/tariff/infra"
)

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Print the loaded rate table",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadRuntime(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		t := loadRateTable(cmd.Context(), afero.NewOsFs(), cfg, log)
		fmt.Fprint(cmd.OutOrStdout(), renderRateTable(t))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tableCmd)
}

func renderRateTable(rt *infra.StaticRateTable) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Specifier", "Tariff"})

	for _, spec := range rt.Specifiers() {
		p, _ := rt.Lookup(spec)
		t.AppendRow(table.Row{spec, fmt.Sprintf("%v%%", float64(p))})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d tariffed", rt.Len())})
	return t.Render() + "\n"
}
