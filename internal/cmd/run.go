package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runSummary bool

var runCmd = &cobra.Command{
	Use:   "run <specifier>",
	Short: "Import a module through the tariff pipeline",
	Long: `Import a module (for example ./main.js or left-pad) from the host root.
Imports go through the resolve/load hooks; require() calls made by the
modules go through the synchronous wrapper.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadRuntime(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		fs := afero.NewOsFs()
		table := loadRateTable(cmd.Context(), fs, cfg, log)
		log.Debug("rate table ready", zap.Int("entries", table.Len()))

		p, err := newPipeline(fs, table, cfg.Host.Root, log, cmd.OutOrStdout())
		if err != nil {
			return err
		}

		if _, err := p.host.Import(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("import %s: %w", args[0], err)
		}

		if runSummary {
			fmt.Fprint(cmd.OutOrStdout(), renderStats(p.stats))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runSummary, "summary", false, "print the tariffs applied per specifier at the end")
}
