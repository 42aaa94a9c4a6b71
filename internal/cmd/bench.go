package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var benchQuiet bool

var benchCmd = &cobra.Command{
	Use:   "bench <specifier>",
	Short: "Import a specifier repeatedly in fresh hosts and report the imposed delays",
	Long: `Import the same specifier bench.iterations times, each time in a new host so
the module cache and the correlation state start empty. Iterations are paced by
a token bucket (bench.rate per second, bench.burst).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadRuntime(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		if cfg.Bench.Iterations <= 0 {
			return fmt.Errorf("bench.iterations must be positive, got %d", cfg.Bench.Iterations)
		}

		fs := afero.NewOsFs()
		rt := loadRateTable(cmd.Context(), fs, cfg, log)
		if _, ok := rt.Lookup(args[0]); !ok {
			log.Warn("specifier is not tariffed, imports will pass through", zap.String("specifier", args[0]))
		}

		burst := cfg.Bench.Burst
		if burst < 1 {
			burst = 1
		}
		limit := rate.Limit(cfg.Bench.Rate)
		if cfg.Bench.Rate <= 0 {
			limit = rate.Inf
		}
		limiter := rate.NewLimiter(limit, burst)

		var moduleOut io.Writer = cmd.OutOrStdout()
		if benchQuiet {
			moduleOut = io.Discard
		}

		t := table.NewWriter()
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{"#", "Applied", "Original", "Imposed", "Elapsed"})

		var totalElapsed time.Duration
		for n := 1; n <= cfg.Bench.Iterations; n++ {
			if err := limiter.Wait(cmd.Context()); err != nil {
				return err
			}

			p, err := newPipeline(fs, rt, cfg.Host.Root, log, moduleOut)
			if err != nil {
				return err
			}

			began := time.Now()
			if _, err := p.host.Import(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("iteration %d: import %s: %w", n, args[0], err)
			}
			elapsed := time.Since(began)
			totalElapsed += elapsed

			c := p.stats.Total()
			t.AppendRow(table.Row{n, c.Applied, millis(c.Original), millis(c.Wait), millis(elapsed)})
		}

		avg := totalElapsed / time.Duration(cfg.Bench.Iterations)
		t.AppendFooter(table.Row{"avg", "", "", "", millis(avg)})
		fmt.Fprint(cmd.OutOrStdout(), t.Render()+"\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(benchCmd)
	benchCmd.Flags().BoolVarP(&benchQuiet, "quiet", "q", false, "discard module output and announcements")
	benchCmd.Flags().Int("iterations", 0, "number of imports (overrides bench.iterations)")
	benchCmd.Flags().Float64("rate", 0, "imports per second (overrides bench.rate)")
	_ = viper.BindPFlag("bench.iterations", benchCmd.Flags().Lookup("iterations"))
	_ = viper.BindPFlag("bench.rate", benchCmd.Flags().Lookup("rate"))
}
