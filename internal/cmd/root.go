package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"module-tariff/internal/config"
	"module-tariff/internal/observability"
)

var (
	cfgFile string
	verbose bool

	// Version info set by main package
	versionInfo struct {
		Version   string
		Commit    string
		BuildDate string
	}
)

// SetVersionInfo is called by main package to set version information
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

var rootCmd = &cobra.Command{
	Use:   "tariff",
	Short: "Impose proportional import tariffs on JavaScript modules",
	Long: `tariff runs JavaScript modules on an embedded runtime and slows down the
import of every specifier listed in tariffs.json by a percentage of the time
the import originally took.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./tariff.yaml when present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (sets log level to debug)")
	rootCmd.PersistentFlags().String("tariffs", "", "rate table file (json or yaml)")
	rootCmd.PersistentFlags().String("redis-addr", "", "read the rate table from this redis server instead of the file")
	rootCmd.PersistentFlags().String("root", "", "directory holding the modules and node_modules")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("tariffs.file", rootCmd.PersistentFlags().Lookup("tariffs"))
	_ = viper.BindPFlag("tariffs.redis.addr", rootCmd.PersistentFlags().Lookup("redis-addr"))
	_ = viper.BindPFlag("host.root", rootCmd.PersistentFlags().Lookup("root"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	v := viper.GetViper()
	config.SetDefaults(v)
	config.Bind(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("tariff")
		v.SetConfigType("yaml")
	}

	// It's OK if config file doesn't exist, we have defaults
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
	}
}

// loadRuntime decodifica a configuração e monta o logger de diagnóstico.
func loadRuntime(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, nil, err
	}
	log := observability.NewLogger(cfg.Log.Level, verbose, cmd.ErrOrStderr())
	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using config file", zap.String("path", used))
	}
	return cfg, log, nil
}
