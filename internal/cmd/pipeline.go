package cmd

import (
	"context"
	"io"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"module-tariff/internal/config"
	"module-tariff/internal/host"
	"module-tariff/middleware/tariff"
	"module-tariff/middleware/tariff/domain"
	"module-tariff/middleware/tariff/infra"
)

// loadRateTable carrega a tabela uma única vez, antes de qualquer hook.
// Nunca falha: qualquer problema resulta em tabela vazia.
func loadRateTable(ctx context.Context, fs afero.Fs, cfg *config.Config, log *zap.Logger) *infra.StaticRateTable {
	rc := cfg.Tariffs.Redis
	if strings.TrimSpace(rc.Addr) == "" {
		return infra.LoadRateTable(fs, cfg.Tariffs.File, log)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        rc.Addr,
		Password:    rc.Password,
		DB:          rc.DB,
		DialTimeout: rc.Timeout,
	})
	defer func() { _ = rdb.Close() }()

	if rc.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rc.Timeout)
		defer cancel()
	}
	return infra.LoadRedisRateTable(ctx, rdb, infra.WithRedisKey(rc.Key), infra.WithRedisLogger(log))
}

type pipeline struct {
	host  *host.Host
	stats *infra.MemoryStatsStore
}

// newPipeline monta um host novo com o interceptor instalado. Cada pipeline tem
// o seu próprio estado de correlação.
func newPipeline(fs afero.Fs, table domain.RateTable, root string, log *zap.Logger, stdout io.Writer) (*pipeline, error) {
	h, err := host.New(fs, root, host.WithLogger(log), host.WithStdout(stdout))
	if err != nil {
		return nil, err
	}

	stats := infra.NewMemoryStatsStore()
	ic := tariff.New(tariff.Options{
		Table:     table,
		Announcer: infra.NewLogAnnouncer(infra.NewAnnouncementLogger(stdout)),
		Stats:     stats,
		Logger:    log,
	})
	h.InstallTariff(ic)

	log.Debug("pipeline ready", zap.String("host", h.ID()), zap.String("root", h.Root()))
	return &pipeline{host: h, stats: stats}, nil
}
