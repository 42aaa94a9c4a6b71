package infra

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultRedisRateTableKey é o hash padrão (campo = specifier, valor = percentual).
const DefaultRedisRateTableKey = "tariffs"

type RedisRateTableOption func(*redisRateTableLoader)

func WithRedisKey(key string) RedisRateTableOption {
	return func(l *redisRateTableLoader) {
		if k := strings.TrimSpace(key); k != "" {
			l.key = k
		}
	}
}

func WithRedisLogger(log *zap.Logger) RedisRateTableOption {
	return func(l *redisRateTableLoader) {
		if log != nil {
			l.log = log
		}
	}
}

type redisRateTableLoader struct {
	key string
	log *zap.Logger
}

// LoadRedisRateTable lê a tabela de um hash no redis (HGETALL).
//
// Assim como LoadRateTable, nunca falha: erro de conexão ou de comando resulta
// em tabela vazia.
func LoadRedisRateTable(ctx context.Context, rdb redis.Cmdable, opts ...RedisRateTableOption) *StaticRateTable {
	l := &redisRateTableLoader{key: DefaultRedisRateTableKey, log: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	if rdb == nil {
		return NewStaticRateTable(nil)
	}

	vals, err := rdb.HGetAll(ctx, l.key).Result()
	if err != nil {
		l.log.Debug("redis rate table not loaded", zap.String("key", l.key), zap.Error(err))
		return NewStaticRateTable(nil)
	}

	raw := make(map[string]any, len(vals))
	for k, v := range vals {
		raw[k] = v
	}
	t := fromRaw(raw)
	l.log.Debug("redis rate table loaded", zap.String("key", l.key), zap.Int("entries", t.Len()))
	return t
}
