// Package config concentra a configuração da CLI tariff.
//
// Camadas (a última vence):
//  1. defaults (SetDefaults)
//  2. arquivo tariff.yaml opcional (diretório atual ou --config)
//  3. variáveis de ambiente TARIFF_* e flags
//
// A tabela de tarifas em si não passa por aqui: ela é lida uma vez pelo infra e
// nunca é validada.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"module-tariff/middleware/tariff/infra"
)

const EnvPrefix = "TARIFF"

type Config struct {
	Tariffs TariffsConfig `mapstructure:"tariffs"`
	Host    HostConfig    `mapstructure:"host"`
	Log     LogConfig     `mapstructure:"log"`
	Bench   BenchConfig   `mapstructure:"bench"`
}

// TariffsConfig diz de onde vem a tabela. Com Redis.Addr preenchido, o hash
// do redis substitui o arquivo.
type TariffsConfig struct {
	File  string      `mapstructure:"file"`
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Key      string        `mapstructure:"key"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type HostConfig struct {
	// Root é o diretório onde ficam os módulos (e node_modules).
	Root string `mapstructure:"root"`
}

type LogConfig struct {
	// Level: debug, info, warn, error
	Level string `mapstructure:"level"`
}

// BenchConfig controla o comando bench: Iterations imports em hosts novos,
// ritmados por um token bucket (Rate por segundo, Burst).
type BenchConfig struct {
	Iterations int     `mapstructure:"iterations"`
	Rate       float64 `mapstructure:"rate"`
	Burst      int     `mapstructure:"burst"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("tariffs.file", infra.DefaultRateTableFile)
	v.SetDefault("tariffs.redis.addr", "")
	v.SetDefault("tariffs.redis.password", "")
	v.SetDefault("tariffs.redis.db", 0)
	v.SetDefault("tariffs.redis.key", infra.DefaultRedisRateTableKey)
	v.SetDefault("tariffs.redis.timeout", "2s")

	v.SetDefault("host.root", ".")

	v.SetDefault("log.level", "info")

	v.SetDefault("bench.iterations", 10)
	v.SetDefault("bench.rate", 5.0)
	v.SetDefault("bench.burst", 1)
}

// Bind liga o viper ao ambiente (TARIFF_TARIFFS_FILE, TARIFF_HOST_ROOT, ...).
func Bind(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodifica as configurações do viper em Config.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToFloat64HookFunc(),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(settings(v)); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// settings monta o mapa aninhado a partir das chaves conhecidas; AllSettings
// sozinho não enxerga variáveis de ambiente sem default registrado.
func settings(v *viper.Viper) map[string]any {
	out := map[string]any{}
	for _, key := range v.AllKeys() {
		parts := strings.Split(key, ".")
		m := out
		for _, p := range parts[:len(parts)-1] {
			next, ok := m[p].(map[string]any)
			if !ok {
				next = map[string]any{}
				m[p] = next
			}
			m = next
		}
		m[parts[len(parts)-1]] = v.Get(key)
	}
	return out
}
