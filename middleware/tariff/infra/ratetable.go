package infra

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"module-tariff/middleware/tariff/domain"
)

// DefaultRateTableFile é o arquivo procurado no diretório de trabalho.
const DefaultRateTableFile = "tariffs.json"

// StaticRateTable é uma domain.RateTable imutável.
type StaticRateTable struct {
	rates  map[string]domain.Percentage
	labels map[string]string
}

// NewStaticRateTable copia rates; mudanças posteriores no map não afetam a tabela.
func NewStaticRateTable(rates map[string]float64) *StaticRateTable {
	t := &StaticRateTable{rates: make(map[string]domain.Percentage, len(rates))}
	for k, v := range rates {
		t.rates[k] = domain.Percentage(v)
	}
	return t
}

// Label implementa domain.RateLabeler. Só existe para tabelas lidas de um
// documento; NewStaticRateTable não guarda rótulos.
func (t *StaticRateTable) Label(specifier string) (string, bool) {
	if t == nil {
		return "", false
	}
	s, ok := t.labels[specifier]
	return s, ok
}

// Lookup implementa domain.RateTable.
func (t *StaticRateTable) Lookup(specifier string) (domain.Percentage, bool) {
	if t == nil {
		return 0, false
	}
	p, ok := t.rates[specifier]
	return p, ok
}

func (t *StaticRateTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rates)
}

// Specifiers retorna as chaves em ordem.
func (t *StaticRateTable) Specifiers() []string {
	if t == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(t.rates))
}

// LoadRateTable lê a tabela de path (json, ou yaml pela extensão).
//
// Nunca falha: arquivo ausente, ilegível ou malformado resulta em tabela vazia
// (modo sem tarifas). O erro só aparece no log de debug.
func LoadRateTable(fs afero.Fs, path string, log *zap.Logger) *StaticRateTable {
	if log == nil {
		log = zap.NewNop()
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if path == "" {
		path = DefaultRateTableFile
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		log.Debug("rate table not loaded", zap.String("path", path), zap.Error(err))
		return NewStaticRateTable(nil)
	}

	raw := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		log.Debug("rate table malformed", zap.String("path", path), zap.Error(err))
		return NewStaticRateTable(nil)
	}

	t := fromRaw(raw)
	log.Debug("rate table loaded", zap.String("path", path), zap.Int("entries", t.Len()))
	return t
}

func fromRaw(raw map[string]any) *StaticRateTable {
	t := &StaticRateTable{
		rates:  make(map[string]domain.Percentage, len(raw)),
		labels: make(map[string]string, len(raw)),
	}
	for k, v := range raw {
		t.rates[k] = coercePercentage(v)
		t.labels[k] = rawLabel(v)
	}
	return t
}

// rawLabel reproduz o valor como ele seria interpolado num texto.
func rawLabel(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case float64:
		return formatFloat(x)
	default:
		return fmt.Sprint(x)
	}
}

// coercePercentage converte como aritmética de tipagem fraca: "50" -> 50,
// true -> 1, null -> 0. O que não converte vira NaN (não impõe espera).
func coercePercentage(v any) domain.Percentage {
	var f float64
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &f,
	})
	if err != nil {
		return domain.Percentage(math.NaN())
	}
	if err := dec.Decode(v); err != nil {
		return domain.Percentage(math.NaN())
	}
	return domain.Percentage(f)
}
