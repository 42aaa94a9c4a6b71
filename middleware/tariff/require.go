package tariff

import (
	"context"

	"module-tariff/middleware/tariff/application"
	"module-tariff/middleware/tariff/domain"
)

// RequireFunc é o ponto de entrada síncrono legado: resolve, carrega e executa.
type RequireFunc[T any] func(specifier string) (T, error)

// WrapRequire envolve o require legado.
//
// Sem tarifa: delega direto, sem nenhuma leitura de relógio.
// Com tarifa: mede o require inteiro, bloqueia pelo atraso e só então devolve o
// valor original. Erro de next é devolvido sem atraso.
func WrapRequire[T any](i *Interceptor, next RequireFunc[T]) RequireFunc[T] {
	return func(specifier string) (T, error) {
		pct, ok := i.table.Lookup(specifier)
		if !ok {
			return next(specifier)
		}

		start := i.clock.Now()
		v, err := next(specifier)
		if err != nil {
			return v, err
		}

		i.svc.Settle(context.Background(), application.Tariff{
			Specifier:  specifier,
			Path:       domain.PathSync,
			Percentage: pct,
			Label:      i.label(specifier),
		}, start)
		return v, nil
	}
}
