package domain

import (
	"context"
	"math"
	"time"
)

// Path indica onde o atraso foi pago.
type Path string

const (
	// PathInline: atraso aplicado antes do load retornar (formatos de dados).
	PathInline Path = "inline"
	// PathDeferred: atraso aplicado na execução top-level do próprio módulo.
	PathDeferred Path = "deferred"
	// PathSync: atraso aplicado pelo wrapper do require legado.
	PathSync Path = "sync"
)

// TariffEvent representa uma aplicação de tarifa.
type TariffEvent struct {
	Specifier  string
	ModuleID   string
	Path       Path
	Percentage Percentage
	// Label é o percentual como escrito na tabela ("abc", "true"). Vazio usa
	// a formatação de Percentage.
	Label string

	Original time.Duration
	Wait     time.Duration
}

// Adjusted é o tempo total após a tarifa. Satura nos limites de time.Duration.
func (e TariffEvent) Adjusted() time.Duration {
	switch {
	case e.Wait > 0 && e.Original > math.MaxInt64-e.Wait:
		return time.Duration(math.MaxInt64)
	case e.Wait < 0 && e.Original < math.MinInt64-e.Wait:
		return time.Duration(math.MinInt64)
	}
	return e.Original + e.Wait
}

// Announcer emite a linha de log de uma tarifa aplicada.
type Announcer interface {
	Announce(ev TariffEvent)
}

// StatsStore é a estratégia de registro de estatísticas das tarifas.
//
// Somente em memória do processo: medições não são persistidas entre execuções.
// O interceptor trata erro como best-effort (não derruba o load).
type StatsStore interface {
	Record(ctx context.Context, ev TariffEvent) error
}
