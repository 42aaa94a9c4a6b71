package application

import (
	"context"
	"math"
	"time"

	"module-tariff/middleware/tariff/domain"
)

// ComputeWait retorna elapsed * pct / 100.
//
// NaN não impõe espera. Resultados fora do intervalo de time.Duration saturam.
func ComputeWait(elapsed time.Duration, pct domain.Percentage) time.Duration {
	w := float64(elapsed) * float64(pct) / 100
	switch {
	case math.IsNaN(w):
		return 0
	case w >= math.MaxInt64:
		return time.Duration(math.MaxInt64)
	case w <= math.MinInt64:
		return time.Duration(math.MinInt64)
	}
	return time.Duration(w)
}

// Tariff identifica uma tarifa a ser acertada.
type Tariff struct {
	Specifier  string
	ModuleID   string
	Path       domain.Path
	Percentage domain.Percentage
	Label      string
}

// Service concentra a regra de acerto da tarifa.
//
// Ele não sabe nada sobre resolve/load, apenas mede, bloqueia e anuncia.
type Service struct {
	Clock     domain.Clock
	Waiter    domain.Waiter
	Announcer domain.Announcer
	Stats     domain.StatsStore
}

// Settle mede o tempo decorrido desde start, bloqueia pelo atraso proporcional
// (sempre até o fim) e emite exatamente um anúncio.
func (s Service) Settle(ctx context.Context, t Tariff, start time.Time) domain.TariffEvent {
	now := s.now()
	original := now.Sub(start)
	wait := ComputeWait(original, t.Percentage)

	if s.Waiter != nil {
		s.Waiter.BlockUntil(now.Add(wait))
	}

	ev := domain.TariffEvent{
		Specifier:  t.Specifier,
		ModuleID:   t.ModuleID,
		Path:       t.Path,
		Percentage: t.Percentage,
		Label:      t.Label,
		Original:   original,
		Wait:       wait,
	}
	if s.Announcer != nil {
		s.Announcer.Announce(ev)
	}
	if s.Stats != nil {
		_ = s.Stats.Record(ctx, ev)
	}
	return ev
}

func (s Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now()
	}
	return time.Now()
}
