package infra

import (
	"time"

	"module-tariff/middleware/tariff/domain"
)

// SpinWaiter bloqueia com espera ativa.
//
// Não usa time.Sleep nem runtime.Gosched: o atraso é pago pelo chamador de forma
// síncrona, monopolizando a goroutine até o deadline. Não há cancelamento.
type SpinWaiter struct {
	clock domain.Clock
}

func NewSpinWaiter(clock domain.Clock) *SpinWaiter {
	if clock == nil {
		clock = MonotonicClock{}
	}
	return &SpinWaiter{clock: clock}
}

// BlockUntil implementa domain.Waiter.
func (w *SpinWaiter) BlockUntil(deadline time.Time) {
	for w.clock.Now().Before(deadline) {
	}
}

// Block espera d a partir de agora. d <= 0 retorna na primeira amostra.
func (w *SpinWaiter) Block(d time.Duration) {
	w.BlockUntil(w.clock.Now().Add(d))
}
