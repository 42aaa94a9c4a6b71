package tariff

import (
	"context"
	"time"

	"module-tariff/middleware/tariff/domain"
)

type manualClock struct {
	now   time.Time
	calls int
}

func (c *manualClock) Now() time.Time {
	c.calls++
	return c.now
}

func (c *manualClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type recordingWaiter struct {
	deadlines []time.Time
}

func (w *recordingWaiter) BlockUntil(deadline time.Time) {
	w.deadlines = append(w.deadlines, deadline)
}

type recordingAnnouncer struct {
	events []domain.TariffEvent
}

func (a *recordingAnnouncer) Announce(ev domain.TariffEvent) {
	a.events = append(a.events, ev)
}

type fixedTable map[string]domain.Percentage

func (t fixedTable) Lookup(specifier string) (domain.Percentage, bool) {
	p, ok := t[specifier]
	return p, ok
}

func resolveTo(url string, calls *int) domain.NextResolve {
	return func(ctx context.Context, specifier string, rctx domain.ResolveContext) (*domain.ResolveResult, error) {
		*calls++
		return &domain.ResolveResult{URL: url, Format: domain.FormatCommonJS}, nil
	}
}

func loadAs(format domain.Format, source string, calls *int) domain.NextLoad {
	return func(ctx context.Context, moduleID string, lctx domain.LoadContext) (*domain.LoadResult, error) {
		*calls++
		return &domain.LoadResult{Format: format, Source: []byte(source)}, nil
	}
}

type harness struct {
	clock  *manualClock
	waiter *recordingWaiter
	ann    *recordingAnnouncer
	ic     *Interceptor
}

func newHarness(table domain.RateTable) *harness {
	h := &harness{
		clock:  &manualClock{now: time.Date(2025, 4, 2, 12, 0, 0, 0, time.UTC)},
		waiter: &recordingWaiter{},
		ann:    &recordingAnnouncer{},
	}
	h.ic = New(Options{
		Table:     table,
		Clock:     h.clock,
		Waiter:    h.waiter,
		Announcer: h.ann,
	})
	return h
}

// labeledTable devolve também o valor cru, como uma tabela lida de arquivo.
type labeledTable struct {
	fixedTable
	labels map[string]string
}

func (t labeledTable) Label(specifier string) (string, bool) {
	l, ok := t.labels[specifier]
	return l, ok
}
