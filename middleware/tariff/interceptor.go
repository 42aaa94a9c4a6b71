package tariff

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"module-tariff/middleware/tariff/application"
	"module-tariff/middleware/tariff/domain"
	"module-tariff/middleware/tariff/infra"
)

type Options struct {
	Table     domain.RateTable
	Store     domain.CorrelationStore
	Clock     domain.Clock
	Waiter    domain.Waiter
	Announcer domain.Announcer
	Stats     domain.StatsStore
	Logger    *zap.Logger
}

// Interceptor guarda o estado de correlação de um pipeline. Cada pipeline tem o
// seu; não existe estado global.
type Interceptor struct {
	table domain.RateTable
	store domain.CorrelationStore
	clock domain.Clock
	svc   application.Service
	log   *zap.Logger
}

func New(opts Options) *Interceptor {
	if opts.Table == nil {
		opts.Table = infra.NewStaticRateTable(nil)
	}
	if opts.Store == nil {
		opts.Store = infra.NewCorrelationStore()
	}
	if opts.Clock == nil {
		opts.Clock = infra.MonotonicClock{}
	}
	if opts.Waiter == nil {
		opts.Waiter = infra.NewSpinWaiter(opts.Clock)
	}
	if opts.Announcer == nil {
		opts.Announcer = infra.NewLogAnnouncer(nil)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Interceptor{
		table: opts.Table,
		store: opts.Store,
		clock: opts.Clock,
		svc: application.Service{
			Clock:     opts.Clock,
			Waiter:    opts.Waiter,
			Announcer: opts.Announcer,
			Stats:     opts.Stats,
		},
		log: opts.Logger,
	}
}

// Resolve implementa domain.ResolveHook. Só observa: nunca faz short-circuit.
func (i *Interceptor) Resolve(ctx context.Context, specifier string, rctx domain.ResolveContext, next domain.NextResolve) (*domain.ResolveResult, error) {
	start := i.clock.Now()
	res, err := next(ctx, specifier, rctx)
	if err != nil || res == nil {
		return res, err
	}

	if !res.Tariffed {
		res.Tariffed = true
		i.store.RecordResolution(specifier, res.URL, start)
	}
	return res, nil
}

// Load implementa domain.LoadHook.
func (i *Interceptor) Load(ctx context.Context, moduleID string, lctx domain.LoadContext, next domain.NextLoad) (*domain.LoadResult, error) {
	res, err := next(ctx, moduleID, lctx)
	if err != nil || res == nil {
		return res, err
	}
	if res.Tariffed {
		return res, nil
	}
	res.Tariffed = true

	specifier, start, ok := i.store.Lookup(moduleID)
	if !ok {
		i.log.Debug("load without correlated resolve", zap.String("module", moduleID))
		return res, nil
	}
	pct, ok := i.table.Lookup(specifier)
	if !ok {
		return res, nil
	}

	t := application.Tariff{Specifier: specifier, ModuleID: moduleID, Percentage: pct, Label: i.label(specifier)}

	if res.Format.CodeBearing() {
		// o custo percebido é a execução top-level, que só acontece depois deste
		// hook retornar: o acerto vai junto com o módulo, com start capturado por valor.
		t.Path = domain.PathDeferred
		res.Source = decodeSource(res.Source)
		settleCtx := context.WithoutCancel(ctx)
		res.OnEvaluated = append(res.OnEvaluated, func() {
			i.svc.Settle(settleCtx, t, start)
		})
		i.log.Debug("tariff deferred to evaluation",
			zap.String("specifier", specifier),
			zap.String("module", moduleID),
			zap.String("format", string(res.Format)),
		)
		return res, nil
	}

	t.Path = domain.PathInline
	i.svc.Settle(ctx, t, start)
	return res, nil
}

func (i *Interceptor) label(specifier string) string {
	if l, ok := i.table.(domain.RateLabeler); ok {
		if s, ok := l.Label(specifier); ok {
			return s
		}
	}
	return ""
}

// decodeSource devolve o fonte como texto UTF-8: remove BOM e troca bytes
// inválidos por U+FFFD.
func decodeSource(src []byte) []byte {
	out, _, err := transform.Bytes(unicode.UTF8BOM.NewDecoder(), src)
	if err != nil {
		return []byte(strings.ToValidUTF8(string(src), "\uFFFD"))
	}
	return out
}
