package tariff

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"module-tariff/middleware/tariff/domain"
	"module-tariff/middleware/tariff/infra"
)

const leftPadURL = "file:///app/node_modules/left-pad/index.js"

func mustResolve(t *testing.T, h *harness, specifier string, next domain.NextResolve) *domain.ResolveResult {
	t.Helper()
	res, err := h.ic.Resolve(context.Background(), specifier, domain.ResolveContext{}, next)
	if err != nil {
		t.Fatalf("expected resolve to succeed, got %v", err)
	}
	return res
}

func mustLoad(t *testing.T, h *harness, moduleID string, next domain.NextLoad) *domain.LoadResult {
	t.Helper()
	res, err := h.ic.Load(context.Background(), moduleID, domain.LoadContext{}, next)
	if err != nil {
		t.Fatalf("expected load to succeed, got %v", err)
	}
	return res
}

func TestResolve_CallsNextOnceAndMarksTariffed(t *testing.T) {
	h := newHarness(fixedTable{})
	calls := 0

	res := mustResolve(t, h, "left-pad", resolveTo(leftPadURL, &calls))
	if calls != 1 {
		t.Fatalf("expected next to be called once, got %d", calls)
	}
	if !res.Tariffed {
		t.Fatalf("expected result to be marked tariffed")
	}
	if res.URL != leftPadURL || res.Format != domain.FormatCommonJS {
		t.Fatalf("expected result from next unchanged, got %+v", res)
	}
}

func TestResolve_ErrorPropagatesUnchanged(t *testing.T) {
	h := newHarness(fixedTable{"left-pad": 50})
	boom := errors.New("cannot find module")

	res, err := h.ic.Resolve(context.Background(), "left-pad", domain.ResolveContext{},
		func(context.Context, string, domain.ResolveContext) (*domain.ResolveResult, error) {
			return nil, boom
		})
	if res != nil {
		t.Fatalf("expected nil result, got %+v", res)
	}
	if err != boom {
		t.Fatalf("expected the original error, got %v", err)
	}
}

func TestLoad_UntariffedSpecifierPassesThrough(t *testing.T) {
	h := newHarness(fixedTable{"lodash": 50})
	rc, lc := 0, 0

	mustResolve(t, h, "left-pad", resolveTo(leftPadURL, &rc))

	src := "module.exports = function leftPad() {};"
	res := mustLoad(t, h, leftPadURL, loadAs(domain.FormatCommonJS, src, &lc))
	if lc != 1 {
		t.Fatalf("expected next load to be called once, got %d", lc)
	}
	if string(res.Source) != src {
		t.Fatalf("expected source unchanged, got %q", res.Source)
	}
	if len(res.OnEvaluated) != 0 || len(h.waiter.deadlines) != 0 || len(h.ann.events) != 0 {
		t.Fatalf("expected no tariff work for an untariffed specifier")
	}
}

func TestLoad_MissingCorrelationPassesThrough(t *testing.T) {
	h := newHarness(fixedTable{"left-pad": 50})
	lc := 0

	// load sem resolve anterior (ex.: cache do host)
	res := mustLoad(t, h, leftPadURL, loadAs(domain.FormatJSON, `{}`, &lc))
	if !res.Tariffed {
		t.Fatalf("expected result to be marked tariffed")
	}
	if string(res.Source) != `{}` {
		t.Fatalf("expected source unchanged, got %q", res.Source)
	}
	if len(h.ann.events) != 0 {
		t.Fatalf("expected no announcement, got %d", len(h.ann.events))
	}
}

func TestLoad_DataFormatDelaysInline(t *testing.T) {
	h := newHarness(fixedTable{"left-pad": 50})
	rc, lc := 0, 0

	mustResolve(t, h, "left-pad", resolveTo(leftPadURL, &rc))
	start := h.clock.now

	h.clock.advance(100 * time.Millisecond)
	res := mustLoad(t, h, leftPadURL, loadAs(domain.FormatJSON, `{"a":1}`, &lc))

	if string(res.Source) != `{"a":1}` {
		t.Fatalf("expected source unchanged, got %q", res.Source)
	}
	if len(res.OnEvaluated) != 0 {
		t.Fatalf("expected nothing deferred for json")
	}
	if len(h.waiter.deadlines) != 1 || !h.waiter.deadlines[0].Equal(start.Add(150*time.Millisecond)) {
		t.Fatalf("expected one deadline at start+150ms, got %v", h.waiter.deadlines)
	}
	if len(h.ann.events) != 1 {
		t.Fatalf("expected one announcement, got %d", len(h.ann.events))
	}

	ev := h.ann.events[0]
	if ev.Specifier != "left-pad" || ev.ModuleID != leftPadURL || ev.Path != domain.PathInline || ev.Percentage != 50 {
		t.Fatalf("unexpected event %+v", ev)
	}
	if ev.Original != 100*time.Millisecond || ev.Wait != 50*time.Millisecond {
		t.Fatalf("expected original 100ms and wait 50ms, got %s and %s", ev.Original, ev.Wait)
	}
}

func TestLoad_CodeFormatDefersToEvaluation(t *testing.T) {
	h := newHarness(fixedTable{"left-pad": 100})
	rc, lc := 0, 0

	mustResolve(t, h, "left-pad", resolveTo(leftPadURL, &rc))

	h.clock.advance(10 * time.Millisecond)
	res := mustLoad(t, h, leftPadURL, loadAs(domain.FormatModule, "export default 1;", &lc))

	// nada é pago antes da avaliação
	if len(h.waiter.deadlines) != 0 || len(h.ann.events) != 0 {
		t.Fatalf("expected no delay before evaluation")
	}
	if len(res.OnEvaluated) != 1 {
		t.Fatalf("expected one deferred settle, got %d", len(res.OnEvaluated))
	}
	if string(res.Source) != "export default 1;" {
		t.Fatalf("expected source unchanged, got %q", res.Source)
	}

	// a avaliação top-level do módulo levou mais 30ms
	h.clock.advance(30 * time.Millisecond)
	res.OnEvaluated[0]()

	if len(h.ann.events) != 1 {
		t.Fatalf("expected one announcement, got %d", len(h.ann.events))
	}
	ev := h.ann.events[0]
	if ev.Path != domain.PathDeferred {
		t.Fatalf("expected deferred path, got %s", ev.Path)
	}
	if ev.Original != 40*time.Millisecond || ev.Wait != 40*time.Millisecond {
		t.Fatalf("expected original and wait of 40ms, got %s and %s", ev.Original, ev.Wait)
	}
}

func TestLoad_CodeFormatDecodesBinarySource(t *testing.T) {
	h := newHarness(fixedTable{"left-pad": 10})
	rc, lc := 0, 0

	mustResolve(t, h, "left-pad", resolveTo(leftPadURL, &rc))

	raw := "\xEF\xBB\xBFmodule.exports = 1;\xff"
	res := mustLoad(t, h, leftPadURL, loadAs(domain.FormatCommonJS, raw, &lc))
	if want := "module.exports = 1;\uFFFD"; string(res.Source) != want {
		t.Fatalf("expected %q, got %q", want, res.Source)
	}
}

func TestLoad_AlreadyTariffedIsNotReprocessed(t *testing.T) {
	h := newHarness(fixedTable{"left-pad": 50})
	rc := 0

	mustResolve(t, h, "left-pad", resolveTo(leftPadURL, &rc))

	res := mustLoad(t, h, leftPadURL, func(context.Context, string, domain.LoadContext) (*domain.LoadResult, error) {
		return &domain.LoadResult{Format: domain.FormatJSON, Source: []byte("1"), Tariffed: true}, nil
	})
	if !res.Tariffed {
		t.Fatalf("expected result to stay tariffed")
	}
	if len(h.waiter.deadlines) != 0 || len(h.ann.events) != 0 {
		t.Fatalf("expected no delay for an already tariffed result")
	}
}

func TestResolve_AlreadyTariffedDoesNotRecord(t *testing.T) {
	h := newHarness(fixedTable{"left-pad": 50})
	lc := 0

	mustResolve(t, h, "left-pad", func(context.Context, string, domain.ResolveContext) (*domain.ResolveResult, error) {
		return &domain.ResolveResult{URL: leftPadURL, Tariffed: true}, nil
	})

	// sem correlação registrada o load passa direto
	mustLoad(t, h, leftPadURL, loadAs(domain.FormatJSON, "1", &lc))
	if len(h.ann.events) != 0 {
		t.Fatalf("expected no announcement, got %d", len(h.ann.events))
	}
}

func TestInterceptor_ChainedTwiceAppliesOnce(t *testing.T) {
	h := newHarness(fixedTable{"left-pad": 50})
	rc, lc := 0, 0

	mustResolve(t, h, "left-pad", func(ctx context.Context, s string, rctx domain.ResolveContext) (*domain.ResolveResult, error) {
		return h.ic.Resolve(ctx, s, rctx, resolveTo(leftPadURL, &rc))
	})
	if rc != 1 {
		t.Fatalf("expected the host resolve once, got %d", rc)
	}

	h.clock.advance(20 * time.Millisecond)
	mustLoad(t, h, leftPadURL, func(ctx context.Context, id string, lctx domain.LoadContext) (*domain.LoadResult, error) {
		return h.ic.Load(ctx, id, lctx, loadAs(domain.FormatJSON, "1", &lc))
	})

	if lc != 1 {
		t.Fatalf("expected the host load once, got %d", lc)
	}
	if len(h.ann.events) != 1 || len(h.waiter.deadlines) != 1 {
		t.Fatalf("expected a single tariff, got %d announcements and %d waits", len(h.ann.events), len(h.waiter.deadlines))
	}
}

func TestInterceptor_SecondResolutionWins(t *testing.T) {
	h := newHarness(fixedTable{"left-pad": 100})
	rc, lc := 0, 0

	mustResolve(t, h, "left-pad", resolveTo("file:///a/left-pad.js", &rc))
	h.clock.advance(40 * time.Millisecond)
	mustResolve(t, h, "left-pad", resolveTo("file:///b/left-pad.js", &rc))

	h.clock.advance(10 * time.Millisecond)
	mustLoad(t, h, "file:///a/left-pad.js", loadAs(domain.FormatJSON, "1", &lc))
	mustLoad(t, h, "file:///b/left-pad.js", loadAs(domain.FormatJSON, "1", &lc))

	if len(h.ann.events) != 2 {
		t.Fatalf("expected two announcements, got %d", len(h.ann.events))
	}
	// ambos medem a partir da segunda resolução, não da primeira (40ms antes)
	for _, ev := range h.ann.events {
		if ev.Original != 10*time.Millisecond {
			t.Fatalf("expected original 10ms for %s, got %s", ev.ModuleID, ev.Original)
		}
	}
}

func TestLoad_ErrorPropagatesUnchanged(t *testing.T) {
	h := newHarness(fixedTable{"left-pad": 50})
	rc := 0
	boom := errors.New("read failed")

	mustResolve(t, h, "left-pad", resolveTo(leftPadURL, &rc))

	res, err := h.ic.Load(context.Background(), leftPadURL, domain.LoadContext{},
		func(context.Context, string, domain.LoadContext) (*domain.LoadResult, error) {
			return nil, boom
		})
	if res != nil {
		t.Fatalf("expected nil result, got %+v", res)
	}
	if err != boom {
		t.Fatalf("expected the original error, got %v", err)
	}
	if len(h.ann.events) != 0 {
		t.Fatalf("expected no announcement, got %d", len(h.ann.events))
	}
}

func TestLoad_CarriesRawLabel(t *testing.T) {
	h := newHarness(labeledTable{
		fixedTable: fixedTable{"left-pad": domain.Percentage(math.NaN())},
		labels:     map[string]string{"left-pad": "abc"},
	})
	rc, lc := 0, 0

	mustResolve(t, h, "left-pad", resolveTo(leftPadURL, &rc))
	h.clock.advance(10 * time.Millisecond)
	mustLoad(t, h, leftPadURL, loadAs(domain.FormatJSON, "1", &lc))

	if len(h.ann.events) != 1 {
		t.Fatalf("expected one announcement, got %d", len(h.ann.events))
	}
	ev := h.ann.events[0]
	if ev.Label != "abc" {
		t.Fatalf("expected label abc, got %q", ev.Label)
	}
	if ev.Wait != 0 {
		t.Fatalf("expected NaN to impose no wait, got %s", ev.Wait)
	}
}

func TestInterceptor_EndToEndRealClock(t *testing.T) {
	var out bytes.Buffer
	stats := infra.NewMemoryStatsStore()
	ic := New(Options{
		Table:     infra.NewStaticRateTable(map[string]float64{"left-pad": 50}),
		Announcer: infra.NewLogAnnouncer(infra.NewAnnouncementLogger(&out)),
		Stats:     stats,
	})
	ctx := context.Background()

	begin := time.Now()
	_, err := ic.Resolve(ctx, "left-pad", domain.ResolveContext{},
		func(context.Context, string, domain.ResolveContext) (*domain.ResolveResult, error) {
			return &domain.ResolveResult{URL: leftPadURL}, nil
		})
	if err != nil {
		t.Fatalf("expected resolve to succeed, got %v", err)
	}

	_, err = ic.Load(ctx, leftPadURL, domain.LoadContext{},
		func(context.Context, string, domain.LoadContext) (*domain.LoadResult, error) {
			time.Sleep(100 * time.Millisecond)
			return &domain.LoadResult{Format: domain.FormatJSON, Source: []byte(`"x"`)}, nil
		})
	if err != nil {
		t.Fatalf("expected load to succeed, got %v", err)
	}
	if total := time.Since(begin); total < 150*time.Millisecond {
		t.Fatalf("expected at least 150ms in total, got %s", total)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d: %q", len(lines), out.String())
	}
	if !strings.Contains(lines[0], "left-pad") || !strings.Contains(lines[0], "50%") {
		t.Fatalf("expected line to name left-pad and 50%%, got %q", lines[0])
	}

	c := stats.Total()
	if c.Applied != 1 {
		t.Fatalf("expected one tariff applied, got %d", c.Applied)
	}
	if c.Wait < 50*time.Millisecond {
		t.Fatalf("expected at least 50ms imposed, got %s", c.Wait)
	}
}
