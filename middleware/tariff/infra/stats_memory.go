package infra

import (
	"context"
	"sync"
	"time"

	"module-tariff/middleware/tariff/domain"
)

type Counters struct {
	Applied  int64
	Original time.Duration
	Wait     time.Duration
}

func (c *Counters) add(ev domain.TariffEvent) {
	c.Applied++
	c.Original += ev.Original
	c.Wait += ev.Wait
}

// MemoryStatsStore é uma implementação simples em memória.
// Vive apenas durante o processo; nada é persistido entre execuções.
//
// Diferente do CorrelationStore, ele é lido fora do pipeline (resumo da CLI),
// por isso mantém o mutex.
type MemoryStatsStore struct {
	mu          sync.Mutex
	total       Counters
	byPath      map[domain.Path]Counters
	bySpecifier map[string]Counters
}

func NewMemoryStatsStore() *MemoryStatsStore {
	return &MemoryStatsStore{
		byPath:      make(map[domain.Path]Counters),
		bySpecifier: make(map[string]Counters),
	}
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.TariffEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total.add(ev)

	c := s.byPath[ev.Path]
	c.add(ev)
	s.byPath[ev.Path] = c

	k := s.bySpecifier[ev.Specifier]
	k.add(ev)
	s.bySpecifier[ev.Specifier] = k
	return nil
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) ByPath() map[domain.Path]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[domain.Path]Counters, len(s.byPath))
	for k, v := range s.byPath {
		out[k] = v
	}
	return out
}

func (s *MemoryStatsStore) BySpecifier() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.bySpecifier))
	for k, v := range s.bySpecifier {
		out[k] = v
	}
	return out
}
