package infra

import "time"

// CorrelationStore é a implementação em memória de domain.CorrelationStore.
//
// Sem mutex: o pipeline é dirigido por uma única goroutine (o runtime do host
// é single-threaded). Entradas nunca são removidas.
type CorrelationStore struct {
	specifierByID    map[string]string
	startBySpecifier map[string]time.Time
}

func NewCorrelationStore() *CorrelationStore {
	return &CorrelationStore{
		specifierByID:    make(map[string]string),
		startBySpecifier: make(map[string]time.Time),
	}
}

// RecordResolution sobrescreve sem condição. Duas resoluções do mesmo specifier
// antes dos loads fazem os dois loads usarem o início da segunda.
func (s *CorrelationStore) RecordResolution(specifier, moduleID string, start time.Time) {
	s.specifierByID[moduleID] = specifier
	s.startBySpecifier[specifier] = start
}

func (s *CorrelationStore) Lookup(moduleID string) (string, time.Time, bool) {
	specifier, ok := s.specifierByID[moduleID]
	if !ok {
		return "", time.Time{}, false
	}
	start, ok := s.startBySpecifier[specifier]
	if !ok {
		return "", time.Time{}, false
	}
	return specifier, start, true
}
