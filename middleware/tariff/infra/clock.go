package infra

import "time"

// MonotonicClock usa time.Now, que carrega a leitura monotônica do Go.
// Não aplicar UTC/Round no resultado: isso remove a leitura monotônica.
type MonotonicClock struct{}

func (MonotonicClock) Now() time.Time { return time.Now() }
