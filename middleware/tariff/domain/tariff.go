package domain

// Camada de domínio da tarifa.
//
// Regras e contratos (interfaces/tipos) sem dependência do host de módulos.

import "time"

// Percentage é o atraso extra configurado para um specifier.
// 100 significa "dobra o tempo". Não há validação: negativo ou NaN seguem a
// aritmética.
type Percentage float64

// RateTable é a tabela imutável specifier -> percentual.
//
// Ausência de chave significa "sem tarifa", nunca erro.
type RateTable interface {
	Lookup(specifier string) (Percentage, bool)
}

// RateLabeler é opcional numa RateTable: devolve o percentual como escrito na
// origem, para o anúncio repetir o valor cru (inclusive o que não é número).
type RateLabeler interface {
	Label(specifier string) (string, bool)
}

// CorrelationStore liga o evento de resolução ao evento de load posterior.
//
// RecordResolution sobrescreve sem condição (last-write-wins por specifier).
// Lookup retorna ok=false quando o módulo não passou pela resolução desta camada
// (ex.: cache do host).
type CorrelationStore interface {
	RecordResolution(specifier, moduleID string, start time.Time)
	Lookup(moduleID string) (specifier string, start time.Time, ok bool)
}

// Clock fornece timestamps monotônicos.
type Clock interface {
	Now() time.Time
}

// Waiter bloqueia o chamador até o deadline.
//
// A implementação padrão é um spin-wait: não cede a vez, não tem timeout e
// não pode ser cancelada.
type Waiter interface {
	BlockUntil(deadline time.Time)
}
