// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - CorrelationStore: dois mapas (moduleID -> specifier, specifier -> início)
//   - SpinWaiter: espera ativa contra o relógio monotônico
//   - StaticRateTable: tabela de tarifas lida de tariffs.json/yaml ou de um hash no redis
//   - LogAnnouncer: linha de anúncio via zap, com slogan aleatório
//   - MemoryStatsStore: contadores em memória das tarifas aplicadas
package infra
