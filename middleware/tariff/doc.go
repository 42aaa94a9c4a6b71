// Package tariff fornece os hooks de interceptação (resolve, load e require legado)
// que impõem um atraso proporcional ao carregamento de módulos tarifados.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência do host)
//   - application: casos de uso (cálculo do atraso, medir/bloquear/anunciar)
//   - infra: implementações concretas (correlação, spin-wait, tabela, log)
//   - tariff (este pacote): hooks no contrato de customização do host + wiring
//
// Fluxo assíncrono:
//
//  1. Resolve anota o início, chama o próximo resolve e correlaciona URL -> specifier
//  2. Load chama o próximo load e procura a correlação e a tarifa
//  3. Código executável: o atraso é adiado para a avaliação top-level do módulo
//  4. Dados (json, wasm...): o atraso é pago antes do load retornar
//
// Fluxo síncrono: WrapRequire mede o require inteiro (resolve, load e execução)
// e paga o atraso antes de devolver o valor ao chamador.
//
// Um Interceptor não é seguro para uso concorrente: ele pertence ao runtime
// single-threaded que dirige o pipeline, e não usa locks.
package tariff
