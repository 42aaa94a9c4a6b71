// Package domain define contratos e tipos de domínio para a tarifa de módulos.
//
// Este pacote não depende de nenhum runtime concreto (goja, filesystem, redis).
// A intenção é permitir testes de unidade puros e desacoplar as regras de
// correlação/atraso dos detalhes de infraestrutura e do host de módulos.
package domain
