// Package host é um host de módulos JavaScript sobre goja.
//
// Ele expõe o mesmo contrato de customização que o interceptor espera:
// uma cadeia de hooks de resolve e de load (Register) para o caminho assíncrono
// (Import), e um ponto de entrada síncrono legado (Require, e o require() visto
// pelos módulos CommonJS) que pode ser envolvido com WrapRequire.
//
// O runtime goja é single-threaded; um Host deve ser usado por uma única goroutine.
package host
