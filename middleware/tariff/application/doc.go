// Package application contém os casos de uso (regras de aplicação) da tarifa:
// cálculo do atraso proporcional e o "acerto" (medir, bloquear, anunciar).
//
// Ele depende apenas do pacote domain e não conhece o host de módulos.
// Ex.: Service.Settle(ctx, tariff, start) retorna o TariffEvent aplicado.
package application
