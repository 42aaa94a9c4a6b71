// utilitário pequeno para formatação consistente de números na linha de anúncio.
//    Padroniza a formatação do float (strconv.FormatFloat), evitando notação científica em
//        valores comuns e mantendo o código consistente

package infra

import (
	"strconv"
	"time"

	"module-tariff/middleware/tariff/domain"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatPercent(p domain.Percentage) string { return formatFloat(float64(p)) }

// formatMillis converte para milissegundos fracionários.
func formatMillis(d time.Duration) string {
	return formatFloat(float64(d) / float64(time.Millisecond))
}
