package host

import (
	"github.com/dop251/goja"

	"module-tariff/middleware/tariff"
)

// InstallTariff registra os hooks do interceptor e envolve o require legado,
// do mesmo jeito que o registro no startup do processo faria.
func (h *Host) InstallTariff(ic *tariff.Interceptor) {
	h.Register(ic.Resolve, ic.Load)
	h.WrapRequire(func(next RequireFunc) RequireFunc {
		return RequireFunc(tariff.WrapRequire(ic, tariff.RequireFunc[goja.Value](next)))
	})
}
