package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dop251/goja"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"module-tariff/middleware/tariff/domain"
)

func (h *Host) defaultLoad(_ context.Context, moduleID string, lctx domain.LoadContext) (*domain.LoadResult, error) {
	format := lctx.Format
	if format == "" && strings.HasPrefix(moduleID, fileScheme) {
		format = formatFor(pathFromURL(moduleID))
	}
	return h.readModule(moduleID, format)
}

func (h *Host) readModule(moduleID string, format domain.Format) (*domain.LoadResult, error) {
	if format == domain.FormatBuiltin {
		return &domain.LoadResult{Format: format}, nil
	}
	if format == "" {
		return nil, fmt.Errorf("%w: unknown extension for %s", ErrUnsupportedFormat, moduleID)
	}
	src, err := afero.ReadFile(h.fs, pathFromURL(moduleID))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", moduleID, err)
	}
	return &domain.LoadResult{Format: format, Source: src}, nil
}

// evaluate executa o artefato carregado e, em seguida, os OnEvaluated.
// O módulo entra no cache antes da execução (ciclos veem exports parciais).
func (h *Host) evaluate(moduleID string, res *domain.LoadResult) (goja.Value, error) {
	module := h.vm.NewObject()
	if err := module.Set("exports", h.vm.NewObject()); err != nil {
		return nil, err
	}
	_ = module.Set("id", moduleID)
	h.cache[moduleID] = module

	if err := h.run(moduleID, module, res); err != nil {
		delete(h.cache, moduleID)
		return nil, err
	}

	for _, fn := range res.OnEvaluated {
		fn()
	}
	h.log.Debug("module evaluated", zap.String("module", moduleID), zap.String("format", string(res.Format)))
	return module.Get("exports"), nil
}

func (h *Host) run(moduleID string, module *goja.Object, res *domain.LoadResult) error {
	switch {
	case res.Format.CodeBearing():
		return h.runCode(pathFromURL(moduleID), module, res.Source)
	case res.Format == domain.FormatJSON:
		var v any
		if err := json.Unmarshal(res.Source, &v); err != nil {
			return fmt.Errorf("parse %s: %w", moduleID, err)
		}
		return module.Set("exports", h.vm.ToValue(v))
	case res.Format == domain.FormatWasm:
		return module.Set("exports", h.vm.ToValue(h.vm.NewArrayBuffer(res.Source)))
	case res.Format == domain.FormatBuiltin:
		v, ok := h.builtins[strings.TrimPrefix(moduleID, builtinScheme)]
		if !ok {
			return fmt.Errorf("%w: %s", ErrModuleNotFound, moduleID)
		}
		return module.Set("exports", h.vm.ToValue(v))
	}
	return fmt.Errorf("%w: %q (%s)", ErrUnsupportedFormat, res.Format, moduleID)
}

// runCode avalia o fonte com o wrapper CommonJS. Sintaxe import/export não é
// suportada pelo host, mesmo no formato module.
func (h *Host) runCode(filename string, module *goja.Object, src []byte) error {
	wrapped := "(function (exports, require, module, __filename, __dirname) {" + string(src) + "\n})"
	v, err := h.vm.RunScript(filename, wrapped)
	if err != nil {
		return fmt.Errorf("compile %s: %w", filename, err)
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return fmt.Errorf("compile %s: wrapper is not callable", filename)
	}

	dir := filepath.Dir(filename)
	_, err = fn(goja.Undefined(),
		module.Get("exports"),
		h.requireFunction(dir),
		module,
		h.vm.ToValue(filename),
		h.vm.ToValue(dir),
	)
	if err != nil {
		return fmt.Errorf("evaluate %s: %w", filename, err)
	}
	return nil
}

// requireFunction expõe o require (já envolvido) ao código JS.
func (h *Host) requireFunction(dir string) goja.Value {
	req := h.boundRequire(dir)
	return h.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		v, err := req(call.Argument(0).String())
		if err != nil {
			var ex *goja.Exception
			if errors.As(err, &ex) {
				panic(ex)
			}
			panic(h.vm.NewGoError(err))
		}
		return v
	})
}
