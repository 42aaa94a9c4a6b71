package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dop251/goja"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"module-tariff/middleware/tariff/domain"
)

var (
	ErrModuleNotFound    = errors.New("module not found")
	ErrUnsupportedFormat = errors.New("unsupported module format")
)

// RequireFunc é o require síncrono: resolve, carrega e executa.
type RequireFunc func(specifier string) (goja.Value, error)

// RequireWrapper envolve o require legado (equivalente a trocar Module.prototype.require).
type RequireWrapper func(next RequireFunc) RequireFunc

type Host struct {
	id   string
	fs   afero.Fs
	root string
	vm   *goja.Runtime
	log  *zap.Logger

	stdout   io.Writer
	builtins map[string]any

	resolveHooks    []domain.ResolveHook
	loadHooks       []domain.LoadHook
	requireWrappers []RequireWrapper

	// moduleID -> objeto module (exports em module.exports)
	cache map[string]*goja.Object
}

type Option func(*Host)

func WithLogger(log *zap.Logger) Option {
	return func(h *Host) {
		if log != nil {
			h.log = log
		}
	}
}

// WithStdout define para onde vai o console.log dos módulos.
func WithStdout(w io.Writer) Option {
	return func(h *Host) {
		if w != nil {
			h.stdout = w
		}
	}
}

// WithBuiltin registra um módulo nativo, resolvido por name ou "node:"+name.
func WithBuiltin(name string, value any) Option {
	return func(h *Host) { h.builtins[strings.TrimPrefix(name, "node:")] = value }
}

// New cria um host cujos módulos vivem em root dentro de fs.
func New(fs afero.Fs, root string, opts ...Option) (*Host, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %q: %w", root, err)
	}

	h := &Host{
		id:       uuid.NewString(),
		fs:       fs,
		root:     abs,
		vm:       goja.New(),
		log:      zap.NewNop(),
		stdout:   os.Stdout,
		builtins: make(map[string]any),
		cache:    make(map[string]*goja.Object),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.log = h.log.With(zap.String("host", h.id))

	if err := h.installConsole(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Host) ID() string { return h.id }

func (h *Host) Root() string { return h.root }

func (h *Host) Runtime() *goja.Runtime { return h.vm }

// Register anexa hooks de resolve e load à cadeia. O último registrado roda
// primeiro e recebe como next o anterior (ou o padrão do host). nil é ignorado.
func (h *Host) Register(resolve domain.ResolveHook, load domain.LoadHook) {
	if resolve != nil {
		h.resolveHooks = append(h.resolveHooks, resolve)
	}
	if load != nil {
		h.loadHooks = append(h.loadHooks, load)
	}
}

// WrapRequire envolve o require legado. Vale para Require e para o require()
// dos módulos avaliados depois da chamada.
func (h *Host) WrapRequire(w RequireWrapper) {
	if w != nil {
		h.requireWrappers = append(h.requireWrappers, w)
	}
}

// Import segue o caminho assíncrono: cadeia de resolve, cache, cadeia de load e
// avaliação.
func (h *Host) Import(ctx context.Context, specifier string) (goja.Value, error) {
	return h.importFrom(ctx, dirURL(h.root), specifier)
}

// Require segue o caminho síncrono legado a partir de root.
func (h *Host) Require(specifier string) (goja.Value, error) {
	return h.boundRequire(h.root)(specifier)
}

func (h *Host) importFrom(ctx context.Context, parentURL, specifier string) (goja.Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := h.resolveChain()(ctx, specifier, domain.ResolveContext{
		Conditions: []string{"node", "import"},
		ParentURL:  parentURL,
	})
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("%w: %q resolved to nothing", ErrModuleNotFound, specifier)
	}

	if mod, ok := h.cache[res.URL]; ok {
		h.log.Debug("module cache hit", zap.String("module", res.URL))
		return mod.Get("exports"), nil
	}

	lres, err := h.loadChain()(ctx, res.URL, domain.LoadContext{
		Conditions:       []string{"node", "import"},
		Format:           res.Format,
		ImportAttributes: res.ImportAttributes,
	})
	if err != nil {
		return nil, err
	}
	if lres == nil {
		return nil, fmt.Errorf("%w: %s loaded nothing", ErrUnsupportedFormat, res.URL)
	}
	return h.evaluate(res.URL, lres)
}

func (h *Host) resolveChain() domain.NextResolve {
	next := domain.NextResolve(h.defaultResolve)
	for _, hook := range h.resolveHooks {
		hook, inner := hook, next
		next = func(ctx context.Context, specifier string, rctx domain.ResolveContext) (*domain.ResolveResult, error) {
			return hook(ctx, specifier, rctx, inner)
		}
	}
	return next
}

func (h *Host) loadChain() domain.NextLoad {
	next := domain.NextLoad(h.defaultLoad)
	for _, hook := range h.loadHooks {
		hook, inner := hook, next
		next = func(ctx context.Context, moduleID string, lctx domain.LoadContext) (*domain.LoadResult, error) {
			return hook(ctx, moduleID, lctx, inner)
		}
	}
	return next
}

// boundRequire monta o require de um módulo em dir, já envolvido pelos wrappers.
func (h *Host) boundRequire(dir string) RequireFunc {
	req := RequireFunc(func(specifier string) (goja.Value, error) {
		return h.requireFrom(dir, specifier)
	})
	for _, w := range h.requireWrappers {
		req = w(req)
	}
	return req
}

// requireFrom é o require cru: sem hooks de resolve/load.
func (h *Host) requireFrom(dir, specifier string) (goja.Value, error) {
	id, format, err := h.resolveID(dir, specifier)
	if err != nil {
		return nil, err
	}
	if mod, ok := h.cache[id]; ok {
		return mod.Get("exports"), nil
	}
	res, err := h.readModule(id, format)
	if err != nil {
		return nil, err
	}
	return h.evaluate(id, res)
}

func (h *Host) installConsole() error {
	console := h.vm.NewObject()
	err := console.Set("log", func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, a := range call.Arguments {
			parts[i] = a.String()
		}
		_, _ = fmt.Fprintln(h.stdout, strings.Join(parts, " "))
		return goja.Undefined()
	})
	if err != nil {
		return fmt.Errorf("install console: %w", err)
	}
	return h.vm.Set("console", console)
}
