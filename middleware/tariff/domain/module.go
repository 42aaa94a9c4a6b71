package domain

import "context"

// Format identifica o tipo de artefato devolvido pelo loader do host.
type Format string

const (
	FormatBuiltin  Format = "builtin"
	FormatCommonJS Format = "commonjs"
	FormatModule   Format = "module"
	FormatJSON     Format = "json"
	FormatWasm     Format = "wasm"
)

// CodeBearing indica se o artefato é código executável (o custo percebido
// acontece na execução top-level, depois do hook retornar).
func (f Format) CodeBearing() bool {
	return f == FormatCommonJS || f == FormatModule
}

type ResolveContext struct {
	Conditions       []string
	ImportAttributes map[string]string
	ParentURL        string
}

type ResolveResult struct {
	URL              string
	Format           Format
	ImportAttributes map[string]string
	ShortCircuit     bool
	// Tariffed marca que o resultado já passou por esta camada.
	Tariffed bool
}

type LoadContext struct {
	Conditions       []string
	Format           Format
	ImportAttributes map[string]string
}

type LoadResult struct {
	Format       Format
	Source       []byte
	ShortCircuit bool
	Tariffed     bool

	// OnEvaluated são executados pelo host, em ordem, logo após a avaliação
	// top-level do módulo, no mesmo contexto de execução.
	OnEvaluated []func()
}

// NextResolve e NextLoad são as continuações do host. Cada hook deve chamá-las
// exatamente uma vez.
type NextResolve func(ctx context.Context, specifier string, rctx ResolveContext) (*ResolveResult, error)

type NextLoad func(ctx context.Context, moduleID string, lctx LoadContext) (*LoadResult, error)

// ResolveHook e LoadHook seguem o contrato de customização de módulos do host:
// recebem a próxima etapa da cadeia e devolvem o resultado (possivelmente mutado).
type ResolveHook func(ctx context.Context, specifier string, rctx ResolveContext, next NextResolve) (*ResolveResult, error)

type LoadHook func(ctx context.Context, moduleID string, lctx LoadContext, next NextLoad) (*LoadResult, error)
