package host

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"module-tariff/middleware/tariff/domain"
)

const (
	fileScheme    = "file://"
	builtinScheme = "builtin:"
)

var extensions = []string{".js", ".cjs", ".mjs", ".json", ".wasm"}

func fileURL(p string) string { return fileScheme + filepath.ToSlash(p) }

func dirURL(p string) string { return strings.TrimSuffix(fileURL(p), "/") + "/" }

func pathFromURL(u string) string {
	return filepath.FromSlash(strings.TrimPrefix(u, fileScheme))
}

// parentDir devolve o diretório de onde specifiers relativos são resolvidos.
func (h *Host) parentDir(parentURL string) string {
	switch {
	case parentURL == "":
		return h.root
	case strings.HasSuffix(parentURL, "/"):
		return filepath.Clean(pathFromURL(parentURL))
	default:
		return filepath.Dir(pathFromURL(parentURL))
	}
}

func formatFor(p string) domain.Format {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".js", ".cjs":
		return domain.FormatCommonJS
	case ".mjs":
		return domain.FormatModule
	case ".json":
		return domain.FormatJSON
	case ".wasm":
		return domain.FormatWasm
	}
	return ""
}

func (h *Host) defaultResolve(_ context.Context, specifier string, rctx domain.ResolveContext) (*domain.ResolveResult, error) {
	id, format, err := h.resolveID(h.parentDir(rctx.ParentURL), specifier)
	if err != nil {
		return nil, err
	}
	h.log.Debug("module resolved", zap.String("specifier", specifier), zap.String("module", id))
	return &domain.ResolveResult{
		URL:              id,
		Format:           format,
		ImportAttributes: rctx.ImportAttributes,
	}, nil
}

func (h *Host) resolveID(dir, specifier string) (string, domain.Format, error) {
	if _, ok := h.builtins[strings.TrimPrefix(specifier, "node:")]; ok {
		return builtinScheme + strings.TrimPrefix(specifier, "node:"), domain.FormatBuiltin, nil
	}
	p, err := h.resolvePath(dir, specifier)
	if err != nil {
		return "", "", err
	}
	return fileURL(p), formatFor(p), nil
}

func (h *Host) resolvePath(dir, specifier string) (string, error) {
	switch {
	case strings.HasPrefix(specifier, fileScheme):
		return h.resolveFile(pathFromURL(specifier))
	case specifier == ".", specifier == "..",
		strings.HasPrefix(specifier, "./"), strings.HasPrefix(specifier, "../"):
		return h.resolveFile(filepath.Join(dir, specifier))
	case filepath.IsAbs(specifier):
		return h.resolveFile(filepath.Clean(specifier))
	case specifier == "":
		return "", fmt.Errorf("%w: empty specifier", ErrModuleNotFound)
	}

	// specifier "nu": node_modules subindo a partir de dir
	for d := dir; ; {
		if p, err := h.resolveFile(filepath.Join(d, "node_modules", specifier)); err == nil {
			return p, nil
		}
		parent := filepath.Dir(d)
		if parent == d {
			break
		}
		d = parent
	}
	return "", fmt.Errorf("%w: %q from %s", ErrModuleNotFound, specifier, dir)
}

func (h *Host) resolveFile(p string) (string, error) {
	if h.isFile(p) {
		return p, nil
	}
	for _, ext := range extensions {
		if h.isFile(p + ext) {
			return p + ext, nil
		}
	}
	if ok, _ := afero.IsDir(h.fs, p); ok {
		if main := h.packageMain(p); main != "" {
			target := filepath.Join(p, main)
			if target != p {
				if r, err := h.resolveFile(target); err == nil {
					return r, nil
				}
			}
		}
		for _, ext := range extensions {
			idx := filepath.Join(p, "index"+ext)
			if h.isFile(idx) {
				return idx, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrModuleNotFound, p)
}

func (h *Host) isFile(p string) bool {
	fi, err := h.fs.Stat(p)
	return err == nil && !fi.IsDir()
}

func (h *Host) packageMain(dir string) string {
	data, err := afero.ReadFile(h.fs, filepath.Join(dir, "package.json"))
	if err != nil {
		return ""
	}
	var pkg struct {
		Main string `json:"main"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return ""
	}
	return strings.TrimSpace(pkg.Main)
}
