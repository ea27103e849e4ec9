package fd

import (
	"errors"
	"fmt"

	"github.com/fastdraft/fd/internal/intern"
)

// Import is a `(path, namespace)` pair. Cross-file theme dereferencing
// is delegated to an ImportLoader collaborator; the core itself only
// tracks the declaration.
type Import struct {
	Path      string
	Namespace intern.ID
}

// ImportLoader resolves an import path to its parsed document. It is
// optional; when absent, `ns.name` theme references simply become lint
// diagnostics rather than being resolved.
type ImportLoader interface {
	LoadImport(path string) (*SceneGraph, error)
}

// ResolveImports loads each declared import through loader and merges
// the loaded document's themes into g under "ns.name" keys, so
// namespaced use_styles references resolve like local ones. A nil
// loader is a no-op. Load failures are returned joined so one broken
// import doesn't mask the rest; successfully loaded imports are merged
// regardless.
func (g *SceneGraph) ResolveImports(loader ImportLoader) error {
	if loader == nil {
		return nil
	}
	var errs []error
	for _, imp := range g.Imports {
		loaded, err := loader.LoadImport(imp.Path)
		if err != nil {
			errs = append(errs, fmt.Errorf("import %q: %w", imp.Path, err))
			continue
		}
		ns := g.Interner.String(imp.Namespace)
		for _, key := range loaded.ThemeOrder() {
			theme := loaded.Themes[key]
			g.SetTheme(ns+"."+key, &Theme{
				Name:  g.Interner.Intern(key),
				Style: theme.Style,
			})
		}
	}
	return errors.Join(errs...)
}
