package fd_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastdraft/fd/internal/fd"
	"github.com/fastdraft/fd/internal/fdtest"
)

// mapLoader serves import paths from an in-memory map of .fd sources.
type mapLoader map[string]string

func (m mapLoader) LoadImport(path string) (*fd.SceneGraph, error) {
	src, ok := m[path]
	if !ok {
		return nil, fmt.Errorf("no such document %q", path)
	}
	g, h := fd.Parse(src)
	if h.HasErrors() {
		return nil, fmt.Errorf("document %q failed to parse", path)
	}
	return g, nil
}

func TestImportParsesPathAndNamespace(t *testing.T) {
	g, h := fd.Parse(fdtest.Dedent(`
		import "shared/colors.fd" as palette
		rect @r { w: 10 h: 10 }
	`))
	require.False(t, h.HasErrors(), "%v", h.Diagnostics())
	require.Len(t, g.Imports, 1)
	assert.Equal(t, "shared/colors.fd", g.Imports[0].Path)
	assert.Equal(t, "palette", g.Interner.String(g.Imports[0].Namespace))
}

func TestResolveImportsMergesNamespacedThemes(t *testing.T) {
	loader := mapLoader{
		"shared/colors.fd": `theme accent { fill: #6C5CE7 }`,
	}
	g, h := fd.Parse(fdtest.Dedent(`
		import "shared/colors.fd" as palette
		rect @r { w: 10 h: 10 use: palette.accent }
	`))
	require.False(t, h.HasErrors(), "%v", h.Diagnostics())

	rh, _ := g.FindByIDString("r")
	require.NotEmpty(t, g.UnresolvedThemeRefs(rh), "unresolved before loading")

	require.NoError(t, g.ResolveImports(loader))
	assert.Empty(t, g.UnresolvedThemeRefs(rh), "resolved after loading")

	style := g.ResolveStyle(rh)
	require.NotNil(t, style.Fill)
	assert.Equal(t, "#6C5CE7", style.Fill.Solid.String())
}

func TestResolveImportsReportsMissingDocument(t *testing.T) {
	g, h := fd.Parse(fdtest.Dedent(`
		import "gone.fd" as ghost
	`))
	require.False(t, h.HasErrors())
	assert.Error(t, g.ResolveImports(mapLoader{}))
}

func TestResolveImportsNilLoaderIsNoOp(t *testing.T) {
	g, h := fd.Parse(`import "x.fd" as x`)
	require.False(t, h.HasErrors())
	assert.NoError(t, g.ResolveImports(nil))
}
