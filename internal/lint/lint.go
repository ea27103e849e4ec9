// Package lint implements the formatter and linter: canonical top-level
// node ordering plus a battery of non-fatal diagnostics. Lint never
// touches the graph; only Format does, and only the fields its options
// name.
package lint

import (
	"regexp"

	"github.com/fastdraft/fd/internal/fd"
	"github.com/fastdraft/fd/internal/handler"
	"github.com/fastdraft/fd/internal/loc"
)

// Options mirrors fd.Config's linting-relevant fields; callers with a
// loaded Config copy those fields over.
type Options struct {
	RequireSemanticIds bool
}

var autoIDPattern = regexp.MustCompile(`^[a-z]+_[0-9]+$`)

// Lint walks g and returns every diagnostic that can be produced
// without a layout pass. Constraint cycles are detected statically here
// as well as during a real solve, so linting doesn't require running
// the solver first.
func Lint(g *fd.SceneGraph, opts Options) []loc.DiagnosticMessage {
	h := handler.New("", "<graph>")

	usedThemes := map[string]bool{}
	g.Walk(func(hd fd.Handle, n *fd.SceneNode) {
		lintDuplicateUse(h, g, n)
		lintUnresolvedReference(h, g, n)
		lintConflictingConstraints(h, g, n)
		lintUnknownProperties(h, n)
		if opts.RequireSemanticIds {
			lintAnonymousID(h, g, n)
		}
		for _, ref := range n.UseStyles {
			usedThemes[themeKey(g, ref)] = true
		}
		for _, e := range n.Edges {
			lintOrphanEdge(h, g, e)
		}
	})
	for _, e := range g.Edges {
		lintOrphanEdge(h, g, e)
	}
	for _, key := range g.ThemeOrder() {
		if !usedThemes[key] {
			h.AppendWarning(handler.NewRangedError(loc.UnusedTheme, loc.Range{}, "theme %q is never used", key))
		}
	}
	lintConstraintCycles(h, g)

	return h.Diagnostics()
}

func themeKey(g *fd.SceneGraph, ref fd.ThemeRef) string {
	name := g.Interner.String(ref.Name)
	if ref.Namespace != 0 {
		return g.Interner.String(ref.Namespace) + "." + name
	}
	return name
}

func lintDuplicateUse(h *handler.Handler, g *fd.SceneGraph, n *fd.SceneNode) {
	seen := map[string]bool{}
	for _, ref := range n.UseStyles {
		key := themeKey(g, ref)
		if seen[key] {
			h.AppendWarning(handler.NewRangedError(loc.DuplicateUse, loc.Range{},
				"node %q uses theme %q more than once", idOf(g, n), key))
		}
		seen[key] = true
	}
}

func lintUnresolvedReference(h *handler.Handler, g *fd.SceneGraph, n *fd.SceneNode) {
	for _, key := range g.UnresolvedThemeRefs(n.Handle) {
		h.AppendWarning(handler.NewRangedError(loc.UnresolvedReference, loc.Range{},
			"node %q references undeclared theme %q", idOf(g, n), key))
	}
}

func lintConflictingConstraints(h *handler.Handler, g *fd.SceneGraph, n *fd.SceneNode) {
	kinds := map[fd.ConstraintKind]bool{}
	for _, c := range n.Constraints {
		kinds[c.Kind] = true
	}
	if len(kinds) > 1 {
		h.AppendWarning(handler.NewRangedError(loc.ConflictingConstraints, loc.Range{},
			"node %q has conflicting positioning constraints", idOf(g, n)))
	}
}

func lintUnknownProperties(h *handler.Handler, n *fd.SceneNode) {
	for key := range n.UnknownProps {
		h.AppendWarning(handler.NewRangedError(loc.UnknownProperty, loc.Range{}, "unknown property %q", key))
	}
}

func lintAnonymousID(h *handler.Handler, g *fd.SceneGraph, n *fd.SceneNode) {
	if n.Handle == fd.RootHandle {
		return
	}
	id := g.Interner.String(n.ID)
	if autoIDPattern.MatchString(id) {
		h.AppendWarning(handler.NewRangedError(loc.AnonymousId, loc.Range{}, "node %q has an auto-generated id", id))
	}
}

// lintOrphanEdge flags edges orphaned by a node removal (Orphan flag)
// as well as edges whose anchors reference a node ID that was never
// declared; the removal path can't catch those, so resolution is
// re-checked here.
func lintOrphanEdge(h *handler.Handler, g *fd.SceneGraph, e *fd.Edge) {
	if !e.Orphan && !anchorDangles(g, e.From) && !anchorDangles(g, e.To) {
		return
	}
	name := "<anonymous>"
	if e.ID != 0 {
		name = g.Interner.String(e.ID)
	}
	h.AppendWarning(handler.NewRangedError(loc.OrphanEdge, loc.Range{}, "edge %q references a missing node", name))
}

// anchorDangles reports whether a node-ref anchor fails to resolve.
// Free-coordinate anchors and anchors left empty by parse recovery
// never dangle.
func anchorDangles(g *fd.SceneGraph, a fd.Anchor) bool {
	if a.IsFree || a.NodeID == 0 {
		return false
	}
	_, ok := g.FindByID(a.NodeID)
	return !ok
}

// lintConstraintCycles performs a bounded DFS over CenterIn/Offset
// targets, reporting the node whose constraint closes each cycle it
// finds; the other nodes on that cycle are not reported.
func lintConstraintCycles(h *handler.Handler, g *fd.SceneGraph) {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[fd.Handle]int{}
	var visit func(hd fd.Handle) bool
	visit = func(hd fd.Handle) bool {
		if color[hd] == black {
			return false
		}
		if color[hd] == gray {
			return true
		}
		color[hd] = gray
		n := g.Node(hd)
		if n != nil {
			for _, c := range n.Constraints {
				var target fd.Handle
				var ok bool
				switch c.Kind {
				case fd.ConstraintCenterIn:
					if c.Target == fd.CanvasTarget {
						continue
					}
					target, ok = g.FindByID(c.Target)
				case fd.ConstraintOffset:
					if c.From == fd.CanvasTarget {
						continue
					}
					target, ok = g.FindByID(c.From)
				default:
					continue
				}
				if ok && visit(target) {
					h.AppendWarning(handler.NewRangedError(loc.CyclicConstraint, loc.Range{},
						"node %q has a cyclic positioning constraint", idOf(g, n)))
				}
			}
		}
		color[hd] = black
		return false
	}
	for _, hd := range g.AllHandles() {
		if color[hd] == white {
			visit(hd)
		}
	}
}

func idOf(g *fd.SceneGraph, n *fd.SceneNode) string {
	if n.ID == 0 {
		return "<anonymous>"
	}
	return g.Interner.String(n.ID)
}

// Validate parses text and reports whether it is error-free, without
// constructing a long-lived graph.
func Validate(text string) (ok bool, diagnostics []loc.DiagnosticMessage) {
	_, h := fd.Parse(text)
	return !h.HasErrors(), h.Diagnostics()
}
