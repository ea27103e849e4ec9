package lint

import (
	"fmt"
	"sort"

	"github.com/fastdraft/fd/internal/fd"
	"github.com/fastdraft/fd/internal/handler"
)

// FormatOptions selects which canonical transforms Format applies.
type FormatOptions struct {
	DedupeStyles bool
	HoistStyles  bool
	SortNodes    bool
}

// topLevelRank is the formatter's opt-in top-level node ordering:
// Group/Frame -> Rect -> Ellipse -> Text -> Path -> Generic, stable
// within each kind.
var topLevelRank = map[fd.NodeKind]int{
	fd.KindGroup:   0,
	fd.KindFrame:   0,
	fd.KindRect:    1,
	fd.KindEllipse: 2,
	fd.KindText:    3,
	fd.KindPath:    4,
	fd.KindGeneric: 5,
}

// Format re-parses text, applies the requested canonical transforms, and
// re-emits it. On a parse error the input is returned unchanged
// alongside the handler carrying the failures, since there is no graph
// to format.
//
// Format is idempotent by construction: every transform below either
// operates on a property that is already deduplicated/sorted/hoisted
// after one pass (sorting a sorted slice, deduplicating a deduplicated
// slice) or only fires on inline styles that hoisting itself clears, so
// a second Format call is always a no-op on its own output.
func Format(text string, opts FormatOptions) (string, *handler.Handler) {
	g, h := fd.Parse(text)
	if h.HasErrors() {
		return text, h
	}
	if opts.DedupeStyles {
		dedupeStyles(g)
	}
	if opts.HoistStyles {
		hoistStyles(g)
	}
	if opts.SortNodes {
		sortTopLevel(g)
	}
	return fd.Emit(g), h
}

func dedupeStyles(g *fd.SceneGraph) {
	g.Walk(func(_ fd.Handle, n *fd.SceneNode) {
		if len(n.UseStyles) == 0 {
			return
		}
		seen := make(map[string]bool, len(n.UseStyles))
		out := n.UseStyles[:0]
		for _, ref := range n.UseStyles {
			key := themeKey(g, ref)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, ref)
		}
		n.UseStyles = out
	})
}

func sortTopLevel(g *fd.SceneGraph) {
	children := append([]fd.Handle(nil), g.Children(fd.RootHandle)...)
	sort.SliceStable(children, func(i, j int) bool {
		ni, nj := g.Node(children[i]), g.Node(children[j])
		return topLevelRank[ni.Kind] < topLevelRank[nj.Kind]
	})
	g.ReorderChildren(fd.RootHandle, children)
}

// hoistStyles groups nodes sharing an identical inline style into a
// generated theme, replacing each node's inline style with a use_styles
// reference. Groups of size one are left alone: indirecting through a
// theme that only one node uses adds a layer without removing any
// duplication. Text content is never hoisted, since two nodes can share
// a visual style while saying different things.
func hoistStyles(g *fd.SceneGraph) {
	type group struct {
		style fd.Style
		nodes []*fd.SceneNode
	}
	var groups []*group
	g.Walk(func(hd fd.Handle, n *fd.SceneNode) {
		if hd == fd.RootHandle || isZeroStyle(n.Style) || n.Style.Text != nil {
			return
		}
		for _, grp := range groups {
			if styleEqual(grp.style, n.Style) {
				grp.nodes = append(grp.nodes, n)
				return
			}
		}
		groups = append(groups, &group{style: n.Style, nodes: []*fd.SceneNode{n}})
	})
	count := 0
	for _, grp := range groups {
		if len(grp.nodes) < 2 {
			continue
		}
		count++
		name := fmt.Sprintf("hoisted_%d", count)
		g.SetTheme(name, &fd.Theme{Name: g.Interner.Intern(name), Style: grp.style})
		for _, node := range grp.nodes {
			node.UseStyles = append(node.UseStyles, fd.ThemeRef{Name: g.Interner.Intern(name)})
			node.Style = fd.Style{}
		}
	}
}

func isZeroStyle(s fd.Style) bool {
	return s.Fill == nil && s.Stroke == nil && s.StrokeWidth == nil && s.CornerRadius == nil &&
		s.Opacity == nil && s.Shadow == nil && s.FontFamily == nil && s.FontWeight == nil &&
		s.FontSize == nil && s.TextAlign == fd.AlignUnset && s.TextVAlign == fd.VAlignUnset && s.Text == nil
}

func styleEqual(a, b fd.Style) bool {
	return paintEqual(a.Fill, b.Fill) &&
		paintEqual(a.Stroke, b.Stroke) &&
		float64PtrEqual(a.StrokeWidth, b.StrokeWidth) &&
		float64PtrEqual(a.CornerRadius, b.CornerRadius) &&
		float64PtrEqual(a.Opacity, b.Opacity) &&
		shadowEqual(a.Shadow, b.Shadow) &&
		stringPtrEqual(a.FontFamily, b.FontFamily) &&
		intPtrEqual(a.FontWeight, b.FontWeight) &&
		float64PtrEqual(a.FontSize, b.FontSize) &&
		a.TextAlign == b.TextAlign &&
		a.TextVAlign == b.TextVAlign
}

func paintEqual(a, b *fd.Paint) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind || a.Solid != b.Solid || a.Raw != b.Raw || len(a.Stops) != len(b.Stops) {
		return false
	}
	for i := range a.Stops {
		if a.Stops[i] != b.Stops[i] {
			return false
		}
	}
	return true
}

func shadowEqual(a, b *fd.Shadow) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func float64PtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func stringPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
