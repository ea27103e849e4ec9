// Package layout implements the scene graph's constraint-based layout
// solver: intrinsic sizes bottom-up, positions top-down, then a final
// bottom-up pass that re-derives auto-sized group bounds.
package layout

import (
	"github.com/fastdraft/fd/internal/fd"
	"github.com/fastdraft/fd/internal/handler"
	"github.com/fastdraft/fd/internal/intern"
	"github.com/fastdraft/fd/internal/loc"
)

// TextMeasurer supplies intrinsic sizes for Text nodes. Sizing is
// delegated to the host renderer since the core has no font metrics of
// its own.
type TextMeasurer interface {
	MeasureText(family string, weight int, sizePx float64, content string) (w, h float64)
}

// Viewport supplies the root bounds `center_in: canvas` resolves
// against.
type Viewport interface {
	RootBounds() (w, h float64)
}

const textPadPx = 4.0
const defaultFontSize = 16.0
const defaultFontWeight = 400

// Solve resolves every node's fd.SceneNode.ResolvedBounds in place.
// measurer and viewport may be nil; in that case Text nodes get no
// measured content size (only their padding) and the root viewport
// defaults to a zero-size rect.
func Solve(g *fd.SceneGraph, measurer TextMeasurer, viewport Viewport, h *handler.Handler) {
	s := &solver{
		g:         g,
		measurer:  measurer,
		viewport:  viewport,
		h:         h,
		intrinsic: make(map[fd.Handle]fd.Bounds),
		resolved:  make(map[fd.Handle]fd.Bounds),
		resolving: make(map[fd.Handle]bool),
		laidOut:   make(map[fd.Handle]bool),
	}
	s.run()
}

type solver struct {
	g        *fd.SceneGraph
	measurer TextMeasurer
	viewport Viewport
	h        *handler.Handler

	intrinsic map[fd.Handle]fd.Bounds // Pass A: local (0,0)-anchored size
	resolved  map[fd.Handle]fd.Bounds // Pass B: absolute, root-relative
	resolving map[fd.Handle]bool      // cycle guard for on-demand resolution
	laidOut   map[fd.Handle]bool      // managed-layout parents already driven
}

func (s *solver) run() {
	s.computeIntrinsic(fd.RootHandle)

	root := fd.Bounds{}
	if s.viewport != nil {
		w, h := s.viewport.RootBounds()
		root = fd.Bounds{W: w, H: h}
	}
	s.resolved[fd.RootHandle] = root

	s.layoutChildren(fd.RootHandle)
	s.recomputeGroupSize(fd.RootHandle)

	for h, b := range s.resolved {
		if n := s.g.Node(h); n != nil {
			n.ResolvedBounds = b
		}
	}
}

// ---------------------------------------------------------------------
// Pass A: intrinsic sizes, bottom-up
// ---------------------------------------------------------------------

func (s *solver) computeIntrinsic(h fd.Handle) fd.Bounds {
	node := s.g.Node(h)
	var size fd.Bounds

	switch node.Kind {
	case fd.KindFrame, fd.KindRect, fd.KindEllipse, fd.KindPath:
		size = fd.Bounds{W: valueOr(node.HasW, node.W), H: valueOr(node.HasH, node.H)}
	case fd.KindText:
		size = s.measureText(h, node)
	default: // Group, Generic, Root: sized from children below
	}

	children := s.g.Children(h)
	for _, c := range children {
		s.computeIntrinsic(c)
	}

	switch node.Kind {
	case fd.KindGroup, fd.KindGeneric, fd.KindRoot:
		if node.Layout != fd.LayoutFree {
			size = s.managedIntrinsic(node, children)
			break
		}
		var union fd.Bounds
		for _, c := range children {
			cn := s.g.Node(c)
			cs := s.intrinsic[c]
			ox, oy := 0.0, 0.0
			if pos := findPositionConstraint(cn); pos != nil {
				ox, oy = pos.X, pos.Y
			}
			union = union.Union(fd.Bounds{X: ox, Y: oy, W: cs.W, H: cs.H})
		}
		size = union
	}

	// Text used as the sole child of a shape with no explicit position
	// expands to the parent's content rect, which is what delivers
	// visual centering through the renderer's alignment.
	if len(children) == 1 && (node.Kind == fd.KindRect || node.Kind == fd.KindEllipse) {
		only := s.g.Node(children[0])
		if only.Kind == fd.KindText && len(only.Constraints) == 0 {
			s.intrinsic[only.Handle] = fd.Bounds{W: size.W, H: size.H}
		}
	}

	s.intrinsic[h] = size
	return size
}

func (s *solver) measureText(h fd.Handle, node *fd.SceneNode) fd.Bounds {
	if node.HasW && node.HasH {
		return fd.Bounds{W: node.W, H: node.H}
	}
	style := s.g.ResolveStyle(h)
	family := ""
	if style.FontFamily != nil {
		family = *style.FontFamily
	}
	weight := defaultFontWeight
	if style.FontWeight != nil {
		weight = *style.FontWeight
	}
	size := defaultFontSize
	if style.FontSize != nil {
		size = *style.FontSize
	}
	content := ""
	if style.Text != nil {
		content = *style.Text
	}
	var w, hh float64
	if s.measurer != nil {
		w, hh = s.measurer.MeasureText(family, weight, size, content)
	}
	return fd.Bounds{W: w + 2*textPadPx, H: hh + 2*textPadPx}
}

// managedIntrinsic sizes a column/row/grid group from its children's
// stacked extents plus gap and padding, so a managed group centered or
// offset by a constraint is measured the same way its children will
// actually be laid out.
func (s *solver) managedIntrinsic(node *fd.SceneNode, children []fd.Handle) fd.Bounds {
	gap, pad := node.GapPx, node.PadPx
	if len(children) == 0 {
		return fd.Bounds{W: 2 * pad, H: 2 * pad}
	}
	var w, h float64
	switch node.Layout {
	case fd.LayoutColumn:
		for _, c := range children {
			cs := s.intrinsic[c]
			if cs.W > w {
				w = cs.W
			}
			h += cs.H
		}
		h += gap * float64(len(children)-1)
	case fd.LayoutRow:
		for _, c := range children {
			cs := s.intrinsic[c]
			if cs.H > h {
				h = cs.H
			}
			w += cs.W
		}
		w += gap * float64(len(children)-1)
	case fd.LayoutGrid:
		cols := node.GridCols
		if cols < 1 {
			cols = 1
		}
		var colW, rowH float64
		for _, c := range children {
			cs := s.intrinsic[c]
			if cs.W > colW {
				colW = cs.W
			}
			if cs.H > rowH {
				rowH = cs.H
			}
		}
		rows := (len(children) + cols - 1) / cols
		w = colW*float64(cols) + gap*float64(cols-1)
		h = rowH*float64(rows) + gap*float64(rows-1)
	}
	return fd.Bounds{W: w + 2*pad, H: h + 2*pad}
}

func findPositionConstraint(n *fd.SceneNode) *fd.Constraint {
	for i := range n.Constraints {
		if n.Constraints[i].Kind == fd.ConstraintPosition {
			return &n.Constraints[i]
		}
	}
	return nil
}

func valueOr(has bool, v float64) float64 {
	if has {
		return v
	}
	return 0
}

// ---------------------------------------------------------------------
// Pass B: position top-down
// ---------------------------------------------------------------------

func (s *solver) layoutChildren(parent fd.Handle) {
	node := s.g.Node(parent)
	parentBounds := s.resolved[parent]

	if node.Layout != fd.LayoutFree {
		s.ensureManagedLaidOut(parent, node, parentBounds)
	} else {
		for _, c := range s.g.Children(parent) {
			s.resolveAbsolute(c)
		}
	}
	for _, c := range s.g.Children(parent) {
		s.layoutChildren(c)
	}
}

// resolveAbsolute resolves h's bounds on demand, following the parent
// chain and driving any managed-layout ancestor that hasn't run yet.
// Used both by the top-down driver and by CenterIn/Offset target lookups
// that may reference a node anywhere in the document.
func (s *solver) resolveAbsolute(h fd.Handle) fd.Bounds {
	if b, ok := s.resolved[h]; ok {
		return b
	}
	if s.resolving[h] {
		s.cyclicLint(h)
		return fd.Bounds{}
	}
	node := s.g.Node(h)
	if node == nil || node.Parent == fd.NoHandle {
		return fd.Bounds{}
	}
	parentBounds := s.resolveAbsolute(node.Parent)
	pnode := s.g.Node(node.Parent)
	if pnode.Layout != fd.LayoutFree {
		s.ensureManagedLaidOut(node.Parent, pnode, parentBounds)
		return s.resolved[h]
	}

	s.resolving[h] = true
	b := s.resolveFreeChild(h, node, parentBounds)
	delete(s.resolving, h)
	s.resolved[h] = b
	return b
}

func (s *solver) resolveFreeChild(h fd.Handle, node *fd.SceneNode, parentBounds fd.Bounds) fd.Bounds {
	intrinsic := s.intrinsic[h]
	best := s.pickConstraint(node)
	if best == nil {
		return fd.Bounds{X: parentBounds.X, Y: parentBounds.Y, W: intrinsic.W, H: intrinsic.H}
	}
	switch best.Kind {
	case fd.ConstraintPosition:
		return fd.Bounds{X: parentBounds.X + best.X, Y: parentBounds.Y + best.Y, W: intrinsic.W, H: intrinsic.H}
	case fd.ConstraintCenterIn:
		target, ok := s.targetBounds(h, best.Target)
		if !ok {
			break
		}
		return fd.Bounds{
			X: target.X + (target.W-intrinsic.W)/2,
			Y: target.Y + (target.H-intrinsic.H)/2,
			W: intrinsic.W, H: intrinsic.H,
		}
	case fd.ConstraintOffset:
		target, ok := s.targetBounds(h, best.From)
		if !ok {
			break
		}
		return fd.Bounds{X: target.X + best.DX, Y: target.Y + best.DY, W: intrinsic.W, H: intrinsic.H}
	case fd.ConstraintFillParent:
		pad := best.Pad
		return fd.Bounds{
			X: parentBounds.X + pad, Y: parentBounds.Y + pad,
			W: parentBounds.W - 2*pad, H: parentBounds.H - 2*pad,
		}
	}
	return fd.Bounds{X: parentBounds.X, Y: parentBounds.Y, W: intrinsic.W, H: intrinsic.H}
}

// pickConstraint applies the tie-break rule when a node carries more
// than one constraint: FillParent beats Offset beats CenterIn beats
// Position. A node with more than one constraint kind set gets a
// ConflictingConstraints lint.
func (s *solver) pickConstraint(node *fd.SceneNode) *fd.Constraint {
	if len(node.Constraints) == 0 {
		return nil
	}
	kinds := map[fd.ConstraintKind]bool{}
	var best *fd.Constraint
	for i := range node.Constraints {
		c := &node.Constraints[i]
		kinds[c.Kind] = true
		if best == nil || c.Kind.Precedence() > best.Kind.Precedence() {
			best = c
		}
	}
	if len(kinds) > 1 {
		s.h.AppendWarning(handler.NewRangedError(loc.ConflictingConstraints, loc.Range{},
			"node %q has conflicting positioning constraints", s.g.Interner.String(node.ID)))
	}
	return best
}

// targetBounds resolves a CenterIn/Offset target: CanvasTarget means the
// root viewport, otherwise a node ID looked up and resolved on demand.
// self is the constrained node itself, guarded against so a
// self-referencing target can't recurse into itself. It reports false,
// after adding a lint, when the target is unknown, is self, or is still
// being resolved further up a constraint cycle; the caller then ignores
// the constraint.
func (s *solver) targetBounds(self fd.Handle, id intern.ID) (fd.Bounds, bool) {
	if id == fd.CanvasTarget {
		return s.resolved[fd.RootHandle], true
	}
	th, ok := s.g.FindByID(id)
	if !ok {
		s.h.AppendWarning(handler.NewRangedError(loc.UnresolvedReference, loc.Range{},
			"positioning constraint references unknown node %q", s.g.Interner.String(id)))
		return fd.Bounds{}, false
	}
	if th == self || s.resolving[th] {
		s.cyclicLint(self)
		return fd.Bounds{}, false
	}
	return s.resolveAbsolute(th), true
}

func (s *solver) cyclicLint(h fd.Handle) {
	node := s.g.Node(h)
	id := ""
	if node != nil {
		id = s.g.Interner.String(node.ID)
	}
	s.h.AppendWarning(handler.NewRangedError(loc.CyclicConstraint, loc.Range{},
		"cyclic positioning constraint detected involving %q", id))
}

// ---------------------------------------------------------------------
// managed layouts: Column / Row / Grid
// ---------------------------------------------------------------------

func (s *solver) ensureManagedLaidOut(parent fd.Handle, node *fd.SceneNode, parentBounds fd.Bounds) {
	if s.laidOut[parent] {
		return
	}
	s.laidOut[parent] = true
	children := s.g.Children(parent)
	gap, pad := node.GapPx, node.PadPx

	switch node.Layout {
	case fd.LayoutColumn:
		y := parentBounds.Y + pad
		contentW := parentBounds.W - 2*pad
		for _, c := range children {
			cn := s.g.Node(c)
			size := s.intrinsic[c]
			w := size.W
			if cn.Kind == fd.KindText {
				w = contentW
			}
			s.resolved[c] = fd.Bounds{X: parentBounds.X + pad, Y: y, W: w, H: size.H}
			y += size.H + gap
		}
	case fd.LayoutRow:
		x := parentBounds.X + pad
		for _, c := range children {
			size := s.intrinsic[c]
			s.resolved[c] = fd.Bounds{X: x, Y: parentBounds.Y + pad, W: size.W, H: size.H}
			x += size.W + gap
		}
	case fd.LayoutGrid:
		cols := node.GridCols
		if cols < 1 {
			cols = 1
		}
		colW := (parentBounds.W - 2*pad - gap*float64(cols-1)) / float64(cols)
		x0 := parentBounds.X + pad
		y := parentBounds.Y + pad
		rowH := 0.0
		for i, c := range children {
			col := i % cols
			if col == 0 && i > 0 {
				y += rowH + gap
				rowH = 0
			}
			size := s.intrinsic[c]
			x := x0 + float64(col)*(colW+gap)
			s.resolved[c] = fd.Bounds{X: x, Y: y, W: colW, H: size.H}
			if size.H > rowH {
				rowH = size.H
			}
		}
	}
}

// ---------------------------------------------------------------------
// Pass C: recompute Free-layout group sizes, bottom-up
// ---------------------------------------------------------------------

func (s *solver) recomputeGroupSize(h fd.Handle) {
	node := s.g.Node(h)
	children := s.g.Children(h)
	for _, c := range children {
		s.recomputeGroupSize(c)
	}
	if node.Layout != fd.LayoutFree {
		return
	}
	// The root keeps its viewport bounds; only real auto-sized
	// containers re-derive their extent from children.
	if node.Kind != fd.KindGroup && node.Kind != fd.KindGeneric {
		return
	}
	b := s.resolved[h]
	var union fd.Bounds
	for _, c := range children {
		cb := s.resolved[c]
		union = union.Union(fd.Bounds{X: cb.X - b.X, Y: cb.Y - b.Y, W: cb.W, H: cb.H})
	}
	b.W, b.H = union.W, union.H
	s.resolved[h] = b
	node.ResolvedBounds = b
}
