// Package mutate implements the scene graph's invertible mutation
// algebra. Every exported mutation function performs its edit and
// returns a Mutation carrying enough state to undo it.
package mutate

import (
	"fmt"

	"github.com/fastdraft/fd/internal/fd"
)

// Mutation is a single graph edit together with enough state to reverse
// it. The functions below perform the edit and return the Mutation as a
// record, not a command: by the time a Mutation value exists, its effect
// has already been applied.
type Mutation struct {
	Kind    string
	Inverse func(g *fd.SceneGraph) (Mutation, error)
}

// AddNode inserts a node and returns a Mutation whose inverse removes it.
func AddNode(g *fd.SceneGraph, parent fd.Handle, kind fd.NodeKind, id string) (fd.Handle, Mutation, error) {
	h, err := g.InsertNode(parent, kind, id)
	if err != nil {
		return fd.NoHandle, Mutation{}, err
	}
	m := Mutation{
		Kind: "AddNode",
		Inverse: func(g *fd.SceneGraph) (Mutation, error) {
			return RemoveNode(g, h, false)
		},
	}
	return h, m, nil
}

// RemoveNode deletes a node and its subtree. Its inverse is a best-effort
// re-creation: it adds a node with the same kind, ID and inline style as
// the last child of the old parent. Sizes, constraints, other fields, the
// subtree and the node's place among its siblings are not restored, and
// edges orphaned or deleted by the removal stay that way. Full subtree
// restoration is a job for batch-level text snapshotting, not per-step
// inversion.
func RemoveNode(g *fd.SceneGraph, h fd.Handle, deleteEdges bool) (Mutation, error) {
	node := g.Node(h)
	if node == nil {
		return Mutation{}, fmt.Errorf("mutate: no such node %d", h)
	}
	parent := node.Parent
	kind := node.Kind
	idStr := g.Interner.String(node.ID)
	style := node.Style

	g.RemoveNode(h, deleteEdges)

	m := Mutation{
		Kind: "RemoveNode",
		Inverse: func(g *fd.SceneGraph) (Mutation, error) {
			newH, addM, err := AddNode(g, parent, kind, idStr)
			if err != nil {
				return Mutation{}, err
			}
			g.Node(newH).Style = style
			return addM, nil
		},
	}
	return m, nil
}

// MoveNode moves a node by a relative offset against its current
// resolved position, updating ResolvedBounds in place. If layout has
// never been solved the node's resolved position defaults to its zero
// value, so the move lands at (dx, dy).
//
// A move always strips CenterIn/Offset/FillParent constraints and
// replaces them with a single Position{x, y} in the node's new
// parent-relative coordinates: once the user has dragged a node, its
// old "stick to" relationship no longer describes where it is. This is
// what makes dragged nodes emit as inline `x:`/`y:`.
//
// When the move lands the node fully outside its parent's current
// stored bounds, it is detached to the nearest ancestor (or root) whose
// stored bounds still contain it. Partial overlap never expands the
// parent's bounds mid-move; growing them on every intermediate move
// makes the parent chase the child, so bounds only grow at a batch's
// finalize step.
func MoveNode(g *fd.SceneGraph, h fd.Handle, dx, dy float64) (Mutation, error) {
	node := g.Node(h)
	if node == nil {
		return Mutation{}, fmt.Errorf("mutate: no such node %d", h)
	}
	if h == fd.RootHandle {
		return Mutation{}, fmt.Errorf("mutate: cannot move the root node")
	}

	prevConstraints := append([]fd.Constraint(nil), node.Constraints...)
	prevBounds := node.ResolvedBounds
	prevParent := node.Parent

	newBounds := prevBounds
	newBounds.X += dx
	newBounds.Y += dy

	newParent := prevParent
	if parent := g.Node(prevParent); parent != nil {
		if !boundsOverlap(newBounds, parent.ResolvedBounds) {
			newParent = nearestContaining(g, prevParent, newBounds)
		}
	}
	if newParent != prevParent {
		detachChild(g, prevParent, h)
		node.Parent = newParent
		attachChild(g, newParent, h)
	}

	origin := g.Node(newParent).ResolvedBounds
	node.Constraints = []fd.Constraint{{
		Kind: fd.ConstraintPosition,
		X:    newBounds.X - origin.X,
		Y:    newBounds.Y - origin.Y,
	}}
	node.ResolvedBounds = newBounds

	m := Mutation{
		Kind: "MoveNode",
		Inverse: func(g *fd.SceneGraph) (Mutation, error) {
			n := g.Node(h)
			if n == nil {
				return Mutation{}, fmt.Errorf("mutate: no such node %d", h)
			}
			if n.Parent != prevParent {
				detachChild(g, n.Parent, h)
				n.Parent = prevParent
				attachChild(g, prevParent, h)
			}
			n.Constraints = prevConstraints
			n.ResolvedBounds = prevBounds
			return Mutation{Kind: "MoveNode", Inverse: func(g *fd.SceneGraph) (Mutation, error) {
				return MoveNode(g, h, dx, dy)
			}}, nil
		},
	}
	return m, nil
}

// boundsOverlap reports whether a and b share any area, using half-open
// interval tests on both axes.
func boundsOverlap(a, b fd.Bounds) bool {
	return a.X < b.X+b.W && a.X+a.W > b.X && a.Y < b.Y+b.H && a.Y+a.H > b.Y
}

// nearestContaining walks up from start looking for the first ancestor
// whose stored bounds fully contain child, falling back to root.
func nearestContaining(g *fd.SceneGraph, start fd.Handle, child fd.Bounds) fd.Handle {
	for hd := start; hd != fd.NoHandle; {
		n := g.Node(hd)
		if n == nil {
			break
		}
		if hd == fd.RootHandle || n.ResolvedBounds.Contains(child) {
			return hd
		}
		hd = n.Parent
	}
	return fd.RootHandle
}

// ResizeNode sets a node's explicit width/height. Unlike MoveNode this
// does not touch positioning constraints; resize and reposition are
// independent axes of change.
func ResizeNode(g *fd.SceneGraph, h fd.Handle, w, hh float64) (Mutation, error) {
	node := g.Node(h)
	if node == nil {
		return Mutation{}, fmt.Errorf("mutate: no such node %d", h)
	}
	prevW, prevH, prevHasW, prevHasH := node.W, node.H, node.HasW, node.HasH
	node.W, node.H, node.HasW, node.HasH = w, hh, true, true

	m := Mutation{
		Kind: "ResizeNode",
		Inverse: func(g *fd.SceneGraph) (Mutation, error) {
			n := g.Node(h)
			if n == nil {
				return Mutation{}, fmt.Errorf("mutate: no such node %d", h)
			}
			n.W, n.H, n.HasW, n.HasH = prevW, prevH, prevHasW, prevHasH
			return Mutation{Kind: "ResizeNode", Inverse: func(g *fd.SceneGraph) (Mutation, error) {
				return ResizeNode(g, h, w, hh)
			}}, nil
		},
	}
	return m, nil
}

// SetStyle replaces a node's style wholesale; nothing of the current
// style is merged in.
func SetStyle(g *fd.SceneGraph, h fd.Handle, style fd.Style) (Mutation, error) {
	node := g.Node(h)
	if node == nil {
		return Mutation{}, fmt.Errorf("mutate: no such node %d", h)
	}
	prev := node.Style
	node.Style = style

	m := Mutation{
		Kind: "SetStyle",
		Inverse: func(g *fd.SceneGraph) (Mutation, error) {
			return SetStyle(g, h, prev)
		},
	}
	return m, nil
}

// SetText sets a Text node's inline content.
func SetText(g *fd.SceneGraph, h fd.Handle, text string) (Mutation, error) {
	node := g.Node(h)
	if node == nil {
		return Mutation{}, fmt.Errorf("mutate: no such node %d", h)
	}
	var prev *string
	if node.Style.Text != nil {
		t := *node.Style.Text
		prev = &t
	}
	t := text
	node.Style.Text = &t

	m := Mutation{
		Kind: "SetText",
		Inverse: func(g *fd.SceneGraph) (Mutation, error) {
			n := g.Node(h)
			if n == nil {
				return Mutation{}, fmt.Errorf("mutate: no such node %d", h)
			}
			n.Style.Text = prev
			return Mutation{Kind: "SetText", Inverse: func(g *fd.SceneGraph) (Mutation, error) {
				return SetText(g, h, text)
			}}, nil
		},
	}
	return m, nil
}

// SetAnimations replaces a node's trigger list.
func SetAnimations(g *fd.SceneGraph, h fd.Handle, anims []fd.Animation) (Mutation, error) {
	node := g.Node(h)
	if node == nil {
		return Mutation{}, fmt.Errorf("mutate: no such node %d", h)
	}
	prev := node.Animations
	node.Animations = anims

	m := Mutation{
		Kind: "SetAnimations",
		Inverse: func(g *fd.SceneGraph) (Mutation, error) {
			return SetAnimations(g, h, prev)
		},
	}
	return m, nil
}

// SetAnnotations replaces a node's spec annotations.
func SetAnnotations(g *fd.SceneGraph, h fd.Handle, anns []fd.Annotation) (Mutation, error) {
	node := g.Node(h)
	if node == nil {
		return Mutation{}, fmt.Errorf("mutate: no such node %d", h)
	}
	prev := node.Annotations
	node.Annotations = anns

	m := Mutation{
		Kind: "SetAnnotations",
		Inverse: func(g *fd.SceneGraph) (Mutation, error) {
			return SetAnnotations(g, h, prev)
		},
	}
	return m, nil
}

// Reparent moves an existing node (and its subtree) under a new parent.
// Rejects moves that would create a containment cycle (newParent is h
// or a descendant of h).
func Reparent(g *fd.SceneGraph, h, newParent fd.Handle) (Mutation, error) {
	node := g.Node(h)
	if node == nil {
		return Mutation{}, fmt.Errorf("mutate: no such node %d", h)
	}
	if h == newParent || g.IsAncestorOf(h, newParent) {
		return Mutation{}, fmt.Errorf("mutate: reparenting %d under %d would create a cycle", h, newParent)
	}
	oldParent := node.Parent

	detachChild(g, oldParent, h)
	node.Parent = newParent
	attachChild(g, newParent, h)

	m := Mutation{
		Kind: "Reparent",
		Inverse: func(g *fd.SceneGraph) (Mutation, error) {
			return Reparent(g, h, oldParent)
		},
	}
	return m, nil
}

// GroupNodes wraps the given nodes in a new Group under their shared
// parent, preserving relative order, and returns the new group's handle.
// All of members must currently share the same parent.
func GroupNodes(g *fd.SceneGraph, members []fd.Handle) (fd.Handle, Mutation, error) {
	if len(members) == 0 {
		return fd.NoHandle, Mutation{}, fmt.Errorf("mutate: GroupNodes requires at least one member")
	}
	parent := g.Node(members[0]).Parent
	for _, m := range members {
		if g.Node(m).Parent != parent {
			return fd.NoHandle, Mutation{}, fmt.Errorf("mutate: GroupNodes members must share a parent")
		}
	}

	groupH, _, err := AddNode(g, parent, fd.KindGroup, "")
	if err != nil {
		return fd.NoHandle, Mutation{}, err
	}
	for _, m := range members {
		detachChild(g, parent, m)
		g.Node(m).Parent = groupH
		attachChild(g, groupH, m)
	}

	mut := Mutation{
		Kind: "GroupNodes",
		Inverse: func(g *fd.SceneGraph) (Mutation, error) {
			return UngroupNode(g, groupH)
		},
	}
	return groupH, mut, nil
}

// UngroupNode dissolves a Group, reattaching its children to the
// group's own parent (appended after that parent's existing children),
// then removes the now-empty group.
func UngroupNode(g *fd.SceneGraph, groupH fd.Handle) (Mutation, error) {
	node := g.Node(groupH)
	if node == nil || node.Kind != fd.KindGroup {
		return Mutation{}, fmt.Errorf("mutate: %d is not a group", groupH)
	}
	parent := node.Parent
	members := append([]fd.Handle(nil), g.Children(groupH)...)

	for _, m := range members {
		detachChild(g, groupH, m)
		g.Node(m).Parent = parent
		attachChild(g, parent, m)
	}
	if _, err := RemoveNode(g, groupH, false); err != nil {
		return Mutation{}, err
	}

	mut := Mutation{
		Kind: "UngroupNode",
		Inverse: func(g *fd.SceneGraph) (Mutation, error) {
			_, m, err := GroupNodes(g, members)
			return m, err
		},
	}
	return mut, nil
}

// AddEdge appends an edge to the graph's top-level edge list.
func AddEdge(g *fd.SceneGraph, e *fd.Edge) (Mutation, error) {
	g.Edges = append(g.Edges, e)
	m := Mutation{
		Kind: "AddEdge",
		Inverse: func(g *fd.SceneGraph) (Mutation, error) {
			return RemoveEdge(g, e)
		},
	}
	return m, nil
}

// RemoveEdge deletes a specific edge from the graph's top-level list.
func RemoveEdge(g *fd.SceneGraph, e *fd.Edge) (Mutation, error) {
	idx := -1
	for i, cur := range g.Edges {
		if cur == e {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Mutation{}, fmt.Errorf("mutate: edge not found")
	}
	g.Edges = append(g.Edges[:idx], g.Edges[idx+1:]...)

	m := Mutation{
		Kind: "RemoveEdge",
		Inverse: func(g *fd.SceneGraph) (Mutation, error) {
			return AddEdge(g, e)
		},
	}
	return m, nil
}

// SetEdgeProps replaces e's mutable display properties in place.
func SetEdgeProps(g *fd.SceneGraph, e *fd.Edge, arrow fd.ArrowKind, curve fd.CurveKind) (Mutation, error) {
	prevArrow, prevCurve := e.Arrow, e.Curve
	e.Arrow, e.Curve = arrow, curve

	m := Mutation{
		Kind: "SetEdgeProps",
		Inverse: func(g *fd.SceneGraph) (Mutation, error) {
			return SetEdgeProps(g, e, prevArrow, prevCurve)
		},
	}
	return m, nil
}

// z-order: these mutate the SceneGraph's child-order override. Z-order
// is a presentation concern layered on containment, never a reparent.

// BringForward swaps h one position later in its parent's child order.
func BringForward(g *fd.SceneGraph, h fd.Handle) (Mutation, error) {
	return shiftOrder(g, h, 1)
}

// SendBackward swaps h one position earlier in its parent's child order.
func SendBackward(g *fd.SceneGraph, h fd.Handle) (Mutation, error) {
	return shiftOrder(g, h, -1)
}

// BringToFront moves h to the end of its parent's child order.
func BringToFront(g *fd.SceneGraph, h fd.Handle) (Mutation, error) {
	return moveToEnd(g, h, true)
}

// SendToBack moves h to the start of its parent's child order.
func SendToBack(g *fd.SceneGraph, h fd.Handle) (Mutation, error) {
	return moveToEnd(g, h, false)
}

// SortChildren applies an explicit order override to parent's children.
func SortChildren(g *fd.SceneGraph, parent fd.Handle, newOrder []fd.Handle) (Mutation, error) {
	prev := append([]fd.Handle(nil), g.Children(parent)...)
	g.ReorderChildren(parent, newOrder)

	m := Mutation{
		Kind: "SortChildren",
		Inverse: func(g *fd.SceneGraph) (Mutation, error) {
			return SortChildren(g, parent, prev)
		},
	}
	return m, nil
}

func shiftOrder(g *fd.SceneGraph, h fd.Handle, delta int) (Mutation, error) {
	node := g.Node(h)
	if node == nil {
		return Mutation{}, fmt.Errorf("mutate: no such node %d", h)
	}
	order := append([]fd.Handle(nil), g.Children(node.Parent)...)
	idx := indexOf(order, h)
	if idx < 0 {
		return Mutation{}, fmt.Errorf("mutate: %d not found under its parent", h)
	}
	j := idx + delta
	if j < 0 || j >= len(order) {
		return Mutation{Kind: "BringForward", Inverse: func(g *fd.SceneGraph) (Mutation, error) {
			return Mutation{}, nil
		}}, nil
	}
	order[idx], order[j] = order[j], order[idx]
	g.ReorderChildren(node.Parent, order)

	m := Mutation{
		Kind: "ShiftOrder",
		Inverse: func(g *fd.SceneGraph) (Mutation, error) {
			return shiftOrder(g, h, -delta)
		},
	}
	return m, nil
}

func moveToEnd(g *fd.SceneGraph, h fd.Handle, front bool) (Mutation, error) {
	node := g.Node(h)
	if node == nil {
		return Mutation{}, fmt.Errorf("mutate: no such node %d", h)
	}
	prev := append([]fd.Handle(nil), g.Children(node.Parent)...)
	order := append([]fd.Handle(nil), prev...)
	idx := indexOf(order, h)
	if idx < 0 {
		return Mutation{}, fmt.Errorf("mutate: %d not found under its parent", h)
	}
	order = append(order[:idx], order[idx+1:]...)
	if front {
		order = append(order, h)
	} else {
		order = append([]fd.Handle{h}, order...)
	}
	g.ReorderChildren(node.Parent, order)

	m := Mutation{
		Kind: "MoveToEnd",
		Inverse: func(g *fd.SceneGraph) (Mutation, error) {
			return SortChildren(g, node.Parent, prev)
		},
	}
	return m, nil
}

func indexOf(hs []fd.Handle, h fd.Handle) int {
	for i, x := range hs {
		if x == h {
			return i
		}
	}
	return -1
}

// FinalizeChildBounds recomputes every Free-layout Group/Generic/Root
// node's ResolvedBounds as the union of its children's current
// ResolvedBounds, bottom-up. MoveNode deliberately never grows a
// parent's stored bounds mid-drag, so a parent that a dragged child now
// overhangs stays stale until the gesture completes. The sync engine
// calls this once, at EndBatch, to settle every touched ancestor in one
// pass instead of on every intermediate MoveNode.
func FinalizeChildBounds(g *fd.SceneGraph) {
	var rec func(h fd.Handle) fd.Bounds
	rec = func(h fd.Handle) fd.Bounds {
		node := g.Node(h)
		children := g.Children(h)
		for _, c := range children {
			rec(c)
		}
		if node.Layout != fd.LayoutFree {
			return node.ResolvedBounds
		}
		if node.Kind != fd.KindGroup && node.Kind != fd.KindGeneric && node.Kind != fd.KindRoot {
			return node.ResolvedBounds
		}
		var union fd.Bounds
		for _, c := range children {
			union = union.Union(g.Node(c).ResolvedBounds)
		}
		if len(children) > 0 {
			node.ResolvedBounds = union
		}
		return node.ResolvedBounds
	}
	rec(fd.RootHandle)
}

// detachChild/attachChild keep both the structural Children slice and any
// order override in sync (fd.SceneGraph.DetachChild/AttachChild) -- using
// ReorderChildren alone here would leave RemoveNode's cascade-delete (which
// walks the structural slice directly) unable to find nodes that were
// reparented via an override-only move.
func detachChild(g *fd.SceneGraph, parent, h fd.Handle) {
	g.DetachChild(parent, h)
}

func attachChild(g *fd.SceneGraph, parent, h fd.Handle) {
	g.AttachChild(parent, h)
}
