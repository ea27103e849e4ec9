package fd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/iancoleman/strcase"

	"github.com/fastdraft/fd/internal/intern"
)

// SceneNode is one node in the scene graph.
type SceneNode struct {
	Handle Handle
	ID     intern.ID
	Kind   NodeKind
	Parent Handle

	// Children in insertion order. A SceneGraph-level order override, if
	// set for this node's handle, takes precedence for layout/emit
	// purposes but Children itself is never reordered in place by reads.
	Children []Handle

	Style       Style
	UseStyles   []ThemeRef
	Constraints []Constraint
	Animations  []Animation
	Annotations []Annotation
	Edges       []*Edge // edges declared inside this node's block
	Comments    []string

	Layout   LayoutMode
	GapPx    float64
	PadPx    float64
	GridCols int

	Clip bool

	W, H       float64
	HasW, HasH bool

	ResolvedBounds Bounds

	// Unknown properties captured with their raw value text; the node is
	// still constructed, and the linter surfaces these as
	// UnknownProperty diagnostics.
	UnknownProps map[string]string
}

func (n *SceneNode) recordUnknown(key, val string) {
	if n.UnknownProps == nil {
		n.UnknownProps = make(map[string]string)
	}
	n.UnknownProps[key] = val
}

// SceneGraph is a stable, handle-indexed containment DAG. It owns an
// intern.Table, a node store, named themes, a flat edge list (edges may
// also be attached to a parent node; the top-level Edges slice holds
// only document-level edges), an import list, and per-parent child-order
// overrides.
type SceneGraph struct {
	Interner *intern.Table

	nodes      map[Handle]*SceneNode
	nextHandle Handle
	idIndex    map[intern.ID]Handle

	Themes     map[string]*Theme // key is "name" or "ns.name"
	themeOrder []string
	Edges      []*Edge
	Imports    []*Import

	childOrder map[Handle][]Handle

	kindCounters map[NodeKind]int

	// RequireSemanticIds mirrors Config.RequireSemanticIds. When set,
	// autoID stops handing out sequential "<kind>_<n>" placeholders --
	// which lint.Lint would immediately flag as anonymous -- and instead
	// mints a short, stable, non-sequential suffix, the way a caller who
	// has turned the option on is asking for.
	RequireSemanticIds bool
}

// NewSceneGraph creates an empty graph with only the synthetic root.
// A nil interner means the process-wide intern.Global table, so IDs stay
// comparable across every engine in the process; tests that want
// isolation pass their own table.
func NewSceneGraph(interner *intern.Table) *SceneGraph {
	if interner == nil {
		interner = intern.Global
	}
	g := &SceneGraph{
		Interner:     interner,
		nodes:        make(map[Handle]*SceneNode),
		idIndex:      make(map[intern.ID]Handle),
		Themes:       make(map[string]*Theme),
		childOrder:   make(map[Handle][]Handle),
		kindCounters: make(map[NodeKind]int),
		nextHandle:   RootHandle + 1,
	}
	root := &SceneNode{Handle: RootHandle, Kind: KindRoot, Parent: NoHandle}
	g.nodes[RootHandle] = root
	return g
}

// Node returns the node for a handle, or nil if it has been removed or
// never existed.
func (g *SceneGraph) Node(h Handle) *SceneNode { return g.nodes[h] }

// Root returns the synthetic root node.
func (g *SceneGraph) Root() *SceneNode { return g.nodes[RootHandle] }

// DuplicateIDError reports an insertion under an ID already present in
// the graph.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate node id %q", e.ID)
}

// InsertNode creates a node under parent. If id is empty, an ID is
// auto-generated as "<kind>_<n>" with n monotonically increasing per
// kind in source/insertion order, or as "<kind>_<8 hex chars>" taken from
// a random UUID when RequireSemanticIds is set. Returns a *DuplicateIDError if id
// collides with an existing node.
func (g *SceneGraph) InsertNode(parent Handle, kind NodeKind, id string) (Handle, error) {
	if _, ok := g.nodes[parent]; !ok {
		return NoHandle, fmt.Errorf("unknown parent handle %d", parent)
	}
	var internedID intern.ID
	if id == "" {
		internedID = g.autoID(kind)
	} else {
		internedID = g.Interner.Intern(id)
		if _, exists := g.idIndex[internedID]; exists {
			return NoHandle, &DuplicateIDError{ID: id}
		}
	}

	h := g.nextHandle
	g.nextHandle++
	node := &SceneNode{Handle: h, ID: internedID, Kind: kind, Parent: parent}
	g.nodes[h] = node
	g.idIndex[internedID] = h

	parentNode := g.nodes[parent]
	parentNode.Children = append(parentNode.Children, h)
	return h, nil
}

func (g *SceneGraph) autoID(kind NodeKind) intern.ID {
	prefix := strcase.ToSnake(kind.String())
	if g.RequireSemanticIds {
		for {
			candidate := fmt.Sprintf("%s_%s", prefix, uuid.New().String()[:8])
			id := g.Interner.Intern(candidate)
			if _, exists := g.idIndex[id]; !exists {
				return id
			}
		}
	}
	for {
		g.kindCounters[kind]++
		n := g.kindCounters[kind]
		candidate := fmt.Sprintf("%s_%d", prefix, n)
		id := g.Interner.Intern(candidate)
		if _, exists := g.idIndex[id]; !exists {
			return id
		}
	}
}

// RemoveNode deletes a node together with all of its descendants and
// detaches it from its parent's child list. Handles of nodes outside the
// removed subtree remain valid. Edges referencing a removed node become
// orphan but are not deleted, unless deleteEdges is true.
func (g *SceneGraph) RemoveNode(h Handle, deleteEdges bool) {
	node, ok := g.nodes[h]
	if !ok || h == RootHandle {
		return
	}
	// Recursively detach descendants first so every handle's bookkeeping
	// (idIndex, childOrder) is cleaned up.
	for _, c := range append([]Handle(nil), node.Children...) {
		g.RemoveNode(c, deleteEdges)
	}

	if parent, ok := g.nodes[node.Parent]; ok {
		parent.Children = removeHandle(parent.Children, h)
	}
	delete(g.childOrder, h)
	if order, ok := g.childOrder[node.Parent]; ok {
		g.childOrder[node.Parent] = removeHandle(order, h)
	}
	delete(g.idIndex, node.ID)
	delete(g.nodes, h)

	g.markOrphans(node.ID, deleteEdges)
}

func (g *SceneGraph) markOrphans(id intern.ID, delete_ bool) {
	keep := g.Edges[:0]
	for _, e := range g.Edges {
		if refsID(e, id) {
			if delete_ {
				continue
			}
			e.Orphan = true
		}
		keep = append(keep, e)
	}
	g.Edges = keep
	for _, n := range g.nodes {
		kept := n.Edges[:0]
		for _, e := range n.Edges {
			if refsID(e, id) {
				if delete_ {
					continue
				}
				e.Orphan = true
			}
			kept = append(kept, e)
		}
		n.Edges = kept
	}
}

func refsID(e *Edge, id intern.ID) bool {
	return (!e.From.IsFree && e.From.NodeID == id) || (!e.To.IsFree && e.To.NodeID == id)
}

func removeHandle(s []Handle, h Handle) []Handle {
	out := s[:0]
	for _, x := range s {
		if x != h {
			out = append(out, x)
		}
	}
	return out
}

// Children returns h's children in insertion order, unless an explicit
// order override has been set via ReorderChildren.
func (g *SceneGraph) Children(h Handle) []Handle {
	if order, ok := g.childOrder[h]; ok {
		return order
	}
	node, ok := g.nodes[h]
	if !ok {
		return nil
	}
	return node.Children
}

// DetachChild removes h from parent's structural child list and from any
// explicit order override on parent, without touching h.Parent or deleting
// h itself. Used by the mutation algebra to implement Reparent/GroupNodes/
// MoveNode's drag-out detach, which must keep the structural Children slice
// (not just the order override) consistent: RemoveNode's cascade-delete
// walks the structural slice directly.
func (g *SceneGraph) DetachChild(parent, h Handle) {
	if p := g.nodes[parent]; p != nil {
		p.Children = removeHandle(p.Children, h)
	}
	if order, ok := g.childOrder[parent]; ok {
		g.childOrder[parent] = removeHandle(order, h)
	}
}

// AttachChild appends h to parent's structural child list, and to parent's
// order override if one is set, without touching h.Parent. Pairs with
// DetachChild.
func (g *SceneGraph) AttachChild(parent, h Handle) {
	if p := g.nodes[parent]; p != nil {
		p.Children = append(p.Children, h)
	}
	if order, ok := g.childOrder[parent]; ok {
		g.childOrder[parent] = append(order, h)
	}
}

// ReorderChildren sets an explicit child order override for parent.
// newOrder must be a permutation of parent's current children; the
// override is stored at the graph level, leaving the structural slice
// untouched.
func (g *SceneGraph) ReorderChildren(parent Handle, newOrder []Handle) {
	g.childOrder[parent] = append([]Handle(nil), newOrder...)
}

// SetTheme declares or replaces a theme under key ("name" or "ns.name"),
// tracking first-declaration order so the emitter can reproduce themes
// in source order -- themes have no canonical order of their own, so
// declaration order is the only stable choice.
func (g *SceneGraph) SetTheme(key string, t *Theme) {
	if _, exists := g.Themes[key]; !exists {
		g.themeOrder = append(g.themeOrder, key)
	}
	g.Themes[key] = t
}

// ThemeOrder returns theme keys in first-declaration order.
func (g *SceneGraph) ThemeOrder() []string {
	return append([]string(nil), g.themeOrder...)
}

// FindByID resolves a node by its interned ID.
func (g *SceneGraph) FindByID(id intern.ID) (Handle, bool) {
	h, ok := g.idIndex[id]
	return h, ok
}

// FindByIDString is a convenience wrapper that interns the string first.
func (g *SceneGraph) FindByIDString(id string) (Handle, bool) {
	internedID, ok := g.Interner.Lookup(id)
	if !ok {
		return NoHandle, false
	}
	return g.FindByID(internedID)
}

// IsAncestorOf reports whether a is a (possibly indirect) ancestor of b.
func (g *SceneGraph) IsAncestorOf(a, b Handle) bool {
	cur := g.nodes[b]
	if cur == nil {
		return false
	}
	for cur.Parent != NoHandle {
		if cur.Parent == a {
			return true
		}
		cur = g.nodes[cur.Parent]
		if cur == nil {
			return false
		}
	}
	return false
}

// EffectiveTarget implements one-level selection drill-down: descending
// from the top-level ancestor toward hit, the first node that is not
// already selected is the one a click should select. Clicking a child of
// an unselected group therefore selects the group; clicking again, with
// the group now selected, selects the child. If everything down to and
// including hit is selected, hit itself is returned.
func (g *SceneGraph) EffectiveTarget(hit Handle, selected map[Handle]bool) Handle {
	node := g.nodes[hit]
	if node == nil {
		return hit
	}
	// Build the root-to-hit path, excluding the root itself.
	var path []Handle
	for cur := node; cur != nil && cur.Handle != RootHandle; cur = g.nodes[cur.Parent] {
		path = append(path, cur.Handle)
	}
	for i := len(path) - 1; i >= 0; i-- {
		if !selected[path[i]] {
			return path[i]
		}
	}
	return hit
}

// ResolveStyle computes a node's effective style: defaults, then each
// use_styles entry in order, then the inline style; last writer wins per
// property. Unresolved theme references are skipped here; the linter
// reports them separately as UnresolvedReference.
func (g *SceneGraph) ResolveStyle(h Handle) Style {
	node := g.nodes[h]
	if node == nil {
		return Style{}
	}
	var out Style
	for _, ref := range node.UseStyles {
		key := g.Interner.String(ref.Name)
		if ref.Namespace != intern.Invalid {
			key = g.Interner.String(ref.Namespace) + "." + key
		}
		if theme, ok := g.Themes[key]; ok {
			out = out.merge(theme.Style)
		}
	}
	out = out.merge(node.Style)
	return out
}

// UnresolvedThemeRefs reports every use_styles entry on h that does not
// resolve to a declared theme.
func (g *SceneGraph) UnresolvedThemeRefs(h Handle) []string {
	node := g.nodes[h]
	if node == nil {
		return nil
	}
	var out []string
	for _, ref := range node.UseStyles {
		key := g.Interner.String(ref.Name)
		if ref.Namespace != intern.Invalid {
			key = g.Interner.String(ref.Namespace) + "." + key
		}
		if _, ok := g.Themes[key]; !ok {
			out = append(out, key)
		}
	}
	return out
}

// AllHandles returns every live node handle, including the root, in no
// particular order. Useful for linting and bulk traversal.
func (g *SceneGraph) AllHandles() []Handle {
	out := make([]Handle, 0, len(g.nodes))
	for h := range g.nodes {
		out = append(out, h)
	}
	return out
}

// Walk visits every node reachable from the root, parent before
// children, in Children() order.
func (g *SceneGraph) Walk(fn func(h Handle, n *SceneNode)) {
	var rec func(h Handle)
	rec = func(h Handle) {
		n := g.nodes[h]
		if n == nil {
			return
		}
		fn(h, n)
		for _, c := range g.Children(h) {
			rec(c)
		}
	}
	rec(RootHandle)
}
