// Package syncengine owns the single authoritative SceneGraph for a
// document and serializes every mutation through one goroutine's worth
// of call stack. There are no locks and no concurrency beyond the
// shared append-only intern table.
package syncengine

import (
	"fmt"

	"github.com/fastdraft/fd/internal/fd"
	"github.com/fastdraft/fd/internal/handler"
	"github.com/fastdraft/fd/internal/intern"
	"github.com/fastdraft/fd/internal/mutate"
)

// Engine owns one SceneGraph and its undo/redo history. It is not safe
// for concurrent use: exactly one owner at a time holds the engine, and
// callers serialize access themselves.
type Engine struct {
	graph *fd.SceneGraph

	undoStack []snapshot
	redoStack []snapshot

	batchActive bool
	batchPre    string

	selected map[fd.Handle]bool

	requireSemanticIds bool
}

type snapshot struct {
	text  string
	label string
}

// New creates an engine with an empty document.
func New() *Engine {
	return &Engine{graph: fd.NewSceneGraph(nil), selected: make(map[fd.Handle]bool)}
}

// SetRequireSemanticIds mirrors Config.RequireSemanticIds onto the live
// graph and every graph SetText subsequently swaps in, so an embedder
// who has turned the option on keeps getting non-sequential synthetic
// IDs across a full edit session rather than just its first document.
func (e *Engine) SetRequireSemanticIds(v bool) {
	e.requireSemanticIds = v
	e.graph.RequireSemanticIds = v
}

// SetText replaces the whole document from source text. It is atomic:
// on a parse that produces errors the engine's prior graph is left
// untouched and the diagnostics are returned.
func (e *Engine) SetText(text string) *handler.Handler {
	g, h := e.parse(text)
	if h.HasErrors() {
		return h
	}
	e.graph = g
	e.undoStack = nil
	e.redoStack = nil
	e.selected = make(map[fd.Handle]bool)
	return h
}

// parse builds a fresh graph carrying the engine's settings. The
// RequireSemanticIds flag must be set before parsing starts, since
// auto-generated IDs are minted while nodes are inserted.
func (e *Engine) parse(text string) (*fd.SceneGraph, *handler.Handler) {
	g := fd.NewSceneGraph(nil)
	g.RequireSemanticIds = e.requireSemanticIds
	return g, fd.ParseDocument(text, g)
}

// Graph exposes the live graph for read-only operations (layout solves,
// emitters, lints). Callers must not mutate it directly; use
// ApplyMutation so undo/redo and batching stay consistent.
func (e *Engine) Graph() *fd.SceneGraph { return e.graph }

// FlushToText serializes the current graph to canonical .fd text. The
// operation is infallible: a valid in-memory graph always has a valid
// textual form.
func (e *Engine) FlushToText() string {
	return fd.Emit(e.graph)
}

// MutationFunc performs one edit against g and returns its inverse,
// matching the signature every internal/mutate function shares.
type MutationFunc func(g *fd.SceneGraph) (mutate.Mutation, error)

// ApplyMutation runs fn against the live graph. On failure the graph is
// left exactly as it was (every mutate.* function validates before
// mutating, so a returned error never leaves partial state) and the
// first precondition failure is returned.
//
// When no batch is open, the edit is pushed directly onto the undo
// stack as a single-step snapshot. Inside a batch, snapshots are
// deferred to EndBatch, so per-frame drag mutations never pay for an
// intermediate emit.
func (e *Engine) ApplyMutation(label string, fn MutationFunc) error {
	var pre string
	if !e.batchActive {
		pre = fd.Emit(e.graph)
	}
	_, err := fn(e.graph)
	if err != nil {
		return err
	}
	if !e.batchActive {
		e.pushUndo(pre, label)
		e.redoStack = nil
	}
	return nil
}

// BeginBatch opens a batch scope. Mutations applied while a batch is
// open are coalesced into a single undo step on EndBatch, snapshotted
// by full text rather than by chaining each step's individual inverse:
// a multi-hundred-step drag produces one undo entry, not hundreds.
func (e *Engine) BeginBatch() error {
	if e.batchActive {
		return fmt.Errorf("syncengine: batch already open")
	}
	e.batchActive = true
	e.batchPre = fd.Emit(e.graph)
	return nil
}

// EndBatch closes a batch scope and finalizes group bounds. Parent
// group bounds are not expanded while a child is still moving inside
// it, only once the gesture completes, so a drag that briefly
// overshoots the group edge doesn't make the group visibly balloon and
// shrink back on every frame.
func (e *Engine) EndBatch(label string) error {
	if !e.batchActive {
		return fmt.Errorf("syncengine: no batch open")
	}
	e.batchActive = false
	mutate.FinalizeChildBounds(e.graph)
	e.pushUndo(e.batchPre, label)
	e.redoStack = nil
	e.batchPre = ""
	return nil
}

func (e *Engine) pushUndo(preText, label string) {
	e.undoStack = append(e.undoStack, snapshot{text: preText, label: label})
}

// Undo restores the graph to its state before the most recent undo
// step, if any.
func (e *Engine) Undo() (bool, error) {
	if len(e.undoStack) == 0 {
		return false, nil
	}
	cur := fd.Emit(e.graph)
	top := e.undoStack[len(e.undoStack)-1]
	e.undoStack = e.undoStack[:len(e.undoStack)-1]

	g, h := e.parse(top.text)
	if h.HasErrors() {
		return false, fmt.Errorf("syncengine: undo snapshot failed to reparse")
	}
	e.graph = g
	e.redoStack = append(e.redoStack, snapshot{text: cur, label: top.label})
	return true, nil
}

// Redo re-applies the most recently undone step, if any.
func (e *Engine) Redo() (bool, error) {
	if len(e.redoStack) == 0 {
		return false, nil
	}
	cur := fd.Emit(e.graph)
	top := e.redoStack[len(e.redoStack)-1]
	e.redoStack = e.redoStack[:len(e.redoStack)-1]

	g, h := e.parse(top.text)
	if h.HasErrors() {
		return false, fmt.Errorf("syncengine: redo snapshot failed to reparse")
	}
	e.graph = g
	e.undoStack = append(e.undoStack, snapshot{text: cur, label: top.label})
	return true, nil
}

// Select replaces the current selection set.
func (e *Engine) Select(handles []fd.Handle) {
	e.selected = make(map[fd.Handle]bool, len(handles))
	for _, h := range handles {
		e.selected[h] = true
	}
}

// Selection returns the currently selected handles.
func (e *Engine) Selection() []fd.Handle {
	out := make([]fd.Handle, 0, len(e.selected))
	for h := range e.selected {
		out = append(out, h)
	}
	return out
}

// EffectiveTarget implements the "drill down one level" hit-test rule:
// clicking inside an already-selected group selects its child under the
// cursor, not the group again, while a click on an unselected subtree
// still lands on its outermost group.
func (e *Engine) EffectiveTarget(hit fd.Handle) fd.Handle {
	return e.graph.EffectiveTarget(hit, e.selected)
}

// InternString is a convenience passthrough for callers building
// mutate.* arguments that need interned IDs (e.g. CenterIn targets).
func (e *Engine) InternString(s string) intern.ID {
	return e.graph.Interner.Intern(s)
}
