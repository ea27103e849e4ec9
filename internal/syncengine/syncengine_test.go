package syncengine_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fastdraft/fd/internal/fd"
	"github.com/fastdraft/fd/internal/fdtest"
	"github.com/fastdraft/fd/internal/loc"
	"github.com/fastdraft/fd/internal/mutate"
	"github.com/fastdraft/fd/internal/syncengine"
)

func TestSetTextIsAtomicOnParseError(t *testing.T) {
	e := syncengine.New()
	h := e.SetText(fdtest.Dedent(`
		rect @r { w: 10 h: 10 }
	`))
	assert.False(t, h.HasErrors())
	before := e.FlushToText()

	// An unclosed brace is a structural ParseError; the engine's prior
	// graph must be left untouched.
	bad := e.SetText("rect @r2 { w: 10")
	assert.True(t, bad.HasErrors())
	assert.Equal(t, before, e.FlushToText())
}

// TestSetTextRejectsDuplicateIds: a duplicate node id is a hard parse
// error, and no partial graph reaches the engine.
func TestSetTextRejectsDuplicateIds(t *testing.T) {
	e := syncengine.New()
	h := e.SetText("rect @a { w: 1 h: 1 }")
	assert.False(t, h.HasErrors())
	before := e.FlushToText()

	bad := e.SetText("rect @a { w: 1 h: 1 }\nrect @a { w: 2 h: 2 }")
	assert.True(t, bad.HasErrors())

	var sawDup bool
	for _, d := range bad.Diagnostics() {
		if d.Code == loc.DuplicateId {
			sawDup = true
			assert.NotNil(t, d.Location)
			assert.Equal(t, 2, d.Location.Line, "error points at the second occurrence")
		}
	}
	assert.True(t, sawDup, "expected a DuplicateId diagnostic")
	assert.Equal(t, before, e.FlushToText())
}

// TestBatchUndoIsAtomic: 40 successive MoveNode mutations inside one
// batch, undone as a single step, must restore the pre-batch text
// exactly.
func TestBatchUndoIsAtomic(t *testing.T) {
	e := syncengine.New()
	h := e.SetText(fdtest.Dedent(`
		rect @r {
			w: 10
			h: 10
		}
	`))
	assert.False(t, h.HasErrors())
	preBatchText := e.FlushToText()

	assert.NoError(t, e.BeginBatch())
	rh, ok := e.Graph().FindByIDString("r")
	assert.True(t, ok)
	for i := 0; i < 40; i++ {
		err := e.ApplyMutation("MoveNode", func(g *fd.SceneGraph) (mutate.Mutation, error) {
			return mutate.MoveNode(g, rh, 1, 0)
		})
		assert.NoError(t, err)
	}
	assert.NoError(t, e.EndBatch("drag"))

	ok2, err := e.Undo()
	assert.NoError(t, err)
	assert.True(t, ok2)
	assert.Equal(t, preBatchText, e.FlushToText())
}

func TestUndoRedoRoundTrip(t *testing.T) {
	e := syncengine.New()
	h := e.SetText(fdtest.Dedent(`
		rect @r { w: 10 h: 10 }
	`))
	assert.False(t, h.HasErrors())
	rh, _ := e.Graph().FindByIDString("r")

	err := e.ApplyMutation("Resize", func(g *fd.SceneGraph) (mutate.Mutation, error) {
		return mutate.ResizeNode(g, rh, 99, 99)
	})
	assert.NoError(t, err)
	afterResize := e.FlushToText()

	ok, err := e.Undo()
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.NotEqual(t, afterResize, e.FlushToText())

	ok, err = e.Redo()
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, afterResize, e.FlushToText())
}

func TestApplyMutationLeavesGraphUnchangedOnFailure(t *testing.T) {
	e := syncengine.New()
	h := e.SetText(fdtest.Dedent(`
		rect @a { w: 10 h: 10 }
	`))
	assert.False(t, h.HasErrors())
	before := e.FlushToText()

	err := e.ApplyMutation("Reparent", func(g *fd.SceneGraph) (mutate.Mutation, error) {
		ah, _ := g.FindByIDString("a")
		return mutate.Reparent(g, ah, ah) // cycle: reparenting under itself
	})
	assert.Error(t, err)
	assert.Equal(t, before, e.FlushToText())
}

// TestRequireSemanticIdsYieldsNonSequentialAutoIDs covers the
// require_semantic_ids config option: once set, new anonymous nodes
// stop getting "<kind>_<n>" placeholders and get a stable,
// non-sequential suffix instead.
func TestRequireSemanticIdsYieldsNonSequentialAutoIDs(t *testing.T) {
	e := syncengine.New()
	e.SetRequireSemanticIds(true)
	h := e.SetText(fdtest.Dedent(`
		rect { w: 10 h: 10 }
	`))
	assert.False(t, h.HasErrors())

	var gotID string
	for _, ch := range e.Graph().Children(fd.RootHandle) {
		n := e.Graph().Node(ch)
		gotID = e.Graph().Interner.String(n.ID)
	}
	assert.True(t, strings.HasPrefix(gotID, "rect_"))
	assert.NotEqual(t, "rect_1", gotID, "sequential placeholder must not be used")
	assert.Len(t, gotID, len("rect_")+8)
}

func TestEffectiveTargetDrillsDownOneLevel(t *testing.T) {
	e := syncengine.New()
	h := e.SetText(fdtest.Dedent(`
		group @g {
			rect @c { w: 10 h: 10 }
		}
	`))
	assert.False(t, h.HasErrors())
	gh, _ := e.Graph().FindByIDString("g")
	ch, _ := e.Graph().FindByIDString("c")

	// Nothing selected yet: hitting the child selects the group itself.
	assert.Equal(t, gh, e.EffectiveTarget(ch))

	e.Select([]fd.Handle{gh})
	assert.Equal(t, ch, e.EffectiveTarget(ch))
}
