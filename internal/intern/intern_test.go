package intern_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fastdraft/fd/internal/intern"
)

func TestInternReturnsSameHandle(t *testing.T) {
	tbl := intern.New()
	a := tbl.Intern("card")
	b := tbl.Intern("card")
	c := tbl.Intern("button")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, "card", tbl.String(a))
	assert.Equal(t, "button", tbl.String(c))
	assert.Equal(t, 2, tbl.Len())
}

func TestLookupDoesNotAllocate(t *testing.T) {
	tbl := intern.New()
	_, ok := tbl.Lookup("never_interned")
	assert.False(t, ok)
	assert.Equal(t, 0, tbl.Len())

	id := tbl.Intern("once")
	got, ok := tbl.Lookup("once")
	assert.True(t, ok)
	assert.Equal(t, id, got)
}

func TestZeroIDIsInvalid(t *testing.T) {
	tbl := intern.New()
	id := tbl.Intern("anything")
	assert.NotEqual(t, intern.Invalid, id)
}

// TestConcurrentIntern hammers one table from many goroutines; every
// goroutine must agree on the handle for a given string.
func TestConcurrentIntern(t *testing.T) {
	tbl := intern.New()
	words := []string{"a", "b", "c", "d", "e", "f", "g", "h"}

	var wg sync.WaitGroup
	results := make([][]intern.ID, 16)
	for i := range results {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			ids := make([]intern.ID, len(words))
			for j, w := range words {
				ids[j] = tbl.Intern(w)
			}
			results[slot] = ids
		}(i)
	}
	wg.Wait()

	for _, ids := range results[1:] {
		assert.Equal(t, results[0], ids)
	}
	assert.Equal(t, len(words), tbl.Len())
}
