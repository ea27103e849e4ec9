// Package intern provides a process-wide identifier interner:
// insert-or-get of a string returns a cheap handle; equality and
// hashing are by handle; the display string is always recoverable.
//
// A sync.RWMutex-guarded map with a read-mostly fast path. The table is
// append-only and never shrunk, so a handle, once issued, stays valid
// for the life of the process and is safe to share across goroutines.
package intern

import "sync"

// ID is a cheap, comparable handle to an interned string. The zero value
// is not a valid handle (see Invalid).
type ID uint32

// Invalid is the zero ID; no interned string ever receives it.
const Invalid ID = 0

// Table is a process-local, append-only, thread-safe interner.
type Table struct {
	mu      sync.RWMutex
	byValue map[string]ID
	byID    []string // index 0 is unused (Invalid)
}

// New creates an empty table. Handles are only comparable within the
// table that produced them; most callers share Global instead.
func New() *Table {
	return &Table{
		byValue: make(map[string]ID, 256),
		byID:    []string{""},
	}
}

// Intern returns the handle for s, allocating a new one if s has never
// been seen by this table.
func (t *Table) Intern(s string) ID {
	t.mu.RLock()
	if id, ok := t.byValue[s]; ok {
		t.mu.RUnlock()
		return id
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.byValue[s]; ok {
		return id
	}
	id := ID(len(t.byID))
	t.byID = append(t.byID, s)
	t.byValue[s] = id
	return id
}

// Lookup returns the handle for s without allocating one, and whether it
// was found.
func (t *Table) Lookup(s string) (ID, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.byValue[s]
	return id, ok
}

// String recovers the display form of an interned handle. Invalid yields
// "". An ID beyond the range this table has issued panics with an
// index-out-of-range, the same contract as indexing any other Go slice
// out of bounds.
func (t *Table) String(id ID) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.byID[id]
}

// Len reports how many distinct strings have been interned.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byID) - 1
}

// Global is the default, process-wide table. Scene graphs constructed
// without an explicit table intern against Global, so IDs remain
// comparable across every engine instance in the process; tests that
// want isolation construct their own Table via New.
var Global = New()
