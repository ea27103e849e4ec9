// Package fd implements the core of the Fast Draft engine: the scene
// graph data model, the .fd tokenizer and parser, and the canonical
// emitter.
//
// The package tokenizes line-oriented .fd source into a handle-indexed
// SceneGraph (nodes, themes, constraints, animations, edges, imports)
// and prints it back out structurally, so that parse and emit form a
// fixed point after one normalization pass. Handles survive deletion of
// other nodes, which is what lets mutation layers hold references
// across arbitrary edits.
package fd
