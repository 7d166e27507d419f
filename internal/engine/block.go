// Package engine is a minimal host for a damper node: it holds the node's
// data block, caches evaluated frames and feeds parameter changes through the
// node's invalidation describer.
package engine

import "damper/internal/damper"

// MemoryBlock is an in-memory damper.Block. Every slot carries a value and a
// clean flag.
type MemoryBlock struct {
	values map[damper.ParamID]damper.Value
	clean  map[damper.ParamID]bool
}

// NewMemoryBlock seeds every input with its schema default, clean.
// Outputs start dirty until the node computes them.
func NewMemoryBlock(schema *damper.Schema) *MemoryBlock {
	b := &MemoryBlock{
		values: make(map[damper.ParamID]damper.Value),
		clean:  make(map[damper.ParamID]bool),
	}
	for _, d := range schema.Descriptors() {
		b.values[d.ID] = d.Default
		b.clean[d.ID] = d.Writable
	}
	return b
}

// Get implements damper.Block.
func (b *MemoryBlock) Get(id damper.ParamID) (damper.Value, bool) {
	v, ok := b.values[id]
	return v, ok && b.clean[id]
}

// Set implements damper.Block. It does not change the clean flag.
func (b *MemoryBlock) Set(id damper.ParamID, v damper.Value) {
	b.values[id] = v
}

// MarkClean implements damper.Block.
func (b *MemoryBlock) MarkClean(id damper.ParamID) {
	b.clean[id] = true
}

// Assign stores an input value and marks it clean.
func (b *MemoryBlock) Assign(id damper.ParamID, v damper.Value) {
	b.values[id] = v
	b.clean[id] = true
}

// Dirty marks id stale.
func (b *MemoryBlock) Dirty(id damper.ParamID) {
	b.clean[id] = false
}

// Peek returns the stored value regardless of its clean flag.
func (b *MemoryBlock) Peek(id damper.ParamID) (damper.Value, bool) {
	v, ok := b.values[id]
	return v, ok
}

// IsClean reports the clean flag of id.
func (b *MemoryBlock) IsClean(id damper.ParamID) bool {
	return b.clean[id]
}
