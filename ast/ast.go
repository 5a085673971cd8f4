// Package ast defines the block tree produced by the parser and consumed by
// the transformer and the renderer.
package ast

import "strings"

// Position is a 1-based location in the source text.
type Position struct {
	Line   int
	Column int
}

// Location records where a block was opened and, once the closing brace has
// been seen, where it was closed. End stays nil for blocks that never closed
// (the parser reports those as errors before the tree escapes).
type Location struct {
	Start Position
	End   *Position
}

// Property is a single declaration. Duplicate names are allowed and order is
// preserved - lookups resolve to the first match.
type Property struct {
	Name  string
	Value string
}

// Block is one node of the tree: one or more selectors (or exactly one
// at-rule prelude), ordered declarations and owned children.
type Block struct {
	Selectors  []string
	Properties []Property
	Children   []*Block
	Loc        *Location
}

// IsAtRule reports whether the block is an at-rule (first selector starts
// with '@').
func (b *Block) IsAtRule() bool {
	return len(b.Selectors) > 0 && strings.HasPrefix(b.Selectors[0], "@")
}

// AppendChild attaches child to b, transferring ownership.
func (b *Block) AppendChild(child *Block) {
	b.Children = append(b.Children, child)
}

// StartLine returns the 1-based line the block was opened on, or 0 when no
// location was recorded (blocks constructed by hand in transforms or tests).
func (b *Block) StartLine() int {
	if b.Loc == nil {
		return 0
	}
	return b.Loc.Start.Line
}

// Tree is an ordered forest of root-level blocks.
type Tree struct {
	Blocks []*Block
}

// Append adds a root-level block to the tree.
func (t *Tree) Append(b *Block) {
	t.Blocks = append(t.Blocks, b)
}
