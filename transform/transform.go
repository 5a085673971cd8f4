// Package transform applies caller-supplied handlers to every block of a
// tree, in pre-order, mutating the tree in place.
package transform

import (
	"fmt"

	"cssn/ast"
)

// Handler mutates a single block through its view. Handlers run in the order
// given and may rely on each other's side effects - ordering is a caller
// contract, not arbitrated here.
type Handler func(ast.BlockView) error

// Apply walks the tree pre-order and applies every handler to each block
// before descending into its children, so a handler never sees a child ahead
// of its ancestor. The first handler error aborts the walk, wrapped with the
// block's start line when one was recorded.
func Apply(tree *ast.Tree, handlers []Handler) error {
	for _, blk := range tree.Blocks {
		if err := applyBlock(blk, handlers); err != nil {
			return err
		}
	}
	return nil
}

func applyBlock(blk *ast.Block, handlers []Handler) error {
	view := ast.View(blk)
	for _, h := range handlers {
		if err := h(view); err != nil {
			if line := blk.StartLine(); line > 0 {
				return fmt.Errorf("transforming block at line %d: %w", line, err)
			}
			return fmt.Errorf("transforming block: %w", err)
		}
	}
	for _, child := range blk.Children {
		if err := applyBlock(child, handlers); err != nil {
			return err
		}
	}
	return nil
}
