package plugin

import (
	"sort"
	"strings"

	"cssn/ast"
	"cssn/transform"
)

// Variables returns a transform handler implementing simple substitution
// variables. A declaration whose name starts with '!' defines a variable;
// occurrences of that name in later property values are replaced with the
// defined text and the defining declarations are removed. The transformer
// walks pre-order, so definitions are visible to the rest of the block and
// to everything after it.
//
// The handler carries the definition table, so it must not be shared between
// pipelines.
func Variables() transform.Handler {
	defs := make(map[string]string)

	return func(blk ast.BlockView) error {
		props := blk.Properties()

		changed := false
		for _, p := range props {
			if strings.HasPrefix(p.Name, "!") {
				defs[p.Name] = p.Value
				changed = true
			}
		}
		if len(defs) == 0 {
			return nil
		}

		// Longer names first so "!col" never clobbers "!color".
		names := make([]string, 0, len(defs))
		for name := range defs {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })

		// Rebuild the list positionally. Duplicate names are legal and
		// name-keyed updates would always hit the first declaration,
		// not the one holding the reference.
		kept := make([]ast.Property, 0, len(props))
		for _, p := range props {
			if strings.HasPrefix(p.Name, "!") {
				continue
			}
			value := p.Value
			for _, name := range names {
				value = strings.ReplaceAll(value, name, defs[name])
			}
			if value != p.Value {
				changed = true
			}
			kept = append(kept, ast.Property{Name: p.Name, Value: value})
		}
		if changed {
			blk.SetProperties(kept)
		}
		return nil
	}
}
