package ast

// BlockView is the facade transform handlers operate on. It exposes selector
// and declaration access only - tree structure and source locations stay out
// of reach so handlers cannot detach or reparent nodes.
type BlockView interface {
	// HasChildren reports whether the block has nested blocks.
	HasChildren() bool

	// Selectors returns a copy of the block's selector list.
	Selectors() []string
	// SetSelectors replaces the selector list wholesale. The slice is
	// copied in. No validation is performed - a handler can introduce
	// selectors the renderer will later reject.
	SetSelectors(selectors []string)

	// HasProperty reports whether at least one declaration with the given
	// name exists.
	HasProperty(name string) bool
	// Property returns the value of the first declaration with the given
	// name.
	Property(name string) (string, bool)
	// Properties returns a snapshot copy of all declarations in order.
	Properties() []Property
	// SetProperties replaces the declaration list wholesale. The slice is
	// copied in. Duplicate names are legal, order is preserved as given.
	SetProperties(props []Property)
	// SetProperty updates the first declaration with the given name, or
	// appends a new one when none exists.
	SetProperty(name, value string)
	// RemoveProperty removes every declaration with the given name.
	RemoveProperty(name string)
}

type blockView struct {
	b *Block
}

// View wraps a block for handler consumption. All mutations go straight to
// the underlying block.
func View(b *Block) BlockView {
	return &blockView{b: b}
}

func (v *blockView) HasChildren() bool {
	return len(v.b.Children) > 0
}

func (v *blockView) Selectors() []string {
	out := make([]string, len(v.b.Selectors))
	copy(out, v.b.Selectors)
	return out
}

func (v *blockView) SetSelectors(selectors []string) {
	out := make([]string, len(selectors))
	copy(out, selectors)
	v.b.Selectors = out
}

func (v *blockView) HasProperty(name string) bool {
	_, ok := v.Property(name)
	return ok
}

func (v *blockView) Property(name string) (string, bool) {
	for _, p := range v.b.Properties {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

func (v *blockView) Properties() []Property {
	out := make([]Property, len(v.b.Properties))
	copy(out, v.b.Properties)
	return out
}

func (v *blockView) SetProperties(props []Property) {
	out := make([]Property, len(props))
	copy(out, props)
	v.b.Properties = out
}

func (v *blockView) SetProperty(name, value string) {
	for i, p := range v.b.Properties {
		if p.Name == name {
			v.b.Properties[i].Value = value
			return
		}
	}
	v.b.Properties = append(v.b.Properties, Property{Name: name, Value: value})
}

func (v *blockView) RemoveProperty(name string) {
	kept := v.b.Properties[:0]
	for _, p := range v.b.Properties {
		if p.Name != name {
			kept = append(kept, p)
		}
	}
	v.b.Properties = kept
}
