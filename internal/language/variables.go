package language

// BindVariableDefinitions links every variable reference reachable from op
// (including through fragment spreads) to its declaration in op. References
// to undeclared variables are left unlinked.
func BindVariableDefinitions(doc *QueryDocument, op *OperationDefinition) {
	if op == nil {
		return
	}
	b := &variableBinder{
		doc:     doc,
		defs:    op.VariableDefinitions,
		visited: make(map[string]bool),
	}
	b.directives(op.Directives)
	b.selectionSet(op.SelectionSet)
}

type variableBinder struct {
	doc     *QueryDocument
	defs    VariableDefinitionList
	visited map[string]bool
}

func (b *variableBinder) selectionSet(set SelectionSet) {
	for _, sel := range set {
		switch sel := sel.(type) {
		case *Field:
			for _, arg := range sel.Arguments {
				b.value(arg.Value)
			}
			b.directives(sel.Directives)
			b.selectionSet(sel.SelectionSet)
		case *InlineFragment:
			b.directives(sel.Directives)
			b.selectionSet(sel.SelectionSet)
		case *FragmentSpread:
			b.directives(sel.Directives)
			if b.doc == nil || b.visited[sel.Name] {
				continue
			}
			b.visited[sel.Name] = true
			if def := b.doc.Fragments.ForName(sel.Name); def != nil {
				b.directives(def.Directives)
				b.selectionSet(def.SelectionSet)
			}
		}
	}
}

func (b *variableBinder) directives(list DirectiveList) {
	for _, d := range list {
		for _, arg := range d.Arguments {
			b.value(arg.Value)
		}
	}
}

func (b *variableBinder) value(v *Value) {
	if v == nil {
		return
	}
	if v.Kind == Variable {
		v.VariableDefinition = b.defs.ForName(v.Raw)
		return
	}
	for _, c := range v.Children {
		b.value(c.Value)
	}
}
