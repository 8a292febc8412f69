package schema

// Kind is the structural category of a type reference.
type Kind int

const (
	KindInvalid Kind = iota
	KindScalar
	KindObject
	KindInterface
	KindUnion
	KindEnum
	KindInputObject
	KindList
	KindNonNull
)

var kindNames = [...]string{
	KindInvalid:     "INVALID",
	KindScalar:      "SCALAR",
	KindObject:      "OBJECT",
	KindInterface:   "INTERFACE",
	KindUnion:       "UNION",
	KindEnum:        "ENUM",
	KindInputObject: "INPUT_OBJECT",
	KindList:        "LIST",
	KindNonNull:     "NON_NULL",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[KindInvalid]
	}
	return kindNames[k]
}

// IsWrapper reports whether k is LIST or NON_NULL.
func (k Kind) IsWrapper() bool { return k == KindList || k == KindNonNull }

// IsComposite reports whether values of kind k are records.
func (k Kind) IsComposite() bool {
	switch k {
	case KindObject, KindInterface, KindUnion, KindInputObject:
		return true
	}
	return false
}

func kindOfType(k TypeKind) Kind {
	switch k {
	case TypeKindScalar:
		return KindScalar
	case TypeKindObject:
		return KindObject
	case TypeKindInterface:
		return KindInterface
	case TypeKindUnion:
		return KindUnion
	case TypeKindEnum:
		return KindEnum
	case TypeKindInputObject:
		return KindInputObject
	}
	return KindInvalid
}

// KindOf classifies ref. Wrappers report their wrapper kind; named references
// report the kind of the named type, or KindInvalid when the schema does not
// define it.
func (s *Schema) KindOf(ref *TypeRef) Kind {
	if ref == nil {
		return KindInvalid
	}
	switch ref.Kind {
	case TypeRefKindNonNull:
		return KindNonNull
	case TypeRefKindList:
		return KindList
	}
	t := s.Type(ref.Named)
	if t == nil {
		return KindInvalid
	}
	return kindOfType(t.Kind)
}

// FullyUnwrap strips every wrapper and returns the named reference.
func FullyUnwrap(ref *TypeRef) *TypeRef {
	for ref != nil && ref.Kind != TypeRefKindNamed {
		ref = ref.OfType
	}
	return ref
}

// Named resolves the innermost named type of ref.
func (s *Schema) Named(ref *TypeRef) *Type {
	inner := FullyUnwrap(ref)
	if inner == nil {
		return nil
	}
	return s.Type(inner.Named)
}

// Describe names ref for messages: the named type's name, or the wrapper
// kind for LIST and NON_NULL.
func Describe(ref *TypeRef) string {
	if ref == nil {
		return kindNames[KindInvalid]
	}
	switch ref.Kind {
	case TypeRefKindNonNull:
		return KindNonNull.String()
	case TypeRefKindList:
		return KindList.String()
	}
	return ref.Named
}
