package schema

import (
	"github.com/kolah/refdoc/internal/document"
)

// Labeler computes short type descriptors like "string", "array<Pet>" or
// "enum" for parameter and body tables.
type Labeler struct {
	resolver *document.Resolver
	limits   Limits
}

// NewLabeler creates a labeler. Array nesting is capped at limits.MaxDepth.
func NewLabeler(r *document.Resolver, limits Limits) *Labeler {
	return &Labeler{resolver: r, limits: limits}
}

// Label returns the descriptor for raw. Only an unsupported reference form
// is an error; everything else degrades to a generic label.
func (l *Labeler) Label(raw any) (string, error) {
	return l.label(raw, 0)
}

func (l *Labeler) label(raw any, depth int) (string, error) {
	if depth > l.limits.MaxDepth {
		return Placeholder, nil
	}

	n := Parse(raw)

	switch {
	case n.Kind == KindEmpty:
		return TypeObject, nil
	case n.Type != "":
		if !n.KnownType() {
			return TypeString, nil
		}
		if n.Type != TypeArray {
			return n.Type, nil
		}
		inner, err := l.label(n.Items, depth+1)
		if err != nil {
			return "", err
		}
		return "array<" + inner + ">", nil
	case n.HasEnum:
		return "enum", nil
	case n.Kind == KindReference:
		target, err := Deref(l.resolver, n)
		if err != nil {
			return "", err
		}
		if target.Kind == KindEmpty {
			return TypeObject, nil
		}
		return document.RefName(n.Ref), nil
	case n.Properties != nil:
		return TypeObject, nil
	default:
		return TypeString, nil
	}
}
