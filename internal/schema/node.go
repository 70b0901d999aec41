// Package schema turns raw schema positions of a document into typed nodes,
// labels them for tables and synthesizes example payloads from them.
package schema

import (
	"github.com/kolah/refdoc/internal/document"
)

// Kind is the closed set of shapes a schema position can take.
type Kind int

const (
	KindEmpty Kind = iota
	KindReference
	KindPrimitive
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindReference:
		return "reference"
	case KindPrimitive:
		return "primitive"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "empty"
	}
}

// Type names recognized in the "type" keyword.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeArray   = "array"
	TypeObject  = "object"
	TypeNull    = "null"
)

var knownTypes = map[string]bool{
	TypeString:  true,
	TypeNumber:  true,
	TypeInteger: true,
	TypeBoolean: true,
	TypeArray:   true,
	TypeObject:  true,
	TypeNull:    true,
}

// Node is a parsed schema position.
type Node struct {
	Kind Kind

	// Ref is set for KindReference.
	Ref string

	// Type is the effective declared type after null filtering, verbatim.
	// It may be a string this package does not recognize.
	Type   string
	Format string
	Title  string

	Enum       []any
	HasEnum    bool
	Example    any
	HasExample bool

	Properties *document.Map
	Required   []string
	// AdditionalProperties is the raw schema for map values; nil when the
	// keyword is absent or boolean.
	AdditionalProperties any

	Items    any
	HasItems bool
}

// KnownType reports whether n declares a type this package recognizes.
func (n Node) KnownType() bool {
	return knownTypes[n.Type]
}

// Parse classifies raw into a Node without following references.
func Parse(raw any) Node {
	m, ok := raw.(*document.Map)
	if !ok || m.Len() == 0 {
		return Node{Kind: KindEmpty}
	}

	if ref, ok := document.RefOf(m); ok {
		return Node{Kind: KindReference, Ref: ref}
	}

	n := Node{
		Type:     effectiveType(m),
		Format:   m.String("format"),
		Title:    m.String("title"),
		Required: stringSlice(m.Slice("required")),
	}

	if v, ok := m.Get("example"); ok {
		n.Example, n.HasExample = v, true
	} else if examples := m.Slice("examples"); len(examples) > 0 {
		n.Example, n.HasExample = examples[0], true
	}

	if enum, ok := m.Get("enum"); ok {
		n.Enum, _ = enum.([]any)
		n.HasEnum = true
	}

	n.Properties = m.Map("properties")

	if ap := m.Map("additionalProperties"); ap != nil {
		n.AdditionalProperties = ap
	}

	if items, ok := m.Get("items"); ok {
		n.Items, n.HasItems = items, true
	}

	switch {
	case n.Type == TypeArray:
		n.Kind = KindArray
	case n.Type == TypeObject, n.Type == "" && n.Properties != nil:
		n.Kind = KindObject
	default:
		n.Kind = KindPrimitive
	}

	return n
}

// effectiveType reads "type" as a string or as a list, where the first
// non-null member wins and an all-null list falls back to its first entry.
func effectiveType(m *document.Map) string {
	v, ok := m.Get("type")
	if !ok {
		return ""
	}

	switch typed := v.(type) {
	case string:
		return typed
	case []any:
		types := stringSlice(typed)
		for _, t := range types {
			if t != TypeNull {
				return t
			}
		}
		if len(types) > 0 {
			return types[0]
		}
	}
	return ""
}

func stringSlice(values []any) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Normalize parses raw, following one level of reference. An unresolvable
// target becomes the empty descriptor; a target that is itself a reference
// is returned as KindReference for the caller to normalize again.
func Normalize(r *document.Resolver, raw any) (Node, error) {
	return Deref(r, Parse(raw))
}

// Deref follows n one level when it is a reference and returns any other
// node unchanged.
func Deref(r *document.Resolver, n Node) (Node, error) {
	if n.Kind != KindReference {
		return n, nil
	}

	target, err := r.Resolve(n.Ref)
	if err != nil {
		return Node{}, err
	}
	return Parse(target), nil
}
