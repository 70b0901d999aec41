package schema

import (
	"github.com/google/uuid"

	"github.com/kolah/refdoc/internal/document"
)

// additionalPropertiesKey names the single entry shown for map-shaped objects.
const additionalPropertiesKey = "key"

// Representative literals for scalar types and string formats. They
// illustrate shape only and ignore every validation keyword.
const (
	exampleInteger  = 123
	exampleNumber   = 12.34
	exampleBoolean  = true
	exampleString   = "string"
	exampleDateTime = "2024-01-01T00:00:00Z"
	exampleDate     = "2024-01-01"
	exampleURI      = "https://example.com/resource"
	exampleEmail    = "user@example.com"
)

// Synthesizer builds bounded, deterministic example values from schemas.
// Objects come back as *document.Map so encoders keep property order.
type Synthesizer struct {
	resolver *document.Resolver
	limits   Limits
}

// NewSynthesizer creates a synthesizer bounded by limits.
func NewSynthesizer(r *document.Resolver, limits Limits) *Synthesizer {
	return &Synthesizer{resolver: r, limits: limits}
}

// Synthesize returns an example for raw at the given nesting depth; callers
// start at depth 0.
func (s *Synthesizer) Synthesize(raw any, depth int) (any, error) {
	return s.build(raw, depth)
}

func (s *Synthesizer) build(raw any, depth int) (any, error) {
	if depth > s.limits.MaxDepth {
		return Placeholder, nil
	}

	// Dereferencing does not descend a level, so chains are bounded by hops.
	n := Parse(raw)
	for hops := 0; n.Kind == KindReference; hops++ {
		if hops >= s.limits.MaxReferenceHops {
			return Placeholder, nil
		}
		var err error
		if n, err = Deref(s.resolver, n); err != nil {
			return nil, err
		}
	}

	if n.HasExample {
		return n.Example, nil
	}
	if n.HasEnum && len(n.Enum) > 0 {
		return n.Enum[0], nil
	}

	switch n.Kind {
	case KindEmpty:
		return document.NewMap(), nil
	case KindObject:
		return s.object(n, depth)
	case KindArray:
		return s.array(n, depth)
	}

	switch n.Type {
	case TypeInteger:
		return exampleInteger, nil
	case TypeNumber:
		return exampleNumber, nil
	case TypeBoolean:
		return exampleBoolean, nil
	case TypeNull:
		return nil, nil
	}

	return stringExample(n), nil
}

func (s *Synthesizer) object(n Node, depth int) (any, error) {
	out := document.NewMap()

	add := func(name string) error {
		v, err := s.build(property(n.Properties, name), depth+1)
		if err != nil {
			return err
		}
		out.Set(name, v)
		return nil
	}

	for _, name := range n.Required {
		if !n.Properties.Has(name) || out.Has(name) {
			continue
		}
		if err := add(name); err != nil {
			return nil, err
		}
	}

	for _, name := range n.Properties.Keys() {
		if out.Len() >= s.limits.MaxProperties {
			break
		}
		if out.Has(name) {
			continue
		}
		if err := add(name); err != nil {
			return nil, err
		}
	}

	if n.Properties.Len() == 0 && n.AdditionalProperties != nil {
		v, err := s.build(n.AdditionalProperties, depth+1)
		if err != nil {
			return nil, err
		}
		out.Set(additionalPropertiesKey, v)
	}

	return out, nil
}

func (s *Synthesizer) array(n Node, depth int) (any, error) {
	items := n.Items
	if !n.HasItems {
		items = bareString()
	}

	v, err := s.build(items, depth+1)
	if err != nil {
		return nil, err
	}
	return []any{v}, nil
}

func stringExample(n Node) any {
	switch n.Format {
	case "date-time":
		return exampleDateTime
	case "date":
		return exampleDate
	case "uri", "url":
		return exampleURI
	case "email":
		return exampleEmail
	case "uuid":
		seed := n.Title
		if seed == "" {
			seed = "example"
		}
		return uuid.NewSHA1(uuid.NameSpaceURL, []byte(seed)).String()
	}

	if n.Title != "" {
		return n.Title
	}
	return exampleString
}

func bareString() *document.Map {
	m := document.NewMap()
	m.Set("type", TypeString)
	return m
}

func property(m *document.Map, key string) any {
	v, _ := m.Get(key)
	return v
}
