package schema

// Default traversal bounds.
const (
	DefaultMaxDepth         = 3
	DefaultMaxProperties    = 5
	DefaultMaxReferenceHops = 16
)

// Placeholder stands in for any value cut off by a traversal bound.
const Placeholder = "..."

// Limits bound example synthesis and labeling. The depth bound is the only
// protection against self-referential schemas, so every recursive path
// checks it.
type Limits struct {
	// MaxDepth is the deepest nesting level that is still expanded.
	MaxDepth int
	// MaxProperties caps optional properties per synthesized object.
	// Required properties are always included.
	MaxProperties int
	// MaxReferenceHops caps consecutive reference dereferences that do not
	// descend a level, which would otherwise loop on "A: {$ref: A}".
	MaxReferenceHops int
}

// DefaultLimits returns the production bounds.
func DefaultLimits() Limits {
	return Limits{
		MaxDepth:         DefaultMaxDepth,
		MaxProperties:    DefaultMaxProperties,
		MaxReferenceHops: DefaultMaxReferenceHops,
	}
}
