package model

// Reference is everything the renderer needs for one document.
type Reference struct {
	Info            Info
	Servers         []Server
	SecuritySchemes []SecurityScheme
	Groups          []Group
}

type Info struct {
	Title   string
	Version string
}

type Server struct {
	URL string
}

// SecurityScheme is one entry of components.securitySchemes.
type SecurityScheme struct {
	Name        string
	Type        string
	Scheme      string
	In          string
	ParamName   string
	Description string
}

// Group is the set of operations sharing a primary tag, in render order.
type Group struct {
	Name string
	// Description is the tag's description from the document, if declared.
	Description string
	Operations  []Operation
}

// OperationCount returns the number of operations across all groups.
func (r *Reference) OperationCount() int {
	n := 0
	for _, g := range r.Groups {
		n += len(g.Operations)
	}
	return n
}
