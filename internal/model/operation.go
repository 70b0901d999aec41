package model

type Operation struct {
	ID          string
	Method      Method
	Path        string
	Summary     string
	Description string
	Tags        []string
	Deprecated  bool
	Parameters  []Parameter
	RequestBody *Body
	Responses   []Response
	// Security lists the alternatives of the effective requirement; each
	// alternative is the set of scheme names that must all pass.
	Security [][]string
	// SecurityDeclared is true when the operation or document declares a
	// security requirement at all, so an empty Security means anonymous.
	SecurityDeclared bool
}

type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodDelete  Method = "DELETE"
	MethodPatch   Method = "PATCH"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
	MethodTrace   Method = "TRACE"
)

// Mutating reports whether requests with this verb require an idempotency key.
func (m Method) Mutating() bool {
	switch m {
	case MethodPost, MethodPut, MethodPatch, MethodDelete:
		return true
	}
	return false
}

type ParameterLocation string

const (
	LocationPath   ParameterLocation = "path"
	LocationQuery  ParameterLocation = "query"
	LocationHeader ParameterLocation = "header"
	LocationCookie ParameterLocation = "cookie"
)

// Parameter is one row of an operation's parameter table.
type Parameter struct {
	Name        string
	In          ParameterLocation
	Type        string
	Required    bool
	Description string
}

// Body describes the JSON request body.
type Body struct {
	// SchemaName is the component name, or "inline" for inline schemas.
	SchemaName string
	Type       string
	// Example is the synthesized payload as indented JSON or YAML.
	Example string
	// JSON is the synthesized payload as indented JSON, whatever the
	// example format. Curl samples and sample checking send it.
	JSON string
	// Value is the synthesized payload before encoding.
	Value any
}

type Response struct {
	StatusCode  string
	Description string
	// SchemaName is the component name; empty for inline or missing schemas.
	SchemaName string
	Type       string
	Example    string
}

// Success reports whether the status code is in the 2xx class.
func (r Response) Success() bool {
	return len(r.StatusCode) > 0 && r.StatusCode[0] == '2'
}
