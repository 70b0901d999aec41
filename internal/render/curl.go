package render

import (
	"regexp"
	"strings"

	"github.com/kolah/refdoc/internal/model"
)

const (
	idempotencyHeader = "Idempotency-Key: $(uuidgen)"
	jsonContentType   = "Content-Type: application/json"
	heredocMarker     = "JSON"
)

var pathParam = regexp.MustCompile(`\{([^}]+)\}`)

// CurlRequest is what a curl sample is built from.
type CurlRequest struct {
	Method     model.Method
	Path       string
	Parameters []model.Parameter
	// Body is the JSON payload sent through a heredoc; empty for none.
	Body string
	// AuthHeader is a full header line such as "Authorization: Bearer ${TOKEN}".
	AuthHeader string
}

// Curl renders a copy-pasteable curl invocation against $BASE_URL.
// Only required query parameters are included.
func Curl(req CurlRequest) string {
	url := "$BASE_URL" + req.Target()

	lines := []string{`curl -X ` + string(req.Method) + ` "` + url + `"`}

	var headers []string
	if req.AuthHeader != "" {
		headers = append(headers, req.AuthHeader)
	}
	if req.Method.Mutating() {
		headers = append(headers, idempotencyHeader)
	}
	if req.Body != "" {
		headers = append(headers, jsonContentType)
	}
	for _, h := range headers {
		lines = append(lines, `-H "`+h+`"`)
	}
	if req.Body != "" {
		lines = append(lines, "-d @- <<'"+heredocMarker+"'")
	}

	out := strings.Join(lines, " \\\n  ")
	if req.Body != "" {
		out += "\n" + req.Body + "\n" + heredocMarker
	}
	return out
}

// Target is the request path with sample values substituted, plus the
// required query parameters.
func (req CurlRequest) Target() string {
	return SubstitutePath(req.Path) + queryString(req.Parameters)
}

func queryString(params []model.Parameter) string {
	var pairs []string
	for _, p := range params {
		if p.In != model.LocationQuery || !p.Required {
			continue
		}
		pairs = append(pairs, p.Name+"="+SampleValue(p.Name))
	}
	if len(pairs) == 0 {
		return ""
	}
	return "?" + strings.Join(pairs, "&")
}

// SampleValue returns a readable placeholder for a parameter named name.
func SampleValue(name string) string {
	if strings.HasSuffix(name, "Id") {
		slug := strings.TrimSuffix(name, "Id")
		if slug == "" {
			slug = name
		}
		return strings.ToLower(slug) + "_id"
	}
	switch name {
	case "pageSize", "limit":
		return "20"
	case "pageToken", "cursor":
		return "next-token"
	case "lang":
		return "ja"
	case "since":
		return "2024-01-01T00:00:00Z"
	}
	if name == "" {
		return "value"
	}
	return strings.ToLower(name)
}

// SubstitutePath replaces every {param} template in path with its sample value.
func SubstitutePath(path string) string {
	return pathParam.ReplaceAllStringFunc(path, func(m string) string {
		return SampleValue(m[1 : len(m)-1])
	})
}
