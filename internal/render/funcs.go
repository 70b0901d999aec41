package render

import (
	"strings"
	"text/template"

	"github.com/kolah/refdoc/internal/model"
)

func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"cell":          Cell,
		"yesNo":         yesNo,
		"errorCodes":    errorCodes,
		"schemeDetails": schemeDetails,
		"lower":         strings.ToLower,
		"upper":         strings.ToUpper,
		"join":          strings.Join,
	}
}

// Cell makes s safe inside a markdown table cell.
func Cell(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.TrimSpace(s)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func errorCodes(responses []model.Response) string {
	parts := make([]string, 0, len(responses))
	for _, r := range responses {
		part := "`" + r.StatusCode + "`"
		if r.Description != "" {
			part += " " + r.Description
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ", ")
}

func schemeDetails(s model.SecurityScheme) string {
	var parts []string
	if s.Scheme != "" {
		parts = append(parts, "scheme `"+s.Scheme+"`")
	}
	if s.In != "" {
		parts = append(parts, "`"+s.ParamName+"` in "+s.In)
	}
	if s.Description != "" {
		parts = append(parts, Cell(s.Description))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, "; ")
}

// describeSecurity renders the alternatives of a requirement,
// e.g. "bearer or apiKey + tenant". An empty requirement that was declared
// on purpose ("security: []") is called out as such.
func describeSecurity(security [][]string, declared bool) string {
	if len(security) == 0 {
		if declared {
			return "None (explicitly anonymous)"
		}
		return "None"
	}
	options := make([]string, 0, len(security))
	for _, alt := range security {
		if len(alt) == 0 {
			options = append(options, "None")
			continue
		}
		options = append(options, strings.Join(alt, " + "))
	}
	return strings.Join(options, " or ")
}

// anonymous reports whether a request without credentials satisfies security.
func anonymous(security [][]string) bool {
	if len(security) == 0 {
		return true
	}
	for _, alt := range security {
		if len(alt) == 0 {
			return true
		}
	}
	return false
}

func idempotency(m model.Method) string {
	if m.Mutating() {
		return "Required via `Idempotency-Key` header."
	}
	return "Not required (safe verb)."
}
