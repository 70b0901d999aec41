// Package render turns reference records into a markdown document.
package render

import (
	"cmp"
	"fmt"
	"regexp"
	"strings"

	"github.com/kolah/refdoc/internal/config"
	"github.com/kolah/refdoc/internal/model"
	"github.com/kolah/refdoc/internal/templates"
)

const (
	templateName = "markdown/reference.tmpl"

	// DefaultAuthHeader is sent by curl samples of authenticated operations.
	DefaultAuthHeader = "Authorization: Bearer ${TOKEN}"
	// NoAuthHeader as a group's auth-header suppresses the header.
	NoAuthHeader = "none"

	untitled           = "Untitled"
	unversioned        = "unversioned"
	defaultDescription = "Endpoints tagged with this group in the OpenAPI description."
)

var blankRuns = regexp.MustCompile(`\n{3,}`)

type Options struct {
	// Title overrides "<info.title> API Reference".
	Title string
	// BaseURL is used when the document declares no servers.
	BaseURL       string
	TOC           bool
	ExampleFormat string
	MaxDepth      int
	Groups        map[string]config.GroupConfig
}

type Renderer struct {
	engine templates.Engine
	opts   Options
}

func New(engine templates.Engine, opts Options) *Renderer {
	return &Renderer{engine: engine, opts: opts}
}

type documentView struct {
	Title           string
	Version         string
	BaseURL         string
	MaxDepth        int
	SecuritySchemes []model.SecurityScheme
	TOC             []tocGroup
	Groups          []groupView
}

type tocGroup struct {
	Name       string
	Anchor     string
	Operations []operationView
}

type groupView struct {
	Name        string
	Anchor      string
	Description string
	Auth        string
	Operations  []operationView
}

type operationView struct {
	model.Operation
	Heading     string
	Anchor      string
	Auth        string
	Idempotency string
	Success     *model.Response
	Errors      []model.Response
	Curl        string
	ExampleLang string
}

func (r *Renderer) Render(ref *model.Reference) (string, error) {
	out, err := r.engine.Execute(templateName, r.view(ref))
	if err != nil {
		return "", fmt.Errorf("rendering reference: %w", err)
	}
	return tidy(out), nil
}

func (r *Renderer) view(ref *model.Reference) documentView {
	title := r.opts.Title
	if title == "" {
		title = strings.TrimSpace(ref.Info.Title + " API Reference")
	}

	baseURL := r.opts.BaseURL
	if len(ref.Servers) > 0 {
		baseURL = ref.Servers[0].URL
	}

	view := documentView{
		Title:           title,
		Version:         cmp.Or(ref.Info.Version, unversioned),
		BaseURL:         baseURL,
		MaxDepth:        r.opts.MaxDepth,
		SecuritySchemes: ref.SecuritySchemes,
	}

	// Fixed headings claim their anchors first.
	slugs := newSlugger(title, "Contents", "Usage & Conventions", "Authentication", "Idempotency", "Error Model")

	lang := cmp.Or(r.opts.ExampleFormat, "json")
	for _, g := range ref.Groups {
		gv := r.group(g, slugs, lang)
		view.Groups = append(view.Groups, gv)
		if r.opts.TOC {
			view.TOC = append(view.TOC, tocGroup{Name: gv.Name, Anchor: gv.Anchor, Operations: gv.Operations})
		}
	}

	return view
}

func (r *Renderer) group(g model.Group, slugs *slugger, lang string) groupView {
	cfg := r.opts.Groups[g.Name]

	gv := groupView{
		Name:        g.Name,
		Anchor:      slugs.slug(g.Name),
		Description: cmp.Or(cfg.Description, g.Description, defaultDescription),
		Auth:        cfg.Auth,
	}
	if gv.Auth == "" && len(g.Operations) > 0 {
		gv.Auth = describeSecurity(g.Operations[0].Security, g.Operations[0].SecurityDeclared)
	}

	for _, op := range g.Operations {
		ov := operationView{
			Operation:   op,
			Heading:     fmt.Sprintf("`%s %s` — %s", op.Method, op.Path, cmp.Or(op.Summary, untitled)),
			Auth:        cmp.Or(cfg.Auth, describeSecurity(op.Security, op.SecurityDeclared)),
			Idempotency: idempotency(op.Method),
			ExampleLang: lang,
		}
		ov.Description = strings.TrimSpace(op.Description)
		ov.Anchor = slugs.slug(ov.Heading)

		for i := range op.Responses {
			resp := op.Responses[i]
			if ov.Success == nil && resp.Success() {
				ov.Success = &resp
				continue
			}
			if !resp.Success() {
				ov.Errors = append(ov.Errors, resp)
			}
		}

		ov.Curl = Curl(SampleRequest(cfg, op))

		gv.Operations = append(gv.Operations, ov)
	}

	return gv
}

// SampleRequest describes the request shown in an operation's curl sample.
func SampleRequest(cfg config.GroupConfig, op model.Operation) CurlRequest {
	req := CurlRequest{
		Method:     op.Method,
		Path:       op.Path,
		Parameters: op.Parameters,
		AuthHeader: authHeader(cfg, op),
	}
	if op.RequestBody != nil {
		req.Body = op.RequestBody.JSON
	}
	return req
}

func authHeader(cfg config.GroupConfig, op model.Operation) string {
	switch {
	case cfg.AuthHeader == NoAuthHeader:
		return ""
	case cfg.AuthHeader != "":
		return cfg.AuthHeader
	case anonymous(op.Security):
		return ""
	}
	return DefaultAuthHeader
}

func tidy(s string) string {
	s = blankRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s) + "\n"
}
