package loader

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"go.yaml.in/yaml/v4"
	"golang.org/x/sync/errgroup"

	"github.com/kolah/refdoc/internal/document"
	"github.com/kolah/refdoc/internal/index"
	"github.com/kolah/refdoc/internal/model"
	"github.com/kolah/refdoc/internal/schema"
)

const (
	mediaTypeJSON    = "application/json"
	schemaRefPrefix  = "#/components/schemas/"
	inlineSchemaName = "inline"
)

const (
	ExampleFormatJSON = "json"
	ExampleFormatYAML = "yaml"
)

// Options tune how operations are turned into reference records.
type Options struct {
	Limits schema.Limits
	// CacheSize bounds the reference memo; zero disables it.
	CacheSize int
	// Workers bounds concurrent operation builds; zero means GOMAXPROCS.
	Workers       int
	ExampleFormat string
	IncludeTags   []string
	ExcludeTags   []string
	Logger        logrus.FieldLogger
}

type transformer struct {
	resolver    *document.Resolver
	labeler     *schema.Labeler
	synthesizer *schema.Synthesizer
	format      string
	log         logrus.FieldLogger
}

type job struct {
	group, slot int
	entry       index.Entry
}

// Transform indexes the document and builds one record per operation.
// Operations are built concurrently; the output order is the index order.
func Transform(ctx context.Context, result *Result, opts Options) (*model.Reference, error) {
	doc := result.Document

	resolver, err := document.NewResolver(doc, opts.CacheSize)
	if err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	format := cmp.Or(opts.ExampleFormat, ExampleFormatJSON)
	if format != ExampleFormatJSON && format != ExampleFormatYAML {
		return nil, fmt.Errorf("unknown example format: %s (valid: json, yaml)", format)
	}

	t := &transformer{
		resolver:    resolver,
		labeler:     schema.NewLabeler(resolver, opts.Limits),
		synthesizer: schema.NewSynthesizer(resolver, opts.Limits),
		format:      format,
		log:         log,
	}

	title, version := doc.Info()
	ref := &model.Reference{
		Info: model.Info{Title: title, Version: version},
	}
	for _, u := range doc.ServerURLs() {
		ref.Servers = append(ref.Servers, model.Server{URL: u})
	}

	ref.SecuritySchemes = securitySchemes(doc)

	tagDescriptions := make(map[string]string)
	for _, tag := range doc.Tags() {
		if _, ok := tagDescriptions[tag.Name]; !ok {
			tagDescriptions[tag.Name] = tag.Description
		}
	}

	var jobs []job
	for _, g := range index.Index(doc) {
		if !selected(g.Name, opts.IncludeTags, opts.ExcludeTags) {
			continue
		}
		group := model.Group{
			Name:        g.Name,
			Description: tagDescriptions[g.Name],
			Operations:  make([]model.Operation, len(g.Entries)),
		}
		for i, e := range g.Entries {
			jobs = append(jobs, job{group: len(ref.Groups), slot: i, entry: e})
		}
		ref.Groups = append(ref.Groups, group)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for _, j := range jobs {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			op, err := t.transformOperation(j.entry)
			if err != nil {
				return fmt.Errorf("%s %s: %w", j.entry.Method, j.entry.Path, err)
			}
			ref.Groups[j.group].Operations[j.slot] = op
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return ref, nil
}

func selected(group string, include, exclude []string) bool {
	if len(include) > 0 && !slices.Contains(include, group) {
		return false
	}
	return !slices.Contains(exclude, group)
}

func (t *transformer) transformOperation(e index.Entry) (model.Operation, error) {
	op := e.Operation
	deprecated, _ := boolValue(op, "deprecated")

	operation := model.Operation{
		ID:          op.String("operationId"),
		Method:      model.Method(e.Method),
		Path:        e.Path,
		Summary:     op.String("summary"),
		Description: op.String("description"),
		Tags:        e.Tags(),
		Deprecated:  deprecated,
	}

	log := t.log.WithFields(logrus.Fields{"method": e.Method, "path": e.Path})

	for _, raw := range slices.Concat(e.PathParameters, op.Slice("parameters")) {
		param, ok, err := t.transformParameter(raw)
		if err != nil {
			return model.Operation{}, err
		}
		if !ok {
			ref, _ := document.RefOf(raw)
			log.WithField("ref", ref).Warn("skipping unresolvable parameter")
			continue
		}
		operation.Parameters = append(operation.Parameters, param)
	}

	rawBody, _ := op.Get("requestBody")
	body, err := t.transformRequestBody(rawBody)
	if err != nil {
		return model.Operation{}, err
	}
	operation.RequestBody = body

	for code, raw := range op.Map("responses").All() {
		resp, err := t.transformResponse(code, raw)
		if err != nil {
			return model.Operation{}, err
		}
		operation.Responses = append(operation.Responses, resp)
	}
	slices.SortStableFunc(operation.Responses, func(a, b model.Response) int {
		return cmp.Compare(statusRank(a.StatusCode), statusRank(b.StatusCode))
	})

	operation.Security, operation.SecurityDeclared = t.transformSecurity(op)

	return operation, nil
}

// deref follows a "$ref" on a parameter, request body or response object.
// The bool is false when the target does not exist.
func (t *transformer) deref(raw any) (*document.Map, bool, error) {
	ref, ok := document.RefOf(raw)
	if !ok {
		m, ok := raw.(*document.Map)
		return m, ok, nil
	}
	target, err := t.resolver.Resolve(ref)
	if err != nil {
		return nil, false, err
	}
	m, ok := target.(*document.Map)
	return m, ok, nil
}

func (t *transformer) transformParameter(raw any) (model.Parameter, bool, error) {
	p, ok, err := t.deref(raw)
	if err != nil || !ok {
		return model.Parameter{}, false, err
	}

	required, _ := boolValue(p, "required")
	param := model.Parameter{
		Name:        p.String("name"),
		In:          model.ParameterLocation(strings.ToLower(p.String("in"))),
		Required:    required,
		Description: strings.ReplaceAll(p.String("description"), "\n", " "),
	}

	schemaRaw, _ := p.Get("schema")
	if schemaRaw == nil {
		// OpenAPI 3.2: querystring parameters use content instead of schema
		for _, content := range p.Map("content").All() {
			if m, ok := content.(*document.Map); ok {
				schemaRaw, _ = m.Get("schema")
				break
			}
		}
	}

	param.Type, err = t.labeler.Label(schemaRaw)
	if err != nil {
		return model.Parameter{}, false, err
	}

	return param, true, nil
}

func (t *transformer) transformRequestBody(raw any) (*model.Body, error) {
	if raw == nil {
		return nil, nil
	}
	rb, ok, err := t.deref(raw)
	if err != nil || !ok {
		return nil, err
	}

	schemaRaw := mediaSchema(rb.Map("content").Map(mediaTypeJSON))
	if isEmptySchema(schemaRaw) {
		return nil, nil
	}

	body := &model.Body{SchemaName: cmp.Or(schemaName(schemaRaw), inlineSchemaName)}

	if body.Type, err = t.labeler.Label(schemaRaw); err != nil {
		return nil, err
	}
	if body.Value, err = t.synthesizer.Synthesize(schemaRaw, 0); err != nil {
		return nil, err
	}
	if body.JSON, err = encodeJSON(body.Value); err != nil {
		return nil, err
	}
	if body.Example, err = t.encode(body.Value); err != nil {
		return nil, err
	}

	return body, nil
}

func (t *transformer) transformResponse(code string, raw any) (model.Response, error) {
	response := model.Response{StatusCode: code}

	resp, ok, err := t.deref(raw)
	if err != nil {
		return model.Response{}, err
	}
	if !ok {
		return response, nil
	}
	response.Description = resp.String("description")

	content := resp.Map("content")
	var schemaRaw any
	if jsonMedia := content.Map(mediaTypeJSON); jsonMedia != nil {
		schemaRaw = mediaSchema(jsonMedia)
	} else {
		for _, media := range content.All() {
			m, _ := media.(*document.Map)
			schemaRaw = mediaSchema(m)
			break
		}
	}
	if isEmptySchema(schemaRaw) {
		return response, nil
	}

	response.SchemaName = schemaName(schemaRaw)

	if response.Type, err = t.labeler.Label(schemaRaw); err != nil {
		return model.Response{}, err
	}
	value, err := t.synthesizer.Synthesize(schemaRaw, 0)
	if err != nil {
		return model.Response{}, err
	}
	if response.Example, err = t.encode(value); err != nil {
		return model.Response{}, err
	}

	return response, nil
}

func (t *transformer) transformSecurity(op *document.Map) ([][]string, bool) {
	raw, declared := op.Get("security")
	list, _ := raw.([]any)
	if !declared {
		list, declared = t.resolver.Document().Security()
	}

	var alternatives [][]string
	for _, item := range list {
		m, ok := item.(*document.Map)
		if !ok {
			continue
		}
		alternatives = append(alternatives, m.Keys())
	}
	return alternatives, declared
}

func (t *transformer) encode(value any) (string, error) {
	if t.format == ExampleFormatYAML {
		return encodeYAML(value)
	}
	return encodeJSON(value)
}

func encodeJSON(value any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(value); err != nil {
		return "", fmt.Errorf("encoding example json: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func encodeYAML(value any) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(value); err != nil {
		return "", fmt.Errorf("encoding example yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encoding example yaml: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func securitySchemes(doc *document.Document) []model.SecurityScheme {
	var out []model.SecurityScheme
	for name, raw := range doc.Section(document.SectionComponents).Map("securitySchemes").All() {
		m, ok := raw.(*document.Map)
		if !ok {
			continue
		}
		out = append(out, model.SecurityScheme{
			Name:        name,
			Type:        m.String("type"),
			Scheme:      m.String("scheme"),
			In:          m.String("in"),
			ParamName:   m.String("name"),
			Description: strings.TrimSpace(m.String("description")),
		})
	}
	return out
}

func mediaSchema(media *document.Map) any {
	v, _ := media.Get("schema")
	return v
}

func isEmptySchema(raw any) bool {
	m, ok := raw.(*document.Map)
	return !ok || m.Len() == 0
}

// schemaName returns the component name of a "#/components/schemas/" reference.
func schemaName(raw any) string {
	ref, ok := document.RefOf(raw)
	if !ok || !strings.HasPrefix(ref, schemaRefPrefix) {
		return ""
	}
	return document.RefName(ref)
}

// statusRank orders numeric status codes numerically and everything else,
// such as "default" or "4XX", after them.
func statusRank(code string) int {
	n, err := strconv.Atoi(code)
	if err != nil || n < 0 {
		return 999
	}
	return n
}

func boolValue(m *document.Map, key string) (bool, bool) {
	v, ok := m.Get(key)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}
