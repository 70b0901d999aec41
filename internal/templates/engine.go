package templates

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"text/template"
)

const extension = ".tmpl"

type Engine interface {
	Execute(name string, data any) (string, error)
}

// TextTemplateEngine holds the embedded templates plus any overrides found
// in a custom directory. A custom file replaces the embedded template with
// the same relative path.
type TextTemplateEngine struct {
	templates *template.Template
	funcs     template.FuncMap
	embedded  fs.FS
	customDir string
}

func NewEngine(embedded fs.FS, customDir string, funcs template.FuncMap) (*TextTemplateEngine, error) {
	e := &TextTemplateEngine{
		embedded:  embedded,
		customDir: customDir,
		funcs:     funcs,
	}
	if err := e.load(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *TextTemplateEngine) load() error {
	e.templates = template.New("").Funcs(e.funcs)

	if err := e.parseAll(e.embedded, "embedded"); err != nil {
		return fmt.Errorf("loading embedded templates: %w", err)
	}

	if e.customDir == "" {
		return nil
	}
	if _, err := os.Stat(e.customDir); os.IsNotExist(err) {
		return nil
	}
	if err := e.parseAll(os.DirFS(e.customDir), "custom"); err != nil {
		return fmt.Errorf("loading custom templates: %w", err)
	}

	return nil
}

func (e *TextTemplateEngine) parseAll(fsys fs.FS, origin string) error {
	return fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(name) != extension {
			return nil
		}
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading %s template %s: %w", origin, name, err)
		}
		name = strings.TrimPrefix(name, "templates/")
		if _, err := e.templates.New(name).Parse(string(content)); err != nil {
			return fmt.Errorf("parsing %s template %s: %w", origin, name, err)
		}
		return nil
	})
}

// Names lists the loaded templates in lexical order.
func (e *TextTemplateEngine) Names() []string {
	var names []string
	for _, t := range e.templates.Templates() {
		if strings.HasSuffix(t.Name(), extension) {
			names = append(names, t.Name())
		}
	}
	sort.Strings(names)
	return names
}

func (e *TextTemplateEngine) Execute(name string, data any) (string, error) {
	tmpl := e.templates.Lookup(name)
	if tmpl == nil {
		return "", fmt.Errorf("template not found: %s", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template %s: %w", name, err)
	}

	return buf.String(), nil
}
