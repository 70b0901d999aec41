// Package docgen wires loading, transformation, rendering and sample
// checking into one generation run.
package docgen

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/kolah/refdoc/internal/config"
	"github.com/kolah/refdoc/internal/loader"
	"github.com/kolah/refdoc/internal/model"
	"github.com/kolah/refdoc/internal/render"
	"github.com/kolah/refdoc/internal/samplecheck"
	"github.com/kolah/refdoc/internal/templates"
	embeddedtmpl "github.com/kolah/refdoc/templates"
)

type Generator struct {
	config   *config.Config
	renderer *render.Renderer
	log      logrus.FieldLogger
}

type Output struct {
	Filename  string
	Content   string
	Reference *model.Reference
	// Report is set when sample checking ran.
	Report *samplecheck.Report
}

func New(cfg *config.Config, log logrus.FieldLogger) (*Generator, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	engine, err := templates.NewEngine(embeddedtmpl.FS, cfg.Templates.Dir, render.TemplateFuncs())
	if err != nil {
		return nil, fmt.Errorf("creating template engine: %w", err)
	}
	log.WithField("templates", engine.Names()).Debug("templates loaded")

	renderer := render.New(engine, render.Options{
		Title:         cfg.Render.Title,
		BaseURL:       cfg.Render.BaseURL,
		TOC:           cfg.Render.TOC,
		ExampleFormat: cfg.Render.ExampleFormat,
		MaxDepth:      cfg.Engine.MaxDepth,
		Groups:        cfg.Groups,
	})

	return &Generator{
		config:   cfg,
		renderer: renderer,
		log:      log,
	}, nil
}

// Build turns a loaded document into reference records.
func (g *Generator) Build(ctx context.Context, result *loader.Result) (*model.Reference, error) {
	ref, err := loader.Transform(ctx, result, loader.Options{
		Limits:        g.config.EngineLimits(),
		CacheSize:     g.config.Engine.CacheSize,
		Workers:       g.config.Engine.Workers,
		ExampleFormat: g.config.Render.ExampleFormat,
		IncludeTags:   g.config.IncludeTags,
		ExcludeTags:   g.config.ExcludeTags,
		Logger:        g.log,
	})
	if err != nil {
		return nil, fmt.Errorf("transforming spec: %w", err)
	}
	return ref, nil
}

func (g *Generator) Generate(ctx context.Context, result *loader.Result) (*Output, error) {
	ref, err := g.Build(ctx, result)
	if err != nil {
		return nil, err
	}

	content, err := g.renderer.Render(ref)
	if err != nil {
		return nil, err
	}

	out := &Output{
		Filename:  g.config.Output,
		Content:   content,
		Reference: ref,
	}

	if g.config.Check.Samples {
		report, err := g.Check(ctx, result, ref)
		if err != nil {
			return nil, err
		}
		out.Report = report
	}

	return out, nil
}

// Check validates the curl samples of ref. With check.strict set, a
// rejected sample is returned as an error alongside the report.
func (g *Generator) Check(ctx context.Context, result *loader.Result, ref *model.Reference) (*samplecheck.Report, error) {
	checker, err := samplecheck.New(result.Source, g.config.Groups, g.log)
	if err != nil {
		return nil, err
	}

	report, err := checker.Check(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("checking samples: %w", err)
	}

	if g.config.Check.Strict {
		return report, report.Err()
	}
	return report, nil
}
