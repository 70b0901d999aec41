package docgen

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/kolah/refdoc/internal/config"
	"github.com/kolah/refdoc/internal/document"
	"github.com/kolah/refdoc/internal/loader"
)

const storeSpec = `
openapi: 3.1.0
info:
  title: Store
  version: "2.0"
servers:
  - url: https://store.example.com
tags:
  - name: Inventory
paths:
  /items:
    post:
      tags: [Inventory]
      summary: Add item
      requestBody:
        content:
          application/json:
            schema:
              type: object
              properties:
                count:
                  type: integer
                  maximum: 5
      responses:
        "201":
          description: Created
  /items/{itemId}:
    get:
      tags: [Inventory]
      summary: Get item
      parameters:
        - name: itemId
          in: path
          required: true
          schema:
            type: string
      responses:
        "200":
          description: OK
`

func testConfig() *config.Config {
	return &config.Config{
		Spec:   "store.yaml",
		Output: "STORE.md",
		Render: config.RenderConfig{ExampleFormat: "json"},
		Engine: config.EngineConfig{
			MaxDepth:         3,
			MaxProperties:    5,
			MaxReferenceHops: 16,
			CacheSize:        document.DefaultCacheSize,
		},
	}
}

func load(t *testing.T) *loader.Result {
	t.Helper()
	result, err := loader.Load([]byte(storeSpec))
	require.NoError(t, err)
	return result
}

func TestGenerate(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	gen, err := New(testConfig(), log)
	require.NoError(t, err)

	out, err := gen.Generate(context.Background(), load(t))
	require.NoError(t, err)

	require.Equal(t, "STORE.md", out.Filename)
	require.Nil(t, out.Report)
	require.Equal(t, 2, out.Reference.OperationCount())
	require.Contains(t, out.Content, "# Store API Reference\n")
	require.Contains(t, out.Content, "## Inventory")
	require.Contains(t, out.Content, "### `POST /items` — Add item")
	require.Contains(t, out.Content, "curl -X GET \"$BASE_URL/items/item_id\"")
}

func TestGenerateChecksSamples(t *testing.T) {
	cfg := testConfig()
	cfg.Check.Samples = true

	log, _ := logtest.NewNullLogger()
	gen, err := New(cfg, log)
	require.NoError(t, err)

	out, err := gen.Generate(context.Background(), load(t))
	require.NoError(t, err)
	require.NotNil(t, out.Report)
	require.Equal(t, 2, out.Report.Checked)
	require.Len(t, out.Report.Findings, 1)

	cfg.Check.Strict = true
	gen, err = New(cfg, log)
	require.NoError(t, err)

	_, err = gen.Generate(context.Background(), load(t))
	require.ErrorContains(t, err, "1 of 2 samples failed validation")
}

func TestGenerateTagFilter(t *testing.T) {
	cfg := testConfig()
	cfg.ExcludeTags = []string{"Inventory"}

	gen, err := New(cfg, nil)
	require.NoError(t, err)

	out, err := gen.Generate(context.Background(), load(t))
	require.NoError(t, err)
	require.Zero(t, out.Reference.OperationCount())
	require.NotContains(t, out.Content, "## Inventory")
}

func TestNewRejectsBrokenCustomTemplates(t *testing.T) {
	cfg := testConfig()
	cfg.Templates.Dir = t.TempDir()
	writeTemplate(t, cfg.Templates.Dir, "markdown/group.tmpl", "{{ .Name ")

	_, err := New(cfg, nil)
	require.ErrorContains(t, err, "creating template engine")
}

func TestNewLogsTemplates(t *testing.T) {
	cfg := testConfig()
	cfg.Templates.Dir = t.TempDir()
	writeTemplate(t, cfg.Templates.Dir, "markdown/footer.tmpl", "Generated by refdoc.")

	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	_, err := New(cfg, log)
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	require.Equal(t, "templates loaded", entry.Message)
	require.Contains(t, entry.Data["templates"], "markdown/footer.tmpl")
	require.Contains(t, entry.Data["templates"], "markdown/reference.tmpl")
}

func writeTemplate(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
