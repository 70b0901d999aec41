package loader

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/kolah/refdoc/internal/document"
	"github.com/kolah/refdoc/internal/model"
	"github.com/kolah/refdoc/internal/schema"
)

const shopSpec = `
openapi: 3.1.0
info:
  title: Shop
  version: 1.2.3
servers:
  - url: https://api.example.com/v1
security:
  - bearer: []
tags:
  - name: Public
    description: Anonymous endpoints
  - name: Orders
paths:
  /orders/{orderId}:
    parameters:
      - $ref: '#/components/parameters/OrderId'
    get:
      tags: [Orders]
      summary: Get order
      parameters:
        - name: expand
          in: query
          description: "comma\nseparated"
          schema:
            type: array
            items: {type: string}
        - $ref: '#/components/parameters/Missing'
      responses:
        default:
          $ref: '#/components/responses/Error'
        '404':
          description: Not found
        '200':
          description: OK
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Order'
  /catalog:
    post:
      tags: [Public]
      requestBody:
        content:
          application/json:
            schema:
              type: object
              required: [sku]
              properties:
                sku: {type: string}
                qty: {type: integer}
      responses:
        '201':
          description: Created
          content:
            text/plain:
              schema: {type: string}
    get:
      tags: [Public]
      security: []
      responses:
        '204':
          description: No content
components:
  securitySchemes:
    bearer:
      type: http
      scheme: bearer
      description: Session token.
  parameters:
    OrderId:
      name: orderId
      in: path
      required: true
      schema: {type: string}
  responses:
    Error:
      description: Error
      content:
        application/json:
          schema:
            $ref: '#/components/schemas/Error'
  schemas:
    Order:
      type: object
      required: [id]
      properties:
        id: {type: string}
        total: {type: number}
    Error:
      type: object
      properties:
        code: {type: string}
        message: {type: string}
`

func testOptions(log logrus.FieldLogger) Options {
	return Options{
		Limits:    schema.DefaultLimits(),
		CacheSize: document.DefaultCacheSize,
		Workers:   4,
		Logger:    log,
	}
}

func TestLoadRejectsSwagger(t *testing.T) {
	_, err := Load([]byte("swagger: '2.0'\ninfo: {title: x, version: '1'}\npaths: {}\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported OpenAPI version")
}

func TestLoadWarnsOn30(t *testing.T) {
	result, err := Load([]byte("openapi: 3.0.3\ninfo: {title: x, version: '1'}\npaths: {}\n"))
	require.NoError(t, err)
	require.Equal(t, "3.0.3", result.Version)
	require.Len(t, result.Warnings, 1)
}

func TestTransform(t *testing.T) {
	result, err := Load([]byte(shopSpec))
	require.NoError(t, err)

	log, hook := logtest.NewNullLogger()
	ref, err := Transform(context.Background(), result, testOptions(log))
	require.NoError(t, err)

	require.Equal(t, model.Info{Title: "Shop", Version: "1.2.3"}, ref.Info)
	require.Equal(t, []model.Server{{URL: "https://api.example.com/v1"}}, ref.Servers)
	require.Equal(t, []model.SecurityScheme{
		{Name: "bearer", Type: "http", Scheme: "bearer", Description: "Session token."},
	}, ref.SecuritySchemes)
	require.Len(t, ref.Groups, 2)
	require.Equal(t, 3, ref.OperationCount())

	public := ref.Groups[0]
	require.Equal(t, "Public", public.Name)
	require.Equal(t, "Anonymous endpoints", public.Description)

	list := public.Operations[0]
	require.Equal(t, model.MethodGet, list.Method)
	require.Equal(t, "/catalog", list.Path)
	require.True(t, list.SecurityDeclared)
	require.Empty(t, list.Security)
	require.Nil(t, list.RequestBody)
	require.Equal(t, []model.Response{{StatusCode: "204", Description: "No content"}}, list.Responses)

	create := public.Operations[1]
	require.Equal(t, model.MethodPost, create.Method)
	require.Equal(t, [][]string{{"bearer"}}, create.Security)
	require.NotNil(t, create.RequestBody)
	require.Equal(t, "inline", create.RequestBody.SchemaName)
	require.Equal(t, "object", create.RequestBody.Type)
	require.Equal(t, "{\n  \"sku\": \"string\",\n  \"qty\": 123\n}", create.RequestBody.Example)
	require.Equal(t, create.RequestBody.Example, create.RequestBody.JSON)
	require.Equal(t, model.Response{
		StatusCode:  "201",
		Description: "Created",
		Type:        "string",
		Example:     `"string"`,
	}, create.Responses[0])

	orders := ref.Groups[1]
	require.Equal(t, "Orders", orders.Name)
	get := orders.Operations[0]
	require.Equal(t, "Get order", get.Summary)
	require.Equal(t, []model.Parameter{
		{Name: "orderId", In: model.LocationPath, Type: "string", Required: true},
		{Name: "expand", In: model.LocationQuery, Type: "array<string>", Description: "comma separated"},
	}, get.Parameters)

	require.Len(t, get.Responses, 3)
	require.Equal(t, "200", get.Responses[0].StatusCode)
	require.Equal(t, "Order", get.Responses[0].SchemaName)
	require.Equal(t, "Order", get.Responses[0].Type)
	require.Equal(t, "{\n  \"id\": \"string\",\n  \"total\": 12.34\n}", get.Responses[0].Example)
	require.Equal(t, "404", get.Responses[1].StatusCode)
	require.Empty(t, get.Responses[1].Example)
	require.Equal(t, "default", get.Responses[2].StatusCode)
	require.Equal(t, "Error", get.Responses[2].Description)
	require.Equal(t, "Error", get.Responses[2].SchemaName)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Message == "skipping unresolvable parameter" {
			warned = true
			require.Equal(t, "#/components/parameters/Missing", e.Data["ref"])
		}
	}
	require.True(t, warned)
}

func TestTransformTagFilters(t *testing.T) {
	result, err := Load([]byte(shopSpec))
	require.NoError(t, err)
	log, _ := logtest.NewNullLogger()

	opts := testOptions(log)
	opts.IncludeTags = []string{"Orders"}
	ref, err := Transform(context.Background(), result, opts)
	require.NoError(t, err)
	require.Len(t, ref.Groups, 1)
	require.Equal(t, "Orders", ref.Groups[0].Name)

	opts = testOptions(log)
	opts.ExcludeTags = []string{"Orders"}
	ref, err = Transform(context.Background(), result, opts)
	require.NoError(t, err)
	require.Len(t, ref.Groups, 1)
	require.Equal(t, "Public", ref.Groups[0].Name)
}

func TestTransformYAMLExamples(t *testing.T) {
	result, err := Load([]byte(shopSpec))
	require.NoError(t, err)
	log, _ := logtest.NewNullLogger()

	opts := testOptions(log)
	opts.ExampleFormat = ExampleFormatYAML
	ref, err := Transform(context.Background(), result, opts)
	require.NoError(t, err)
	body := ref.Groups[0].Operations[1].RequestBody
	require.Equal(t, "sku: string\nqty: 123", body.Example)
	require.Equal(t, "{\n  \"sku\": \"string\",\n  \"qty\": 123\n}", body.JSON)

	opts.ExampleFormat = "xml"
	_, err = Transform(context.Background(), result, opts)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown example format")
}

func TestTransformUnsupportedReferenceFails(t *testing.T) {
	doc, err := document.Decode([]byte(`
paths:
  /pets:
    get:
      responses:
        '200':
          description: OK
          content:
            application/json:
              schema:
                $ref: 'https://example.com/pet.yaml'
`))
	require.NoError(t, err)
	log, _ := logtest.NewNullLogger()

	_, err = Transform(context.Background(), &Result{Document: doc}, testOptions(log))
	require.ErrorIs(t, err, document.ErrUnsupportedReference)
	require.Contains(t, err.Error(), "GET /pets")
}

func TestTransformCancelledContext(t *testing.T) {
	result, err := Load([]byte(shopSpec))
	require.NoError(t, err)
	log, _ := logtest.NewNullLogger()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = Transform(ctx, result, testOptions(log))
	require.ErrorIs(t, err, context.Canceled)
}
