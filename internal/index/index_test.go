package index

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kolah/refdoc/internal/document"
)

func mustIndex(t *testing.T, src string) []Group {
	t.Helper()
	doc, err := document.Decode([]byte(src))
	require.NoError(t, err)
	return Index(doc)
}

type key struct {
	Path   string
	Method string
}

func keys(g Group) []key {
	var out []key
	for _, e := range g.Entries {
		out = append(out, key{e.Path, e.Method})
	}
	return out
}

func names(groups []Group) []string {
	var out []string
	for _, g := range groups {
		out = append(out, g.Name)
	}
	return out
}

func TestIndexOrdersGroupsByDeclaredTags(t *testing.T) {
	groups := mustIndex(t, `
tags:
  - name: Public
  - name: Auth
paths:
  /users/me:
    post:
      tags: [Auth]
  /catalog:
    get:
      tags: [Public]
  /addresses:
    get:
      tags: [Auth, Public]
`)

	require.Equal(t, []string{"Public", "Auth"}, names(groups))
	require.Equal(t, []key{{"/catalog", "GET"}}, keys(groups[0]))
	require.Equal(t, []key{{"/addresses", "GET"}, {"/users/me", "POST"}}, keys(groups[1]))
}

func TestIndexAppendsUndeclaredGroupsInFirstSeenOrder(t *testing.T) {
	groups := mustIndex(t, `
tags:
  - name: Declared
  - name: Unused
paths:
  /b:
    get:
      tags: [Zeta]
  /a:
    get: {}
    put:
      tags: [Alpha]
  /c:
    delete:
      tags: [Declared]
`)

	require.Equal(t, []string{"Declared", "Zeta", Untagged, "Alpha"}, names(groups))
	require.Equal(t, []key{{"/a", "GET"}}, keys(groups[2]))
}

func TestIndexSortsWithinGroup(t *testing.T) {
	groups := mustIndex(t, `
paths:
  /orders/{id}:
    patch: {tags: [Orders]}
    get: {tags: [Orders]}
  /orders:
    post: {tags: [Orders]}
    get: {tags: [Orders]}
`)

	require.Len(t, groups, 1)
	require.Equal(t, []key{
		{"/orders", "GET"},
		{"/orders", "POST"},
		{"/orders/{id}", "GET"},
		{"/orders/{id}", "PATCH"},
	}, keys(groups[0]))
}

func TestIndexSkipsNonVerbKeys(t *testing.T) {
	groups := mustIndex(t, `
paths:
  /items/{id}:
    summary: items
    description: item resource
    parameters:
      - name: id
        in: path
    x-internal: true
    get: {}
`)

	require.Len(t, groups, 1)
	require.Equal(t, []key{{"/items/{id}", "GET"}}, keys(groups[0]))

	entry := groups[0].Entries[0]
	require.Len(t, entry.PathParameters, 1)
	require.Empty(t, entry.Tags())
}

func TestIndexEmptyDocument(t *testing.T) {
	require.Empty(t, mustIndex(t, `openapi: 3.1.0`))
}
