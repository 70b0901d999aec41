// Package index groups the operations of a document by their first tag.
package index

import (
	"cmp"
	"slices"
	"strings"

	"github.com/kolah/refdoc/internal/document"
)

// Untagged is the group key of operations without tags.
const Untagged = "(untagged)"

// pathItemFields are path item keys that are not HTTP verbs.
var pathItemFields = map[string]bool{
	"parameters":  true,
	"servers":     true,
	"summary":     true,
	"description": true,
	"$ref":        true,
}

// Entry is one (path, verb) pair with its raw operation descriptor.
type Entry struct {
	Path   string
	Method string
	// Operation is the raw operation object.
	Operation *document.Map
	// PathParameters are the raw parameters declared on the path item.
	PathParameters []any
}

// Tags returns the operation's declared tags.
func (e Entry) Tags() []string {
	var tags []string
	for _, raw := range e.Operation.Slice("tags") {
		if s, ok := raw.(string); ok {
			tags = append(tags, s)
		}
	}
	return tags
}

// Group is the ordered set of operations sharing a primary tag.
type Group struct {
	Name    string
	Entries []Entry
}

// Index walks doc.paths and returns groups ordered by the top-level tag
// declarations, then by first appearance; entries within a group are
// ordered by path and verb.
func Index(doc *document.Document) []Group {
	buckets := make(map[string][]Entry)
	var seen []string

	for path, rawItem := range doc.Section(document.SectionPaths).All() {
		item, ok := rawItem.(*document.Map)
		if !ok {
			continue
		}
		pathParams := item.Slice("parameters")

		for method, rawOp := range item.All() {
			if pathItemFields[method] || strings.HasPrefix(method, "x-") {
				continue
			}
			op, ok := rawOp.(*document.Map)
			if !ok {
				op = document.NewMap()
			}

			entry := Entry{
				Path:           path,
				Method:         strings.ToUpper(method),
				Operation:      op,
				PathParameters: pathParams,
			}

			key := Untagged
			if tags := entry.Tags(); len(tags) > 0 {
				key = tags[0]
			}
			if _, ok := buckets[key]; !ok {
				seen = append(seen, key)
			}
			buckets[key] = append(buckets[key], entry)
		}
	}

	var order []string
	declared := make(map[string]bool)
	for _, tag := range doc.Tags() {
		if declared[tag.Name] {
			continue
		}
		declared[tag.Name] = true
		order = append(order, tag.Name)
	}
	for _, key := range seen {
		if !declared[key] {
			order = append(order, key)
		}
	}

	var groups []Group
	for _, key := range order {
		entries := buckets[key]
		if len(entries) == 0 {
			continue
		}
		slices.SortStableFunc(entries, func(a, b Entry) int {
			return cmp.Or(cmp.Compare(a.Path, b.Path), cmp.Compare(a.Method, b.Method))
		})
		groups = append(groups, Group{Name: key, Entries: entries})
	}
	return groups
}
