package document

import (
	"fmt"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// RootMarker prefixes every supported reference.
const RootMarker = "#/"

// RefKey is the schema keyword that marks a reference.
const RefKey = "$ref"

// DefaultCacheSize is the number of resolved references kept in memory.
const DefaultCacheSize = 1024

type resolved struct {
	value any
}

// Resolver follows internal references within one Document. It is safe for
// concurrent use; the memo is the only mutable state.
type Resolver struct {
	doc  *Document
	memo *lru.Cache[string, resolved]
}

// NewResolver creates a resolver for doc. A cacheSize of zero or less
// disables memoization.
func NewResolver(doc *Document, cacheSize int) (*Resolver, error) {
	r := &Resolver{doc: doc}
	if cacheSize > 0 {
		memo, err := lru.New[string, resolved](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating reference cache: %w", err)
		}
		r.memo = memo
	}
	return r, nil
}

// Document returns the document the resolver reads from.
func (r *Resolver) Document() *Document {
	return r.doc
}

// Resolve returns the value ref points at. A well-formed reference with no
// target yields nil and no error. Anything that is not root-relative fails
// with ErrUnsupportedReference.
func (r *Resolver) Resolve(ref string) (any, error) {
	if !strings.HasPrefix(ref, RootMarker) {
		return nil, &ReferenceError{Ref: ref, Message: "only " + RootMarker + " references are supported"}
	}

	if r.memo != nil {
		if hit, ok := r.memo.Get(ref); ok {
			return hit.value, nil
		}
	}

	value := lookup(r.doc.root, strings.TrimPrefix(ref, RootMarker))

	if r.memo != nil {
		r.memo.Add(ref, resolved{value: value})
	}
	return value, nil
}

// RefOf returns the reference string carried by raw, if any.
func RefOf(raw any) (string, bool) {
	m, ok := raw.(*Map)
	if !ok {
		return "", false
	}
	v, ok := m.Get(RefKey)
	if !ok {
		return "", false
	}
	ref, ok := v.(string)
	return ref, ok
}

// RefName returns the last pointer segment of ref, e.g. "Pet" for
// "#/components/schemas/Pet".
func RefName(ref string) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return decodeToken(ref[i+1:])
	}
	return ref
}

func lookup(root *Map, pointer string) any {
	var current any = root
	for _, token := range strings.Split(pointer, "/") {
		token = decodeToken(token)

		switch typed := current.(type) {
		case *Map:
			next, ok := typed.Get(token)
			if !ok {
				return nil
			}
			current = next
		case []any:
			index, err := strconv.Atoi(token)
			if err != nil || index < 0 || index >= len(typed) {
				return nil
			}
			current = typed[index]
		default:
			return nil
		}
	}
	return current
}

func decodeToken(token string) string {
	token = strings.ReplaceAll(token, "~1", "/")
	return strings.ReplaceAll(token, "~0", "~")
}
