// Package document holds the loaded API description as an immutable ordered
// tree and resolves internal "#/..." references against it.
package document

// Top-level sections of an OpenAPI description.
const (
	SectionPaths      = "paths"
	SectionComponents = "components"
	SectionTags       = "tags"
	SectionInfo       = "info"
	SectionServers    = "servers"
	SectionSecurity   = "security"
)

// Document is one loaded description. It is never mutated after New, so it
// can be shared freely between goroutines.
type Document struct {
	root *Map
}

// New wraps an already decoded root mapping.
func New(root *Map) *Document {
	if root == nil {
		root = NewMap()
	}
	return &Document{root: root}
}

// Root returns the top-level mapping.
func (d *Document) Root() *Map {
	return d.root
}

// Section returns a top-level mapping section such as "paths" or "components".
func (d *Document) Section(name string) *Map {
	return d.root.Map(name)
}

// Info returns the info.title and info.version values.
func (d *Document) Info() (title, version string) {
	info := d.root.Map(SectionInfo)
	return info.String("title"), info.String("version")
}

// Tag is an entry of the top-level tag list.
type Tag struct {
	Name        string
	Description string
}

// Tags returns the declared tags in document order.
func (d *Document) Tags() []Tag {
	var tags []Tag
	for _, raw := range d.root.Slice(SectionTags) {
		m, ok := raw.(*Map)
		if !ok {
			continue
		}
		name := m.String("name")
		if name == "" {
			continue
		}
		tags = append(tags, Tag{Name: name, Description: m.String("description")})
	}
	return tags
}

// ServerURLs returns the declared server URLs in document order.
func (d *Document) ServerURLs() []string {
	var urls []string
	for _, raw := range d.root.Slice(SectionServers) {
		m, ok := raw.(*Map)
		if !ok {
			continue
		}
		if u := m.String("url"); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// Security returns the document-level security requirement list and
// whether the document declares one at all.
func (d *Document) Security() ([]any, bool) {
	raw, ok := d.root.Get(SectionSecurity)
	list, _ := raw.([]any)
	return list, ok
}
