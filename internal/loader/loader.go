package loader

import (
	"fmt"
	"os"
	"strings"

	"github.com/pb33f/libopenapi"

	"github.com/kolah/refdoc/internal/document"
)

type Result struct {
	// Document is the ordered raw tree the reference engine reads.
	Document *document.Document
	// Source is the parsed description, used for request validation.
	Source   libopenapi.Document
	Version  string
	Warnings []string
	RawData  []byte
}

func LoadFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading spec file: %w", err)
	}

	return Load(data)
}

func Load(data []byte) (*Result, error) {
	src, err := libopenapi.NewDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parsing OpenAPI document: %w", err)
	}

	version := src.GetVersion()
	if !strings.HasPrefix(version, "3.") {
		return nil, fmt.Errorf("unsupported OpenAPI version: %s (only 3.x supported)", version)
	}

	doc, err := document.Decode(data)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Document: doc,
		Source:   src,
		Version:  version,
		RawData:  data,
	}

	if strings.HasPrefix(version, "3.0") {
		result.Warnings = append(result.Warnings, "OpenAPI 3.0.x detected; some 3.1/3.2 features unavailable")
	}

	return result, nil
}
