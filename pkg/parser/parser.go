package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Parser extracts plain text from an uploaded document.
type Parser interface {
	// Extract reads the whole document and returns its text content.
	Extract(reader io.Reader) (string, error)
	// Supports reports whether this parser handles the given file name.
	Supports(fileName string) bool
}

// Registry resolves the parser for a file by extension.
type Registry struct {
	parsers []Parser
}

func NewRegistry(parsers ...Parser) *Registry {
	return &Registry{parsers: parsers}
}

// DefaultRegistry handles the formats the ingestion pipeline accepts.
func DefaultRegistry() *Registry {
	return NewRegistry(
		NewPlainTextParser(),
		NewMarkdownParser(),
	)
}

func (r *Registry) For(fileName string) (Parser, error) {
	for _, p := range r.parsers {
		if p.Supports(fileName) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("unsupported document type: %s", filepath.Ext(fileName))
}

// SupportedExtension reports whether any registered parser accepts the file.
func (r *Registry) SupportedExtension(fileName string) bool {
	_, err := r.For(fileName)
	return err == nil
}

func hasExtension(fileName string, extensions ...string) bool {
	ext := strings.ToLower(filepath.Ext(fileName))
	for _, candidate := range extensions {
		if ext == candidate {
			return true
		}
	}
	return false
}
