package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryResolvesByExtension(t *testing.T) {
	registry := DefaultRegistry()

	p, err := registry.For("notes.txt")
	require.NoError(t, err)
	assert.IsType(t, &PlainTextParser{}, p)

	p, err = registry.For("README.MD")
	require.NoError(t, err)
	assert.IsType(t, &MarkdownParser{}, p)

	_, err = registry.For("report.pdf")
	assert.Error(t, err)
}

func TestPlainTextParser(t *testing.T) {
	p := NewPlainTextParser()
	text, err := p.Extract(strings.NewReader("  line one\r\nline two  \n"))
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", text)
}

func TestPlainTextParserRejectsBinary(t *testing.T) {
	p := NewPlainTextParser()
	_, err := p.Extract(strings.NewReader("\xff\xfe\x00"))
	assert.Error(t, err)
}

func TestMarkdownParserStripsMarkup(t *testing.T) {
	input := "# Title\n\nSome **bold** and a [link](https://example.com).\n\n```go\nfmt.Println(\"skipped\")\n```\n\nInline `code` stays as text."
	p := NewMarkdownParser()
	text, err := p.Extract(strings.NewReader(input))
	require.NoError(t, err)

	assert.Contains(t, text, "Title")
	assert.Contains(t, text, "Some bold and a link.")
	assert.Contains(t, text, "Inline code stays as text.")
	assert.NotContains(t, text, "fmt.Println")
	assert.NotContains(t, text, "**")
	assert.NotContains(t, text, "https://example.com")
}
