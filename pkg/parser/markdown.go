package parser

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	codeFenceRegex  = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRegex = regexp.MustCompile("`([^`]*)`")
	imageRegex      = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	linkRegex       = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	headingRegex    = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	emphasisRegex   = regexp.MustCompile(`(\*{1,3}|_{1,3})([^*_]+)(\*{1,3}|_{1,3})`)
)

// MarkdownParser strips markdown syntax down to the readable text so the
// chunker works on prose, not markup.
type MarkdownParser struct{}

func NewMarkdownParser() *MarkdownParser {
	return &MarkdownParser{}
}

func (p *MarkdownParser) Supports(fileName string) bool {
	return hasExtension(fileName, ".md", ".markdown")
}

func (p *MarkdownParser) Extract(reader io.Reader) (string, error) {
	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	text := string(raw)
	if !utf8.ValidString(text) {
		return "", fmt.Errorf("document is not valid utf-8")
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = codeFenceRegex.ReplaceAllString(text, "")
	text = imageRegex.ReplaceAllString(text, "$1")
	text = linkRegex.ReplaceAllString(text, "$1")
	text = inlineCodeRegex.ReplaceAllString(text, "$1")
	text = headingRegex.ReplaceAllString(text, "")
	text = emphasisRegex.ReplaceAllString(text, "$2")

	return strings.TrimSpace(text), nil
}
