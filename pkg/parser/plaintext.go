package parser

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

type PlainTextParser struct{}

func NewPlainTextParser() *PlainTextParser {
	return &PlainTextParser{}
}

func (p *PlainTextParser) Supports(fileName string) bool {
	return hasExtension(fileName, ".txt", ".text", ".log", ".csv")
}

func (p *PlainTextParser) Extract(reader io.Reader) (string, error) {
	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	text := string(raw)
	if !utf8.ValidString(text) {
		return "", fmt.Errorf("document is not valid utf-8")
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.TrimSpace(text), nil
}
