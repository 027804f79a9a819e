package confidence

import (
	"bytes"
	"regexp"
	"strconv"
)

// headerRegex matches the structured confidence header the generator is
// instructed to emit first. Expected format: "[Confidence: X.XX]", anchored at
// the start of the accumulated stream.
var headerRegex = regexp.MustCompile(`^\[Confidence:\s*((?:0\.\d{2})|(?:1\.00))\]`)

// DefaultMaxBufferBytes bounds how much of a non-conforming stream is
// accumulated before the parser gives up. A conforming header fits in well
// under 32 bytes; anything beyond the cap will never match an anchored prefix.
const DefaultMaxBufferBytes = 4096

// Parser incrementally extracts the confidence header from a stream of text
// fragments. Fragments are buffered until the accumulated content matches the
// header pattern; nothing is released to the caller before that. One Parser
// instance serves exactly one answer stream.
type Parser struct {
	buf      bytes.Buffer
	maxBytes int
	failed   bool
}

// NewParser creates a parser with the given buffer cap. A cap of zero or less
// falls back to DefaultMaxBufferBytes.
func NewParser(maxBufferBytes int) *Parser {
	if maxBufferBytes <= 0 {
		maxBufferBytes = DefaultMaxBufferBytes
	}
	return &Parser{maxBytes: maxBufferBytes}
}

// TryExtract appends fragment to the internal buffer and attempts to match the
// header against everything accumulated so far.
//
// While the header has not yet fully arrived it returns matched=false and the
// buffer keeps the content for the next call. On the first successful match it
// returns the parsed confidence plus any content that trailed the header in
// the same fragment, and clears the buffer; the parser must not be invoked
// again for that answer.
func (p *Parser) TryExtract(fragment string) (matched bool, score float64, remainder string) {
	if p.failed {
		return false, 0, ""
	}

	p.buf.WriteString(fragment)
	full := p.buf.String()

	m := headerRegex.FindStringSubmatchIndex(full)
	if m == nil {
		if p.buf.Len() > p.maxBytes {
			// The header is anchored at position zero, so once the buffer
			// exceeds the cap without matching it never will.
			p.failed = true
			p.buf.Reset()
		}
		return false, 0, ""
	}

	parsed, err := strconv.ParseFloat(full[m[2]:m[3]], 64)
	if err != nil {
		return false, 0, ""
	}

	remainder = full[m[1]:]
	p.buf.Reset()
	return true, parsed, remainder
}

// Failed reports whether the parser gave up on this stream: the buffered
// prefix exceeded the cap without ever matching the header.
func (p *Parser) Failed() bool {
	return p.failed
}

// Buffered returns the number of bytes currently held back from the caller.
func (p *Parser) Buffered() int {
	return p.buf.Len()
}
