package markdown

import (
	"bytes"
	"strings"
)

// Fence is a fenced code block located in a Markdown body. Raw holds the
// exact source bytes including both delimiter lines, so cutting Raw out of
// the body and splicing it back reproduces the original input.
type Fence struct {
	Lang  string // info string language tag, "" when absent
	Start int    // byte offset of the opening delimiter line
	End   int    // byte offset just past the closing delimiter line
	Raw   []byte
	Code  []byte // contents between the delimiters
}

type openFence struct {
	char   byte
	length int
	lang   string
	start  int // offset of the opening line
	code   int // offset where code content begins
}

// Fences scans a Markdown body for fenced code blocks. unclosed reports the
// byte offset of an opening delimiter with no matching close (-1 when all
// fences are balanced).
//
// The scan follows CommonMark closely enough for lint purposes: a fence opens
// with three or more backticks or tildes at the start of a line (up to three
// leading spaces), and closes with a line of the same character at least as
// long carrying no info string.
func Fences(body []byte) (fences []Fence, unclosed int) {
	unclosed = -1
	if len(body) == 0 {
		return nil, unclosed
	}
	var cur *openFence

	offset := 0
	for offset < len(body) {
		line, next := nextLine(body, offset)
		char, length, info := fenceLine(line)

		switch {
		case cur == nil:
			if length >= 3 && !(char == '`' && strings.ContainsRune(info, '`')) {
				lang := info
				if i := strings.IndexAny(lang, " \t"); i >= 0 {
					lang = lang[:i]
				}
				cur = &openFence{char: char, length: length, lang: lang, start: offset, code: min(next, len(body))}
			}
		case char == cur.char && length >= cur.length && info == "":
			end := min(next, len(body))
			fences = append(fences, Fence{
				Lang:  cur.lang,
				Start: cur.start,
				End:   end,
				Raw:   body[cur.start:end],
				Code:  body[cur.code:offset],
			})
			cur = nil
		}

		if next > len(body) {
			break
		}
		offset = next
	}

	if cur != nil {
		unclosed = cur.start
	}
	return fences, unclosed
}

func nextLine(body []byte, offset int) (line []byte, next int) {
	if i := bytes.IndexByte(body[offset:], '\n'); i >= 0 {
		return body[offset : offset+i], offset + i + 1
	}
	return body[offset:], len(body) + 1
}

// fenceLine classifies a line as a potential fence delimiter, returning the
// fence character, run length, and trimmed info string. length 0 means the
// line is not a delimiter.
func fenceLine(line []byte) (char byte, length int, info string) {
	trimmed := line
	indent := 0
	for indent < 3 && len(trimmed) > 0 && trimmed[0] == ' ' {
		trimmed = trimmed[1:]
		indent++
	}
	if len(trimmed) == 0 {
		return 0, 0, ""
	}
	c := trimmed[0]
	if c != '`' && c != '~' {
		return 0, 0, ""
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == c {
		n++
	}
	if n < 3 {
		return 0, 0, ""
	}
	return c, n, strings.TrimSpace(string(trimmed[n:]))
}

// Splice replaces a fence's byte range in body. Passing the fence's own Raw
// bytes yields the original body unchanged.
func Splice(body []byte, f Fence, replacement []byte) []byte {
	out := make([]byte, 0, len(body)-len(f.Raw)+len(replacement))
	out = append(out, body[:f.Start]...)
	out = append(out, replacement...)
	out = append(out, body[f.End:]...)
	return out
}
