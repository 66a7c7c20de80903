package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// ErrUnterminated indicates a document opened a front matter block with `---`
// but never closed it.
var ErrUnterminated = errors.New("front matter delimiter found but block is never closed")

// Style records the newline convention of a source document so that callers
// can rewrite it without changing line endings.
type Style struct {
	Newline string
}

func (s Style) newline() string {
	if s.Newline == "" {
		return "\n"
	}
	return s.Newline
}

// Split separates a `---` delimited YAML front matter block from the Markdown
// body. When the document does not begin with a delimiter, found is false and
// body is the whole input.
func Split(src []byte) (meta, body []byte, found bool, style Style, err error) {
	style = detectStyle(src)
	nl := style.newline()

	open := []byte("---" + nl)
	if !bytes.HasPrefix(src, open) {
		return nil, src, false, style, nil
	}

	rest := src[len(open):]

	// An immediately closed block is valid and empty.
	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], true, style, nil
	}

	closing := []byte(nl + "---" + nl)
	at := bytes.Index(rest, closing)
	if at < 0 {
		return nil, nil, false, style, ErrUnterminated
	}

	meta = rest[:at+len(nl)]
	body = rest[at+len(closing):]
	return meta, body, true, style, nil
}

// Join reassembles a document from its front matter block and body. The
// round-trip Join(Split(doc)) yields doc byte-for-byte.
func Join(meta, body []byte, found bool, style Style) []byte {
	if !found {
		return body
	}
	nl := style.newline()
	delim := []byte("---" + nl)

	out := make([]byte, 0, 2*len(delim)+len(meta)+len(body))
	out = append(out, delim...)
	out = append(out, meta...)
	out = append(out, delim...)
	out = append(out, body...)
	return out
}

// Decode unmarshals raw front matter bytes (without delimiters) into out.
func Decode(meta []byte, out any) error {
	if len(meta) == 0 {
		return nil
	}
	return yaml.Unmarshal(meta, out)
}

// ParseMap parses raw front matter bytes into a generic field map. Empty
// input yields an empty, non-nil map.
func ParseMap(meta []byte) (map[string]any, error) {
	fields := map[string]any{}
	if len(meta) == 0 {
		return fields, nil
	}
	if err := yaml.Unmarshal(meta, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func detectStyle(src []byte) Style {
	if i := bytes.IndexByte(src, '\n'); i > 0 && src[i-1] == '\r' {
		return Style{Newline: "\r\n"}
	}
	return Style{Newline: "\n"}
}
