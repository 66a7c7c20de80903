package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFences_SingleBlock(t *testing.T) {
	body := []byte("intro\n\n```go\nfunc main() {}\n```\n\noutro\n")

	fences, unclosed := Fences(body)
	require.Equal(t, -1, unclosed)
	require.Len(t, fences, 1)
	f := fences[0]
	assert.Equal(t, "go", f.Lang)
	assert.Equal(t, []byte("func main() {}\n"), f.Code)
	assert.Equal(t, []byte("```go\nfunc main() {}\n```\n"), f.Raw)
}

func TestFences_RoundTripByteForByte(t *testing.T) {
	bodies := [][]byte{
		[]byte("```csharp\nvar q = ctx.Users.Where(p);\n```\n"),
		[]byte("a\n\n~~~\nno lang\n~~~\n\nb\n"),
		[]byte("````\nnested ``` inside\n````\n"),
		[]byte("```go\nno trailing newline\n```"),
	}
	for _, body := range bodies {
		fences, unclosed := Fences(body)
		require.Equal(t, -1, unclosed)
		require.Len(t, fences, 1)

		// Re-embedding the extracted block must reproduce the input exactly.
		out := Splice(body, fences[0], fences[0].Raw)
		assert.Equal(t, body, out)
	}
}

func TestFences_MultipleBlocks(t *testing.T) {
	body := []byte("```go\na\n```\ntext\n```sql\nSELECT 1;\n```\n")

	fences, unclosed := Fences(body)
	require.Equal(t, -1, unclosed)
	require.Len(t, fences, 2)
	assert.Equal(t, "go", fences[0].Lang)
	assert.Equal(t, "sql", fences[1].Lang)
}

func TestFences_UnclosedReported(t *testing.T) {
	body := []byte("fine so far\n```go\nfunc main() {}\n")

	fences, unclosed := Fences(body)
	assert.Empty(t, fences)
	assert.Equal(t, len("fine so far\n"), unclosed)
}

func TestFences_CloseRequiresSameCharAndLength(t *testing.T) {
	// Tildes cannot close a backtick fence, and a shorter run cannot close
	// a longer one.
	body := []byte("````\ncode\n~~~~\n```\n")

	fences, unclosed := Fences(body)
	assert.Empty(t, fences)
	assert.Equal(t, 0, unclosed)
}

func TestFences_LangStopsAtWhitespace(t *testing.T) {
	fences, unclosed := Fences([]byte("```go linenums\nx\n```\n"))
	require.Equal(t, -1, unclosed)
	require.Len(t, fences, 1)
	assert.Equal(t, "go", fences[0].Lang)
}

func TestFences_NoFences(t *testing.T) {
	fences, unclosed := Fences([]byte("plain text\nwith `inline code` only\n"))
	assert.Empty(t, fences)
	assert.Equal(t, -1, unclosed)
}
