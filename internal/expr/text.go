package expr

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/livefir/livebind/internal/path"
)

var placeholder = regexp.MustCompile(`{{[^{}]*?}}`)

// Text is a string with {{ path }} placeholders, rendered against a data
// view.
type Text struct {
	source string
	chunks []string
	values []path.Path
}

// ParseText compiles s. A string with no placeholder is returned
// unchanged, otherwise the result is a Text.
func ParseText(s string) (any, error) {
	matches := placeholder.FindAllStringIndex(s, -1)
	if len(matches) == 0 {
		return s, nil
	}
	t := Text{source: s}
	start := 0
	for _, m := range matches {
		p, err := path.Parse(strings.TrimSpace(s[m[0]+2 : m[1]-2]))
		if err != nil {
			return nil, err
		}
		t.chunks = append(t.chunks, s[start:m[0]])
		t.values = append(t.values, p)
		start = m[1]
	}
	t.chunks = append(t.chunks, s[start:])
	return t, nil
}

// Evaluate renders the text.
func (t Text) Evaluate(data any) (any, error) {
	var b strings.Builder
	for i, p := range t.values {
		b.WriteString(t.chunks[i])
		v, err := p.Get(data)
		if err != nil {
			return nil, err
		}
		fmt.Fprint(&b, v)
	}
	b.WriteString(t.chunks[len(t.chunks)-1])
	return b.String(), nil
}

// Paths returns the placeholder paths in order of appearance.
func (t Text) Paths() []path.Path { return append([]path.Path(nil), t.values...) }

func (t Text) String() string { return t.source }
