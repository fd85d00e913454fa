package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livefir/livebind/internal/errs"
	"github.com/livefir/livebind/internal/path"
)

func TestParseRoundTrip(t *testing.T) {
	tests := []string{
		"a == b",
		"a != 'x'",
		"not flags.ready",
		"a and b == c",
		"name in players",
		"a or b and c",
		`mode == "dark"`,
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			e, err := Parse(input)
			require.NoError(t, err)
			assert.Equal(t, input, e.String())
		})
	}
}

func TestPrecedenceSplitsLowestFirst(t *testing.T) {
	e := MustParse("a and b==c")
	b, ok := e.(Binary)
	require.True(t, ok)
	assert.Equal(t, "and", b.Op)
	assert.Equal(t, "a", b.Left.String())

	right, ok := b.Right.(Binary)
	require.True(t, ok)
	assert.Equal(t, "==", right.Op)

	n, ok := MustParse("not a == b").(Not)
	require.True(t, ok)
	assert.Equal(t, "==", n.Right.(Binary).Op)
}

func TestEvaluate(t *testing.T) {
	data := map[string]any{
		"a":       true,
		"b":       3,
		"c":       3.0,
		"zero":    0,
		"name":    "Lea",
		"players": []any{"Lea", "Tom"},
		"flags":   map[string]any{"ready": false},
	}

	tests := []struct {
		input string
		want  any
	}{
		{"a", true},
		{"b == c", true},
		{"b != c", false},
		{"a and b == c", true},
		{"zero and a", false},
		{"zero or a", true},
		{"not flags.ready", true},
		{"name in players", true},
		{"'Max' in players", false},
		{"'ea' in name", true},
		{"name == 'Lea'", true},
		{`name != "Lea"`, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := MustParse(tt.input).Evaluate(data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{"", "a ==", "a.b-c", "not a..b"} {
		_, err := Parse(input)
		var perr *errs.PathParseError
		require.ErrorAs(t, err, &perr, input)
		assert.Equal(t, input, perr.Input)
	}
}

func TestPathsCollectsOperands(t *testing.T) {
	e := MustParse("a.b == c and not d")
	var got []string
	for _, p := range e.Paths() {
		got = append(got, p.String())
	}
	assert.Equal(t, []string{"a.b", "c", "d"}, got)
}

func TestTruthy(t *testing.T) {
	falsy := []any{nil, false, 0, 0.0, "", []any{}, map[string]any{}}
	for _, v := range falsy {
		assert.False(t, Truthy(v), "%#v", v)
	}
	truthy := []any{true, 1, -2.5, "x", []any{0}, map[string]any{"k": nil}}
	for _, v := range truthy {
		assert.True(t, Truthy(v), "%#v", v)
	}
}

func TestText(t *testing.T) {
	v, err := ParseText("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", v)

	v, err = ParseText("Round {{ round }} of {{game.rounds}}")
	require.NoError(t, err)
	text, ok := v.(Text)
	require.True(t, ok)
	assert.Equal(t, []path.Path{path.MustParse("round"), path.MustParse("game.rounds")}, text.Paths())

	out, err := text.Evaluate(map[string]any{"round": 2, "game": map[string]any{"rounds": 10}})
	require.NoError(t, err)
	assert.Equal(t, "Round 2 of 10", out)
	assert.Equal(t, "Round {{ round }} of {{game.rounds}}", text.String())

	_, err = ParseText("{{ not-a-path }}")
	assert.Error(t, err)
}

func TestEvaluateHelper(t *testing.T) {
	v, err := Evaluate(42, nil)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	v, err = Evaluate(path.MustParse("x"), map[string]any{"x": "y"})
	require.NoError(t, err)
	assert.Equal(t, "y", v)
}
