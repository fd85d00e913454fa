package livebind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterApp() *Factory {
	return &Factory{
		Name: "app",
		Kind: KindFrame,
		Children: []*Factory{
			{Name: "inc", Kind: KindButton, Command: "increment", Style: map[string]interface{}{"text": "+"}},
			{Name: "noop", Kind: KindButton},
			{Name: "count", Kind: KindLabel, Style: map[string]interface{}{"text": "{{ count }}"}},
		},
	}
}

func addTo(key string, n int) Action {
	return func(ctx *ActionContext) error {
		v, err := ctx.Get(key)
		if err != nil {
			return err
		}
		return ctx.Set(key, v.(int)+n)
	}
}

func TestClickDispatchesCommand(t *testing.T) {
	tree, _, _ := newTestTree(t, counterApp(), map[string]interface{}{"count": 0},
		WithActions(Actions{"increment": addTo("count", 1)}))
	inc := tree.Find("inc")[0]

	require.NoError(t, inc.Click())
	require.NoError(t, inc.Click())
	assert.Equal(t, "2", tree.Find("count")[0].Attrs()["text"])
	assert.Equal(t, int64(2), tree.Metrics().GetCustomCounters()["action:increment"])

	assert.Error(t, tree.Find("noop")[0].Click())
	assert.Error(t, inc.Dispatch("missing", nil))
}

func TestFactoryActionsShadowTreeActions(t *testing.T) {
	app := counterApp()
	app.Actions = map[string]Action{"increment": addTo("count", 10)}
	tree, _, _ := newTestTree(t, app, map[string]interface{}{"count": 0},
		WithActions(Actions{"increment": addTo("count", 1)}))

	require.NoError(t, tree.Find("inc")[0].Click())
	assert.Equal(t, "10", tree.Find("count")[0].Attrs()["text"])
}

type move struct {
	Step int `json:"step" validate:"min=1"`
}

func TestDispatchPayload(t *testing.T) {
	var seen *ActionData
	actions := Actions{
		"move": func(ctx *ActionContext) error {
			seen = ctx.Data
			var m move
			if err := ctx.BindAndValidate(&m); err != nil {
				return err
			}
			return addTo("count", m.Step)(ctx)
		},
	}
	tree, _, _ := newTestTree(t, counterApp(), map[string]interface{}{"count": 1}, WithActions(actions))
	label := tree.Find("count")[0]

	require.NoError(t, label.Dispatch("move", map[string]interface{}{"step": 3}))
	assert.Equal(t, "4", label.Attrs()["text"])
	assert.Equal(t, 3, seen.GetInt("step"))
	assert.Equal(t, 1, seen.GetInt("count"), "the payload is overlaid on the data view")

	err := label.Dispatch("move", map[string]interface{}{"step": 0})
	var multi MultiError
	require.ErrorAs(t, err, &multi)
	assert.Equal(t, "step", multi[0].Field)
	assert.Equal(t, "4", label.Attrs()["text"])
}

func TestActionDataGetters(t *testing.T) {
	d := newActionData(map[string]interface{}{
		"n":      " 42 ",
		"bad":    "4x",
		"f":      2.9,
		"name":   "ann",
		"count":  7,
		"nested": map[string]interface{}{"a": 1},
	})

	tests := []struct {
		key     string
		wantInt int
		wantStr string
	}{
		{"n", 42, " 42 "},
		{"bad", 0, "4x"},
		{"f", 2, "2.9"},
		{"name", 0, "ann"},
		{"count", 7, "7"},
		{"nested", 0, ""},
		{"missing", 0, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.wantInt, d.GetInt(tt.key), tt.key)
		assert.Equal(t, tt.wantStr, d.GetString(tt.key), tt.key)
	}
	assert.True(t, d.Has("nested"))
	assert.False(t, d.Has("missing"))
}
