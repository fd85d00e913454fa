package livebind

import (
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livefir/livebind/internal/path"
	"github.com/livefir/livebind/internal/reactive"
)

func listApp(text string) *Factory {
	return &Factory{
		Name: "app",
		Kind: KindFrame,
		Children: []*Factory{{
			Name:  "row",
			Kind:  KindLabel,
			For:   "player",
			In:    "players",
			Style: map[string]interface{}{"text": text},
		}},
	}
}

func playersOf(t *testing.T, tree *Tree) *reactive.List {
	t.Helper()
	v, err := tree.Data().Get("players")
	require.NoError(t, err)
	l, ok := v.(*reactive.List)
	require.True(t, ok, "players is %T", v)
	return l
}

func TestListPopDestroysLastAndReindexes(t *testing.T) {
	tree, _, _ := newTestTree(t, listApp("{{ index }}:{{ player }}"), map[string]interface{}{
		"players": []interface{}{"x0"},
	})
	players := playersOf(t, tree)

	require.NoError(t, players.Append("x1"))
	rows := tree.Find("row")
	require.Len(t, rows, 2)
	assert.Equal(t, []interface{}{"0:x0", "1:x1"}, texts(rows))
	first, second := rows[0], rows[1]

	_, err := players.Pop(0)
	require.NoError(t, err)

	rows = tree.Find("row")
	require.Len(t, rows, 1)
	assert.Equal(t, first.Handle(), rows[0].Handle(), "the first child is kept")
	assert.True(t, second.Destroyed())
	assert.True(t, widgetOf(second).destroyed)

	index, err := rows[0].Data().Get("index")
	require.NoError(t, err)
	assert.Equal(t, 0, index)
	view := rows[0].Data().View().(map[string]interface{})
	assert.Equal(t, "x1", view["player"])
	assert.Equal(t, []interface{}{"0:x1"}, texts(rows))
}

func TestListInsertAppendsAtTailAndReindexes(t *testing.T) {
	tree, _, _ := newTestTree(t, listApp("{{ index }}:{{ player }}"), map[string]interface{}{
		"players": []interface{}{"a", "c"},
	})
	players := playersOf(t, tree)
	before := tree.Find("row")

	require.NoError(t, players.Insert(1, "b"))

	rows := tree.Find("row")
	require.Len(t, rows, 3)
	assert.Equal(t, before[0].Handle(), rows[0].Handle())
	assert.Equal(t, before[1].Handle(), rows[1].Handle())
	assert.Equal(t, []interface{}{"0:a", "1:b", "2:c"}, texts(rows))
	assert.Equal(t, int64(2), tree.Metrics().GetMetrics().Reindexes)
}

func TestListRemoveAndReplaceAll(t *testing.T) {
	tree, _, _ := newTestTree(t, listApp("{{ index }}:{{ player }}"), map[string]interface{}{
		"players": []interface{}{"a", "b", "c"},
	})
	players := playersOf(t, tree)

	require.NoError(t, players.Remove("a"))
	assert.Equal(t, []interface{}{"0:b", "1:c"}, texts(tree.Find("row")))

	require.NoError(t, tree.Data().Set("players", []interface{}{"p", "q", "r"}))
	assert.Equal(t, []interface{}{"0:p", "1:q", "2:r"}, texts(tree.Find("row")))
	assert.Same(t, players, playersOf(t, tree), "the list is updated in place")
}

func TestListBindsReactiveElementsDirectly(t *testing.T) {
	tree, _, _ := newTestTree(t, listApp("{{ player.name }}"), map[string]interface{}{
		"players": []interface{}{
			map[string]interface{}{"name": "a"},
			map[string]interface{}{"name": "b"},
		},
	})
	players := playersOf(t, tree)

	_, err := players.Pop(0)
	require.NoError(t, err)
	rows := tree.Find("row")
	require.Len(t, rows, 1)
	assert.Equal(t, []interface{}{"b"}, texts(rows))

	elem, err := players.At(0)
	require.NoError(t, err)
	renders := rows[0].StyleRenders()
	require.NoError(t, elem.(*reactive.Map).Set("name", "z"))
	assert.Equal(t, []interface{}{"z"}, texts(rows))
	assert.Equal(t, renders+1, rows[0].StyleRenders())
}

func TestListWithCondition(t *testing.T) {
	app := listApp("{{ player }}")
	app.Children[0].If = "show"
	tree, _, _ := newTestTree(t, app, map[string]interface{}{
		"show":    false,
		"players": []interface{}{"a"},
	})
	players := playersOf(t, tree)
	assert.Empty(t, tree.Find("row"))

	require.NoError(t, tree.Data().Set("show", true))
	assert.Len(t, tree.Find("row"), 1)

	require.NoError(t, players.Append("b"))
	assert.Len(t, tree.Find("row"), 2)

	require.NoError(t, tree.Data().Set("show", false))
	require.NoError(t, players.Append("c"))
	assert.Empty(t, tree.Find("row"))

	require.NoError(t, tree.Data().Set("show", true))
	assert.Equal(t, []interface{}{"a", "b", "c"}, texts(tree.Find("row")))
}

func bannerApp() *Factory {
	return &Factory{
		Name: "app",
		Kind: KindFrame,
		Children: []*Factory{{
			Name:  "banner",
			Kind:  KindLabel,
			If:    "status == 'ready'",
			Style: map[string]interface{}{"text": "go"},
		}},
	}
}

func TestConditionalChildAppearsOnce(t *testing.T) {
	tree, _, _ := newTestTree(t, bannerApp(), map[string]interface{}{"status": "idle"})
	assert.Empty(t, tree.Find("banner"))
	subscribers := tree.Data().Events().Len()
	created := tree.Metrics().GetMetrics().ComponentsCreated

	require.NoError(t, tree.Data().Set("status", "ready"))
	banners := tree.Find("banner")
	require.Len(t, banners, 1)
	assert.Equal(t, created+1, tree.Metrics().GetMetrics().ComponentsCreated)
	assert.Len(t, widgetOf(tree.Root()).arranged, 1)

	require.NoError(t, tree.Data().Set("status", "ready"))
	assert.Equal(t, created+1, tree.Metrics().GetMetrics().ComponentsCreated)

	h := banners[0].Handle()
	require.NoError(t, tree.Data().Set("status", "done"))
	assert.Empty(t, tree.Find("banner"))
	assert.True(t, widgetOf(banners[0]).destroyed)
	assert.Empty(t, widgetOf(tree.Root()).arranged)
	assert.Equal(t, subscribers, tree.Data().Events().Len(), "the removed child left no subscription")

	_, ok := tree.Get(h)
	assert.False(t, ok)
}

func TestStyleRendersOnlyAffectedComponents(t *testing.T) {
	app := &Factory{
		Name: "app",
		Kind: KindFrame,
		Children: []*Factory{
			{Name: "la", Kind: KindLabel, Style: map[string]interface{}{"text": "{{ a }}"}},
			{Name: "lb", Kind: KindLabel, Style: map[string]interface{}{"text": "{{ b }}"}},
		},
	}
	tree, _, _ := newTestTree(t, app, map[string]interface{}{"a": 1, "b": 2})
	la, lb := tree.Find("la")[0], tree.Find("lb")[0]
	ra, rb := la.StyleRenders(), lb.StyleRenders()

	require.NoError(t, tree.Data().Set("a", 5))
	assert.Equal(t, ra+1, la.StyleRenders())
	assert.Equal(t, rb, lb.StyleRenders())
	assert.Equal(t, "5", la.Attrs()["text"])

	calls := widgetOf(la).calls
	assert.Equal(t, map[string]interface{}{"text": "5"}, calls[len(calls)-1])

	require.NoError(t, tree.Data().Set("a", 5))
	assert.Equal(t, ra+2, la.StyleRenders())
	assert.Len(t, widgetOf(la).calls, len(calls), "unchanged attributes are not pushed")
}

func TestStyleFollowsNestedChanges(t *testing.T) {
	app := &Factory{
		Name: "app",
		Kind: KindFrame,
		Children: []*Factory{
			{Name: "theme", Kind: KindLabel, Style: map[string]interface{}{"text": "{{ settings.theme }}", "width": 3}},
		},
	}
	tree, _, _ := newTestTree(t, app, map[string]interface{}{
		"settings": map[string]interface{}{"theme": "dark"},
	})
	label := tree.Find("theme")[0]
	assert.Equal(t, map[string]interface{}{"text": "dark"}, label.Attrs(), "keys the widget does not accept are skipped")

	require.NoError(t, tree.Data().Set("settings", map[string]interface{}{"theme": "light"}))
	assert.Equal(t, "light", label.Attrs()["text"])
}

func TestBinderIsTwoWay(t *testing.T) {
	app := &Factory{
		Name: "app",
		Kind: KindFrame,
		Children: []*Factory{
			{Name: "name", Kind: KindEntry, Bind: "user.name"},
			{Name: "echo", Kind: KindLabel, Style: map[string]interface{}{"text": "{{ user.name }}"}},
		},
	}
	tree, _, _ := newTestTree(t, app, map[string]interface{}{
		"user": map[string]interface{}{"name": "ann"},
	})
	field := tree.Find("name")[0]
	echo := tree.Find("echo")[0]
	entry := entryOf(t, field)
	userName := path.MustParse("user.name")
	assert.Equal(t, "ann", entry.local)

	require.NoError(t, field.Input("bob"))
	v, err := userName.Get(tree.Data())
	require.NoError(t, err)
	assert.Equal(t, "bob", v)
	assert.Equal(t, "bob", echo.Attrs()["text"])

	require.NoError(t, userName.Set(tree.Data(), "cy"))
	assert.Equal(t, "cy", entry.local)

	entry.local = "dee"
	require.NoError(t, tree.UpdateData())
	v, err = userName.Get(tree.Data())
	require.NoError(t, err)
	assert.Equal(t, "dee", v)

	writes := tree.Metrics().GetMetrics().ModelWrites
	require.NoError(t, tree.Tick())
	assert.Equal(t, writes, tree.Metrics().GetMetrics().ModelWrites, "equal values are not written back")
}

func TestConfigurationErrors(t *testing.T) {
	wrap := func(child *Factory) *Factory {
		return &Factory{Name: "app", Kind: KindFrame, Children: []*Factory{child}}
	}
	tests := []struct {
		name    string
		factory *Factory
		data    map[string]interface{}
	}{
		{"leaf with children", wrap(&Factory{Name: "l", Kind: KindLabel, Children: []*Factory{{Name: "x", Kind: KindLabel}}}), nil},
		{"leaf with layout", wrap(&Factory{Name: "l", Kind: KindLabel, Layout: LayoutHorizontal}), nil},
		{"unknown kind", wrap(&Factory{Name: "s", Kind: "slider"}), nil},
		{"missing name", wrap(&Factory{Kind: KindLabel}), nil},
		{"in without for", wrap(&Factory{Name: "r", Kind: KindLabel, In: "players"}), map[string]interface{}{"players": []interface{}{}}},
		{"malformed in", wrap(&Factory{Name: "r", Kind: KindLabel, For: "p", In: "players..x"}), nil},
		{"malformed if", wrap(&Factory{Name: "r", Kind: KindLabel, If: "a =="}), nil},
		{"in is not a list", wrap(&Factory{Name: "r", Kind: KindLabel, For: "p", In: "players"}), map[string]interface{}{"players": "x"}},
		{"bind does not resolve", wrap(&Factory{Name: "e", Kind: KindEntry, Bind: "missing"}), map[string]interface{}{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(&fakeSurface{}, tt.factory, tt.data, WithLogger(log.New(io.Discard, "", 0)))
			var bce *BindingConfigurationError
			require.ErrorAs(t, err, &bce)
		})
	}
}

func TestFailedConstructionReleasesComponents(t *testing.T) {
	app := listApp("{{ player }}")
	app.Children = append([]*Factory{{Name: "ok", Kind: KindLabel}}, app.Children...)
	s := &fakeSurface{}
	_, err := New(s, app, map[string]interface{}{"players": 3}, WithLogger(log.New(io.Discard, "", 0)))
	require.Error(t, err)
	for _, w := range s.widgets {
		assert.True(t, w.destroyed, "%s still mounted", w.component.Name())
	}
}

func TestMissingKeyInConditionFailsFast(t *testing.T) {
	app := bannerApp()
	_, err := New(&fakeSurface{}, app, map[string]interface{}{}, WithLogger(log.New(io.Discard, "", 0)))
	var ke *KeyError
	require.ErrorAs(t, err, &ke)
	assert.Equal(t, "status", ke.Key)
}

func TestInvalidConditionTypeWarnsOnce(t *testing.T) {
	app := bannerApp()
	app.Children[0].If = 42
	tree, _, logs := newTestTree(t, app, map[string]interface{}{})

	assert.Empty(t, tree.Find("banner"))
	require.NoError(t, tree.Update())
	assert.Equal(t, 1, strings.Count(logs.String(), "Warning:"))
	assert.Contains(t, logs.String(), "unsupported type int")
}

func TestRootBinderIsIgnored(t *testing.T) {
	app := &Factory{Name: "app", Kind: KindFrame, Bind: "x"}
	tree, _, logs := newTestTree(t, app, map[string]interface{}{"x": 1})
	assert.Nil(t, tree.Root().Binder())
	assert.Contains(t, logs.String(), "Warning: app: a root component cannot bind")
}

func TestCloseReleasesEverything(t *testing.T) {
	tree, s, _ := newTestTree(t, listApp("{{ player }}"), map[string]interface{}{
		"players": []interface{}{"a", "b"},
	})
	players := playersOf(t, tree)
	require.NotZero(t, players.Events().Len())
	assert.Equal(t, 3, tree.Len())

	require.NoError(t, tree.Close())
	assert.Zero(t, tree.Len())
	assert.Zero(t, tree.Metrics().GetMetrics().ActiveComponents)
	assert.Zero(t, players.Events().Len())
	for _, w := range s.widgets {
		assert.True(t, w.destroyed)
	}
	assert.Nil(t, tree.Root())
}

func TestWidgetDestroyFailureIsLogged(t *testing.T) {
	tree, _, logs := newTestTree(t, bannerApp(), map[string]interface{}{"status": "ready"})
	banner := tree.Find("banner")[0]
	widgetOf(banner).destroyErr = errors.New("already gone")

	require.NoError(t, tree.Data().Set("status", "idle"))
	assert.True(t, banner.Destroyed())
	assert.Equal(t, 1, tree.Len())
	assert.Contains(t, logs.String(), "already gone")
}

func TestStyleIntegrity(t *testing.T) {
	app := &Factory{
		Name: "app",
		Kind: KindFrame,
		Children: []*Factory{
			{Name: "l", Kind: KindLabel, Style: map[string]interface{}{"text": leakyValue{}}},
		},
	}
	_, err := New(&fakeSurface{}, app, map[string]interface{}{}, WithLogger(log.New(io.Discard, "", 0)))
	var sie *StyleIntegrityError
	require.ErrorAs(t, err, &sie)
	assert.Equal(t, "text", sie.Key)
}

// leakyValue evaluates to another expression.
type leakyValue struct{}

func (leakyValue) Evaluate(interface{}) (interface{}, error) { return path.MustParse("a"), nil }
func (leakyValue) String() string                            { return "leaky" }

func TestHorizontalLayoutPlacesChildren(t *testing.T) {
	app := &Factory{
		Name:   "app",
		Kind:   KindFrame,
		Layout: LayoutHorizontal,
		Grid:   &Grid{PadX: 2},
		Children: []*Factory{
			{Name: "a", Kind: KindLabel, Fill: true},
			{Name: "b", Kind: KindLabel},
		},
	}
	tree, _, _ := newTestTree(t, app, nil)
	root := widgetOf(tree.Root())
	assert.Equal(t, []int{1}, root.rows)
	assert.Equal(t, []int{1, 0}, root.columns)

	a, b := widgetOf(tree.Find("a")[0]), widgetOf(tree.Find("b")[0])
	assert.Equal(t, Cell{Row: 0, Column: 0, Sticky: "nsew", PadX: 2}, a.cell)
	assert.Equal(t, Cell{Row: 0, Column: 1, Sticky: "nsew", PadX: 2}, b.cell)
	assert.Same(t, root, a.parent)
}

func nestedListApp() *Factory {
	return &Factory{
		Name: "app",
		Kind: KindFrame,
		Children: []*Factory{{
			Name: "player",
			Kind: KindFrame,
			For:  "player",
			In:   "players",
			Children: []*Factory{{
				Name:  "throw",
				Kind:  KindLabel,
				For:   "t",
				In:    "player.throws",
				Style: map[string]interface{}{"text": "{{ player.name }}/{{ t }}"},
			}},
		}},
	}
}

func nestedPlayers() map[string]interface{} {
	return map[string]interface{}{
		"players": []interface{}{
			map[string]interface{}{"name": "a", "throws": []interface{}{1}},
			map[string]interface{}{"name": "b", "throws": []interface{}{2, 3}},
		},
	}
}

func TestNestedListFollowsReindexedRow(t *testing.T) {
	tree, _, logs := newTestTree(t, nestedListApp(), nestedPlayers())
	players := playersOf(t, tree)
	assert.Equal(t, []interface{}{"a/1", "b/2", "b/3"}, texts(tree.Find("throw")))

	_, err := players.Pop(0)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"b/2", "b/3"}, texts(tree.Find("throw")))

	v, err := players.At(0)
	require.NoError(t, err)
	throws, err := v.(*reactive.Map).Get("throws")
	require.NoError(t, err)
	require.NoError(t, throws.(*reactive.List).Append(4))
	assert.Equal(t, []interface{}{"b/2", "b/3", "b/4"}, texts(tree.Find("throw")))

	require.NoError(t, tree.Update())
	assert.Equal(t, []interface{}{"b/2", "b/3", "b/4"}, texts(tree.Find("throw")))
	assert.Empty(t, logs.String())
}

func TestNestedListFollowsReplacedList(t *testing.T) {
	tree, _, _ := newTestTree(t, nestedListApp(), nestedPlayers())
	players := playersOf(t, tree)

	v, err := players.At(1)
	require.NoError(t, err)
	b := v.(*reactive.Map)
	old, err := b.Get("throws")
	require.NoError(t, err)

	require.NoError(t, b.Replace("throws", reactive.MustList(7)))
	assert.Equal(t, []interface{}{"a/1", "b/7"}, texts(tree.Find("throw")))

	require.NoError(t, old.(*reactive.List).Append(9))
	assert.Equal(t, []interface{}{"a/1", "b/7"}, texts(tree.Find("throw")), "the old list is no longer followed")
}

func TestEntryTextKeepsModelType(t *testing.T) {
	app := &Factory{
		Name: "app",
		Kind: KindFrame,
		Children: []*Factory{
			{Name: "count", Kind: KindEntry, Bind: "count"},
			{Name: "done", Kind: KindLabel, If: "not count", Style: map[string]interface{}{"text": "done"}},
		},
	}
	tree, _, _ := newTestTree(t, app, map[string]interface{}{"count": 5})
	entry := entryOf(t, tree.Find("count")[0])
	count := path.MustParse("count")

	entry.local = "5"
	writes := tree.Metrics().GetMetrics().ModelWrites
	require.NoError(t, tree.UpdateData())
	assert.Equal(t, writes, tree.Metrics().GetMetrics().ModelWrites, "text equal to the number is not written")

	entry.local = " 0 "
	require.NoError(t, tree.UpdateData())
	v, err := count.Get(tree.Data())
	require.NoError(t, err)
	assert.Equal(t, 0, v)
	assert.Len(t, tree.Find("done"), 1)

	require.NoError(t, tree.Find("count")[0].Input("3"))
	v, err = count.Get(tree.Data())
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	assert.Empty(t, tree.Find("done"))

	entry.local = "lots"
	require.NoError(t, tree.UpdateData())
	v, err = count.Get(tree.Data())
	require.NoError(t, err)
	assert.Equal(t, "lots", v, "text that does not parse is stored as text")
}

func TestInheritedStyleChangeRendersChildren(t *testing.T) {
	app := &Factory{
		Name:  "app",
		Kind:  KindGroup,
		Style: map[string]interface{}{"fg": "white", "text": "Scores"},
		Children: []*Factory{
			{Name: "plain", Kind: KindLabel, Style: map[string]interface{}{"text": "a"}},
			{Name: "own", Kind: KindLabel, Style: map[string]interface{}{"text": "b", "fg": "blue"}},
		},
	}
	tree, _, _ := newTestTree(t, app, nil)
	plain, own := tree.Find("plain")[0], tree.Find("own")[0]
	assert.Equal(t, "white", plain.Attrs()["fg"])
	ownRenders := own.StyleRenders()

	require.NoError(t, tree.Root().Style().Set("fg", "red"))
	assert.Equal(t, "red", plain.Attrs()["fg"])
	assert.Equal(t, "blue", own.Attrs()["fg"])
	assert.Equal(t, ownRenders, own.StyleRenders(), "a shadowed key does not reach the child")
}
