package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/livefir/livebind"
	"github.com/livefir/livebind/internal/expr"
	"github.com/livefir/livebind/internal/reactive"
)

// startScore is the score every player counts down from.
const startScore = 301

func board() *livebind.Factory {
	return &livebind.Factory{
		Name: "app",
		Kind: livebind.KindFrame,
		Children: []*livebind.Factory{
			{
				Name:  "board",
				Kind:  livebind.KindGroup,
				Style: map[string]interface{}{"text": fmt.Sprintf("Darts %d", startScore)},
				Children: []*livebind.Factory{
					{
						Name: "row",
						Kind: livebind.KindLabel,
						For:  "player",
						In:   "players",
						Style: map[string]interface{}{
							"text": "{{ player.name }}: {{ player.score }}",
							"bold": expr.MustParse("index == selected"),
						},
					},
					{
						Name:  "empty",
						Kind:  livebind.KindLabel,
						If:    "not players",
						Style: map[string]interface{}{"text": "no players yet"},
					},
				},
			},
			{
				Name:  "winner",
				Kind:  livebind.KindLabel,
				If:    "winner",
				Style: map[string]interface{}{"text": "{{ winner }} wins!", "fg": "#04B575", "bold": true},
			},
			{
				Name:   "controls",
				Kind:   livebind.KindFrame,
				Layout: livebind.LayoutHorizontal,
				Grid:   &livebind.Grid{PadX: 1},
				Children: []*livebind.Factory{
					{Name: "name", Kind: livebind.KindEntry, Bind: "draft", Style: map[string]interface{}{"placeholder": "player name", "width": 14}},
					{Name: "add", Kind: livebind.KindButton, Command: "add", Style: map[string]interface{}{"text": "Add"}},
					{Name: "throw", Kind: livebind.KindEntry, Bind: "throw", Style: map[string]interface{}{"placeholder": "score", "width": 6}},
					{Name: "score", Kind: livebind.KindButton, Command: "score", Style: map[string]interface{}{"text": "Score"}},
				},
			},
		},
	}
}

func initialData() map[string]interface{} {
	return map[string]interface{}{
		"draft":    "",
		"throw":    "",
		"selected": 0,
		"winner":   "",
		"players":  []interface{}{},
	}
}

func actions() livebind.Actions {
	return livebind.Actions{
		"add":   addPlayer,
		"score": scoreThrow,
	}
}

func players(ctx *livebind.ActionContext) (*reactive.List, error) {
	v, err := ctx.Get("players")
	if err != nil {
		return nil, err
	}
	list, ok := v.(*reactive.List)
	if !ok {
		return nil, fmt.Errorf("players is %T, want a list", v)
	}
	return list, nil
}

func addPlayer(ctx *livebind.ActionContext) error {
	name := strings.TrimSpace(ctx.Data.GetString("draft"))
	if name == "" {
		return nil
	}
	list, err := players(ctx)
	if err != nil {
		return err
	}
	if err := list.Append(map[string]interface{}{"name": name, "score": startScore}); err != nil {
		return err
	}
	return ctx.Set("draft", "")
}

// scoreThrow subtracts the thrown points from the selected player. A
// throw taking the score below zero is a bust and leaves it unchanged.
// The throw entry is cleared in every case.
func scoreThrow(ctx *livebind.ActionContext) (err error) {
	defer func() {
		if cerr := ctx.Set("throw", ""); err == nil {
			err = cerr
		}
	}()

	points, perr := strconv.Atoi(strings.TrimSpace(ctx.Data.GetString("throw")))
	if perr != nil || points < 0 || points > 180 {
		return nil
	}
	list, err := players(ctx)
	if err != nil || list.Len() == 0 {
		return err
	}
	if winner := ctx.Data.GetString("winner"); winner != "" {
		return nil
	}

	selected := ctx.Data.GetInt("selected")
	v, err := list.At(selected)
	if err != nil {
		return err
	}
	player, ok := v.(*reactive.Map)
	if !ok {
		return fmt.Errorf("player %d is %T, want a map", selected, v)
	}
	raw, err := player.Get("score")
	if err != nil {
		return err
	}
	score, ok := wholeNumber(raw)
	if !ok {
		return fmt.Errorf("player %d: score %v is not a whole number", selected, raw)
	}
	left := score - points
	if left < 0 {
		return nil
	}
	if err := player.Set("score", left); err != nil {
		return err
	}
	if left == 0 {
		name, _ := player.Get("name")
		return ctx.Set("winner", name)
	}
	return nil
}

// wholeNumber accepts the integer forms a score takes when it comes from
// Go literals, YAML or JSON.
func wholeNumber(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}
