package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const tree = `
name: app
kind: frame
children:
  - name: title
    kind: label
    style:
      text: "{{ title }}"
  - name: row
    kind: label
    for: player
    in: players
    style:
      text: "{{ index }}. {{ player }}"
`

const data = `
title: Darts
players: [ann, bob]
`

func writeFiles(t *testing.T) (string, string) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	treePath := filepath.Join(dir, "tree.yaml")
	dataPath := filepath.Join(dir, "data.yaml")
	if err := os.WriteFile(treePath, []byte(tree), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dataPath, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	return treePath, dataPath
}

func TestRender(t *testing.T) {
	treePath, dataPath := writeFiles(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"html", []string{treePath, dataPath}, []string{"<span", ">Darts</span>", ">0. ann</span>", ">1. bob</span>"}},
		{"minified html", []string{treePath, dataPath, "--minify"}, []string{"Darts", "0. ann", "1. bob"}},
		{"text", []string{"--format", "text", treePath, dataPath}, []string{"Darts", "0. ann", "1. bob"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if err := Render(tt.args, &out); err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output missing %q:\n%s", want, out.String())
				}
			}
		})
	}
}

func TestRenderErrors(t *testing.T) {
	treePath, _ := writeFiles(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no files", nil},
		{"missing format value", []string{treePath, "--format"}},
		{"unknown format", []string{treePath, "--format", "pdf"}},
		{"missing data for list", []string{treePath}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if err := Render(tt.args, &out); err == nil {
				t.Errorf("Render(%v) succeeded, want error", tt.args)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	treePath, _ := writeFiles(t)
	bad := filepath.Join(filepath.Dir(treePath), "bad.yaml")
	if err := os.WriteFile(bad, []byte("name: app\nkind: label\nchildren:\n  - name: x\n    kind: label\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := Validate([]string{treePath}, &out); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !strings.Contains(out.String(), "✓") {
		t.Errorf("output = %q, want a check mark", out.String())
	}

	out.Reset()
	if err := Validate([]string{treePath, bad}, &out); err == nil {
		t.Error("Validate() accepted a label with children")
	}
	if !strings.Contains(out.String(), "children") {
		t.Errorf("output = %q, want the offending field", out.String())
	}
}

func TestConfigCommands(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	var out bytes.Buffer
	if err := Config([]string{"set", "format", "text"}, &out); err != nil {
		t.Fatalf("config set error = %v", err)
	}

	out.Reset()
	if err := Config([]string{"get", "format"}, &out); err != nil {
		t.Fatalf("config get error = %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "text" {
		t.Errorf("format = %q, want text", got)
	}

	if err := Config([]string{"set", "format", "pdf"}, &out); err == nil {
		t.Error("config set accepted an invalid format")
	}
	if err := Config([]string{"set", "minify", "maybe"}, &out); err == nil {
		t.Error("config set accepted an invalid bool")
	}
}
