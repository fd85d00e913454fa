package commands

import (
	"fmt"
	"io"

	"github.com/livefir/livebind"
	"github.com/livefir/livebind/cmd/livebind/internal/config"
	"github.com/livefir/livebind/internal/surface/htmlsurface"
	"github.com/livefir/livebind/internal/surface/termsurface"
)

// Render builds the tree declared in args[0] over the data in args[1]
// (optional) and writes it as HTML or terminal text.
func Render(args []string, out io.Writer) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	format, minify := cfg.Format, cfg.Minify

	var files []string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--format":
			if i+1 >= len(args) {
				return fmt.Errorf("--format requires a value: html or text")
			}
			format = args[i+1]
			i++
		case "--minify":
			minify = true
		default:
			files = append(files, args[i])
		}
	}
	if len(files) == 0 || len(files) > 2 {
		return fmt.Errorf("usage: livebind render <tree.yaml> [data.yaml] [--format html|text] [--minify]")
	}

	factory, err := livebind.LoadFactory(files[0])
	if err != nil {
		return err
	}
	data := map[string]interface{}{}
	if len(files) == 2 {
		if data, err = livebind.LoadData(files[1]); err != nil {
			return err
		}
	}

	switch format {
	case "html":
		s := htmlsurface.New()
		tree, err := livebind.New(s, factory, data)
		if err != nil {
			return err
		}
		defer tree.Close()
		if err := s.Render(out, minify); err != nil {
			return fmt.Errorf("failed to render: %w", err)
		}
		_, err = fmt.Fprintln(out)
		return err
	case "text":
		s := termsurface.New()
		tree, err := livebind.New(s, factory, data)
		if err != nil {
			return err
		}
		defer tree.Close()
		_, err = fmt.Fprintln(out, s.View())
		return err
	}
	return fmt.Errorf("unknown format %q: must be html or text", format)
}
