package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/livefir/livebind/cmd/livebind/internal/config"
)

// Config handles configuration management commands
func Config(args []string, out io.Writer) error {
	if len(args) < 1 {
		return fmt.Errorf("command required: get, set, list")
	}

	switch args[0] {
	case "get":
		return configGet(args[1:], out)
	case "set":
		return configSet(args[1:], out)
	case "list":
		return configList(out)
	default:
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func configGet(args []string, out io.Writer) error {
	if len(args) < 1 {
		return fmt.Errorf("key required: livebind config get <key>")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	switch args[0] {
	case "format":
		fmt.Fprintln(out, cfg.Format)
	case "minify":
		fmt.Fprintln(out, cfg.Minify)
	default:
		return fmt.Errorf("unknown key: %s (valid: format, minify)", args[0])
	}
	return nil
}

func configList(out io.Writer) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Fprintf(out, "format: %s\n", cfg.Format)
	fmt.Fprintf(out, "minify: %t\n", cfg.Minify)
	return nil
}

func configSet(args []string, out io.Writer) error {
	if len(args) < 2 {
		return fmt.Errorf("key and value required: livebind config set <key> <value>")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	key, value := args[0], args[1]
	switch key {
	case "format":
		cfg.Format = value
	case "minify":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid minify value %q: %w", value, err)
		}
		cfg.Minify = b
	default:
		return fmt.Errorf("unknown key: %s (valid: format, minify)", key)
	}

	if err := config.SaveConfig(cfg); err != nil {
		return err
	}
	fmt.Fprintf(out, "✅ Set %s = %s\n", key, value)
	return nil
}
