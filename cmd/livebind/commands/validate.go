package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/livefir/livebind"
)

// Validate checks every declaration file named in args.
func Validate(args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: livebind validate <tree.yaml>...")
	}

	failed := 0
	for _, file := range args {
		f, err := livebind.LoadFactory(file)
		if err == nil {
			err = livebind.Validate(f)
		}
		if err != nil {
			failed++
			fmt.Fprintf(out, "✗ %s\n", file)
			var bce *livebind.BindingConfigurationError
			if errors.As(err, &bce) && len(bce.Fields) > 0 {
				for _, field := range bce.Fields {
					fmt.Fprintf(out, "    %s: %s\n", bce.Component, field.Error())
				}
			} else {
				fmt.Fprintf(out, "    %v\n", err)
			}
			continue
		}
		fmt.Fprintf(out, "✓ %s\n", file)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d declarations invalid", failed, len(args))
	}
	return nil
}
