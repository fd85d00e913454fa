package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/livefir/livebind/cmd/livebind/commands"
)

// Version information (can be overridden at build time with -ldflags)
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error

	switch command {
	case "render":
		err = commands.Render(args, os.Stdout)
	case "validate":
		err = commands.Validate(args, os.Stdout)
	case "config":
		err = commands.Config(args, os.Stdout)
	case "version", "--version", "-v":
		printVersion()
		return
	case "help", "--help", "-h":
		printUsage()
		return
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("livebind version %s\n", version)

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if commit != "unknown" {
		fmt.Printf("commit: %s\n", commit)
	} else {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				rev := setting.Value
				if len(rev) > 12 {
					rev = rev[:12]
				}
				fmt.Printf("commit: %s\n", rev)
			}
		}
	}
	fmt.Printf("go: %s\n", info.GoVersion)
}

func printUsage() {
	fmt.Println("livebind - reactive component trees")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  livebind render <tree.yaml> [data.yaml]    Build the tree and print it")
	fmt.Println("      --format html|text                      Output format (default from config, html)")
	fmt.Println("      --minify                                Minify HTML output")
	fmt.Println("  livebind validate <tree.yaml>...           Check declarations")
	fmt.Println("  livebind config get|set|list               Manage ~/.config/livebind/config.yaml")
	fmt.Println("  livebind version                           Show version information")
}
