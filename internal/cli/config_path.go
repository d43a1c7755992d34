package cli

import (
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gradebench/internal/config"
	"gradebench/internal/spec"
)

// resolveSpecPath normalizes a config path or finds it from CWD.
func resolveSpecPath(specPath string) (string, error) {
	if strings.TrimSpace(specPath) == "" {
		return config.FindConfigPath("")
	}
	abs, err := filepath.Abs(specPath)
	if err != nil {
		return "", fmt.Errorf("resolve spec path: %w", err)
	}
	return abs, nil
}

// loadConfig resolves and loads the config named by specPath.
func loadConfig(specPath string) (spec.Config, error) {
	resolved, err := resolveSpecPath(specPath)
	if err != nil {
		return spec.Config{}, err
	}
	return config.Load(resolved)
}

// parseFlags parses args and reports the exit code to return when parsing
// did not succeed.
func parseFlags(cmd *Command, fs *flag.FlagSet, args []string, stdout, stderr io.Writer) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			printCommandUsage(cmd, stdout)
			return ExitOK, false
		}
		fmt.Fprintf(stderr, "invalid arguments: %v\n", err)
		printCommandUsage(cmd, stderr)
		return ExitUsage, false
	}
	return ExitOK, true
}

// rejectArgs fails commands that take no positional arguments.
func rejectArgs(cmd *Command, fs *flag.FlagSet, stderr io.Writer) bool {
	if fs.NArg() == 0 {
		return false
	}
	fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
	printCommandUsage(cmd, stderr)
	return true
}
