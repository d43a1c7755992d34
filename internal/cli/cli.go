package cli

import (
	"fmt"
	"io"
	"slices"
)

// Process exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Command is one gradebench subcommand.
type Command struct {
	Name    string
	Summary string
	Usage   []string
	Run     func(args []string, stdout, stderr io.Writer) int
}

// Run dispatches args to a command and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stdout)
		return ExitUsage
	}
	if isHelpArg(args[0]) {
		printUsage(stdout)
		return ExitOK
	}

	cmd := findCommand(args[0])
	if cmd == nil {
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return ExitUsage
	}

	return cmd.Run(args[1:], stdout, stderr)
}

func findCommand(name string) *Command {
	for _, cmd := range commands {
		if cmd.Name == name {
			return cmd
		}
	}
	return nil
}

func isHelpArg(arg string) bool {
	switch arg {
	case "-h", "--help", "help":
		return true
	default:
		return false
	}
}

// wantsHelp reports whether any argument asks for command help.
func wantsHelp(args []string) bool {
	return slices.ContainsFunc(args, func(arg string) bool {
		return arg == "-h" || arg == "--help"
	})
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  gradebench <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	width := 0
	for _, cmd := range commands {
		width = max(width, len(cmd.Name))
	}
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-*s  %s\n", width, cmd.Name, cmd.Summary)
	}
	fmt.Fprintln(w, "\nUse \"gradebench <command> --help\" for more information.")
}

func printCommandUsage(cmd *Command, w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	for _, line := range cmd.Usage {
		fmt.Fprintf(w, "  %s\n", line)
	}
	if cmd.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", cmd.Summary)
	}
}

func command(name, summary string, usage []string, runner func(cmd *Command) func(args []string, stdout, stderr io.Writer) int) *Command {
	cmd := &Command{
		Name:    name,
		Summary: summary,
		Usage:   usage,
	}
	cmd.Run = runner(cmd)
	return cmd
}

var commands = []*Command{
	command("init", "Scaffold .gradebench/config.yml and sample data", []string{
		"gradebench init [--dir <path>]",
	}, runInit),
	command("validate", "Validate the config, test cases, and overrides", []string{
		"gradebench validate [--spec <path>]",
	}, runValidate),
	command("run", "Run prompt techniques against the test cases", []string{
		"gradebench run [--spec <path>] [--ui auto|live|plain] [--metrics-addr <addr>] [technique...]",
	}, runRun),
	command("apply-overrides", "Reconcile manual overrides into a finished run", []string{
		"gradebench apply-overrides [--spec <path>] [--run <run-id>] [technique...]",
	}, runApplyOverrides),
	command("compare", "Compare technique accuracy between runs", []string{
		"gradebench compare --base <run-id> [--head <run-id>] [--by category|difficulty]",
	}, runCompare),
	command("report", "Print the comparison summary of a run", []string{
		"gradebench report [--spec <path>] [--run <run-id>]",
	}, runReport),
}
