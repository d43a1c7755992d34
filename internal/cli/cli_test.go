package cli

import (
	"bytes"
	"strings"
	"testing"
)

// TestRootInvocations verifies usage, help, and unknown command handling.
func TestRootInvocations(t *testing.T) {
	cases := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{name: "no args", args: nil, wantCode: ExitUsage, wantStdout: "Usage:"},
		{name: "long help", args: []string{"--help"}, wantCode: ExitOK, wantStdout: "gradebench <command>"},
		{name: "help word", args: []string{"help"}, wantCode: ExitOK, wantStdout: "apply-overrides"},
		{name: "unknown", args: []string{"nope"}, wantCode: ExitUsage, wantStderr: "Unknown command: nope"},
	}
	for _, tc := range cases {
		var out, errOut bytes.Buffer
		code := Run(tc.args, &out, &errOut)
		if code != tc.wantCode {
			t.Fatalf("%s: expected exit %d, got %d", tc.name, tc.wantCode, code)
		}
		if tc.wantStdout != "" && !strings.Contains(out.String(), tc.wantStdout) {
			t.Fatalf("%s: expected stdout to contain %q, got %q", tc.name, tc.wantStdout, out.String())
		}
		if tc.wantStderr != "" && !strings.Contains(errOut.String(), tc.wantStderr) {
			t.Fatalf("%s: expected stderr to contain %q, got %q", tc.name, tc.wantStderr, errOut.String())
		}
		if tc.wantStderr == "" && errOut.Len() != 0 {
			t.Fatalf("%s: expected no stderr output, got %q", tc.name, errOut.String())
		}
	}
}

// TestRootUsageListsCommands verifies every command appears in the usage.
func TestRootUsageListsCommands(t *testing.T) {
	var out bytes.Buffer
	printUsage(&out)
	for _, cmd := range commands {
		if !strings.Contains(out.String(), cmd.Name+" ") {
			t.Fatalf("expected command %q in usage:\n%s", cmd.Name, out.String())
		}
	}
}

// TestCommandHelp verifies each command prints its own usage lines.
func TestCommandHelp(t *testing.T) {
	for _, cmd := range commands {
		var out, errOut bytes.Buffer
		if code := Run([]string{cmd.Name, "-h"}, &out, &errOut); code != ExitOK {
			t.Fatalf("%s: expected exit %d, got %d", cmd.Name, ExitOK, code)
		}
		if errOut.Len() != 0 {
			t.Fatalf("%s: expected no stderr output, got %q", cmd.Name, errOut.String())
		}
		for _, line := range cmd.Usage {
			if !strings.Contains(out.String(), line) {
				t.Fatalf("%s: expected usage line %q", cmd.Name, line)
			}
		}
	}
}

// TestCommandRejectsBadFlags verifies unknown flags are usage errors.
func TestCommandRejectsBadFlags(t *testing.T) {
	for _, name := range []string{"init", "validate", "run", "apply-overrides", "compare", "report"} {
		var out, errOut bytes.Buffer
		if code := Run([]string{name, "--bogus"}, &out, &errOut); code != ExitUsage {
			t.Fatalf("%s: expected exit %d, got %d", name, ExitUsage, code)
		}
	}
}
