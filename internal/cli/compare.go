package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"gradebench/internal/duckdb"
	"gradebench/internal/report"
)

// runCompare builds the handler for the compare command.
func runCompare(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		specPath := fs.String("spec", "", "Path to config file (default: search for .gradebench/config.yml)")
		baseRef := fs.String("base", "", "Base run id")
		headRef := fs.String("head", report.LatestRef, "Head run id")
		by := fs.String("by", "", "Also diff stored accuracy by category or difficulty")
		if code, ok := parseFlags(cmd, fs, args, stdout, stderr); !ok {
			return code
		}
		if rejectArgs(cmd, fs, stderr) {
			return ExitUsage
		}
		if strings.TrimSpace(*baseRef) == "" {
			fmt.Fprintln(stderr, "Missing --base")
			return ExitUsage
		}
		dimension := duckdb.Dimension(strings.ToLower(strings.TrimSpace(*by)))
		if dimension != "" && dimension != duckdb.ByCategory && dimension != duckdb.ByDifficulty {
			fmt.Fprintf(stderr, "Invalid --by %q (expected category|difficulty)\n", *by)
			return ExitUsage
		}

		cfg, err := loadConfig(*specPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
			return ExitError
		}
		base, err := report.Resolve(cfg.OutputDir, *baseRef)
		if err != nil {
			fmt.Fprintf(stderr, "Base run not found: %v\n", err)
			return ExitError
		}
		head, err := report.Resolve(cfg.OutputDir, *headRef)
		if err != nil {
			fmt.Fprintf(stderr, "Head run not found: %v\n", err)
			return ExitError
		}
		if err := report.RenderCompare(stdout, base, head); err != nil {
			fmt.Fprintf(stderr, "Failed to render comparison: %v\n", err)
			return ExitError
		}
		if dimension == "" {
			return ExitOK
		}
		if cfg.Store.DuckDBPath == "" {
			fmt.Fprintln(stderr, "--by needs store.duckdb_path in the config")
			return ExitUsage
		}

		ctx, cancel := commandContext()
		defer cancel()
		db, err := duckdb.Open(ctx, cfg.Store.DuckDBPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to open results database: %v\n", err)
			return ExitError
		}
		defer db.Close()
		baseRows, err := duckdb.SliceAccuracy(ctx, db, base.Meta.RunID, dimension)
		if err != nil {
			fmt.Fprintf(stderr, "Query failed: %v\n", err)
			return ExitError
		}
		headRows, err := duckdb.SliceAccuracy(ctx, db, head.Meta.RunID, dimension)
		if err != nil {
			fmt.Fprintf(stderr, "Query failed: %v\n", err)
			return ExitError
		}
		label := strings.ToUpper(string(dimension[:1])) + string(dimension[1:])
		if err := report.RenderSliceCompare(stdout, label, report.CompareSlices(baseRows, headRows)); err != nil {
			fmt.Fprintf(stderr, "Failed to render comparison: %v\n", err)
			return ExitError
		}
		return ExitOK
	}
}
