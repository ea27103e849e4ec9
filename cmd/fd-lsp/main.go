// Command fd-lsp parses a Fast Draft document from stdin and writes one
// filtered view of it to stdout, for editor and tooling integration.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/iancoleman/strcase"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/fastdraft/fd/internal/fd"
	"github.com/fastdraft/fd/internal/lint"
	"github.com/fastdraft/fd/internal/loc"
	"github.com/fastdraft/fd/internal/printer"
)

const (
	exitOK         = 0
	exitParseError = 1
	exitUsageError = 2
)

func main() {
	app := &cli.Command{
		Name:  "fd-lsp",
		Usage: "filter a Fast Draft document to one of its views",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "view",
				Usage: "view to emit: full|structure|layout|design|spec|visual|when|edges (default: the config's default_view, else full)"},
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load options from `FILE` (.fdrc.toml)"},
			&cli.BoolFlag{Name: "lint", Usage: "also print lint diagnostics to stderr (warnings never change the exit code)"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log parse/render timing to stderr"},
		},
		Action: run,
	}

	// Ignore urfave/cli's built-in exit-code plumbing: every code path
	// below reports its own exit status directly rather than going
	// through a cli.ExitCoder.
	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsageError)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	logger := zap.NewNop()
	if cmd.Bool("verbose") {
		l, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("fd-lsp: unable to build logger: %w", err)
		}
		logger = l
		defer logger.Sync()
	}

	cfg := fd.DefaultConfig()
	if path := cmd.String("config"); path != "" {
		loaded, err := fd.LoadConfig(path)
		if err != nil {
			return fmt.Errorf("fd-lsp: reading config %q: %w", path, err)
		}
		cfg = loaded
		logger.Debug("loaded config", zap.String("path", path))
	}

	// Normalize so "--view CenterIn"/"--view Center-In" style typos from
	// a shell history or an IDE-generated command line still resolve to
	// the lower_snake view names the tests and docs use.
	view := printer.View(strcase.ToSnake(cmd.String("view")))
	if view == "" {
		view = printer.View(strcase.ToSnake(cfg.DefaultView))
	}

	source, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("fd-lsp: reading stdin: %w", err)
	}

	start := time.Now()
	g, h := fd.Parse(string(source))
	logger.Debug("parsed document", zap.Int("bytes", len(source)), zap.Bool("has_errors", h.HasErrors()),
		zap.Duration("elapsed", time.Since(start)))
	if h.HasErrors() {
		printDiagnostics(h.Diagnostics())
		os.Exit(exitParseError)
	}

	if cmd.Bool("lint") {
		diags := lint.Lint(g, lint.Options{RequireSemanticIds: cfg.RequireSemanticIds})
		printDiagnostics(diags)
	}

	start = time.Now()
	out, err := printer.Render(g, view)
	if err != nil {
		return fmt.Errorf("fd-lsp: %w", err)
	}
	logger.Debug("rendered view", zap.String("view", string(view)), zap.Int("bytes", len(out)),
		zap.Duration("elapsed", time.Since(start)))
	fmt.Fprint(os.Stdout, out)
	os.Exit(exitOK)
	return nil
}

func printDiagnostics(diags []loc.DiagnosticMessage) {
	for _, d := range diags {
		if d.Location != nil {
			fmt.Fprintf(os.Stderr, "%s:%d:%d: %s: %s\n", d.Location.File, d.Location.Line, d.Location.Column, d.Code, d.Text)
			continue
		}
		fmt.Fprintf(os.Stderr, "%s: %s\n", d.Code, d.Text)
	}
}
