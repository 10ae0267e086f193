package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/xraph/kiln/cli"
	"github.com/xraph/kiln/internal/compiler"
	"github.com/xraph/kiln/internal/config"
	"github.com/xraph/kiln/internal/errors"
	"github.com/xraph/kiln/internal/loader"
	"github.com/xraph/kiln/internal/model"
	"github.com/xraph/kiln/internal/report"
	"github.com/xraph/kiln/logger"
)

func configFlag() cli.Flag {
	return cli.String("config", "config file; .kiln.yaml is searched upwards when omitted",
		cli.Short("c"), cli.FromEnv("KILN_CONFIG"))
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		configFlag(),
		cli.String("format", "output format: text, json or yaml",
			cli.Short("f"), cli.FromEnv("KILN_FORMAT"), cli.OneOf(config.Formats...)),
		cli.String("out", "write the report to a file instead of stdout", cli.Short("o")),
		cli.String("color", "color output: auto, always or never",
			cli.FromEnv("KILN_COLOR"), cli.OneOf(string(cli.ColorAuto), string(cli.ColorAlways), string(cli.ColorNever))),
		cli.Int("workers", "root trees compiled in parallel, 0 means GOMAXPROCS",
			cli.Short("w"), cli.FromEnv("KILN_WORKERS"), cli.Between(0, 1024)),
		cli.Bool("fail-on-warnings", "exit non-zero when warnings are reported"),
	}
}

func newCompileCommand() cli.Command {
	return cli.NewCommand("compile", "Compile a model into construction plans",
		func(ctx cli.CommandContext) error { return runCompile(ctx, false) },
		cli.WithUsage("compile [flags] <model>"),
		cli.WithFlags(outputFlags()...),
		cli.WithArgs(cli.ExactArgs(1)),
		cli.WithMiddleware(recoverPanics),
		cli.WithExample("kiln compile app.yaml"),
		cli.WithExample("kiln compile app.yaml --format json --out build/plan.json"),
		cli.WithExample("cat app.json | kiln compile -"),
	)
}

func newCheckCommand() cli.Command {
	return cli.NewCommand("check", "Validate a model and report problems only",
		func(ctx cli.CommandContext) error { return runCompile(ctx, true) },
		cli.WithUsage("check [flags] <model>"),
		cli.WithAliases("validate"),
		cli.WithFlags(outputFlags()...),
		cli.WithArgs(cli.ExactArgs(1)),
		cli.WithMiddleware(recoverPanics),
		cli.WithExample("kiln check app.yaml --fail-on-warnings"),
	)
}

func newGraphCommand() cli.Command {
	return cli.NewCommand("graph", "Print the resolved binding graph of a component as Graphviz DOT",
		runGraph,
		cli.WithUsage("graph [flags] <model>"),
		cli.WithFlags(
			configFlag(),
			cli.String("component", "component to render", cli.Required()),
			cli.String("out", "write the graph to a file instead of stdout", cli.Short("o")),
		),
		cli.WithArgs(cli.ExactArgs(1)),
		cli.WithMiddleware(recoverPanics),
		cli.WithExample("kiln graph app.yaml --component app | dot -Tsvg > app.svg"),
	)
}

func newConfigCommand() cli.Command {
	return cli.NewCommand("config", "Print the effective configuration",
		runConfig,
		cli.WithFlags(
			configFlag(),
			cli.String("write", "also save the configuration to this path"),
		),
		cli.WithArgs(cli.NoArgs()),
		cli.WithExample("kiln config --write .kiln.yaml"),
	)
}

func newVersionCommand() cli.Command {
	return cli.NewCommand("version", "Show version information",
		func(ctx cli.CommandContext) error {
			fmt.Fprintf(ctx.Output(), "kiln %s\n", version)
			fmt.Fprintf(ctx.Output(), "commit: %s\n", commit)
			fmt.Fprintf(ctx.Output(), "built: %s\n", buildDate)
			return nil
		},
		cli.WithArgs(cli.NoArgs()),
	)
}

// recoverPanics turns a panic in a handler into an internal error exit.
func recoverPanics(next cli.Handler) cli.Handler {
	return func(ctx cli.CommandContext) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = cli.NewError(fmt.Sprintf("internal error: %v", r), cli.ExitInternalError)
			}
		}()
		return next(ctx)
	}
}

func runCompile(ctx cli.CommandContext, problemsOnly bool) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return failure(err)
	}
	m, err := loadModel(ctx.Arg(0))
	if err != nil {
		return failure(err)
	}

	s, err := newSession(ctx.Context(), cfg)
	if err != nil {
		return failure(err)
	}

	results, err := s.compiler.Compile(ctx.Context(), m)
	if closeErr := s.close(ctx.Context()); closeErr != nil {
		ctx.Logger().Warning("%v", closeErr)
	}
	if err != nil {
		return failure(err)
	}

	err = writeTo(ctx, ctx.String("out"), func(w io.Writer) error {
		return report.Render(w, results, report.Options{
			Format:       report.Format(cfg.Output.Format),
			Color:        useColor(cfg.Output.Color, w),
			ProblemsOnly: problemsOnly,
		})
	})
	if err != nil {
		return failure(err)
	}

	return verdict(results, cfg.Compile.FailOnWarnings)
}

func runGraph(ctx cli.CommandContext) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return failure(err)
	}
	m, err := loadModel(ctx.Arg(0))
	if err != nil {
		return failure(err)
	}

	s, err := newSession(ctx.Context(), cfg)
	if err != nil {
		return failure(err)
	}

	res, err := s.compiler.Inspect(ctx.Context(), m, model.ComponentID(ctx.String("component")))
	if closeErr := s.close(ctx.Context()); closeErr != nil {
		ctx.Logger().Warning("%v", closeErr)
	}
	if err != nil {
		return failure(err)
	}

	s.log.Debug("rendering graph",
		logger.Component(string(res.Component)),
		logger.String("status", string(res.Status())),
	)
	return failure(writeTo(ctx, ctx.String("out"), func(w io.Writer) error {
		return report.DOT(w, res.Graph, res.Problems)
	}))
}

func runConfig(ctx cli.CommandContext) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return failure(err)
	}

	if cfg.ConfigPath != "" {
		fmt.Fprintf(ctx.Output(), "# %s\n", cfg.ConfigPath)
	}
	enc := yaml.NewEncoder(ctx.Output())
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return failure(err)
	}
	if err := enc.Close(); err != nil {
		return failure(err)
	}

	if path := ctx.String("write"); path != "" {
		if err := config.Save(cfg, path); err != nil {
			return failure(err)
		}
		ctx.Logger().Success("wrote %s", path)
	}
	return nil
}

// loadConfig finds or loads the config file and applies command-line
// overrides on top of it.
func loadConfig(ctx cli.CommandContext) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := ctx.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, _, err = config.FindFromWorkingDir()
	}
	if err != nil {
		return nil, err
	}

	if f := ctx.Flag("format"); f.IsSet() {
		cfg.Output.Format = f.String()
	}
	if f := ctx.Flag("color"); f.IsSet() {
		cfg.Output.Color = f.String()
	}
	if f := ctx.Flag("workers"); f.IsSet() {
		cfg.Compile.Workers = f.Int()
	}
	if f := ctx.Flag("fail-on-warnings"); f.IsSet() {
		cfg.Compile.FailOnWarnings = f.Bool()
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	cli.ConfigureColors(cli.ColorConfigFor(cli.ColorMode(cfg.Output.Color)))
	return cfg, nil
}

// stdin is where "-" reads models from.
var stdin io.Reader = os.Stdin

// loadModel reads a model file; "-" reads YAML or JSON from stdin.
func loadModel(path string) (*model.Model, error) {
	if path != "-" {
		return loader.LoadFile(path)
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, errors.ErrLoad("stdin", err)
	}
	m, err := loader.Decode(data, loader.FormatAuto)
	if err != nil && errors.GetErrorCode(err) == "" {
		return nil, errors.ErrLoad("stdin", err)
	}
	return m, err
}

// writeTo runs render against the command output, or against a new file at
// path when one is given.
func writeTo(ctx cli.CommandContext, path string, render func(io.Writer) error) error {
	if path == "" {
		return render(ctx.Output())
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.ErrOutput(path, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.ErrOutput(path, err)
	}
	if err := render(f); err != nil {
		_ = f.Close()
		return errors.ErrOutput(path, err)
	}
	if err := f.Close(); err != nil {
		return errors.ErrOutput(path, err)
	}
	ctx.Logger().Success("wrote %s", path)
	return nil
}

func useColor(mode string, w io.Writer) bool {
	switch cli.ColorMode(mode) {
	case cli.ColorAlways:
		return true
	case cli.ColorNever:
		return false
	default:
		return cli.IsTerminal(w) && !cli.DefaultColorConfig().NoColor
	}
}

// verdict turns a finished run into the process outcome: rejected components
// fail the run, and so do warnings when failOnWarnings is set.
func verdict(results compiler.Results, failOnWarnings bool) error {
	if err := results.Err(); err != nil {
		return cli.WrapError(err, "compile", cli.ExitError)
	}
	if failOnWarnings && results.HasWarnings() {
		return cli.NewError("warnings reported and fail-on-warnings is set", cli.ExitError)
	}
	return nil
}

// failure maps run errors onto exit codes. Bad input is a usage error;
// anything without a known code is internal.
func failure(err error) error {
	if err == nil {
		return nil
	}

	code := cli.ExitInternalError
	switch errors.GetErrorCode(err) {
	case errors.CodeConfigError, errors.CodeLoadError, errors.CodeOutputError,
		errors.CodeInvalidModel, errors.CodeUnsupportedSchema, errors.CodeUnknownComponent:
		code = cli.ExitUsageError
	case errors.CodeContextCancelled:
		code = cli.ExitError
	}
	return &cli.CLIError{ExitCode: code, Cause: err}
}
