package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
)

// Config configures a CLI application.
type Config struct {
	Name        string
	Version     string
	Description string
	// Output receives command output and help; defaults to stdout.
	Output io.Writer
	// Logger receives status messages; defaults to stderr.
	Logger *CLILogger
}

type app struct {
	cfg      Config
	commands []Command
}

// New creates a CLI application.
func New(cfg Config) CLI {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	if cfg.Logger == nil {
		cfg.Logger = NewCLILogger()
	}
	return &app{cfg: cfg}
}

func (a *app) Name() string          { return a.cfg.Name }
func (a *app) Version() string       { return a.cfg.Version }
func (a *app) Description() string   { return a.cfg.Description }
func (a *app) Commands() []Command   { return a.commands }
func (a *app) Output() io.Writer     { return a.cfg.Output }
func (a *app) SetOutput(w io.Writer) { a.cfg.Output = w }
func (a *app) Logger() *CLILogger    { return a.cfg.Logger }

func (a *app) AddCommand(cmd Command) error {
	for _, name := range append([]string{cmd.Name()}, cmd.Aliases()...) {
		if a.lookup(name) != nil {
			return fmt.Errorf("command already exists: %s", name)
		}
	}
	a.commands = append(a.commands, cmd)
	return nil
}

func (a *app) lookup(name string) Command {
	for _, cmd := range a.commands {
		if cmd.Name() == name || slices.Contains(cmd.Aliases(), name) {
			return cmd
		}
	}
	return nil
}

func (a *app) Run(args []string) error {
	return a.RunContext(context.Background(), args)
}

// RunContext dispatches args, with args[0] the program name, to a command and
// runs it with ctx.
func (a *app) RunContext(ctx context.Context, args []string) error {
	if len(args) > 0 {
		args = args[1:]
	}

	switch {
	case len(args) == 0, len(args) == 1 && isHelpFlag(args[0]):
		writeAppHelp(a.cfg.Output, a)
		return nil
	case isVersionFlag(args[0]):
		fmt.Fprintf(a.cfg.Output, "%s version %s\n", a.cfg.Name, a.cfg.Version)
		return nil
	}

	path, rest := parseCommandPath(args)
	if len(path) == 0 {
		writeAppHelp(a.cfg.Output, a)
		return NewError(fmt.Sprintf("unknown flag: %s", args[0]), ExitUsageError)
	}

	root := a.lookup(path[0])
	if root == nil {
		return WrapError(ErrCommandNotFound, fmt.Sprintf("unknown command %q", path[0]), ExitUsageError)
	}

	cmd, cmdArgs, _ := findCommand(root, path[1:])
	cmdArgs = append(cmdArgs, rest...)

	if hasHelpFlag(cmdArgs) {
		writeCommandHelp(a.cfg.Output, a, cmd)
		return nil
	}

	flags, positional, err := parseFlagsForCommand(cmd, cmdArgs)
	if err != nil {
		return WrapError(err, cmd.Name(), ExitUsageError)
	}

	return cmd.Run(newCommandContext(ctx, cmd, positional, flags, a))
}

func isVersionFlag(arg string) bool {
	return arg == "-V" || arg == "--version"
}

// Execute runs app with os.Args, prints any error to stderr and returns the
// process exit code.
func Execute(ctx context.Context, a CLI) int {
	err := a.RunContext(ctx, os.Args)
	if err != nil && err.Error() != "" {
		fmt.Fprintln(os.Stderr, FormatError(err, colorsEnabled()))
	}
	return GetExitCode(err)
}
