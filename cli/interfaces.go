package cli

import (
	"context"
	"io"
)

// CLI is a command-line application.
type CLI interface {
	Name() string
	Version() string
	Description() string

	AddCommand(cmd Command) error
	Commands() []Command

	// Run executes the command named by args; args[0] is the program name.
	Run(args []string) error
	RunContext(ctx context.Context, args []string) error

	SetOutput(w io.Writer)
	Output() io.Writer
	Logger() *CLILogger
}

// Command is a named action with flags and optional subcommands.
type Command interface {
	Name() string
	Description() string
	Usage() string
	Aliases() []string
	Examples() []string

	Flags() []Flag

	AddSubcommand(cmd Command) error
	Subcommands() []Command
	FindSubcommand(name string) (Command, bool)

	SetParent(parent Command)
	Parent() Command

	Run(ctx CommandContext) error
}

// Handler executes a command.
type Handler func(ctx CommandContext) error

// Middleware wraps a handler. The first middleware given to a command is the
// outermost.
type Middleware func(next Handler) Handler

// CommandContext is what a handler sees of its invocation.
type CommandContext interface {
	Context() context.Context
	Command() Command
	CLI() CLI

	Args() []string
	Arg(index int) string

	Flag(name string) FlagValue
	String(name string) string
	Int(name string) int
	Bool(name string) bool
	StringSlice(name string) []string

	Output() io.Writer
	Logger() *CLILogger
}
