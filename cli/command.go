package cli

import (
	"fmt"
	"slices"
	"strings"
)

// command implements Command.
type command struct {
	name        string
	description string
	usage       string
	aliases     []string
	examples    []string
	handler     Handler
	middleware  []Middleware
	flags       []Flag
	subcommands []Command
	parent      Command
	args        ArgsValidator
}

// ArgsValidator checks the positional arguments of a command.
type ArgsValidator func(args []string) error

// CommandOption configures a command.
type CommandOption func(*command)

// NewCommand creates a command. A command without a handler can still group
// subcommands.
func NewCommand(name, description string, handler Handler, opts ...CommandOption) Command {
	cmd := &command{
		name:        name,
		description: description,
		handler:     handler,
	}
	for _, opt := range opts {
		opt(cmd)
	}
	return cmd
}

func (c *command) Name() string           { return c.name }
func (c *command) Description() string    { return c.description }
func (c *command) Aliases() []string      { return c.aliases }
func (c *command) Examples() []string     { return c.examples }
func (c *command) Flags() []Flag          { return c.flags }
func (c *command) Subcommands() []Command { return c.subcommands }
func (c *command) Parent() Command        { return c.parent }
func (c *command) SetParent(p Command)    { c.parent = p }

// Usage returns the usage line without the program name.
func (c *command) Usage() string {
	if c.usage != "" {
		return c.usage
	}

	parts := []string{c.name}
	if len(c.subcommands) > 0 {
		parts = append(parts, "<subcommand>")
	}
	if len(c.flags) > 0 {
		parts = append(parts, "[flags]")
	}
	return strings.Join(parts, " ")
}

// Run validates the positional arguments and calls the handler through the
// middleware chain.
func (c *command) Run(ctx CommandContext) error {
	if c.handler == nil {
		if len(c.subcommands) > 0 {
			return NewError(fmt.Sprintf("%s requires a subcommand", c.name), ExitUsageError)
		}
		return NewError(fmt.Sprintf("no handler defined for command: %s", c.name), ExitInternalError)
	}

	if c.args != nil {
		if err := c.args(ctx.Args()); err != nil {
			return WrapError(err, c.name, ExitUsageError)
		}
	}

	h := c.handler
	for i := len(c.middleware) - 1; i >= 0; i-- {
		h = c.middleware[i](h)
	}
	return h(ctx)
}

func (c *command) AddSubcommand(cmd Command) error {
	if _, exists := c.FindSubcommand(cmd.Name()); exists {
		return fmt.Errorf("subcommand already exists: %s", cmd.Name())
	}

	cmd.SetParent(c)
	c.subcommands = append(c.subcommands, cmd)
	return nil
}

func (c *command) FindSubcommand(name string) (Command, bool) {
	for _, sub := range c.subcommands {
		if sub.Name() == name || slices.Contains(sub.Aliases(), name) {
			return sub, true
		}
	}
	return nil, false
}

// WithUsage sets the usage line shown in help, e.g. "compile [flags] <model>".
func WithUsage(usage string) CommandOption {
	return func(c *command) {
		c.usage = usage
	}
}

// WithAliases sets alternative names.
func WithAliases(aliases ...string) CommandOption {
	return func(c *command) {
		c.aliases = aliases
	}
}

// WithExample adds an example invocation to the help text.
func WithExample(example string) CommandOption {
	return func(c *command) {
		c.examples = append(c.examples, example)
	}
}

// WithFlags adds flags.
func WithFlags(flags ...Flag) CommandOption {
	return func(c *command) {
		c.flags = append(c.flags, flags...)
	}
}

// WithSubcommand adds a subcommand.
func WithSubcommand(sub Command) CommandOption {
	return func(c *command) {
		sub.SetParent(c)
		c.subcommands = append(c.subcommands, sub)
	}
}

// WithMiddleware wraps the handler.
func WithMiddleware(mw ...Middleware) CommandOption {
	return func(c *command) {
		c.middleware = append(c.middleware, mw...)
	}
}

// WithArgs sets the positional argument validator.
func WithArgs(validator ArgsValidator) CommandOption {
	return func(c *command) {
		c.args = validator
	}
}

// ExactArgs requires exactly n positional arguments.
func ExactArgs(n int) ArgsValidator {
	return func(args []string) error {
		if len(args) != n {
			return fmt.Errorf("%w: expected %d argument(s), got %d", ErrInvalidArguments, n, len(args))
		}
		return nil
	}
}

// NoArgs rejects positional arguments.
func NoArgs() ArgsValidator {
	return ExactArgs(0)
}
