package cli

import (
	"context"
	"io"
)

// commandContext implements CommandContext.
type commandContext struct {
	ctx   context.Context
	cmd   Command
	args  []string
	flags map[string]FlagValue
	cli   CLI
}

func newCommandContext(ctx context.Context, cmd Command, args []string, flags map[string]FlagValue, c CLI) CommandContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &commandContext{
		ctx:   ctx,
		cmd:   cmd,
		args:  args,
		flags: flags,
		cli:   c,
	}
}

func (c *commandContext) Context() context.Context { return c.ctx }
func (c *commandContext) Command() Command         { return c.cmd }
func (c *commandContext) CLI() CLI                 { return c.cli }
func (c *commandContext) Args() []string           { return c.args }
func (c *commandContext) Output() io.Writer        { return c.cli.Output() }
func (c *commandContext) Logger() *CLILogger       { return c.cli.Logger() }

// Arg returns the positional argument at index, or "".
func (c *commandContext) Arg(index int) string {
	if index < 0 || index >= len(c.args) {
		return ""
	}
	return c.args[index]
}

// Flag returns the value of a declared flag. Undeclared names yield an unset
// empty value.
func (c *commandContext) Flag(name string) FlagValue {
	if v, ok := c.flags[name]; ok {
		return v
	}
	return &flagValue{}
}

func (c *commandContext) String(name string) string        { return c.Flag(name).String() }
func (c *commandContext) Int(name string) int              { return c.Flag(name).Int() }
func (c *commandContext) Bool(name string) bool            { return c.Flag(name).Bool() }
func (c *commandContext) StringSlice(name string) []string { return c.Flag(name).StringSlice() }
