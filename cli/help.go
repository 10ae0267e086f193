package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// helpWriter lays out help sections. Rows within a section are aligned on
// tab stops.
type helpWriter struct {
	w  io.Writer
	tw *tabwriter.Writer
}

func newHelpWriter(w io.Writer) *helpWriter {
	return &helpWriter{w: w, tw: tabwriter.NewWriter(w, 0, 4, 3, ' ', 0)}
}

func (h *helpWriter) section(title string) {
	fmt.Fprintf(h.tw, "\n%s\n", Colorize(Bold, title+":"))
}

func (h *helpWriter) row(cols ...string) {
	fmt.Fprintf(h.tw, "  %s\n", strings.Join(cols, "\t"))
}

func (h *helpWriter) line(format string, args ...any) {
	fmt.Fprintf(h.tw, format+"\n", args...)
}

func (h *helpWriter) flush() {
	_ = h.tw.Flush()
}

// writeAppHelp writes the top-level help of app.
func writeAppHelp(w io.Writer, app CLI) {
	h := newHelpWriter(w)
	defer h.flush()

	h.line("%s %s", Colorize(Bold, app.Name()), app.Version())
	if app.Description() != "" {
		h.line("%s", app.Description())
	}

	h.section("Usage")
	h.row(app.Name() + " <command> [flags]")

	if len(app.Commands()) > 0 {
		h.section("Commands")
		for _, c := range app.Commands() {
			h.row(c.Name(), c.Description())
		}
	}

	h.section("Flags")
	h.row("-h, --help", "show help")
	h.row("-V, --version", "show version")

	h.section("Exit codes")
	h.row(fmt.Sprint(ExitSuccess), "success")
	h.row(fmt.Sprint(ExitError), "a component was rejected, or warnings with --fail-on-warnings")
	h.row(fmt.Sprint(ExitUsageError), "bad arguments, configuration or model")
	h.row(fmt.Sprint(ExitInternalError), "internal error")

	h.line("\nRun '%s <command> --help' for details on a command.", app.Name())
}

// writeCommandHelp writes the help of one command.
func writeCommandHelp(w io.Writer, app CLI, cmd Command) {
	h := newHelpWriter(w)
	defer h.flush()

	if cmd.Description() != "" {
		h.line("%s", cmd.Description())
	}

	h.section("Usage")
	h.row(commandPath(app.Name(), cmd))

	if len(cmd.Aliases()) > 0 {
		h.section("Aliases")
		h.row(strings.Join(cmd.Aliases(), ", "))
	}

	if len(cmd.Subcommands()) > 0 {
		h.section("Subcommands")
		for _, sub := range cmd.Subcommands() {
			h.row(sub.Name(), sub.Description())
		}
	}

	h.section("Flags")
	for _, f := range cmd.Flags() {
		h.row(flagNames(f), flagDescription(f))
	}
	h.row("-h, --help", "show help")

	if len(cmd.Examples()) > 0 {
		h.section("Examples")
		for _, ex := range cmd.Examples() {
			h.row(ex)
		}
	}
}

// commandPath is the full usage line: program, parent commands, then the
// command's own usage.
func commandPath(program string, cmd Command) string {
	parts := []string{cmd.Usage()}
	for p := cmd.Parent(); p != nil; p = p.Parent() {
		parts = append([]string{p.Name()}, parts...)
	}
	return program + " " + strings.Join(parts, " ")
}

func flagNames(f Flag) string {
	names := "    --" + f.Name()
	if f.ShortName() != "" {
		names = "-" + f.ShortName() + ", --" + f.Name()
	}
	if f.Type() != BoolFlag {
		names += " <" + f.Type().String() + ">"
	}
	return names
}

func flagDescription(f Flag) string {
	var sb strings.Builder
	sb.WriteString(f.Description())

	switch d := f.DefaultValue().(type) {
	case nil, bool:
	case string:
		if d != "" {
			fmt.Fprintf(&sb, " (default %q)", d)
		}
	case int:
		if d != 0 {
			fmt.Fprintf(&sb, " (default %d)", d)
		}
	default:
		fmt.Fprintf(&sb, " (default %v)", d)
	}

	if f.Env() != "" {
		fmt.Fprintf(&sb, " [$%s]", f.Env())
	}
	if f.Required() {
		sb.WriteString(Colorize(Red, " (required)"))
	}
	return sb.String()
}
