package cli

import (
	"fmt"
	"os"
	"slices"
	"strings"
)

// isFlag checks if an argument is a flag. A lone "-" is positional.
func isFlag(arg string) bool {
	return len(arg) > 1 && strings.HasPrefix(arg, "-")
}

// parseFlag parses a flag argument and returns name, value, and whether value was included
// Supports:
// - Long flags: --name=value, --name value
// - Short flags: -n value, -n=value
// - Boolean flags: --verbose, -v
func parseFlag(arg string) (name, value string, hasValue bool) {
	arg = strings.TrimLeft(arg, "-")

	if idx := strings.Index(arg, "="); idx != -1 {
		return arg[:idx], arg[idx+1:], true
	}

	return arg, "", false
}

// lookupFlag finds a flag of cmd by long or short name.
func lookupFlag(cmd Command, name string) (Flag, bool) {
	for _, f := range cmd.Flags() {
		if f.Name() == name || (f.ShortName() != "" && f.ShortName() == name) {
			return f, true
		}
	}
	return nil, false
}

// parseFlagsForCommand splits args into flag values and positional arguments.
// Every declared flag gets a value: from the command line, then from its
// environment variable, then its default.
func parseFlagsForCommand(cmd Command, args []string) (map[string]FlagValue, []string, error) {
	values := make(map[string]FlagValue, len(cmd.Flags()))
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if arg == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if !isFlag(arg) {
			positional = append(positional, arg)
			continue
		}

		name, raw, hasValue := parseFlag(arg)
		f, ok := lookupFlag(cmd, name)
		if !ok {
			return nil, nil, fmt.Errorf("%w: unknown flag %s", ErrFlagInvalid, arg)
		}

		if !hasValue {
			if f.Type() == BoolFlag {
				raw = "true"
			} else {
				if i+1 >= len(args) {
					return nil, nil, fmt.Errorf("%w: --%s requires a value", ErrFlagInvalid, f.Name())
				}
				i++
				raw = args[i]
			}
		}

		value, err := parseFlagValue(f, raw)
		if err != nil {
			return nil, nil, err
		}
		if prev, ok := values[f.Name()]; ok && f.Type() == StringSliceFlag {
			value = append(prev.StringSlice(), value.([]string)...)
		}
		values[f.Name()] = &flagValue{raw: value, isSet: true}
	}

	for _, f := range cmd.Flags() {
		if _, ok := values[f.Name()]; ok {
			continue
		}
		if raw := envValue(f); raw != "" {
			value, err := parseFlagValue(f, raw)
			if err != nil {
				return nil, nil, fmt.Errorf("%w (from $%s)", err, f.Env())
			}
			values[f.Name()] = &flagValue{raw: value, isSet: true}
			continue
		}
		if f.Required() {
			return nil, nil, fmt.Errorf("%w: --%s", ErrFlagRequired, f.Name())
		}
		values[f.Name()] = &flagValue{raw: f.DefaultValue()}
	}

	return values, positional, nil
}

func envValue(f Flag) string {
	if f.Env() == "" {
		return ""
	}
	return os.Getenv(f.Env())
}

func parseFlagValue(f Flag, raw string) (any, error) {
	value, err := f.Type().parse(raw)
	if err == nil {
		err = f.Validate(value)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: --%s %v", ErrFlagInvalid, f.Name(), err)
	}
	return value, nil
}

// findCommand finds a command by name or alias, traversing subcommands.
func findCommand(root Command, path []string) (Command, []string, error) {
	if len(path) == 0 {
		return root, path, nil
	}

	if sub, found := root.FindSubcommand(path[0]); found {
		return findCommand(sub, path[1:])
	}

	// No subcommand found, return current command and remaining path
	return root, path, nil
}

// parseCommandPath parses the command path from arguments
// Returns the command name and remaining arguments.
func parseCommandPath(args []string) ([]string, []string) {
	commandPath := []string{}
	remainingArgs := []string{}

	for i, arg := range args {
		if isFlag(arg) {
			remainingArgs = args[i:]
			break
		}

		commandPath = append(commandPath, arg)
	}

	return commandPath, remainingArgs
}

// isHelpFlag checks if an argument is a help flag.
func isHelpFlag(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "help"
}

// hasHelpFlag checks if arguments contain a help flag.
func hasHelpFlag(args []string) bool {
	return slices.ContainsFunc(args, isHelpFlag)
}
