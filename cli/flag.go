package cli

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// FlagType is the value type of a flag.
type FlagType int

const (
	StringFlag FlagType = iota
	IntFlag
	BoolFlag
	StringSliceFlag
)

// String returns the placeholder shown in help.
func (t FlagType) String() string {
	switch t {
	case IntFlag:
		return "int"
	case BoolFlag:
		return "bool"
	case StringSliceFlag:
		return "strings"
	default:
		return "string"
	}
}

// parse converts a raw command-line or environment value.
func (t FlagType) parse(raw string) (any, error) {
	switch t {
	case IntFlag:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("expects an integer, got %q", raw)
		}
		return v, nil
	case BoolFlag:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("expects a boolean, got %q", raw)
		}
		return v, nil
	case StringSliceFlag:
		return strings.Split(raw, ","), nil
	default:
		return raw, nil
	}
}

// Flag describes a command-line flag.
type Flag interface {
	Name() string
	ShortName() string
	Description() string
	Type() FlagType
	DefaultValue() any
	Required() bool
	// Env names an environment variable consulted when the flag is not given.
	Env() string
	Validate(value any) error
}

type flag struct {
	name         string
	shortName    string
	description  string
	flagType     FlagType
	defaultValue any
	required     bool
	env          string
	validators   []func(any) error
}

func (f *flag) Name() string        { return f.name }
func (f *flag) ShortName() string   { return f.shortName }
func (f *flag) Description() string { return f.description }
func (f *flag) Type() FlagType      { return f.flagType }
func (f *flag) DefaultValue() any   { return f.defaultValue }
func (f *flag) Required() bool      { return f.required }
func (f *flag) Env() string         { return f.env }

func (f *flag) Validate(value any) error {
	for _, v := range f.validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// FlagOption configures a flag.
type FlagOption func(*flag)

// Short sets the one-letter alias, used as -x.
func Short(name string) FlagOption {
	return func(f *flag) {
		f.shortName = name
	}
}

// Default sets the value used when the flag is neither given nor set in the
// environment.
func Default(value any) FlagOption {
	return func(f *flag) {
		f.defaultValue = value
	}
}

// Required marks the flag as mandatory.
func Required() FlagOption {
	return func(f *flag) {
		f.required = true
	}
}

// FromEnv reads the flag from the named environment variable when it is not
// given on the command line.
func FromEnv(name string) FlagOption {
	return func(f *flag) {
		f.env = name
	}
}

// OneOf restricts a string flag to the allowed values.
func OneOf(allowed ...string) FlagOption {
	return func(f *flag) {
		f.validators = append(f.validators, func(value any) error {
			if s, ok := value.(string); ok && slices.Contains(allowed, s) {
				return nil
			}
			return fmt.Errorf("must be one of: %s", strings.Join(allowed, ", "))
		})
	}
}

// Between restricts an int flag to [minVal, maxVal].
func Between(minVal, maxVal int) FlagOption {
	return func(f *flag) {
		f.validators = append(f.validators, func(value any) error {
			if v, ok := value.(int); ok && v >= minVal && v <= maxVal {
				return nil
			}
			return fmt.Errorf("must be between %d and %d", minVal, maxVal)
		})
	}
}

// NewFlag creates a flag of the given type.
func NewFlag(name string, flagType FlagType, description string, opts ...FlagOption) Flag {
	f := &flag{name: name, flagType: flagType, description: description}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// String creates a string flag.
func String(name, description string, opts ...FlagOption) Flag {
	return NewFlag(name, StringFlag, description, append([]FlagOption{Default("")}, opts...)...)
}

// Int creates an int flag.
func Int(name, description string, opts ...FlagOption) Flag {
	return NewFlag(name, IntFlag, description, append([]FlagOption{Default(0)}, opts...)...)
}

// Bool creates a bool flag. Bool flags take no value on the command line.
func Bool(name, description string, opts ...FlagOption) Flag {
	return NewFlag(name, BoolFlag, description, append([]FlagOption{Default(false)}, opts...)...)
}

// StringSlice creates a repeatable flag; values accumulate and may also be
// comma separated.
func StringSlice(name, description string, opts ...FlagOption) Flag {
	return NewFlag(name, StringSliceFlag, description, opts...)
}

// FlagValue is the parsed value of a flag.
type FlagValue interface {
	String() string
	Int() int
	Bool() bool
	StringSlice() []string
	// IsSet reports whether the value came from the command line or the
	// environment rather than the default.
	IsSet() bool
	Raw() any
}

type flagValue struct {
	raw   any
	isSet bool
}

func (v *flagValue) IsSet() bool { return v.isSet }
func (v *flagValue) Raw() any    { return v.raw }

func (v *flagValue) String() string {
	switch x := v.raw.(type) {
	case nil:
		return ""
	case string:
		return x
	case []string:
		return strings.Join(x, ",")
	default:
		return fmt.Sprint(x)
	}
}

func (v *flagValue) Int() int {
	switch x := v.raw.(type) {
	case int:
		return x
	case string:
		i, _ := strconv.Atoi(x)
		return i
	default:
		return 0
	}
}

func (v *flagValue) Bool() bool {
	switch x := v.raw.(type) {
	case bool:
		return x
	case string:
		b, _ := strconv.ParseBool(x)
		return b
	default:
		return false
	}
}

func (v *flagValue) StringSlice() []string {
	switch x := v.raw.(type) {
	case []string:
		return x
	case string:
		if x == "" {
			return nil
		}
		return strings.Split(x, ",")
	default:
		return nil
	}
}
