package semver

import (
	"fmt"

	mm "github.com/Masterminds/semver/v3"
)

// SupportedSchema is the range of model schema versions the loader accepts.
const SupportedSchema = ">=1.0.0 <2.0.0"

// Version is a semantic version.
//
// This is a thin wrapper around github.com/Masterminds/semver/v3.
type Version struct {
	v *mm.Version
}

// Constraint is a semantic version constraint such as ">=1.0.0 <2.0.0".
type Constraint struct {
	c   *mm.Constraints
	raw string
}

func ParseVersion(raw string) (Version, error) {
	v, err := mm.NewVersion(raw)
	if err != nil {
		return Version{}, fmt.Errorf("semver: parse version %q: %w", raw, err)
	}
	return Version{v: v}, nil
}

func MustParseVersion(raw string) Version {
	v, err := ParseVersion(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func ParseConstraint(raw string) (Constraint, error) {
	c, err := mm.NewConstraint(raw)
	if err != nil {
		return Constraint{}, fmt.Errorf("semver: parse constraint %q: %w", raw, err)
	}
	return Constraint{c: c, raw: raw}, nil
}

func MustParseConstraint(raw string) Constraint {
	c, err := ParseConstraint(raw)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Constraint) String() string {
	return c.raw
}

func (v Version) String() string {
	if v.v == nil {
		return ""
	}
	return v.v.String()
}

func Satisfies(v Version, c Constraint) bool {
	if v.v == nil || c.c == nil {
		return false
	}
	return c.c.Check(v.v)
}

// Compare returns -1, 0 or 1 as a is lower than, equal to or higher than b.
func Compare(a, b Version) int {
	if a.v == nil && b.v == nil {
		return 0
	}
	if a.v == nil {
		return -1
	}
	if b.v == nil {
		return 1
	}
	return a.v.Compare(b.v)
}

// CheckSchema parses raw and verifies it satisfies SupportedSchema. An empty
// schema is treated as the lowest supported version.
func CheckSchema(raw string) (Version, error) {
	if raw == "" {
		raw = "1.0.0"
	}
	v, err := ParseVersion(raw)
	if err != nil {
		return Version{}, err
	}
	if !Satisfies(v, supported) {
		return v, fmt.Errorf("semver: %s does not satisfy %s", v, supported)
	}
	return v, nil
}

var supported = MustParseConstraint(SupportedSchema)
