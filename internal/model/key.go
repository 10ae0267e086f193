package model

import "strings"

// Key identifies a binding target: a type, an optional qualifier and an optional
// multibinding contribution discriminator. Keys are comparable and safe to use as
// map keys; two keys name the same target iff all three fields are equal.
type Key struct {
	Type         string `json:"type" yaml:"type"`
	Qualifier    string `json:"qualifier,omitempty" yaml:"qualifier,omitempty"`
	Contribution string `json:"contribution,omitempty" yaml:"contribution,omitempty"`
}

// NewKey returns an unqualified key for typ.
func NewKey(typ string) Key {
	return Key{Type: typ}
}

// QualifiedKey returns a key for typ carrying qualifier.
func QualifiedKey(qualifier, typ string) Key {
	return Key{Type: typ, Qualifier: qualifier}
}

// ContributionKey returns the key of a single contribution to the multibinding
// aggregate, discriminated by the declaring module and method.
func ContributionKey(aggregate Key, module, method string) Key {
	aggregate.Contribution = module + "." + method
	return aggregate
}

// IsZero reports whether k names nothing.
func (k Key) IsZero() bool {
	return k.Type == "" && k.Qualifier == "" && k.Contribution == ""
}

// IsContribution reports whether the multibinding marker is set.
func (k Key) IsContribution() bool {
	return k.Contribution != ""
}

// Aggregate returns k with the multibinding marker cleared.
func (k Key) Aggregate() Key {
	k.Contribution = ""
	return k
}

func (k Key) String() string {
	var sb strings.Builder
	if k.Qualifier != "" {
		sb.WriteString("@")
		sb.WriteString(k.Qualifier)
		sb.WriteString(" ")
	}
	sb.WriteString(k.Type)
	if k.Contribution != "" {
		sb.WriteString("{")
		sb.WriteString(k.Contribution)
		sb.WriteString("}")
	}
	return sb.String()
}

// Less orders keys by type, then qualifier, then contribution.
func (k Key) Less(o Key) bool {
	if k.Type != o.Type {
		return k.Type < o.Type
	}
	if k.Qualifier != o.Qualifier {
		return k.Qualifier < o.Qualifier
	}
	return k.Contribution < o.Contribution
}

// ParseKey parses the textual form produced by String for keys without a
// contribution marker: "Type" or "@Qualifier Type".
func ParseKey(s string) Key {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "@") {
		if idx := strings.IndexAny(s, " \t"); idx != -1 {
			return Key{
				Qualifier: s[1:idx],
				Type:      strings.TrimSpace(s[idx+1:]),
			}
		}
	}
	return Key{Type: s}
}
