package diag

// List is an ordered set of problems.
type List []Problem

// HasErrors reports whether any problem is an error.
func (l List) HasErrors() bool {
	for _, p := range l {
		if p.IsError() {
			return true
		}
	}
	return false
}

// Errors returns the error-severity problems.
func (l List) Errors() List {
	return l.filter(func(p Problem) bool { return p.IsError() })
}

// Warnings returns the warning-severity problems.
func (l List) Warnings() List {
	return l.filter(func(p Problem) bool { return !p.IsError() })
}

// WithCode returns the problems carrying code.
func (l List) WithCode(code Code) List {
	return l.filter(func(p Problem) bool { return p.Code == code })
}

// Codes lists the code of every problem in order.
func (l List) Codes() []Code {
	codes := make([]Code, len(l))
	for i, p := range l {
		codes[i] = p.Code
	}
	return codes
}

func (l List) filter(keep func(Problem) bool) List {
	var out List
	for _, p := range l {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
