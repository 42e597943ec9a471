package rule

import (
	"strings"
)

const (
	MinValueName    = "MIN_VALUE"
	MaxValueName    = "MAX_VALUE"
	RandomValueName = "RANDOM_VALUE"
	NullValueName   = "NULL_VALUE"
)

// Remark forces a field to an edge-case value instead of normal generation.
type Remark struct {
	Name string
	Args []string
}

var (
	MinValue    = Remark{Name: MinValueName}
	MaxValue    = Remark{Name: MaxValueName}
	RandomValue = Remark{Name: RandomValueName}
	NullValue   = Remark{Name: NullValueName}
)

// NewRemark creates a custom remark carrying arguments.
func NewRemark(name string, args ...string) Remark {
	return Remark{Name: name, Args: args}
}

func (r Remark) IsBuiltin() bool {
	switch r.Name {
	default:
		return false
	case MinValueName, MaxValueName, RandomValueName, NullValueName:
		return true
	}
}

// Is compares remark names only.
func (r Remark) Is(other Remark) bool {
	return r.Name == other.Name
}

// String renders the remark the way it is written in a tag: NAME or NAME(a|b).
func (r Remark) String() string {
	if len(r.Args) == 0 {
		return r.Name
	}

	return r.Name + "(" + strings.Join(r.Args, ListSeparator) + ")"
}

// ParseRemark parses "NAME" or "NAME(arg1|arg2)".
func ParseRemark(s string) (Remark, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Remark{}, Configurationf("empty remark")
	}

	open := strings.IndexByte(s, '(')
	if open < 0 {
		if strings.ContainsAny(s, ")|") {
			return Remark{}, Configurationf("malformed remark %q", s)
		}

		return Remark{Name: s}, nil
	}

	if !strings.HasSuffix(s, ")") || open == 0 {
		return Remark{}, Configurationf("malformed remark %q", s)
	}

	name := strings.TrimSpace(s[:open])
	inner := s[open+1 : len(s)-1]

	r := Remark{Name: name}
	if inner != "" {
		r.Args = SplitList(inner)
	}

	return r, nil
}

// CustomRemark declares a user remark: how many arguments it requires and which
// generator binding serves it.
type CustomRemark struct {
	Name      string
	ArgsCount int
	Generator string
}

// Check validates the arguments a remark was declared with.
func (c CustomRemark) Check(r Remark) error {
	if len(r.Args) != c.ArgsCount {
		return Configurationf("remark %s requires %d argument(s), got %d", c.Name, c.ArgsCount, len(r.Args))
	}

	return nil
}

// checkBuiltin validates that a builtin remark carries no arguments.
func checkBuiltin(r Remark) error {
	if r.IsBuiltin() && len(r.Args) != 0 {
		return Configurationf("remark %s requires 0 argument(s), got %d", r.Name, len(r.Args))
	}

	return nil
}
