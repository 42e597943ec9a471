package rule

import "strings"

//go:generate go tool stringer -type=Kind -output=kind_string.go

type Kind int

const (
	_ Kind = iota // skip zero value, use it as a default (invalid) value for Kind

	KindInt
	KindFloat
	KindString
	KindBool
	KindTime
	KindEnum
	KindUUID
	KindNested
	KindSlice
	KindSet
	KindMap
	KindCustom

	// KindTotal is a constant that represents the total number of kinds defined
	KindTotal = int(iota)
)

var kindNames = map[string]Kind{
	"int":    KindInt,
	"float":  KindFloat,
	"string": KindString,
	"bool":   KindBool,
	"time":   KindTime,
	"enum":   KindEnum,
	"uuid":   KindUUID,
	"nested": KindNested,
	"slice":  KindSlice,
	"set":    KindSet,
	"map":    KindMap,
	"custom": KindCustom,
}

// ParseKind returns the kind for its tag name, e.g. "int" or "slice".
func ParseKind(name string) (Kind, bool) {
	k, ok := kindNames[strings.ToLower(strings.TrimSpace(name))]
	return k, ok
}

func (k Kind) IsValid() bool {
	return k > 0 && int(k) < KindTotal
}

// IsBasic reports whether the kind is generated by a stateless scalar generator.
func (k Kind) IsBasic() bool {
	switch k {
	default:
		return false
	case KindInt, KindFloat, KindString, KindBool, KindTime, KindEnum, KindUUID:
		return true
	}
}

func (k Kind) IsCollection() bool {
	switch k {
	default:
		return false
	case KindSlice, KindSet, KindMap:
		return true
	}
}
