// Package rule describes how a single field of a DTO is generated: the rule kind,
// its bounds, an optional remark overriding normal generation and the groups the
// field belongs to.
package rule

import (
	"slices"
	"strings"
)

// DefaultGroup is assigned to every rule declared without a group.
const DefaultGroup = "DEFAULT"

// ListSeparator separates list values inside a tag option, e.g. values=A|B|C.
const ListSeparator = "|"

type Charset string

const (
	CharsetEng      Charset = "ENG"
	CharsetEngLower Charset = "ENG_LOWER"
	CharsetEngUpper Charset = "ENG_UPPER"
	CharsetNum      Charset = "NUM"
	CharsetRus      Charset = "RUS"
	CharsetSpecial  Charset = "SPECIAL"
)

const (
	engLower = "abcdefghijklmnopqrstuvwxyz"
	engUpper = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	rusLower = "абвгдеёжзийклмнопрстуфхцчшщъыьэюя"
	rusUpper = "АБВГДЕЁЖЗИЙКЛМНОПРСТУФХЦЧШЩЪЫЬЭЮЯ"
	digits   = "0123456789"
	special  = "!@#$%^&*()-_=+[]{};:'\",.<>/?\\~`"
)

// Runes returns the characters of a charset.
func (c Charset) Runes() ([]rune, bool) {
	switch c {
	default:
		return nil, false
	case CharsetEng:
		return []rune(engLower + engUpper), true
	case CharsetEngLower:
		return []rune(engLower), true
	case CharsetEngUpper:
		return []rune(engUpper), true
	case CharsetNum:
		return []rune(digits), true
	case CharsetRus:
		return []rune(rusLower + rusUpper), true
	case CharsetSpecial:
		return []rune(special), true
	}
}

// Params holds the bound parameters of a rule. Which of them are meaningful
// depends on the rule kind.
type Params struct {
	Min, Max           int64
	MinFloat, MaxFloat float64
	Precision          int
	MinLen, MaxLen     int
	Charsets           []Charset
	Chars              string
	Values             []string
	LeftDays           int
	RightDays          int
	MinSize, MaxSize   int
	Generator          string
	Args               []string
}

// DefaultParams returns the parameters a rule of the given kind starts with
// before declared options are applied.
func DefaultParams(kind Kind) Params {
	switch kind {
	default:
		return Params{}
	case KindInt:
		return Params{Min: 0, Max: 999}
	case KindFloat:
		return Params{MinFloat: 0, MaxFloat: 1000, Precision: 2}
	case KindString:
		return Params{MinLen: 1, MaxLen: 16, Charsets: []Charset{CharsetEng, CharsetNum}}
	case KindTime:
		return Params{LeftDays: 365, RightDays: 365}
	case KindSlice, KindSet, KindMap:
		return Params{MinSize: 1, MaxSize: 5}
	}
}

// FieldRule is the validated generation rule of one field.
type FieldRule struct {
	// Field is the dotted path of the field within the top-level object.
	Field  string
	Kind   Kind
	Params Params
	Remark *Remark
	Groups []string

	// Elem is the element rule of slices and sets and the value rule of maps.
	Elem *FieldRule
	// Key is the key rule of maps.
	Key *FieldRule
}

// InGroups reports whether the rule belongs to at least one of the active groups.
func (r *FieldRule) InGroups(active map[string]struct{}) bool {
	groups := r.Groups
	if len(groups) == 0 {
		groups = []string{DefaultGroup}
	}

	for _, g := range groups {
		if _, ok := active[g]; ok {
			return true
		}
	}

	return false
}

// WithRemark returns a copy of the rule carrying the given remark.
func (r FieldRule) WithRemark(remark Remark) FieldRule {
	r.Remark = &remark
	return r
}

// Validate checks the structural consistency of the rule. Every failure is an
// ErrConfiguration: the declaration itself is invalid.
func (r *FieldRule) Validate() error {
	if !r.Kind.IsValid() {
		return Configurationf("field %s: unknown rule kind %d", r.Field, r.Kind)
	}

	if r.Remark != nil {
		if err := checkBuiltin(*r.Remark); err != nil {
			return err
		}
	}

	switch {
	case r.Kind.IsCollection():
		if r.Elem == nil {
			return Configurationf("field %s: %s rule requires an element rule", r.Field, r.Kind)
		}

		if r.Kind == KindMap && r.Key == nil {
			return Configurationf("field %s: map rule requires a key rule", r.Field)
		}

		if r.Kind != KindMap && r.Key != nil {
			return Configurationf("field %s: key rule is only allowed on maps", r.Field)
		}

		for _, sub := range []*FieldRule{r.Key, r.Elem} {
			if sub == nil {
				continue
			}

			if sub.Kind.IsCollection() {
				return Configurationf("field %s: nested collection element rules are not supported", r.Field)
			}

			if err := sub.Validate(); err != nil {
				return err
			}
		}
	case r.Elem != nil || r.Key != nil:
		return Configurationf("field %s: element rules are only allowed on collections", r.Field)
	}

	if r.Kind == KindCustom && r.Params.Generator == "" {
		return Configurationf("field %s: custom rule requires a generator binding", r.Field)
	}

	if r.Kind == KindString {
		for _, cs := range r.Params.Charsets {
			if _, ok := cs.Runes(); !ok {
				return Configurationf("field %s: unknown charset %q", r.Field, cs)
			}
		}
	}

	if r.Params.Precision < 0 {
		return Configurationf("field %s: negative precision %d", r.Field, r.Params.Precision)
	}

	return nil
}

// SplitList splits a '|' separated option value, trimming blanks.
func SplitList(s string) []string {
	parts := strings.Split(s, ListSeparator)
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return slices.Clip(out)
}

// At returns a deep copy of the rule addressed by path. Element rules become
// path[] and key rules path[key].
func (r FieldRule) At(path string) FieldRule {
	r.Field = path

	if r.Elem != nil {
		elem := r.Elem.At(path + "[]")
		r.Elem = &elem
	}

	if r.Key != nil {
		key := r.Key.At(path + "[key]")
		r.Key = &key
	}

	return r
}
