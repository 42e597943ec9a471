package generator

import (
	"fmt"
	"math/rand/v2"
	"reflect"
	"slices"
	"strings"

	"github.com/ivalitov/dto-generator-sub003/rule"
)

// String builds strings with a length drawn from [MinLen, MaxLen] over an alphabet
// made of the configured charsets and extra characters.
type String struct {
	MinLen, MaxLen int
	Alphabet       []rune
	rand           *rand.Rand
}

func newString(t Target, env *Env) (Generator, error) {
	if t.Type.Kind() != reflect.String {
		return nil, rule.Configurationf("field %s: string rule cannot fill %s", t.Rule.Field, t.Type)
	}

	p := t.Rule.Params
	if p.MinLen < 0 || p.MinLen > p.MaxLen {
		return nil, rule.Boundsf("field %s: invalid length range [%d, %d]", t.Rule.Field, p.MinLen, p.MaxLen)
	}

	alphabet, err := Alphabet(p.Charsets, p.Chars)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", t.Rule.Field, err)
	}

	if len(alphabet) == 0 && p.MaxLen > 0 {
		return nil, rule.Boundsf("field %s: empty alphabet", t.Rule.Field)
	}

	return &String{MinLen: p.MinLen, MaxLen: p.MaxLen, Alphabet: alphabet, rand: env.Rand}, nil
}

// Alphabet returns the deduplicated union of charsets and extra characters in a
// stable order.
func Alphabet(charsets []rule.Charset, extra string) ([]rune, error) {
	seen := map[rune]struct{}{}
	var out []rune

	add := func(rs []rune) {
		for _, r := range rs {
			if _, ok := seen[r]; !ok {
				seen[r] = struct{}{}
				out = append(out, r)
			}
		}
	}

	for _, cs := range charsets {
		rs, ok := cs.Runes()
		if !ok {
			return nil, rule.Configurationf("unknown charset %q", cs)
		}

		add(rs)
	}

	add([]rune(extra))

	return slices.Clip(out), nil
}

func (g *String) Generate() (any, error) {
	return g.ofLength(IntBetween(g.rand, g.MinLen, g.MaxLen)), nil
}

func (g *String) GenerateRemark(remark rule.Remark) (any, error) {
	switch remark.Name {
	case rule.MinValueName:
		return g.ofLength(g.MinLen), nil
	case rule.MaxValueName:
		return g.ofLength(g.MaxLen), nil
	default:
		return g.Generate()
	}
}

func (g *String) ofLength(n int) string {
	var sb strings.Builder
	sb.Grow(n)

	for range n {
		sb.WriteRune(g.Alphabet[g.rand.IntN(len(g.Alphabet))])
	}

	return sb.String()
}
