package generator

import (
	"errors"
	"math/rand/v2"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ivalitov/dto-generator-sub003/rule"
)

var testNow = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

func testEnv(seed uint64) *Env {
	return &Env{
		Rand:                rand.New(rand.NewPCG(seed, seed)),
		Now:                 testNow,
		MaxCollectionCycles: 10,
	}
}

func ruleOf(field string, kind rule.Kind, mutate ...func(p *rule.Params)) rule.FieldRule {
	p := rule.DefaultParams(kind)
	for _, m := range mutate {
		m(&p)
	}

	return rule.FieldRule{Field: field, Kind: kind, Params: p}
}

func resolve(env *Env, r rule.FieldRule, typ reflect.Type) (*Resolved, error) {
	return NewRegistry().NewSession(env).Resolve(Target{Rule: &r, Type: typ})
}

func mustResolve(t *testing.T, env *Env, r rule.FieldRule, typ reflect.Type) *Resolved {
	t.Helper()

	g, err := resolve(env, r, typ)
	require.NoError(t, err)

	return g
}

func mustGenerate(t *testing.T, g Generator) any {
	t.Helper()

	v, err := g.Generate()
	require.NoError(t, err)

	return v
}

type counter struct {
	n int
}

func (c *counter) Generate() (any, error) {
	c.n++
	return c.n, nil
}

type prefixed struct {
	prefix string
	field  string
}

func (p *prefixed) Configure(setup Setup) error {
	if len(setup.Args) != 1 {
		return errors.New("one argument expected")
	}

	p.prefix, p.field = setup.Args[0], setup.Field

	return nil
}

func (p *prefixed) Generate() (any, error) {
	return p.prefix + "-" + p.field, nil
}

type failing struct{}

func (failing) Generate() (any, error) {
	return nil, errors.New("boom")
}

type notGenerator struct{}

type panicking struct{}

func (*panicking) Configure(Setup) error {
	panic("configure exploded")
}

func (*panicking) Generate() (any, error) {
	return nil, nil
}

type outOfBounds struct{}

func (*outOfBounds) Configure(setup Setup) error {
	return rule.Boundsf("field %s: nothing to draw from", setup.Field)
}

func (*outOfBounds) Generate() (any, error) {
	return nil, nil
}

type waiting struct {
	obj   any
	ready bool
}

func (w *waiting) SetEnclosing(obj any) {
	w.obj = obj
}

func (w *waiting) IsReady() bool {
	return w.ready
}

func (w *waiting) Generate() (any, error) {
	return "done", nil
}
