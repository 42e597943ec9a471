package generator

import (
	"fmt"
	"math/rand/v2"
	"reflect"

	"github.com/ivalitov/dto-generator-sub003/rule"
)

// Collection fills slices, arrays, sets and maps with a size drawn from
// [MinSize, MaxSize]. Arrays always get all of their slots filled.
//
// A failing slot, or a duplicate in a set, is retried. More than MaxCycles
// retries fail the collection with rule.ErrElementRetryExhausted. Map keys that
// collide are overwritten, so a map may end up smaller than the drawn size.
type Collection struct {
	Kind             rule.Kind
	Type             reflect.Type
	MinSize, MaxSize int
	MaxCycles        int

	Elem *Resolved
	Key  *Resolved

	rand *rand.Rand
}

func newCollection(t Target, s *Session) (Generator, error) {
	r := t.Rule
	typ := t.Type

	var keyType, elemType reflect.Type

	switch r.Kind {
	case rule.KindSlice:
		if typ.Kind() != reflect.Slice && typ.Kind() != reflect.Array {
			return nil, rule.Configurationf("field %s: slice rule cannot fill %s", r.Field, typ)
		}

		elemType = typ.Elem()
	case rule.KindSet:
		if typ.Kind() != reflect.Map || !isPresenceType(typ.Elem()) {
			return nil, rule.Configurationf("field %s: set rule cannot fill %s, use map[K]struct{} or map[K]bool", r.Field, typ)
		}

		elemType = typ.Key()
	case rule.KindMap:
		if typ.Kind() != reflect.Map {
			return nil, rule.Configurationf("field %s: map rule cannot fill %s", r.Field, typ)
		}

		keyType, elemType = typ.Key(), typ.Elem()
	default:
		return nil, rule.Configurationf("field %s: %s is not a collection rule", r.Field, r.Kind)
	}

	p := r.Params
	if p.MinSize < 0 || p.MinSize > p.MaxSize {
		return nil, rule.Boundsf("field %s: invalid size range [%d, %d]", r.Field, p.MinSize, p.MaxSize)
	}

	g := &Collection{
		Kind:      r.Kind,
		Type:      typ,
		MinSize:   p.MinSize,
		MaxSize:   p.MaxSize,
		MaxCycles: s.env.MaxCollectionCycles,
		rand:      s.env.Rand,
	}

	var err error

	g.Elem, err = s.Resolve(Target{Rule: r.Elem, Type: Deref(elemType)})
	if err != nil {
		return nil, err
	}

	if keyType != nil {
		g.Key, err = s.Resolve(Target{Rule: r.Key, Type: Deref(keyType)})
		if err != nil {
			return nil, err
		}
	}

	return g, nil
}

func isPresenceType(t reflect.Type) bool {
	return t.Kind() == reflect.Bool || (t.Kind() == reflect.Struct && t.NumField() == 0)
}

func (g *Collection) Generate() (any, error) {
	return g.build(IntBetween(g.rand, g.MinSize, g.MaxSize))
}

func (g *Collection) GenerateRemark(remark rule.Remark) (any, error) {
	switch remark.Name {
	case rule.MinValueName:
		return g.build(g.MinSize)
	case rule.MaxValueName:
		return g.build(g.MaxSize)
	default:
		return g.Generate()
	}
}

// SetEnclosing forwards the enclosing object to object dependent element generators.
func (g *Collection) SetEnclosing(obj any) {
	for _, r := range []*Resolved{g.Key, g.Elem} {
		if r != nil && r.Caps.Has(CapObjectDependent) {
			r.Generator.(ObjectDependent).SetEnclosing(obj)
		}
	}
}

func (g *Collection) IsReady() bool {
	for _, r := range []*Resolved{g.Key, g.Elem} {
		if r != nil && r.Caps.Has(CapObjectDependent) && !r.Generator.(ObjectDependent).IsReady() {
			return false
		}
	}

	return true
}

func (g *Collection) build(size int) (any, error) {
	switch g.Kind {
	case rule.KindSet:
		return g.set(size)
	case rule.KindMap:
		return g.mapOf(size)
	default:
		return g.slice(size)
	}
}

func (g *Collection) slice(size int) (any, error) {
	var out reflect.Value

	if g.Type.Kind() == reflect.Array {
		out = reflect.New(g.Type).Elem()
		size = g.Type.Len()
	} else {
		out = reflect.MakeSlice(g.Type, size, size)
	}

	retries := 0

	for i := 0; i < size; {
		if err := fill(g.Elem, out.Index(i)); err != nil {
			if err = g.retry(&retries, err); err != nil {
				return nil, err
			}

			continue
		}

		i++
	}

	return out.Interface(), nil
}

func (g *Collection) set(size int) (any, error) {
	out := reflect.MakeMapWithSize(g.Type, size)

	present := reflect.New(g.Type.Elem()).Elem()
	if present.Kind() == reflect.Bool {
		present.SetBool(true)
	}

	retries := 0

	for out.Len() < size {
		k := reflect.New(g.Type.Key()).Elem()
		if err := fill(g.Elem, k); err != nil {
			if err = g.retry(&retries, err); err != nil {
				return nil, err
			}

			continue
		}

		if out.MapIndex(k).IsValid() {
			if err := g.retry(&retries, fmt.Errorf("duplicate element %v", k.Interface())); err != nil {
				return nil, err
			}

			continue
		}

		out.SetMapIndex(k, present)
	}

	return out.Interface(), nil
}

func (g *Collection) mapOf(size int) (any, error) {
	out := reflect.MakeMapWithSize(g.Type, size)
	retries := 0

	for i := 0; i < size; {
		k := reflect.New(g.Type.Key()).Elem()
		v := reflect.New(g.Type.Elem()).Elem()

		err := fill(g.Key, k)
		if err == nil {
			err = fill(g.Elem, v)
		}

		if err != nil {
			if err = g.retry(&retries, err); err != nil {
				return nil, err
			}

			continue
		}

		out.SetMapIndex(k, v)
		i++
	}

	return out.Interface(), nil
}

// retry counts a failed slot and reports whether the collection has to give up.
// Aborting errors are never retried.
func (g *Collection) retry(retries *int, cause error) error {
	if rule.Aborts(cause) {
		return cause
	}

	*retries++
	if *retries > g.MaxCycles {
		return fmt.Errorf("%w after %d retries: %w", rule.ErrElementRetryExhausted, g.MaxCycles, cause)
	}

	return nil
}

func fill(gen *Resolved, dst reflect.Value) error {
	v, err := gen.Generate()
	if err != nil {
		return err
	}

	return Assign(dst, v)
}

// Nested generates a whole nested object through the engine.
type Nested struct {
	Type  reflect.Type
	Field string
	fn    NestedFunc
}

func newNested(t Target, env *Env) (Generator, error) {
	if t.Type.Kind() != reflect.Struct {
		return nil, rule.Configurationf("field %s: nested rule cannot fill %s", t.Rule.Field, t.Type)
	}

	if env.Nested == nil {
		return nil, rule.Configurationf("field %s: nested generation is not available", t.Rule.Field)
	}

	return &Nested{Type: t.Type, Field: t.Rule.Field, fn: env.Nested}, nil
}

func (g *Nested) Generate() (any, error) {
	v, err := g.fn(g.Type, g.Field)
	if err != nil {
		return nil, err
	}

	return v.Interface(), nil
}
