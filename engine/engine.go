// Package engine generates populated DTO instances from the rules declared on
// their fields.
//
// Generation of one object:
//  1. Fields are visited in declaration order, skipping fields outside the
//     active groups.
//  2. Each field resolves its generator; a remark replaces normal generation.
//  3. Object dependent generators that are not ready are deferred. Deferred fields
//     are retried in passes until a pass makes no progress or the dependent
//     cycle limit is reached; the rest fail with rule.ErrDependencyCycle.
//  4. Nested fields recurse into the same algorithm with a child context.
//
// Configuration and binding errors abort the call. Any other failure is
// recorded per field and, under CollectAndContinue, generation goes on.
package engine

import (
	"fmt"
	"reflect"

	"github.com/ivalitov/dto-generator-sub003/generator"
	"github.com/ivalitov/dto-generator-sub003/internal/introspect"
	"github.com/ivalitov/dto-generator-sub003/rule"
)

// Engine runs generation calls with a preset list of options.
type Engine struct {
	opts []Option
}

func New(opts ...Option) *Engine {
	return &Engine{opts: opts}
}

// GenerateType generates a value of t, a struct type or a pointer to one.
// Options given here are applied after the engine's own.
func (e *Engine) GenerateType(t reflect.Type, opts ...Option) (reflect.Value, ErrorMap, error) {
	return GenerateType(t, e.with(opts)...)
}

// Fill populates the zero fields of the struct ptr points to.
func (e *Engine) Fill(ptr any, opts ...Option) (ErrorMap, error) {
	return Fill(ptr, e.with(opts)...)
}

func (e *Engine) with(opts []Option) []Option {
	return append(append([]Option{}, e.opts...), opts...)
}

// Generate builds a populated T. Under CollectAndContinue the returned ErrorMap
// is never nil and lists every field that could not be generated; the instance
// is returned populated as far as possible. A non-nil error means the call was
// aborted, either by a fatal error or by the first failure under FailFast.
func Generate[T any](opts ...Option) (T, ErrorMap, error) {
	var zero T

	v, errs, err := GenerateType(reflect.TypeFor[T](), opts...)
	if err != nil {
		return zero, errs, err
	}

	return v.Interface().(T), errs, nil
}

// GenerateType is Generate for a type known at run time.
func GenerateType(t reflect.Type, opts ...Option) (reflect.Value, ErrorMap, error) {
	if t == nil || generator.Deref(t).Kind() != reflect.Struct {
		return reflect.Value{}, nil, rule.Configurationf("cannot generate %v, a struct type is required", t)
	}

	target := reflect.New(generator.Deref(t))

	errs, err := run(target, false, opts)
	if err != nil {
		return reflect.Value{}, errs, err
	}

	if t.Kind() == reflect.Pointer {
		return target, errs, nil
	}

	return target.Elem(), errs, nil
}

// Fill populates an existing instance. Fields that already hold a non-zero value
// are left as they are; nested objects are always generated whole.
func Fill(ptr any, opts ...Option) (ErrorMap, error) {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return nil, rule.Configurationf("cannot fill %T, a non-nil pointer to a struct is required", ptr)
	}

	return run(rv, true, opts)
}

func run(target reflect.Value, fill bool, opts []Option) (ErrorMap, error) {
	ctx, err := newContext(opts)
	if err != nil {
		return nil, err
	}

	ctx.fillExisting = fill

	if err := ctx.checkOverrides(target.Elem().Type()); err != nil {
		return nil, err
	}

	if err := ctx.object(target.Elem()); err != nil {
		return ctx.errs, err
	}

	return ctx.errs, nil
}

type fieldState int

const (
	statePending fieldState = iota
	stateResolved
	stateGenerated
	stateDeferred
	stateFailed
)

func (s fieldState) String() string {
	switch s {
	case statePending:
		return "pending"
	case stateResolved:
		return "resolved"
	case stateGenerated:
		return "generated"
	case stateDeferred:
		return "deferred"
	case stateFailed:
		return "failed"
	default:
		return fmt.Sprintf("fieldState(%d)", int(s))
	}
}

// task is one field of the object being generated.
type task struct {
	rule   rule.FieldRule
	dst    reflect.Value
	gen    *generator.Resolved
	remark *rule.Remark
	state  fieldState
}

// object generates every selected field of the addressable struct value target.
// It returns an error only when the call has to abort.
func (c *genContext) object(target reflect.Value) error {
	fields, err := introspect.Fields(target.Type())
	if err != nil {
		return err
	}

	enclosing := target.Addr().Interface()

	var d dealer

	for _, f := range fields {
		t := &task{rule: f.Rule.At(c.fieldPath(f.Name)), dst: target.Field(f.Index)}

		if !t.rule.InGroups(c.groups) {
			continue
		}

		if c.fillExisting && !t.dst.IsZero() {
			continue
		}

		if err := c.resolve(t, f.Type); err != nil {
			if err := c.fail(t, err); err != nil {
				return err
			}

			continue
		}

		if err := c.attempt(t, enclosing, &d); err != nil {
			return err
		}
	}

	for cycle := 1; d.Pending() && cycle <= c.config.MaxDependentGenerationCycles; cycle++ {
		deferred := d.Drain()
		c.log.Debug("retrying deferred fields", "object", c.path, "cycle", cycle, "deferred", len(deferred))

		for _, t := range deferred {
			if err := c.attempt(t, enclosing, &d); err != nil {
				return err
			}
		}

		if d.Pending() && !d.Progressed(deferred) {
			break
		}
	}

	for _, t := range d.Drain() {
		err := fmt.Errorf("%w: generator of %s never became ready", rule.ErrDependencyCycle, t.rule.Field)
		if err := c.fail(t, err); err != nil {
			return err
		}
	}

	return nil
}

// resolve applies the effective remark and finds the generator of a field.
func (c *genContext) resolve(t *task, fieldType reflect.Type) error {
	remark, optional := c.remarkFor(&t.rule)
	typ := generator.Deref(fieldType)

	switch {
	case remark != nil && remark.Is(rule.NullValue):
		t.remark = remark
		t.state = stateResolved

		return nil
	case remark != nil && !remark.IsBuiltin():
		gen, err := c.resolveCustomRemark(t, *remark, typ)
		if err != nil {
			return err
		}

		t.gen = gen
		t.state = stateResolved

		return nil
	}

	target := generator.Target{Rule: &t.rule, Type: typ}

	var err error
	if g, ok := c.generators[t.rule.Field]; ok {
		t.gen, err = c.session.Adopt(target, g)
	} else {
		t.gen, err = c.session.Resolve(target)
	}

	if err != nil {
		return err
	}

	if remark != nil && (remark.Is(rule.MinValue) || remark.Is(rule.MaxValue)) {
		switch {
		case t.gen.Caps.Has(generator.CapRemarkAware):
			t.remark = remark
		case !optional:
			return rule.Configurationf("field %s: remark %s is not supported by %T", t.rule.Field, remark, t.gen.Generator)
		}
	}

	t.state = stateResolved

	return nil
}

// resolveCustomRemark dispatches a custom remark to its bound generator exactly
// like a custom rule carrying the remark arguments.
func (c *genContext) resolveCustomRemark(t *task, remark rule.Remark, typ reflect.Type) (*generator.Resolved, error) {
	def, ok := c.registry.CustomRemark(remark.Name)
	if !ok {
		return nil, rule.Configurationf("field %s: unknown remark %s", t.rule.Field, remark.Name)
	}

	if err := def.Check(remark); err != nil {
		return nil, fmt.Errorf("field %s: %w", t.rule.Field, err)
	}

	custom := rule.FieldRule{
		Field:  t.rule.Field,
		Kind:   rule.KindCustom,
		Params: rule.Params{Generator: def.Generator, Args: remark.Args},
		Groups: t.rule.Groups,
	}

	return c.session.Resolve(generator.Target{Rule: &custom, Type: typ})
}

// attempt runs a resolved field once. Fields whose generator is not ready are
// handed to the dealer. The returned error aborts the call.
func (c *genContext) attempt(t *task, enclosing any, d *dealer) error {
	if t.remark != nil && t.remark.Is(rule.NullValue) {
		t.dst.SetZero()
		t.state = stateGenerated

		return nil
	}

	ready, err := c.ready(t, enclosing)
	if err != nil {
		return c.fail(t, err)
	}

	if !ready {
		c.log.Debug("field deferred", "field", t.rule.Field)
		d.Needs(t)

		return nil
	}

	v, err := c.produce(t)
	if err == nil {
		err = generator.Assign(t.dst, v)
	}

	if err != nil {
		return c.fail(t, err)
	}

	t.state = stateGenerated

	return nil
}

func (c *genContext) ready(t *task, enclosing any) (ok bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			ok = false
			err = fmt.Errorf("generator %T panicked in readiness check: %v", t.gen.Generator, rec)
		}
	}()

	return t.gen.Ready(enclosing), nil
}

func (c *genContext) produce(t *task) (v any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			v = nil
			err = fmt.Errorf("generator %T panicked: %v", t.gen.Generator, rec)
		}
	}()

	if t.remark != nil && (t.remark.Is(rule.MinValue) || t.remark.Is(rule.MaxValue)) {
		return t.gen.Edge(*t.remark)
	}

	return t.gen.Generate()
}

// fail records a field failure and returns the error that aborts the call, if any.
func (c *genContext) fail(t *task, err error) error {
	t.state = stateFailed

	if rule.Aborts(err) {
		return err
	}

	c.errs.Add(t.rule.Field, err)
	c.log.Debug("field failed", "field", t.rule.Field, "error", err)

	if c.policy == FailFast {
		return &rule.FieldError{Field: t.rule.Field, Err: err}
	}

	return nil
}

// nested generates a nested object for a field path within the current call.
func (c *genContext) nested(t reflect.Type, field string) (reflect.Value, error) {
	if limit := c.config.MaxNestingDepth; limit > 0 && c.depth >= limit {
		return reflect.Value{}, fmt.Errorf("%w: nesting deeper than %d at %s", rule.ErrBounds, limit, field)
	}

	c.depth++
	defer func() { c.depth-- }()

	v := reflect.New(t).Elem()
	if err := c.child(field).object(v); err != nil {
		return reflect.Value{}, err
	}

	return v, nil
}
