package generator

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/ivalitov/dto-generator-sub003/rule"
)

// Factory builds a configured generator for a target within a session.
type Factory func(t Target, s *Session) (Generator, error)

// Registry maps rule kinds to factories and binding names to custom generator
// types. It is safe for concurrent use; generator instances never live in it.
type Registry struct {
	mu        sync.RWMutex
	factories map[rule.Kind]Factory
	bindings  map[string]func() (any, error)
	remarks   map[string]rule.CustomRemark
}

func NewRegistry() *Registry {
	return &Registry{
		factories: map[rule.Kind]Factory{
			rule.KindInt:    basic(newInt),
			rule.KindFloat:  basic(newFloat),
			rule.KindString: basic(newString),
			rule.KindBool:   basic(newBool),
			rule.KindTime:   basic(newTime),
			rule.KindEnum:   basic(newEnum),
			rule.KindUUID:   basic(newUUID),
			rule.KindNested: basic(newNested),
			rule.KindSlice:  newCollection,
			rule.KindSet:    newCollection,
			rule.KindMap:    newCollection,
		},
		bindings: map[string]func() (any, error){},
		remarks:  map[string]rule.CustomRemark{},
	}
}

func basic(fn func(Target, *Env) (Generator, error)) Factory {
	return func(t Target, s *Session) (Generator, error) {
		return fn(t, s.env)
	}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry used when a call does not bring its own.
func Default() *Registry {
	return defaultRegistry
}

// Bind registers a custom generator under name. Every generation call default
// constructs a fresh instance of the prototype's type, so the prototype value
// itself is never used.
func (r *Registry) Bind(name string, prototype any) *Registry {
	t := reflect.TypeOf(prototype)

	return r.bind(name, func() (any, error) {
		if t == nil {
			return nil, rule.Bindingf("generator %q is bound to nil", name)
		}

		base := Deref(t)
		switch base.Kind() {
		case reflect.Interface, reflect.Func, reflect.Chan, reflect.UnsafePointer:
			return nil, rule.Bindingf("generator %q: %s has no default constructor", name, t)
		default:
			return reflect.New(base).Interface(), nil
		}
	})
}

// BindFunc registers a constructor for a custom generator.
func (r *Registry) BindFunc(name string, ctor func() Generator) *Registry {
	return r.bind(name, func() (any, error) {
		if ctor == nil {
			return nil, rule.Bindingf("generator %q has a nil constructor", name)
		}

		return ctor(), nil
	})
}

func (r *Registry) bind(name string, ctor func() (any, error)) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.bindings[name] = ctor

	return r
}

// BindRemark registers a custom remark served by a bound generator.
func (r *Registry) BindRemark(def rule.CustomRemark) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.remarks[def.Name] = def

	return r
}

func (r *Registry) CustomRemark(name string) (rule.CustomRemark, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.remarks[name]

	return def, ok
}

// Resolve returns the factory for a rule kind. Custom kinds are resolved through
// the binding name.
func (r *Registry) Resolve(kind rule.Kind, binding string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if kind == rule.KindCustom {
		ctor, ok := r.bindings[binding]
		if !ok {
			return nil, rule.Bindingf("no generator bound to %q", binding)
		}

		return customFactory(binding, ctor), nil
	}

	f, ok := r.factories[kind]
	if !ok {
		return nil, rule.Configurationf("no generator for rule kind %s", kind)
	}

	return f, nil
}

func customFactory(binding string, ctor func() (any, error)) Factory {
	return func(t Target, s *Session) (g Generator, err error) {
		defer func() {
			if rec := recover(); rec != nil {
				g = nil
				err = rule.Bindingf("generator %q panicked: %v", binding, rec)
			}
		}()

		inst, err := ctor()
		if err != nil {
			return nil, err
		}

		g, ok := inst.(Generator)
		if !ok {
			return nil, rule.Bindingf("generator %q: %T does not implement Generator", binding, inst)
		}

		if err := configure(binding, g, t, s.env); err != nil {
			return nil, err
		}

		return g, nil
	}
}

// configure hands the rule-derived setup to Configurable generators.
func configure(binding string, g Generator, t Target, env *Env) (err error) {
	c, ok := g.(Configurable)
	if !ok {
		return nil
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = rule.Bindingf("generator %q panicked: %v", binding, rec)
		}
	}()

	err = c.Configure(Setup{
		Field: t.Rule.Field,
		Args:  t.Rule.Params.Args,
		Rule:  *t.Rule,
		Rand:  env.Rand,
		Now:   env.Now,
	})
	if err != nil {
		return classify(binding, err)
	}

	return nil
}

// classify keeps taxonomy errors from Configure and treats anything else as a
// configuration failure.
func classify(binding string, err error) error {
	for _, known := range []error{
		rule.ErrConfiguration, rule.ErrBinding, rule.ErrBounds,
		rule.ErrDependencyCycle, rule.ErrElementRetryExhausted,
	} {
		if errors.Is(err, known) {
			return err
		}
	}

	return fmt.Errorf("%w: generator %q: %w", rule.ErrConfiguration, binding, err)
}

// overrideBinding keys caller supplied instances in a session.
const overrideBinding = "\x00override"

type sessionKey struct {
	field   string
	kind    rule.Kind
	binding string
}

// Session resolves generators for one generation call and caches every instance
// per field and binding. Sessions are not shared between calls.
type Session struct {
	reg       *Registry
	env       *Env
	instances map[sessionKey]*Resolved
}

func (r *Registry) NewSession(env *Env) *Session {
	return &Session{
		reg:       r,
		env:       env,
		instances: map[sessionKey]*Resolved{},
	}
}

// Resolve returns the generator instance for a target, building it on first use.
func (s *Session) Resolve(t Target) (*Resolved, error) {
	key := sessionKey{field: t.Rule.Field, kind: t.Rule.Kind, binding: t.Rule.Params.Generator}
	if res, ok := s.instances[key]; ok {
		return res, nil
	}

	f, err := s.reg.Resolve(t.Rule.Kind, t.Rule.Params.Generator)
	if err != nil {
		return nil, err
	}

	g, err := f(t, s)
	if err != nil {
		return nil, err
	}

	res := newResolved(g)
	s.instances[key] = res

	return res, nil
}

// Adopt wraps a caller supplied generator for a target. It is configured like a
// bound generator, once per session.
func (s *Session) Adopt(t Target, g Generator) (*Resolved, error) {
	key := sessionKey{field: t.Rule.Field, kind: t.Rule.Kind, binding: overrideBinding}
	if res, ok := s.instances[key]; ok {
		return res, nil
	}

	if g == nil {
		return nil, rule.Bindingf("field %s: nil generator override", t.Rule.Field)
	}

	if err := configure(fmt.Sprintf("%T", g), g, t, s.env); err != nil {
		return nil, err
	}

	res := newResolved(g)
	s.instances[key] = res

	return res, nil
}
