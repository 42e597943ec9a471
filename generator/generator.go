// Package generator holds the generators that produce field values and the
// registry resolving a rule to a configured generator instance.
//
// Custom generators come in capability flavours checked through interfaces:
//   - Generator: plain, exposes only Generate
//   - Configurable: receives rule-derived setup once after instantiation
//   - ObjectDependent: needs the enclosing, possibly partially built, object
//   - RemarkAware: can honour MIN_VALUE and MAX_VALUE remarks
//
// Any combination is legal; the engine applies whichever the instance exposes.
package generator

import (
	"math/rand/v2"
	"reflect"
	"time"

	"github.com/ivalitov/dto-generator-sub003/rule"
)

// Generator produces one value per call.
type Generator interface {
	Generate() (any, error)
}

// Setup is the rule-derived configuration handed to Configurable generators.
type Setup struct {
	Field string
	Args  []string
	Rule  rule.FieldRule
	Rand  *rand.Rand
	Now   time.Time
}

type Configurable interface {
	Configure(setup Setup) error
}

// ObjectDependent generators are not run until IsReady reports true. SetEnclosing
// receives a pointer to the object being generated before every readiness check.
type ObjectDependent interface {
	SetEnclosing(obj any)
	IsReady() bool
}

// RemarkAware generators produce the edge values requested by MIN_VALUE and MAX_VALUE.
type RemarkAware interface {
	GenerateRemark(remark rule.Remark) (any, error)
}

type Capabilities uint8

const (
	CapConfigurable Capabilities = 1 << iota
	CapObjectDependent
	CapRemarkAware

	CapNone = 0
)

func (c Capabilities) Has(flag Capabilities) bool {
	return c&flag == flag
}

// CapabilitiesOf inspects the interfaces implemented by g.
func CapabilitiesOf(g Generator) Capabilities {
	caps := Capabilities(CapNone)

	if _, ok := g.(Configurable); ok {
		caps |= CapConfigurable
	}

	if _, ok := g.(ObjectDependent); ok {
		caps |= CapObjectDependent
	}

	if _, ok := g.(RemarkAware); ok {
		caps |= CapRemarkAware
	}

	return caps
}

// NestedFunc generates a complete nested object of type t for the given field path.
type NestedFunc func(t reflect.Type, field string) (reflect.Value, error)

// Env carries the per-call collaborators generators draw from. It is owned by a
// single generation call.
type Env struct {
	Rand                *rand.Rand
	Now                 time.Time
	MaxCollectionCycles int
	Nested              NestedFunc
}

// Target is what a factory builds a generator for: a rule and the Go type the
// produced values are assigned to (one pointer level already stripped).
type Target struct {
	Rule *rule.FieldRule
	Type reflect.Type
}

// Resolved is a generator instance with its capabilities computed once.
type Resolved struct {
	Generator
	Caps Capabilities
}

func newResolved(g Generator) *Resolved {
	return &Resolved{Generator: g, Caps: CapabilitiesOf(g)}
}

// Ready applies the enclosing object and reports readiness. Generators without
// the ObjectDependent capability are always ready.
func (r *Resolved) Ready(enclosing any) bool {
	if !r.Caps.Has(CapObjectDependent) {
		return true
	}

	dep := r.Generator.(ObjectDependent)
	dep.SetEnclosing(enclosing)

	return dep.IsReady()
}

// Edge produces the value requested by a MIN_VALUE or MAX_VALUE remark.
func (r *Resolved) Edge(remark rule.Remark) (any, error) {
	if !r.Caps.Has(CapRemarkAware) {
		return nil, rule.Configurationf("remark %s is not supported by %T", remark, r.Generator)
	}

	return r.Generator.(RemarkAware).GenerateRemark(remark)
}
