// Package introspect turns the dto struct tags of a type into an ordered list of
// validated field rules. Results are cached per type for the process lifetime.
//
// Tag grammar:
//
//	dto:"<kind>[,key=value...]"   the field rule; kind may be empty to infer it
//	dtoelem:"<rule>"              element rule of slices and sets, value rule of maps
//	dtokey:"<rule>"               key rule of maps
//	dto:"-"                       field is skipped
//
// List values are separated with '|', remark arguments are written NAME(a|b).
package introspect

import (
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ivalitov/dto-generator-sub003/rule"
)

// Field is one generated field of a struct type in declaration order.
type Field struct {
	Name  string
	Index int
	Type  reflect.Type
	Rule  rule.FieldRule
}

type cached struct {
	fields []Field
	err    error
}

var cache sync.Map // reflect.Type -> cached

// Fields returns the tagged fields of struct type t in declaration order.
// Untagged fields are not listed. Errors are rule.ErrConfiguration and are
// cached like successful results.
func Fields(t reflect.Type) ([]Field, error) {
	if c, ok := cache.Load(t); ok {
		return c.(cached).fields, c.(cached).err
	}

	fields, err := inspect(t)
	c, _ := cache.LoadOrStore(t, cached{fields: fields, err: err})

	return c.(cached).fields, c.(cached).err
}

func inspect(t reflect.Type) ([]Field, error) {
	if t.Kind() != reflect.Struct {
		return nil, rule.Configurationf("%s is not a struct type", t)
	}

	var out []Field

	for i := range t.NumField() {
		sf := t.Field(i)

		tag, tagged := sf.Tag.Lookup(TagRule)
		_, hasElem := sf.Tag.Lookup(TagElem)
		_, hasKey := sf.Tag.Lookup(TagKey)

		if !tagged {
			if hasElem || hasKey {
				return nil, rule.Configurationf("field %s: element rules without a %s tag", sf.Name, TagRule)
			}

			continue
		}

		if tag == "-" {
			continue
		}

		if !sf.IsExported() {
			return nil, rule.Configurationf("field %s: unexported fields cannot be generated", sf.Name)
		}

		r, err := fieldRule(sf)
		if err != nil {
			return nil, err
		}

		out = append(out, Field{Name: sf.Name, Index: i, Type: sf.Type, Rule: *r})
	}

	return out, nil
}

func fieldRule(sf reflect.StructField) (*rule.FieldRule, error) {
	typ := deref(sf.Type)

	r, err := parseRule(sf.Name, sf.Tag.Get(TagRule), true, func() (rule.Kind, bool) {
		return InferKind(typ)
	})
	if err != nil {
		return nil, err
	}

	if r.Kind.IsCollection() {
		elemType, keyType := collectionTypes(r.Kind, typ)

		if tag, ok := sf.Tag.Lookup(TagElem); ok {
			r.Elem, err = parseRule(sf.Name+"[]", tag, false, inferFor(elemType))
			if err != nil {
				return nil, err
			}
		}

		if tag, ok := sf.Tag.Lookup(TagKey); ok {
			r.Key, err = parseRule(sf.Name+"[key]", tag, false, inferFor(keyType))
			if err != nil {
				return nil, err
			}
		}
	} else {
		if _, ok := sf.Tag.Lookup(TagElem); ok {
			return nil, rule.Configurationf("field %s: %s tag on a %s rule", sf.Name, TagElem, r.Kind)
		}

		if _, ok := sf.Tag.Lookup(TagKey); ok {
			return nil, rule.Configurationf("field %s: %s tag on a %s rule", sf.Name, TagKey, r.Kind)
		}
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}

	return r, nil
}

func inferFor(t reflect.Type) func() (rule.Kind, bool) {
	return func() (rule.Kind, bool) {
		if t == nil {
			return 0, false
		}

		return InferKind(deref(t))
	}
}

// collectionTypes returns the element (or map value) and key types a collection
// rule fills; nil when the Go type does not match the rule.
func collectionTypes(kind rule.Kind, t reflect.Type) (elem, key reflect.Type) {
	switch {
	case kind == rule.KindSlice && (t.Kind() == reflect.Slice || t.Kind() == reflect.Array):
		return t.Elem(), nil
	case kind == rule.KindSet && t.Kind() == reflect.Map:
		return t.Key(), nil
	case kind == rule.KindMap && t.Kind() == reflect.Map:
		return t.Elem(), t.Key()
	default:
		return nil, nil
	}
}

var (
	timeType = reflect.TypeFor[time.Time]()
	uuidType = reflect.TypeFor[uuid.UUID]()
)

// InferKind returns the rule kind used when a tag leaves the kind empty.
func InferKind(t reflect.Type) (rule.Kind, bool) {
	if t == nil {
		return 0, false
	}

	// check well known struct and array types first
	switch t {
	case timeType:
		return rule.KindTime, true
	case uuidType:
		return rule.KindUUID, true
	}

	switch t.Kind() {
	default:
		return 0, false
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rule.KindInt, true
	case reflect.Float32, reflect.Float64:
		return rule.KindFloat, true
	case reflect.String:
		return rule.KindString, true
	case reflect.Bool:
		return rule.KindBool, true
	case reflect.Struct:
		return rule.KindNested, true
	case reflect.Slice, reflect.Array:
		return rule.KindSlice, true
	case reflect.Map:
		return rule.KindMap, true
	}
}

func deref(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		return t.Elem()
	}

	return t
}
