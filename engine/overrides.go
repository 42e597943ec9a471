package engine

import (
	"reflect"
	"slices"
	"strings"

	"github.com/ivalitov/dto-generator-sub003/generator"
	"github.com/ivalitov/dto-generator-sub003/internal/introspect"
	"github.com/ivalitov/dto-generator-sub003/rule"
)

// checkOverrides rejects per-field remarks and generators whose path names no
// generated field of t, so a misspelt path does not go unnoticed.
func (c *genContext) checkOverrides(t reflect.Type) error {
	paths := make([]string, 0, len(c.remarks)+len(c.generators))
	for p := range c.remarks {
		paths = append(paths, p)
	}

	for p := range c.generators {
		paths = append(paths, p)
	}

	slices.Sort(paths)

	for _, p := range paths {
		if err := lookupPath(t, p); err != nil {
			return err
		}
	}

	return nil
}

// lookupPath walks a dotted field path such as "Lines[].SKU" through the
// generated fields of t. Intermediate segments must be nested objects, or
// collections of nested objects when suffixed with [].
func lookupPath(t reflect.Type, path string) error {
	segments := strings.Split(path, ".")

	for i, seg := range segments {
		name, elem := strings.CutSuffix(seg, "[]")

		fields, err := introspect.Fields(t)
		if err != nil {
			return err
		}

		idx := slices.IndexFunc(fields, func(f introspect.Field) bool { return f.Name == name })
		if idx < 0 {
			return rule.Configurationf("override path %q: %s has no generated field %s", path, t, name)
		}

		f := fields[idx]
		last := i == len(segments)-1

		if last && !elem {
			return nil
		}

		r, typ := f.Rule, generator.Deref(f.Type)

		if elem {
			if !r.Kind.IsCollection() || r.Elem == nil {
				return rule.Configurationf("override path %q: %s is not a collection", path, name)
			}

			if last {
				return rule.Configurationf("override path %q: element rules cannot be overridden", path)
			}

			r, typ = *r.Elem, generator.Deref(elemType(f.Rule.Kind, typ))
		}

		if r.Kind != rule.KindNested {
			return rule.Configurationf("override path %q: %s is not a nested object", path, seg)
		}

		t = typ
	}

	return nil
}

func elemType(kind rule.Kind, t reflect.Type) reflect.Type {
	if kind == rule.KindSet {
		return t.Key()
	}

	return t.Elem()
}
