package generator

import (
	"reflect"

	"github.com/ivalitov/dto-generator-sub003/rule"
)

// Assign stores v into dst. Pointers are allocated or dereferenced as needed and
// representations are converted when Go allows it, except numbers into strings.
// A nil v leaves dst at its zero value.
func Assign(dst reflect.Value, v any) error {
	if v == nil {
		dst.SetZero()
		return nil
	}

	return assignValue(dst, reflect.ValueOf(v))
}

func assignValue(dst, src reflect.Value) error {
	if src.Type().AssignableTo(dst.Type()) {
		dst.Set(src)
		return nil
	}

	if src.Kind() == reflect.Pointer {
		if src.IsNil() {
			dst.SetZero()
			return nil
		}

		return assignValue(dst, src.Elem())
	}

	if dst.Kind() == reflect.Pointer {
		ptr := reflect.New(dst.Type().Elem())
		if err := assignValue(ptr.Elem(), src); err != nil {
			return err
		}

		dst.Set(ptr)

		return nil
	}

	if convertible(src.Type(), dst.Type()) {
		dst.Set(src.Convert(dst.Type()))
		return nil
	}

	return rule.Bindingf("cannot assign %s to %s", src.Type(), dst.Type())
}

func convertible(from, to reflect.Type) bool {
	if !from.ConvertibleTo(to) {
		return false
	}

	// int -> string is a rune conversion, never what a generator meant
	if to.Kind() == reflect.String && from.Kind() != reflect.String {
		return false
	}

	return true
}

// Deref strips one pointer level from t.
func Deref(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		return t.Elem()
	}

	return t
}
