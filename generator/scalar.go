package generator

import (
	"fmt"
	"io"
	"math/rand/v2"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/ivalitov/dto-generator-sub003/rule"
	"github.com/ivalitov/dto-generator-sub003/utils"
)

var (
	timeType = reflect.TypeFor[time.Time]()
	uuidType = reflect.TypeFor[uuid.UUID]()
)

// maxWindowDays is the widest day window representable by time.Duration.
const maxWindowDays = 106751

type Bool struct {
	rand *rand.Rand
}

func newBool(t Target, env *Env) (Generator, error) {
	if t.Type.Kind() != reflect.Bool {
		return nil, rule.Configurationf("field %s: bool rule cannot fill %s", t.Rule.Field, t.Type)
	}

	return &Bool{rand: env.Rand}, nil
}

func (g *Bool) Generate() (any, error) {
	return g.rand.IntN(2) == 1, nil
}

func (g *Bool) GenerateRemark(remark rule.Remark) (any, error) {
	switch remark.Name {
	case rule.MinValueName:
		return false, nil
	case rule.MaxValueName:
		return true, nil
	default:
		return g.Generate()
	}
}

// Time draws instants uniformly from [now - LeftDays, now + RightDays].
type Time struct {
	From, To time.Time
	rand     *rand.Rand
}

func newTime(t Target, env *Env) (Generator, error) {
	if t.Type != timeType {
		return nil, rule.Configurationf("field %s: time rule cannot fill %s", t.Rule.Field, t.Type)
	}

	p := t.Rule.Params
	if p.LeftDays+p.RightDays < 0 {
		return nil, rule.Boundsf("field %s: empty day window [-%d, +%d]", t.Rule.Field, p.LeftDays, p.RightDays)
	}

	if !utils.IsInRange(-maxWindowDays, p.LeftDays, maxWindowDays) ||
		!utils.IsInRange(-maxWindowDays, p.RightDays, maxWindowDays) ||
		p.LeftDays+p.RightDays > maxWindowDays {
		return nil, rule.Boundsf("field %s: day window [-%d, +%d] is too wide", t.Rule.Field, p.LeftDays, p.RightDays)
	}

	day := 24 * time.Hour

	return &Time{
		From: env.Now.Add(-time.Duration(p.LeftDays) * day),
		To:   env.Now.Add(time.Duration(p.RightDays) * day),
		rand: env.Rand,
	}, nil
}

func (g *Time) Generate() (any, error) {
	offset := Int64Between(g.rand, 0, int64(g.To.Sub(g.From)))
	return g.From.Add(time.Duration(offset)), nil
}

func (g *Time) GenerateRemark(remark rule.Remark) (any, error) {
	switch remark.Name {
	case rule.MinValueName:
		return g.From, nil
	case rule.MaxValueName:
		return g.To, nil
	default:
		return g.Generate()
	}
}

// Enum picks uniformly among the allowed constants of an enum type.
//
// Constants are listed by an EnumValues method with a value receiver returning a
// slice of the type itself; their names come from String. String based types
// without EnumValues accept any name.
type Enum struct {
	Names  []string
	Values []reflect.Value
	rand   *rand.Rand
}

func newEnum(t Target, env *Env) (Generator, error) {
	switch t.Type.Kind() {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return nil, rule.Configurationf("field %s: enum rule cannot fill %s", t.Rule.Field, t.Type)
	}

	names, consts := EnumConstants(t.Type)

	allowed := t.Rule.Params.Values
	if len(allowed) == 0 {
		if consts == nil {
			return nil, rule.Configurationf("field %s: enum rule on %s requires values", t.Rule.Field, t.Type)
		}

		allowed = names
	}

	if len(allowed) == 0 {
		return nil, rule.Boundsf("field %s: no enum constants to pick from", t.Rule.Field)
	}

	g := &Enum{rand: env.Rand}

	for _, name := range allowed {
		var v reflect.Value

		switch {
		case consts != nil:
			c, ok := consts[name]
			if !ok {
				return nil, rule.Boundsf("field %s: %q is not a constant of %s", t.Rule.Field, name, t.Type)
			}

			v = c
		case t.Type.Kind() == reflect.String:
			v = reflect.ValueOf(name).Convert(t.Type)
		default:
			return nil, rule.Configurationf("field %s: enum type %s has no EnumValues method", t.Rule.Field, t.Type)
		}

		g.Names = append(g.Names, name)
		g.Values = append(g.Values, v)
	}

	return g, nil
}

// EnumConstants lists the constants of t through its EnumValues method. It returns
// a nil map when t does not provide one.
func EnumConstants(t reflect.Type) ([]string, map[string]reflect.Value) {
	m, ok := t.MethodByName("EnumValues")
	if !ok {
		return nil, nil
	}

	mt := m.Type
	if mt.NumIn() != 1 || mt.NumOut() != 1 || mt.Out(0) != reflect.SliceOf(t) {
		return nil, nil
	}

	list := m.Func.Call([]reflect.Value{reflect.Zero(t)})[0]

	names := make([]string, 0, list.Len())
	consts := make(map[string]reflect.Value, list.Len())

	for i := range list.Len() {
		v := list.Index(i)
		name := enumName(v)

		if _, dup := consts[name]; !dup {
			names = append(names, name)
		}

		consts[name] = v
	}

	return names, consts
}

func enumName(v reflect.Value) string {
	if s, ok := v.Interface().(fmt.Stringer); ok {
		return s.String()
	}

	if v.Kind() == reflect.String {
		return v.String()
	}

	return fmt.Sprint(v.Interface())
}

func (g *Enum) Generate() (any, error) {
	return g.Values[g.rand.IntN(len(g.Values))].Interface(), nil
}

func (g *Enum) GenerateRemark(remark rule.Remark) (any, error) {
	switch remark.Name {
	case rule.MinValueName:
		return g.Values[0].Interface(), nil
	case rule.MaxValueName:
		return g.Values[len(g.Values)-1].Interface(), nil
	default:
		return g.Generate()
	}
}

var maxUUID = uuid.UUID{
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
}

// UUID produces version 4 UUIDs drawn from the call's entropy source, so seeded
// calls repeat their identifiers.
type UUID struct {
	AsString bool
	reader   io.Reader
}

func newUUID(t Target, env *Env) (Generator, error) {
	switch {
	case t.Type == uuidType:
		return &UUID{reader: randReader{env.Rand}}, nil
	case t.Type.Kind() == reflect.String:
		return &UUID{AsString: true, reader: randReader{env.Rand}}, nil
	default:
		return nil, rule.Configurationf("field %s: uuid rule cannot fill %s", t.Rule.Field, t.Type)
	}
}

func (g *UUID) Generate() (any, error) {
	id, err := uuid.NewRandomFromReader(g.reader)
	if err != nil {
		return nil, fmt.Errorf("failed to draw uuid: %w", err)
	}

	return g.value(id), nil
}

func (g *UUID) GenerateRemark(remark rule.Remark) (any, error) {
	switch remark.Name {
	case rule.MinValueName:
		return g.value(uuid.Nil), nil
	case rule.MaxValueName:
		return g.value(maxUUID), nil
	default:
		return g.Generate()
	}
}

func (g *UUID) value(id uuid.UUID) any {
	if g.AsString {
		return id.String()
	}

	return id
}

// randReader adapts a rand.Rand to io.Reader.
type randReader struct {
	r *rand.Rand
}

func (rr randReader) Read(p []byte) (int, error) {
	for i := 0; i < len(p); i += 8 {
		v := rr.r.Uint64()
		for j := i; j < len(p) && j < i+8; j++ {
			p[j] = byte(v)
			v >>= 8
		}
	}

	return len(p), nil
}
