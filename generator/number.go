package generator

import (
	"math"
	"math/rand/v2"
	"reflect"

	"github.com/ivalitov/dto-generator-sub003/rule"
	"github.com/ivalitov/dto-generator-sub003/utils"
)

// Int draws integers uniformly from [Min, Max], both inclusive.
type Int struct {
	Min, Max int64
	Unsigned bool
	rand     *rand.Rand
}

func newInt(t Target, env *Env) (Generator, error) {
	lo, hi, unsigned, ok := integerRange(t.Type)
	if !ok {
		return nil, rule.Configurationf("field %s: int rule cannot fill %s", t.Rule.Field, t.Type)
	}

	p := t.Rule.Params
	if p.Min > p.Max {
		return nil, rule.Boundsf("field %s: min %d is greater than max %d", t.Rule.Field, p.Min, p.Max)
	}

	// bounds outside of the Go type are narrowed to it
	minV, maxV := max(p.Min, lo), min(p.Max, hi)
	if minV > maxV {
		return nil, rule.Boundsf("field %s: range [%d, %d] does not fit %s", t.Rule.Field, p.Min, p.Max, t.Type)
	}

	return &Int{Min: minV, Max: maxV, Unsigned: unsigned, rand: env.Rand}, nil
}

func (g *Int) Generate() (any, error) {
	return g.value(Int64Between(g.rand, g.Min, g.Max)), nil
}

func (g *Int) GenerateRemark(remark rule.Remark) (any, error) {
	switch remark.Name {
	case rule.MinValueName:
		return g.value(g.Min), nil
	case rule.MaxValueName:
		return g.value(g.Max), nil
	default:
		return g.Generate()
	}
}

func (g *Int) value(v int64) any {
	if g.Unsigned {
		return uint64(v)
	}

	return v
}

// Int64Between returns a uniform value in [lo, hi]. The caller guarantees lo <= hi.
func Int64Between(r *rand.Rand, lo, hi int64) int64 {
	span := uint64(hi) - uint64(lo)
	if span == math.MaxUint64 {
		return int64(r.Uint64())
	}

	return lo + int64(r.Uint64N(span+1))
}

// IntBetween is Int64Between for int sized bounds.
func IntBetween(r *rand.Rand, lo, hi int) int {
	return int(Int64Between(r, int64(lo), int64(hi)))
}

func integerRange(t reflect.Type) (lo, hi int64, unsigned, ok bool) {
	switch t.Kind() {
	default:
		return 0, 0, false, false
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		bits := t.Bits()
		return -1 << (bits - 1), 1<<(bits-1) - 1, false, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		bits := t.Bits()
		if bits >= 64 {
			return 0, math.MaxInt64, true, true
		}

		return 0, 1<<bits - 1, true, true
	}
}

// Float draws floats uniformly from [Min, Max] and rounds them to Precision
// decimal places.
type Float struct {
	Min, Max  float64
	Precision int
	rand      *rand.Rand
}

func newFloat(t Target, env *Env) (Generator, error) {
	switch t.Type.Kind() {
	case reflect.Float32, reflect.Float64:
	default:
		return nil, rule.Configurationf("field %s: float rule cannot fill %s", t.Rule.Field, t.Type)
	}

	p := t.Rule.Params
	if math.IsNaN(p.MinFloat) || math.IsNaN(p.MaxFloat) || p.MinFloat > p.MaxFloat {
		return nil, rule.Boundsf("field %s: min %v is greater than max %v", t.Rule.Field, p.MinFloat, p.MaxFloat)
	}

	if t.Type.Kind() == reflect.Float32 &&
		!(utils.IsInRange(-math.MaxFloat32, p.MinFloat, math.MaxFloat32) && utils.IsInRange(-math.MaxFloat32, p.MaxFloat, math.MaxFloat32)) {
		return nil, rule.Boundsf("field %s: range [%v, %v] does not fit %s", t.Rule.Field, p.MinFloat, p.MaxFloat, t.Type)
	}

	return &Float{Min: p.MinFloat, Max: p.MaxFloat, Precision: p.Precision, rand: env.Rand}, nil
}

func (g *Float) Generate() (any, error) {
	// interpolating keeps spans wider than MaxFloat64 finite
	u := g.rand.Float64()
	v := g.Min*(1-u) + g.Max*u

	return g.round(v), nil
}

func (g *Float) GenerateRemark(remark rule.Remark) (any, error) {
	switch remark.Name {
	case rule.MinValueName:
		return g.Min, nil
	case rule.MaxValueName:
		return g.Max, nil
	default:
		return g.Generate()
	}
}

// round applies the precision and keeps the result inside the bounds.
func (g *Float) round(v float64) float64 {
	if g.Precision < 16 {
		scale := math.Pow10(g.Precision)
		if r := math.Round(v*scale) / scale; !math.IsInf(r, 0) && !math.IsNaN(r) {
			v = r
		}
	}

	return min(max(v, g.Min), g.Max)
}
