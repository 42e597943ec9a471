package introspect

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivalitov/dto-generator-sub003/rule"
)

type tagged struct {
	ID       uuid.UUID          `dto:"uuid"`
	Count    int                `dto:"int,min=-5,max=5,group=A|B"`
	Price    float64            `dto:"float,min=0.5,max=9.75,precision=3"`
	Name     string             `dto:"string,len=4,charset=eng_lower|num,chars=_"`
	Code     string             `dto:",minLen=2,maxLen=3"`
	When     *time.Time         `dto:",left=10,right=-1"`
	Tags     []string           `dto:"slice,min=1,max=2" dtoelem:"string,values=x"`
	Seen     map[int]struct{}   `dto:"set,size=3" dtoelem:""`
	Scores   map[string]float32 `dto:"map" dtokey:"string,len=2" dtoelem:"float,max=1"`
	Custom   string             `dto:"custom,gen=sku,args=SKU|6,remark=PREFIX(A|B)"`
	Forced   int                `dto:"int,remark=MAX_VALUE"`
	Skipped  string             `dto:"-"`
	Untagged string
}

func TestFields(t *testing.T) {
	fields, err := Fields(reflect.TypeFor[tagged]())
	require.NoError(t, err)

	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}

	assert.Equal(t, []string{"ID", "Count", "Price", "Name", "Code", "When", "Tags", "Seen", "Scores", "Custom", "Forced"}, names)

	byName := map[string]rule.FieldRule{}
	for _, f := range fields {
		byName[f.Name] = f.Rule
	}

	count := byName["Count"]
	assert.Equal(t, rule.KindInt, count.Kind)
	assert.Equal(t, int64(-5), count.Params.Min)
	assert.Equal(t, int64(5), count.Params.Max)
	assert.Equal(t, []string{"A", "B"}, count.Groups)

	price := byName["Price"]
	assert.Equal(t, 0.5, price.Params.MinFloat)
	assert.Equal(t, 9.75, price.Params.MaxFloat)
	assert.Equal(t, 3, price.Params.Precision)

	name := byName["Name"]
	assert.Equal(t, 4, name.Params.MinLen)
	assert.Equal(t, 4, name.Params.MaxLen)
	assert.Equal(t, []rule.Charset{rule.CharsetEngLower, rule.CharsetNum}, name.Params.Charsets)
	assert.Equal(t, "_", name.Params.Chars)

	code := byName["Code"]
	assert.Equal(t, rule.KindString, code.Kind, "kind is inferred")
	assert.Equal(t, 2, code.Params.MinLen)

	when := byName["When"]
	assert.Equal(t, rule.KindTime, when.Kind)
	assert.Equal(t, 10, when.Params.LeftDays)
	assert.Equal(t, -1, when.Params.RightDays)

	tags := byName["Tags"]
	assert.Equal(t, 1, tags.Params.MinSize)
	assert.Equal(t, 2, tags.Params.MaxSize)
	require.NotNil(t, tags.Elem)
	assert.Equal(t, "Tags[]", tags.Elem.Field)
	assert.Equal(t, []string{"x"}, tags.Elem.Params.Values)

	seen := byName["Seen"]
	assert.Equal(t, 3, seen.Params.MinSize)
	require.NotNil(t, seen.Elem)
	assert.Equal(t, rule.KindInt, seen.Elem.Kind, "element kind is inferred from the key type")

	scores := byName["Scores"]
	require.NotNil(t, scores.Key)
	assert.Equal(t, "Scores[key]", scores.Key.Field)
	assert.Equal(t, 2, scores.Key.Params.MaxLen)
	assert.Equal(t, 1.0, scores.Elem.Params.MaxFloat)

	custom := byName["Custom"]
	assert.Equal(t, "sku", custom.Params.Generator)
	assert.Equal(t, []string{"SKU", "6"}, custom.Params.Args)
	require.NotNil(t, custom.Remark)
	assert.Equal(t, rule.NewRemark("PREFIX", "A", "B"), *custom.Remark)

	forced := byName["Forced"]
	require.NotNil(t, forced.Remark)
	assert.True(t, forced.Remark.Is(rule.MaxValue))
}

func TestFields_Cached(t *testing.T) {
	a, err := Fields(reflect.TypeFor[tagged]())
	require.NoError(t, err)

	b, err := Fields(reflect.TypeFor[tagged]())
	require.NoError(t, err)

	assert.Same(t, &a[0], &b[0])
}

func TestFields_Errors(t *testing.T) {
	type unknownKind struct {
		A int `dto:"decimal"`
	}

	type unknownOption struct {
		A int `dto:"int,color=red"`
	}

	type badValue struct {
		A int `dto:"int,min=ten"`
	}

	type boundOnBool struct {
		A bool `dto:"bool,min=1"`
	}

	type missingElem struct {
		A []int `dto:"slice"`
	}

	type elemOnScalar struct {
		A int `dto:"int" dtoelem:"int"`
	}

	type elemWithoutRule struct {
		A []int `dtoelem:"int"`
	}

	type groupOnElem struct {
		A []int `dto:"slice" dtoelem:"int,group=X"`
	}

	type unexported struct {
		a int `dto:"int"`
	}

	type notInferable struct {
		A chan int `dto:""`
	}

	type badRemark struct {
		A int `dto:"int,remark=MIN_VALUE(1)"`
	}

	type noEquals struct {
		A int `dto:"int,min"`
	}

	tests := []struct {
		name string
		typ  reflect.Type
	}{
		{"unknown kind", reflect.TypeFor[unknownKind]()},
		{"unknown option", reflect.TypeFor[unknownOption]()},
		{"bad value", reflect.TypeFor[badValue]()},
		{"bound on bool", reflect.TypeFor[boundOnBool]()},
		{"missing element rule", reflect.TypeFor[missingElem]()},
		{"element rule on scalar", reflect.TypeFor[elemOnScalar]()},
		{"element rule without field rule", reflect.TypeFor[elemWithoutRule]()},
		{"group on element", reflect.TypeFor[groupOnElem]()},
		{"unexported", reflect.TypeFor[unexported]()},
		{"not inferable", reflect.TypeFor[notInferable]()},
		{"builtin remark with args", reflect.TypeFor[badRemark]()},
		{"option without value", reflect.TypeFor[noEquals]()},
		{"not a struct", reflect.TypeFor[int]()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Fields(tt.typ)
			assert.ErrorIs(t, err, rule.ErrConfiguration)
		})
	}
}

func TestInferKind(t *testing.T) {
	tests := []struct {
		typ  reflect.Type
		want rule.Kind
		ok   bool
	}{
		{reflect.TypeFor[uint8](), rule.KindInt, true},
		{reflect.TypeFor[float32](), rule.KindFloat, true},
		{reflect.TypeFor[string](), rule.KindString, true},
		{reflect.TypeFor[bool](), rule.KindBool, true},
		{reflect.TypeFor[time.Time](), rule.KindTime, true},
		{reflect.TypeFor[uuid.UUID](), rule.KindUUID, true},
		{reflect.TypeFor[tagged](), rule.KindNested, true},
		{reflect.TypeFor[[4]int](), rule.KindSlice, true},
		{reflect.TypeFor[map[string]int](), rule.KindMap, true},
		{reflect.TypeFor[func()](), 0, false},
		{nil, 0, false},
	}

	for _, tt := range tests {
		got, ok := InferKind(tt.typ)
		assert.Equal(t, tt.ok, ok, "%v", tt.typ)
		assert.Equal(t, tt.want, got, "%v", tt.typ)
	}
}
