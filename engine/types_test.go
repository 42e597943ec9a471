package engine

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ivalitov/dto-generator-sub003/generator"
	"github.com/ivalitov/dto-generator-sub003/rule"
)

type tier string

func (tier) EnumValues() []tier {
	return []tier{"BRONZE", "SILVER", "GOLD"}
}

type friend struct {
	Name  string    `dto:"string,len=6,charset=ENG_LOWER"`
	Since time.Time `dto:"time,left=100,right=0"`
}

type profile struct {
	ID       uuid.UUID      `dto:"uuid"`
	Age      int            `dto:"int,min=18,max=99"`
	Nickname *string        `dto:"string,minLen=3,maxLen=8,charset=ENG_LOWER"`
	Score    float64        `dto:"float,min=0,max=1,precision=3"`
	Active   bool           `dto:"bool"`
	Joined   time.Time      `dto:"time,left=10,right=0"`
	Tier     tier           `dto:"enum"`
	Friends  []friend       `dto:"slice,minSize=1,maxSize=3" dtoelem:"nested"`
	Labels   map[string]int `dto:"map,size=2" dtokey:"string,len=5" dtoelem:"int"`
	Email    string         `dto:"string,group=CONTACT"`
	Phone    string         `dto:"string,len=10,charset=NUM,group=CONTACT|REQUIRED"`
	Note     string
}

type grouped struct {
	Plain    string `dto:"string"`
	First    string `dto:"string,group=GROUP_1"`
	Required string `dto:"string,group=REQUIRED"`
	Both     string `dto:"string,group=GROUP_1|REQUIRED"`
}

type bounded struct {
	Count int    `dto:"int,min=3,max=7"`
	Name  string `dto:"string,minLen=2,maxLen=4"`
	Ptr   *int   `dto:"int,remark=NULL_VALUE"`
	Code  string `dto:"custom,gen=prefix,args=X"`
	Max   int    `dto:"int,min=1,max=5,remark=MAX_VALUE"`
}

type totalFirst struct {
	Total int   `dto:"custom,gen=sum"`
	Items []int `dto:"slice,size=3" dtoelem:"int,min=1,max=9"`
}

func (o *totalFirst) items() []int { return o.Items }

type totalLast struct {
	Items []int `dto:"slice,size=3" dtoelem:"int,min=1,max=9"`
	Total int   `dto:"custom,gen=sum"`
}

func (o *totalLast) items() []int { return o.Items }

type stuck struct {
	Name    string `dto:"string"`
	Waiting string `dto:"custom,gen=never"`
	After   int    `dto:"int,min=1"`
}

type broken struct {
	First int    `dto:"int,min=1"`
	Bad   int    `dto:"int,min=10,max=1"`
	Last  string `dto:"string"`
}

type inner struct {
	Bad int    `dto:"int,min=5,max=1"`
	Ok  string `dto:"string"`
}

type outer struct {
	Inner inner   `dto:"nested"`
	Many  []inner `dto:"slice,size=2" dtoelem:"nested"`
}

type batch struct {
	Many []inner `dto:"slice,size=2" dtoelem:"nested"`
}

type node struct {
	Value int   `dto:"int"`
	Next  *node `dto:"nested"`
}

type unbound struct {
	A string `dto:"custom,gen=nobody"`
}

type mistyped struct {
	A string `dto:"custom,gen=constant"`
}

type exploding struct {
	A string `dto:"custom,gen=panic"`
	B string `dto:"string"`
}

type itemsHolder interface {
	items() []int
}

// sum adds up the items of the enclosing object once they exist.
type sum struct {
	holder itemsHolder
}

func (s *sum) SetEnclosing(obj any) { s.holder, _ = obj.(itemsHolder) }

func (s *sum) IsReady() bool {
	return s.holder != nil && len(s.holder.items()) > 0
}

func (s *sum) Generate() (any, error) {
	total := 0
	for _, v := range s.holder.items() {
		total += v
	}

	return total, nil
}

type never struct{}

func (*never) SetEnclosing(any)       {}
func (*never) IsReady() bool          { return false }
func (*never) Generate() (any, error) { return "unreachable", nil }

type prefix struct {
	value string
	field string
}

func (p *prefix) Configure(setup generator.Setup) error {
	p.value, p.field = setup.Args[0], setup.Field
	return nil
}

func (p *prefix) Generate() (any, error) {
	return p.value + "-" + p.field, nil
}

type constant struct{}

func (constant) Generate() (any, error) { return 42, nil }

type panicky struct{}

func (panicky) Generate() (any, error) { panic("kaboom") }

func testRegistry() *generator.Registry {
	return generator.NewRegistry().
		Bind("sum", sum{}).
		Bind("never", never{}).
		Bind("prefix", prefix{}).
		Bind("constant", constant{}).
		Bind("panic", panicky{}).
		BindRemark(rule.CustomRemark{Name: "PREFIX", ArgsCount: 1, Generator: "prefix"})
}

var testNow = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

func testOptions(extra ...Option) []Option {
	return append([]Option{
		WithRegistry(testRegistry()),
		WithSeed(42),
		WithClock(func() time.Time { return testNow }),
	}, extra...)
}

type flagged struct {
	Name  string            `dto:"string"`
	Flags map[bool]struct{} `dto:"set,size=3" dtoelem:"bool"`
	After int               `dto:"int,min=1"`
}

type labelled struct {
	Label string   `dto:"string"`
	Lines []friend `dto:"slice,size=3" dtoelem:"nested"`
}

// tagger reports whether Configure ran before Generate and how often.
type tagger struct {
	configured int
	field      string
}

func (g *tagger) Configure(setup generator.Setup) error {
	g.configured++
	g.field = setup.Field

	return nil
}

func (g *tagger) Generate() (any, error) {
	if g.configured == 0 {
		return "unconfigured", nil
	}

	return g.field, nil
}

type rejecting struct{}

func (*rejecting) Configure(generator.Setup) error {
	return errors.New("missing arguments")
}

func (*rejecting) Generate() (any, error) { return "", nil }

type fragile struct{}

func (*fragile) SetEnclosing(any)       {}
func (*fragile) IsReady() bool          { panic("ready boom") }
func (*fragile) Generate() (any, error) { return "unreachable", nil }
