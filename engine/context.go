package engine

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/ivalitov/dto-generator-sub003/generator"
	"github.com/ivalitov/dto-generator-sub003/options"
	"github.com/ivalitov/dto-generator-sub003/rule"
)

// Policy decides what a recoverable field failure does to the call.
type Policy int

const (
	// CollectAndContinue records failures in the ErrorMap and keeps generating.
	CollectAndContinue Policy = iota
	// FailFast aborts the call on the first failure.
	FailFast
)

func (p Policy) String() string {
	switch p {
	case CollectAndContinue:
		return "collect-and-continue"
	case FailFast:
		return "fail-fast"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

type settings struct {
	config         *options.Config
	groups         []string
	noDefaultGroup bool
	policy         Policy
	rand           *rand.Rand
	seed           *uint64
	clock          func() time.Time
	remarks        map[string]rule.Remark
	remarkAll      *rule.Remark
	generators     map[string]generator.Generator
	registry       *generator.Registry
	logger         *slog.Logger
}

// Option configures one generation call.
type Option func(*settings)

// WithGroups activates field groups in addition to rule.DefaultGroup.
func WithGroups(groups ...string) Option {
	return func(s *settings) {
		s.groups = append(s.groups, groups...)
	}
}

// WithoutDefaultGroup deactivates rule.DefaultGroup.
func WithoutDefaultGroup() Option {
	return func(s *settings) {
		s.noDefaultGroup = true
	}
}

func WithPolicy(p Policy) Option {
	return func(s *settings) {
		s.policy = p
	}
}

// WithConfig overrides the process-wide limits for this call.
func WithConfig(cfg options.Config) Option {
	return func(s *settings) {
		s.config = &cfg
	}
}

// WithSeed makes the call reproducible.
func WithSeed(seed uint64) Option {
	return func(s *settings) {
		s.seed = &seed
	}
}

// WithRand sets the entropy source. It is used by this call only and must not
// be shared with concurrent calls.
func WithRand(r *rand.Rand) Option {
	return func(s *settings) {
		s.rand = r
	}
}

// WithClock sets the clock time windows are anchored to. It is read once per call.
func WithClock(clock func() time.Time) Option {
	return func(s *settings) {
		s.clock = clock
	}
}

// WithRemark overrides the remark of the field at path, e.g. "Customer.Name".
func WithRemark(path string, remark rule.Remark) Option {
	return func(s *settings) {
		if s.remarks == nil {
			s.remarks = map[string]rule.Remark{}
		}

		s.remarks[path] = remark
	}
}

// WithRemarkForAll applies a remark to every field without a per-path override.
func WithRemarkForAll(remark rule.Remark) Option {
	return func(s *settings) {
		s.remarkAll = &remark
	}
}

// WithGenerator replaces the generator of the field at path.
func WithGenerator(path string, g generator.Generator) Option {
	return func(s *settings) {
		if s.generators == nil {
			s.generators = map[string]generator.Generator{}
		}

		s.generators[path] = g
	}
}

// WithRegistry resolves generators through r instead of generator.Default().
func WithRegistry(r *generator.Registry) Option {
	return func(s *settings) {
		s.registry = r
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// call is the state owned by one top-level generation call.
type call struct {
	errs    ErrorMap
	session *generator.Session
	depth   int
}

// genContext is the immutable configuration of one generation call. Nested
// objects get a child context sharing limits and call state.
type genContext struct {
	config     options.Config
	groups     map[string]struct{}
	policy     Policy
	remarks    map[string]rule.Remark
	remarkAll  *rule.Remark
	generators map[string]generator.Generator
	registry   *generator.Registry
	log        *slog.Logger

	*call

	path string
	// fillExisting leaves non-zero fields untouched; top-level Fill only.
	fillExisting bool
}

func newContext(opts []Option) (*genContext, error) {
	s := &settings{}
	for _, opt := range opts {
		opt(s)
	}

	var cfg options.Config
	if s.config != nil {
		cfg = *s.config
	} else {
		var err error

		cfg, err = options.Process()
		if err != nil {
			return nil, rule.Configurationf("%v", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, rule.Configurationf("%v", err)
	}

	groups := map[string]struct{}{}
	if !s.noDefaultGroup {
		groups[rule.DefaultGroup] = struct{}{}
	}

	for _, g := range s.groups {
		groups[g] = struct{}{}
	}

	for path, remark := range s.remarks {
		if remark.IsBuiltin() && len(remark.Args) != 0 {
			return nil, rule.Configurationf("field %s: remark %s takes no arguments", path, remark.Name)
		}
	}

	rnd := s.rand
	switch {
	case rnd != nil:
	case s.seed != nil:
		rnd = rand.New(rand.NewPCG(*s.seed, *s.seed^0x9e3779b97f4a7c15))
	default:
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	now := time.Now()
	if s.clock != nil {
		now = s.clock()
	}

	registry := s.registry
	if registry == nil {
		registry = generator.Default()
	}

	logger := s.logger
	if logger == nil {
		logger = slog.Default().With("component", "dto-generator")
	}

	ctx := &genContext{
		config:     cfg,
		groups:     groups,
		policy:     s.policy,
		remarks:    s.remarks,
		remarkAll:  s.remarkAll,
		generators: s.generators,
		registry:   registry,
		log:        logger,
		call:       &call{errs: ErrorMap{}},
	}

	ctx.session = registry.NewSession(&generator.Env{
		Rand:                rnd,
		Now:                 now,
		MaxCollectionCycles: cfg.MaxCollectionGenerationCycles,
		Nested:              ctx.nested,
	})

	return ctx, nil
}

// child returns the context of a nested object at path.
func (c *genContext) child(path string) *genContext {
	nc := *c
	nc.path = path
	nc.fillExisting = false

	return &nc
}

func (c *genContext) fieldPath(name string) string {
	if c.path == "" {
		return name
	}

	return c.path + "." + name
}

// remarkFor returns the effective remark of a field: per-path override, then the
// call-wide remark, then the declared one. optional is set for the call-wide
// remark, which fields unable to honour it ignore.
func (c *genContext) remarkFor(r *rule.FieldRule) (remark *rule.Remark, optional bool) {
	if remark, ok := c.remarks[r.Field]; ok {
		return &remark, false
	}

	if c.remarkAll != nil {
		return c.remarkAll, true
	}

	return r.Remark, false
}
