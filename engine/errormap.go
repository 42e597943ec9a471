package engine

import (
	"errors"
	"sort"
	"strings"

	"github.com/ivalitov/dto-generator-sub003/rule"
)

// ErrorMap holds the recoverable failures of one generation call keyed by the
// dotted field path, e.g. "Customer.Addresses[].City".
type ErrorMap map[string]error

// Add records a failure. The first failure of a field wins.
func (m ErrorMap) Add(field string, err error) {
	if _, exists := m[field]; !exists {
		m[field] = err
	}
}

// HasErrors returns true if any field failed.
func (m ErrorMap) HasErrors() bool {
	return len(m) > 0
}

// Fields returns the failed field paths in lexical order.
func (m ErrorMap) Fields() []string {
	fields := make([]string, 0, len(m))
	for f := range m {
		fields = append(fields, f)
	}

	sort.Strings(fields)

	return fields
}

// Err returns every failure joined as rule.FieldError values, or nil when the
// map is empty.
func (m ErrorMap) Err() error {
	if len(m) == 0 {
		return nil
	}

	errs := make([]error, 0, len(m))
	for _, f := range m.Fields() {
		errs = append(errs, &rule.FieldError{Field: f, Err: m[f]})
	}

	return errors.Join(errs...)
}

// String returns a formatted, one failure per line listing.
func (m ErrorMap) String() string {
	var sb strings.Builder

	for _, f := range m.Fields() {
		sb.WriteString(f)
		sb.WriteString(": ")
		sb.WriteString(m[f].Error())
		sb.WriteByte('\n')
	}

	return sb.String()
}
