package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivalitov/dto-generator-sub003/rule"
)

func TestErrorMap(t *testing.T) {
	m := ErrorMap{}
	assert.False(t, m.HasErrors())
	assert.NoError(t, m.Err())
	assert.Empty(t, m.String())

	m.Add("Lines[].SKU", rule.ErrElementRetryExhausted)
	m.Add("Customer.Email", rule.ErrDependencyCycle)
	m.Add("Customer.Email", errors.New("second failure is dropped"))

	assert.True(t, m.HasErrors())
	assert.Equal(t, []string{"Customer.Email", "Lines[].SKU"}, m.Fields())
	assert.ErrorIs(t, m["Customer.Email"], rule.ErrDependencyCycle)

	err := m.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, rule.ErrDependencyCycle)
	assert.ErrorIs(t, err, rule.ErrElementRetryExhausted)

	assert.Equal(t,
		"Customer.Email: dependency cycle\nLines[].SKU: element generation retries exhausted\n",
		m.String())
}

func TestDealer(t *testing.T) {
	var d dealer
	assert.False(t, d.Pending())

	a, b := &task{}, &task{}
	d.Needs(a)
	d.Needs(b)

	assert.True(t, d.Pending())
	assert.Equal(t, stateDeferred, a.state)

	drained := d.Drain()
	assert.Equal(t, []*task{a, b}, drained)
	assert.False(t, d.Pending())

	d.Needs(b)
	assert.True(t, d.Progressed(drained))

	d.Needs(a)
	assert.False(t, d.Progressed(drained))
}

func TestPolicyString(t *testing.T) {
	assert.Equal(t, "collect-and-continue", CollectAndContinue.String())
	assert.Equal(t, "fail-fast", FailFast.String())
	assert.Equal(t, "Policy(7)", Policy(7).String())
	assert.Equal(t, "deferred", stateDeferred.String())
}
