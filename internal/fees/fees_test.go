package fees

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairbid-co/fairbid/internal/apperr"
)

func TestQuoteDocumentedExample(t *testing.T) {
	calc := NewCalculator(15000)

	q, err := calc.Quote(ServiceCleaning, 100000, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), q.ServiceFee)
	assert.Equal(t, int64(15000), q.DeliveryFee)
	assert.Equal(t, int64(125000), q.Total)
}

func TestQuoteRoundsHalfUp(t *testing.T) {
	calc := NewCalculator(0)

	// 10% of 5 is 0.5, rounds up to 1.
	q, err := calc.Quote(ServiceOther, 5, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), q.ServiceFee)

	// 10% of 4 is 0.4, rounds down to 0.
	q, err = calc.Quote(ServiceOther, 4, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), q.ServiceFee)
}

func TestQuoteRejectsNegativeAmount(t *testing.T) {
	calc := NewCalculator(15000)

	_, err := calc.Quote(ServiceTransport, -1, 0)
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestQuoteIgnoresDistance(t *testing.T) {
	calc := NewCalculator(15000)

	near, err := calc.Quote(ServiceTransport, 200000, 1)
	require.NoError(t, err)
	far, err := calc.Quote(ServiceTransport, 200000, 42)
	require.NoError(t, err)
	assert.Equal(t, near, far)
}

func TestStrategyTableCoversEveryType(t *testing.T) {
	for _, st := range []ServiceType{ServiceCleaning, ServiceMaintenance, ServiceConcierge, ServiceTransport, ServiceOther} {
		_, ok := strategies[st]
		assert.True(t, ok, "missing strategy for %s", st)
	}
}

func TestParseServiceType(t *testing.T) {
	st, err := ParseServiceType("maintenance")
	require.NoError(t, err)
	assert.Equal(t, ServiceMaintenance, st)

	_, err = ParseServiceType("boat")
	require.ErrorIs(t, err, apperr.ErrValidation)
}
