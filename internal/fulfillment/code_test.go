package fulfillment

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVerificationCodeRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := newVerificationCode()
		require.NoError(t, err)
		require.Len(t, code, 4)
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 1000)
		assert.LessOrEqual(t, n, 9999)
	}
}

func TestCodeMatches(t *testing.T) {
	assert.True(t, codeMatches("4821", "4821"))
	assert.True(t, codeMatches("4821", " 4821 "), "manual entry whitespace is forgiven")
	assert.False(t, codeMatches("4821", "4822"))
	assert.False(t, codeMatches("4821", "482"))
	assert.False(t, codeMatches("4821", ""))
	assert.False(t, codeMatches("4821", "04821"))
}
