package fulfillment

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"
)

// newVerificationCode draws a uniform 4-digit code in [1000, 9999]. The low
// bound keeps a leading zero from ever appearing, so the code survives any
// client that treats it as a number.
func newVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return fmt.Sprintf("%04d", n.Int64()+1000), nil
}

// codeMatches compares the payer-supplied code against the stored one without
// leaking timing. Surrounding whitespace from manual entry is forgiven;
// nothing else is.
func codeMatches(stored, input string) bool {
	input = strings.TrimSpace(input)
	if len(stored) != len(input) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(input)) == 1
}
