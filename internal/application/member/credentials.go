package member

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// credentialAlphabet deliberately omits 0/O/1/l/I so the delivered code
// survives being read aloud or retyped from a small screen.
const credentialAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZabcdefghjkmnpqrstuvwxyz23456789"

const defaultCredentialLength = 10

func newTemporaryPassword(length int) (string, error) {
	if length <= 0 {
		length = defaultCredentialLength
	}

	max := big.NewInt(int64(len(credentialAlphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate temporary password: %w", err)
		}
		out[i] = credentialAlphabet[n.Int64()]
	}
	return string(out), nil
}
