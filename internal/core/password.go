package core

import (
	"crypto/rand"
	"math/big"
)

const (
	passwordLen      = 4
	passwordAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// newPassword returns a random 4-character lowercase alphanumeric string.
func newPassword() string {
	buf := make([]byte, passwordLen)
	limit := big.NewInt(int64(len(passwordAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			// crypto/rand does not fail on supported platforms.
			panic("core: read random: " + err.Error())
		}
		buf[i] = passwordAlphabet[n.Int64()]
	}
	return string(buf)
}
