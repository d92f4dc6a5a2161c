// internal/domain/order/publicid.go
package order

import (
	"math/big"

	"github.com/google/uuid"
)

// publicIDAlphabet omits look-alike characters (0, 1, I, O, l)
const publicIDAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

const (
	PublicIDLength      = 12
	publicIDMaxAttempts = 5
)

// NewPublicID returns a 12 character identifier safe to show to customers
func NewPublicID() string {
	return encodePublicID(uuid.New())
}

func encodePublicID(id uuid.UUID) string {
	n := new(big.Int).SetBytes(id[:])
	base := big.NewInt(int64(len(publicIDAlphabet)))
	mod := new(big.Int)

	out := make([]byte, 0, 22)
	for n.Sign() > 0 {
		n.DivMod(n, base, mod)
		out = append(out, publicIDAlphabet[mod.Int64()])
	}
	for len(out) < PublicIDLength {
		out = append(out, publicIDAlphabet[0])
	}
	return string(out[:PublicIDLength])
}
