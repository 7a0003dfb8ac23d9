package id

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	crerr "github.com/cockroachdb/errors"
)

// Generator creates opaque IDs for poll cycles and deliveries.
type Generator interface {
	NewID() (string, error)
}

// RandomGenerator returns prefix_hex ids, e.g. "cyc_3f9a...".
type RandomGenerator struct {
	prefix string
}

func NewRandomGenerator(prefix string) *RandomGenerator {
	return &RandomGenerator{prefix: strings.TrimSpace(prefix)}
}

func (g *RandomGenerator) NewID() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", crerr.Wrap(err, "read random bytes")
	}

	value := hex.EncodeToString(buf)
	if g == nil || g.prefix == "" {
		return value, nil
	}
	return g.prefix + "_" + value, nil
}
