// Package groupid allocates the short tokens visitors quote at checkout.
package groupid

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
)

const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const DefaultLength = 4

// ExistsFunc reports whether a group id is already taken.
type ExistsFunc func(ctx context.Context, groupID string) (bool, error)

type Generator struct {
	length int
	exists ExistsFunc
	random func(length int) (string, error)
}

func NewGenerator(length int, exists ExistsFunc) *Generator {
	if length <= 0 {
		length = DefaultLength
	}
	return &Generator{
		length: length,
		exists: exists,
		random: Random,
	}
}

// Next samples candidates until one is unused. The probe only filters out
// known collisions; the unique index on the store decides the race.
func (g *Generator) Next(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		candidate, err := g.random(g.length)
		if err != nil {
			return "", err
		}

		if g.exists == nil {
			return candidate, nil
		}
		taken, err := g.exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to probe group id: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
}

// Random returns length characters drawn uniformly from Alphabet.
func Random(length int) (string, error) {
	max := big.NewInt(int64(len(Alphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random source: %w", err)
		}
		buf[i] = Alphabet[n.Int64()]
	}
	return string(buf), nil
}

func Valid(id string) bool {
	if id == "" {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}
