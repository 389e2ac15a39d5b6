// Package tracking derives the public-facing view of an occurrence: its
// tracking code, its status timeline and its elapsed-time summary.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
)

// MaxCodeAttempts bounds how many random codes are tried before giving up.
const MaxCodeAttempts = 10

// ErrCodeSpaceExhausted is returned when every attempt collided.
var ErrCodeSpaceExhausted = errors.New("tracking: could not generate a unique code")

var codeRe = regexp.MustCompile(`^STM\d{6}$`)

// ExistsFunc reports whether a code is already taken.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// Generator produces STM###### codes. Rand defaults to math/rand when nil;
// tests inject a deterministic source.
type Generator struct {
	Rand func() int
}

func (g Generator) next() string {
	n := 0
	if g.Rand != nil {
		n = g.Rand()
	} else {
		n = rand.IntN(999999) + 1
	}
	return fmt.Sprintf("STM%06d", n)
}

// Generate returns a code that exists reports as free.
func (g Generator) Generate(ctx context.Context, exists ExistsFunc) (string, error) {
	for i := 0; i < MaxCodeAttempts; i++ {
		code := g.next()
		taken, err := exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrCodeSpaceExhausted
}

// GenerateCode is Generate with the default random source.
func GenerateCode(ctx context.Context, exists ExistsFunc) (string, error) {
	return Generator{}.Generate(ctx, exists)
}

// NormalizeCode trims and upper-cases user input.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidCode reports whether code has the STM###### shape.
func ValidCode(code string) bool {
	return codeRe.MatchString(code)
}
