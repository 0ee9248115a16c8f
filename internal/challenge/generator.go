package challenge

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"slices"
	"strings"

	"github.com/dmitrijs2005/gophcaptcha/internal/common"
)

// Generator produces random strings of a fixed length drawn, with
// replacement, from a fixed alphabet. It is safe for concurrent use as long
// as the underlying source is.
type Generator struct {
	length int
	chars  []rune
	src    io.Reader
	max    *big.Int
}

// NewGenerator returns a Generator for strings of the given length over
// chars. src must be a cryptographically secure source; nil selects
// crypto/rand.Reader.
func NewGenerator(length int, chars []rune, src io.Reader) (*Generator, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: length must be greater than zero, got %d", common.ErrInvalidConfiguration, length)
	}
	if len(chars) == 0 {
		return nil, fmt.Errorf("%w: character set must contain at least one character", common.ErrInvalidConfiguration)
	}
	if src == nil {
		src = rand.Reader
	}

	return &Generator{
		length: length,
		chars:  slices.Clone(chars),
		src:    src,
		max:    big.NewInt(int64(len(chars))),
	}, nil
}

// NewGeneratorFromRange expands expr with Expand and builds a Generator
// over the result.
func NewGeneratorFromRange(length int, expr string, src io.Reader) (*Generator, error) {
	chars, err := Expand(expr)
	if err != nil {
		return nil, err
	}
	return NewGenerator(length, chars, src)
}

// Length reports the length of every string Next returns.
func (g *Generator) Length() int {
	return g.length
}

// Next returns a new random string. Each call is independent of the
// previous ones.
func (g *Generator) Next() (string, error) {
	var b strings.Builder
	b.Grow(g.length)

	for i := 0; i < g.length; i++ {
		n, err := rand.Int(g.src, g.max)
		if err != nil {
			return "", fmt.Errorf("random source: %w", err)
		}
		b.WriteRune(g.chars[n.Int64()])
	}

	return b.String(), nil
}
