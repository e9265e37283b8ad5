package id

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator creates opaque IDs for leagues, picks and insights.
type Generator interface {
	NewID() (string, error)
}

// UUIDGenerator issues version 7 UUIDs so that IDs created later sort later.
type UUIDGenerator struct {
	prefix string
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// NewPrefixedGenerator returns a generator whose IDs read "<prefix>_<uuid>".
func NewPrefixedGenerator(prefix string) *UUIDGenerator {
	return &UUIDGenerator{prefix: prefix}
}

func (g *UUIDGenerator) NewID() (string, error) {
	v, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	if g == nil || g.prefix == "" {
		return v.String(), nil
	}
	return g.prefix + "_" + v.String(), nil
}
