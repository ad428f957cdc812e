package id

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator creates opaque IDs for scoring runs and event keys.
type Generator interface {
	NewID() (string, error)
}

// UUIDGenerator issues time-ordered UUIDv7 values so run ids sort by start time.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() (string, error) {
	value, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate uuid v7: %w", err)
	}
	return value.String(), nil
}

// Static always returns the same id; useful in tests.
type Static string

func (s Static) NewID() (string, error) {
	return string(s), nil
}
