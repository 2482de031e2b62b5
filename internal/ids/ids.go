// Package ids generates canonical media identifiers and classifies the
// legacy shapes a media reference can take.
package ids

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Shape is the classification of a stored media reference.
type Shape int

const (
	ShapeNull Shape = iota
	ShapeSentinel
	ShapeMalformed
	ShapeCanonical
)

func (s Shape) String() string {
	switch s {
	case ShapeNull:
		return "null"
	case ShapeSentinel:
		return "sentinel"
	case ShapeMalformed:
		return "malformed"
	case ShapeCanonical:
		return "canonical"
	default:
		return "unknown"
	}
}

// Sentinels are the literal strings earlier writers stored instead of NULL.
var Sentinels = []string{"", "null", "undefined"}

var canonicalPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// New returns a fresh random UUID in its canonical text form.
func New() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return fallbackV4()
	}
	return id.String()
}

// fallbackV4 assembles a version 4 UUID from the non-cryptographic source.
// Used only when the system entropy pool cannot be read.
func fallbackV4() string {
	var b [16]byte
	for i := range b {
		b[i] = byte(rand.IntN(256))
	}
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80

	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}

// IsCanonical reports whether s is in the 8-4-4-4-12 hexadecimal form.
func IsCanonical(s string) bool {
	return canonicalPattern.MatchString(s)
}

// IsSentinel reports whether s is one of the known "no reference" literals.
func IsSentinel(s string) bool {
	for _, v := range Sentinels {
		if s == v {
			return true
		}
	}
	return false
}

func Classify(ref *string) Shape {
	switch {
	case ref == nil:
		return ShapeNull
	case IsSentinel(*ref):
		return ShapeSentinel
	case IsCanonical(*ref):
		return ShapeCanonical
	default:
		return ShapeMalformed
	}
}

// HasPrefix returns a predicate for ids the caller treats as already indexed.
// An empty prefix falls back to the canonical format check.
func HasPrefix(prefix string) func(string) bool {
	if prefix == "" {
		return IsCanonical
	}
	return func(id string) bool {
		return strings.HasPrefix(id, prefix)
	}
}
