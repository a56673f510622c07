// Package codex describes the shape of one-time access codes: which symbols
// they are drawn from, how long they are and the optional fixed prefix.
package codex

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"math/big"
	"regexp"
	"strings"
)

const (
	// Numeric is the fixed-width digit alphabet used for codes read out over the phone.
	Numeric = "0123456789"

	// Unambiguous drops the symbols people confuse when typing: I, O, 0 and 1.
	Unambiguous = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

const (
	MinLength       = 4
	MaxLength       = 32
	DefaultLength   = 6
	MaxPrefixLength = 16
)

var (
	ErrInvalidFormat   = errors.New("codex: invalid code format")
	ErrInvalidAlphabet = errors.New("codex: invalid alphabet")
	ErrInvalidLength   = errors.New("codex: invalid length")
	ErrInvalidPrefix   = errors.New("codex: invalid prefix")
)

var (
	prefixPattern = regexp.MustCompile(`^[A-Z0-9-]{0,16}$`)

	// shapePattern covers every code any Format can produce.
	shapePattern = regexp.MustCompile(`^[A-Z0-9-]{4,48}$`)
)

// Format is an immutable code shape. The zero value is not usable; build one
// with NewFormat.
type Format struct {
	alphabet string
	length   int
	prefix   string
	index    [256]bool
}

// ResolveAlphabet maps the well-known names "numeric" and "unambiguous" to
// their symbol sets. Anything else is treated as a literal alphabet.
func ResolveAlphabet(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "numeric", "digits":
		return Numeric
	case "unambiguous", "alnum":
		return Unambiguous
	default:
		return name
	}
}

// NewFormat validates and normalises the given alphabet, length and prefix.
// Literal alphabets are upper-cased and deduplicated and must contain at
// least two symbols from A-Z and 0-9.
func NewFormat(alphabet string, length int, prefix string) (Format, error) {
	var f Format

	if length < MinLength || length > MaxLength {
		return f, fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidLength, length, MinLength, MaxLength)
	}

	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if !prefixPattern.MatchString(prefix) {
		return f, fmt.Errorf("%w: %q", ErrInvalidPrefix, prefix)
	}

	var b strings.Builder
	for _, r := range strings.ToUpper(alphabet) {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return f, fmt.Errorf("%w: symbol %q not in A-Z0-9", ErrInvalidAlphabet, r)
		}
		if f.index[byte(r)] {
			continue
		}
		f.index[byte(r)] = true
		b.WriteRune(r)
	}
	if b.Len() < 2 {
		return Format{}, fmt.Errorf("%w: need at least 2 distinct symbols", ErrInvalidAlphabet)
	}

	f.alphabet = b.String()
	f.length = length
	f.prefix = prefix
	return f, nil
}

// MustFormat is NewFormat for package-level defaults; it panics on error.
func MustFormat(alphabet string, length int, prefix string) Format {
	f, err := NewFormat(alphabet, length, prefix)
	if err != nil {
		panic(err)
	}
	return f
}

func (f Format) Alphabet() string { return f.alphabet }
func (f Format) Length() int      { return f.length }
func (f Format) Prefix() string   { return f.prefix }

// WithPrefix returns a copy of f using prefix instead.
func (f Format) WithPrefix(prefix string) (Format, error) {
	return NewFormat(f.alphabet, f.length, prefix)
}

// Keyspace returns the number of distinct codes the format can produce.
func (f Format) Keyspace() *big.Int {
	n := big.NewInt(int64(len(f.alphabet)))
	return n.Exp(n, big.NewInt(int64(f.length)), nil)
}

// Draw produces a code with each symbol chosen independently and uniformly
// from the alphabet. r is normally crypto/rand.Reader.
func (f Format) Draw(r io.Reader) (string, error) {
	if f.length == 0 {
		return "", ErrInvalidLength
	}
	if r == nil {
		r = rand.Reader
	}

	size := big.NewInt(int64(len(f.alphabet)))
	buf := make([]byte, 0, len(f.prefix)+f.length)
	buf = append(buf, f.prefix...)
	for range f.length {
		n, err := rand.Int(r, size)
		if err != nil {
			return "", fmt.Errorf("codex: draw symbol: %w", err)
		}
		buf = append(buf, f.alphabet[n.Int64()])
	}
	return string(buf), nil
}

// Validate reports whether code, already normalised, has this format's shape.
func (f Format) Validate(code string) error {
	if f.length == 0 {
		return ErrInvalidFormat
	}
	if len(code) != len(f.prefix)+f.length || !strings.HasPrefix(code, f.prefix) {
		return ErrInvalidFormat
	}
	for i := len(f.prefix); i < len(code); i++ {
		if !f.index[code[i]] {
			return ErrInvalidFormat
		}
	}
	return nil
}

// Validator checks a normalised code before it reaches the store.
type Validator interface {
	Validate(code string) error
}

// Shape validates with ValidateShape.
type Shape struct{}

func (Shape) Validate(code string) error { return ValidateShape(code) }

// ValidateShape is the format-independent check: upper-case letters, digits
// and dashes, 4 to 48 characters. Codes from any Format pass it.
func ValidateShape(code string) error {
	if !shapePattern.MatchString(code) {
		return ErrInvalidFormat
	}
	return nil
}

// Normalize trims surrounding whitespace and upper-cases the code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Fingerprint returns a SHA-256 fingerprint of the code for log correlation.
// Raw codes are bearer capabilities and must not be logged.
func Fingerprint(code string) string {
	sum := sha256.Sum256([]byte(code))
	return base64.RawURLEncoding.EncodeToString(sum[:8])
}
