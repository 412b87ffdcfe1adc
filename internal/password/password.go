// Package password generates random passwords that carry at least one
// character from each required class.
package password

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/awnumar/memguard"

	rerrors "github.com/systmms/credrotate/internal/errors"
)

const (
	// DefaultLength is the password length used when none is configured.
	DefaultLength = 12

	// DefaultSpecialCharacters is the special character class used when none is configured.
	DefaultSpecialCharacters = "_%@#"

	// MinLength is the shortest password that can hold one character of every class.
	MinLength = 4

	lowercase = "abcdefghijklmnopqrstuvwxyz"
	uppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits    = "0123456789"
)

// Policy controls the shape of generated passwords
type Policy struct {
	Length            int    `json:"length" yaml:"length"`
	SpecialCharacters string `json:"special_characters" yaml:"special_characters"`
}

// DefaultPolicy returns the default 12 character policy
func DefaultPolicy() Policy {
	return Policy{
		Length:            DefaultLength,
		SpecialCharacters: DefaultSpecialCharacters,
	}
}

// Validate checks that the policy can be satisfied
func (p Policy) Validate() error {
	if p.Length < MinLength {
		return rerrors.InvalidLengthError{Length: p.Length, Min: MinLength}
	}
	if p.SpecialCharacters == "" {
		return fmt.Errorf("special character set must not be empty")
	}
	for i := 0; i < len(p.SpecialCharacters); i++ {
		if p.SpecialCharacters[i] > 0x7e || p.SpecialCharacters[i] < 0x21 {
			return fmt.Errorf("special character set must contain printable ASCII only, got %q", p.SpecialCharacters)
		}
	}
	return nil
}

// Generator produces passwords for a fixed policy
type Generator struct {
	policy Policy
	random io.Reader
}

// Option configures a Generator
type Option func(*Generator)

// WithRandomSource replaces crypto/rand.Reader. Only cryptographically secure
// readers should be passed outside of tests.
func WithRandomSource(r io.Reader) Option {
	return func(g *Generator) {
		g.random = r
	}
}

// NewGenerator creates a generator for the given policy
func NewGenerator(policy Policy, opts ...Option) *Generator {
	g := &Generator{
		policy: policy,
		random: rand.Reader,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Policy returns the generator's policy
func (g *Generator) Policy() Policy {
	return g.policy
}

// Generate returns a new password. One character is drawn from each of the
// lowercase, uppercase, digit and special classes, the remainder from their
// union, and the result is shuffled.
func (g *Generator) Generate() (string, error) {
	if err := g.policy.Validate(); err != nil {
		return "", err
	}

	length := g.policy.Length
	all := lowercase + uppercase + digits + g.policy.SpecialCharacters

	// The password is assembled in locked memory and wiped once copied out.
	buf := memguard.NewBuffer(length)
	defer buf.Destroy()
	chars := buf.Bytes()

	for i, class := range []string{lowercase, uppercase, digits, g.policy.SpecialCharacters} {
		c, err := g.choice(class)
		if err != nil {
			return "", err
		}
		chars[i] = c
	}

	for i := MinLength; i < length; i++ {
		c, err := g.choice(all)
		if err != nil {
			return "", err
		}
		chars[i] = c
	}

	if err := g.shuffle(chars); err != nil {
		return "", err
	}

	return string(chars), nil
}

// Generate creates a password with the given length and special characters
// using crypto/rand.
func Generate(length int, specialCharacters string) (string, error) {
	return NewGenerator(Policy{Length: length, SpecialCharacters: specialCharacters}).Generate()
}

func (g *Generator) choice(set string) (byte, error) {
	n, err := g.intn(len(set))
	if err != nil {
		return 0, err
	}
	return set[n], nil
}

// shuffle is a Fisher-Yates shuffle driven by the secure source
func (g *Generator) shuffle(chars []byte) error {
	for i := len(chars) - 1; i > 0; i-- {
		j, err := g.intn(i + 1)
		if err != nil {
			return err
		}
		chars[i], chars[j] = chars[j], chars[i]
	}
	return nil
}

func (g *Generator) intn(n int) (int, error) {
	v, err := rand.Int(g.random, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("failed to read random data: %w", err)
	}
	return int(v.Int64()), nil
}
