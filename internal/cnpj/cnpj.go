// Package cnpj implements the Brazilian company tax identifier (CNPJ) as a
// self-validating value: a CNPJ can only be obtained through New, so every
// non-zero value holds 14 digits with correct check digits.
package cnpj

import (
	"errors"
	"fmt"
	"strings"
)

// Length is the number of digits of a canonical CNPJ.
const Length = 14

var (
	ErrEmpty   = errors.New("cnpj cannot be empty")
	ErrInvalid = errors.New("invalid cnpj")

	ErrWrongLength = fmt.Errorf("%w: wrong length", ErrInvalid)
	ErrDegenerate  = fmt.Errorf("%w: degenerate sequence", ErrInvalid)
	ErrChecksum1   = fmt.Errorf("%w: checksum 1 mismatch", ErrInvalid)
	ErrChecksum2   = fmt.Errorf("%w: checksum 2 mismatch", ErrInvalid)
)

// CNPJ holds the canonical (digits only) form. The zero value means "no
// CNPJ" and is never returned together with a nil error.
type CNPJ struct {
	digits string
}

// New strips formatting from raw and validates the result.
// "11.222.333/0001-81" and "11222333000181" yield the same value.
func New(raw string) (CNPJ, error) {
	if raw == "" {
		return CNPJ{}, ErrEmpty
	}

	digits := Sanitize(raw)
	if len(digits) != Length {
		return CNPJ{}, ErrWrongLength
	}
	if strings.Count(digits, digits[:1]) == Length {
		return CNPJ{}, ErrDegenerate
	}
	if checkDigit(digits[:12]) != digits[12] {
		return CNPJ{}, ErrChecksum1
	}
	if checkDigit(digits[:13]) != digits[13] {
		return CNPJ{}, ErrChecksum2
	}
	return CNPJ{digits: digits}, nil
}

// MustParse is New for fixtures; it panics on invalid input.
func MustParse(raw string) CNPJ {
	c, err := New(raw)
	if err != nil {
		panic(fmt.Sprintf("cnpj: MustParse(%q): %v", raw, err))
	}
	return c
}

// Valid reports whether raw would be accepted by New.
func Valid(raw string) bool {
	_, err := New(raw)
	return err == nil
}

// Sanitize removes everything that is not an ASCII digit.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// checkDigit computes the modulo-11 check digit over base (12 or 13 digits).
// Weights start at len(base)-7 and descend, wrapping from 2 back to 9.
func checkDigit(base string) byte {
	sum := 0
	weight := len(base) - 7
	for i := 0; i < len(base); i++ {
		sum += int(base[i]-'0') * weight
		if weight == 2 {
			weight = 9
		} else {
			weight--
		}
	}
	d := 11 - sum%11
	if d >= 10 {
		d = 0
	}
	return byte('0' + d)
}

// String returns the canonical 14 digits. This is the form that is stored
// and compared.
func (c CNPJ) String() string { return c.digits }

func (c CNPJ) IsZero() bool { return c.digits == "" }

// Formatted renders NN.NNN.NNN/NNNN-NN for display.
func (c CNPJ) Formatted() string {
	if c.IsZero() {
		return ""
	}
	d := c.digits
	return d[0:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:14]
}
