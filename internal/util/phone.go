// Package util provides utility functions.
package util

import (
	"strings"
	"unicode"
)

// fullWidthZero is the full-width digit zero (U+FF10).
const fullWidthZero = 0xFF10

// fullWidthNine is the full-width digit nine (U+FF19).
const fullWidthNine = 0xFF19

// fullWidthOffset is the offset between full-width and ASCII digits.
const fullWidthOffset = fullWidthZero - '0'

// Phone number length bounds after normalization.
const (
	minPhoneDigits = 10
	maxPhoneDigits = 15
)

// FullWidthToASCIIDigits converts full-width digits to ASCII digits.
func FullWidthToASCIIDigits(s string) string {
	var result strings.Builder
	for _, r := range s {
		if r >= fullWidthZero && r <= fullWidthNine {
			result.WriteRune(r - fullWidthOffset)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// NormalizePhone converts a phone number typed in a form into digits only.
// A leading "+" is kept for international numbers. Separators such as
// hyphens, spaces, dots and parentheses (in either width) are dropped.
func NormalizePhone(s string) string {
	s = strings.TrimSpace(FullWidthToASCIIDigits(s))
	s = strings.Trim(s, "　")

	var result strings.Builder
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			result.WriteRune(r)
		case (r == '+' || r == '＋') && i == 0:
			result.WriteByte('+')
		}
	}
	return result.String()
}

// IsPhoneNumber checks if s normalizes to a plausible phone number.
func IsPhoneNumber(s string) bool {
	if ContainsLetters(s) {
		return false
	}
	n := strings.TrimPrefix(NormalizePhone(s), "+")
	if len(n) < minPhoneDigits || len(n) > maxPhoneDigits {
		return false
	}
	for _, r := range n {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ContainsLetters reports whether s has any letter, which rules out a phone number.
func ContainsLetters(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
