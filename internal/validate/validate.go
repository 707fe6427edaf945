// Package validate normalizes and checks user-supplied text. Validators
// return tagged results; the calling protocol layer decides whether a
// failure means rejection, never the validator itself.
package validate

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MaxUsernameLength = 20
	MaxMessageLength  = 200
)

var (
	ErrInvalidUsername = errors.New("invalid username")
	ErrInvalidMessage  = errors.New("invalid message")
)

// Sanitize strips every rune that is not a letter, digit or whitespace.
func Sanitize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Username sanitizes raw and checks it as a display name: between 1 and
// MaxUsernameLength runes, and not the reserved system name.
func Username(raw string) (string, error) {
	name := Sanitize(raw)
	length := utf8.RuneCountInString(name)
	if length < 1 || length > MaxUsernameLength {
		return "", ErrInvalidUsername
	}
	if strings.EqualFold(name, "system") {
		return "", ErrInvalidUsername
	}
	return name, nil
}

// Message sanitizes raw and checks it as chat content: between 1 and
// MaxMessageLength runes. There is no default substitution; an invalid
// message is always an error.
func Message(raw string) (string, error) {
	text := Sanitize(raw)
	length := utf8.RuneCountInString(text)
	if length < 1 || length > MaxMessageLength {
		return "", ErrInvalidMessage
	}
	return text, nil
}
