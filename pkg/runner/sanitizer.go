package runner

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
)

// DefaultMaxInputSize bounds one message, in bytes.
const DefaultMaxInputSize = 4096

// EnvMaxInputSize overrides DefaultMaxInputSize for the command line tools.
const EnvMaxInputSize = "PARLEY_MAX_INPUT_SIZE"

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// Sanitizer prepares a user message for matching. Oversized messages and broken
// UTF-8 are rejected rather than repaired. Terminal escape sequences are removed
// whole, so a pasted "\x1b[1mHELLO\x1b[0m" reaches the rules as "HELLO". Each line
// break (CRLF included) and tab becomes one space and every other control character
// is dropped.
//
// The zero value uses DefaultMaxInputSize.
type Sanitizer struct {
	MaxBytes int
}

// NewSanitizer returns a Sanitizer with the given byte limit.
// A limit of zero or less selects DefaultMaxInputSize.
func NewSanitizer(maxBytes int) Sanitizer {
	return Sanitizer{MaxBytes: maxBytes}
}

// Limit returns the byte limit in effect.
func (s Sanitizer) Limit() int {
	if s.MaxBytes > 0 {
		return s.MaxBytes
	}
	return DefaultMaxInputSize
}

// Clean returns the message as the engine should see it.
func (s Sanitizer) Clean(input string) (string, error) {
	if limit := s.Limit(); len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}
	text := strings.ReplaceAll(ansi.Strip(input), "\r\n", "\n")
	return strings.TrimSpace(strings.Map(keepRune, text)), nil
}

func keepRune(r rune) rune {
	switch {
	case r == '\n' || r == '\r' || r == '\t':
		return ' '
	case unicode.IsControl(r):
		return -1
	}
	return r
}

// MaxInputSizeFromEnv reads EnvMaxInputSize, falling back to DefaultMaxInputSize
// when it is unset or not a positive integer.
func MaxInputSizeFromEnv() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
