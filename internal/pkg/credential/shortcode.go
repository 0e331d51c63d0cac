package credential

import (
	"crypto/rand"

	"redemption-engine/internal/pkg/errs"
)

// Alphabet excludes 0/O, 1/I/L to stay unambiguous when read aloud.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const ShortCodeLength = 8

// NewShortCode generates a high-entropy human-enterable code.
func NewShortCode() (string, error) {
	buf := make([]byte, ShortCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", errs.Wrap(err, "failed to generate short code")
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}
