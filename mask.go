package shroud

import (
	"strings"
	"unicode"
)

// Glyph replaces every redacted character.
const Glyph = 'X'

// Masker applies a length-preserving redaction.
//
//	alphanumeric: A-12 -> X-XX
//	digits:       -1,234.50 -> -X,XXX.XX
type Masker interface {
	// Mask applies masking to the value.
	Mask(value string) string
}

// RedactAlphanumeric replaces every letter and digit with Glyph.
// Spaces, dashes and punctuation are kept so the layout survives.
func RedactAlphanumeric(s string) string {
	return redact(s, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	})
}

// RedactDigits replaces every digit with Glyph.
// Signs, decimal points and grouping separators are kept.
func RedactDigits(s string) string {
	return redact(s, unicode.IsDigit)
}

// redact rewrites runes matching hit. Rune count is preserved.
// Glyph is a letter, so RedactAlphanumeric output is a fixed point.
func redact(s string, hit func(rune) bool) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if hit(r) {
			b.WriteRune(Glyph)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type alphanumericMasker struct{}

// AlphanumericMasker returns a masker backed by RedactAlphanumeric.
func AlphanumericMasker() Masker {
	return alphanumericMasker{}
}

func (alphanumericMasker) Mask(value string) string { return RedactAlphanumeric(value) }

type digitMasker struct{}

// DigitMasker returns a masker backed by RedactDigits.
func DigitMasker() Masker {
	return digitMasker{}
}

func (digitMasker) Mask(value string) string { return RedactDigits(value) }

// maskerFor returns the redaction applied to a maskable kind.
// Decimal and numeric values keep their sign and separators; text loses letters too.
func maskerFor(kind ValueKind) (Masker, bool) {
	switch kind {
	case KindDecimal, KindNumeric, KindDecimalMap:
		return DigitMasker(), true
	case KindText:
		return AlphanumericMasker(), true
	case KindObject:
		return nil, false
	}
	return nil, false
}
