// Package normalize defines the case-normalization policy shared by dictionary
// keys and scanned text:
//
//   - Unicode NFKC normalization
//   - lowercasing (simple case mapping)
//   - curly apostrophe U+2019 folded to ASCII '\''
//
// Dictionary surface forms and lookup arguments go through Key. Scan input goes
// through Text, which additionally records a byte-offset mapping so that match
// positions always index the caller's original string, even when normalization
// changes byte lengths.
package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// fold applies the per-rune part of the policy.
func fold(r rune) rune {
	if r == '’' {
		return '\''
	}
	return unicode.ToLower(r)
}

// Key normalizes a dictionary surface form or a lookup argument.
// Leading and trailing whitespace is trimmed.
func Key(s string) string {
	s = strings.TrimSpace(s)
	if isLowerASCII(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	var it norm.Iter
	it.InitString(norm.NFKC, s)
	for !it.Done() {
		for _, r := range string(it.Next()) {
			b.WriteRune(fold(r))
		}
	}
	return b.String()
}

// Mapping holds a normalized text together with the byte-offset map back into
// the source string. A nil src slice means the normalized text is byte-for-byte
// identical to the source (the ASCII fast path).
type Mapping struct {
	Norm   string
	src    []int
	srcLen int
}

// Text normalizes scan input, recording source offsets per normalized byte.
// ASCII input takes a fast path with an identity offset map.
func Text(s string) Mapping {
	if isASCII(s) {
		return Mapping{Norm: lowerASCII(s), srcLen: len(s)}
	}

	var b strings.Builder
	b.Grow(len(s))
	src := make([]int, 0, len(s)+1)

	var it norm.Iter
	it.InitString(norm.NFKC, s)
	for !it.Done() {
		segStart := it.Pos()
		for _, r := range string(it.Next()) {
			fr := fold(r)
			for i := 0; i < utf8.RuneLen(fr); i++ {
				src = append(src, segStart)
			}
			b.WriteRune(fr)
		}
	}
	src = append(src, len(s))

	return Mapping{Norm: b.String(), src: src, srcLen: len(s)}
}

// Start maps a normalized start offset to a source offset. Offsets that fall
// inside a normalization segment round down to the segment start.
func (m *Mapping) Start(i int) int {
	if m.src == nil {
		return i
	}
	return m.src[i]
}

// End maps an exclusive normalized end offset to an exclusive source offset.
// Offsets inside a normalization segment round up to the segment end.
func (m *Mapping) End(e int) int {
	if m.src == nil {
		return e
	}
	if e >= len(m.Norm) {
		return m.srcLen
	}
	if m.src[e] != m.src[e-1] {
		return m.src[e]
	}
	j := e
	for j < len(m.Norm) && m.src[j] == m.src[e] {
		j++
	}
	return m.src[j]
}

func isLowerASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= utf8.RuneSelf || ('A' <= c && c <= 'Z') {
			return false
		}
	}
	return true
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func lowerASCII(s string) string {
	hasUpper := false
	for i := 0; i < len(s); i++ {
		if 'A' <= s[i] && s[i] <= 'Z' {
			hasUpper = true
			break
		}
	}
	if !hasUpper {
		return s
	}
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
