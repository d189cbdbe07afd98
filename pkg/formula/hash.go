package formula

import (
	"crypto/sha1"
	"strconv"
	"strings"
)

// Encode renders the canonical textual encoding of §4.4/§6:
// clauses joined by "&", literals within a clause joined by "|", in
// ASCII decimal, no spaces or parentheses.
func (f *Formula) Encode() string {
	var b strings.Builder
	for i, c := range f.Clauses {
		if i > 0 {
			b.WriteByte('&')
		}
		for j, l := range c.Literals {
			if j > 0 {
				b.WriteByte('|')
			}
			b.WriteString(strconv.Itoa(l))
		}
	}
	return b.String()
}

// EncodeTerminal renders the canonical encoding of a terminal node:
// the single character "T" or "F".
func EncodeTerminal(value bool) string {
	if value {
		return "T"
	}
	return "F"
}

// Hash returns the SHA-1 digest of the canonical encoding, memoized
// until the next canonicalization invalidates it.
func (f *Formula) Hash() [20]byte {
	if !f.idValid {
		f.id = sha1.Sum([]byte(f.Encode()))
		f.idValid = true
	}
	return f.id
}

// TrueSentinel and FalseSentinel are the two reserved ids standing in
// for terminal children in the NodeTable (§4.7): they are the
// SHA-1 hashes of the single-byte canonical encodings "T" and "F",
// so they can never collide with a hash produced by Formula.Hash
// (which is always computed over a non-empty clause encoding or is,
// degenerately, the empty string — never "T" or "F").
var (
	TrueSentinel  = sha1.Sum([]byte("T"))
	FalseSentinel = sha1.Sum([]byte("F"))
)

// SentinelFor returns the reserved terminal id for value.
func SentinelFor(value bool) [20]byte {
	if value {
		return TrueSentinel
	}
	return FalseSentinel
}
