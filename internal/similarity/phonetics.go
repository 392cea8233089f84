package similarity

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// Soundex returns the 4-character American Soundex code of s.
//
// Consonant classes map to digits (BFPV=1, CGJKQSXZ=2, DT=3, L=4, MN=5, R=6),
// vowels and H/W/Y are dropped, adjacent duplicate digits collapse and the
// first letter is kept. Characters other than A-Z are ignored; a value with
// no letters at all encodes to "".
func Soundex(s string) string {
	letters := lettersOnly(s)
	if letters == "" {
		return ""
	}
	return matchr.Soundex(letters)
}

// SoundexMatch reports whether a and b share a non-empty Soundex code
func SoundexMatch(a, b string) bool {
	ca := Soundex(a)
	return ca != "" && ca == Soundex(b)
}

func lettersOnly(s string) string {
	s = strings.ToUpper(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 'A' && c <= 'Z' {
			b.WriteByte(c)
		}
	}
	return b.String()
}
