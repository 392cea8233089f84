package similarity

import (
	"strings"
)

// PhoneLocale describes how a national phone number is recognised once a
// value has been reduced to digits.
type PhoneLocale struct {
	Name string `yaml:"name" json:"name"`

	// NationalDigits is the length of a bare national number
	NationalDigits int `yaml:"national_digits" json:"national_digits"`

	// Prefixes are country/trunk prefixes stripped when the digit string is
	// exactly len(prefix)+NationalDigits long and starts with the prefix
	Prefixes []string `yaml:"prefixes" json:"prefixes"`
}

// IndiaLocale strips the 91 country code and the 091 dialling form from
// 10-digit Indian mobile numbers.
var IndiaLocale = PhoneLocale{
	Name:           "IN",
	NationalDigits: 10,
	Prefixes:       []string{"91", "091"},
}

// Normalize reduces s to digits and strips a recognised prefix. Digit strings
// that match no rule are returned unchanged.
func (l PhoneLocale) Normalize(s string) string {
	digits := Digits(s)
	if l.NationalDigits <= 0 || len(digits) == l.NationalDigits {
		return digits
	}
	for _, prefix := range l.Prefixes {
		if len(digits) == len(prefix)+l.NationalDigits && strings.HasPrefix(digits, prefix) {
			return digits[len(prefix):]
		}
	}
	return digits
}

// SameNumber reports whether a and b are one phone number under l: equal
// once normalized, or equal once a leading trunk zero is dropped. The shared
// number must have at least NationalDigits digits (10 when unset).
func (l PhoneLocale) SameNumber(a, b string) bool {
	minDigits := l.NationalDigits
	if minDigits <= 0 {
		minDigits = 10
	}
	na, nb := l.Normalize(a), l.Normalize(b)
	if na == nb {
		return len(na) >= minDigits
	}
	ta, tb := strings.TrimLeft(na, "0"), strings.TrimLeft(nb, "0")
	return ta == tb && len(ta) >= minDigits
}

// NormalizePhone normalizes s with IndiaLocale
func NormalizePhone(s string) string {
	return IndiaLocale.Normalize(s)
}

// Digits strips every non-digit character
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// NormalizeEmail lower-cases and trims. Plus-tags and provider specific dot
// rules are deliberately left alone.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeLinkedIn reduces a LinkedIn profile reference to its public slug,
// so "https://www.linkedin.com/in/John-Smith/?trk=x" becomes "john-smith".
// Values that are not profile URLs are lower-cased and trimmed of slashes.
func NormalizeLinkedIn(s string) string {
	v := strings.ToLower(strings.TrimSpace(s))
	if i := strings.Index(v, "linkedin.com/in/"); i >= 0 {
		v = v[i+len("linkedin.com/in/"):]
		if j := strings.IndexAny(v, "/?#"); j >= 0 {
			v = v[:j]
		}
	}
	return strings.Trim(v, "/")
}

// NormalizeText folds case and collapses internal whitespace
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
