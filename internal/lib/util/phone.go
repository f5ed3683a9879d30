package util

import (
	"strconv"
	"strings"

	"github.com/biter777/countries"
)

// NormalizePhone reduces a contact handle to digits, keeping a leading plus.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for i, ch := range raw {
		if ch == '+' && i == 0 {
			b.WriteRune(ch)
			continue
		}
		if ch >= '0' && ch <= '9' {
			b.WriteRune(ch)
		}
	}
	return b.String()
}

// PhoneCountry guesses the country of an international contact handle by its
// calling-code prefix. Returns the country name, or "" when the handle has no
// international prefix or the prefix is unknown.
func PhoneCountry(raw string) string {
	phone := NormalizePhone(raw)
	if !strings.HasPrefix(phone, "+") || len(phone) < 4 {
		return ""
	}
	digits := phone[1:]

	// Calling codes are 1-3 digits; longest match wins.
	for l := 3; l >= 1; l-- {
		if len(digits) < l {
			continue
		}
		n, err := strconv.Atoi(digits[:l])
		if err != nil {
			return ""
		}
		code := countries.CallCode(n)
		if !code.IsValid() {
			continue
		}
		if list := code.Countries(); len(list) > 0 {
			return list[0].String()
		}
	}
	return ""
}
