package order

import (
	"fmt"
	"strings"
	"unicode"
)

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

// NormalizePhone brings Russian numbers to +7XXXXXXXXXX. Other input keeps
// its digits and a leading plus when one was typed.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	cleaned := digitsOnly(phone)

	switch {
	case strings.HasPrefix(cleaned, "7") && len(cleaned) == 11:
		return "+" + cleaned
	case strings.HasPrefix(cleaned, "8") && len(cleaned) == 11:
		return "+7" + cleaned[1:]
	case strings.HasPrefix(cleaned, "9") && len(cleaned) == 10:
		return "+7" + cleaned
	}

	if strings.HasPrefix(phone, "+") && cleaned != "" {
		return "+" + cleaned
	}
	return cleaned
}

// FormatPhone renders +7XXXXXXXXXX as +7 (XXX) XXX-XX-XX.
func FormatPhone(phone string) string {
	if strings.HasPrefix(phone, "+7") && len(phone) == 12 {
		return fmt.Sprintf("%s (%s) %s-%s-%s",
			phone[:2],
			phone[2:5],
			phone[5:8],
			phone[8:10],
			phone[10:12])
	}
	return phone
}
