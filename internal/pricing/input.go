package pricing

import (
	"math"
	"strconv"
	"strings"
)

// ParseDimension reads a user-typed size in meters. The longest numeric
// prefix is used ("3.5м" is 3.5) and a comma works as decimal separator.
// Anything unparsable, zero or negative gives 0.
func ParseDimension(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	prefix := floatPrefix(s)
	if prefix == "" {
		return 0
	}
	v, err := strconv.ParseFloat(prefix, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	return v
}

// ParseQuantity reads a user-typed integer quantity. Unparsable input and
// values below one give 1.
func ParseQuantity(s string) int {
	s = strings.TrimSpace(s)
	prefix := intPrefix(s)
	if prefix == "" {
		return 1
	}
	v, err := strconv.Atoi(prefix)
	if err != nil || v < 1 {
		return 1
	}
	return v
}

// ParseGrommets accepts the usual checkbox encodings.
func ParseGrommets(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes", "да":
		return true
	}
	return false
}

func floatPrefix(s string) string {
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := 0
	for end < len(s) && isDigit(s[end]) {
		end++
		digits++
	}
	if end < len(s) && s[end] == '.' {
		end++
		for end < len(s) && isDigit(s[end]) {
			end++
			digits++
		}
	}
	if digits == 0 {
		return ""
	}
	// exponent only when followed by digits
	if end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		exp := end + 1
		if exp < len(s) && (s[exp] == '+' || s[exp] == '-') {
			exp++
		}
		start := exp
		for exp < len(s) && isDigit(s[exp]) {
			exp++
		}
		if exp > start {
			end = exp
		}
	}
	return strings.TrimSuffix(s[:end], ".")
}

func intPrefix(s string) string {
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && isDigit(s[end]) {
		end++
	}
	if end == start {
		return ""
	}
	return s[:end]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
