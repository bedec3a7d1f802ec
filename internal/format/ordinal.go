package format

import "strconv"

// OrdinalSuffix returns the English ordinal suffix for n: "st", "nd", "rd"
// or "th". 11, 12 and 13 (and 111, 212, ...) take "th".
func OrdinalSuffix(n int) string {
	if n < 0 {
		n = -n
	}
	switch n % 100 {
	case 11, 12, 13:
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// Ordinal renders n with its suffix, e.g. "21st".
func Ordinal(n int) string {
	return strconv.Itoa(n) + OrdinalSuffix(n)
}
