package notify

import (
	"errors"
	"strings"
)

// NormalizePhone converts Israeli local mobile numbers to E.164.
// "0541234567" becomes "+972541234567"; already-international numbers
// pass through after stripping separators.
func NormalizePhone(raw string) (string, error) {
	var digits strings.Builder
	plus := false
	for i, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case r == '+' && i == 0:
			plus = true
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
			// separators are ignored
		default:
			return "", errors.New("phone contains invalid characters")
		}
	}

	num := digits.String()
	switch {
	case plus:
		if len(num) < 8 || len(num) > 15 {
			return "", errors.New("international phone length out of range")
		}
		return "+" + num, nil
	case strings.HasPrefix(num, "972"):
		return "+" + num, nil
	case strings.HasPrefix(num, "0") && len(num) == 10:
		return "+972" + num[1:], nil
	default:
		return "", errors.New("unrecognized phone format")
	}
}
