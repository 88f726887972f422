package validation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Rule checks a single field value and returns an error message, or ""
// when the value passes. Rules are evaluated in declaration order and the
// first failure wins.
type Rule func(value string) string

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s\-()]+$`)
)

// Required fails on empty or whitespace-only values
func Required(message string) Rule {
	if message == "" {
		message = "This field is required"
	}
	return func(value string) string {
		if strings.TrimSpace(value) == "" {
			return message
		}
		return ""
	}
}

// Email checks for a single-@ address shape. This is intentionally not a
// full RFC 822 validation.
func Email(message string) Rule {
	if message == "" {
		message = "Please enter a valid email address"
	}
	return func(value string) string {
		if value == "" {
			return ""
		}
		if !emailPattern.MatchString(value) || strings.Count(value, "@") != 1 {
			return message
		}
		return ""
	}
}

// Phone permits digits, spaces, hyphens, parentheses and a leading plus
func Phone(message string) Rule {
	if message == "" {
		message = "Please enter a valid phone number"
	}
	return func(value string) string {
		if value == "" {
			return ""
		}
		if !phonePattern.MatchString(value) {
			return message
		}
		return ""
	}
}

// PositiveNumber parses the value as a float and fails if it is NaN or
// not greater than zero. An empty string is treated as "no value" and
// passes; Required catches emptiness separately.
func PositiveNumber(message string) Rule {
	if message == "" {
		message = "Please enter a positive number"
	}
	return func(value string) string {
		if value == "" {
			return ""
		}
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsNaN(f) || f <= 0 {
			return message
		}
		return ""
	}
}

// Integer requires the value to parse and round-trip exactly to the same
// string, so "1.5" and "01" are both rejected.
func Integer(message string) Rule {
	if message == "" {
		message = "Please enter a whole number"
	}
	return func(value string) string {
		if value == "" {
			return ""
		}
		n, err := strconv.Atoi(value)
		if err != nil || strconv.Itoa(n) != value {
			return message
		}
		return ""
	}
}

// MinLength fails values shorter than n characters
func MinLength(n int, message string) Rule {
	if message == "" {
		message = fmt.Sprintf("Must be at least %d characters", n)
	}
	return func(value string) string {
		if value == "" {
			return ""
		}
		if len([]rune(value)) < n {
			return message
		}
		return ""
	}
}

// MaxLength fails values longer than n characters
func MaxLength(n int, message string) Rule {
	if message == "" {
		message = fmt.Sprintf("Must be at most %d characters", n)
	}
	return func(value string) string {
		if len([]rune(value)) > n {
			return message
		}
		return ""
	}
}

// Pattern fails values that do not match the given regular expression
func Pattern(re *regexp.Regexp, message string) Rule {
	return func(value string) string {
		if value == "" {
			return ""
		}
		if !re.MatchString(value) {
			return message
		}
		return ""
	}
}

// Custom wraps a predicate; the value fails when the predicate is false
func Custom(pred func(value string) bool, message string) Rule {
	return func(value string) string {
		if !pred(value) {
			return message
		}
		return ""
	}
}

// ValidateValue evaluates the rules in order and returns the first
// failing rule's message. Subsequent rules are not evaluated, so error
// messages are deterministic for any rule ordering.
func ValidateValue(value string, rules []Rule) string {
	for _, rule := range rules {
		if msg := rule(value); msg != "" {
			return msg
		}
	}
	return ""
}
