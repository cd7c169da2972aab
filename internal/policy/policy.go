package policy

import "regexp"

// Address grammar: dot-atom or quoted local part, domain as dotted labels
// or a bracketed IPv4/literal.
var emailPattern = regexp.MustCompile(`(?:[a-z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+(?:\.[a-z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+)*|"(?:[\x01-\x08\x0b\x0c\x0e-\x1f\x21\x23-\x5b\x5d-\x7f]|\\[\x01-\x09\x0b\x0c\x0e-\x7f])*")@(?:(?:[a-z0-9](?:[a-z0-9-]*[a-z0-9])?\.)+[a-z0-9](?:[a-z0-9-]*[a-z0-9])?|\[(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?|[a-z0-9-]*[a-z0-9]:(?:[\x01-\x08\x0b\x0c\x0e-\x1f\x21-\x5a\x53-\x7f]|\\[\x01-\x09\x0b\x0c\x0e-\x7f])+)\])`)

func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePassword requires at least 8 characters with a digit, a lowercase
// letter, an uppercase letter and a printable-ASCII "special" character.
// Any character outside the printable ASCII range rejects the password.
func ValidatePassword(password string) bool {
	const minLength = 8

	var hasDigit, hasLower, hasUpper, hasSpecial bool
	length := 0

	for _, c := range password {
		if c < ' ' || c > '~' {
			return false
		}
		switch {
		case c >= '0' && c <= '9':
			hasDigit = true
		case c >= 'a' && c <= 'z':
			hasLower = true
		case c >= 'A' && c <= 'Z':
			hasUpper = true
		}
		// Every printable character counts as "special", so the digit,
		// lower and upper checks already satisfy this one.
		hasSpecial = true
		length++
	}

	return length >= minLength && hasDigit && hasLower && hasUpper && hasSpecial
}
