package store

import (
	"fmt"
	"strings"
	"unicode"
)

// Account policy, matching what the registration endpoint historically
// enforced: usernames restricted to a safe charset, passwords requiring
// length plus all four character classes.
const (
	minPasswordLength = 6
	usernameAlphabet  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-._@+"
)

// validateAccount returns the list of policy violations for the requested
// username and password. An empty result means the account is acceptable.
func validateAccount(username, password string) []string {
	var violations []string

	if strings.TrimSpace(username) == "" {
		violations = append(violations, "Username must not be empty")
	} else {
		for _, r := range username {
			if !strings.ContainsRune(usernameAlphabet, r) {
				violations = append(violations, fmt.Sprintf("Username '%s' is invalid, can only contain letters or digits", username))
				break
			}
		}
	}

	violations = append(violations, validatePassword(password)...)

	return violations
}

func validatePassword(password string) []string {
	var violations []string

	if len(password) < minPasswordLength {
		violations = append(violations, fmt.Sprintf("Passwords must be at least %d characters", minPasswordLength))
	}

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	if !hasLower {
		violations = append(violations, "Passwords must have at least one lowercase ('a'-'z')")
	}
	if !hasUpper {
		violations = append(violations, "Passwords must have at least one uppercase ('A'-'Z')")
	}
	if !hasDigit {
		violations = append(violations, "Passwords must have at least one digit ('0'-'9')")
	}
	if !hasSymbol {
		violations = append(violations, "Passwords must have at least one non alphanumeric character")
	}

	return violations
}
