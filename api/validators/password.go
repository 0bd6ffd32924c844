package validators

import (
	"unicode"

	pkgerrors "github.com/pickspot/vendor-portal/pkg/errors"
)

// PasswordStrength buckets a password by how many requirements it satisfies.
type PasswordStrength string

const (
	PasswordWeak   PasswordStrength = "weak"
	PasswordFair   PasswordStrength = "fair"
	PasswordStrong PasswordStrength = "strong"
)

type passwordRule struct {
	id    string
	label string
	test  func(string) bool
}

var passwordRules = []passwordRule{
	{
		id:    "length",
		label: "at least 6 characters long",
		test:  func(p string) bool { return len(p) >= 6 },
	},
	{
		id:    "uppercase",
		label: "contains at least one uppercase letter",
		test:  func(p string) bool { return containsClass(p, unicode.IsUpper) },
	},
	{
		id:    "lowercase",
		label: "contains at least one lowercase letter",
		test:  func(p string) bool { return containsClass(p, unicode.IsLower) },
	},
	{
		id:    "number",
		label: "contains at least one number",
		test:  func(p string) bool { return containsClass(p, unicode.IsDigit) },
	},
}

// ValidatePassword checks signup/reset passwords against the account rules.
// It returns a validation error listing every unmet requirement.
func ValidatePassword(password string) error {
	failed := map[string]string{}
	for _, rule := range passwordRules {
		if !rule.test(password) {
			failed[rule.id] = rule.label
		}
	}
	if len(failed) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "password does not meet requirements").WithDetails(failed)
	}
	return nil
}

// PasswordStrengthOf grades a password without rejecting it, for signup UX.
func PasswordStrengthOf(password string) PasswordStrength {
	satisfied := 0
	for _, rule := range passwordRules {
		if rule.test(password) {
			satisfied++
		}
	}
	switch {
	case satisfied == len(passwordRules):
		return PasswordStrong
	case satisfied >= 2:
		return PasswordFair
	default:
		return PasswordWeak
	}
}

func containsClass(s string, class func(rune) bool) bool {
	for _, r := range s {
		if class(r) {
			return true
		}
	}
	return false
}
