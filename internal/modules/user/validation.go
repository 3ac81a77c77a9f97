package user

import (
	"errors"
	"fmt"
	"regexp"
	"unicode"
)

// ErrInvalidRegistration wraps every registration validation failure.
var ErrInvalidRegistration = errors.New("invalid registration")

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
)

func validateRegistration(req RegisterRequest) error {
	if !emailPattern.MatchString(req.Email) {
		return fmt.Errorf("%w: email is not valid", ErrInvalidRegistration)
	}
	if !usernamePattern.MatchString(req.Username) {
		return fmt.Errorf("%w: username must be 3-20 letters, digits or underscores", ErrInvalidRegistration)
	}
	if !strongPassword(req.Password) {
		return fmt.Errorf("%w: password needs 8+ characters with upper case, lower case and a digit", ErrInvalidRegistration)
	}
	switch req.Role {
	case RolePatient, RoleDoctor:
	case RoleSeller:
		switch req.SellerType {
		case SellerRetail, SellerWholesale, SellerHospital, SellerNGO:
		default:
			return fmt.Errorf("%w: seller_type must be retail, wholesale, hospital or ngo", ErrInvalidRegistration)
		}
	default:
		return fmt.Errorf("%w: role must be patient, doctor or seller", ErrInvalidRegistration)
	}
	return nil
}

func strongPassword(p string) bool {
	if len(p) < 8 {
		return false
	}
	var upper, lower, digit bool
	for _, r := range p {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}
