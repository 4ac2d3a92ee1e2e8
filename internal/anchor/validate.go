package anchor

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/anchor/internal/common"
)

const (
	MinIntentionLength = 3
	MaxIntentionLength = 100
	MinPasswordLength  = 8
	MaxOrderQuantity   = 10
)

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", common.ErrorValidation, msg)
}

// ValidateIntention checks the trimmed intention length.
func ValidateIntention(text string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(text))
	switch {
	case n == 0:
		return invalid("intention is required")
	case n < MinIntentionLength:
		return invalid(fmt.Sprintf("intention must be at least %d characters", MinIntentionLength))
	case n > MaxIntentionLength:
		return invalid(fmt.Sprintf("intention must be at most %d characters", MaxIntentionLength))
	}
	return nil
}

func ValidateCategory(c Category) error {
	if c == "" {
		return invalid("category is required")
	}
	return nil
}

// ValidatePassword checks the registration password and its confirmation.
func ValidatePassword(password, confirm string) error {
	if password == "" {
		return invalid("password is required")
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return invalid(fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if password != confirm {
		return invalid("passwords do not match")
	}
	return nil
}

// Validate checks every field a new order needs.
func (o *Order) Validate() error {
	if o.AnchorID == "" {
		return invalid("anchor is required")
	}
	if !o.Product.Valid() {
		return invalid(fmt.Sprintf("unknown product %q", o.Product))
	}
	if o.Quantity < 1 || o.Quantity > MaxOrderQuantity {
		return invalid(fmt.Sprintf("quantity must be between 1 and %d", MaxOrderQuantity))
	}
	s := o.Shipping
	for _, f := range []struct{ name, value string }{
		{"name", s.Name},
		{"address", s.Line1},
		{"city", s.City},
		{"postal code", s.PostalCode},
		{"country", s.Country},
	} {
		if strings.TrimSpace(f.value) == "" {
			return invalid(f.name + " is required")
		}
	}
	return nil
}
