package types

import "strings"

// Contact holds the optional ways to reach a restaurant.
type Contact struct {
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Website *string `json:"website,omitempty" validate:"omitempty,url"`
}

// Normalize trims every field and drops the ones left empty.
func (c Contact) Normalize() Contact {
	return Contact{
		Phone:   trimmedOrNil(c.Phone),
		Email:   trimmedOrNil(c.Email),
		Website: trimmedOrNil(c.Website),
	}
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
