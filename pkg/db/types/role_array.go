package dbtypes

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/angelmondragon/restaurant-reviews/pkg/enums"
)

// RoleArray persists a role set as a Postgres text[] literal.
type RoleArray []enums.Role

func (a *RoleArray) Scan(src any) error {
	if src == nil {
		*a = RoleArray{}
		return nil
	}

	switch v := src.(type) {
	case string:
		return a.parseFromString(v)
	case []byte:
		return a.parseFromString(string(v))
	default:
		return fmt.Errorf("RoleArray: unsupported Scan type %T", src)
	}
}

func (a RoleArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "{}", nil
	}
	parts := make([]string, 0, len(a))
	for _, role := range a {
		if !role.IsValid() {
			return nil, fmt.Errorf("RoleArray: invalid role %q", role)
		}
		parts = append(parts, string(role))
	}
	return "{" + strings.Join(parts, ",") + "}", nil
}

// Set returns the stored roles as a normalized set.
func (a RoleArray) Set() enums.RoleSet {
	return enums.NewRoleSet(a...)
}

// FromRoleSet converts a role set into its column form.
func FromRoleSet(set enums.RoleSet) RoleArray {
	return RoleArray(append([]enums.Role(nil), set...))
}

func (a *RoleArray) parseFromString(s string) error {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")
	if strings.TrimSpace(s) == "" {
		*a = RoleArray{}
		return nil
	}

	raw := strings.Split(s, ",")
	out := make([]enums.Role, 0, len(raw))
	for _, r := range raw {
		role, err := enums.ParseRole(strings.Trim(strings.TrimSpace(r), `"`))
		if err != nil {
			return fmt.Errorf("RoleArray: %w", err)
		}
		out = append(out, role)
	}
	*a = RoleArray(out)
	return nil
}
